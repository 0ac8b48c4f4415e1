package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"codecup/problem"
	"codecup/searcher"

	"github.com/rs/zerolog/log"
)

// Runner evaluates artifacts against a problem's two test tiers by
// executing them with the configured interpreter. It implements
// searcher.Evaluator.
type Runner struct {
	interpreter   string
	sampleTimeout time.Duration
	fullTimeout   time.Duration
}

func New(interpreter string, sampleTimeout, fullTimeout time.Duration) *Runner {
	return &Runner{
		interpreter:   interpreter,
		sampleTimeout: sampleTimeout,
		fullTimeout:   fullTimeout,
	}
}

// Run executes the sample tier against the expected output and the
// full tier for its status. An empty artifact short-circuits to an
// unconditional failure without executing anything.
func (r *Runner) Run(ctx context.Context, artifact string, prob *problem.Problem) (searcher.SampleReport, searcher.FullReport, error) {
	if artifact == "" {
		return searcher.SampleReport{SuccessRate: 0, Message: "no runnable source code was produced"},
			searcher.FullReport{Status: searcher.StatusFailed, Message: "evaluation skipped: empty artifact"},
			nil
	}

	path, cleanup, err := writeArtifact(artifact)
	if err != nil {
		return searcher.SampleReport{}, searcher.FullReport{}, err
	}
	defer cleanup()

	sample, err := r.runSample(ctx, path, prob)
	if err != nil {
		return searcher.SampleReport{}, searcher.FullReport{}, err
	}
	full := r.runFull(ctx, path, prob)

	log.Debug().Str("problem", prob.Name).Float64("sample_rate", sample.SuccessRate).Str("full_status", string(full.Status)).Msg("evaluation finished")
	return sample, full, nil
}

func (r *Runner) runSample(ctx context.Context, path string, prob *problem.Problem) (searcher.SampleReport, error) {
	input, err := os.ReadFile(prob.SampleInputPath)
	if err != nil {
		return searcher.SampleReport{}, fmt.Errorf("failed to read sample input: %w", err)
	}
	want, err := os.ReadFile(prob.SampleOutputPath)
	if err != nil {
		return searcher.SampleReport{}, fmt.Errorf("failed to read sample output: %w", err)
	}

	got, runErr := r.execute(ctx, path, input, r.sampleTimeout)
	if errors.Is(runErr, context.DeadlineExceeded) {
		return searcher.SampleReport{SuccessRate: 0, Message: fmt.Sprintf("sample run exceeded %s", r.sampleTimeout)}, nil
	}
	if runErr != nil {
		return searcher.SampleReport{SuccessRate: 0, Message: fmt.Sprintf("sample run failed: %v", runErr)}, nil
	}

	rate, message := scoreOutput(got, string(want))
	return searcher.SampleReport{SuccessRate: rate, Message: message}, nil
}

func (r *Runner) runFull(ctx context.Context, path string, prob *problem.Problem) searcher.FullReport {
	input, err := os.ReadFile(prob.FullInputPath)
	if err != nil {
		return searcher.FullReport{Status: searcher.StatusFailed, Message: fmt.Sprintf("failed to read full input: %v", err)}
	}

	_, runErr := r.execute(ctx, path, input, r.fullTimeout)
	switch {
	case errors.Is(runErr, context.DeadlineExceeded):
		return searcher.FullReport{Status: searcher.StatusTimeout, Message: fmt.Sprintf("full run exceeded %s", r.fullTimeout)}
	case runErr != nil:
		return searcher.FullReport{Status: searcher.StatusFailed, Message: fmt.Sprintf("full run failed: %v", runErr)}
	}
	return searcher.FullReport{Status: searcher.StatusOK, Message: "full run completed"}
}

func (r *Runner) execute(ctx context.Context, path string, input []byte, timeout time.Duration) (string, error) {
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, r.interpreter, path)
	cmd.Stdin = bytes.NewReader(input)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if runCtx.Err() != nil {
		return "", runCtx.Err()
	}
	if err != nil {
		return "", fmt.Errorf("%v: %s", err, strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}

// scoreOutput compares output to the expected sample output line by
// line and returns the matched fraction with a judge message.
func scoreOutput(got, want string) (float64, string) {
	wantLines := splitLines(want)
	if len(wantLines) == 0 {
		return 0, "expected sample output is empty"
	}
	gotLines := splitLines(got)

	matched := 0
	var mismatches []string
	for i, w := range wantLines {
		var g string
		if i < len(gotLines) {
			g = gotLines[i]
		}
		if strings.TrimSpace(g) == strings.TrimSpace(w) {
			matched++
		} else if len(mismatches) < 3 {
			mismatches = append(mismatches, fmt.Sprintf("line %d: expected %q, got %q", i+1, strings.TrimSpace(w), strings.TrimSpace(g)))
		}
	}

	rate := float64(matched) / float64(len(wantLines))
	if rate == 1.0 {
		return 1.0, fmt.Sprintf("all %d sample output lines matched", len(wantLines))
	}
	return rate, fmt.Sprintf("%d of %d sample output lines matched; %s", matched, len(wantLines), strings.Join(mismatches, "; "))
}

func splitLines(s string) []string {
	s = strings.TrimRight(s, "\n")
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

func writeArtifact(code string) (string, func(), error) {
	dir, err := os.MkdirTemp("", "codecup-*")
	if err != nil {
		return "", nil, fmt.Errorf("failed to create artifact directory: %w", err)
	}
	path := filepath.Join(dir, "solution.py")
	if err := os.WriteFile(path, []byte(code), 0644); err != nil {
		os.RemoveAll(dir)
		return "", nil, fmt.Errorf("failed to write artifact: %w", err)
	}
	return path, func() { os.RemoveAll(dir) }, nil
}
