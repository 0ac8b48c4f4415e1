package worker

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"codecup/searcher"

	"github.com/rs/zerolog/log"
)

const coderInstructions = "Extract the final solution from the discussion below and return only complete, runnable Python source code wrapped in <source_code> tags. Read from standard input and write to standard output.\n\nThis is the discussion: %s"

// Worker turns free-form candidate text into a verified runnable
// artifact using a fast extraction model and a syntax probe.
type Worker struct {
	generator   searcher.Generator
	checkSyntax func(ctx context.Context, code string) bool
}

// New builds a worker whose syntax probe shells out to interpreter.
func New(generator searcher.Generator, interpreter string) *Worker {
	return &Worker{
		generator: generator,
		checkSyntax: func(ctx context.Context, code string) bool {
			return syntaxOK(ctx, interpreter, code)
		},
	}
}

// Resolve asks the extraction model to re-emit the source, strips the
// markup and gates on the syntax probe. An empty artifact signals
// extraction failure; only transport errors are returned.
func (w *Worker) Resolve(ctx context.Context, candidate string) (string, error) {
	messages := []searcher.Message{{
		Role:    searcher.RoleUser,
		Content: fmt.Sprintf(coderInstructions, candidate),
	}}
	outputs, err := w.generator.Complete(ctx, messages, 0, 1)
	if err != nil {
		return "", fmt.Errorf("coder completion: %w", err)
	}
	if len(outputs) == 0 {
		return "", nil
	}

	code := stripBackticks(extractTag(outputs[0], "source_code"))
	if code == "" || !w.checkSyntax(ctx, code) {
		log.Warn().Msg("candidate did not yield runnable source code")
		return "", nil
	}
	return code, nil
}

// extractTag returns the text between <tag> and </tag>, or the whole
// input when the tag is absent.
func extractTag(text, tag string) string {
	opening, closing := "<"+tag+">", "</"+tag+">"
	start := strings.Index(text, opening)
	if start < 0 {
		return strings.TrimSpace(text)
	}
	rest := text[start+len(opening):]
	end := strings.Index(rest, closing)
	if end < 0 {
		return strings.TrimSpace(rest)
	}
	return strings.TrimSpace(rest[:end])
}

// stripBackticks removes a Markdown code fence around code, if any.
func stripBackticks(code string) string {
	code = strings.TrimSpace(code)
	if strings.HasPrefix(code, "```python") {
		code = strings.TrimPrefix(code, "```python")
	} else {
		code = strings.TrimPrefix(code, "```")
	}
	code = strings.TrimSuffix(strings.TrimSpace(code), "```")
	return strings.TrimSpace(code)
}

// syntaxOK parses the code with the interpreter without executing it.
func syntaxOK(ctx context.Context, interpreter, code string) bool {
	cmd := exec.CommandContext(ctx, interpreter, "-c", "import sys, ast; ast.parse(sys.stdin.read())")
	cmd.Stdin = strings.NewReader(code)
	return cmd.Run() == nil
}
