package searcher

import (
	"context"
	"fmt"
	"testing"

	"codecup/problem"

	"github.com/stretchr/testify/require"
)

// Deterministic stub collaborators for driving the search loop.

type stubGenerator struct {
	calls int
	err   error
}

func (g *stubGenerator) Complete(_ context.Context, _ []Message, _ float64, n int) ([]string, error) {
	if g.err != nil {
		return nil, g.err
	}
	out := make([]string, n)
	for i := range out {
		g.calls++
		out[i] = fmt.Sprintf("candidate-%d", g.calls)
	}
	return out, nil
}

type stubRetrieval struct {
	snippets []string
}

func (r stubRetrieval) Retrieve(_ context.Context, _ string, _ int) ([]string, error) {
	return r.snippets, nil
}

type identityWorker struct {
	empty bool
	err   error
}

func (w identityWorker) Resolve(_ context.Context, candidate string) (string, error) {
	if w.err != nil {
		return "", w.err
	}
	if w.empty {
		return "", nil
	}
	return candidate, nil
}

type stubEvaluator struct {
	sample    SampleReport
	full      FullReport
	artifacts []string
}

func (e *stubEvaluator) Run(_ context.Context, artifact string, _ *problem.Problem) (SampleReport, FullReport, error) {
	e.artifacts = append(e.artifacts, artifact)
	return e.sample, e.full, nil
}

type recordingRegistry struct {
	metas []SolutionMeta
}

func (r *recordingRegistry) Record(_ string, meta SolutionMeta) {
	r.metas = append(r.metas, meta)
}

func testProblem() *problem.Problem {
	return &problem.Problem{Name: "apples", Description: "count the apples"}
}

func TestSearchSolved(t *testing.T) {
	t.Run("perfect candidates solve within the first expansion", func(t *testing.T) {
		evaluator := &stubEvaluator{
			sample: SampleReport{SuccessRate: 1.0, Message: "all matched"},
			full:   FullReport{Status: StatusOK, Message: "completed"},
		}
		registry := &recordingRegistry{}
		m := NewMCTS(&stubGenerator{}, identityWorker{}, evaluator,
			WithDepthLimit(1), WithBranching(2), WithMetrics(),
			WithRetrieval(stubRetrieval{snippets: []string{"two pointers"}}, 2),
			WithRegistry(registry))

		solved, metric, err := m.Search(context.Background(), testProblem())

		require.NoError(t, err)
		require.NotNil(t, solved, "A success signal should return the winning node")
		require.Equal(t, 1.0, solved.Q(), "The winning node's quality should be the full reward")
		require.Equal(t, 1, solved.Depth(), "The winner comes from the first expansion")
		require.GreaterOrEqual(t, m.Root().Visits(), 1, "The root should have been backpropagated through")
		require.True(t, metric.Solved, "The metric should flag the early stop")
		require.Equal(t, 1, metric.Steps, "Solving in the first batch consumes one step")

		require.Len(t, m.Root().Children(), 2, "The whole expansion batch stays in the tree")
		require.Equal(t, 0, m.Root().Children()[1].Visits(), "Batch siblings after the winner are abandoned unexamined")
		require.Len(t, registry.metas, 1, "Only the simulated child reaches the registry")
	})
}

func TestSearchExhausted(t *testing.T) {
	t.Run("failing candidates exhaust the step budget", func(t *testing.T) {
		evaluator := &stubEvaluator{
			sample: SampleReport{SuccessRate: 0.0, Message: "0 of 5 matched"},
			full:   FullReport{Status: StatusFailed, Message: "wrong answer"},
		}
		registry := &recordingRegistry{}
		m := NewMCTS(&stubGenerator{}, identityWorker{}, evaluator,
			WithBranching(2), WithMaxSteps(3), WithMetrics(), WithRegistry(registry))

		solved, metric, err := m.Search(context.Background(), testProblem())

		require.NoError(t, err, "Exhaustion is a normal negative outcome")
		require.Nil(t, solved, "No node should be reported without a success signal")
		require.Equal(t, 3, metric.Steps, "Every step should run")
		require.Equal(t, 6, metric.Simulations, "Each step simulates a full branching batch")
		require.Equal(t, 0.0, metric.BestReward, "The best observed reward should be tracked")
		require.Len(t, registry.metas, 6, "Every artifact is registered regardless of score")

		require.Len(t, m.Root().Children(), 2, "The root is expanded once")
		require.Equal(t, 6, m.Root().Visits(), "The root sees every backpropagation")

		// Both aggregation walks stay in lockstep on every node.
		var verify func(n *Node)
		verify = func(n *Node) {
			require.Equal(t, n.visits, len(n.rewardSamples), "Reward samples and visits must match")
			for _, child := range n.children {
				require.Equal(t, n.depth+1, child.depth, "Child depth should be parent depth plus one")
				verify(child)
			}
		}
		verify(m.Root())
	})
}

func TestSearchDepthLimit(t *testing.T) {
	t.Run("depth-capped leaves stop expanding without error", func(t *testing.T) {
		evaluator := &stubEvaluator{
			sample: SampleReport{SuccessRate: 0.5, Message: "1 of 2 matched"},
			full:   FullReport{Status: StatusOK, Message: "completed"},
		}
		m := NewMCTS(&stubGenerator{}, identityWorker{}, evaluator,
			WithDepthLimit(1), WithBranching(2), WithMaxSteps(3), WithMetrics())

		solved, metric, err := m.Search(context.Background(), testProblem())

		require.NoError(t, err, "Hitting the depth limit is not an error")
		require.Nil(t, solved)
		require.Equal(t, 3, metric.Steps, "Steps keep running against capped leaves")
		require.Equal(t, 2, metric.Simulations, "Only the first expansion produces children")
		require.Len(t, m.Root().Children(), 2, "Capped leaves never gain children")
		for _, child := range m.Root().Children() {
			require.Empty(t, child.Children(), "Depth-one nodes stay terminal at depth limit one")
		}
	})
}

func TestSearchEmptyArtifact(t *testing.T) {
	t.Run("worker resolution failure is an ordinary zero-reward verdict", func(t *testing.T) {
		evaluator := &stubEvaluator{
			sample: SampleReport{SuccessRate: 0.0, Message: "no runnable source code"},
			full:   FullReport{Status: StatusFailed, Message: "evaluation skipped"},
		}
		registry := &recordingRegistry{}
		m := NewMCTS(&stubGenerator{}, identityWorker{empty: true}, evaluator,
			WithMaxSteps(1), WithRegistry(registry), WithMetrics())

		solved, metric, err := m.Search(context.Background(), testProblem())

		require.NoError(t, err, "An empty artifact must not abort the run")
		require.Nil(t, solved)
		require.Equal(t, 2, metric.Simulations, "Both children are still evaluated")
		for _, artifact := range evaluator.artifacts {
			require.Empty(t, artifact, "The evaluator should receive the empty artifact")
		}
		for _, meta := range registry.metas {
			require.Equal(t, 0.0, meta.Reward, "Empty artifacts score zero through the normal table")
			require.Equal(t, StatusFailed, meta.Status)
		}
	})
}

func TestSearchTransportFailure(t *testing.T) {
	t.Run("generator failure aborts initialization", func(t *testing.T) {
		gen := &stubGenerator{err: fmt.Errorf("connection refused")}
		m := NewMCTS(gen, identityWorker{}, &stubEvaluator{})

		solved, _, err := m.Search(context.Background(), testProblem())

		require.Error(t, err, "Transport failures propagate without retries")
		require.Nil(t, solved)
		require.ErrorContains(t, err, "zero-shot initialization")
	})

	t.Run("worker failure aborts the current step", func(t *testing.T) {
		worker := identityWorker{err: fmt.Errorf("coder model unreachable")}
		m := NewMCTS(&stubGenerator{}, worker, &stubEvaluator{}, WithMaxSteps(2))

		solved, _, err := m.Search(context.Background(), testProblem())

		require.Error(t, err)
		require.Nil(t, solved)
		require.ErrorContains(t, err, "step 1", "The failing step should be identified")
	})
}

func TestInitialize(t *testing.T) {
	t.Run("retrieval refines the zero-shot draft", func(t *testing.T) {
		gen := &stubGenerator{}
		m := NewMCTS(gen, identityWorker{}, &stubEvaluator{},
			WithRetrieval(stubRetrieval{snippets: []string{"segment tree"}}, 2))

		err := m.initialize(context.Background(), testProblem())

		require.NoError(t, err)
		require.Equal(t, "candidate-2", m.Root().State(), "The refined candidate becomes the root state")
		require.Equal(t, 0, m.Root().Visits(), "Initialization performs no evaluation")
	})

	t.Run("without an index the draft is kept as is", func(t *testing.T) {
		gen := &stubGenerator{}
		m := NewMCTS(gen, identityWorker{}, &stubEvaluator{})

		err := m.initialize(context.Background(), testProblem())

		require.NoError(t, err)
		require.Equal(t, "candidate-1", m.Root().State(), "The zero-shot draft seeds the root")
	})
}

func TestNewMCTS(t *testing.T) {
	t.Run("missing collaborators panic at construction", func(t *testing.T) {
		require.Panics(t, func() {
			NewMCTS(nil, identityWorker{}, &stubEvaluator{})
		}, "A generator is required")
	})

	t.Run("defaults apply when no options are given", func(t *testing.T) {
		m := NewMCTS(&stubGenerator{}, identityWorker{}, &stubEvaluator{})

		require.Equal(t, DefaultDepthLimit, m.depthLimit)
		require.Equal(t, DefaultBranching, m.branching)
		require.Equal(t, DefaultMaxSteps, m.maxSteps)
		require.Equal(t, Exploration, m.exploration)
	})
}
