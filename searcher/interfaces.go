package searcher

import (
	"context"

	"codecup/problem"
)

// Conversation roles understood by the Generator.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one turn of Generator context.
type Message struct {
	Role    string
	Content string
}

// Generator produces candidate solutions. It must honor n for both
// single and multi-completion requests.
type Generator interface {
	Complete(ctx context.Context, messages []Message, temperature float64, n int) ([]string, error)
}

// RetrievalIndex returns up to topK reference snippets relevant to the
// query. Consulted only while initializing the root.
type RetrievalIndex interface {
	Retrieve(ctx context.Context, query string, topK int) ([]string, error)
}

// Worker extracts a runnable artifact from free-form candidate text.
// An empty artifact with a nil error means extraction failed; errors
// are reserved for transport failures.
type Worker interface {
	Resolve(ctx context.Context, candidate string) (string, error)
}

// Evaluator runs an artifact through the problem's two test tiers.
type Evaluator interface {
	Run(ctx context.Context, artifact string, prob *problem.Problem) (SampleReport, FullReport, error)
}

// SolutionMeta describes one evaluated artifact for the registry.
type SolutionMeta struct {
	Problem    string
	Depth      int
	Reward     float64
	SampleRate float64
	Status     Status
}

// SolutionRegistry receives every resolved artifact regardless of its
// score, for later inspection or submission.
type SolutionRegistry interface {
	Record(artifact string, meta SolutionMeta)
}
