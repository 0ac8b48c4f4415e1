package engine

import (
	"context"
	"fmt"
	"strings"

	"codecup/config"
	"codecup/llm"
	"codecup/problem"
	"codecup/rag"
	"codecup/runner"
	"codecup/searcher"
	"codecup/solution"
	"codecup/worker"

	"github.com/rs/zerolog/log"
)

// Session wires live collaborators around one solution registry and
// runs searches against it.
type Session struct {
	cfg      config.Config
	registry *solution.Manager
}

func NewSession(cfg config.Config) *Session {
	return &Session{
		cfg:      cfg,
		registry: solution.NewManager(),
	}
}

// Solve runs one search over the named problem, renders the resulting
// tree and exports everything the search produced.
func (s *Session) Solve(ctx context.Context, name string) error {
	prob, err := problem.LoadFromFolder(s.cfg.Dataset, name)
	if err != nil {
		return fmt.Errorf("failed to load problem %s: %w", name, err)
	}

	m, err := BuildSearcher(s.cfg, s.registry)
	if err != nil {
		return err
	}

	log.Info().Str("problem", prob.Name).Msg("starting search")
	solved, metric, err := m.Search(ctx, prob)
	if err != nil {
		return fmt.Errorf("search failed for %s: %w", name, err)
	}

	if solved != nil {
		log.Info().Str("problem", prob.Name).Int("depth", solved.Depth()).Dur("took", metric.Duration).Msg("solution found")
	} else {
		log.Warn().Str("problem", prob.Name).Int("steps", metric.Steps).Msg("no solution within the step budget")
	}

	fmt.Print(RenderTree(m.Root()))

	if err := s.registry.Export(s.cfg.ExportDir); err != nil {
		return fmt.Errorf("failed to export solutions: %w", err)
	}
	return nil
}

// BuildSearcher constructs an MCTS with live collaborators from cfg.
func BuildSearcher(cfg config.Config, registry searcher.SolutionRegistry) (*searcher.MCTS, error) {
	generator, err := llm.NewClient(cfg.Model)
	if err != nil {
		return nil, fmt.Errorf("failed to build generator: %w", err)
	}
	fast, err := llm.NewClient(cfg.FastModel)
	if err != nil {
		return nil, fmt.Errorf("failed to build extraction model: %w", err)
	}

	options := []searcher.Option{
		searcher.WithDepthLimit(cfg.DepthLimit),
		searcher.WithBranching(cfg.Branching),
		searcher.WithMaxSteps(cfg.MaxSteps),
		searcher.WithRegistry(registry),
		searcher.WithMetrics(),
	}
	if cfg.Snippets != "" {
		index, err := rag.Load(cfg.Snippets)
		if err != nil {
			return nil, fmt.Errorf("failed to load snippet index: %w", err)
		}
		options = append(options, searcher.WithRetrieval(index, cfg.RetrievalTopK))
	}

	return searcher.NewMCTS(
		generator,
		worker.New(fast, cfg.Interpreter),
		runner.New(cfg.Interpreter, cfg.SampleTimeout.Std(), cfg.FullTimeout.Std()),
		options...,
	), nil
}

// RenderTree pretty-prints the search tree with per-node statistics.
func RenderTree(root *searcher.Node) string {
	var b strings.Builder
	renderNode(&b, root, "", true)
	return b.String()
}

func renderNode(b *strings.Builder, node *searcher.Node, prefix string, last bool) {
	if node == nil {
		return
	}
	connector := "├─"
	if last {
		connector = "└─"
	}
	fmt.Fprintf(b, "%s%s depth=%d visits=%d Q=%.3f\n", prefix, connector, node.Depth(), node.Visits(), node.Q())

	childPrefix := prefix + "│  "
	if last {
		childPrefix = prefix + "   "
	}
	children := node.Children()
	for i, child := range children {
		renderNode(b, child, childPrefix, i == len(children)-1)
	}
}
