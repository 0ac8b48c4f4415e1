package searcher

import (
	"context"
	"fmt"
	"strings"

	"codecup/problem"

	"github.com/rs/zerolog/log"
)

// Default search limits.
const (
	DefaultDepthLimit = 5
	DefaultBranching  = 2
	DefaultMaxSteps   = 10
)

// Expansion samples at elevated temperature so sibling candidates
// diverge.
const expansionTemperature = 1.0

type Option func(m *MCTS)

func WithDepthLimit(depth int) Option {
	return func(m *MCTS) {
		if depth > 0 {
			m.depthLimit = depth
		}
	}
}

func WithBranching(n int) Option {
	return func(m *MCTS) {
		if n > 0 {
			m.branching = n
		}
	}
}

func WithMaxSteps(steps int) Option {
	return func(m *MCTS) {
		if steps > 0 {
			m.maxSteps = steps
		}
	}
}

func WithExploration(c float64) Option {
	return func(m *MCTS) {
		if c > 0 {
			m.exploration = c
		}
	}
}

func WithRetrieval(index RetrievalIndex, topK int) Option {
	return func(m *MCTS) {
		if index != nil && topK > 0 {
			m.retrieval = index
			m.topK = topK
		}
	}
}

func WithRegistry(registry SolutionRegistry) Option {
	return func(m *MCTS) {
		if registry != nil {
			m.registry = registry
		}
	}
}

func WithMetrics() Option {
	return func(m *MCTS) {
		m.metrics = NewCollector()
	}
}

// MCTS searches a tree of candidate solutions by repeatedly selecting
// a leaf, expanding it through the Generator, scoring each new child
// through the Worker and Evaluator, and backpropagating the shaped
// reward.
type MCTS struct {
	generator   Generator
	worker      Worker
	evaluator   Evaluator
	retrieval   RetrievalIndex
	topK        int
	registry    SolutionRegistry
	depthLimit  int
	branching   int
	maxSteps    int
	exploration float64
	root        *Node
	metrics     Collector
}

func NewMCTS(generator Generator, worker Worker, evaluator Evaluator, options ...Option) *MCTS {
	if generator == nil || worker == nil || evaluator == nil {
		panic("Must provide a generator, a worker and an evaluator")
	}
	m := &MCTS{ // Default values
		generator:   generator,
		worker:      worker,
		evaluator:   evaluator,
		depthLimit:  DefaultDepthLimit,
		branching:   DefaultBranching,
		maxSteps:    DefaultMaxSteps,
		exploration: Exploration,
		metrics:     NewDummyCollector(),
	}
	for _, option := range options {
		option(m)
	}
	return m
}

// Root exposes the tree after a search for inspection; its statistics
// survive even when no solution was found.
func (m *MCTS) Root() *Node { return m.root }

// Search runs one session over prob. It returns the solved node, or a
// nil node when the step budget passes without a success signal.
func (m *MCTS) Search(ctx context.Context, prob *problem.Problem) (*Node, SearchMetric, error) {
	m.metrics.Start()

	if err := m.initialize(ctx, prob); err != nil {
		return nil, m.metrics.Complete(), err
	}

	for step := 1; step <= m.maxSteps; step++ {
		m.metrics.AddStep()
		leaf := descend(m.root, m.exploration)

		children, err := m.expand(ctx, leaf, prob)
		if err != nil {
			return nil, m.metrics.Complete(), fmt.Errorf("step %d: %w", step, err)
		}

		// Children expanded after a success signal stay in the tree
		// unexamined.
		for _, child := range children {
			reward, err := m.simulate(ctx, child, prob)
			if err != nil {
				return nil, m.metrics.Complete(), fmt.Errorf("step %d: %w", step, err)
			}
			if reward == RewardSolved {
				log.Info().Str("problem", prob.Name).Int("depth", child.depth).Msg("problem solved, ready for submission")
				m.metrics.SetSolved()
				return child, m.metrics.Complete(), nil
			}
		}
	}

	log.Info().Str("problem", prob.Name).Int("steps", m.maxSteps).Msg("max steps reached without finding a solution")
	return nil, m.metrics.Complete(), nil
}

// initialize seeds the root with a zero-context candidate, then
// regenerates it with retrieved reference snippets. Neither draft is
// evaluated.
func (m *MCTS) initialize(ctx context.Context, prob *problem.Problem) error {
	prompt := fmt.Sprintf("Problem: %s\nGenerate a solution.", prob.Description)
	drafts, err := m.generator.Complete(ctx, []Message{{Role: RoleUser, Content: prompt}}, 0, 1)
	if err != nil {
		return fmt.Errorf("zero-shot initialization: %w", err)
	}
	if len(drafts) == 0 {
		return fmt.Errorf("zero-shot initialization: generator returned no candidates")
	}
	state := drafts[0]

	if m.retrieval != nil {
		references, err := m.retrieval.Retrieve(ctx, state, m.topK)
		if err != nil {
			return fmt.Errorf("reference retrieval: %w", err)
		}
		log.Debug().Int("references", len(references)).Msg("retrieved reference snippets")

		prompt = fmt.Sprintf("Problem: %s\nSome references from the competitive coding handbook may be useful: %s. Refine the solution.",
			prob.Description, strings.Join(references, "\n"))
		refined, err := m.generator.Complete(ctx, []Message{{Role: RoleUser, Content: prompt}}, 0, 1)
		if err != nil {
			return fmt.Errorf("retrieval-guided refinement: %w", err)
		}
		if len(refined) == 0 {
			return fmt.Errorf("retrieval-guided refinement: generator returned no candidates")
		}
		state = refined[0]
	}

	m.root = &Node{state: state}
	return nil
}

// expand attaches up to branching children to leaf. A leaf at the
// depth limit stays terminal and gains no children.
func (m *MCTS) expand(ctx context.Context, leaf *Node, prob *problem.Problem) ([]*Node, error) {
	if leaf.depth >= m.depthLimit {
		log.Debug().Int("depth", leaf.depth).Msg("depth limit reached")
		return nil, nil
	}

	messages := feedbackContext(leaf, prob.Description)
	completions, err := m.generator.Complete(ctx, messages, expansionTemperature, m.branching)
	if err != nil {
		return nil, fmt.Errorf("expansion: %w", err)
	}

	children := make([]*Node, 0, len(completions))
	for _, completion := range completions {
		children = append(children, leaf.addChild(strings.TrimSpace(completion)))
	}
	m.metrics.AddExpansion(len(children))
	return children, nil
}

// simulate resolves and evaluates one freshly expanded node, registers
// the artifact, and backpropagates the shaped reward. Each node must
// be simulated exactly once: replaying a reward inflates both
// aggregates non-recoverably.
func (m *MCTS) simulate(ctx context.Context, node *Node, prob *problem.Problem) (float64, error) {
	artifact, err := m.worker.Resolve(ctx, node.state)
	if err != nil {
		return 0, fmt.Errorf("worker: %w", err)
	}

	sample, full, err := m.evaluator.Run(ctx, artifact, prob)
	if err != nil {
		return 0, fmt.Errorf("evaluation: %w", err)
	}

	reward, feedback := shapeReward(sample, full)
	node.evaluation = feedback

	if m.registry != nil {
		m.registry.Record(artifact, SolutionMeta{
			Problem:    prob.Name,
			Depth:      node.depth,
			Reward:     reward,
			SampleRate: sample.SuccessRate,
			Status:     full.Status,
		})
	}

	m.backpropagate(node, reward)
	m.metrics.AddSimulation(reward)
	log.Info().Float64("reward", reward).Int("depth", node.depth).Str("status", string(full.Status)).Msg("candidate evaluated")
	return reward, nil
}

// backpropagate runs both aggregation walks from the node to the root:
// the reward-sample walk that recomputes Q on every node, and the
// additive score/visit walk.
func (m *MCTS) backpropagate(node *Node, reward float64) {
	for n := node; n != nil; n = n.parent {
		n.recordReward(reward)
	}
	node.propagateScore(reward)
}
