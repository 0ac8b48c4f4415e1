package searcher

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Node is one candidate state in the search tree. A node owns its
// children and keeps a non-owning reference to its parent; the tree is
// append-only, children are never reparented or removed.
//
// Each node carries two independent aggregates of the rewards that
// passed through it: the additive score/visits pair, and the reward
// sample list from which Q is derived.
type Node struct {
	state         string
	parent        *Node
	children      []*Node
	depth         int
	visits        int
	score         float64
	evaluation    string
	rewardSamples []float64
	q             float64
}

// addChild creates a child one level deeper, appends it in creation
// order and returns it.
func (n *Node) addChild(state string) *Node {
	child := &Node{
		state:  state,
		parent: n,
		depth:  n.depth + 1,
	}
	n.children = append(n.children, child)
	return child
}

// recordReward appends one reward sample and recomputes Q as the
// midpoint of the mean and the worst sample seen so far.
func (n *Node) recordReward(reward float64) {
	n.rewardSamples = append(n.rewardSamples, reward)
	mean := stat.Mean(n.rewardSamples, nil)
	worst := floats.Min(n.rewardSamples)
	n.q = (mean + worst) / 2
}

// propagateScore adds the raw reward to the running score, counts the
// visit, and repeats on every ancestor up to the root.
func (n *Node) propagateScore(value float64) {
	n.score += value
	n.visits++
	if n.parent != nil {
		n.parent.propagateScore(value)
	}
}

func (n *Node) State() string { return n.state }

func (n *Node) Parent() *Node { return n.parent }

func (n *Node) Children() []*Node { return n.children }

func (n *Node) Depth() int { return n.depth }

func (n *Node) Visits() int { return n.visits }

func (n *Node) Score() float64 { return n.score }

// Evaluation is the feedback text attached when the node was
// simulated; empty until then.
func (n *Node) Evaluation() string { return n.evaluation }

// Q is the quality estimate over the node's reward history, 0 until
// the first sample arrives.
func (n *Node) Q() float64 { return n.q }
