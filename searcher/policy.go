package searcher

import "math"

// Hyperparameters for the selection policy.

const Exploration = 1.4 // UCB1 exploration constant

// Guards the visit divisor; as it shrinks, ties break toward the most
// visited node.
const epsilon = 0.01

// ucb1 scores a child for selection. An unvisited child always wins
// over any visited sibling.
func ucb1(n *Node, exploration float64) float64 {
	if n.visits == 0 {
		return math.Inf(1)
	}
	exploit := n.q / float64(n.visits)
	explore := exploration * math.Sqrt(math.Log(float64(n.parent.visits))/(float64(n.visits)+epsilon))
	return exploit + explore
}

// selectChild picks the highest-priority child, first encountered on
// ties.
func selectChild(n *Node, exploration float64) *Node {
	best := n.children[0]
	bestPriority := math.Inf(-1)
	for _, child := range n.children {
		priority := ucb1(child, exploration)
		if priority > bestPriority {
			best = child
			bestPriority = priority
		}
	}
	return best
}

// descend repeatedly selects until it reaches the first node with no
// children, the leaf available for expansion.
func descend(n *Node, exploration float64) *Node {
	for len(n.children) > 0 {
		n = selectChild(n, exploration)
	}
	return n
}
