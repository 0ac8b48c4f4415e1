package searcher

import "fmt"

// summaryLimit bounds how much of a long candidate or feedback text
// survives into the expansion context.
const summaryLimit = 100

// summarize keeps the head and tail of long text so the context stays
// bounded as the tree deepens.
func summarize(text string) string {
	if len(text) <= summaryLimit {
		return text
	}
	return text[:summaryLimit] + "..." + text[len(text)-summaryLimit:]
}

// feedbackContext builds the Generator conversation for expanding a
// leaf: the problem statement, each non-root ancestor's summarized
// candidate with its recorded feedback in root-to-leaf order, and a
// closing instruction to diverge from everything above.
func feedbackContext(leaf *Node, description string) []Message {
	var history []Message
	for node := leaf; node.parent != nil; node = node.parent {
		history = append(history, Message{
			Role:    RoleAssistant,
			Content: summarize(node.state) + node.evaluation,
		})
	}
	// Collected child to root; present root to child.
	for i, j := 0, len(history)-1; i < j; i, j = i+1, j-1 {
		history[i], history[j] = history[j], history[i]
	}

	messages := make([]Message, 0, len(history)+2)
	messages = append(messages, Message{
		Role:    RoleUser,
		Content: fmt.Sprintf("## Problem: %s", description),
	})
	messages = append(messages, history...)
	messages = append(messages, Message{
		Role:    RoleUser,
		Content: "Do not agree with any of the solutions above. Provide the truly correct solution that does not time out.",
	})
	return messages
}
