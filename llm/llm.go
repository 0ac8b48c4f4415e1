package llm

import (
	"context"
	"fmt"
	"os"

	"codecup/searcher"

	"github.com/rs/zerolog/log"
	openai "github.com/sashabaranov/go-openai"
)

// Client is an OpenAI-backed searcher.Generator.
type Client struct {
	api   *openai.Client
	model string
}

// NewClient builds a generator for the given model. The API key comes
// from OPENAI_API_KEY.
func NewClient(model string) (*Client, error) {
	key := os.Getenv("OPENAI_API_KEY")
	if key == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY environment variable not set")
	}
	if model == "" {
		return nil, fmt.Errorf("model name is required")
	}
	return &Client{
		api:   openai.NewClient(key),
		model: model,
	}, nil
}

// Complete requests n independent chat completions and returns one
// candidate string per choice.
func (c *Client) Complete(ctx context.Context, messages []searcher.Message, temperature float64, n int) ([]string, error) {
	req := openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: float32(temperature),
		N:           n,
		Messages:    make([]openai.ChatCompletionMessage, 0, len(messages)),
	}
	for _, m := range messages {
		role := openai.ChatMessageRoleUser
		if m.Role == searcher.RoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		req.Messages = append(req.Messages, openai.ChatCompletionMessage{
			Role:    role,
			Content: m.Content,
		})
	}

	log.Debug().Str("model", c.model).Int("n", n).Float64("temperature", temperature).Msg("requesting completions")
	resp, err := c.api.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("chat completion returned no choices")
	}

	out := make([]string, 0, len(resp.Choices))
	for _, choice := range resp.Choices {
		out = append(out, choice.Message.Content)
	}
	return out, nil
}
