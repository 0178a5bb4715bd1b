package ai

import (
	"context"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/flowsight/flowsight/internal/common/config"
)

// Client wraps the OpenAI client with our configuration.
type Client struct {
	client openai.Client
	model  string
}

// NewClient creates a new OpenAI client with the given API key.
func NewClient(cfg *config.OpenAIConfig) *Client {
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &Client{
		client: openai.NewClient(opts...),
		model:  cfg.Model,
	}
}

// Complete sends a system+user prompt pair and returns the first choice.
func (c *Client) Complete(ctx context.Context, system, prompt string, maxTokens int64) (string, error) {
	completion, err := c.client.Chat.Completions.New(
		ctx,
		openai.ChatCompletionNewParams{
			Messages: []openai.ChatCompletionMessageParamUnion{
				openai.SystemMessage(system),
				openai.UserMessage(prompt),
			},
			Model:       c.model,
			MaxTokens:   openai.Int(maxTokens),
			Temperature: openai.Float(0.7),
		},
	)
	if err != nil {
		return "", err
	}
	if len(completion.Choices) == 0 {
		return "", nil
	}
	return completion.Choices[0].Message.Content, nil
}
