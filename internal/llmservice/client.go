package llmservice

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"docchat/internal/config"
)

// Client wraps the configured chat model behind the Generator contract
// used by the RAG pipeline.
type Client struct {
	llm *openai.LLM
}

// New builds a chat client for the configured OpenAI-compatible model.
func New(cfg *config.ProviderConfig) (*Client, error) {
	llm, err := openai.New(
		openai.WithBaseURL(cfg.BaseURL),
		openai.WithToken(strings.TrimPrefix(cfg.APIKey, "Bearer ")),
		openai.WithModel(cfg.ChatModel),
	)
	if err != nil {
		return nil, err
	}
	return &Client{llm: llm}, nil
}

// Generate sends a single-prompt completion request and returns the raw
// model text. Provider failures propagate unclassified.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	log.Debug().Int("prompt_chars", len(prompt)).Msg("Generating completion")

	messages := []llms.MessageContent{
		{
			Role:  llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextContent{Text: prompt}},
		},
	}

	res, err := c.llm.GenerateContent(ctx, messages)
	if err != nil {
		return "", err
	}
	if len(res.Choices) == 0 {
		return "", fmt.Errorf("model returned no choices")
	}
	return res.Choices[0].Content, nil
}
