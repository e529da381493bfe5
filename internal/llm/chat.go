package llm

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"log-query-translator/config"
)

// ChatModel talks to any OpenAI-compatible chat endpoint via langchaingo.
type ChatModel struct {
	llm         llms.Model
	temperature float64
}

func NewChatModel(cfg config.LLMConfig) (*ChatModel, error) {
	opts := []openai.Option{
		openai.WithToken(cfg.APIKey),
	}
	if cfg.Model != "" {
		opts = append(opts, openai.WithModel(cfg.Model))
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}

	client, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OpenAI-compatible client: %w", err)
	}
	return &ChatModel{llm: client, temperature: cfg.Temperature}, nil
}

func (m *ChatModel) Generate(ctx context.Context, prompt string) (Reply, error) {
	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeHuman, prompt),
	}
	resp, err := m.llm.GenerateContent(ctx, messages, llms.WithTemperature(m.temperature))
	if err != nil {
		return Reply{}, fmt.Errorf("chat completion: %w", err)
	}
	if resp != nil && len(resp.Choices) > 0 && resp.Choices[0] != nil {
		return TextReply(resp.Choices[0].Content), nil
	}
	return RawReply(resp), nil
}
