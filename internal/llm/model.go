// Package llm wraps the external language model. A Model is a stateless
// capability: given a rendered prompt it returns a Reply or fails.
package llm

import (
	"context"
	"encoding/json"
	"fmt"

	"log-query-translator/config"
)

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

type Model interface {
	Generate(ctx context.Context, prompt string) (Reply, error)
}

// ModelFunc adapts a function to Model.
type ModelFunc func(ctx context.Context, prompt string) (Reply, error)

func (f ModelFunc) Generate(ctx context.Context, prompt string) (Reply, error) {
	return f(ctx, prompt)
}

// Reply is what a Model hands back. Content is set when the provider
// exposed a primary text field; Raw keeps the whole response otherwise.
type Reply struct {
	Content *string
	Raw     any
}

func TextReply(text string) Reply {
	return Reply{Content: &text}
}

func RawReply(v any) Reply {
	return Reply{Raw: v}
}

// Normalize reduces a Reply to plain text. It is total: unexpected shapes
// are stringified, never rejected. Normalize(TextReply(Normalize(r))) equals
// Normalize(r).
func Normalize(r Reply) (text string) {
	if r.Content != nil {
		return *r.Content
	}
	switch v := r.Raw.(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	}

	defer func() {
		if rec := recover(); rec != nil {
			text = fmt.Sprintf("%v", r.Raw)
		}
	}()
	if b, err := json.Marshal(r.Raw); err == nil {
		return string(b)
	}
	return fmt.Sprintf("%v", r.Raw)
}

// NewModel builds the capability selected by cfg.LLM.Provider.
func NewModel(cfg *config.Config) (Model, error) {
	switch cfg.LLM.Provider {
	case ProviderGemini, "":
		return NewGeminiModel(context.Background(), cfg.LLM)
	case ProviderOpenAI:
		return NewChatModel(cfg.LLM)
	default:
		return nil, fmt.Errorf("unsupported LLM provider %q (supported: %s, %s)", cfg.LLM.Provider, ProviderGemini, ProviderOpenAI)
	}
}
