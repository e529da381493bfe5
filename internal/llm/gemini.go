package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"log-query-translator/config"
)

// GeminiModel calls the Gemini API through the genai SDK.
type GeminiModel struct {
	client      *genai.Client
	model       string
	temperature float32
}

func NewGeminiModel(ctx context.Context, cfg config.LLMConfig) (*GeminiModel, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("LLM_API_KEY is required for the gemini provider")
	}
	if cfg.Model == "" {
		return nil, errors.New("LLM_MODEL is required for the gemini provider")
	}

	clientCfg := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &GeminiModel{
		client:      client,
		model:       cfg.Model,
		temperature: float32(cfg.Temperature),
	}, nil
}

func (m *GeminiModel) Generate(ctx context.Context, prompt string) (Reply, error) {
	contents := []*genai.Content{
		genai.NewContentFromText(prompt, genai.RoleUser),
	}
	temperature := m.temperature

	resp, err := m.client.Models.GenerateContent(ctx, m.model, contents, &genai.GenerateContentConfig{
		Temperature: &temperature,
	})
	if err != nil {
		return Reply{}, fmt.Errorf("gemini generate content: %w", err)
	}

	if text, ok := candidateText(resp); ok {
		return TextReply(text), nil
	}
	return RawReply(resp), nil
}

// candidateText joins the text parts of the first candidate.
func candidateText(resp *genai.GenerateContentResponse) (string, bool) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", false
	}
	candidate := resp.Candidates[0]
	if candidate == nil || candidate.Content == nil {
		return "", false
	}

	var sb strings.Builder
	found := false
	for _, part := range candidate.Content.Parts {
		if part == nil || part.Text == "" {
			continue
		}
		sb.WriteString(part.Text)
		found = true
	}
	return sb.String(), found
}
