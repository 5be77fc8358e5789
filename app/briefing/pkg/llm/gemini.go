package llm

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// GeminiBackend 基于 google.golang.org/genai 的后端
type GeminiBackend struct {
	client *genai.Client
	model  string
}

// NewGeminiBackend 创建 Gemini 后端
func NewGeminiBackend(ctx context.Context, apiKey, model string) (*GeminiBackend, error) {
	if model == "" {
		model = DefaultModel(ProviderGemini)
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &GeminiBackend{client: client, model: model}, nil
}

func (b *GeminiBackend) Name() string { return string(ProviderGemini) }

func (b *GeminiBackend) Complete(ctx context.Context, prompt string) (string, error) {
	contents := []*genai.Content{{
		Parts: []*genai.Part{{Text: prompt}},
		Role:  "user",
	}}

	resp, err := b.client.Models.GenerateContent(ctx, b.model, contents, nil)
	if err != nil {
		return "", &BackendError{Provider: b.Name(), Kind: classifyMessage(err), Err: err}
	}
	return resp.Text(), nil
}
