package llm

import (
	"context"
	"errors"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// AnthropicBackend 基于 anthropic-sdk-go 的后端
type AnthropicBackend struct {
	client *anthropic.Client
	model  anthropic.Model
}

// NewAnthropicBackend 创建 Anthropic 后端
func NewAnthropicBackend(apiKey, model string, opts ...option.RequestOption) *AnthropicBackend {
	if model == "" {
		model = DefaultModel(ProviderAnthropic)
	}
	opts = append([]option.RequestOption{option.WithAPIKey(apiKey), option.WithMaxRetries(0)}, opts...)
	client := anthropic.NewClient(opts...)
	return &AnthropicBackend{client: &client, model: anthropic.Model(model)}
}

func (b *AnthropicBackend) Name() string { return string(ProviderAnthropic) }

func (b *AnthropicBackend) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := b.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     b.model,
		MaxTokens: 2048,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		kind := classifyMessage(err)
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			kind = classifyStatus(apiErr.StatusCode)
		}
		return "", &BackendError{Provider: b.Name(), Kind: kind, Err: err}
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	return sb.String(), nil
}
