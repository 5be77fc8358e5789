package llm

import (
	"context"
	"errors"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAIBackend 基于 openai-go 的后端
type OpenAIBackend struct {
	client *openai.Client
	model  string
}

// NewOpenAIBackend 创建 OpenAI 后端，关闭 SDK 自带的重试
func NewOpenAIBackend(apiKey, model string, opts ...option.RequestOption) *OpenAIBackend {
	if model == "" {
		model = DefaultModel(ProviderOpenAI)
	}
	opts = append([]option.RequestOption{option.WithAPIKey(apiKey), option.WithMaxRetries(0)}, opts...)
	client := openai.NewClient(opts...)
	return &OpenAIBackend{client: &client, model: model}
}

func (b *OpenAIBackend) Name() string { return string(ProviderOpenAI) }

func (b *OpenAIBackend) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := b.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(b.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
	})
	if err != nil {
		kind := classifyMessage(err)
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			kind = classifyStatus(apiErr.StatusCode)
		}
		return "", &BackendError{Provider: b.Name(), Kind: kind, Err: err}
	}

	if len(resp.Choices) == 0 {
		return "", &BackendError{Provider: b.Name(), Kind: FailureEmpty, Err: ErrEmptyResponse}
	}
	return resp.Choices[0].Message.Content, nil
}
