package llm

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// compatibleBaseURLs OpenAI 协议兼容的提供方
var compatibleBaseURLs = map[ProviderID]string{
	ProviderGroq:       "https://api.groq.com/openai/v1",
	ProviderDeepSeek:   "https://api.deepseek.com/v1",
	ProviderOpenRouter: "https://openrouter.ai/api/v1",
}

// CompatibleBackend 通过 eino 的 OpenAI ChatModel 访问兼容协议的提供方
type CompatibleBackend struct {
	name      string
	chatModel model.BaseChatModel
}

// NewCompatibleBackend 创建兼容后端，baseURL 为空时按 provider 取默认地址
func NewCompatibleBackend(ctx context.Context, provider ProviderID, baseURL, apiKey, modelName string) (*CompatibleBackend, error) {
	if baseURL == "" {
		baseURL = compatibleBaseURLs[provider]
	}
	if modelName == "" {
		modelName = DefaultModel(provider)
	}

	chatModel, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Model:   modelName,
	})
	if err != nil {
		return nil, fmt.Errorf("LLM 初始化失败 [%s]: %w", provider, err)
	}
	return &CompatibleBackend{name: string(provider), chatModel: chatModel}, nil
}

func (b *CompatibleBackend) Name() string { return b.name }

func (b *CompatibleBackend) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := b.chatModel.Generate(ctx, []*schema.Message{schema.UserMessage(prompt)})
	if err != nil {
		return "", &BackendError{Provider: b.name, Kind: classifyMessage(err), Err: err}
	}
	if resp == nil {
		return "", &BackendError{Provider: b.name, Kind: FailureEmpty, Err: ErrEmptyResponse}
	}
	return resp.Content, nil
}
