package llm

import (
	"context"
	"fmt"

	"github.com/iWorld-y/briefing_radar/app/briefing/pkg/logger"
)

// BackendFactory 根据配置构造后端，测试中可替换
type BackendFactory func(ctx context.Context, cfg ProviderConfig) (Backend, error)

// NewBackend 默认的后端工厂
func NewBackend(ctx context.Context, cfg ProviderConfig) (Backend, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%s: api key is empty", cfg.Provider)
	}

	switch cfg.Provider {
	case ProviderOpenAI:
		return NewOpenAIBackend(cfg.APIKey, cfg.Model), nil
	case ProviderAnthropic:
		return NewAnthropicBackend(cfg.APIKey, cfg.Model), nil
	case ProviderGemini:
		return NewGeminiBackend(ctx, cfg.APIKey, cfg.Model)
	case ProviderGroq, ProviderDeepSeek, ProviderOpenRouter:
		return NewCompatibleBackend(ctx, cfg.Provider, "", cfg.APIKey, cfg.Model)
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", cfg.Provider)
	}
}

// BuildRouter 按顺序构造后端，构造失败的后端被跳过；一个都没有时返回 ErrNoProviders
func BuildRouter(ctx context.Context, cfgs []ProviderConfig, factory BackendFactory) (*Router, error) {
	if factory == nil {
		factory = NewBackend
	}

	backends := make([]Backend, 0, len(cfgs))
	for _, cfg := range cfgs {
		b, err := factory(ctx, cfg)
		if err != nil {
			logger.Log.Warnf("跳过模型后端 [%s]: %v", cfg.Provider, err)
			continue
		}
		backends = append(backends, b)
	}
	if len(backends) == 0 {
		return nil, ErrNoProviders
	}
	return NewRouter(backends...), nil
}
