// Package llm 封装多个可互换的大模型后端，按顺序回退，并提供 JSON 模式。
package llm

import (
	"context"
	"strings"
)

// ProviderID 后端标识
type ProviderID string

const (
	ProviderOpenAI     ProviderID = "openai"
	ProviderAnthropic  ProviderID = "anthropic"
	ProviderGemini     ProviderID = "gemini"
	ProviderGroq       ProviderID = "groq"
	ProviderDeepSeek   ProviderID = "deepseek"
	ProviderOpenRouter ProviderID = "openrouter"
)

// DefaultOrder 请求未指定优先级时的默认顺序
var DefaultOrder = []ProviderID{
	ProviderOpenAI, ProviderAnthropic, ProviderGemini,
	ProviderGroq, ProviderDeepSeek, ProviderOpenRouter,
}

var defaultModels = map[ProviderID]string{
	ProviderOpenAI:     "gpt-4o-mini",
	ProviderAnthropic:  "claude-haiku-4-5",
	ProviderGemini:     "gemini-2.5-flash",
	ProviderGroq:       "llama-3.3-70b-versatile",
	ProviderDeepSeek:   "deepseek-chat",
	ProviderOpenRouter: "openai/gpt-4o-mini",
}

// DefaultModel 返回后端的默认模型
func DefaultModel(p ProviderID) string {
	return defaultModels[p]
}

// Known 是否为已支持的后端
func Known(p ProviderID) bool {
	_, ok := defaultModels[p]
	return ok
}

// ProviderConfig 单个后端的凭据，每次请求临时构造，不缓存也不打印
type ProviderConfig struct {
	Provider ProviderID
	APIKey   string
	Model    string
}

// String 不输出密钥
func (c ProviderConfig) String() string {
	return string(c.Provider) + ":" + c.model()
}

func (c ProviderConfig) model() string {
	if c.Model != "" {
		return c.Model
	}
	return DefaultModel(c.Provider)
}

// Backend 单个模型后端的能力接口。实现方负责把自身错误归类为 *BackendError
type Backend interface {
	Name() string
	Complete(ctx context.Context, prompt string) (string, error)
}

// ProviderConfigsFromKeys 根据请求携带的密钥和优先级构造有序的后端配置，空密钥跳过
func ProviderConfigsFromKeys(keys map[string]string, order []string, models map[string]string) []ProviderConfig {
	ids := make([]ProviderID, 0, len(DefaultOrder))
	seen := make(map[ProviderID]bool)
	for _, o := range order {
		id := ProviderID(strings.ToLower(strings.TrimSpace(o)))
		if Known(id) && !seen[id] {
			ids = append(ids, id)
			seen[id] = true
		}
	}
	for _, id := range DefaultOrder {
		if !seen[id] {
			ids = append(ids, id)
			seen[id] = true
		}
	}

	var cfgs []ProviderConfig
	for _, id := range ids {
		key := strings.TrimSpace(keys[string(id)])
		if key == "" {
			continue
		}
		cfgs = append(cfgs, ProviderConfig{Provider: id, APIKey: key, Model: models[string(id)]})
	}
	return cfgs
}
