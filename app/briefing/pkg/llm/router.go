package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/iWorld-y/briefing_radar/app/briefing/pkg/logger"
)

// jsonInstruction JSON 模式追加到提示词末尾
const jsonInstruction = "\n\nRespond with raw JSON only. Do not wrap it in markdown code fences and do not add any commentary before or after the JSON."

// Router 按顺序尝试各后端：空响应、报错、限流、密钥无效都视为失败并尝试下一个
type Router struct {
	backends []Backend
	limiter  *rate.Limiter
}

// NewRouter 创建路由器，backends 的顺序即优先级
func NewRouter(backends ...Backend) *Router {
	return &Router{backends: backends}
}

// WithRPM 为模型调用增加每分钟请求数限制，rpm <= 0 不限制
func (r *Router) WithRPM(rpm int) *Router {
	if rpm > 0 {
		r.limiter = rate.NewLimiter(rate.Limit(float64(rpm)/60.0), 1)
	}
	return r
}

// Len 后端数量
func (r *Router) Len() int { return len(r.backends) }

// Names 后端名称列表
func (r *Router) Names() []string {
	names := make([]string, 0, len(r.backends))
	for _, b := range r.backends {
		names = append(names, b.Name())
	}
	return names
}

// GenerateText 依次调用后端，返回第一个非空结果
func (r *Router) GenerateText(ctx context.Context, prompt string) (string, error) {
	if r == nil || len(r.backends) == 0 {
		return "", ErrNoProviders
	}

	var lastErr error
	for _, b := range r.backends {
		if r.limiter != nil {
			if err := r.limiter.Wait(ctx); err != nil {
				return "", err
			}
		}

		start := time.Now()
		text, err := b.Complete(ctx, prompt)
		if err == nil && strings.TrimSpace(text) == "" {
			err = &BackendError{Provider: b.Name(), Kind: FailureEmpty, Err: ErrEmptyResponse}
		}
		if err != nil {
			logger.Log.Debugf("模型后端失败 [%s] kind=%s cost=%s: %v", b.Name(), KindOf(err), time.Since(start), err)
			lastErr = err
			continue
		}
		return text, nil
	}

	logger.Log.Warnf("所有模型后端均失败 (%d): %v", len(r.backends), lastErr)
	return "", &ExhaustedError{Attempts: len(r.backends), Last: lastErr}
}

// GenerateJSON 以 JSON 模式调用并解析为 T。
// 后端全部失败返回 *ExhaustedError，输出无法解析返回 *MalformedOutputError。
func GenerateJSON[T any](ctx context.Context, r *Router, prompt string) (T, error) {
	var out T

	text, err := r.GenerateText(ctx, prompt+jsonInstruction)
	if err != nil {
		return out, err
	}

	raw, err := ExtractJSON(text)
	if err != nil {
		logger.Log.Warnf("模型输出中未找到 JSON: %s", truncate(text, 200))
		return out, &MalformedOutputError{Raw: text, Err: err}
	}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		logger.Log.Warnf("模型输出 JSON 解析失败: %v, raw=%s", err, truncate(raw, 200))
		return out, &MalformedOutputError{Raw: raw, Err: fmt.Errorf("json unmarshal: %w", err)}
	}
	return out, nil
}

// IsFallbackWorthy 调用方是否应使用本地兜底值（后端耗尽或输出异常）
func IsFallbackWorthy(err error) bool {
	return errors.Is(err, ErrProviderExhausted) || errors.Is(err, ErrMalformedOutput) || errors.Is(err, ErrNoProviders)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
