package llm

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNoProviders 没有任何可用的模型凭据
	ErrNoProviders = errors.New("llm: no providers configured")
	// ErrProviderExhausted 所有后端都失败
	ErrProviderExhausted = errors.New("llm: all providers failed")
	// ErrMalformedOutput JSON 模式下模型输出无法解析
	ErrMalformedOutput = errors.New("llm: malformed model output")
	// ErrEmptyResponse 后端返回空文本
	ErrEmptyResponse = errors.New("llm: empty response")
)

// FailureKind 后端失败类型
type FailureKind string

const (
	FailureEmpty       FailureKind = "empty"
	FailureRateLimited FailureKind = "rate_limited"
	FailureInvalidKey  FailureKind = "invalid_key"
	FailureTransport   FailureKind = "transport"
	FailureOther       FailureKind = "other"
)

// BackendError 单个后端的失败
type BackendError struct {
	Provider string
	Kind     FailureKind
	Err      error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("%s (%s): %v", e.Provider, e.Kind, e.Err)
}

func (e *BackendError) Unwrap() error { return e.Err }

// ExhaustedError 所有后端都失败，携带最后一个原因
type ExhaustedError struct {
	Attempts int
	Last     error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("llm: all %d providers failed, last: %v", e.Attempts, e.Last)
}

func (e *ExhaustedError) Unwrap() error { return e.Last }

func (e *ExhaustedError) Is(target error) bool { return target == ErrProviderExhausted }

// MalformedOutputError 模型输出不是合法 JSON
type MalformedOutputError struct {
	Raw string
	Err error
}

func (e *MalformedOutputError) Error() string {
	return fmt.Sprintf("llm: malformed output: %v", e.Err)
}

func (e *MalformedOutputError) Unwrap() error { return e.Err }

func (e *MalformedOutputError) Is(target error) bool { return target == ErrMalformedOutput }

// classifyStatus 按 HTTP 状态码归类
func classifyStatus(code int) FailureKind {
	switch {
	case code == 429:
		return FailureRateLimited
	case code == 401 || code == 403:
		return FailureInvalidKey
	case code >= 500:
		return FailureTransport
	default:
		return FailureOther
	}
}

// classifyMessage 对只能拿到错误文本的 SDK 做粗略归类
func classifyMessage(err error) FailureKind {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "429") || strings.Contains(msg, "rate limit") || strings.Contains(msg, "too many requests") || strings.Contains(msg, "resource_exhausted"):
		return FailureRateLimited
	case strings.Contains(msg, "401") || strings.Contains(msg, "403") || strings.Contains(msg, "api key") || strings.Contains(msg, "unauthorized") || strings.Contains(msg, "permission_denied"):
		return FailureInvalidKey
	case strings.Contains(msg, "timeout") || strings.Contains(msg, "connection") || strings.Contains(msg, "eof"):
		return FailureTransport
	default:
		return FailureOther
	}
}

// KindOf 取出错误的失败类型
func KindOf(err error) FailureKind {
	var be *BackendError
	if errors.As(err, &be) {
		return be.Kind
	}
	return FailureOther
}
