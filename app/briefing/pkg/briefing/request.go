package briefing

import (
	"errors"
	"fmt"

	"github.com/iWorld-y/briefing_radar/app/briefing/pkg/llm"
	"github.com/iWorld-y/briefing_radar/app/briefing/pkg/search/factory"
	"github.com/iWorld-y/briefing_radar/app/briefing/pkg/sources"
)

var (
	// ErrMissingCredential 缺少搜索密钥或没有任何模型密钥，在任何外部调用之前拒绝
	ErrMissingCredential = errors.New("briefing: missing credential")
	// ErrInvalidDomain 域名为空或无法解析
	ErrInvalidDomain = errors.New("briefing: invalid domain")
)

// Request 一次简报请求。密钥只在本次请求内使用
type Request struct {
	Domain            string
	SearchKey         string
	Providers         []llm.ProviderConfig
	ForceRefresh      bool
	EnhancedSentiment *bool // nil 时使用配置中的开关
}

// Validate 检查域名和凭据
func (o *Orchestrator) Validate(req Request) error {
	if sources.NormalizeDomain(req.Domain) == "" {
		return fmt.Errorf("%w: %q", ErrInvalidDomain, req.Domain)
	}
	if factory.RequiresKey(o.cfg.SearchProvider()) && req.SearchKey == "" {
		return fmt.Errorf("%w: %s api key is required", ErrMissingCredential, o.cfg.SearchProvider())
	}
	if len(req.Providers) == 0 {
		return fmt.Errorf("%w: at least one language model api key is required", ErrMissingCredential)
	}
	return nil
}

func (o *Orchestrator) enhancedEnabled(req Request) bool {
	if req.EnhancedSentiment != nil {
		return *req.EnhancedSentiment
	}
	return o.cfg.Features.EnhancedSentiment
}
