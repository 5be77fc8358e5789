package factory

import (
	"fmt"

	"github.com/iWorld-y/briefing_radar/app/briefing/pkg/config"
	"github.com/iWorld-y/briefing_radar/app/briefing/pkg/search"
	"github.com/iWorld-y/briefing_radar/app/briefing/pkg/search/exa"
	"github.com/iWorld-y/briefing_radar/app/briefing/pkg/search/searxng"
	"github.com/iWorld-y/briefing_radar/app/briefing/pkg/search/tavily"
)

// RequiresKey 该提供方是否需要请求方提供密钥
func RequiresKey(provider string) bool {
	return provider != "searxng"
}

// NewSearcher 根据配置和本次请求的密钥创建搜索实例
func NewSearcher(cfg *config.Config, apiKey string) (search.Searcher, error) {
	provider := cfg.SearchProvider()

	switch provider {
	case "exa":
		if apiKey == "" {
			return nil, fmt.Errorf("exa: %w", search.ErrMissingAPIKey)
		}
		return exa.NewClient(apiKey), nil

	case "tavily":
		if apiKey == "" {
			return nil, fmt.Errorf("tavily: %w", search.ErrMissingAPIKey)
		}
		return tavily.NewClient(apiKey), nil

	case "searxng":
		baseURL := cfg.Search.SearXNG.BaseURL
		if baseURL == "" {
			return nil, fmt.Errorf("searxng base url is missing")
		}
		return searxng.NewClient(baseURL, cfg.Search.SearXNG.Timeout), nil

	default:
		return nil, fmt.Errorf("unknown search provider: %s", provider)
	}
}
