package server

import (
	"github.com/go-kratos/kratos/v2/log"

	"github.com/iWorld-y/briefing_radar/app/briefing/internal/conf"
	"github.com/iWorld-y/briefing_radar/app/briefing/pkg/briefing"
	"github.com/iWorld-y/briefing_radar/app/briefing/pkg/config"
	brLogger "github.com/iWorld-y/briefing_radar/app/briefing/pkg/logger"
)

// NewEngineConfig 将 internal/conf.Briefing 转换为 pkg/config.Config
func NewEngineConfig(c *conf.Briefing) *config.Config {
	cfg := &config.Config{}
	if c == nil {
		return cfg
	}
	if c.Search != nil {
		cfg.Search.Provider = c.Search.Provider
		if c.Search.Searxng != nil {
			cfg.Search.SearXNG = config.SearXNGConfig{
				BaseURL: c.Search.Searxng.BaseUrl,
				Timeout: int(c.Search.Searxng.Timeout),
			}
		}
	}
	if c.Llm != nil {
		cfg.LLM = config.LLMConfig{Order: c.Llm.Order, Models: c.Llm.Models, RPM: int(c.Llm.Rpm)}
	}
	if c.Log != nil {
		cfg.Log = config.LogConfig{Level: c.Log.Level, File: c.Log.File}
	}
	if c.Concurrency != nil {
		cfg.Concurrency = config.ConcurrencyConfig{
			SearchLimit:      int(c.Concurrency.SearchLimit),
			SignalIntervalMS: int(c.Concurrency.SignalIntervalMs),
		}
	}
	if c.Cache != nil {
		cfg.Cache.TTL = c.Cache.Ttl
	}
	if c.Features != nil {
		cfg.Features.EnhancedSentiment = c.Features.EnhancedSentiment
	}
	if c.Http != nil {
		cfg.HTTP.HomepageTimeout = c.Http.HomepageTimeout
	}
	return cfg
}

// NewOrchestrator 初始化简报编排器
func NewOrchestrator(cfg *config.Config, logger log.Logger) (*briefing.Orchestrator, func(), error) {
	helper := log.NewHelper(logger)

	// 初始化引擎日志
	if err := brLogger.InitLogger(cfg.Log.Level, cfg.Log.File); err != nil {
		helper.Errorf("Failed to init briefing logger: %v", err)
		_ = brLogger.InitLogger("info", "") // 降级处理
	}

	orch := briefing.New(cfg)
	helper.Infof("briefing engine ready: search=%s limit=%d cache_ttl=%s",
		cfg.SearchProvider(), cfg.SearchLimit(), cfg.CacheTTL())

	cleanup := func() {
		helper.Info("Cleaning up briefing engine")
	}
	return orch, cleanup, nil
}
