package server

import (
	"github.com/google/wire"

	"github.com/iWorld-y/briefing_radar/app/briefing/internal/service"
)

// ProviderSet 是简报服务的依赖注入 Provider 集合
var ProviderSet = wire.NewSet(
	// Server providers
	NewHTTPServer,

	// Engine providers
	NewEngineConfig,
	NewOrchestrator,

	// Service providers
	service.NewBriefingService,
)
