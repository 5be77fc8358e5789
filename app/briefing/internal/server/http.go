package server

import (
	"time"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-kratos/kratos/v2/middleware/recovery"
	"github.com/go-kratos/kratos/v2/transport/http"

	"github.com/iWorld-y/briefing_radar/app/briefing/internal/conf"
	"github.com/iWorld-y/briefing_radar/app/briefing/internal/service"
)

// DefaultTimeout 流式简报耗时较长，默认超时需要覆盖整条管线
const DefaultTimeout = 5 * time.Minute

func NewHTTPServer(c *conf.Server, s *service.BriefingService, logger log.Logger) *http.Server {
	var opts = []http.ServerOption{
		http.Middleware(
			recovery.Recovery(),
		),
		http.Logger(logger),
		http.Timeout(DefaultTimeout),
	}
	if c != nil && c.Http != nil {
		if c.Http.Addr != "" {
			opts = append(opts, http.Address(c.Http.Addr))
		}
		if c.Http.Timeout != "" {
			if d, err := time.ParseDuration(c.Http.Timeout); err == nil {
				opts = append(opts, http.Timeout(d))
			}
		}
	}

	srv := http.NewServer(opts...)
	service.Register(srv, s)
	return srv
}
