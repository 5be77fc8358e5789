package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	nethttp "net/http"

	kerrors "github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-kratos/kratos/v2/transport/http"

	"github.com/iWorld-y/briefing_radar/app/briefing/pkg/briefing"
	"github.com/iWorld-y/briefing_radar/app/briefing/pkg/config"
	"github.com/iWorld-y/briefing_radar/app/briefing/pkg/llm"
)

const (
	StreamPath       = "/api/briefing/stream"
	ConsolidatedPath = "/api/briefing"
	HealthPath       = "/healthz"
)

// BriefRequest 请求体。keys 以提供方名称为键，例如 exa、tavily、openai、anthropic
type BriefRequest struct {
	Domain            string            `json:"domain"`
	Keys              map[string]string `json:"keys"`
	Order             []string          `json:"order,omitempty"`
	ForceRefresh      bool              `json:"forceRefresh,omitempty"`
	EnhancedSentiment *bool             `json:"enhancedSentiment,omitempty"`
}

// Briefer 编排器在服务层需要的能力
type Briefer interface {
	Validate(req briefing.Request) error
	Stream(ctx context.Context, req briefing.Request, out chan<- briefing.Event) error
	Consolidated(ctx context.Context, req briefing.Request) (*briefing.ConsolidatedReport, error)
}

type BriefingService struct {
	orch Briefer
	cfg  *config.Config
	log  *log.Helper
}

func NewBriefingService(orch *briefing.Orchestrator, cfg *config.Config, logger log.Logger) *BriefingService {
	return newBriefingService(orch, cfg, logger)
}

func newBriefingService(orch Briefer, cfg *config.Config, logger log.Logger) *BriefingService {
	return &BriefingService{
		orch: orch,
		cfg:  cfg,
		log:  log.NewHelper(logger),
	}
}

// Register 注册路由
func Register(srv *http.Server, s *BriefingService) {
	srv.HandleFunc(StreamPath, s.Stream)
	r := srv.Route("/")
	r.POST(ConsolidatedPath, s.Consolidated)
	r.GET(HealthPath, s.Health)
}

func (s *BriefingService) toRequest(body BriefRequest) briefing.Request {
	order := body.Order
	if len(order) == 0 {
		order = s.cfg.LLM.Order
	}
	return briefing.Request{
		Domain:            body.Domain,
		SearchKey:         body.Keys[s.cfg.SearchProvider()],
		Providers:         llm.ProviderConfigsFromKeys(body.Keys, order, s.cfg.LLM.Models),
		ForceRefresh:      body.ForceRefresh,
		EnhancedSentiment: body.EnhancedSentiment,
	}
}

// Stream 以 SSE 推送简报的各个阶段
func (s *BriefingService) Stream(w nethttp.ResponseWriter, r *nethttp.Request) {
	if r.Method != nethttp.MethodPost {
		http.DefaultErrorEncoder(w, r, kerrors.New(nethttp.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "use POST"))
		return
	}
	var body BriefRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.DefaultErrorEncoder(w, r, kerrors.BadRequest("INVALID_BODY", err.Error()))
		return
	}
	req := s.toRequest(body)
	if err := s.orch.Validate(req); err != nil {
		http.DefaultErrorEncoder(w, r, toAPIError(err))
		return
	}

	events := make(chan briefing.Event, 16)
	done := make(chan error, 1)
	ctx := context.WithoutCancel(r.Context())
	go func() {
		done <- s.orch.Stream(ctx, req, events)
	}()

	// 首个事件到达之前的失败仍然可以用普通的错误响应返回
	first, ok := <-events
	if !ok {
		if err := <-done; err != nil {
			http.DefaultErrorEncoder(w, r, toAPIError(err))
			return
		}
		done <- nil
	}

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(nethttp.StatusOK)

	rc := nethttp.NewResponseController(w)
	send := func(e briefing.Event) error {
		if err := writeEvent(w, e); err != nil {
			return err
		}
		return rc.Flush()
	}

	if ok {
		if err := send(first); err != nil {
			s.abandon(body.Domain, err, events)
			return
		}
	}
	for e := range events {
		if err := send(e); err != nil {
			s.abandon(body.Domain, err, events)
			return
		}
	}
	if err := <-done; err != nil {
		s.log.Warnf("briefing stream for %s ended with error: %v", body.Domain, err)
	}
}

// abandon 客户端断开后继续排空事件，让编排器正常结束
func (s *BriefingService) abandon(domain string, err error, events <-chan briefing.Event) {
	s.log.Infof("client left briefing stream for %s: %v", domain, err)
	go func() {
		for range events {
		}
	}()
}

func writeEvent(w io.Writer, e briefing.Event) error {
	data, err := json.Marshal(e.Data)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", e.Name, data)
	return err
}

// Consolidated 一次性返回整合报告
func (s *BriefingService) Consolidated(ctx http.Context) error {
	var body BriefRequest
	if err := ctx.Bind(&body); err != nil {
		return kerrors.BadRequest("INVALID_BODY", err.Error())
	}
	report, err := s.orch.Consolidated(context.WithoutCancel(ctx), s.toRequest(body))
	if err != nil {
		return toAPIError(err)
	}
	return ctx.JSON(nethttp.StatusOK, report)
}

func (s *BriefingService) Health(ctx http.Context) error {
	return ctx.JSON(nethttp.StatusOK, map[string]string{"status": "ok"})
}

func toAPIError(err error) error {
	switch {
	case errors.Is(err, briefing.ErrMissingCredential):
		return kerrors.BadRequest("MISSING_CREDENTIAL", err.Error())
	case errors.Is(err, briefing.ErrInvalidDomain):
		return kerrors.BadRequest("INVALID_DOMAIN", err.Error())
	default:
		return kerrors.InternalServer("BRIEFING_FAILED", err.Error())
	}
}
