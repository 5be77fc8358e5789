// Package briefing 流式竞争情报简报的编排器：按固定顺序执行各阶段并逐条发送事件，
// 每个阶段失败时退化为默认值，管线继续执行。
package briefing

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/iWorld-y/briefing_radar/app/briefing/pkg/analytics"
	"github.com/iWorld-y/briefing_radar/app/briefing/pkg/cache"
	"github.com/iWorld-y/briefing_radar/app/briefing/pkg/canonical"
	"github.com/iWorld-y/briefing_radar/app/briefing/pkg/config"
	"github.com/iWorld-y/briefing_radar/app/briefing/pkg/limiter"
	"github.com/iWorld-y/briefing_radar/app/briefing/pkg/llm"
	"github.com/iWorld-y/briefing_radar/app/briefing/pkg/logger"
	"github.com/iWorld-y/briefing_radar/app/briefing/pkg/mention"
	"github.com/iWorld-y/briefing_radar/app/briefing/pkg/model"
	"github.com/iWorld-y/briefing_radar/app/briefing/pkg/profile"
	"github.com/iWorld-y/briefing_radar/app/briefing/pkg/search"
	"github.com/iWorld-y/briefing_radar/app/briefing/pkg/search/factory"
	"github.com/iWorld-y/briefing_radar/app/briefing/pkg/sources"
)

// SearcherFactory 根据本次请求的密钥构造搜索客户端
type SearcherFactory func(apiKey string) (search.Searcher, error)

// Orchestrator 简报编排器。缓存和限流器在构造时创建，所有请求共享
type Orchestrator struct {
	cfg         *config.Config
	limiter     *limiter.Limiter
	canonical   *canonical.Resolver
	profiles    *profile.Generator
	newSearcher SearcherFactory
	newBackend  llm.BackendFactory
	now         func() time.Time
	rng         *rand.Rand
	rngMu       sync.Mutex
}

// Option 编排器选项
type Option func(*Orchestrator)

// WithSearcherFactory 替换搜索客户端工厂
func WithSearcherFactory(f SearcherFactory) Option {
	return func(o *Orchestrator) { o.newSearcher = f }
}

// WithBackendFactory 替换模型后端工厂
func WithBackendFactory(f llm.BackendFactory) Option {
	return func(o *Orchestrator) { o.newBackend = f }
}

// WithClock 替换时钟
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

// WithRand 指定历史序列扰动使用的随机源
func WithRand(r *rand.Rand) Option {
	return func(o *Orchestrator) { o.rng = r }
}

// WithCanonicalResolver 替换规范身份解析器
func WithCanonicalResolver(r *canonical.Resolver) Option {
	return func(o *Orchestrator) { o.canonical = r }
}

// WithProfileGenerator 替换画像生成器
func WithProfileGenerator(g *profile.Generator) Option {
	return func(o *Orchestrator) { o.profiles = g }
}

// New 创建编排器
func New(cfg *config.Config, opts ...Option) *Orchestrator {
	if cfg == nil {
		cfg = &config.Config{}
	}
	o := &Orchestrator{
		cfg:     cfg,
		limiter: limiter.New(cfg.SearchLimit()),
		canonical: canonical.NewResolver(
			cache.NewTTL[model.CanonicalInfo](cfg.CacheTTL()),
			canonical.WithTimeout(cfg.HomepageTimeout()),
		),
		profiles:   profile.NewGenerator(cache.NewTTL[model.CompanyProfile](cfg.CacheTTL())),
		newBackend: llm.NewBackend,
		now:        time.Now,
	}
	o.newSearcher = func(apiKey string) (search.Searcher, error) {
		return factory.NewSearcher(cfg, apiKey)
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// run 单次请求的状态
type run struct {
	o        *Orchestrator
	req      Request
	domain   string
	stem     string
	router   *llm.Router
	mentions *mention.Client
	log      *logrus.Entry
	out      chan<- Event
	start    time.Time
}

// prepare 校验请求并构造本次请求使用的搜索客户端和模型路由，不发起任何外部调用
func (o *Orchestrator) prepare(ctx context.Context, req Request) (*run, error) {
	if err := o.Validate(req); err != nil {
		return nil, err
	}
	searcher, err := o.newSearcher(req.SearchKey)
	if err != nil {
		if errors.Is(err, search.ErrMissingAPIKey) {
			return nil, fmt.Errorf("%w: %v", ErrMissingCredential, err)
		}
		return nil, fmt.Errorf("build searcher: %w", err)
	}
	router, err := llm.BuildRouter(ctx, req.Providers, o.newBackend)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMissingCredential, err)
	}
	router.WithRPM(o.cfg.LLM.RPM)

	domain := sources.NormalizeDomain(req.Domain)
	requestID := uuid.NewString()
	log := logger.ForRequest(requestID).WithField("domain", domain)
	log.Infof("简报开始，模型后端: %v", router.Names())

	return &run{
		o:        o,
		req:      req,
		domain:   domain,
		stem:     sources.Stem(domain),
		router:   router,
		mentions: mention.NewClient(searcher, o.limiter, o.cfg.SignalInterval()).WithClock(o.now),
		log:      log,
		start:    o.now(),
	}, nil
}

// Stream 执行完整管线并把事件写入 out，结束时关闭 out。
// 凭据缺失时直接返回 ErrMissingCredential，不写入任何事件。
// 执行过程中的异常转换为一条 error 事件。ctx 的取消不会中断已经发出的上游调用。
func (o *Orchestrator) Stream(ctx context.Context, req Request, out chan<- Event) (err error) {
	defer close(out)

	ctx = context.WithoutCancel(ctx)
	r, err := o.prepare(ctx, req)
	if err != nil {
		return err
	}
	r.out = out

	defer func() {
		if rec := recover(); rec != nil {
			r.log.Errorf("简报执行异常: %v\n%s", rec, debug.Stack())
			r.emit(EventError, ErrorPayload{Message: fmt.Sprintf("briefing failed: %v", rec)})
			err = fmt.Errorf("briefing panic: %v", rec)
		}
	}()

	if err := r.execute(ctx); err != nil {
		r.log.Errorf("简报执行失败: %v", err)
		r.emit(EventError, ErrorPayload{Message: err.Error()})
		return err
	}
	return nil
}

func (r *run) emit(name string, data any) {
	r.log.Debugf("发送事件 [%s]", name)
	r.out <- Event{Name: name, Data: data}
}

// settle 并发执行一组子任务并等待全部结束；单个子任务 panic 只记录日志
func (r *run) settle(tasks ...func()) {
	var wg sync.WaitGroup
	for _, task := range tasks {
		wg.Add(1)
		go func(task func()) {
			defer wg.Done()
			defer func() {
				if rec := recover(); rec != nil {
					r.log.Errorf("子任务异常: %v\n%s", rec, debug.Stack())
				}
			}()
			task()
		}(task)
	}
	wg.Wait()
}

// execute 依次执行阶段 0-10
func (r *run) execute(ctx context.Context) error {
	// 0. 规范身份
	info := r.resolveCanonical(ctx)
	r.emit(EventCanonical, info)

	// 1. 画像快照
	snapshot := r.snapshot(ctx, info)
	r.emit(EventOverview, OverviewPayload{Overview: snapshot.Overview, Profile: snapshot})

	// 2. 领导层与公司字段
	team := r.leadershipAndDetails(ctx, snapshot)
	r.emit(EventProfile, team.details)
	r.emit(EventFounders, team.founders)
	r.emit(EventLeadership, team.leadership)
	r.emit(EventSocials, team.socials)

	// 3. 竞争对手 + 主体提及
	var competitors []model.Competitor
	var primary []model.Mention
	r.settle(
		func() { competitors = r.discoverCompetitors(ctx, snapshot) },
		func() { primary = r.mentions.FetchMentions(ctx, r.domain) },
	)
	r.emit(EventCompetitors, competitors)

	// 4. 别名过滤与查询扩展
	primary = r.refineMentions(ctx, primary, info, snapshot)

	// 5. 主体新闻
	companyNews := r.companyNews(ctx, primary, snapshot)
	r.emit(EventCompanyNews, companyNews)

	// 6. 竞品新闻（开启增强情绪时同时拉取业务信号）
	entities := []*entity{{domain: r.domain, name: snapshot.Name, mentions: primary}}
	for _, c := range competitors {
		entities = append(entities, &entity{domain: c.Domain, name: c.Name})
	}
	enhanced := r.o.enhancedEnabled(r.req)
	var signals []model.BusinessEvent
	competitorNews := r.competitorCoverage(ctx, entities[1:], func() {
		if enhanced {
			signals = r.mentions.FetchSignals(ctx, r.domain)
		}
	})
	r.emit(EventCompetitorNews, competitorNews)

	// 7-8. 情绪与基准矩阵
	r.scoreSentiment(ctx, entities)
	rows := r.benchmark(entities, signals, enhanced)
	r.emit(EventSentiment, SentimentPayload{Rows: rows})

	// 9. 执行摘要
	r.emit(EventSummary, r.summarize(ctx, snapshot, team, rows, companyNews, competitors))

	// 10. 完成
	elapsed := r.o.now().Sub(r.start)
	r.log.Infof("简报完成，耗时 %s", elapsed)
	r.emit(EventDone, DonePayload{ElapsedMs: elapsed.Milliseconds()})
	return nil
}

// entity 参与基准对比的实体（主体或竞品）
type entity struct {
	domain    string
	name      string
	mentions  []model.Mention
	sentiment int
}

// history 生成历史情绪序列；共享随机源需要加锁
func (o *Orchestrator) history(mentions []model.Mention, score int, now time.Time) []model.HistoricalPoint {
	o.rngMu.Lock()
	defer o.rngMu.Unlock()
	return analytics.HistoricalSeries(mentions, score, now, o.rng)
}
