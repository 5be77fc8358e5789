// Package mention 搜索客户端：提及、业务信号、公司新闻、创始人信息和临时查询。
// 所有搜索调用都经过全局并发限流器；单个查询失败只产生空结果，不影响同组其他查询。
package mention

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bytedance/gg/gson"

	"github.com/iWorld-y/briefing_radar/app/briefing/pkg/limiter"
	"github.com/iWorld-y/briefing_radar/app/briefing/pkg/logger"
	"github.com/iWorld-y/briefing_radar/app/briefing/pkg/model"
	"github.com/iWorld-y/briefing_radar/app/briefing/pkg/news"
	"github.com/iWorld-y/briefing_radar/app/briefing/pkg/search"
	"github.com/iWorld-y/briefing_radar/app/briefing/pkg/sources"
)

// 查询参数默认值
const (
	DefaultMentionLimit = 25
	DefaultNewsLimit    = 3

	mentionWindowDays = 14
	signalWindowDays  = 90
	newsWindowDays    = 30
	signalResults     = 10
	founderResults    = 5

	newsMinScore = 0.3
)

// Client 搜索客户端
type Client struct {
	searcher search.Searcher
	limiter  *limiter.Limiter
	pacer    *limiter.Pacer
	now      func() time.Time
}

// NewClient 创建搜索客户端；signalInterval 为业务信号查询之间的固定间隔
func NewClient(s search.Searcher, l *limiter.Limiter, signalInterval time.Duration) *Client {
	if l == nil {
		l = limiter.New(limiter.DefaultLimit)
	}
	return &Client{
		searcher: s,
		limiter:  l,
		pacer:    limiter.NewPacer(signalInterval),
		now:      time.Now,
	}
}

// WithClock 替换时钟，便于测试
func (c *Client) WithClock(now func() time.Time) *Client {
	c.now = now
	return c
}

// run 通过限流器执行一次查询，失败时记录日志并返回空结果
func (c *Client) run(ctx context.Context, req *search.Request) []search.Result {
	resp, err := limiter.Schedule(ctx, c.limiter, func(ctx context.Context) (*search.Response, error) {
		return c.searcher.Search(ctx, req)
	})
	if err != nil {
		logger.Log.Warnf("搜索失败 [%s]: %v", req.Query, err)
		return nil
	}
	if resp == nil {
		return nil
	}
	logger.Log.Debugf("搜索 [%s] 返回 %d 条: %s", req.Query, len(resp.Results), gson.ToString(resp))
	return resp.Results
}

func (c *Client) window(days int) (start, end string) {
	now := c.now().UTC()
	return now.AddDate(0, 0, -days).Format(time.DateOnly), now.Format(time.DateOnly)
}

// FetchMentions 最近 14 天关于 domain 的提及，去重、规范日期并过滤同名干扰
func (c *Client) FetchMentions(ctx context.Context, domain string) []model.Mention {
	return c.FetchMentionsN(ctx, domain, DefaultMentionLimit)
}

// FetchMentionsN 同 FetchMentions，可指定结果上限
func (c *Client) FetchMentionsN(ctx context.Context, domain string, n int) []model.Mention {
	domain = sources.NormalizeDomain(domain)
	if domain == "" {
		return nil
	}
	if n <= 0 {
		n = DefaultMentionLimit
	}
	start, end := c.window(mentionWindowDays)
	results := c.run(ctx, &search.Request{
		Query:      fmt.Sprintf("%q OR %q", domain, sources.Stem(domain)),
		Topic:      search.TopicNews,
		Type:       search.TypeNeural,
		MaxResults: n,
		StartDate:  start,
		EndDate:    end,
	})
	return FilterHomonyms(Dedupe(c.ToMentions(results, domain)), domain)
}

var signalQueries = []struct {
	kind  string
	query string
}{
	{model.EventFunding, "%s raises funding round investment"},
	{model.EventLaunch, "%s launches new product"},
	{model.EventAcquisition, "%s acquisition acquires company"},
	{model.EventLayoffs, "%s layoffs job cuts"},
}

// FetchSignals 按融资、发布、收购、裁员四类意图依次查询可信来源（90 天内）。
// 查询之间保持固定间隔，不并行。
func (c *Client) FetchSignals(ctx context.Context, domain string) []model.BusinessEvent {
	domain = sources.NormalizeDomain(domain)
	if domain == "" {
		return nil
	}
	start, end := c.window(signalWindowDays)
	subject := fmt.Sprintf("%q OR %q", domain, sources.Stem(domain))

	seen := make(map[string]struct{})
	var events []model.BusinessEvent
	for _, q := range signalQueries {
		if err := c.pacer.Wait(ctx); err != nil {
			logger.Log.Warnf("信号查询节流等待中断: %v", err)
			break
		}
		results := c.run(ctx, &search.Request{
			Query:          fmt.Sprintf(q.query, subject),
			Topic:          search.TopicNews,
			Type:           search.TypeNeural,
			MaxResults:     signalResults,
			StartDate:      start,
			EndDate:        end,
			IncludeDomains: sources.SignalSources,
		})
		for _, m := range c.ToMentions(results, domain) {
			if _, dup := seen[m.URL]; dup {
				continue
			}
			seen[m.URL] = struct{}{}
			events = append(events, model.BusinessEvent{Type: q.kind, Mention: m})
		}
	}
	return events
}

// FetchCompanyNews 依次尝试多个查询，去重打分后返回前 limit 条；
// 只要存在候选，至少返回一条
func (c *Client) FetchCompanyNews(ctx context.Context, domain string, limit int) []model.NewsItem {
	domain = sources.NormalizeDomain(domain)
	if domain == "" {
		return nil
	}
	if limit <= 0 {
		limit = DefaultNewsLimit
	}
	stem := sources.Stem(domain)
	start, end := c.window(newsWindowDays)
	queries := []string{
		fmt.Sprintf("%q news", domain),
		fmt.Sprintf("%q company announcement", stem),
		domain,
	}

	var candidates []model.Mention
	for _, q := range queries {
		results := c.run(ctx, &search.Request{
			Query:      q,
			Topic:      search.TopicNews,
			Type:       search.TypeAuto,
			MaxResults: 10,
			StartDate:  start,
			EndDate:    end,
		})
		candidates = Dedupe(append(candidates, c.ToMentions(results, domain)...))
		if len(candidates) >= limit*3 {
			break
		}
	}
	ranked := news.Rank(news.FromMentions(candidates), c.now())
	return news.SelectTop(ranked, limit, newsMinScore, 1)
}

// SearchFounderInfo 在人物/履历类来源中检索创始人和高管信息，返回原始结果供模型抽取
func (c *Client) SearchFounderInfo(ctx context.Context, domain, companyName string) []search.Result {
	domain = sources.NormalizeDomain(domain)
	name := strings.TrimSpace(companyName)
	if name == "" {
		name = sources.Stem(domain)
	}
	if name == "" {
		return nil
	}
	queries := []string{
		fmt.Sprintf("%q founder CEO", name),
		fmt.Sprintf("%q co-founder leadership team executives", name),
	}

	ch := make(chan []search.Result, len(queries))
	for _, q := range queries {
		go func(q string) {
			ch <- c.run(ctx, &search.Request{
				Query:          q,
				Topic:          search.TopicGeneral,
				Type:           search.TypeNeural,
				MaxResults:     founderResults,
				IncludeDomains: sources.PeopleSources,
			})
		}(q)
	}

	seen := make(map[string]struct{})
	var out []search.Result
	for range queries {
		for _, r := range <-ch {
			if _, dup := seen[r.URL]; dup || r.URL == "" {
				continue
			}
			seen[r.URL] = struct{}{}
			out = append(out, r)
		}
	}
	return out
}

// AdHocSearch 单次查询透传，用于查询扩展等场景
func (c *Client) AdHocSearch(ctx context.Context, query string, n int) []search.Result {
	if strings.TrimSpace(query) == "" {
		return nil
	}
	if n <= 0 {
		n = 10
	}
	start, end := c.window(mentionWindowDays)
	return c.run(ctx, &search.Request{
		Query:      query,
		Topic:      search.TopicNews,
		Type:       search.TypeNeural,
		MaxResults: n,
		StartDate:  start,
		EndDate:    end,
	})
}

// ToMentions 把搜索结果转换为提及：规范日期并按 domain 计算来源可信度
func (c *Client) ToMentions(results []search.Result, domain string) []model.Mention {
	now := c.now()
	out := make([]model.Mention, 0, len(results))
	for _, r := range results {
		if r.URL == "" {
			continue
		}
		host := strings.TrimPrefix(strings.ToLower(r.Domain), "www.")
		if host == "" {
			host = sources.Host(r.URL)
		}
		out = append(out, model.Mention{
			Title:         strings.TrimSpace(r.Title),
			URL:           r.URL,
			Source:        host,
			PublishedDate: NormalizeDate(r.PublishedDate, now),
			Credibility:   sources.Tier(host, domain),
			Snippet:       snippet(r.Content),
		})
	}
	return out
}

func snippet(s string) string {
	s = strings.TrimSpace(s)
	r := []rune(s)
	if len(r) > 280 {
		return string(r[:280])
	}
	return s
}
