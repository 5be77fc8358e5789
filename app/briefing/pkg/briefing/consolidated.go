package briefing

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/iWorld-y/briefing_radar/app/briefing/pkg/analytics"
	"github.com/iWorld-y/briefing_radar/app/briefing/pkg/llm"
	"github.com/iWorld-y/briefing_radar/app/briefing/pkg/model"
	"github.com/iWorld-y/briefing_radar/app/briefing/pkg/news"
	"github.com/iWorld-y/briefing_radar/app/briefing/pkg/sources"
)

// consolidatedSentimentFallback 非流式接口模型打分失败时的固定情绪分
const consolidatedSentimentFallback = 75

const (
	eventLogPerCompetitor = 3
	eventLogCompanyNews   = 5
)

// ConsolidatedReport 非流式接口的一次性结果
type ConsolidatedReport struct {
	RequestDomain   string               `json:"requestDomain"`
	ExecutiveCard   ExecutiveCard        `json:"executiveCard"`
	BenchmarkMatrix []model.BenchmarkRow `json:"benchmarkMatrix"`
	EventLog        []EventLogEntry      `json:"eventLog"`
	AISummary       AISummary            `json:"aiSummary"`
}

// ExecutiveCard 主体的核心指标
type ExecutiveCard struct {
	PulseIndex        int `json:"pulseIndex"`
	NarrativeMomentum int `json:"narrativeMomentum"`
	SentimentScore    int `json:"sentimentScore"`
}

// EventLogEntry 事件日志中的一条
type EventLogEntry struct {
	Date   string `json:"date"`
	Entity string `json:"entity"`
	Title  string `json:"title"`
	URL    string `json:"url"`
	Source string `json:"source"`
	Type   string `json:"type,omitempty"`
}

// AISummary 三条要点 + 一句话结论
type AISummary struct {
	Bullets []string `json:"bullets"`
	TLDR    string   `json:"tldr"`
}

type consolidatedCompetitors struct {
	Competitors []string `json:"competitors"`
}

// Consolidated 非流式变体：一次性返回整合后的文档
func (o *Orchestrator) Consolidated(ctx context.Context, req Request) (*ConsolidatedReport, error) {
	ctx = context.WithoutCancel(ctx)
	r, err := o.prepare(ctx, req)
	if err != nil {
		return nil, err
	}

	name := sources.TitleCase(r.stem)
	if info := r.resolveCanonical(ctx); info != nil && info.CanonicalName != "" {
		name = info.CanonicalName
	}

	competitors := r.consolidatedCompetitors(ctx, name)
	entities := []*entity{{domain: r.domain, name: name}}
	for _, d := range competitors {
		entities = append(entities, &entity{domain: d, name: sources.TitleCase(sources.Stem(d))})
	}

	var companyNews []model.NewsItem
	tasks := []func(){
		func() { companyNews = r.mentions.FetchCompanyNews(ctx, r.domain, eventLogCompanyNews) },
	}
	for _, e := range entities {
		tasks = append(tasks, func() { e.mentions = r.mentions.FetchMentions(ctx, e.domain) })
	}
	r.settle(tasks...)

	sentimentTasks := make([]func(), 0, len(entities))
	for _, e := range entities {
		sentimentTasks = append(sentimentTasks, func() { e.sentiment = r.consolidatedSentiment(ctx, e) })
	}
	r.settle(sentimentTasks...)

	rows := r.benchmark(entities, nil, o.enhancedEnabled(req))
	report := &ConsolidatedReport{
		RequestDomain:   r.domain,
		BenchmarkMatrix: rows,
		EventLog:        o.eventLog(entities, companyNews),
	}
	if len(rows) > 0 {
		report.ExecutiveCard = ExecutiveCard{
			PulseIndex:        rows[0].PulseIndex,
			NarrativeMomentum: rows[0].NarrativeMomentum,
			SentimentScore:    rows[0].SentimentScore,
		}
	}
	report.AISummary = r.consolidatedSummary(ctx, name, rows, report.EventLog)

	r.log.Infof("整合简报完成，耗时 %s", o.now().Sub(r.start))
	return report, nil
}

func (r *run) consolidatedCompetitors(ctx context.Context, name string) []string {
	got, err := llm.GenerateJSON[consolidatedCompetitors](ctx, r.router, fmt.Sprintf(
		`Who are the top 3 competitors of %s (%s)? Return {"competitors": ["domain1.com", "domain2.com", "domain3.com"]}.`,
		name, r.domain))
	if err != nil {
		r.logFallback("竞争对手", err)
		return nil
	}
	in := make([]competitorJSON, 0, len(got.Competitors))
	for _, d := range got.Competitors {
		in = append(in, competitorJSON{Domain: d})
	}
	var out []string
	for _, c := range r.cleanCompetitors(in) {
		out = append(out, c.Domain)
	}
	return out
}

func (r *run) consolidatedSentiment(ctx context.Context, e *entity) int {
	headlines := analytics.Headlines(e.mentions)
	if len(headlines) == 0 {
		return consolidatedSentimentFallback
	}
	text, err := r.router.GenerateText(ctx, sentimentPrompt(e.name, headlines))
	if err != nil {
		r.logFallback("情绪打分", err)
		return consolidatedSentimentFallback
	}
	if score, ok := parseScore(text); ok {
		return score
	}
	return consolidatedSentimentFallback
}

// eventLog 公司新闻与各实体提及合并成按时间排序的列表
func (o *Orchestrator) eventLog(entities []*entity, companyNews []model.NewsItem) []EventLogEntry {
	now := o.now()
	seen := make(map[string]struct{})
	var out []EventLogEntry
	add := func(entityName string, m model.Mention) {
		if _, dup := seen[m.URL]; dup {
			return
		}
		seen[m.URL] = struct{}{}
		kind, _ := analytics.ClassifyEvent(m.Title)
		out = append(out, EventLogEntry{
			Date: m.PublishedDate, Entity: entityName, Title: m.Title,
			URL: m.URL, Source: m.Source, Type: kind,
		})
	}

	primary := entities[0]
	for _, n := range companyNews {
		add(primary.name, model.Mention{Title: n.Title, URL: n.URL, Source: n.Source, PublishedDate: n.PublishedDate})
	}
	for _, e := range entities {
		ranked := news.Rank(news.FromMentions(e.mentions), now)
		for _, n := range ranked[:min(eventLogPerCompetitor, len(ranked))] {
			add(e.name, model.Mention{Title: n.Title, URL: n.URL, Source: n.Source, PublishedDate: n.PublishedDate})
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		ti, _ := news.ParseDate(out[i].Date)
		tj, _ := news.ParseDate(out[j].Date)
		return ti.Before(tj)
	})
	if out == nil {
		out = []EventLogEntry{}
	}
	return out
}

func (r *run) consolidatedSummary(ctx context.Context, name string, rows []model.BenchmarkRow, log []EventLogEntry) AISummary {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Summarize the competitive position of %s (%s).\nBenchmark (domain, momentum %%, sentiment, pulse):\n", name, r.domain)
	for _, row := range rows {
		fmt.Fprintf(&sb, "- %s: %+d%%, %d, %d\n", row.Domain, row.NarrativeMomentum, row.SentimentScore, row.PulseIndex)
	}
	for i, e := range log {
		if i >= 12 {
			break
		}
		fmt.Fprintf(&sb, "- [%s] %s: %s\n", e.Entity, e.Date, e.Title)
	}
	sb.WriteString(`Return {"bullets": ["three strategic bullets"], "tldr": "one line"}.`)

	got, err := llm.GenerateJSON[AISummary](ctx, r.router, sb.String())
	if err == nil && len(got.Bullets) > 0 && strings.TrimSpace(got.TLDR) != "" {
		if len(got.Bullets) > 3 {
			got.Bullets = got.Bullets[:3]
		}
		return got
	}
	if err != nil {
		r.logFallback("整合摘要", err)
	}

	var primary model.BenchmarkRow
	if len(rows) > 0 {
		primary = rows[0]
	}
	return AISummary{
		Bullets: []string{
			fmt.Sprintf("Narrative momentum for %s is %+d%% week over week.", name, primary.NarrativeMomentum),
			fmt.Sprintf("Media sentiment sits at %d/100.", primary.SentimentScore),
			fmt.Sprintf("Pulse index of %d/100 across %d benchmarked companies.", primary.PulseIndex, len(rows)),
		},
		TLDR: fmt.Sprintf("%s: pulse %d, sentiment %d, momentum %+d%%.", name, primary.PulseIndex, primary.SentimentScore, primary.NarrativeMomentum),
	}
}
