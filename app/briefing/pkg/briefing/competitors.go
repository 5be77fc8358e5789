package briefing

import (
	"context"
	"encoding/json"
	"regexp"
	"strings"

	"github.com/iWorld-y/briefing_radar/app/briefing/pkg/llm"
	"github.com/iWorld-y/briefing_radar/app/briefing/pkg/model"
	"github.com/iWorld-y/briefing_radar/app/briefing/pkg/news"
	"github.com/iWorld-y/briefing_radar/app/briefing/pkg/sources"
)

const (
	maxCompetitors          = 3
	competitorNewsPreferred = 4
	competitorNewsMinimum   = 2
	competitorNewsTotal     = 12
	competitorMinScore      = 0.3
)

var bracketedArray = regexp.MustCompile(`\[[\s\S]*?\]`)

type competitorJSON struct {
	Name   string `json:"name"`
	Domain string `json:"domain"`
	Reason string `json:"reason"`
}

// discoverCompetitors 阶段 3：JSON 调用 -> 文本中提取方括号数组 -> 空列表
func (r *run) discoverCompetitors(ctx context.Context, snapshot model.CompanyProfile) []model.Competitor {
	got, err := llm.GenerateJSON[[]competitorJSON](ctx, r.router, competitorsPrompt(snapshot))
	if err == nil {
		if out := r.cleanCompetitors(got); len(out) > 0 {
			return out
		}
	} else {
		r.logFallback("竞争对手", err)
	}

	text, err := r.router.GenerateText(ctx, competitorsTextPrompt(snapshot))
	if err != nil {
		r.logFallback("竞争对手文本", err)
		return []model.Competitor{}
	}
	return r.cleanCompetitors(parseCompetitorText(text))
}

// parseCompetitorText 从自由文本中找出第一个能解析的方括号数组，元素可以是域名字符串或对象
func parseCompetitorText(text string) []competitorJSON {
	for _, candidate := range bracketedArray.FindAllString(text, -1) {
		var raw []json.RawMessage
		if err := json.Unmarshal([]byte(candidate), &raw); err != nil {
			continue
		}
		var out []competitorJSON
		for _, item := range raw {
			var s string
			if json.Unmarshal(item, &s) == nil {
				out = append(out, competitorJSON{Domain: s})
				continue
			}
			var c competitorJSON
			if json.Unmarshal(item, &c) == nil {
				out = append(out, c)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return nil
}

// cleanCompetitors 规范域名、去重、排除自身，最多保留 3 个
func (r *run) cleanCompetitors(in []competitorJSON) []model.Competitor {
	out := make([]model.Competitor, 0, maxCompetitors)
	seen := map[string]struct{}{r.domain: {}}
	for _, c := range in {
		d := sources.NormalizeDomain(c.Domain)
		if d == "" || !strings.Contains(d, ".") {
			continue
		}
		if _, dup := seen[d]; dup {
			continue
		}
		seen[d] = struct{}{}
		name := strings.TrimSpace(c.Name)
		if name == "" {
			name = sources.TitleCase(sources.Stem(d))
		}
		out = append(out, model.Competitor{Name: name, Domain: d, Reason: strings.TrimSpace(c.Reason)})
		if len(out) >= maxCompetitors {
			break
		}
	}
	return out
}

// competitorCoverage 阶段 6：并行拉取每个竞品的提及，按竞品分组打分，
// 每个竞品保留 2-4 条，总数不超过 12。extra 与之并行执行
func (r *run) competitorCoverage(ctx context.Context, competitors []*entity, extra func()) []model.NewsItem {
	tasks := []func(){extra}
	for _, e := range competitors {
		tasks = append(tasks, func() { e.mentions = r.mentions.FetchMentions(ctx, e.domain) })
	}
	r.settle(tasks...)

	now := r.o.now()
	out := make([]model.NewsItem, 0, competitorNewsTotal)
	for _, e := range competitors {
		ranked := news.Rank(news.FromMentions(e.mentions), now)
		picked := news.SelectTop(ranked, competitorNewsPreferred, competitorMinScore, competitorNewsMinimum)
		for _, item := range picked {
			if len(out) >= competitorNewsTotal {
				return out
			}
			item.Competitor = e.name
			out = append(out, item)
		}
	}
	return out
}
