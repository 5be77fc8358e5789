package briefing

import (
	"context"
	"strings"

	"github.com/iWorld-y/briefing_radar/app/briefing/pkg/llm"
	"github.com/iWorld-y/briefing_radar/app/briefing/pkg/mention"
	"github.com/iWorld-y/briefing_radar/app/briefing/pkg/model"
	"github.com/iWorld-y/briefing_radar/app/briefing/pkg/news"
	"github.com/iWorld-y/briefing_radar/app/briefing/pkg/sources"
)

const (
	recallFloor        = 8
	maxExpansions      = 3
	expansionResults   = 10
	topCompanyNews     = 6
	fallbackNewsLimit  = 3
	aliasFilterMinKeep = 3
)

// refineMentions 阶段 4：按规范别名过滤（可信源不过滤，过滤过多则回退），
// 召回不足时做一轮模型建议的查询扩展
func (r *run) refineMentions(ctx context.Context, mentions []model.Mention, info *model.CanonicalInfo, snapshot model.CompanyProfile) []model.Mention {
	if info != nil {
		filtered := filterByAliases(mentions, aliasTokens(info, r.stem), r.domain)
		if len(filtered) >= min(aliasFilterMinKeep, len(mentions)) {
			mentions = filtered
		} else {
			r.log.Infof("别名过滤剩余 %d/%d，回退为未过滤结果", len(filtered), len(mentions))
		}
	}
	if len(mentions) >= recallFloor {
		return mentions
	}

	queries, err := llm.GenerateJSON[[]string](ctx, r.router, expansionPrompt(snapshot, r.domain))
	if err != nil {
		r.logFallback("查询扩展", err)
		return mentions
	}

	var cleaned []string
	for _, q := range queries {
		if q = strings.TrimSpace(q); q != "" {
			cleaned = append(cleaned, q)
		}
		if len(cleaned) >= maxExpansions {
			break
		}
	}
	results := make([][]model.Mention, len(cleaned))
	tasks := make([]func(), 0, len(cleaned))
	for i, q := range cleaned {
		tasks = append(tasks, func() {
			hits := r.mentions.ToMentions(r.mentions.AdHocSearch(ctx, q, expansionResults), r.domain)
			results[i] = mention.FilterHomonyms(hits, r.domain)
		})
	}
	r.settle(tasks...)

	merged := mentions
	for _, rs := range results {
		merged = append(merged, rs...)
	}
	merged = mention.Dedupe(merged)
	r.log.Infof("查询扩展 %d 条，提及 %d -> %d", len(cleaned), len(mentions), len(merged))
	return merged
}

func aliasTokens(info *model.CanonicalInfo, stem string) []string {
	var tokens []string
	seen := make(map[string]struct{})
	add := func(s string) {
		s = strings.ToLower(strings.TrimSpace(s))
		if len(s) < 2 {
			return
		}
		if _, ok := seen[s]; ok {
			return
		}
		seen[s] = struct{}{}
		tokens = append(tokens, s)
	}
	add(stem)
	add(info.CanonicalName)
	for _, a := range info.Aliases {
		add(a)
	}
	for _, t := range info.BrandTokens {
		add(t)
	}
	return tokens
}

// filterByAliases 保留可信源、自有域名以及标题/摘要/URL 中出现任一别名的提及
func filterByAliases(mentions []model.Mention, tokens []string, domain string) []model.Mention {
	out := make([]model.Mention, 0, len(mentions))
	for _, m := range mentions {
		if sources.IsTrusted(m.Source) || sources.IsOwned(m.Source, domain) {
			out = append(out, m)
			continue
		}
		text := strings.ToLower(m.Title + " " + m.Snippet + " " + m.URL)
		for _, t := range tokens {
			if strings.Contains(text, t) {
				out = append(out, m)
				break
			}
		}
	}
	return out
}

// companyNews 阶段 5：取打分前 6 条，再让模型确认哪些确实在说目标公司。
// 模型失败或给出空集合时保留原列表；最终为空则退回 FetchCompanyNews
func (r *run) companyNews(ctx context.Context, mentions []model.Mention, snapshot model.CompanyProfile) []model.NewsItem {
	ranked := news.Rank(news.FromMentions(mentions), r.o.now())
	top := ranked[:min(topCompanyNews, len(ranked))]

	if len(top) > 0 {
		allowed, err := llm.GenerateJSON[[]int](ctx, r.router, validationPrompt(snapshot, r.domain, top))
		switch {
		case err != nil:
			r.logFallback("新闻校验", err)
		case len(allowed) == 0:
			r.log.Infof("新闻校验返回空集合，保留未过滤结果")
		default:
			top = keepIndices(top, allowed)
		}
	}

	if len(top) == 0 {
		r.log.Infof("主体新闻为空，改用公司新闻查询")
		top = r.mentions.FetchCompanyNews(ctx, r.domain, fallbackNewsLimit)
	}
	if top == nil {
		top = []model.NewsItem{}
	}
	return top
}

func keepIndices(items []model.NewsItem, idx []int) []model.NewsItem {
	keep := make(map[int]struct{}, len(idx))
	for _, i := range idx {
		keep[i] = struct{}{}
	}
	out := make([]model.NewsItem, 0, len(items))
	for i, item := range items {
		if _, ok := keep[i]; ok {
			out = append(out, item)
		}
	}
	return out
}
