// Package news 对新闻条目打分排序：新鲜度 + 来源可信度 + 话题性。
package news

import (
	"math"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/iWorld-y/briefing_radar/app/briefing/pkg/model"
)

// 各分项权重
const (
	weightFreshness   = 0.5
	weightCredibility = 0.3
	weightTopicality  = 0.2

	halfLifeHours = 72.0
)

var (
	strongEvent = regexp.MustCompile(`(?i)\b(funding|raises?|raised|series [abc]|seed|acquisitions?|acquires?|acquired|merger|merges?|partnerships?|partners with|launch(es|ed)?|expansion|expands?)\b`)
	weakEvent   = regexp.MustCompile(`(?i)\b(announce[sd]?|introduc(e|es|ed)|unveil(s|ed)?)\b`)
)

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	time.DateOnly,
	time.RFC1123Z,
	time.RFC1123,
}

// ParseDate 尝试按常见格式解析发布日期
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// Freshness 半衰期 72 小时的指数衰减；无日期或日期无法解析视为刚发布
func Freshness(published string, now time.Time) float64 {
	t, ok := ParseDate(published)
	if !ok {
		return 1
	}
	ageHours := now.Sub(t).Hours()
	if ageHours < 0 {
		ageHours = 0
	}
	return math.Pow(0.5, ageHours/halfLifeHours)
}

// Topicality 标题命中业务事件词表的程度，[0,1]
func Topicality(title string) float64 {
	score := 0.0
	if strongEvent.MatchString(title) {
		score += 0.6
	}
	if weakEvent.MatchString(title) {
		score += 0.3
	}
	return math.Min(score, 1)
}

// ScoreItem 0.5*新鲜度 + 0.3*可信度 + 0.2*话题性
func ScoreItem(item model.NewsItem, now time.Time) float64 {
	credibility := float64(item.Credibility) / 2
	if credibility < 0 {
		credibility = 0
	}
	if credibility > 1 {
		credibility = 1
	}
	return weightFreshness*Freshness(item.PublishedDate, now) +
		weightCredibility*credibility +
		weightTopicality*Topicality(item.Title)
}

// FromMentions 把提及转换成待打分的新闻条目
func FromMentions(mentions []model.Mention) []model.NewsItem {
	items := make([]model.NewsItem, 0, len(mentions))
	for _, m := range mentions {
		items = append(items, model.NewsItem{
			Title:         m.Title,
			URL:           m.URL,
			Source:        m.Source,
			PublishedDate: m.PublishedDate,
			Credibility:   m.Credibility,
		})
	}
	return items
}

// Rank 计算分数并按分数降序、发布时间降序排序，返回新切片
func Rank(items []model.NewsItem, now time.Time) []model.NewsItem {
	ranked := make([]model.NewsItem, len(items))
	copy(ranked, items)
	for i := range ranked {
		ranked[i].Score = math.Round(ScoreItem(ranked[i], now)*1000) / 1000
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		ti, _ := ParseDate(ranked[i].PublishedDate)
		tj, _ := ParseDate(ranked[j].PublishedDate)
		return ti.After(tj)
	})
	return ranked
}

// SelectTop 取已排序列表中分数不低于 minScore 的前 n 条；
// 若没有任何条目达标但候选非空，至少保留 fallback 条
func SelectTop(ranked []model.NewsItem, n int, minScore float64, fallback int) []model.NewsItem {
	out := make([]model.NewsItem, 0, n)
	for _, item := range ranked {
		if len(out) >= n {
			break
		}
		if item.Score >= minScore {
			out = append(out, item)
		}
	}
	if len(out) < fallback {
		k := min(fallback, len(ranked))
		return append([]model.NewsItem(nil), ranked[:k]...)
	}
	return out
}
