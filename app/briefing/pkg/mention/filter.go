package mention

import (
	"strings"
	"time"

	"github.com/iWorld-y/briefing_radar/app/briefing/pkg/model"
	"github.com/iWorld-y/briefing_radar/app/briefing/pkg/news"
	"github.com/iWorld-y/briefing_radar/app/briefing/pkg/sources"
)

// Dedupe 按 URL 去重，保留第一次出现的条目
func Dedupe(mentions []model.Mention) []model.Mention {
	seen := make(map[string]struct{}, len(mentions))
	out := make([]model.Mention, 0, len(mentions))
	for _, m := range mentions {
		if _, ok := seen[m.URL]; ok {
			continue
		}
		seen[m.URL] = struct{}{}
		out = append(out, m)
	}
	return out
}

// NormalizeDate 规范为 RFC3339（UTC）；无法解析或晚于 now 的日期取 now
func NormalizeDate(s string, now time.Time) string {
	t, ok := news.ParseDate(s)
	if !ok || t.After(now) {
		t = now
	}
	return t.UTC().Format(time.RFC3339)
}

// FilterHomonyms 去掉主机名包含品牌词、但既不是目标域名也不是可信新闻源的结果
func FilterHomonyms(mentions []model.Mention, domain string) []model.Mention {
	stem := sources.Stem(domain)
	if stem == "" {
		return mentions
	}
	out := make([]model.Mention, 0, len(mentions))
	for _, m := range mentions {
		host := m.Source
		if host == "" {
			host = sources.Host(m.URL)
		}
		if sources.IsOwned(host, domain) || sources.IsTrusted(host) || !strings.Contains(host, stem) {
			out = append(out, m)
		}
	}
	return out
}
