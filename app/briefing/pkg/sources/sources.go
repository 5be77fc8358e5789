// Package sources 维护可信来源名单以及域名相关的小工具。
package sources

import (
	"net/url"
	"strings"
	"unicode"

	"github.com/iWorld-y/briefing_radar/app/briefing/pkg/model"
)

// TrustedNews 全局可信新闻域名
var TrustedNews = []string{
	"reuters.com", "bloomberg.com", "wsj.com", "ft.com", "nytimes.com",
	"apnews.com", "bbc.com", "cnbc.com", "forbes.com", "fortune.com",
	"businessinsider.com", "techcrunch.com", "theverge.com", "wired.com",
	"venturebeat.com", "axios.com", "theinformation.com", "arstechnica.com",
	"zdnet.com", "engadget.com", "geekwire.com", "sifted.eu", "crunchbase.com",
	"prnewswire.com", "businesswire.com", "globenewswire.com",
}

// SignalSources 业务信号查询使用的域名白名单
var SignalSources = []string{
	"techcrunch.com", "reuters.com", "bloomberg.com", "crunchbase.com",
	"prnewswire.com", "businesswire.com", "globenewswire.com",
	"venturebeat.com", "axios.com", "cnbc.com", "forbes.com",
}

// PeopleSources 创始人/高管信息来源
var PeopleSources = []string{
	"linkedin.com", "crunchbase.com", "wikipedia.org", "bloomberg.com",
	"forbes.com", "theorg.com", "techcrunch.com",
}

var trustedSet = func() map[string]struct{} {
	m := make(map[string]struct{}, len(TrustedNews))
	for _, d := range TrustedNews {
		m[d] = struct{}{}
	}
	return m
}()

// Host 从 URL 中取出小写主机名，去掉 www. 前缀
func Host(rawURL string) string {
	s := strings.TrimSpace(rawURL)
	if s == "" {
		return ""
	}
	if !strings.Contains(s, "://") {
		s = "https://" + s
	}
	u, err := url.Parse(s)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}

// NormalizeDomain 把用户输入（可能带协议、路径、www）规范成裸域名
func NormalizeDomain(input string) string {
	return Host(input)
}

// Stem 取域名的第一段作为品牌词，例如 acme.io -> acme
func Stem(domain string) string {
	d := NormalizeDomain(domain)
	if i := strings.Index(d, "."); i > 0 {
		return d[:i]
	}
	return d
}

// TitleCase 首字母大写，按 rune 处理
func TitleCase(s string) string {
	r := []rune(s)
	if len(r) == 0 {
		return s
	}
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

// IsTrusted 主机是否属于可信新闻源（含子域名）
func IsTrusted(host string) bool {
	h := strings.TrimPrefix(strings.ToLower(host), "www.")
	for h != "" {
		if _, ok := trustedSet[h]; ok {
			return true
		}
		i := strings.Index(h, ".")
		if i < 0 {
			break
		}
		h = h[i+1:]
	}
	return false
}

// IsOwned 主机是否为目标域名本身或其子域名
func IsOwned(host, domain string) bool {
	h := strings.TrimPrefix(strings.ToLower(host), "www.")
	d := NormalizeDomain(domain)
	if h == "" || d == "" {
		return false
	}
	return h == d || strings.HasSuffix(h, "."+d)
}

// Tier 计算来源可信度等级：2 可信源，1 自有域名，0 其他
func Tier(host, domain string) int {
	switch {
	case IsTrusted(host):
		return model.TierTrusted
	case IsOwned(host, domain):
		return model.TierOwned
	default:
		return model.TierOther
	}
}
