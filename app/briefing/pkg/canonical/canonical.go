// Package canonical 推断公司的规范名称、别名和品牌词。
package canonical

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/iWorld-y/briefing_radar/app/briefing/pkg/cache"
	"github.com/iWorld-y/briefing_radar/app/briefing/pkg/llm"
	"github.com/iWorld-y/briefing_radar/app/briefing/pkg/logger"
	"github.com/iWorld-y/briefing_radar/app/briefing/pkg/model"
	"github.com/iWorld-y/briefing_radar/app/briefing/pkg/sources"
)

const (
	maxAliases     = 6
	maxBrandTokens = 8

	// DefaultTimeout 首页抓取超时
	DefaultTimeout = 5 * time.Second
	// DefaultFallbackTTL 模型不可用时退化结果的缓存时间
	DefaultFallbackTTL = 2 * time.Minute
)

// ErrEmptyDomain 域名为空
var ErrEmptyDomain = errors.New("canonical: empty domain")

// Resolver 规范身份解析器
type Resolver struct {
	cache       cache.Cache[model.CanonicalInfo]
	fallbacks   cache.Cache[model.CanonicalInfo]
	client      *http.Client
	timeout     time.Duration
	homepageURL func(domain string) string
	entry       *logrus.Entry
}

// Option 解析器选项
type Option func(*Resolver)

// WithHTTPClient 替换首页抓取使用的 HTTP 客户端
func WithHTTPClient(c *http.Client) Option {
	return func(r *Resolver) { r.client = c }
}

// WithTimeout 设置首页抓取超时
func WithTimeout(d time.Duration) Option {
	return func(r *Resolver) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// WithHomepageURL 替换域名到首页地址的映射，便于测试
func WithHomepageURL(f func(domain string) string) Option {
	return func(r *Resolver) { r.homepageURL = f }
}

// WithFallbackCache 替换退化结果的缓存
func WithFallbackCache(c cache.Cache[model.CanonicalInfo]) Option {
	return func(r *Resolver) { r.fallbacks = c }
}

// NewResolver 创建解析器，c 为空时使用 1 小时有效期的内存缓存
func NewResolver(c cache.Cache[model.CanonicalInfo], opts ...Option) *Resolver {
	if c == nil {
		c = cache.NewTTL[model.CanonicalInfo](time.Hour)
	}
	r := &Resolver{
		cache:       c,
		fallbacks:   cache.NewTTL[model.CanonicalInfo](DefaultFallbackTTL),
		client:      defaultHTTPClient,
		timeout:     DefaultTimeout,
		homepageURL: defaultHomepageURL,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// WithLogger 返回带请求上下文日志的副本
func (r *Resolver) WithLogger(e *logrus.Entry) *Resolver {
	cp := *r
	cp.entry = e
	return &cp
}

func (r *Resolver) log() logrus.FieldLogger {
	if r.entry != nil {
		return r.entry
	}
	return logger.Log
}

type inferred struct {
	CanonicalName string   `json:"canonicalName"`
	Aliases       []string `json:"aliases"`
	IndustryHint  string   `json:"industryHint"`
	BrandTokens   []string `json:"brandTokens"`
}

// Resolve 返回 domain 的规范身份。模型不可用时退回站点元数据或域名词干，
// 退化结果只在短时间内缓存，模型恢复后尽快重新推断
func (r *Resolver) Resolve(ctx context.Context, domain string, router *llm.Router) (*model.CanonicalInfo, error) {
	domain = sources.NormalizeDomain(domain)
	if domain == "" {
		return nil, ErrEmptyDomain
	}
	if info, ok := r.cache.Get(domain); ok {
		return &info, nil
	}
	if info, ok := r.fallbacks.Get(domain); ok {
		return &info, nil
	}

	meta := r.fetchSiteMeta(ctx, domain)
	got, err := llm.GenerateJSON[inferred](ctx, router, buildPrompt(domain, meta))
	if err != nil {
		if errors.Is(err, llm.ErrMalformedOutput) {
			r.log().Warnf("规范身份模型输出无法解析 [%s]: %v", domain, err)
		} else {
			r.log().Warnf("规范身份推断失败 [%s]: %v", domain, err)
		}
		info := fallback(domain, meta)
		r.fallbacks.Set(domain, info)
		return &info, nil
	}

	name := strings.TrimSpace(got.CanonicalName)
	if name == "" {
		name = fallbackName(domain, meta)
	}
	info := normalize(model.CanonicalInfo{
		CanonicalName: name,
		Aliases:       got.Aliases,
		IndustryHint:  strings.TrimSpace(got.IndustryHint),
		BrandTokens:   got.BrandTokens,
	})
	r.cache.Set(domain, info)
	return &info, nil
}

func buildPrompt(domain string, meta SiteMeta) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Identify the company that operates the website %s.\n", domain)
	if !meta.empty() {
		sb.WriteString("Homepage metadata:\n")
		fmt.Fprintf(&sb, "- title: %s\n", meta.Title)
		fmt.Fprintf(&sb, "- description: %s\n", meta.Description)
		fmt.Fprintf(&sb, "- og:site_name: %s\n", meta.SiteName)
		fmt.Fprintf(&sb, "- first heading: %s\n", meta.H1)
	}
	sb.WriteString(`Return a JSON object:
{"canonicalName": "official company name",
 "aliases": ["2 to 6 names the company is referred to by in the press"],
 "industryHint": "short industry label",
 "brandTokens": ["up to 8 lowercase words that identify the brand in headlines"]}
Do not invent a different company; if unsure, derive the name from the domain.`)
	return sb.String()
}

// fallback 模型不可用时基于元数据和域名构造
func fallback(domain string, meta SiteMeta) model.CanonicalInfo {
	name := fallbackName(domain, meta)
	return normalize(model.CanonicalInfo{
		CanonicalName: name,
		Aliases:       []string{name, sources.Stem(domain), domain},
	})
}

func fallbackName(domain string, meta SiteMeta) string {
	if meta.SiteName != "" {
		return meta.SiteName
	}
	if t := titleHead(meta.Title); t != "" {
		return t
	}
	return sources.TitleCase(sources.Stem(domain))
}

// titleHead 取页面标题中分隔符前的部分，例如 "Acme | Rockets" -> "Acme"
func titleHead(title string) string {
	for _, sep := range []string{" | ", " - ", " \u2013 ", " \u2014 ", ": ", " · "} {
		if i := strings.Index(title, sep); i > 0 {
			title = title[:i]
		}
	}
	title = strings.TrimSpace(title)
	if len([]rune(title)) > 40 {
		return ""
	}
	return title
}

// normalize 保证 canonicalName 排在别名首位、别名去重截断，品牌词缺失时从别名首词推导
func normalize(info model.CanonicalInfo) model.CanonicalInfo {
	aliases := []string{info.CanonicalName}
	seen := map[string]struct{}{strings.ToLower(info.CanonicalName): {}}
	for _, a := range info.Aliases {
		a = strings.TrimSpace(a)
		k := strings.ToLower(a)
		if a == "" {
			continue
		}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		aliases = append(aliases, a)
		if len(aliases) >= maxAliases {
			break
		}
	}
	info.Aliases = aliases

	tokens := dedupeLower(info.BrandTokens)
	if len(tokens) == 0 {
		var firsts []string
		for _, a := range aliases {
			if f := strings.Fields(a); len(f) > 0 {
				firsts = append(firsts, f[0])
			}
		}
		tokens = dedupeLower(firsts)
	}
	if len(tokens) > maxBrandTokens {
		tokens = tokens[:maxBrandTokens]
	}
	info.BrandTokens = tokens
	return info
}

func dedupeLower(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	var out []string
	for _, s := range in {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
