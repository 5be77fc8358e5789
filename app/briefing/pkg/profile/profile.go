// Package profile 生成并缓存公司画像快照。
package profile

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/iWorld-y/briefing_radar/app/briefing/pkg/cache"
	"github.com/iWorld-y/briefing_radar/app/briefing/pkg/llm"
	"github.com/iWorld-y/briefing_radar/app/briefing/pkg/logger"
	"github.com/iWorld-y/briefing_radar/app/briefing/pkg/model"
	"github.com/iWorld-y/briefing_radar/app/briefing/pkg/sources"
)

// ErrEmptyDomain 域名为空
var ErrEmptyDomain = errors.New("profile: empty domain")

// Generator 画像快照生成器
type Generator struct {
	cache cache.Cache[model.CompanyProfile]
	now   func() time.Time
	entry *logrus.Entry
}

// NewGenerator 创建生成器，c 为空时使用 1 小时有效期的内存缓存
func NewGenerator(c cache.Cache[model.CompanyProfile]) *Generator {
	if c == nil {
		c = cache.NewTTL[model.CompanyProfile](time.Hour)
	}
	return &Generator{cache: c, now: time.Now}
}

// WithClock 替换时钟，便于测试
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// WithLogger 返回带请求上下文日志的副本
func (g *Generator) WithLogger(e *logrus.Entry) *Generator {
	cp := *g
	cp.entry = e
	return &cp
}

func (g *Generator) log() logrus.FieldLogger {
	if g.entry != nil {
		return g.entry
	}
	return logger.Log
}

type snapshotFields struct {
	Name                OptString `json:"name"`
	Industry            OptString `json:"industry"`
	FoundedYear         OptInt    `json:"foundedYear"`
	Headquarters        OptString `json:"headquarters"`
	HeadcountRange      OptString `json:"headcountRange"`
	EmployeeCountApprox OptInt    `json:"employeeCount"`
	Brief               OptString `json:"brief"`
	Description         OptString `json:"description"`
	IPOStatus           OptString `json:"ipoStatus"`
}

// Get 返回 domain 的画像快照；缓存未过期且未要求刷新时直接返回缓存。
// 模型调用失败时各字段使用模板或留空，不会返回错误
func (g *Generator) Get(ctx context.Context, domain string, router *llm.Router, forceRefresh bool) (model.CompanyProfile, error) {
	domain = sources.NormalizeDomain(domain)
	if domain == "" {
		return model.CompanyProfile{}, ErrEmptyDomain
	}
	if !forceRefresh {
		if p, ok := g.cache.Get(domain); ok {
			return p, nil
		}
	}

	name := sources.TitleCase(sources.Stem(domain))
	overview, err := router.GenerateText(ctx, fmt.Sprintf(
		"In one sentence, describe what the company behind %s does. Reply with the sentence only.", domain))
	overview = strings.TrimSpace(overview)
	if err != nil || overview == "" {
		g.log().Warnf("概述生成失败 [%s]: %v", domain, err)
		overview = fallbackOverview(name, domain)
	}

	fields, err := llm.GenerateJSON[snapshotFields](ctx, router, fieldsPrompt(domain))
	if err != nil {
		if errors.Is(err, llm.ErrMalformedOutput) {
			g.log().Warnf("画像字段输出无法解析 [%s]: %v", domain, err)
		} else {
			g.log().Warnf("画像字段生成失败 [%s]: %v", domain, err)
		}
		fields = snapshotFields{}
	}

	if n := string(fields.Name); n != "" {
		name = n
	}
	p := model.CompanyProfile{
		Name:                name,
		Domain:              domain,
		Description:         firstNonEmpty(string(fields.Description), overview),
		Overview:            overview,
		IPOStatus:           NormalizeIPOStatus(string(fields.IPOStatus)),
		Socials:             Socials(domain),
		Industry:            string(fields.Industry),
		FoundedYear:         plausibleYear(int(fields.FoundedYear), g.now()),
		Headquarters:        string(fields.Headquarters),
		HeadcountRange:      string(fields.HeadcountRange),
		EmployeeCountApprox: max(0, int(fields.EmployeeCountApprox)),
		Brief:               firstNonEmpty(string(fields.Brief), overview),
		LogoURL:             LogoURL(domain),
		LastUpdated:         g.now(),
	}
	g.cache.Set(domain, p)
	return p, nil
}

func fieldsPrompt(domain string) string {
	return fmt.Sprintf(`Provide a factual profile of the company operating %s as a JSON object with these keys:
{"name": string, "industry": string, "foundedYear": number, "headquarters": "City, Country",
 "headcountRange": "e.g. 51-200", "employeeCount": number, "brief": "two sentences",
 "description": "one paragraph", "ipoStatus": "Public" | "Private" | "Unknown"}
Use null for any field you do not know. Do not guess or fabricate values.`, domain)
}

func fallbackOverview(name, domain string) string {
	return fmt.Sprintf("%s is the company behind %s.", name, domain)
}

// NormalizeIPOStatus 把模型输出收敛到 Public / Private / Unknown
func NormalizeIPOStatus(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "public", "publicly traded", "listed":
		return model.IPOPublic
	case "private", "privately held":
		return model.IPOPrivate
	default:
		return model.IPOUnknown
	}
}

// LogoURL 由域名确定的 logo 地址
func LogoURL(domain string) string {
	return fmt.Sprintf("https://www.google.com/s2/favicons?domain=%s&sz=128", domain)
}

// Socials 根据域名词干生成的社交账号地址
func Socials(domain string) map[string]string {
	stem := sources.Stem(domain)
	if stem == "" {
		return map[string]string{}
	}
	return map[string]string{
		"linkedin":   "https://www.linkedin.com/company/" + stem,
		"twitter":    "https://x.com/" + stem,
		"crunchbase": "https://www.crunchbase.com/organization/" + stem,
	}
}

func plausibleYear(y int, now time.Time) int {
	if y < 1800 || y > now.Year() {
		return 0
	}
	return y
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
