package briefing

import (
	"context"
	"errors"
	"regexp"
	"strconv"
	"strings"

	"github.com/iWorld-y/briefing_radar/app/briefing/pkg/llm"
	"github.com/iWorld-y/briefing_radar/app/briefing/pkg/model"
	"github.com/iWorld-y/briefing_radar/app/briefing/pkg/profile"
	"github.com/iWorld-y/briefing_radar/app/briefing/pkg/sources"
)

const maxLeaders = 8

// resolveCanonical 阶段 0：失败时返回 nil，管线继续
func (r *run) resolveCanonical(ctx context.Context) *model.CanonicalInfo {
	info, err := r.o.canonical.WithLogger(r.log).Resolve(ctx, r.domain, r.router)
	if err != nil {
		r.log.Warnf("规范身份解析失败: %v", err)
		return nil
	}
	return info
}

// snapshot 阶段 1：画像快照，名称看起来像占位符时用规范身份覆盖
func (r *run) snapshot(ctx context.Context, info *model.CanonicalInfo) model.CompanyProfile {
	p, err := r.o.profiles.WithLogger(r.log).Get(ctx, r.domain, r.router, r.req.ForceRefresh)
	if err != nil {
		r.log.Warnf("画像快照生成失败: %v", err)
		p = model.CompanyProfile{
			Name:      sources.TitleCase(r.stem),
			Domain:    r.domain,
			IPOStatus: model.IPOUnknown,
			Socials:   profile.Socials(r.domain),
			LogoURL:   profile.LogoURL(r.domain),
		}
	}
	if info == nil {
		return p
	}
	if looksGeneric(p.Name, r.stem) && info.CanonicalName != "" {
		p.Name = info.CanonicalName
		p.Aliases = info.Aliases
		if p.Industry == "" {
			p.Industry = info.IndustryHint
		}
	}
	if len(p.Aliases) == 0 {
		p.Aliases = info.Aliases
	}
	return p
}

// looksGeneric 名称等于域名词干或过短
func looksGeneric(name, stem string) bool {
	name = strings.TrimSpace(name)
	return strings.EqualFold(name, stem) || len([]rune(name)) <= 3
}

type leaderJSON struct {
	Name       profile.OptString `json:"name"`
	Role       profile.OptString `json:"role"`
	Background profile.OptString `json:"background"`
	LinkedIn   profile.OptString `json:"linkedin"`
	Confidence profile.OptString `json:"confidence"`
}

type leadershipJSON struct {
	Founders   []leaderJSON `json:"founders"`
	Executives []leaderJSON `json:"executives"`
}

type detailsJSON struct {
	Name          profile.OptString            `json:"name"`
	Description   profile.OptString            `json:"description"`
	Industry      profile.OptString            `json:"industry"`
	Founded       profile.OptString            `json:"founded"`
	Headquarters  profile.OptString            `json:"headquarters"`
	Employees     profile.OptString            `json:"employees"`
	Funding       profile.OptString            `json:"funding"`
	BusinessModel profile.OptString            `json:"businessModel"`
	Products      []profile.OptString          `json:"products"`
	Socials       map[string]profile.OptString `json:"socials"`
}

// team 阶段 2 的产出
type team struct {
	details    model.CompanyDetails
	founders   []model.Leader
	leadership []model.Leader
	socials    map[string]string
}

// leadershipAndDetails 阶段 2：领导层与公司字段并行获取，缺少 CEO 时补一次文本调用
func (r *run) leadershipAndDetails(ctx context.Context, snapshot model.CompanyProfile) team {
	var (
		people  leadershipJSON
		details model.CompanyDetails
	)
	r.settle(
		func() {
			hits := r.mentions.SearchFounderInfo(ctx, r.domain, snapshot.Name)
			got, err := llm.GenerateJSON[leadershipJSON](ctx, r.router, leadershipPrompt(snapshot, hits))
			if err != nil {
				r.logFallback("领导层", err)
				return
			}
			people = got
		},
		func() {
			got, err := llm.GenerateJSON[detailsJSON](ctx, r.router, detailsPrompt(snapshot))
			if err != nil {
				r.logFallback("公司字段", err)
				details = minimalDetails(snapshot)
				return
			}
			details = toDetails(got, snapshot)
		},
	)

	t := team{
		details:    details,
		founders:   toLeaders(people.Founders, "search"),
		leadership: toLeaders(people.Executives, "search"),
	}
	if !hasCEO(t.founders) && !hasCEO(t.leadership) {
		if ceo, ok := r.askCEO(ctx, snapshot); ok {
			t.leadership = append(t.leadership, ceo)
		}
	}
	t.socials = mergeSocials(snapshot.Socials, details.Socials)
	return t
}

func (r *run) logFallback(what string, err error) {
	if errors.Is(err, llm.ErrMalformedOutput) {
		r.log.Warnf("%s 模型输出无法解析，使用兜底值: %v", what, err)
		return
	}
	r.log.Warnf("%s 模型调用失败，使用兜底值: %v", what, err)
}

var ceoRole = regexp.MustCompile(`(?i)\b(ceo|chief executive)\b`)

func hasCEO(leaders []model.Leader) bool {
	for _, l := range leaders {
		if ceoRole.MatchString(l.Role) {
			return true
		}
	}
	return false
}

// askCEO 单独询问 CEO 姓名，结果以低可信度追加
func (r *run) askCEO(ctx context.Context, snapshot model.CompanyProfile) (model.Leader, bool) {
	text, err := r.router.GenerateText(ctx, ceoPrompt(snapshot))
	if err != nil {
		r.logFallback("CEO", err)
		return model.Leader{}, false
	}
	name := strings.Trim(strings.TrimSpace(firstLine(text)), `."'*`)
	lower := strings.ToLower(name)
	if name == "" || len([]rune(name)) > 60 || strings.Contains(lower, "unknown") ||
		strings.Contains(lower, "not sure") || strings.Contains(lower, "i don") {
		return model.Leader{}, false
	}
	return model.Leader{Name: name, Role: "CEO", Confidence: "low", Source: "model"}, true
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

func toLeaders(in []leaderJSON, source string) []model.Leader {
	out := make([]model.Leader, 0, len(in))
	seen := make(map[string]struct{})
	for _, l := range in {
		name := strings.TrimSpace(string(l.Name))
		if name == "" {
			continue
		}
		key := strings.ToLower(name)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, model.Leader{
			Name:       name,
			Role:       string(l.Role),
			Background: string(l.Background),
			LinkedIn:   string(l.LinkedIn),
			Confidence: normalizeConfidence(string(l.Confidence)),
			Source:     source,
		})
		if len(out) >= maxLeaders {
			break
		}
	}
	return out
}

func normalizeConfidence(s string) string {
	switch c := strings.ToLower(strings.TrimSpace(s)); c {
	case "high", "medium", "low":
		return c
	default:
		return "medium"
	}
}

func toDetails(in detailsJSON, snapshot model.CompanyProfile) model.CompanyDetails {
	d := minimalDetails(snapshot)
	if v := string(in.Name); v != "" {
		d.Name = v
	}
	if v := string(in.Description); v != "" {
		d.Description = v
	}
	if v := string(in.Industry); v != "" {
		d.Industry = v
	}
	d.Founded = firstNonEmpty(string(in.Founded), d.Founded)
	d.Headquarters = firstNonEmpty(string(in.Headquarters), d.Headquarters)
	d.Employees = firstNonEmpty(string(in.Employees), d.Employees)
	d.Funding = string(in.Funding)
	d.BusinessModel = string(in.BusinessModel)
	for _, p := range in.Products {
		if v := string(p); v != "" {
			d.Products = append(d.Products, v)
		}
	}
	socials := make(map[string]string)
	for k, v := range in.Socials {
		if u := string(v); strings.HasPrefix(u, "http") {
			socials[strings.ToLower(k)] = u
		}
	}
	d.Socials = socials
	return d
}

// minimalDetails 模型不可用时由快照拼出的最小公司字段
func minimalDetails(snapshot model.CompanyProfile) model.CompanyDetails {
	d := model.CompanyDetails{
		Name:         snapshot.Name,
		Description:  firstNonEmpty(snapshot.Description, snapshot.Overview),
		Industry:     snapshot.Industry,
		Headquarters: snapshot.Headquarters,
		Employees:    snapshot.HeadcountRange,
	}
	if snapshot.FoundedYear > 0 {
		d.Founded = strconv.Itoa(snapshot.FoundedYear)
	}
	return d
}

// mergeSocials 确定性的社交地址，被模型给出的地址覆盖
func mergeSocials(base, override map[string]string) map[string]string {
	out := make(map[string]string, len(base)+len(override))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range override {
		if k == "x" {
			k = "twitter"
		}
		out[k] = v
	}
	return out
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
