package briefing

import (
	"fmt"
	"strings"

	"github.com/iWorld-y/briefing_radar/app/briefing/pkg/model"
	"github.com/iWorld-y/briefing_radar/app/briefing/pkg/search"
)

func companyLine(p model.CompanyProfile) string {
	s := fmt.Sprintf("%s (%s)", p.Name, p.Domain)
	if p.Industry != "" {
		s += ", industry: " + p.Industry
	}
	return s
}

func leadershipPrompt(p model.CompanyProfile, hits []search.Result) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Identify the founders and current senior executives of %s.\n", companyLine(p))
	if len(hits) > 0 {
		sb.WriteString("Search results that may help:\n")
		for i, h := range hits {
			fmt.Fprintf(&sb, "%d. %s (%s) %s\n", i+1, h.Title, h.URL, oneLine(h.Content, 200))
		}
	}
	sb.WriteString(`Return a JSON object:
{"founders": [{"name": "", "role": "", "background": "", "linkedin": "", "confidence": "high|medium|low"}],
 "executives": [{"name": "", "role": "", "background": "", "linkedin": "", "confidence": "high|medium|low"}]}
Only include people you are confident about. Use empty arrays when unknown.`)
	return sb.String()
}

func detailsPrompt(p model.CompanyProfile) string {
	return fmt.Sprintf(`Provide structured company facts for %s as a JSON object:
{"name": "", "description": "", "industry": "", "founded": "", "headquarters": "", "employees": "",
 "funding": "", "businessModel": "", "products": [""], "socials": {"linkedin": "", "twitter": "", "crunchbase": ""}}
Use null for unknown values. Do not fabricate.`, companyLine(p))
}

func ceoPrompt(p model.CompanyProfile) string {
	return fmt.Sprintf("Who is the current CEO of %s? Reply with the person's full name only, or \"unknown\".", companyLine(p))
}

func competitorsPrompt(p model.CompanyProfile) string {
	return fmt.Sprintf(`List the 3 most direct competitors of %s.
%s
Return a JSON array: [{"name": "", "domain": "example.com", "reason": "one short sentence"}]`,
		companyLine(p), oneLine(p.Description, 400))
}

func competitorsTextPrompt(p model.CompanyProfile) string {
	return fmt.Sprintf("Name three direct competitors of %s. Answer with their website domains in square brackets, for example [\"a.com\", \"b.com\", \"c.com\"].", companyLine(p))
}

func expansionPrompt(p model.CompanyProfile, domain string) string {
	return fmt.Sprintf(`We are collecting recent news about %s but found few results for %q.
Propose up to 3 alternative web search queries (product names, full legal name, notable people) that would surface news about this specific company and not namesakes.
Return a JSON array of strings.`, companyLine(p), domain)
}

func validationPrompt(p model.CompanyProfile, domain string, items []model.NewsItem) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Target company: %s, website %s.\n", p.Name, domain)
	if p.Description != "" {
		fmt.Fprintf(&sb, "About: %s\n", oneLine(p.Description, 300))
	}
	sb.WriteString("Which of these headlines are about the target company (not a different company with a similar name)?\n")
	for i, it := range items {
		fmt.Fprintf(&sb, "%d. %s (%s)\n", i, it.Title, it.Source)
	}
	sb.WriteString("Return a JSON array of the zero-based indices that refer to the target company.")
	return sb.String()
}

func sentimentPrompt(name string, headlines []string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Rate the overall media sentiment toward %s from 0 (very negative) to 100 (very positive) based on these headlines:\n", name)
	for i, h := range headlines {
		if i >= 20 {
			break
		}
		fmt.Fprintf(&sb, "- %s\n", h)
	}
	sb.WriteString("Reply with a single integer only.")
	return sb.String()
}

func summaryPrompt(p model.CompanyProfile, t team, rows []model.BenchmarkRow, items []model.NewsItem) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Company: %s\n", companyLine(p))
	if p.Description != "" {
		fmt.Fprintf(&sb, "Description: %s\n", oneLine(p.Description, 400))
	}
	if len(t.founders)+len(t.leadership) > 0 {
		sb.WriteString("Leadership:")
		for _, l := range append(append([]model.Leader{}, t.founders...), t.leadership...) {
			fmt.Fprintf(&sb, " %s (%s);", l.Name, l.Role)
		}
		sb.WriteString("\n")
	}
	sb.WriteString("Benchmark (domain, momentum %, sentiment, pulse):\n")
	for _, r := range rows {
		fmt.Fprintf(&sb, "- %s: %+d%%, %d, %d\n", r.Domain, r.NarrativeMomentum, r.SentimentScore, r.PulseIndex)
	}
	if len(items) > 0 {
		sb.WriteString("Recent news:\n")
		for _, it := range items {
			fmt.Fprintf(&sb, "- %s (%s)\n", it.Title, it.Source)
		}
	}
	sb.WriteString(`
Write an executive briefing in exactly this format:
<one-sentence positioning statement>
• <strategic bullet 1>
• <strategic bullet 2>
• <strategic bullet 3>
Competitive lens: <one sentence>`)
	return sb.String()
}

func oneLine(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	if r := []rune(s); len(r) > n {
		return string(r[:n]) + "..."
	}
	return s
}
