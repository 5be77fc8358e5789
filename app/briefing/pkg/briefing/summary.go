package briefing

import (
	"context"
	"fmt"
	"strings"

	"github.com/iWorld-y/briefing_radar/app/briefing/pkg/model"
)

// summarize 阶段 9：模型生成三段式摘要，失败时使用四行模板
func (r *run) summarize(ctx context.Context, snapshot model.CompanyProfile, t team,
	rows []model.BenchmarkRow, companyNews []model.NewsItem, competitors []model.Competitor) SummaryPayload {
	text, err := r.router.GenerateText(ctx, summaryPrompt(snapshot, t, rows, companyNews))
	if err == nil {
		if text = strings.TrimSpace(text); text != "" {
			return SummaryPayload{Summary: text, Source: SummaryFromModel}
		}
	} else {
		r.logFallback("执行摘要", err)
	}
	return SummaryPayload{Summary: fallbackSummary(snapshot, rows, competitors), Source: SummaryFromTemplate}
}

// fallbackSummary 定位、动量、情绪、竞争视角四行
func fallbackSummary(snapshot model.CompanyProfile, rows []model.BenchmarkRow, competitors []model.Competitor) string {
	var primary model.BenchmarkRow
	if len(rows) > 0 {
		primary = rows[0]
	}
	mentions := 0
	for _, p := range primary.SentimentHistoricalData {
		mentions += p.Mentions
	}

	industry := snapshot.Industry
	if industry == "" {
		industry = "its market"
	}
	lens := "no direct competitors were identified in this run"
	if len(competitors) > 0 {
		names := make([]string, 0, len(competitors))
		for _, c := range competitors {
			names = append(names, c.Name)
		}
		lens = "benchmarked against " + strings.Join(names, ", ")
	}

	return strings.Join([]string{
		fmt.Sprintf("%s (%s) operates in %s.", snapshot.Name, snapshot.Domain, industry),
		fmt.Sprintf("• Momentum: narrative momentum is %+d%% with a pulse index of %d/100.", primary.NarrativeMomentum, primary.PulseIndex),
		fmt.Sprintf("• Sentiment: media sentiment scores %d/100 across %d mentions this week.", primary.SentimentScore, mentions),
		fmt.Sprintf("Competitive lens: %s.", lens),
	}, "\n")
}
