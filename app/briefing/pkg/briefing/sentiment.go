package briefing

import (
	"context"
	"math"
	"regexp"
	"strconv"

	"github.com/iWorld-y/briefing_radar/app/briefing/pkg/analytics"
	"github.com/iWorld-y/briefing_radar/app/briefing/pkg/model"
)

var (
	scoreNumber = regexp.MustCompile(`-?\d+(\.\d+)?`)
	// 量表说明，例如 "0-100"、"0 to 100"、"/100"、"out of 100"
	scaleHint = regexp.MustCompile(`(?i)\b0\s*(?:-|\x{2013}|to)\s*100\b|/\s*100\b|\bout\s+of\s+100\b`)
)

// scoreSentiment 阶段 7：优先模型打分，失败或越界时使用词表分析
func (r *run) scoreSentiment(ctx context.Context, entities []*entity) {
	tasks := make([]func(), 0, len(entities))
	for _, e := range entities {
		tasks = append(tasks, func() { e.sentiment = r.sentimentFor(ctx, e) })
	}
	r.settle(tasks...)
}

func (r *run) sentimentFor(ctx context.Context, e *entity) int {
	headlines := analytics.Headlines(e.mentions)
	lexical := analytics.LexicalSentiment(headlines)
	if len(headlines) == 0 {
		return lexical
	}
	text, err := r.router.GenerateText(ctx, sentimentPrompt(e.name, headlines))
	if err != nil {
		r.logFallback("情绪打分", err)
		return lexical
	}
	score, ok := parseScore(text)
	if !ok {
		r.log.Warnf("情绪打分输出无效 [%s]: %q", e.domain, text)
		return lexical
	}
	return score
}

// parseScore 去掉量表说明后取最后一个数字，必须落在 [0,100]
func parseScore(text string) (int, bool) {
	nums := scoreNumber.FindAllString(scaleHint.ReplaceAllString(text, " "), -1)
	if len(nums) == 0 {
		return 0, false
	}
	v, err := strconv.ParseFloat(nums[len(nums)-1], 64)
	if err != nil || v < 0 || v > 100 {
		return 0, false
	}
	return int(math.Round(v)), true
}

// benchmark 阶段 8：每个实体一行；开启时附加增强情绪分析
func (r *run) benchmark(entities []*entity, signals []model.BusinessEvent, enhanced bool) []model.BenchmarkRow {
	now := r.o.now()
	peers := make([]int, 0, len(entities))
	for _, e := range entities {
		peers = append(peers, analytics.CountRecent(e.mentions, now))
	}

	rows := make([]model.BenchmarkRow, 0, len(entities))
	for i, e := range entities {
		momentum := analytics.Momentum(e.mentions, now)
		row := model.BenchmarkRow{
			Domain:                  e.domain,
			Name:                    e.name,
			NarrativeMomentum:       momentum,
			SentimentScore:          e.sentiment,
			PulseIndex:              analytics.PulseIndex(momentum, e.sentiment),
			SentimentHistoricalData: r.o.history(e.mentions, e.sentiment, now),
		}
		if enhanced {
			events := analytics.EventsFromMentions(e.mentions)
			if i == 0 {
				events = mergeEvents(signals, events)
			}
			a := analytics.Enhanced(analytics.EnhancedInput{
				Mentions:      e.mentions,
				Events:        events,
				BaseSentiment: e.sentiment,
				Momentum:      momentum,
				PeerVolumes:   peers,
				Now:           now,
			})
			row.EnhancedSentiment = &a
		}
		rows = append(rows, row)
	}
	return rows
}

// mergeEvents 按 URL 合并业务事件，先出现的优先
func mergeEvents(lists ...[]model.BusinessEvent) []model.BusinessEvent {
	seen := make(map[string]struct{})
	var out []model.BusinessEvent
	for _, list := range lists {
		for _, e := range list {
			if _, dup := seen[e.Mention.URL]; dup {
				continue
			}
			seen[e.Mention.URL] = struct{}{}
			out = append(out, e)
		}
	}
	return out
}
