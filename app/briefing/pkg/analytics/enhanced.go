package analytics

import (
	"math"
	"sort"
	"time"

	"github.com/iWorld-y/briefing_radar/app/briefing/pkg/model"
	"github.com/iWorld-y/briefing_radar/app/briefing/pkg/news"
	"github.com/iWorld-y/briefing_radar/app/briefing/pkg/sources"
)

const (
	sentimentHorizon = 14 * 24 * time.Hour
	maxDrift         = 15.0
	trendThreshold   = 5

	eventImpactMin = -30
	eventImpactMax = 40
)

// EnhancedInput 增强情绪分析的输入
type EnhancedInput struct {
	Mentions      []model.Mention
	Events        []model.BusinessEvent
	BaseSentiment int
	Momentum      int
	PeerVolumes   []int // 同批实体在同一时间窗内的提及数，用于计算中位数
	Now           time.Time
}

// Enhanced 多因素情绪分析，overallScore 相对 baseSentiment 的偏移不超过 ±15
func Enhanced(in EnhancedInput) model.EnhancedSentimentAnalysis {
	now := in.Now
	if now.IsZero() {
		now = time.Now()
	}
	recent := withinHorizon(in.Mentions, now)

	cred := sourceCredibility(recent)
	recency := recencyWeight(recent, now)
	volume := volumeScore(len(recent), median(in.PeerVolumes))
	language := languageIntensity(recent)
	rawImpact := rawEventImpact(in.Events)
	impact := normalizeImpact(rawImpact)
	trend := trendDirection(in.Momentum)
	quality := dataQuality(recent)

	modifier := (float64(cred)-50)/50*3 +
		(float64(recency)-50)/50*2 +
		(float64(volume)-50)/50*3 +
		(float64(language)-50)/50*5 +
		impactModifier(rawImpact)
	switch trend {
	case model.TrendImproving:
		modifier += 2
	case model.TrendDeclining:
		modifier -= 2
	}
	modifier = clamp(modifier, -maxDrift, maxDrift)

	base := float64(in.BaseSentiment)
	overall := clamp(math.Round(base+modifier), base-maxDrift, base+maxDrift)
	overall = clamp(overall, 0, 100)

	return model.EnhancedSentimentAnalysis{
		OverallScore: int(overall),
		Confidence:   confidence(quality, cred, recency),
		Breakdown: model.SentimentBreakdown{
			SourceCredibility: cred,
			RecencyWeight:     recency,
			VolumeScore:       volume,
			LanguageIntensity: language,
			EventImpact:       impact,
			TrendDirection:    trend,
		},
		Factors:     factors(len(recent), cred, recency, volume, language, rawImpact, trend),
		DataQuality: quality,
		LastUpdated: now,
	}
}

// CountRecent 时间窗内的提及数，供调用方汇总 PeerVolumes
func CountRecent(mentions []model.Mention, now time.Time) int {
	return len(withinHorizon(mentions, now))
}

func withinHorizon(mentions []model.Mention, now time.Time) []model.Mention {
	var out []model.Mention
	for _, m := range mentions {
		t, ok := news.ParseDate(m.PublishedDate)
		if !ok || now.Sub(t) <= sentimentHorizon {
			out = append(out, m)
		}
	}
	return out
}

// sourceCredibility 可信源占比（百分比）
func sourceCredibility(mentions []model.Mention) int {
	if len(mentions) == 0 {
		return 0
	}
	trusted := 0
	for _, m := range mentions {
		if sources.IsTrusted(m.Source) {
			trusted++
		}
	}
	return int(math.Round(float64(trusted) / float64(len(mentions)) * 100))
}

// recencyWeight 平均年龄越小越高：100*(1 - 平均天数/14)
func recencyWeight(mentions []model.Mention, now time.Time) int {
	if len(mentions) == 0 {
		return 0
	}
	var total float64
	for _, m := range mentions {
		t, ok := news.ParseDate(m.PublishedDate)
		if !ok {
			continue
		}
		total += math.Max(0, now.Sub(t).Hours()/24)
	}
	meanAge := total / float64(len(mentions))
	horizonDays := sentimentHorizon.Hours() / 24
	return int(clamp(math.Round(100*(1-meanAge/horizonDays)), 0, 100))
}

// volumeScore 相对同行中位数的音量：不高于中位数线性 0-50，高于中位数加速到 100
func volumeScore(n int, peerMedian float64) int {
	if peerMedian <= 0 {
		return min(100, n*5)
	}
	ratio := float64(n) / peerMedian
	if ratio <= 1 {
		return int(math.Round(50 * ratio))
	}
	return int(clamp(math.Round(50+25*(ratio-1)), 0, 100))
}

// languageIntensity 50 + 极性平衡 * 50 * min(1, 命中率)
func languageIntensity(mentions []model.Mention) int {
	if len(mentions) == 0 {
		return 50
	}
	texts := make([]string, 0, len(mentions)*2)
	for _, m := range mentions {
		texts = append(texts, m.Title, m.Snippet)
	}
	pos, neg := polarityHits(texts)
	total := pos + neg
	if total == 0 {
		return 50
	}
	balance := float64(pos-neg) / float64(total)
	hitRate := math.Min(1, float64(total)/float64(len(mentions)))
	return int(clamp(math.Round(50+balance*50*hitRate), 0, 100))
}

func rawEventImpact(events []model.BusinessEvent) int {
	sum := 0
	for _, e := range events {
		sum += eventWeights[e.Type]
	}
	return clampInt(sum, eventImpactMin, eventImpactMax)
}

// normalizeImpact 把 [-30,40] 映射到 [0,100]
func normalizeImpact(raw int) int {
	span := float64(eventImpactMax - eventImpactMin)
	return int(math.Round(float64(raw-eventImpactMin) / span * 100))
}

func impactModifier(raw int) float64 {
	switch {
	case raw > 0:
		return float64(raw) / eventImpactMax * 5
	case raw < 0:
		return float64(raw) / -eventImpactMin * 5
	default:
		return 0
	}
}

func trendDirection(momentum int) string {
	switch {
	case momentum > trendThreshold:
		return model.TrendImproving
	case momentum < -trendThreshold:
		return model.TrendDeclining
	default:
		return model.TrendStable
	}
}

func dataQuality(mentions []model.Mention) string {
	distinct := make(map[string]struct{})
	for _, m := range mentions {
		if m.Source != "" {
			distinct[m.Source] = struct{}{}
		}
	}
	switch n := len(mentions); {
	case n >= 15 && len(distinct) >= 5:
		return model.QualityHigh
	case n >= 6 && len(distinct) >= 3:
		return model.QualityMedium
	default:
		return model.QualityLow
	}
}

// confidence 40% 数据质量基线 + 30% 来源可信度 + 30% 新鲜度
func confidence(quality string, cred, recency int) int {
	baseline := 30.0
	switch quality {
	case model.QualityHigh:
		baseline = 100
	case model.QualityMedium:
		baseline = 65
	}
	v := 0.4*baseline + 0.3*float64(cred) + 0.3*float64(recency)
	return int(clamp(math.Round(v), 0, 100))
}

func factors(n, cred, recency, volume, language, rawImpact int, trend string) []string {
	var out []string
	if n > 0 && cred >= 60 {
		out = append(out, "Strong coverage from trusted outlets")
	}
	if n >= 3 && cred <= 20 {
		out = append(out, "Coverage dominated by lower-credibility sources")
	}
	if n > 0 && recency >= 70 {
		out = append(out, "Recent, fresh media attention")
	}
	if volume >= 75 {
		out = append(out, "Media volume above peer median")
	} else if n > 0 && volume <= 25 {
		out = append(out, "Low media volume relative to peers")
	}
	if language >= 65 {
		out = append(out, "Positive language in headlines")
	} else if language <= 35 {
		out = append(out, "Negative language in headlines")
	}
	if rawImpact >= 10 {
		out = append(out, "Positive business events (funding, launches, acquisitions)")
	} else if rawImpact < 0 {
		out = append(out, "Negative business events (layoffs)")
	}
	switch trend {
	case model.TrendImproving:
		out = append(out, "Narrative momentum improving")
	case model.TrendDeclining:
		out = append(out, "Narrative momentum declining")
	}
	if len(out) == 0 {
		out = append(out, "Neutral media environment")
	}
	return out
}

func median(values []int) float64 {
	if len(values) == 0 {
		return 0
	}
	s := append([]int(nil), values...)
	sort.Ints(s)
	mid := len(s) / 2
	if len(s)%2 == 1 {
		return float64(s[mid])
	}
	return float64(s[mid-1]+s[mid]) / 2
}
