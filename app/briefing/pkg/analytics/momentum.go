// Package analytics 纯函数形式的指标计算：叙事动量、脉搏指数、历史情绪序列、增强情绪分析。
package analytics

import (
	"math"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/iWorld-y/briefing_radar/app/briefing/pkg/model"
	"github.com/iWorld-y/briefing_radar/app/briefing/pkg/news"
)

const (
	momentumWindow = 7 * 24 * time.Hour
	historyDays    = 7
)

// Momentum 最近 7 天与之前 7 天的提及数变化百分比。
// 前一窗口为 0 时：最近窗口非空记 100，否则记 0。
func Momentum(mentions []model.Mention, now time.Time) int {
	recent, previous := 0, 0
	for _, m := range mentions {
		t, ok := news.ParseDate(m.PublishedDate)
		if !ok {
			continue
		}
		age := now.Sub(t)
		switch {
		case age <= momentumWindow:
			recent++
		case age <= 2*momentumWindow:
			previous++
		}
	}
	if previous == 0 {
		if recent > 0 {
			return 100
		}
		return 0
	}
	return int(math.Round(float64(recent-previous) / float64(previous) * 100))
}

// PulseIndex 动量先截断到 [-100,100] 折算为 0-40，再叠加 0.6*情绪，结果截断到 [0,100]
func PulseIndex(momentum, sentiment int) int {
	m := clamp(float64(momentum), -100, 100)
	v := (m+100)*0.2 + float64(sentiment)*0.6
	return int(clamp(math.Round(v), 0, 100))
}

// HistoricalSeries 生成截止今天的 7 个每日情绪点（从旧到新）。
// rng 为 nil 时使用全局随机源。
func HistoricalSeries(mentions []model.Mention, score int, now time.Time, rng *rand.Rand) []model.HistoricalPoint {
	points := make([]model.HistoricalPoint, 0, historyDays)
	today := now.UTC()
	for i := historyDays - 1; i >= 0; i-- {
		day := today.AddDate(0, 0, -i).Format(time.DateOnly)
		if len(mentions) == 0 {
			points = append(points, model.HistoricalPoint{Date: day, Sentiment: clampInt(score, 0, 100)})
			continue
		}

		count := 0
		for _, m := range mentions {
			if strings.HasPrefix(m.PublishedDate, day) {
				count++
			}
		}
		boost := min(10, count*2)
		points = append(points, model.HistoricalPoint{
			Date:      day,
			Sentiment: clampInt(score+boost+jitter(rng), 0, 100),
			Mentions:  count,
		})
	}
	return points
}

// jitter 返回 [-5,5] 的整数扰动
func jitter(rng *rand.Rand) int {
	if rng == nil {
		return rand.IntN(11) - 5
	}
	return rng.IntN(11) - 5
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func clampInt(v, lo, hi int) int {
	return max(lo, min(hi, v))
}
