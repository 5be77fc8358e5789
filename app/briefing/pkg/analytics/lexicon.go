package analytics

import (
	"math"
	"strings"
	"unicode"

	"github.com/iWorld-y/briefing_radar/app/briefing/pkg/model"
)

var positiveWords = toSet(
	"growth", "grows", "growing", "surge", "surges", "soar", "soars", "record",
	"profit", "profitable", "wins", "win", "award", "awarded", "expands", "expansion",
	"launch", "launches", "raises", "funding", "partnership", "partners", "innovative",
	"innovation", "breakthrough", "success", "successful", "strong", "beats", "upgrade",
	"milestone", "leading", "leader", "boost", "boosts", "gains", "acquires", "hires",
	"positive", "praised", "best", "momentum", "rally",
)

var negativeWords = toSet(
	"layoffs", "layoff", "cuts", "cut", "lawsuit", "sued", "sues", "decline", "declines",
	"drop", "drops", "falls", "fall", "loss", "losses", "breach", "hack", "hacked",
	"outage", "fraud", "scandal", "probe", "investigation", "fine", "fined", "recall",
	"bankrupt", "bankruptcy", "shutdown", "shuts", "downgrade", "misses", "weak",
	"struggles", "struggling", "controversy", "criticism", "criticized", "warning",
	"negative", "risk", "crisis",
)

func toSet(words ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// polarityHits 统计文本中的正负面词命中数
func polarityHits(texts []string) (pos, neg int) {
	for _, text := range texts {
		for _, tok := range tokenize(text) {
			if _, ok := positiveWords[tok]; ok {
				pos++
			}
			if _, ok := negativeWords[tok]; ok {
				neg++
			}
		}
	}
	return pos, neg
}

// LexicalSentiment 基于固定词表的确定性情绪分：
// 以 50 为中心按极性 ±35，再叠加对数音量加成（最多 ±10）；没有任何极性词时为 50。
func LexicalSentiment(headlines []string) int {
	pos, neg := polarityHits(headlines)
	total := pos + neg
	if total == 0 {
		return 50
	}
	polarity := float64(pos-neg) / float64(total)
	boost := math.Min(10, math.Log2(1+float64(total))*3)
	var sign float64
	switch {
	case polarity > 0:
		sign = 1
	case polarity < 0:
		sign = -1
	}
	score := 50 + 35*polarity + sign*boost
	return int(clamp(math.Round(score), 0, 100))
}

// Headlines 取出提及的标题
func Headlines(mentions []model.Mention) []string {
	out := make([]string, 0, len(mentions))
	for _, m := range mentions {
		if m.Title != "" {
			out = append(out, m.Title)
		}
	}
	return out
}
