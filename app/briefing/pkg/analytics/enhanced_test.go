package analytics

import (
	"fmt"
	"testing"

	"github.com/go-playground/assert/v2"

	"github.com/iWorld-y/briefing_radar/app/briefing/pkg/model"
)

func TestEnhanced_DriftBounded(t *testing.T) {
	var glowing, grim []model.Mention
	for i := 0; i < 30; i++ {
		glowing = append(glowing, mentionAt(0, fmt.Sprintf("Acme record growth success wins award %d", i), fmt.Sprintf("n%d.techcrunch.com", i%6)))
		grim = append(grim, mentionAt(13.5, fmt.Sprintf("Acme layoffs lawsuit fraud crisis %d", i), "blog.example"))
	}
	var good, bad []model.BusinessEvent
	for i := 0; i < 10; i++ {
		good = append(good, model.BusinessEvent{Type: model.EventFunding})
		bad = append(bad, model.BusinessEvent{Type: model.EventLayoffs})
	}

	cases := []struct {
		name     string
		mentions []model.Mention
		events   []model.BusinessEvent
		momentum int
		peers    []int
	}{
		{"all positive", glowing, good, 10000, []int{1, 1, 1}},
		{"all negative", grim, bad, -10000, []int{500, 500}},
		{"empty", nil, nil, 0, nil},
		{"empty with peers", nil, bad, -10000, []int{0, 40}},
	}

	for _, c := range cases {
		for _, base := range []int{0, 1, 50, 85, 99, 100} {
			t.Run(fmt.Sprintf("%s/base=%d", c.name, base), func(t *testing.T) {
				got := Enhanced(EnhancedInput{
					Mentions: c.mentions, Events: c.events, BaseSentiment: base,
					Momentum: c.momentum, PeerVolumes: c.peers, Now: now,
				})
				diff := got.OverallScore - base
				if diff > 15 || diff < -15 {
					t.Errorf("drift %d exceeds 15", diff)
				}
				if got.OverallScore < 0 || got.OverallScore > 100 {
					t.Errorf("overall %d out of range", got.OverallScore)
				}
				if len(got.Factors) == 0 {
					t.Error("factors must never be empty")
				}
				if got.Confidence < 0 || got.Confidence > 100 {
					t.Errorf("confidence %d", got.Confidence)
				}
			})
		}
	}
}

func TestEnhanced_Breakdown(t *testing.T) {
	mentions := []model.Mention{
		mentionAt(0, "Acme launches product", "techcrunch.com"),
		mentionAt(0, "Acme raises funding", "reuters.com"),
		mentionAt(0, "Acme hosts meetup", "random.blog"),
		mentionAt(0, "Acme update", "other.site"),
	}
	got := Enhanced(EnhancedInput{
		Mentions:      mentions,
		Events:        []model.BusinessEvent{{Type: model.EventFunding}, {Type: model.EventLaunch}},
		BaseSentiment: 60,
		Momentum:      20,
		PeerVolumes:   []int{4, 2, 6},
		Now:           now,
	})

	assert.Equal(t, got.Breakdown.SourceCredibility, 50)
	assert.Equal(t, got.Breakdown.RecencyWeight, 100)
	assert.Equal(t, got.Breakdown.VolumeScore, 50)
	assert.Equal(t, got.Breakdown.EventImpact, 79) // raw 25 -> (25+30)/70
	assert.Equal(t, got.Breakdown.TrendDirection, model.TrendImproving)
	assert.Equal(t, got.DataQuality, model.QualityLow)
	// 0.4*30 + 0.3*50 + 0.3*100
	assert.Equal(t, got.Confidence, 57)
	if got.OverallScore <= 60 {
		t.Errorf("positive signals should lift the score, got %d", got.OverallScore)
	}
}

func TestEnhanced_NeutralFactor(t *testing.T) {
	got := Enhanced(EnhancedInput{BaseSentiment: 50, Now: now})
	assert.Equal(t, got.Factors, []string{"Neutral media environment"})
	assert.Equal(t, got.Breakdown.TrendDirection, model.TrendStable)
	assert.Equal(t, got.Breakdown.EventImpact, 43)
}

func TestEnhanced_HorizonExcludesOld(t *testing.T) {
	mentions := []model.Mention{mentionAt(1, "a", "x.com"), mentionAt(20, "b", "y.com")}
	assert.Equal(t, CountRecent(mentions, now), 1)
}

func TestDataQuality(t *testing.T) {
	var ms []model.Mention
	for i := 0; i < 15; i++ {
		ms = append(ms, mentionAt(1, "t", fmt.Sprintf("s%d.com", i%5)))
	}
	assert.Equal(t, dataQuality(ms), model.QualityHigh)
	assert.Equal(t, dataQuality(ms[:6]), model.QualityMedium)
	assert.Equal(t, dataQuality(ms[:2]), model.QualityLow)
}

func TestVolumeScore(t *testing.T) {
	assert.Equal(t, volumeScore(3, 0), 15)
	assert.Equal(t, volumeScore(40, 0), 100)
	assert.Equal(t, volumeScore(2, 4), 25)
	assert.Equal(t, volumeScore(8, 4), 75)
	assert.Equal(t, volumeScore(100, 4), 100)
}
