package news

import (
	"math"
	"testing"
	"time"

	"github.com/go-playground/assert/v2"

	"github.com/iWorld-y/briefing_radar/app/briefing/pkg/model"
)

var now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func TestScoreItem_FreshFundingBeatsStaleNoise(t *testing.T) {
	fresh := model.NewsItem{
		Title:         "Acme raises Series A to expand robotics",
		PublishedDate: now.Format(time.RFC3339),
		Credibility:   model.TierTrusted,
	}
	stale := model.NewsItem{
		Title:         "Weekly roundup of things",
		PublishedDate: now.AddDate(0, 0, -30).Format(time.RFC3339),
		Credibility:   model.TierOther,
	}

	if ScoreItem(fresh, now) <= ScoreItem(stale, now) {
		t.Errorf("fresh=%f stale=%f", ScoreItem(fresh, now), ScoreItem(stale, now))
	}
}

func TestFreshness(t *testing.T) {
	assert.Equal(t, Freshness("", now), 1.0)
	assert.Equal(t, Freshness("not a date", now), 1.0)

	got := Freshness(now.Add(-72*time.Hour).Format(time.RFC3339), now)
	if math.Abs(got-0.5) > 1e-9 {
		t.Errorf("half-life freshness = %f", got)
	}
}

func TestTopicality(t *testing.T) {
	tests := []struct {
		title string
		want  float64
	}{
		{"Acme raises $10M seed", 0.6},
		{"Acme announces new office", 0.3},
		{"Acme announces partnership with Globex", 0.9},
		{"Acme CEO on podcast", 0},
		{"ACME UNVEILS product LAUNCH", 0.9},
	}
	for _, tt := range tests {
		if got := Topicality(tt.title); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("Topicality(%q) = %f, want %f", tt.title, got, tt.want)
		}
	}
}

func TestRank_TieBreaksByDate(t *testing.T) {
	older := model.NewsItem{Title: "a", URL: "1", PublishedDate: now.Add(-2 * time.Hour).Format(time.RFC3339)}
	newer := model.NewsItem{Title: "a", URL: "2", PublishedDate: now.Add(-1 * time.Hour).Format(time.RFC3339)}
	same := model.NewsItem{Title: "a", URL: "3", PublishedDate: now.Add(-1 * time.Hour).Format(time.RFC3339)}

	ranked := Rank([]model.NewsItem{older, newer, same}, now)
	assert.Equal(t, ranked[0].URL, "2")
	assert.Equal(t, ranked[1].URL, "3")
	assert.Equal(t, ranked[2].URL, "1")
}

func TestSelectTop(t *testing.T) {
	ranked := []model.NewsItem{{URL: "a", Score: 0.8}, {URL: "b", Score: 0.5}, {URL: "c", Score: 0.1}}

	got := SelectTop(ranked, 2, 0.3, 1)
	assert.Equal(t, len(got), 2)
	assert.Equal(t, got[1].URL, "b")

	low := []model.NewsItem{{URL: "x", Score: 0.05}, {URL: "y", Score: 0.01}}
	got = SelectTop(low, 3, 0.3, 1)
	assert.Equal(t, len(got), 1)
	assert.Equal(t, got[0].URL, "x")

	assert.Equal(t, len(SelectTop(nil, 3, 0.3, 1)), 0)
}

func TestParseDate(t *testing.T) {
	for _, s := range []string{"2025-05-30", "2025-05-30T10:00:00Z", "2025-05-30T10:00:00.000Z", "2025-05-30 10:00:00"} {
		if _, ok := ParseDate(s); !ok {
			t.Errorf("ParseDate(%q) failed", s)
		}
	}
	if _, ok := ParseDate("yesterday"); ok {
		t.Error("garbage should not parse")
	}
}
