package briefing

import (
	"testing"

	"github.com/go-playground/assert/v2"

	"github.com/iWorld-y/briefing_radar/app/briefing/pkg/model"
)

func TestParseCompetitorText(t *testing.T) {
	got := parseCompetitorText("Sure. The main rivals are [\"globex.com\", \"initech.com\"] in my view.")
	assert.Equal(t, len(got), 2)
	assert.Equal(t, got[1].Domain, "initech.com")

	got = parseCompetitorText(`Rivals [see below]: [{"name":"Globex","domain":"globex.com"}]`)
	assert.Equal(t, len(got), 1)
	assert.Equal(t, got[0].Name, "Globex")

	assert.Equal(t, len(parseCompetitorText("no brackets here")), 0)
}

func TestParseScore(t *testing.T) {
	tests := []struct {
		in   string
		want int
		ok   bool
	}{
		{"72", 72, true},
		{"Score: 64.6/100", 65, true},
		{"150", 0, false},
		{"-3", 0, false},
		{"neutral", 0, false},
		{"On a scale of 0 to 100, I'd rate it 72.", 72, true},
		{"Sentiment (0-100): 68", 68, true},
		{"81 out of 100", 81, true},
		{" 55\n", 55, true},
		{"On a scale of 0-100.", 0, false},
	}
	for _, tt := range tests {
		got, ok := parseScore(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("parseScore(%q) = %d,%v", tt.in, got, ok)
		}
	}
}

func TestLooksGeneric(t *testing.T) {
	assert.Equal(t, looksGeneric("acme", "acme"), true)
	assert.Equal(t, looksGeneric("IBM", "ibm"), true)
	assert.Equal(t, looksGeneric("Xyz", "other"), true)
	assert.Equal(t, looksGeneric("Acme Robotics", "acme"), false)
}

func TestFilterByAliases(t *testing.T) {
	ms := []model.Mention{
		{Title: "Acme Labs ships", Source: "blog.example", URL: "https://blog.example/1"},
		{Title: "Unrelated", Source: "techcrunch.com", URL: "https://techcrunch.com/2"},
		{Title: "Something else", Source: "random.example", URL: "https://random.example/3"},
		{Title: "Team update", Source: "acme.io", URL: "https://acme.io/blog"},
	}
	info := &model.CanonicalInfo{CanonicalName: "Acme Labs", Aliases: []string{"Acme Labs"}}
	got := filterByAliases(ms, aliasTokens(info, "acme"), "acme.io")
	assert.Equal(t, len(got), 3)
}

func TestKeepIndices(t *testing.T) {
	items := []model.NewsItem{{URL: "a"}, {URL: "b"}, {URL: "c"}}
	got := keepIndices(items, []int{2, 0, 9})
	assert.Equal(t, len(got), 2)
	assert.Equal(t, got[0].URL, "a")
}

func TestFallbackSummary(t *testing.T) {
	s := fallbackSummary(
		model.CompanyProfile{Name: "Acme", Domain: "acme.io"},
		[]model.BenchmarkRow{{NarrativeMomentum: 150, SentimentScore: 60, PulseIndex: 76}},
		[]model.Competitor{{Name: "Globex"}},
	)
	assert.Equal(t, s, "Acme (acme.io) operates in its market.\n"+
		"• Momentum: narrative momentum is +150% with a pulse index of 76/100.\n"+
		"• Sentiment: media sentiment scores 60/100 across 0 mentions this week.\n"+
		"Competitive lens: benchmarked against Globex.")
}
