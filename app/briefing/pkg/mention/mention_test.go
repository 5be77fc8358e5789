package mention

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-playground/assert/v2"

	"github.com/iWorld-y/briefing_radar/app/briefing/pkg/limiter"
	"github.com/iWorld-y/briefing_radar/app/briefing/pkg/model"
	"github.com/iWorld-y/briefing_radar/app/briefing/pkg/search"
)

var now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

type fakeSearcher struct {
	mu       sync.Mutex
	requests []*search.Request
	calledAt []time.Time
	respond  func(req *search.Request) (*search.Response, error)
}

func (f *fakeSearcher) Search(ctx context.Context, req *search.Request) (*search.Response, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.calledAt = append(f.calledAt, time.Now())
	f.mu.Unlock()
	return f.respond(req)
}

func newClient(f *fakeSearcher, interval time.Duration) *Client {
	return NewClient(f, limiter.New(5), interval).WithClock(func() time.Time { return now })
}

func TestDedupe_FirstWins(t *testing.T) {
	in := []model.Mention{
		{URL: "https://a.com/1", Title: "first"},
		{URL: "https://b.com/1"},
		{URL: "https://a.com/1", Title: "second"},
		{URL: "https://b.com/1"},
	}
	got := Dedupe(in)
	assert.Equal(t, len(got), 2)
	assert.Equal(t, got[0].Title, "first")
}

func TestNormalizeDate(t *testing.T) {
	assert.Equal(t, NormalizeDate("2025-05-30T08:00:00Z", now), "2025-05-30T08:00:00Z")
	assert.Equal(t, NormalizeDate("2025-05-30", now), "2025-05-30T00:00:00Z")
	assert.Equal(t, NormalizeDate("", now), "2025-06-01T12:00:00Z")
	assert.Equal(t, NormalizeDate("garbage", now), "2025-06-01T12:00:00Z")
	assert.Equal(t, NormalizeDate("2030-01-01T00:00:00Z", now), "2025-06-01T12:00:00Z")
}

func TestFilterHomonyms(t *testing.T) {
	in := []model.Mention{
		{URL: "https://brandname-unrelated.com/x", Source: "brandname-unrelated.com"},
		{URL: "https://brand.com/blog", Source: "brand.com"},
		{URL: "https://news.brand.com/p", Source: "news.brand.com"},
		{URL: "https://techcrunch.com/brand-raises", Source: "techcrunch.com"},
		{URL: "https://other.io/brand", Source: "other.io"},
	}
	got := FilterHomonyms(in, "brand.com")

	var hosts []string
	for _, m := range got {
		hosts = append(hosts, m.Source)
	}
	assert.Equal(t, hosts, []string{"brand.com", "news.brand.com", "techcrunch.com", "other.io"})
}

func TestFetchMentions(t *testing.T) {
	f := &fakeSearcher{respond: func(req *search.Request) (*search.Response, error) {
		return &search.Response{Results: []search.Result{
			{Title: "Acme ships", URL: "https://techcrunch.com/acme", PublishedDate: "2025-05-31T10:00:00Z"},
			{Title: "dup", URL: "https://techcrunch.com/acme"},
			{Title: "Acme-shop sale", URL: "https://www.acme-shop.com/sale"},
			{Title: "Acme blog", URL: "https://acme.io/blog", PublishedDate: "2099-01-01"},
		}}, nil
	}}

	got := newClient(f, time.Millisecond).FetchMentions(context.Background(), "https://www.Acme.io/")
	assert.Equal(t, len(got), 2)
	assert.Equal(t, got[0].Credibility, model.TierTrusted)
	assert.Equal(t, got[1].Credibility, model.TierOwned)
	assert.Equal(t, got[1].PublishedDate, "2025-06-01T12:00:00Z")

	req := f.requests[0]
	assert.Equal(t, req.Query, `"acme.io" OR "acme"`)
	assert.Equal(t, req.MaxResults, 25)
	assert.Equal(t, req.StartDate, "2025-05-18")
	assert.Equal(t, req.EndDate, "2025-06-01")
}

func TestFetchMentions_QueryFailureIsEmpty(t *testing.T) {
	f := &fakeSearcher{respond: func(req *search.Request) (*search.Response, error) {
		return nil, errors.New("429 too many requests")
	}}
	got := newClient(f, time.Millisecond).FetchMentions(context.Background(), "acme.io")
	assert.Equal(t, len(got), 0)
}

func TestFetchSignals_SequentialAndPaced(t *testing.T) {
	f := &fakeSearcher{respond: func(req *search.Request) (*search.Response, error) {
		switch {
		case strings.Contains(req.Query, "funding"):
			return &search.Response{Results: []search.Result{{Title: "Acme raises $5M", URL: "https://techcrunch.com/a"}}}, nil
		case strings.Contains(req.Query, "launches"):
			return nil, errors.New("boom")
		case strings.Contains(req.Query, "layoffs"):
			return &search.Response{Results: []search.Result{
				{Title: "Acme cuts staff", URL: "https://reuters.com/b"},
				{Title: "again", URL: "https://techcrunch.com/a"},
			}}, nil
		}
		return &search.Response{}, nil
	}}

	interval := 20 * time.Millisecond
	events := newClient(f, interval).FetchSignals(context.Background(), "acme.io")

	assert.Equal(t, len(f.requests), 4)
	for i := 1; i < len(f.calledAt); i++ {
		if gap := f.calledAt[i].Sub(f.calledAt[i-1]); gap < interval-2*time.Millisecond {
			t.Errorf("query %d started %v after previous, want >= %v", i, gap, interval)
		}
	}
	for _, req := range f.requests {
		assert.Equal(t, req.StartDate, "2025-03-03")
		if len(req.IncludeDomains) == 0 {
			t.Error("signal queries must use the allow-list")
		}
	}

	assert.Equal(t, len(events), 2)
	assert.Equal(t, events[0].Type, model.EventFunding)
	assert.Equal(t, events[1].Type, model.EventLayoffs)
}

func TestFetchCompanyNews_AtLeastOne(t *testing.T) {
	old := now.AddDate(0, 0, -29).Format(time.RFC3339)
	f := &fakeSearcher{respond: func(req *search.Request) (*search.Response, error) {
		return &search.Response{Results: []search.Result{{Title: "misc", URL: "https://blog.example/x", PublishedDate: old}}}, nil
	}}

	got := newClient(f, time.Millisecond).FetchCompanyNews(context.Background(), "acme.io", 3)
	assert.Equal(t, len(got), 1)
	assert.Equal(t, len(f.requests), 3)
}

func TestFetchCompanyNews_TopLimit(t *testing.T) {
	f := &fakeSearcher{respond: func(req *search.Request) (*search.Response, error) {
		var rs []search.Result
		for _, p := range []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j"} {
			rs = append(rs, search.Result{Title: "Acme raises funding " + p, URL: "https://reuters.com/" + p, PublishedDate: now.Format(time.RFC3339)})
		}
		return &search.Response{Results: rs}, nil
	}}

	got := newClient(f, time.Millisecond).FetchCompanyNews(context.Background(), "acme.io", 3)
	assert.Equal(t, len(got), 3)
	assert.Equal(t, len(f.requests), 1)
	if got[0].Score < newsMinScore {
		t.Errorf("score = %f", got[0].Score)
	}
}

func TestSearchFounderInfo(t *testing.T) {
	f := &fakeSearcher{respond: func(req *search.Request) (*search.Response, error) {
		return &search.Response{Results: []search.Result{
			{Title: "Jane Doe - CEO", URL: "https://linkedin.com/in/jane"},
		}}, nil
	}}
	got := newClient(f, time.Millisecond).SearchFounderInfo(context.Background(), "acme.io", "Acme")
	assert.Equal(t, len(got), 1)
	assert.Equal(t, len(f.requests), 2)
	assert.Equal(t, f.requests[0].IncludeDomains[0], "linkedin.com")
}

func TestAdHocSearch(t *testing.T) {
	f := &fakeSearcher{respond: func(req *search.Request) (*search.Response, error) {
		return &search.Response{Results: []search.Result{{URL: "https://x.com/1"}}}, nil
	}}
	c := newClient(f, time.Millisecond)
	assert.Equal(t, len(c.AdHocSearch(context.Background(), "acme robotics", 5)), 1)
	assert.Equal(t, f.requests[0].MaxResults, 5)
	assert.Equal(t, len(c.AdHocSearch(context.Background(), "  ", 5)), 0)
}
