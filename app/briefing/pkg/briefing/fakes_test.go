package briefing

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/iWorld-y/briefing_radar/app/briefing/pkg/canonical"
	"github.com/iWorld-y/briefing_radar/app/briefing/pkg/config"
	"github.com/iWorld-y/briefing_radar/app/briefing/pkg/llm"
	"github.com/iWorld-y/briefing_radar/app/briefing/pkg/search"
)

// fakeSearcher 按查询内容返回预置结果
type fakeSearcher struct {
	mu       sync.Mutex
	requests []search.Request
	respond  func(req *search.Request) []search.Result
}

func (f *fakeSearcher) Search(ctx context.Context, req *search.Request) (*search.Response, error) {
	f.mu.Lock()
	f.requests = append(f.requests, *req)
	f.mu.Unlock()
	if f.respond == nil {
		return &search.Response{}, nil
	}
	return &search.Response{Results: f.respond(req)}, nil
}

func (f *fakeSearcher) count(match func(search.Request) bool) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, r := range f.requests {
		if match(r) {
			n++
		}
	}
	return n
}

// scriptedBackend 根据提示词中的关键片段返回固定回复
type scriptedBackend struct {
	mu      sync.Mutex
	replies map[string]string
	err     error
	panics  bool
	prompts []string
}

func (s *scriptedBackend) Name() string { return "scripted" }

func (s *scriptedBackend) Complete(ctx context.Context, prompt string) (string, error) {
	s.mu.Lock()
	s.prompts = append(s.prompts, prompt)
	s.mu.Unlock()
	if s.panics {
		panic("backend exploded")
	}
	if s.err != nil {
		return "", s.err
	}
	for key, reply := range s.replies {
		if strings.Contains(prompt, key) {
			return reply, nil
		}
	}
	return "", nil
}

func healthyReplies() map[string]string {
	return map[string]string{
		"Identify the company that operates": `{"canonicalName":"Acme","aliases":["Acme","Acme Labs"],"industryHint":"Developer tools","brandTokens":["acme"]}`,
		"In one sentence":                    "Acme makes developer tooling.",
		"Provide a factual profile":          `{"name":"Acme","industry":"Developer tools","foundedYear":2019,"ipoStatus":"Private"}`,
		"Identify the founders":              `{"founders":[{"name":"Jane Doe","role":"Co-founder & CEO","confidence":"high"}],"executives":[{"name":"John Roe","role":"CTO"}]}`,
		"Provide structured company facts":   `{"name":"Acme","description":"Developer tooling company","products":["Acme CLI"],"socials":{"x":"https://x.com/acmehq"}}`,
		"List the 3 most direct competitors": `[]`,
		"Name three direct competitors":      "I am not aware of any.",
		"Propose up to 3 alternative":        `[]`,
		"Which of these headlines":           `[0,1,2,3,4,5]`,
		"Rate the overall media sentiment":   "72",
		"Write an executive briefing":        "Acme leads developer tooling.\n• a\n• b\n• c\nCompetitive lens: none.",
		"Who is the current CEO":             "Jane Doe",
	}
}

// acmeMentions 5 条最近 3 天内 + 2 条 10-12 天前
func acmeMentions(now time.Time) []search.Result {
	var rs []search.Result
	for i := 0; i < 5; i++ {
		rs = append(rs, search.Result{
			Title:         fmt.Sprintf("Acme ships release %d", i),
			URL:           fmt.Sprintf("https://techcrunch.com/acme-%d", i),
			PublishedDate: now.Add(-time.Duration(i*12+1) * time.Hour).Format(time.RFC3339),
		})
	}
	for i, d := range []int{10, 12} {
		rs = append(rs, search.Result{
			Title:         fmt.Sprintf("Acme earlier news %d", i),
			URL:           fmt.Sprintf("https://acme.io/blog/%d", i),
			PublishedDate: now.AddDate(0, 0, -d).Format(time.RFC3339),
		})
	}
	return rs
}

func mentionQuery(domain string) func(req *search.Request) bool {
	prefix := fmt.Sprintf("%q OR", domain)
	return func(req *search.Request) bool {
		return strings.HasPrefix(req.Query, prefix) && len(req.IncludeDomains) == 0
	}
}

type harness struct {
	orch     *Orchestrator
	searcher *fakeSearcher
	backend  *scriptedBackend
	built    int
}

func newHarness(t *testing.T, now time.Time, cfg *config.Config, backend *scriptedBackend, respond func(*search.Request) []search.Result) *harness {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><head><title>Acme</title></head><body><h1>Acme</h1></body></html>`))
	}))
	t.Cleanup(srv.Close)

	if cfg == nil {
		cfg = &config.Config{}
	}
	cfg.Concurrency.SignalIntervalMS = 1

	h := &harness{searcher: &fakeSearcher{respond: respond}, backend: backend}
	h.orch = New(cfg,
		WithClock(func() time.Time { return now }),
		WithSearcherFactory(func(apiKey string) (search.Searcher, error) {
			h.built++
			if apiKey == "" {
				return nil, search.ErrMissingAPIKey
			}
			return h.searcher, nil
		}),
		WithBackendFactory(func(ctx context.Context, cfg llm.ProviderConfig) (llm.Backend, error) {
			return h.backend, nil
		}),
		WithCanonicalResolver(canonical.NewResolver(nil, canonical.WithHomepageURL(func(string) string { return srv.URL }))),
	)
	return h
}

func validRequest() Request {
	return Request{
		Domain:    "acme.io",
		SearchKey: "exa-key",
		Providers: []llm.ProviderConfig{{Provider: llm.ProviderOpenAI, APIKey: "sk-test"}},
	}
}

func collect(t *testing.T, o *Orchestrator, req Request) ([]Event, error) {
	t.Helper()
	ch := make(chan Event, 64)
	err := o.Stream(context.Background(), req, ch)
	var events []Event
	for e := range ch {
		events = append(events, e)
	}
	return events, err
}

func names(events []Event) []string {
	out := make([]string, 0, len(events))
	for _, e := range events {
		out = append(out, e.Name)
	}
	return out
}

func find(events []Event, name string) (Event, bool) {
	for _, e := range events {
		if e.Name == name {
			return e, true
		}
	}
	return Event{}, false
}

var errDown = errors.New("503 service unavailable")
