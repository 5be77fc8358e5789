package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	nethttp "net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-kratos/kratos/v2/transport/http"
	"github.com/go-playground/assert/v2"

	"github.com/iWorld-y/briefing_radar/app/briefing/pkg/briefing"
	"github.com/iWorld-y/briefing_radar/app/briefing/pkg/config"
	"github.com/iWorld-y/briefing_radar/app/briefing/pkg/llm"
)

type fakeBriefer struct {
	validateErr error
	events      []briefing.Event
	streamErr   error
	report      *briefing.ConsolidatedReport
	reportErr   error

	mu  sync.Mutex
	got briefing.Request
}

func (f *fakeBriefer) record(req briefing.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.got = req
}

func (f *fakeBriefer) last() briefing.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.got
}

func (f *fakeBriefer) Validate(req briefing.Request) error {
	f.record(req)
	return f.validateErr
}

func (f *fakeBriefer) Stream(_ context.Context, req briefing.Request, out chan<- briefing.Event) error {
	defer close(out)
	f.record(req)
	for _, e := range f.events {
		out <- e
	}
	return f.streamErr
}

func (f *fakeBriefer) Consolidated(_ context.Context, req briefing.Request) (*briefing.ConsolidatedReport, error) {
	f.record(req)
	return f.report, f.reportErr
}

func newTestServer(t *testing.T, f *fakeBriefer) *httptest.Server {
	t.Helper()
	s := newBriefingService(f, &config.Config{}, log.DefaultLogger)
	srv := http.NewServer()
	Register(srv, s)
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)
	return ts
}

func post(t *testing.T, url, body string) (*nethttp.Response, string) {
	t.Helper()
	resp, err := nethttp.Post(url, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, string(data)
}

const validBody = `{"domain":"acme.io","keys":{"exa":"exa-key","openai":"sk-test","anthropic":""}}`

func TestStream_WritesEventsInOrder(t *testing.T) {
	f := &fakeBriefer{events: []briefing.Event{
		{Name: briefing.EventCanonical, Data: map[string]string{"canonicalName": "Acme"}},
		{Name: briefing.EventDone, Data: briefing.DonePayload{ElapsedMs: 12}},
	}}
	ts := newTestServer(t, f)

	resp, body := post(t, ts.URL+StreamPath, validBody)
	assert.Equal(t, resp.StatusCode, nethttp.StatusOK)
	assert.Equal(t, resp.Header.Get("Content-Type"), "text/event-stream")
	assert.Equal(t, resp.Header.Get("Cache-Control"), "no-cache")

	want := "event: canonical\ndata: {\"canonicalName\":\"Acme\"}\n\n"
	if !strings.HasPrefix(body, want) {
		t.Fatalf("body = %q, want prefix %q", body, want)
	}
	if !strings.Contains(body, "event: done\ndata: ") {
		t.Errorf("missing done event in %q", body)
	}
	if strings.Index(body, "event: canonical") > strings.Index(body, "event: done") {
		t.Error("done written before canonical")
	}

	req := f.last()
	assert.Equal(t, req.Domain, "acme.io")
	assert.Equal(t, req.SearchKey, "exa-key")
	assert.Equal(t, len(req.Providers), 1)
	assert.Equal(t, req.Providers[0].Provider, llm.ProviderOpenAI)
}

func TestStream_OrderOverride(t *testing.T) {
	f := &fakeBriefer{events: []briefing.Event{{Name: briefing.EventDone, Data: briefing.DonePayload{}}}}
	ts := newTestServer(t, f)

	post(t, ts.URL+StreamPath, `{"domain":"acme.io","keys":{"exa":"k","openai":"a","anthropic":"b"},"order":["anthropic"]}`)
	req := f.last()
	assert.Equal(t, len(req.Providers), 2)
	assert.Equal(t, req.Providers[0].Provider, llm.ProviderAnthropic)
}

func TestStream_RejectsBeforeStreaming(t *testing.T) {
	cases := []struct {
		name       string
		f          *fakeBriefer
		body       string
		wantStatus int
		wantReason string
	}{
		{
			name:       "missing credential",
			f:          &fakeBriefer{validateErr: fmt.Errorf("%w: exa api key is required", briefing.ErrMissingCredential)},
			body:       validBody,
			wantStatus: nethttp.StatusBadRequest,
			wantReason: "MISSING_CREDENTIAL",
		},
		{
			name:       "invalid domain",
			f:          &fakeBriefer{validateErr: briefing.ErrInvalidDomain},
			body:       `{"domain":"","keys":{}}`,
			wantStatus: nethttp.StatusBadRequest,
			wantReason: "INVALID_DOMAIN",
		},
		{
			name:       "backend setup fails",
			f:          &fakeBriefer{streamErr: fmt.Errorf("%w: no usable backend", briefing.ErrMissingCredential)},
			body:       validBody,
			wantStatus: nethttp.StatusBadRequest,
			wantReason: "MISSING_CREDENTIAL",
		},
		{
			name:       "malformed body",
			f:          &fakeBriefer{},
			body:       `{"domain":`,
			wantStatus: nethttp.StatusBadRequest,
			wantReason: "INVALID_BODY",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ts := newTestServer(t, tc.f)
			resp, body := post(t, ts.URL+StreamPath, tc.body)
			assert.Equal(t, resp.StatusCode, tc.wantStatus)
			if strings.Contains(resp.Header.Get("Content-Type"), "event-stream") {
				t.Fatalf("stream opened for rejected request")
			}
			if !strings.Contains(body, tc.wantReason) {
				t.Errorf("body = %q, want reason %s", body, tc.wantReason)
			}
		})
	}
}

func TestStream_MethodNotAllowed(t *testing.T) {
	ts := newTestServer(t, &fakeBriefer{})
	resp, err := nethttp.Get(ts.URL + StreamPath)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	assert.Equal(t, resp.StatusCode, nethttp.StatusMethodNotAllowed)
}

func TestConsolidated(t *testing.T) {
	f := &fakeBriefer{report: &briefing.ConsolidatedReport{
		RequestDomain: "acme.io",
		ExecutiveCard: briefing.ExecutiveCard{PulseIndex: 61, NarrativeMomentum: 40, SentimentScore: 75},
		AISummary:     briefing.AISummary{Bullets: []string{"a", "b", "c"}, TLDR: "steady"},
	}}
	ts := newTestServer(t, f)

	resp, body := post(t, ts.URL+ConsolidatedPath, validBody)
	assert.Equal(t, resp.StatusCode, nethttp.StatusOK)

	var got briefing.ConsolidatedReport
	if err := json.Unmarshal([]byte(body), &got); err != nil {
		t.Fatalf("decode %q: %v", body, err)
	}
	assert.Equal(t, got.RequestDomain, "acme.io")
	assert.Equal(t, got.ExecutiveCard.SentimentScore, 75)
	assert.Equal(t, got.AISummary.TLDR, "steady")
	assert.Equal(t, f.last().SearchKey, "exa-key")
}

func TestConsolidated_Errors(t *testing.T) {
	ts := newTestServer(t, &fakeBriefer{reportErr: briefing.ErrInvalidDomain})
	resp, body := post(t, ts.URL+ConsolidatedPath, validBody)
	assert.Equal(t, resp.StatusCode, nethttp.StatusBadRequest)
	if !strings.Contains(body, "INVALID_DOMAIN") {
		t.Errorf("body = %q", body)
	}

	ts = newTestServer(t, &fakeBriefer{reportErr: fmt.Errorf("search exploded")})
	resp, _ = post(t, ts.URL+ConsolidatedPath, validBody)
	assert.Equal(t, resp.StatusCode, nethttp.StatusInternalServerError)
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, &fakeBriefer{})
	resp, err := nethttp.Get(ts.URL + HealthPath)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	assert.Equal(t, resp.StatusCode, nethttp.StatusOK)
}

func TestWriteEvent(t *testing.T) {
	var sb strings.Builder
	err := writeEvent(&sb, briefing.Event{Name: briefing.EventError, Data: briefing.ErrorPayload{Message: "boom"}})
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, sb.String(), "event: error\ndata: {\"message\":\"boom\"}\n\n")
}
