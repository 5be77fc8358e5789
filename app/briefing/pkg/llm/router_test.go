package llm

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type fakeBackend struct {
	name  string
	reply string
	err   error
	calls int
	last  string
}

func (f *fakeBackend) Name() string { return f.name }

func (f *fakeBackend) Complete(ctx context.Context, prompt string) (string, error) {
	f.calls++
	f.last = prompt
	return f.reply, f.err
}

func TestRouter_FallsThroughFailures(t *testing.T) {
	rateLimited := &fakeBackend{name: "openai", err: &BackendError{Provider: "openai", Kind: FailureRateLimited, Err: errors.New("429")}}
	empty := &fakeBackend{name: "anthropic", reply: "   "}
	healthy := &fakeBackend{name: "gemini", reply: "hello"}

	r := NewRouter(rateLimited, empty, healthy)
	got, err := r.GenerateText(context.Background(), "hi")
	if err != nil {
		t.Fatalf("GenerateText() error = %v", err)
	}
	if got != "hello" {
		t.Errorf("got %q", got)
	}
	if rateLimited.calls != 1 || empty.calls != 1 || healthy.calls != 1 {
		t.Errorf("calls = %d/%d/%d", rateLimited.calls, empty.calls, healthy.calls)
	}
}

func TestRouter_StopsAtFirstSuccess(t *testing.T) {
	first := &fakeBackend{name: "a", reply: "one"}
	second := &fakeBackend{name: "b", reply: "two"}

	got, _ := NewRouter(first, second).GenerateText(context.Background(), "x")
	if got != "one" || second.calls != 0 {
		t.Errorf("got %q, second.calls = %d", got, second.calls)
	}
}

func TestRouter_Exhausted(t *testing.T) {
	last := errors.New("invalid key")
	r := NewRouter(
		&fakeBackend{name: "a", err: errors.New("boom")},
		&fakeBackend{name: "b", err: last},
	)

	_, err := r.GenerateText(context.Background(), "x")
	if !errors.Is(err, ErrProviderExhausted) {
		t.Fatalf("err = %v, want ErrProviderExhausted", err)
	}
	if !errors.Is(err, last) {
		t.Errorf("err should wrap the last cause")
	}
	var ex *ExhaustedError
	if !errors.As(err, &ex) || ex.Attempts != 2 {
		t.Errorf("ExhaustedError = %+v", ex)
	}
	if !IsFallbackWorthy(err) {
		t.Error("exhaustion should be fallback-worthy")
	}
}

func TestRouter_NoProviders(t *testing.T) {
	var r *Router
	if _, err := r.GenerateText(context.Background(), "x"); !errors.Is(err, ErrNoProviders) {
		t.Errorf("err = %v", err)
	}
	if _, err := NewRouter().GenerateText(context.Background(), "x"); !errors.Is(err, ErrNoProviders) {
		t.Errorf("err = %v", err)
	}
}

func TestGenerateJSON(t *testing.T) {
	b := &fakeBackend{name: "a", reply: "```json\n{\"name\":\"Acme\",\"tokens\":[\"acme\"]}\n```"}

	type out struct {
		Name   string   `json:"name"`
		Tokens []string `json:"tokens"`
	}
	got, err := GenerateJSON[out](context.Background(), NewRouter(b), "describe")
	if err != nil {
		t.Fatalf("GenerateJSON() error = %v", err)
	}
	if got.Name != "Acme" || len(got.Tokens) != 1 {
		t.Errorf("got %+v", got)
	}
	if !strings.HasSuffix(b.last, jsonInstruction) {
		t.Error("prompt should end with the raw-JSON instruction")
	}
}

func TestGenerateJSON_Malformed(t *testing.T) {
	b := &fakeBackend{name: "a", reply: "I'd rather not."}
	_, err := GenerateJSON[map[string]any](context.Background(), NewRouter(b), "x")
	if !errors.Is(err, ErrMalformedOutput) {
		t.Fatalf("err = %v, want ErrMalformedOutput", err)
	}
	if errors.Is(err, ErrProviderExhausted) {
		t.Error("parse failure must be distinct from provider exhaustion")
	}

	b.reply = `{"a": tru}`
	_, err = GenerateJSON[map[string]any](context.Background(), NewRouter(b), "x")
	var mo *MalformedOutputError
	if !errors.As(err, &mo) {
		t.Fatalf("err = %v", err)
	}
}

func TestGenerateJSON_TruncatedObject(t *testing.T) {
	type identity struct {
		CanonicalName string `json:"canonicalName"`
	}
	b := &fakeBackend{name: "a", reply: `{"canonicalName": "Acme", "meta": {"canonicalName": "Wrong Co"}, "aliases": ["Acme"`}
	got, err := GenerateJSON[identity](context.Background(), NewRouter(b), "x")
	if !errors.Is(err, ErrMalformedOutput) {
		t.Fatalf("err = %v, got = %+v, want ErrMalformedOutput", err, got)
	}
}

func TestGenerateJSON_Exhausted(t *testing.T) {
	b := &fakeBackend{name: "a", err: errors.New("down")}
	_, err := GenerateJSON[[]string](context.Background(), NewRouter(b), "x")
	if !errors.Is(err, ErrProviderExhausted) {
		t.Errorf("err = %v", err)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		err  error
		want FailureKind
	}{
		{errors.New("error, status code: 429, message: rate limit"), FailureRateLimited},
		{errors.New("Incorrect API key provided"), FailureInvalidKey},
		{errors.New("dial tcp: connection refused"), FailureTransport},
		{errors.New("something odd"), FailureOther},
	}
	for _, tt := range tests {
		if got := classifyMessage(tt.err); got != tt.want {
			t.Errorf("classifyMessage(%q) = %s, want %s", tt.err, got, tt.want)
		}
	}
	if classifyStatus(401) != FailureInvalidKey || classifyStatus(503) != FailureTransport {
		t.Error("classifyStatus mismatch")
	}
}
