package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-playground/assert/v2"

	"github.com/iWorld-y/briefing_radar/app/briefing/pkg/briefing"
	"github.com/iWorld-y/briefing_radar/app/briefing/pkg/config"
	"github.com/iWorld-y/briefing_radar/app/briefing/pkg/llm"
)

func TestKeysFromEnv(t *testing.T) {
	for _, env := range keyEnv {
		t.Setenv(env, "")
	}
	t.Setenv("EXA_API_KEY", "exa-key")
	t.Setenv("ANTHROPIC_API_KEY", "  sk-ant  ")

	keys := keysFromEnv()
	assert.Equal(t, len(keys), 2)
	assert.Equal(t, keys["exa"], "exa-key")
	assert.Equal(t, keys["anthropic"], "sk-ant")
}

func TestBuildRequest(t *testing.T) {
	opts := &options{}
	cmd := newBriefCmd(opts)
	if err := cmd.ParseFlags([]string{"--order", "anthropic", "--enhanced"}); err != nil {
		t.Fatal(err)
	}
	cfg := &config.Config{}
	keys := map[string]string{"exa": "e", "openai": "o", "anthropic": "a"}

	req := buildRequest(cmd, cfg, opts, "acme.io", keys)
	assert.Equal(t, req.SearchKey, "e")
	assert.Equal(t, len(req.Providers), 2)
	assert.Equal(t, req.Providers[0].Provider, llm.ProviderAnthropic)
	if req.EnhancedSentiment == nil || !*req.EnhancedSentiment {
		t.Errorf("EnhancedSentiment = %v, want true", req.EnhancedSentiment)
	}
}

func TestBuildRequest_EnhancedDefaultsToConfig(t *testing.T) {
	opts := &options{}
	cmd := newBriefCmd(opts)
	req := buildRequest(cmd, &config.Config{}, opts, "acme.io", map[string]string{"tavily": "t"})
	if req.EnhancedSentiment != nil {
		t.Errorf("EnhancedSentiment = %v, want nil", *req.EnhancedSentiment)
	}
	assert.Equal(t, req.SearchKey, "")
}

func TestPrintEvent(t *testing.T) {
	var buf bytes.Buffer
	err := printEvent(&buf, briefing.Event{Name: briefing.EventDone, Data: briefing.DonePayload{ElapsedMs: 7}}, true)
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, buf.String(), "{\"event\":\"done\",\"data\":{\"elapsedMs\":7}}\n")

	buf.Reset()
	err = printEvent(&buf, briefing.Event{Name: briefing.EventSummary, Data: briefing.SummaryPayload{Summary: "Acme leads.", Source: "model"}}, false)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(buf.String(), "== summary (model)\nAcme leads.") {
		t.Errorf("text output = %q", buf.String())
	}
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := loadConfig("does/not/exist.yaml")
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}
	assert.Equal(t, cfg.SearchProvider(), config.DefaultSearchProvider)
}

func TestLoadConfig_SyntaxErrorIsReported(t *testing.T) {
	path := filepath.Join(t.TempDir(), "engine.yaml")
	if err := os.WriteFile(path, []byte("search:\n  provider: [exa\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := loadConfig(path); err == nil {
		t.Fatal("loadConfig() error = nil, want yaml error")
	}
}
