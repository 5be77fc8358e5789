package sources

import (
	"testing"

	"github.com/go-playground/assert/v2"
)

func TestHost(t *testing.T) {
	tests := map[string]string{
		"https://www.Reuters.com/tech/x": "reuters.com",
		"acme.io":                        "acme.io",
		"http://blog.acme.io:8080/a?b=c": "blog.acme.io",
		"":                               "",
	}
	for in, want := range tests {
		assert.Equal(t, Host(in), want)
	}
}

func TestStem(t *testing.T) {
	assert.Equal(t, Stem("https://www.acme.io/about"), "acme")
	assert.Equal(t, Stem("localhost"), "localhost")
}

func TestTier(t *testing.T) {
	assert.Equal(t, Tier("techcrunch.com", "acme.io"), 2)
	assert.Equal(t, Tier("news.bloomberg.com", "acme.io"), 2)
	assert.Equal(t, Tier("acme.io", "acme.io"), 1)
	assert.Equal(t, Tier("blog.acme.io", "acme.io"), 1)
	assert.Equal(t, Tier("acme-fans.net", "acme.io"), 0)
	assert.Equal(t, Tier("notacme.io", "acme.io"), 0)
}

func TestTitleCase(t *testing.T) {
	assert.Equal(t, TitleCase("acme"), "Acme")
	assert.Equal(t, TitleCase(""), "")
	assert.Equal(t, TitleCase("élan"), "Élan")
	assert.Equal(t, TitleCase("ünter"), "Ünter")
}
