package supervisor

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hupe1980/teammesh/core"
)

func TestVocabulary_Match(t *testing.T) {
	v := NewVocabulary("search", "search_agent", "scrape_agent")

	tests := []struct {
		raw   string
		token string
		ok    bool
	}{
		{raw: "search_agent", token: "search_agent", ok: true},
		{raw: "search", token: "search", ok: true},
		{raw: `"scrape_agent"`, token: "scrape_agent", ok: true},
		{raw: "scrape_agent or search_agent", token: "scrape_agent", ok: true},
		{raw: "We are done. END", token: core.Terminal, ok: true},
		{raw: "end", ok: false},
		{raw: "nothing useful", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			token, ok := v.Match(tt.raw)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.token, token)
		})
	}
}

func TestVocabulary_Tokens(t *testing.T) {
	v := NewVocabulary("b", "a", "", "a")

	assert.Equal(t, []string{"a", "b"}, v.Members())
	assert.Equal(t, []string{"a", "b", core.Terminal}, v.Tokens())
	assert.True(t, v.Contains(core.Terminal))
	assert.True(t, v.Contains("a"))
	assert.False(t, v.Contains("c"))
}
