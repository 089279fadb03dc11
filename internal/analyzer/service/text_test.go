package service

import (
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestDisplayName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"ai agents", "Ai Agents"},
		{"llm", "Llm"},
		{"éco systems", "Éco Systems"},
		{"écoute active", "Écoute Active"},
		{"", ""},
	}
	for _, tt := range tests {
		got := displayName(tt.in)
		assert.Equal(t, tt.want, got)
		assert.True(t, utf8.ValidString(got), "displayName(%q) produced invalid UTF-8", tt.in)
	}
}

func TestTokenOverlap(t *testing.T) {
	a := normalizeTokens("OpenAI Releases GPT-4 Turbo")
	b := normalizeTokens("OpenAI Launches GPT-4 Turbo")
	assert.Equal(t, 1.0, tokenOverlap(a, b))

	c := normalizeTokens("Anthropic Expands Enterprise Partnerships")
	assert.Less(t, tokenOverlap(a, c), 0.5)

	assert.Equal(t, 0.0, tokenOverlap(a, normalizeTokens("")))
}

func TestNormalizeName(t *testing.T) {
	assert.Equal(t, "ai agents", normalizeName("  AI   Agents! "))
	assert.Equal(t, "gpt 4 turbo", normalizeName("GPT-4 Turbo"))
}
