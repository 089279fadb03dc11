package service

import (
	"testing"
	"time"

	"golang-competitive-intel/internal/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSignal(title, url, content string) entity.RawSignal {
	return entity.RawSignal{
		Kind:        entity.SignalKindFinding,
		Category:    entity.CategoryProductLaunch,
		Title:       title,
		Content:     content,
		SourceURL:   url,
		SourceName:  "techcrunch.com",
		PublishedAt: time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC),
	}
}

func TestNewDeduplicator_InvalidThreshold(t *testing.T) {
	for _, threshold := range []float64{0, -0.1, 1.5} {
		_, err := NewDeduplicator(threshold)
		var cfgErr *ConfigurationError
		require.ErrorAs(t, err, &cfgErr)
	}
}

func TestDedupe_MergesAnnouncementVariants(t *testing.T) {
	dedup, err := NewDeduplicator(0.8)
	require.NoError(t, err)

	candidates := []entity.RawSignal{
		newSignal("OpenAI Releases GPT-4 Turbo", "https://a.example/1", "short"),
		newSignal("OpenAI Launches GPT-4 Turbo", "https://b.example/2", ""),
	}

	result := dedup.Dedupe(candidates, nil)

	require.Len(t, result.New, 1)
	require.Len(t, result.Merges, 1)
	assert.Equal(t, "OpenAI Releases GPT-4 Turbo", result.New[0].Title)
	assert.Equal(t, "OpenAI Launches GPT-4 Turbo", result.Merges[0].Candidate.Title)
	assert.Greater(t, result.Merges[0].Similarity, 0.8)
}

func TestDedupe_DistinctTitlesStaySeparate(t *testing.T) {
	dedup, err := NewDeduplicator(0.8)
	require.NoError(t, err)

	candidates := []entity.RawSignal{
		newSignal("OpenAI Releases GPT-4 Turbo", "https://a.example/1", ""),
		newSignal("Anthropic Expands Enterprise Partnerships", "https://b.example/2", ""),
	}

	result := dedup.Dedupe(candidates, nil)

	assert.Len(t, result.New, 2)
	assert.Empty(t, result.Merges)
}

func TestDedupe_MatchesHorizonByURL(t *testing.T) {
	dedup, err := NewDeduplicator(0.8)
	require.NoError(t, err)

	horizon := []PersistedSignal{
		{ID: 42, Title: "Completely Different Headline", SourceURL: "https://a.example/1"},
	}
	candidates := []entity.RawSignal{
		newSignal("OpenAI Releases GPT-4 Turbo", "https://a.example/1", ""),
	}

	result := dedup.Dedupe(candidates, horizon)

	require.Empty(t, result.New)
	require.Len(t, result.Merges, 1)
	assert.Equal(t, uint(42), result.Merges[0].ExistingID)
	assert.Equal(t, 1.0, result.Merges[0].Similarity)
}

func TestDedupe_MatchesHorizonByTitle(t *testing.T) {
	dedup, err := NewDeduplicator(0.8)
	require.NoError(t, err)

	horizon := []PersistedSignal{
		{ID: 7, Title: "OpenAI Launches GPT-4 Turbo", SourceURL: "https://other.example/9"},
	}
	candidates := []entity.RawSignal{
		newSignal("OpenAI Releases GPT-4 Turbo", "https://a.example/1", ""),
	}

	result := dedup.Dedupe(candidates, horizon)

	require.Empty(t, result.New)
	require.Len(t, result.Merges, 1)
	assert.Equal(t, uint(7), result.Merges[0].ExistingID)
}

func TestDedupe_SkipsMissingTitle(t *testing.T) {
	dedup, err := NewDeduplicator(0.8)
	require.NoError(t, err)

	candidates := []entity.RawSignal{
		newSignal("", "https://a.example/1", ""),
		newSignal("OpenAI Releases GPT-4 Turbo", "https://b.example/2", ""),
	}

	result := dedup.Dedupe(candidates, nil)

	assert.Len(t, result.New, 1)
	assert.Equal(t, 1, result.Skipped)
}

func TestDedupe_KeepsFullerDuplicate(t *testing.T) {
	dedup, err := NewDeduplicator(0.8)
	require.NoError(t, err)

	candidates := []entity.RawSignal{
		newSignal("OpenAI Releases GPT-4 Turbo", "https://a.example/1", "short"),
		newSignal("OpenAI Launches GPT-4 Turbo", "https://b.example/2", "much longer article body with more context"),
	}

	result := dedup.Dedupe(candidates, nil)

	require.Len(t, result.New, 1)
	assert.Equal(t, "OpenAI Launches GPT-4 Turbo", result.New[0].Title)
	require.Len(t, result.Merges, 1)
	assert.Equal(t, "OpenAI Releases GPT-4 Turbo", result.Merges[0].Candidate.Title)
}

func TestDedupe_Deterministic(t *testing.T) {
	dedup, err := NewDeduplicator(0.8)
	require.NoError(t, err)

	candidates := []entity.RawSignal{
		newSignal("OpenAI Releases GPT-4 Turbo", "https://a.example/1", "x"),
		newSignal("OpenAI Launches GPT-4 Turbo", "https://b.example/2", ""),
		newSignal("Anthropic Expands Enterprise Partnerships", "https://c.example/3", ""),
	}
	horizon := []PersistedSignal{
		{ID: 1, Title: "EU Advances AI Regulation Framework", SourceURL: "https://d.example/4"},
	}

	first := dedup.Dedupe(candidates, horizon)
	second := dedup.Dedupe(candidates, horizon)

	assert.Equal(t, first, second)
}
