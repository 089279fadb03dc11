package service

import (
	"testing"
	"time"

	"golang-competitive-intel/internal/analyzer/config"
	"golang-competitive-intel/internal/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var scoreRefTime = time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

func TestNewScorer_RejectsWeightsNotSummingToOne(t *testing.T) {
	cfg := newTestConfig()
	cfg.Analysis.Rubrics["ai_research"] = config.Rubric{RecencyWeight: 0.5, CredibilityWeight: 0.5, SalienceWeight: 0.5}

	_, err := NewScorer(cfg)

	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Contains(t, cfgErr.Reason, "ai_research")
}

func TestNewScorer_RejectsNegativeWeights(t *testing.T) {
	cfg := newTestConfig()
	cfg.Analysis.FallbackRubric = config.Rubric{RecencyWeight: -0.2, CredibilityWeight: 0.8, SalienceWeight: 0.4}

	_, err := NewScorer(cfg)

	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
}

func TestNewScorer_RejectsUnknownRubricCategory(t *testing.T) {
	cfg := newTestConfig()
	cfg.Analysis.Rubrics["astrology"] = config.Rubric{RecencyWeight: 0.4, CredibilityWeight: 0.3, SalienceWeight: 0.3}

	_, err := NewScorer(cfg)

	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
}

func TestNewScorer_RequiresCompanyContext(t *testing.T) {
	cfg := newTestConfig()
	cfg.Company.Competitors = nil
	cfg.Company.TargetIndustries = nil

	_, err := NewScorer(cfg)

	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
}

func TestScore_AlwaysWithinBounds(t *testing.T) {
	scorer, err := NewScorer(newTestConfig())
	require.NoError(t, err)

	signals := []entity.RawSignal{
		{Title: "OpenAI ships agents for financial services", Category: entity.CategoryAIResearch, SourceName: "reuters.com", SourceURL: "https://reuters.com/x", PublishedAt: scoreRefTime.AddDate(0, 0, -1)},
		{Title: "Unrelated gardening tips", Category: entity.CategoryMarketTrend, SourceURL: "http://blog.example/y", PublishedAt: scoreRefTime.AddDate(0, 0, -400)},
		{Title: "", PublishedAt: time.Time{}},
	}
	for _, signal := range signals {
		score := scorer.Score(signal, scoreRefTime)
		assert.GreaterOrEqual(t, score, 0.0)
		assert.LessOrEqual(t, score, 1.0)
	}
}

func TestScore_FallbackFloorForUnmatchedSignals(t *testing.T) {
	cfg := newTestConfig()
	cfg.Analysis.FallbackRubric = config.Rubric{RecencyWeight: 0.9, CredibilityWeight: 0, SalienceWeight: 0.1}
	scorer, err := NewScorer(cfg)
	require.NoError(t, err)

	signal := entity.RawSignal{
		Title:       "Quarterly gardening supply report",
		Category:    entity.CategoryMarketTrend,
		SourceURL:   "http://blog.example/old",
		PublishedAt: scoreRefTime.AddDate(0, 0, -365),
	}

	score := scorer.Score(signal, scoreRefTime)
	assert.Equal(t, 0.1, score)
}

func TestScore_RecencyMonotonic(t *testing.T) {
	scorer, err := NewScorer(newTestConfig())
	require.NoError(t, err)

	fresh := entity.RawSignal{
		Title:       "OpenAI expands into healthcare",
		Category:    entity.CategoryAIResearch,
		SourceURL:   "https://techcrunch.com/a",
		SourceName:  "techcrunch.com",
		PublishedAt: scoreRefTime.AddDate(0, 0, -2),
	}
	stale := fresh
	stale.PublishedAt = scoreRefTime.AddDate(0, 0, -120)

	assert.Greater(t, scorer.Score(fresh, scoreRefTime), scorer.Score(stale, scoreRefTime))
}

func TestScore_CredibleSourceRanksAboveUnknown(t *testing.T) {
	scorer, err := NewScorer(newTestConfig())
	require.NoError(t, err)

	credible := entity.RawSignal{
		Title:       "Anthropic signs financial services partners",
		Category:    entity.CategoryAIResearch,
		SourceName:  "reuters.com",
		SourceURL:   "https://reuters.com/b",
		PublishedAt: scoreRefTime.AddDate(0, 0, -3),
	}
	unknown := credible
	unknown.SourceName = "randomblog.example"
	unknown.SourceURL = "https://randomblog.example/b"

	assert.Greater(t, scorer.Score(credible, scoreRefTime), scorer.Score(unknown, scoreRefTime))
}

func TestScore_Deterministic(t *testing.T) {
	scorer, err := NewScorer(newTestConfig())
	require.NoError(t, err)

	signal := entity.RawSignal{
		Title:       "OpenAI launches agents for healthcare",
		Category:    entity.CategoryProductLaunch,
		SourceName:  "techcrunch.com",
		SourceURL:   "https://techcrunch.com/c",
		PublishedAt: scoreRefTime.AddDate(0, 0, -10),
	}

	assert.Equal(t, scorer.Score(signal, scoreRefTime), scorer.Score(signal, scoreRefTime))
}

func TestImpactLevelFor_Thresholds(t *testing.T) {
	scorer, err := NewScorer(newTestConfig())
	require.NoError(t, err)

	tests := []struct {
		score float64
		want  entity.ImpactLevel
	}{
		{0.9, entity.ImpactHigh},
		{0.76, entity.ImpactHigh},
		{0.75, entity.ImpactMedium},
		{0.4, entity.ImpactMedium},
		{0.39, entity.ImpactLow},
		{0, entity.ImpactLow},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, scorer.ImpactLevelFor(tt.score), "score %.2f", tt.score)
	}
}
