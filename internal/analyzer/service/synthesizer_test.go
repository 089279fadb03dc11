package service

import (
	"testing"
	"time"

	"golang-competitive-intel/internal/analyzer/config"
	"golang-competitive-intel/internal/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func newSynthesizer(t *testing.T) *Synthesizer {
	t.Helper()
	synth, err := NewSynthesizer(newTestConfig())
	require.NoError(t, err)
	return synth
}

func rankedTrend(name string, category entity.Category, momentum float64) entity.Trend {
	return entity.Trend{
		TrendName:     name,
		Category:      category,
		MomentumScore: momentum,
		State:         entity.TrendStateActive,
		FirstDetected: time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC),
		Evidence:      datatypes.NewJSONType(entity.TrendEvidence{MentionCount: 6, Periods: 2, LastPeriodMentions: 4}),
	}
}

func TestNewSynthesizer_RejectsBadWeights(t *testing.T) {
	cfg := newTestConfig()
	cfg.Analysis.OpportunityWeights.MarketSize = 0.5

	_, err := NewSynthesizer(cfg)

	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
}

func TestNewSynthesizer_RejectsNegativeWeights(t *testing.T) {
	cfg := newTestConfig()
	cfg.Analysis.OpportunityWeights = config.OpportunityWeights{
		MarketSize:         -0.1,
		CompetitionInverse: 0.3,
		TechnicalFit:       0.3,
		TimeToMarket:       0.2,
		StrategicAlignment: 0.3,
	}

	_, err := NewSynthesizer(cfg)

	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
}

func TestCombineScores_WeightedFormula(t *testing.T) {
	synth := newSynthesizer(t)

	score := synth.CombineScores(SubScores{
		MarketSizeProxy:     0.9,
		CompetitionDensity:  0.2,
		TechnicalFit:        0.8,
		TimeToMarketInverse: 0.7,
		StrategicAlignment:  0.9,
	})

	assert.InDelta(t, 0.83, score, 1e-9)
	assert.Equal(t, entity.PriorityHigh, entity.PriorityForScore(score))
}

func TestSynthesize_ExcludesDormantTrends(t *testing.T) {
	synth := newSynthesizer(t)

	dormant := rankedTrend("llm", entity.CategoryAIResearch, 0.02)
	dormant.State = entity.TrendStateDormant
	active := rankedTrend("ai agents", entity.CategoryProductLaunch, 0.8)

	opportunities := synth.Synthesize(nil, nil, []entity.Trend{dormant, active})

	require.Len(t, opportunities, 1)
	assert.Equal(t, "Ai Agents Services", opportunities[0].Title)
}

func TestSynthesize_SortedByScoreThenMonthsThenTitle(t *testing.T) {
	synth := newSynthesizer(t)

	trends := []entity.Trend{
		rankedTrend("llm", entity.CategoryRegulation, 0.3),
		rankedTrend("ai agents", entity.CategoryProductLaunch, 0.9),
		rankedTrend("enterprise ai", entity.CategoryTechnology, 0.6),
	}

	opportunities := synth.Synthesize(nil, nil, trends)
	require.Len(t, opportunities, 3)

	for i := 1; i < len(opportunities); i++ {
		prev, cur := opportunities[i-1], opportunities[i]
		inOrder := prev.Score > cur.Score ||
			(prev.Score == cur.Score && prev.TimeToMarketMonths < cur.TimeToMarketMonths) ||
			(prev.Score == cur.Score && prev.TimeToMarketMonths == cur.TimeToMarketMonths && prev.Title <= cur.Title)
		assert.True(t, inOrder, "opportunities out of order at index %d", i)
	}
}

func TestSynthesize_PriorityMatchesScoreBucket(t *testing.T) {
	synth := newSynthesizer(t)

	trends := []entity.Trend{
		rankedTrend("ai agents", entity.CategoryProductLaunch, 0.95),
		rankedTrend("llm", entity.CategoryRegulation, 0.1),
	}

	for _, opp := range synth.Synthesize(nil, nil, trends) {
		assert.Equal(t, entity.PriorityForScore(opp.Score), opp.Priority)
		assert.GreaterOrEqual(t, opp.Score, 0.0)
		assert.LessOrEqual(t, opp.Score, 1.0)
		assert.NotEmpty(t, opp.MarketGap)
		assert.Positive(t, opp.TimeToMarketMonths)
	}
}

func TestSynthesize_CompetitionLowersScore(t *testing.T) {
	synth := newSynthesizer(t)
	trend := rankedTrend("ai agents", entity.CategoryProductLaunch, 0.8)

	uncontested := synth.Synthesize(nil, nil, []entity.Trend{trend})
	require.Len(t, uncontested, 1)

	updates := []entity.CompetitorUpdate{
		{CompanyName: "OpenAI", UpdateType: entity.CategoryProductLaunch, Description: "ai agents suite", ImpactLevel: entity.ImpactHigh},
		{CompanyName: "Anthropic", UpdateType: entity.CategoryProductLaunch, Description: "ai agents platform", ImpactLevel: entity.ImpactHigh},
	}
	contested := synth.Synthesize(nil, updates, []entity.Trend{trend})
	require.Len(t, contested, 1)

	assert.Less(t, contested[0].Score, uncontested[0].Score)
}

func TestSynthesize_SupportingFindingsRaiseMarketProxy(t *testing.T) {
	synth := newSynthesizer(t)
	trend := rankedTrend("ai agents", entity.CategoryProductLaunch, 0.5)

	bare := synth.Synthesize(nil, nil, []entity.Trend{trend})
	require.Len(t, bare, 1)

	findings := []entity.Finding{
		{Title: "AI agents pilot in banking", Category: entity.CategoryProductLaunch, RelevanceScore: 0.9},
		{Title: "AI agents reduce support costs", Category: entity.CategoryProductLaunch, RelevanceScore: 0.8},
	}
	backed := synth.Synthesize(findings, nil, []entity.Trend{trend})
	require.Len(t, backed, 1)

	assert.Greater(t, backed[0].Score, bare[0].Score)
}

func TestSynthesize_TopKTruncates(t *testing.T) {
	cfg := newTestConfig()
	cfg.Analysis.OpportunityTopK = 1
	synth, err := NewSynthesizer(cfg)
	require.NoError(t, err)

	trends := []entity.Trend{
		rankedTrend("ai agents", entity.CategoryProductLaunch, 0.9),
		rankedTrend("llm", entity.CategoryRegulation, 0.2),
	}

	opportunities := synth.Synthesize(nil, nil, trends)
	assert.Len(t, opportunities, 1)
}

func TestSynthesize_Deterministic(t *testing.T) {
	synth := newSynthesizer(t)

	trends := []entity.Trend{
		rankedTrend("ai agents", entity.CategoryProductLaunch, 0.9),
		rankedTrend("enterprise ai", entity.CategoryTechnology, 0.6),
	}
	findings := []entity.Finding{
		{Title: "Enterprise AI budgets grow", Category: entity.CategoryTechnology, RelevanceScore: 0.8},
	}

	assert.Equal(t, synth.Synthesize(findings, nil, trends), synth.Synthesize(findings, nil, trends))
}
