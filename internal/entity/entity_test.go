package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPriorityForScore(t *testing.T) {
	tests := []struct {
		score float64
		want  Priority
	}{
		{1.0, PriorityHigh},
		{0.8, PriorityHigh},
		{0.79, PriorityMedium},
		{0.5, PriorityMedium},
		{0.49, PriorityLow},
		{0, PriorityLow},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, PriorityForScore(tt.score), "score %.2f", tt.score)
	}
}

func TestRunStatus_IsTerminal(t *testing.T) {
	assert.False(t, RunStatusRunning.IsTerminal())
	assert.True(t, RunStatusCompleted.IsTerminal())
	assert.True(t, RunStatusFailed.IsTerminal())
	assert.True(t, RunStatusPartial.IsTerminal())
}

func TestRunMode_IsScheduled(t *testing.T) {
	assert.True(t, RunModeDaily.IsScheduled())
	assert.True(t, RunModeWeekly.IsScheduled())
	assert.False(t, RunModeQuick.IsScheduled())
	assert.False(t, RunModeCompetitor.IsScheduled())
	assert.False(t, RunModeTrends.IsScheduled())
}

func TestFinding_Validate(t *testing.T) {
	valid := Finding{
		Date:           time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC),
		Category:       CategoryAIResearch,
		Title:          "OpenAI Releases GPT-4 Turbo",
		RelevanceScore: 0.7,
	}
	assert.NoError(t, valid.Validate())

	missingTitle := valid
	missingTitle.Title = ""
	var vErr *ValidationError
	assert.ErrorAs(t, missingTitle.Validate(), &vErr)

	badScore := valid
	badScore.RelevanceScore = 1.2
	assert.ErrorAs(t, badScore.Validate(), &vErr)

	badCategory := valid
	badCategory.Category = "astrology"
	assert.ErrorAs(t, badCategory.Validate(), &vErr)
}

func TestOpportunity_Validate(t *testing.T) {
	valid := Opportunity{
		Title:    "Ai Agents Services",
		Score:    0.83,
		Priority: PriorityHigh,
	}
	assert.NoError(t, valid.Validate())

	mismatched := valid
	mismatched.Priority = PriorityLow
	var vErr *ValidationError
	assert.ErrorAs(t, mismatched.Validate(), &vErr)
}

func TestTrend_RankedForSynthesis(t *testing.T) {
	for _, state := range []TrendState{TrendStateNew, TrendStateActive, TrendStateDecaying} {
		trend := Trend{State: state}
		assert.True(t, trend.RankedForSynthesis(), "state %s", state)
	}
	dormant := Trend{State: TrendStateDormant}
	assert.False(t, dormant.RankedForSynthesis())
}
