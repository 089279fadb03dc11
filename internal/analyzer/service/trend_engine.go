package service

import (
	"fmt"
	"sort"
	"time"

	"golang-competitive-intel/internal/analyzer/config"
	"golang-competitive-intel/internal/entity"

	"gorm.io/datatypes"
)

// TrendEvidenceBatch is one run's worth of matching evidence for a trend
// identity (normalized trend name + category).
type TrendEvidenceBatch struct {
	TrendName    string
	Category     entity.Category
	Mentions     int
	Sources      int
	EarliestDate time.Time
}

// Identity returns the matching key for the batch.
func (b *TrendEvidenceBatch) Identity() string {
	return b.TrendName + "|" + string(b.Category)
}

// TrendEngine maintains trend momentum across runs. Given an identical
// evidence sequence, trajectories are bit-for-bit reproducible: there is
// no randomness and iteration order is fixed.
type TrendEngine struct {
	decay      float64
	floor      float64
	clusterMin int
}

// NewTrendEngine validates the decay configuration and builds an engine.
func NewTrendEngine(cfg *config.Config) (*TrendEngine, error) {
	a := cfg.Analysis
	if a.TrendDecay <= 0 || a.TrendDecay >= 1 {
		return nil, &ConfigurationError{Reason: fmt.Sprintf("trend decay %.4f must be in (0,1)", a.TrendDecay)}
	}
	if a.TrendMomentumFloor <= 0 || a.TrendMomentumFloor >= 1 {
		return nil, &ConfigurationError{Reason: fmt.Sprintf("trend momentum floor %.4f must be in (0,1)", a.TrendMomentumFloor)}
	}
	if a.TrendClusterMin < 1 {
		return nil, &ConfigurationError{Reason: "trend cluster minimum must be at least 1"}
	}
	return &TrendEngine{
		decay:      a.TrendDecay,
		floor:      a.TrendMomentumFloor,
		clusterMin: a.TrendClusterMin,
	}, nil
}

// ExtractEvidence clusters a run's signals into evidence batches by
// matched focus-area keyword and category. Merged duplicates count as
// evidence just like new signals. Batches come back sorted by identity
// so downstream processing order is stable.
func (e *TrendEngine) ExtractEvidence(signals []entity.RawSignal, focusAreas []string) []TrendEvidenceBatch {
	byIdentity := make(map[string]*TrendEvidenceBatch)
	sourcesSeen := make(map[string]map[string]struct{})

	for _, signal := range signals {
		text := normalizeName(signal.Title + " " + signal.Summary)
		date := signal.PublishedAt.UTC().Truncate(24 * time.Hour)

		for _, area := range focusAreas {
			keyword := normalizeName(area)
			if !containsKeyword(text, keyword) {
				continue
			}
			batch, ok := byIdentity[keyword+"|"+string(signal.Category)]
			if !ok {
				batch = &TrendEvidenceBatch{
					TrendName:    keyword,
					Category:     signal.Category,
					EarliestDate: date,
				}
				byIdentity[batch.Identity()] = batch
				sourcesSeen[batch.Identity()] = make(map[string]struct{})
			}
			batch.Mentions++
			if date.Before(batch.EarliestDate) {
				batch.EarliestDate = date
			}
			if signal.SourceName != "" {
				if _, seen := sourcesSeen[batch.Identity()][signal.SourceName]; !seen {
					sourcesSeen[batch.Identity()][signal.SourceName] = struct{}{}
					batch.Sources++
				}
			}
		}
	}

	batches := make([]TrendEvidenceBatch, 0, len(byIdentity))
	for _, batch := range byIdentity {
		batches = append(batches, *batch)
	}
	sort.Slice(batches, func(i, j int) bool {
		return batches[i].Identity() < batches[j].Identity()
	})
	return batches
}

// NewTrend creates a trend from a qualifying evidence cluster. The
// cluster must hold at least the configured minimum of related signals.
// Initial momentum is the evidence density alone: there is no prior to
// blend against.
func (e *TrendEngine) NewTrend(batch TrendEvidenceBatch, runDate time.Time) (*entity.Trend, bool) {
	if batch.Mentions < e.clusterMin {
		return nil, false
	}
	density := e.density(batch.Mentions, float64(e.clusterMin))
	trend := &entity.Trend{
		TrendName:     batch.TrendName,
		Category:      batch.Category,
		MomentumScore: density,
		State:         entity.TrendStateNew,
		FirstDetected: batch.EarliestDate,
		Evidence: datatypes.NewJSONType(entity.TrendEvidence{
			SourceCount:        batch.Sources,
			MentionCount:       batch.Mentions,
			GrowthRate:         0,
			Periods:            1,
			LastPeriodMentions: batch.Mentions,
		}),
	}
	return trend, true
}

// Apply advances one trend by one run. A nil batch (or one with zero
// mentions) is the decay path: momentum shrinks by the decay factor and
// evidence is left untouched. Fresh evidence reactivates dormant trends
// without resetting first_detected.
func (e *TrendEngine) Apply(trend *entity.Trend, batch *TrendEvidenceBatch) {
	if batch == nil || batch.Mentions == 0 {
		trend.MomentumScore = clamp01(trend.MomentumScore * e.decay)
		if trend.State != entity.TrendStateDormant {
			trend.State = entity.TrendStateDecaying
		}
		e.trackDormancy(trend)
		return
	}

	evidence := trend.Evidence.Data()
	baseline := float64(evidence.MentionCount) / float64(maxInt(evidence.Periods, 1))
	if baseline < 1 {
		baseline = 1
	}
	density := e.density(batch.Mentions, baseline)

	trend.MomentumScore = clamp01(e.decay*trend.MomentumScore + (1-e.decay)*density)
	trend.State = entity.TrendStateActive
	trend.LowMomentumRuns = 0

	growth := float64(batch.Mentions-evidence.LastPeriodMentions) / float64(maxInt(evidence.LastPeriodMentions, 1))

	evidence.SourceCount += batch.Sources
	evidence.MentionCount += batch.Mentions
	evidence.GrowthRate = growth
	evidence.Periods++
	evidence.LastPeriodMentions = batch.Mentions
	trend.Evidence = datatypes.NewJSONType(evidence)

	if batch.EarliestDate.Before(trend.FirstDetected) {
		trend.FirstDetected = batch.EarliestDate
	}

	e.trackDormancy(trend)
}

// trackDormancy counts consecutive runs below the momentum floor; two in
// a row park the trend as dormant (retained, excluded from synthesis).
func (e *TrendEngine) trackDormancy(trend *entity.Trend) {
	if trend.MomentumScore >= e.floor {
		trend.LowMomentumRuns = 0
		return
	}
	trend.LowMomentumRuns++
	if trend.LowMomentumRuns >= 2 {
		trend.State = entity.TrendStateDormant
	}
}

func (e *TrendEngine) density(mentions int, baseline float64) float64 {
	return clamp01(float64(mentions) / (baseline * 2))
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
