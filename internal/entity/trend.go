package entity

import (
	"fmt"
	"time"

	"gorm.io/datatypes"
)

// TrendEvidence holds the structured evidence counters for a trend.
// SourceCount and MentionCount accumulate monotonically; GrowthRate is
// recomputed from the last two periods.
type TrendEvidence struct {
	SourceCount        int     `json:"source_count"`
	MentionCount       int     `json:"mention_count"`
	GrowthRate         float64 `json:"growth_rate"`
	Periods            int     `json:"periods"`
	LastPeriodMentions int     `json:"last_period_mentions"`
}

// Trend represents a market trend tracked across runs. Momentum and
// evidence update in place; first_detected never changes once set.
type Trend struct {
	ID              uint                              `gorm:"primaryKey" json:"id"`
	TrendName       string                            `gorm:"type:varchar(255);not null" json:"trend_name"`
	Category        Category                          `gorm:"type:varchar(50);not null" json:"category"`
	MomentumScore   float64                           `gorm:"not null" json:"momentum_score"`
	Evidence        datatypes.JSONType[TrendEvidence] `gorm:"type:jsonb" json:"evidence"`
	State           TrendState                        `gorm:"type:varchar(20);not null;default:'new'" json:"state"`
	LowMomentumRuns int                               `gorm:"not null;default:0" json:"low_momentum_runs"`
	FirstDetected   time.Time                         `gorm:"type:date;not null" json:"first_detected"`
	Prediction      string                            `json:"prediction,omitempty"`
	CreatedAt       time.Time                         `gorm:"autoCreateTime" json:"created_at"`
	LastUpdated     time.Time                         `gorm:"autoUpdateTime" json:"last_updated"`
}

// TableName specifies the table name for the Trend model.
func (Trend) TableName() string {
	return "trends"
}

// Validate rejects trends that violate schema-level contracts.
func (t *Trend) Validate() error {
	if t.TrendName == "" {
		return &ValidationError{Field: "trend_name", Reason: "must not be empty"}
	}
	if !t.Category.IsValid() {
		return &ValidationError{Field: "category", Reason: fmt.Sprintf("unknown category %q", t.Category)}
	}
	if t.MomentumScore < 0 || t.MomentumScore > 1 {
		return &ValidationError{Field: "momentum_score", Reason: fmt.Sprintf("%.4f outside [0,1]", t.MomentumScore)}
	}
	return nil
}

// RankedForSynthesis reports whether the trend feeds the opportunity
// synthesizer. Dormant trends are kept for history but excluded.
func (t *Trend) RankedForSynthesis() bool {
	return t.State == TrendStateNew || t.State == TrendStateActive || t.State == TrendStateDecaying
}
