package entity

import (
	"fmt"
	"time"
)

// Opportunity is a synthesized market-gap record. Opportunities are
// regenerated per run; old rows stay as history and are never edited.
type Opportunity struct {
	ID                       uint      `gorm:"primaryKey" json:"id"`
	RunID                    uint      `gorm:"index" json:"run_id"`
	Title                    string    `gorm:"type:varchar(255);not null" json:"title"`
	Description              string    `gorm:"not null" json:"description"`
	MarketGap                string    `gorm:"not null" json:"market_gap"`
	Score                    float64   `gorm:"not null" json:"score"`
	Priority                 Priority  `gorm:"type:varchar(20);not null" json:"priority"`
	PotentialRevenue         string    `gorm:"type:varchar(50)" json:"potential_revenue,omitempty"`
	ImplementationComplexity string    `gorm:"type:varchar(50)" json:"implementation_complexity,omitempty"`
	TimeToMarket             string    `gorm:"type:varchar(50)" json:"time_to_market,omitempty"`
	TimeToMarketMonths       int       `json:"time_to_market_months,omitempty"`
	CreatedAt                time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TableName specifies the table name for the Opportunity model.
func (Opportunity) TableName() string {
	return "opportunities"
}

// Validate rejects opportunities that violate schema-level contracts.
func (o *Opportunity) Validate() error {
	if o.Title == "" {
		return &ValidationError{Field: "title", Reason: "must not be empty"}
	}
	if o.Score < 0 || o.Score > 1 {
		return &ValidationError{Field: "score", Reason: fmt.Sprintf("%.4f outside [0,1]", o.Score)}
	}
	if o.Priority != PriorityForScore(o.Score) {
		return &ValidationError{Field: "priority", Reason: "does not match score bucket"}
	}
	return nil
}
