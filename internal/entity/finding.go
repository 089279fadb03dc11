package entity

import (
	"fmt"
	"time"
)

// Finding represents a scored market intelligence finding. Rows are
// immutable after creation except for relevance_score, which may be
// recomputed when rubrics change.
type Finding struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Date           time.Time `gorm:"type:date;not null" json:"date"`
	Category       Category  `gorm:"type:varchar(50);not null" json:"category"`
	Title          string    `gorm:"not null" json:"title"`
	Summary        string    `json:"summary"`
	Content        string    `json:"content"`
	RelevanceScore float64   `gorm:"not null" json:"relevance_score"`
	SourceURL      string    `json:"source_url,omitempty"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TableName specifies the table name for the Finding model.
func (Finding) TableName() string {
	return "market_findings"
}

// Validate rejects findings that violate schema-level contracts.
func (f *Finding) Validate() error {
	if f.Title == "" {
		return &ValidationError{Field: "title", Reason: "must not be empty"}
	}
	if !f.Category.IsValid() {
		return &ValidationError{Field: "category", Reason: fmt.Sprintf("unknown category %q", f.Category)}
	}
	if f.RelevanceScore < 0 || f.RelevanceScore > 1 {
		return &ValidationError{Field: "relevance_score", Reason: fmt.Sprintf("%.4f outside [0,1]", f.RelevanceScore)}
	}
	return nil
}
