package entity

import (
	"time"

	"github.com/lib/pq"
)

// AnalysisRun is the append-only audit row for one pipeline execution.
type AnalysisRun struct {
	ID                      uint           `gorm:"primaryKey" json:"id"`
	RunDate                 time.Time      `gorm:"type:date;not null" json:"run_date"`
	Mode                    RunMode        `gorm:"type:varchar(20);not null" json:"mode"`
	Scheduled               bool           `gorm:"not null" json:"scheduled"`
	FindingsCount           int            `gorm:"not null;default:0" json:"findings_count"`
	CompetitorUpdatesCount  int            `gorm:"not null;default:0" json:"competitor_updates_count"`
	TrendsUpdatedCount      int            `gorm:"not null;default:0" json:"trends_updated_count"`
	OpportunitiesIdentified int            `gorm:"not null;default:0" json:"opportunities_identified"`
	SkippedSignals          int            `gorm:"not null;default:0" json:"skipped_signals"`
	DegradedSources         pq.StringArray `gorm:"type:text[]" json:"degraded_sources"`
	KeyInsights             string         `json:"key_insights,omitempty"`
	Recommendations         pq.StringArray `gorm:"type:text[]" json:"recommendations"`
	ExecutionTimeSeconds    float64        `json:"execution_time_seconds"`
	Status                  RunStatus      `gorm:"type:varchar(20);not null" json:"status"`
	ErrorMessage            string         `json:"error_message,omitempty"`
	CreatedAt               time.Time      `gorm:"autoCreateTime" json:"created_at"`
}

// TableName specifies the table name for the AnalysisRun model.
func (AnalysisRun) TableName() string {
	return "analysis_runs"
}
