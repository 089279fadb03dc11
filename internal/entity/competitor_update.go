package entity

import (
	"fmt"
	"time"
)

// CompetitorUpdate represents one detected competitor activity.
type CompetitorUpdate struct {
	ID           uint        `gorm:"primaryKey" json:"id"`
	CompanyName  string      `gorm:"type:varchar(255);not null" json:"company_name"`
	UpdateType   Category    `gorm:"type:varchar(50);not null" json:"update_type"`
	Description  string      `gorm:"not null" json:"description"`
	ImpactLevel  ImpactLevel `gorm:"type:varchar(20);not null" json:"impact_level"`
	ImpactScore  float64     `json:"impact_score"`
	SourceURL    string      `json:"source_url,omitempty"`
	DetectedDate time.Time   `gorm:"type:date;not null" json:"detected_date"`
	CreatedAt    time.Time   `gorm:"autoCreateTime" json:"created_at"`
}

// TableName specifies the table name for the CompetitorUpdate model.
func (CompetitorUpdate) TableName() string {
	return "competitor_updates"
}

// Validate rejects updates that violate schema-level contracts.
func (u *CompetitorUpdate) Validate() error {
	if u.CompanyName == "" {
		return &ValidationError{Field: "company_name", Reason: "must not be empty"}
	}
	if !u.UpdateType.IsValid() {
		return &ValidationError{Field: "update_type", Reason: fmt.Sprintf("unknown category %q", u.UpdateType)}
	}
	if u.ImpactScore < 0 || u.ImpactScore > 1 {
		return &ValidationError{Field: "impact_score", Reason: fmt.Sprintf("%.4f outside [0,1]", u.ImpactScore)}
	}
	switch u.ImpactLevel {
	case ImpactLow, ImpactMedium, ImpactHigh:
	default:
		return &ValidationError{Field: "impact_level", Reason: fmt.Sprintf("unknown level %q", u.ImpactLevel)}
	}
	return nil
}
