package dto

import "golang-competitive-intel/internal/entity"

// AnalysisReport is the payload published to the report stream when a
// run is finalized. Delivery failure never rolls back persisted results.
type AnalysisReport struct {
	Run              entity.AnalysisRun   `json:"run"`
	TopOpportunities []entity.Opportunity `json:"top_opportunities"`
	TopTrends        []entity.Trend       `json:"top_trends"`
}
