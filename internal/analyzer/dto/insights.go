package dto

// InsightResult is the structured output of the insight generator.
type InsightResult struct {
	KeyInsights     string   `json:"key_insights"`
	Recommendations []string `json:"recommendations"`
}
