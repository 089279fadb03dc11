package entity

// Category classifies a market finding, competitor update or trend.
type Category string

const (
	CategoryAIResearch    Category = "ai_research"
	CategoryProductLaunch Category = "product_launch"
	CategoryFunding       Category = "funding"
	CategoryAcquisition   Category = "acquisition"
	CategoryPartnership   Category = "partnership"
	CategoryRegulation    Category = "regulation"
	CategoryTechnology    Category = "technology"
	CategoryMarketTrend   Category = "market_trend"
	CategoryHiring        Category = "hiring"
)

// Categories lists every known category in a fixed order.
var Categories = []Category{
	CategoryAIResearch,
	CategoryProductLaunch,
	CategoryFunding,
	CategoryAcquisition,
	CategoryPartnership,
	CategoryRegulation,
	CategoryTechnology,
	CategoryMarketTrend,
	CategoryHiring,
}

// IsValid reports whether c is a known category.
func (c Category) IsValid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// ImpactLevel discretizes a competitor update's continuous impact score.
type ImpactLevel string

const (
	ImpactLow    ImpactLevel = "low"
	ImpactMedium ImpactLevel = "medium"
	ImpactHigh   ImpactLevel = "high"
)

// Priority buckets an opportunity score.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// PriorityForScore maps an opportunity score to its priority bucket.
// The thresholds are fixed so the mapping is reproducible across runs.
func PriorityForScore(score float64) Priority {
	switch {
	case score >= 0.8:
		return PriorityHigh
	case score >= 0.5:
		return PriorityMedium
	default:
		return PriorityLow
	}
}

// RunStatus tracks the lifecycle of an analysis run. Transitions are
// forward-only: running may become completed, failed or partial, and a
// terminal status is never reopened.
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
	RunStatusPartial   RunStatus = "partial"
)

// IsTerminal reports whether the status may no longer change.
func (s RunStatus) IsTerminal() bool {
	return s == RunStatusCompleted || s == RunStatusFailed || s == RunStatusPartial
}

// TrendState is the trend lifecycle state machine: new -> active ->
// decaying -> dormant, with reactivation from dormant back to active.
type TrendState string

const (
	TrendStateNew      TrendState = "new"
	TrendStateActive   TrendState = "active"
	TrendStateDecaying TrendState = "decaying"
	TrendStateDormant  TrendState = "dormant"
)

// RunMode selects which pipeline variant a run executes.
type RunMode string

const (
	RunModeDaily      RunMode = "daily"
	RunModeWeekly     RunMode = "weekly"
	RunModeQuick      RunMode = "quick"
	RunModeCompetitor RunMode = "competitor"
	RunModeTrends     RunMode = "trends"
)

// IsScheduled reports whether the mode is subject to the one-run-per-date guard.
func (m RunMode) IsScheduled() bool {
	return m == RunModeDaily || m == RunModeWeekly
}

// IsValid reports whether m is a known run mode.
func (m RunMode) IsValid() bool {
	switch m {
	case RunModeDaily, RunModeWeekly, RunModeQuick, RunModeCompetitor, RunModeTrends:
		return true
	}
	return false
}
