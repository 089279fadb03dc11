package entity

import "time"

// SignalKind distinguishes market findings from competitor updates at
// ingestion time, before either is persisted.
type SignalKind string

const (
	SignalKindFinding    SignalKind = "finding"
	SignalKindCompetitor SignalKind = "competitor"
)

// RawSignal is an unscored candidate produced by an ingestion source.
// It is never persisted directly; the deduplicator and scorer decide
// what becomes a Finding or CompetitorUpdate row.
type RawSignal struct {
	Kind        SignalKind `json:"kind"`
	Category    Category   `json:"category"`
	CompanyName string     `json:"company_name,omitempty"`
	Title       string     `json:"title"`
	Summary     string     `json:"summary"`
	Content     string     `json:"content"`
	SourceURL   string     `json:"source_url"`
	SourceName  string     `json:"source_name"`
	PublishedAt time.Time  `json:"published_at"`
}
