package service

import (
	"fmt"
	"math"
	"strings"
	"time"

	"golang-competitive-intel/internal/analyzer/config"
	"golang-competitive-intel/internal/entity"
)

const weightSumTolerance = 1e-9

// Scorer assigns normalized relevance scores per category rubric. A
// rubric blends recency, a source-credibility proxy and keyword salience
// against the company context. Scoring is deterministic: the same signal
// and reference time always produce the same score.
type Scorer struct {
	rubrics         map[entity.Category]config.Rubric
	fallback        config.Rubric
	floor           float64
	impactMediumMin float64
	impactHighMin   float64
	lookbackDays    int
	credibleSources map[string]struct{}
	contextTerms    []string // competitors + target industries, normalized
	focusTerms      []string // focus areas, normalized
}

// NewScorer validates the rubric configuration and builds a Scorer.
// Malformed weights are a ConfigurationError, surfaced before any signal
// is scored.
func NewScorer(cfg *config.Config) (*Scorer, error) {
	rubrics := make(map[entity.Category]config.Rubric, len(cfg.Analysis.Rubrics))
	for name, rubric := range cfg.Analysis.Rubrics {
		category := entity.Category(name)
		if !category.IsValid() {
			return nil, &ConfigurationError{Reason: fmt.Sprintf("rubric for unknown category %q", name)}
		}
		if err := validateRubric(name, rubric); err != nil {
			return nil, err
		}
		rubrics[category] = rubric
	}
	if err := validateRubric("fallback", cfg.Analysis.FallbackRubric); err != nil {
		return nil, err
	}
	if len(cfg.Company.Competitors) == 0 && len(cfg.Company.TargetIndustries) == 0 {
		return nil, &ConfigurationError{Reason: "company context has no competitors or target industries"}
	}

	credible := make(map[string]struct{}, len(cfg.Analysis.CredibleSources))
	for _, s := range cfg.Analysis.CredibleSources {
		credible[strings.ToLower(s)] = struct{}{}
	}

	return &Scorer{
		rubrics:         rubrics,
		fallback:        cfg.Analysis.FallbackRubric,
		floor:           cfg.Analysis.RelevanceFloor,
		impactMediumMin: cfg.Analysis.ImpactMediumMin,
		impactHighMin:   cfg.Analysis.ImpactHighMin,
		lookbackDays:    cfg.Analysis.LookbackDays,
		credibleSources: credible,
		contextTerms:    normalizeTerms(append(append([]string{}, cfg.Company.Competitors...), cfg.Company.TargetIndustries...)),
		focusTerms:      normalizeTerms(cfg.Company.FocusAreas),
	}, nil
}

func validateRubric(name string, r config.Rubric) error {
	if r.RecencyWeight < 0 || r.CredibilityWeight < 0 || r.SalienceWeight < 0 {
		return &ConfigurationError{Reason: fmt.Sprintf("rubric %q contains negative weights", name)}
	}
	sum := r.RecencyWeight + r.CredibilityWeight + r.SalienceWeight
	if math.Abs(sum-1.0) > weightSumTolerance {
		return &ConfigurationError{Reason: fmt.Sprintf("rubric %q weights sum to %.6f, want 1", name, sum)}
	}
	return nil
}

func normalizeTerms(terms []string) []string {
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		if n := normalizeName(t); n != "" {
			out = append(out, n)
		}
	}
	return out
}

// Score computes the relevance of a signal in [0,1] relative to now.
// Signals mentioning no configured competitor or target industry fall
// back to the generic rubric with a non-zero floor so they are never
// silently discarded.
func (s *Scorer) Score(signal entity.RawSignal, now time.Time) float64 {
	text := normalizeName(signal.Title + " " + signal.Summary + " " + signal.Content)

	contextMatches := countMatches(text, s.contextTerms)
	focusMatches := countMatches(text, s.focusTerms)

	recency := s.recencyScore(signal.PublishedAt, now)
	credibility := s.credibilityScore(signal)
	salience := math.Min(1, 0.25*float64(contextMatches+focusMatches))

	rubric, hasRubric := s.rubrics[signal.Category]
	if !hasRubric || contextMatches == 0 {
		rubric = s.fallback
	}

	score := rubric.RecencyWeight*recency + rubric.CredibilityWeight*credibility + rubric.SalienceWeight*salience
	if contextMatches == 0 && score < s.floor {
		score = s.floor
	}
	return clamp01(score)
}

// ImpactLevelFor discretizes a continuous impact score. The thresholds
// are fixed so the mapping is identical across runs.
func (s *Scorer) ImpactLevelFor(score float64) entity.ImpactLevel {
	switch {
	case score > s.impactHighMin:
		return entity.ImpactHigh
	case score >= s.impactMediumMin:
		return entity.ImpactMedium
	default:
		return entity.ImpactLow
	}
}

func (s *Scorer) recencyScore(publishedAt, now time.Time) float64 {
	if publishedAt.IsZero() || publishedAt.After(now) {
		return 1
	}
	ageDays := now.Sub(publishedAt).Hours() / 24
	return clamp01(1 - ageDays/float64(s.lookbackDays))
}

// credibilityScore is a proxy: configured credible sources rank highest,
// anything served over TLS above plain HTTP.
func (s *Scorer) credibilityScore(signal entity.RawSignal) float64 {
	if _, ok := s.credibleSources[strings.ToLower(signal.SourceName)]; ok {
		return 0.9
	}
	if strings.HasPrefix(signal.SourceURL, "https://") {
		return 0.6
	}
	return 0.4
}

func countMatches(text string, terms []string) int {
	matches := 0
	for _, term := range terms {
		if containsKeyword(text, term) {
			matches++
		}
	}
	return matches
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
