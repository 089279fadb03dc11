package service

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"golang-competitive-intel/internal/analyzer/config"
	"golang-competitive-intel/internal/entity"
)

// timeToMarketMonths estimates months to first revenue per category.
// Fixed so ranking stays reproducible across runs.
var timeToMarketMonths = map[entity.Category]int{
	entity.CategoryProductLaunch: 6,
	entity.CategoryPartnership:   6,
	entity.CategoryTechnology:    9,
	entity.CategoryFunding:       9,
	entity.CategoryMarketTrend:   9,
	entity.CategoryHiring:        9,
	entity.CategoryAIResearch:    12,
	entity.CategoryAcquisition:   12,
	entity.CategoryRegulation:    18,
}

const defaultTimeToMarketMonths = 12

// impactWeights convert competitor update impact levels into a
// competition-density contribution.
var impactWeights = map[entity.ImpactLevel]float64{
	entity.ImpactLow:    0.25,
	entity.ImpactMedium: 0.5,
	entity.ImpactHigh:   1.0,
}

// Synthesizer combines active trends, impactful competitor updates and
// high-relevance findings into ranked opportunity records.
type Synthesizer struct {
	weights config.OpportunityWeights
	company config.Company
	topK    int
}

// NewSynthesizer validates the opportunity weight configuration and
// builds a Synthesizer.
func NewSynthesizer(cfg *config.Config) (*Synthesizer, error) {
	w := cfg.Analysis.OpportunityWeights
	if w.MarketSize < 0 || w.CompetitionInverse < 0 || w.TechnicalFit < 0 || w.TimeToMarket < 0 || w.StrategicAlignment < 0 {
		return nil, &ConfigurationError{Reason: "opportunity weights contain negatives"}
	}
	sum := w.MarketSize + w.CompetitionInverse + w.TechnicalFit + w.TimeToMarket + w.StrategicAlignment
	if math.Abs(sum-1.0) > weightSumTolerance {
		return nil, &ConfigurationError{Reason: fmt.Sprintf("opportunity weights sum to %.6f, want 1", sum)}
	}
	return &Synthesizer{
		weights: w,
		company: cfg.Company,
		topK:    cfg.Analysis.OpportunityTopK,
	}, nil
}

// SubScores are the deterministic inputs to the opportunity formula.
type SubScores struct {
	MarketSizeProxy     float64
	CompetitionDensity  float64
	TechnicalFit        float64
	TimeToMarketInverse float64
	StrategicAlignment  float64
}

// CombineScores applies the weighted opportunity formula to sub-scores.
func (s *Synthesizer) CombineScores(sub SubScores) float64 {
	score := s.weights.MarketSize*sub.MarketSizeProxy +
		s.weights.CompetitionInverse*(1-sub.CompetitionDensity) +
		s.weights.TechnicalFit*sub.TechnicalFit +
		s.weights.TimeToMarket*sub.TimeToMarketInverse +
		s.weights.StrategicAlignment*sub.StrategicAlignment
	return clamp01(score)
}

// Synthesize builds one candidate opportunity per ranked trend from the
// current window snapshot. Output is sorted by score descending, ties
// broken by shorter time to market, then title, for full determinism.
// Nothing below a score floor is dropped here; only the configured
// top-K cap (when set) truncates.
func (s *Synthesizer) Synthesize(findings []entity.Finding, updates []entity.CompetitorUpdate, trends []entity.Trend) []entity.Opportunity {
	opportunities := make([]entity.Opportunity, 0, len(trends))

	for _, trend := range trends {
		if !trend.RankedForSynthesis() {
			continue
		}

		supporting := supportingFindings(trend, findings)
		competing := competingUpdates(trend, updates)
		months := monthsToMarket(trend.Category)

		sub := SubScores{
			MarketSizeProxy:     clamp01(0.6*trend.MomentumScore + 0.4*math.Min(1, float64(len(supporting))/10)),
			CompetitionDensity:  competitionDensity(competing),
			TechnicalFit:        s.technicalFit(trend),
			TimeToMarketInverse: clamp01(1 - float64(months)/24),
			StrategicAlignment:  s.strategicAlignment(trend, supporting),
		}
		score := s.CombineScores(sub)

		opportunities = append(opportunities, entity.Opportunity{
			Title:                    displayName(trend.TrendName) + " Services",
			Description:              describeOpportunity(trend, len(supporting), len(competing)),
			MarketGap:                describeGap(trend, sub.CompetitionDensity),
			Score:                    score,
			Priority:                 entity.PriorityForScore(score),
			PotentialRevenue:         revenueBucket(score),
			ImplementationComplexity: complexityFor(months),
			TimeToMarket:             fmt.Sprintf("%d-%d months", months/2, months),
			TimeToMarketMonths:       months,
		})
	}

	sort.SliceStable(opportunities, func(i, j int) bool {
		if opportunities[i].Score != opportunities[j].Score {
			return opportunities[i].Score > opportunities[j].Score
		}
		if opportunities[i].TimeToMarketMonths != opportunities[j].TimeToMarketMonths {
			return opportunities[i].TimeToMarketMonths < opportunities[j].TimeToMarketMonths
		}
		return opportunities[i].Title < opportunities[j].Title
	})

	if s.topK > 0 && len(opportunities) > s.topK {
		opportunities = opportunities[:s.topK]
	}
	return opportunities
}

func supportingFindings(trend entity.Trend, findings []entity.Finding) []entity.Finding {
	matched := make([]entity.Finding, 0)
	for _, f := range findings {
		if f.Category == trend.Category || containsKeyword(normalizeName(f.Title+" "+f.Summary), trend.TrendName) {
			matched = append(matched, f)
		}
	}
	return matched
}

func competingUpdates(trend entity.Trend, updates []entity.CompetitorUpdate) []entity.CompetitorUpdate {
	matched := make([]entity.CompetitorUpdate, 0)
	for _, u := range updates {
		if u.UpdateType == trend.Category || containsKeyword(normalizeName(u.Description), trend.TrendName) {
			matched = append(matched, u)
		}
	}
	return matched
}

// competitionDensity saturates at five high-impact competitor moves in
// the same space.
func competitionDensity(updates []entity.CompetitorUpdate) float64 {
	total := 0.0
	for _, u := range updates {
		total += impactWeights[u.ImpactLevel]
	}
	return clamp01(total / 5)
}

func (s *Synthesizer) technicalFit(trend entity.Trend) float64 {
	if len(s.company.FocusAreas) == 0 {
		return 0.5
	}
	matches := 0
	for _, area := range s.company.FocusAreas {
		keyword := normalizeName(area)
		if containsKeyword(trend.TrendName, keyword) || containsKeyword(keyword, trend.TrendName) {
			matches++
		}
	}
	if matches == 0 {
		return 0.3
	}
	return clamp01(0.5 + 0.5*float64(matches)/float64(len(s.company.FocusAreas)))
}

func (s *Synthesizer) strategicAlignment(trend entity.Trend, supporting []entity.Finding) float64 {
	if len(s.company.StrategicGoals) == 0 {
		return 0.5
	}
	text := trend.TrendName
	for _, f := range supporting {
		text += " " + normalizeName(f.Title)
	}
	matches := 0
	for _, goal := range s.company.StrategicGoals {
		for _, word := range strings.Fields(normalizeName(goal)) {
			if len(word) > 3 && containsKeyword(text, word) {
				matches++
				break
			}
		}
	}
	return clamp01(0.4 + 0.6*float64(matches)/float64(len(s.company.StrategicGoals)))
}

func monthsToMarket(category entity.Category) int {
	if months, ok := timeToMarketMonths[category]; ok {
		return months
	}
	return defaultTimeToMarketMonths
}

func complexityFor(months int) string {
	switch {
	case months <= 6:
		return "low"
	case months <= 12:
		return "medium"
	default:
		return "high"
	}
}

func revenueBucket(score float64) string {
	switch {
	case score >= 0.8:
		return "$1M+"
	case score >= 0.5:
		return "$250K-$1M"
	default:
		return "<$250K"
	}
}

func describeOpportunity(trend entity.Trend, supportingCount, competingCount int) string {
	return fmt.Sprintf("%s momentum at %.2f in %s, backed by %d recent findings and %d competitor moves.",
		displayName(trend.TrendName), trend.MomentumScore, trend.Category, supportingCount, competingCount)
}

func describeGap(trend entity.Trend, density float64) string {
	if density < 0.3 {
		return fmt.Sprintf("Low competitor activity around %s despite rising demand.", displayName(trend.TrendName))
	}
	if density < 0.7 {
		return fmt.Sprintf("Contested but unsaturated market around %s.", displayName(trend.TrendName))
	}
	return fmt.Sprintf("Crowded market around %s; differentiation required.", displayName(trend.TrendName))
}
