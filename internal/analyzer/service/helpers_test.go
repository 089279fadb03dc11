package service

import (
	"golang-competitive-intel/internal/analyzer/config"
)

func newTestConfig() *config.Config {
	return &config.Config{
		Company: config.Company{
			Name:             "Acme AI",
			Industry:         "enterprise AI",
			TargetIndustries: []string{"financial services", "healthcare"},
			Competitors:      []string{"OpenAI", "Anthropic"},
			FocusAreas:       []string{"AI agents", "enterprise AI", "LLM"},
			StrategicGoals:   []string{"market share expansion", "new service development"},
		},
		Analysis: config.Analysis{
			LookbackDays:       180,
			DedupThreshold:     0.8,
			TrendClusterMin:    3,
			TrendDecay:         0.85,
			TrendMomentumFloor: 0.05,
			RelevanceFloor:     0.1,
			HighRelevanceMin:   0.7,
			ImpactMediumMin:    0.4,
			ImpactHighMin:      0.75,
			OpportunityWeights: config.OpportunityWeights{
				MarketSize:         0.25,
				CompetitionInverse: 0.20,
				TechnicalFit:       0.20,
				TimeToMarket:       0.15,
				StrategicAlignment: 0.20,
			},
			Rubrics: map[string]config.Rubric{
				"ai_research":    {RecencyWeight: 0.3, CredibilityWeight: 0.3, SalienceWeight: 0.4},
				"product_launch": {RecencyWeight: 0.4, CredibilityWeight: 0.2, SalienceWeight: 0.4},
			},
			FallbackRubric:  config.Rubric{RecencyWeight: 0.5, CredibilityWeight: 0.3, SalienceWeight: 0.2},
			CredibleSources: []string{"reuters.com", "techcrunch.com"},
		},
		Ingestion: config.Ingestion{
			SourceTimeout: "60s",
			MaxConcurrent: 4,
		},
	}
}
