package config

import (
	"golang-competitive-intel/pkg/config"
)

// Company is the immutable company context consumed by the scorer and
// synthesizer. It is loaded once at startup and passed by value.
type Company struct {
	Name             string   `mapstructure:"name"`
	Industry         string   `mapstructure:"industry"`
	TargetIndustries []string `mapstructure:"target_industries"`
	Competitors      []string `mapstructure:"competitors"`
	FocusAreas       []string `mapstructure:"focus_areas"`
	StrategicGoals   []string `mapstructure:"strategic_goals"`
}

// Rubric holds the weighted components of a relevance score. Weights
// must be non-negative and sum to 1.
type Rubric struct {
	RecencyWeight     float64 `mapstructure:"recency_weight"`
	CredibilityWeight float64 `mapstructure:"credibility_weight"`
	SalienceWeight    float64 `mapstructure:"salience_weight"`
}

// Analysis holds the tunable constants of the analysis core. The
// defaults are a reproducible baseline, not hard-coded truths.
type Analysis struct {
	LookbackDays       int                `mapstructure:"lookback_days"`
	DedupThreshold     float64            `mapstructure:"dedup_threshold"`
	TrendClusterMin    int                `mapstructure:"trend_cluster_min"`
	TrendDecay         float64            `mapstructure:"trend_decay"`
	TrendMomentumFloor float64            `mapstructure:"trend_momentum_floor"`
	RelevanceFloor     float64            `mapstructure:"relevance_floor"`
	HighRelevanceMin   float64            `mapstructure:"high_relevance_min"`
	ImpactMediumMin    float64            `mapstructure:"impact_medium_min"`
	ImpactHighMin      float64            `mapstructure:"impact_high_min"`
	OpportunityTopK    int                `mapstructure:"opportunity_top_k"`
	OpportunityWeights OpportunityWeights `mapstructure:"opportunity_weights"`
	Rubrics            map[string]Rubric  `mapstructure:"rubrics"`
	FallbackRubric     Rubric             `mapstructure:"fallback_rubric"`
	CredibleSources    []string           `mapstructure:"credible_sources"`
}

// OpportunityWeights holds the weighted sub-scores of the opportunity
// formula. Weights must be non-negative and sum to 1.
type OpportunityWeights struct {
	MarketSize         float64 `mapstructure:"market_size"`
	CompetitionInverse float64 `mapstructure:"competition_inverse"`
	TechnicalFit       float64 `mapstructure:"technical_fit"`
	TimeToMarket       float64 `mapstructure:"time_to_market"`
	StrategicAlignment float64 `mapstructure:"strategic_alignment"`
}

// Ingestion holds the source-fetch configuration.
type Ingestion struct {
	SourceTimeout   string `mapstructure:"source_timeout"`
	CacheTTL        string `mapstructure:"cache_ttl"`
	MaxPerQuery     int    `mapstructure:"max_per_query"`
	RequestsPerMin  int    `mapstructure:"requests_per_min"`
	FetchContent    bool   `mapstructure:"fetch_content"`
	MaxConcurrent   int    `mapstructure:"max_concurrent"`
	MaxSignalAgeDay int    `mapstructure:"max_signal_age_days"`
}

// Scheduler holds the cron schedule configuration.
type Scheduler struct {
	DailyCron  string `mapstructure:"daily_cron"`
	WeeklyCron string `mapstructure:"weekly_cron"`
	Timezone   string `mapstructure:"timezone"`
}

// Telegram holds the report delivery configuration.
type Telegram struct {
	Enabled  bool   `mapstructure:"enabled"`
	BotToken string `mapstructure:"bot_token"`
	ChatID   int64  `mapstructure:"chat_id"`
}

// Gemini holds the optional insight-generation configuration.
type Gemini struct {
	Enabled             bool   `mapstructure:"enabled"`
	APIKey              string `mapstructure:"api_key"`
	Model               string `mapstructure:"model"`
	MaxRequestPerMinute int    `mapstructure:"max_request_per_minute"`
}

// Config holds the full configuration for the analyzer service.
type Config struct {
	App       config.App      `mapstructure:"app"`
	Logger    config.Logger   `mapstructure:"logger"`
	Database  config.Database `mapstructure:"database"`
	Redis     config.Redis    `mapstructure:"redis"`
	API       config.API      `mapstructure:"api"`
	Company   Company         `mapstructure:"company"`
	Analysis  Analysis        `mapstructure:"analysis"`
	Ingestion Ingestion       `mapstructure:"ingestion"`
	Scheduler Scheduler       `mapstructure:"scheduler"`
	Telegram  Telegram        `mapstructure:"telegram"`
	Gemini    Gemini          `mapstructure:"gemini"`
}

// Load loads the analyzer configuration from the given path.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := config.Load(path, &cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	a := &cfg.Analysis
	if a.LookbackDays == 0 {
		a.LookbackDays = 180
	}
	if a.DedupThreshold == 0 {
		a.DedupThreshold = 0.8
	}
	if a.TrendClusterMin == 0 {
		a.TrendClusterMin = 3
	}
	if a.TrendDecay == 0 {
		a.TrendDecay = 0.85
	}
	if a.TrendMomentumFloor == 0 {
		a.TrendMomentumFloor = 0.05
	}
	if a.RelevanceFloor == 0 {
		a.RelevanceFloor = 0.1
	}
	if a.HighRelevanceMin == 0 {
		a.HighRelevanceMin = 0.7
	}
	if a.ImpactMediumMin == 0 {
		a.ImpactMediumMin = 0.4
	}
	if a.ImpactHighMin == 0 {
		a.ImpactHighMin = 0.75
	}
	if a.OpportunityWeights == (OpportunityWeights{}) {
		a.OpportunityWeights = OpportunityWeights{
			MarketSize:         0.25,
			CompetitionInverse: 0.20,
			TechnicalFit:       0.20,
			TimeToMarket:       0.15,
			StrategicAlignment: 0.20,
		}
	}
	if a.FallbackRubric == (Rubric{}) {
		a.FallbackRubric = Rubric{RecencyWeight: 0.5, CredibilityWeight: 0.3, SalienceWeight: 0.2}
	}
	if len(a.Rubrics) == 0 {
		a.Rubrics = map[string]Rubric{}
	}
	if cfg.Ingestion.SourceTimeout == "" {
		cfg.Ingestion.SourceTimeout = "60s"
	}
	if cfg.Ingestion.CacheTTL == "" {
		cfg.Ingestion.CacheTTL = "30m"
	}
	if cfg.Ingestion.MaxPerQuery == 0 {
		cfg.Ingestion.MaxPerQuery = 20
	}
	if cfg.Ingestion.RequestsPerMin == 0 {
		cfg.Ingestion.RequestsPerMin = 30
	}
	if cfg.Ingestion.MaxConcurrent == 0 {
		cfg.Ingestion.MaxConcurrent = 4
	}
	if cfg.Ingestion.MaxSignalAgeDay == 0 {
		cfg.Ingestion.MaxSignalAgeDay = 7
	}
	if cfg.Scheduler.DailyCron == "" {
		cfg.Scheduler.DailyCron = "0 7 * * *"
	}
	if cfg.Scheduler.WeeklyCron == "" {
		cfg.Scheduler.WeeklyCron = "0 8 * * 1"
	}
}
