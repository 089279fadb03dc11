package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"golang-competitive-intel/internal/analyzer/config"
	"golang-competitive-intel/internal/analyzer/dto"
	"golang-competitive-intel/internal/entity"
	"golang-competitive-intel/pkg/logger"

	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

// InsightsRepository turns a finalized run into narrative insight text.
// The analysis core never depends on this output for scoring.
type InsightsRepository interface {
	GenerateRunInsights(ctx context.Context, run *entity.AnalysisRun, opportunities []entity.Opportunity, trends []entity.Trend) (*dto.InsightResult, error)
}

// NewGeminiInsightsRepository creates an InsightsRepository backed by the
// Google Gemini API.
func NewGeminiInsightsRepository(cfg *config.Config, log *logger.Logger, genAiClient *genai.Client) InsightsRepository {
	secondsPerRequest := time.Minute / time.Duration(cfg.Gemini.MaxRequestPerMinute)
	return &geminiInsightsRepository{
		cfg:            cfg,
		logger:         log,
		genAiClient:    genAiClient,
		requestLimiter: rate.NewLimiter(rate.Every(secondsPerRequest), 1),
	}
}

type geminiInsightsRepository struct {
	cfg            *config.Config
	logger         *logger.Logger
	genAiClient    *genai.Client
	requestLimiter *rate.Limiter
}

// GenerateRunInsights asks Gemini for key insights and recommendations.
func (r *geminiInsightsRepository) GenerateRunInsights(ctx context.Context, run *entity.AnalysisRun, opportunities []entity.Opportunity, trends []entity.Trend) (*dto.InsightResult, error) {
	if err := r.requestLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("failed to wait for request limit: %w", err)
	}

	prompt := buildRunInsightsPrompt(r.cfg.Company, run, opportunities, trends)
	contents := []*genai.Content{
		genai.NewContentFromText(prompt, "user"),
	}

	resp, err := r.genAiClient.Models.GenerateContent(ctx, r.cfg.Gemini.Model, contents, nil)
	if err != nil {
		return nil, fmt.Errorf("gemini generate content: %w", err)
	}

	var result dto.InsightResult
	raw := stripJSONFence(resp.Text())
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return nil, fmt.Errorf("failed to parse gemini insight response: %w", err)
	}
	return &result, nil
}

func buildRunInsightsPrompt(company config.Company, run *entity.AnalysisRun, opportunities []entity.Opportunity, trends []entity.Trend) string {
	var b strings.Builder
	b.WriteString("You are a strategic advisor for ")
	b.WriteString(company.Name)
	b.WriteString(", operating in ")
	b.WriteString(company.Industry)
	b.WriteString(".\n\nToday's competitive analysis produced:\n")
	fmt.Fprintf(&b, "- %d market findings, %d competitor updates, %d trends updated\n",
		run.FindingsCount, run.CompetitorUpdatesCount, run.TrendsUpdatedCount)

	b.WriteString("\nTop opportunities:\n")
	for i, opp := range opportunities {
		if i >= 5 {
			break
		}
		fmt.Fprintf(&b, "- %s (score %.2f, %s priority): %s\n", opp.Title, opp.Score, opp.Priority, opp.MarketGap)
	}
	b.WriteString("\nTop trends:\n")
	for i, trend := range trends {
		if i >= 5 {
			break
		}
		fmt.Fprintf(&b, "- %s (%s, momentum %.2f)\n", trend.TrendName, trend.Category, trend.MomentumScore)
	}

	b.WriteString("\nStrategic goals: ")
	b.WriteString(strings.Join(company.StrategicGoals, ", "))
	b.WriteString(`

Respond with JSON only, no prose around it:
{
  "key_insights": "2-4 sentence executive summary",
  "recommendations": ["ordered, concrete action items"]
}`)
	return b.String()
}

func stripJSONFence(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// NewTemplateInsightsRepository creates a deterministic fallback used
// when Gemini is disabled. It keeps run output reproducible in tests.
func NewTemplateInsightsRepository() InsightsRepository {
	return &templateInsightsRepository{}
}

type templateInsightsRepository struct{}

// GenerateRunInsights builds insight text from the run counts alone.
func (r *templateInsightsRepository) GenerateRunInsights(_ context.Context, run *entity.AnalysisRun, opportunities []entity.Opportunity, trends []entity.Trend) (*dto.InsightResult, error) {
	var insights strings.Builder
	fmt.Fprintf(&insights, "Analyzed %d findings and %d competitor updates; %d trends updated.",
		run.FindingsCount, run.CompetitorUpdatesCount, run.TrendsUpdatedCount)
	if len(opportunities) > 0 {
		top := opportunities[0]
		fmt.Fprintf(&insights, " Leading opportunity: %s (score %.2f).", top.Title, top.Score)
	}
	if len(trends) > 0 {
		fmt.Fprintf(&insights, " Strongest trend: %s (momentum %.2f).", trends[0].TrendName, trends[0].MomentumScore)
	}

	recommendations := make([]string, 0, 3)
	for i, opp := range opportunities {
		if i >= 3 {
			break
		}
		recommendations = append(recommendations, fmt.Sprintf("Evaluate %s priority opportunity: %s", opp.Priority, opp.Title))
	}
	if len(recommendations) == 0 {
		recommendations = append(recommendations, "No qualifying opportunities this run; review ingestion coverage.")
	}

	return &dto.InsightResult{
		KeyInsights:     insights.String(),
		Recommendations: recommendations,
	}, nil
}
