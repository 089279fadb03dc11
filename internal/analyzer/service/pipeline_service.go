package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang-competitive-intel/internal/analyzer/config"
	"golang-competitive-intel/internal/analyzer/dto"
	"golang-competitive-intel/internal/analyzer/repository"
	"golang-competitive-intel/internal/entity"
	"golang-competitive-intel/pkg/common"
	"golang-competitive-intel/pkg/logger"
	"golang-competitive-intel/pkg/utils"

	"github.com/redis/go-redis/v9"
)

// PipelineService runs the full analysis pipeline: ingest, dedupe,
// score, update trends, synthesize opportunities, finalize the run
// ledger and publish the report.
type PipelineService interface {
	Run(ctx context.Context, mode entity.RunMode, topic string, lookbackDays int) (*entity.AnalysisRun, error)
}

// NewPipelineService creates a new PipelineService.
func NewPipelineService(
	cfg *config.Config,
	log *logger.Logger,
	searchRepo repository.SignalSearchRepository,
	findingRepo repository.FindingRepository,
	updateRepo repository.CompetitorUpdateRepository,
	trendRepo repository.TrendRepository,
	opportunityRepo repository.OpportunityRepository,
	insightsRepo repository.InsightsRepository,
	ledger *RunLedger,
	redisClient *redis.Client,
) (PipelineService, error) {
	dedup, err := NewDeduplicator(cfg.Analysis.DedupThreshold)
	if err != nil {
		return nil, err
	}
	scorer, err := NewScorer(cfg)
	if err != nil {
		return nil, err
	}
	trendEngine, err := NewTrendEngine(cfg)
	if err != nil {
		return nil, err
	}
	synthesizer, err := NewSynthesizer(cfg)
	if err != nil {
		return nil, err
	}
	return &pipelineService{
		cfg:             cfg,
		logger:          log,
		searchRepo:      searchRepo,
		findingRepo:     findingRepo,
		updateRepo:      updateRepo,
		trendRepo:       trendRepo,
		opportunityRepo: opportunityRepo,
		insightsRepo:    insightsRepo,
		ledger:          ledger,
		redisClient:     redisClient,
		dedup:           dedup,
		scorer:          scorer,
		trendEngine:     trendEngine,
		synthesizer:     synthesizer,
	}, nil
}

type pipelineService struct {
	cfg             *config.Config
	logger          *logger.Logger
	searchRepo      repository.SignalSearchRepository
	findingRepo     repository.FindingRepository
	updateRepo      repository.CompetitorUpdateRepository
	trendRepo       repository.TrendRepository
	opportunityRepo repository.OpportunityRepository
	insightsRepo    repository.InsightsRepository
	ledger          *RunLedger
	redisClient     *redis.Client
	dedup           *Deduplicator
	scorer          *Scorer
	trendEngine     *TrendEngine
	synthesizer     *Synthesizer
}

// Run executes one pipeline invocation. The ledger row is always
// finalized, including on cancellation and failure paths.
func (s *pipelineService) Run(ctx context.Context, mode entity.RunMode, topic string, lookbackDays int) (*entity.AnalysisRun, error) {
	if !mode.IsValid() {
		return nil, fmt.Errorf("unknown run mode %q", mode)
	}
	if lookbackDays <= 0 {
		lookbackDays = s.cfg.Analysis.LookbackDays
	}
	if mode == entity.RunModeWeekly {
		lookbackDays = 7
	}

	now := utils.TimeNowUTC()
	runDate := utils.DateUTC(now)

	handle, err := s.ledger.Begin(ctx, runDate, mode)
	if err != nil {
		return nil, err
	}
	run := handle.Run()

	// Finalize exactly once, whatever path exits Run.
	finalize := func(status entity.RunStatus, cause error) {
		if handle.Finalized() {
			return
		}
		errMsg := ""
		if cause != nil {
			errMsg = cause.Error()
		}
		// Finalization must survive the caller's cancellation.
		finalizeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
		defer cancel()
		if err := s.ledger.Finalize(finalizeCtx, handle, status, errMsg); err != nil {
			s.logger.Error("Failed to finalize run", logger.ErrorField(err), logger.Field("run_id", run.ID))
		}
	}
	defer finalize(entity.RunStatusFailed, fmt.Errorf("pipeline exited without finalizing"))

	windowStart := runDate.AddDate(0, 0, -lookbackDays)

	// Stage 1: ingestion (skipped for the weekly summary, which only
	// re-synthesizes over its window).
	var candidates []entity.RawSignal
	if mode != entity.RunModeWeekly {
		candidates = s.ingest(ctx, mode, topic, run)
	}
	if err := ctx.Err(); err != nil {
		finalize(entity.RunStatusFailed, err)
		return run, err
	}

	// Stage 2: dedupe against the lookback horizon.
	dedupResult, err := s.dedupe(ctx, candidates, windowStart)
	if err != nil {
		finalize(entity.RunStatusFailed, err)
		return run, err
	}
	run.SkippedSignals += dedupResult.Skipped
	if err := ctx.Err(); err != nil {
		finalize(entity.RunStatusFailed, err)
		return run, err
	}

	// Stage 3: score and persist new signals.
	if err := s.scoreAndPersist(ctx, dedupResult.New, runDate, now, run); err != nil {
		finalize(entity.RunStatusFailed, err)
		return run, err
	}
	if err := ctx.Err(); err != nil {
		finalize(entity.RunStatusFailed, err)
		return run, err
	}

	// Stage 4: trend momentum. Merged duplicates still count as
	// evidence. The weekly summary re-synthesizes only: the daily run
	// already advanced every trend for the date, so applying another
	// zero-evidence decay here would double-count the period.
	if mode != entity.RunModeWeekly {
		evidenceSignals := append(append([]entity.RawSignal{}, dedupResult.New...), mergeCandidates(dedupResult.Merges)...)
		if err := s.updateTrends(ctx, evidenceSignals, runDate, run); err != nil {
			finalize(entity.RunStatusFailed, err)
			return run, err
		}
	}
	if err := ctx.Err(); err != nil {
		finalize(entity.RunStatusFailed, err)
		return run, err
	}

	// Stage 5: opportunity synthesis. Failure here is partial, not
	// fatal: scoring and trends already committed.
	report := &dto.AnalysisReport{}
	if mode != entity.RunModeTrends {
		if err := s.synthesize(ctx, windowStart, run, report); err != nil {
			s.logger.Error("Opportunity synthesis failed", logger.ErrorField(err), logger.Field("run_id", run.ID))
			finalize(entity.RunStatusPartial, err)
			return run, nil
		}
	}

	// Insight text is best effort; the run completes without it.
	s.generateInsights(ctx, run, report)

	finalize(entity.RunStatusCompleted, nil)
	report.Run = *run
	s.publishReport(ctx, report)

	return run, nil
}

// ingest fetches all source queries for the mode concurrently. Each
// source has an independent timeout; a failed or timed-out source
// contributes zero candidates and is recorded as degraded coverage.
func (s *pipelineService) ingest(ctx context.Context, mode entity.RunMode, topic string, run *entity.AnalysisRun) []entity.RawSignal {
	queries := s.buildQueries(mode, topic)
	sourceTimeout, err := time.ParseDuration(s.cfg.Ingestion.SourceTimeout)
	if err != nil {
		sourceTimeout = time.Minute
	}

	var (
		wg         sync.WaitGroup
		mu         sync.Mutex
		candidates []entity.RawSignal
	)
	semaphore := make(chan struct{}, s.cfg.Ingestion.MaxConcurrent)

	for _, query := range queries {
		if !utils.ShouldContinue(ctx, s.logger) {
			break
		}
		query := query
		wg.Add(1)
		utils.GoSafe(func() {
			defer wg.Done()
			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			fetchCtx, cancel := context.WithTimeout(ctx, sourceTimeout)
			defer cancel()

			signals, err := s.searchRepo.Fetch(fetchCtx, query)
			if err != nil {
				srcErr := &SourceError{Source: query.Terms, Err: err}
				s.logger.Warn("Ingestion source degraded", logger.ErrorField(srcErr))
				mu.Lock()
				run.DegradedSources = append(run.DegradedSources, query.Terms)
				mu.Unlock()
				return
			}
			mu.Lock()
			candidates = append(candidates, signals...)
			mu.Unlock()
		})
	}
	wg.Wait()

	s.logger.Info("Ingestion complete",
		logger.IntField("queries", len(queries)),
		logger.IntField("candidates", len(candidates)),
		logger.IntField("degraded_sources", len(run.DegradedSources)),
	)
	return candidates
}

// buildQueries derives the search queries for a mode from the company context.
func (s *pipelineService) buildQueries(mode entity.RunMode, topic string) []repository.SearchQuery {
	company := s.cfg.Company
	var queries []repository.SearchQuery

	marketQueries := func() {
		for _, q := range []struct {
			category entity.Category
			terms    string
		}{
			{entity.CategoryAIResearch, company.Industry + " research breakthrough"},
			{entity.CategoryFunding, company.Industry + " startup funding investment"},
			{entity.CategoryRegulation, company.Industry + " regulation policy"},
			{entity.CategoryTechnology, company.Industry + " technology adoption"},
			{entity.CategoryMarketTrend, company.Industry + " market trends forecast"},
		} {
			queries = append(queries, repository.SearchQuery{
				Kind:     entity.SignalKindFinding,
				Category: q.category,
				Terms:    q.terms,
			})
		}
	}
	competitorQueries := func(only string) {
		for _, competitor := range company.Competitors {
			if only != "" && !strings.EqualFold(competitor, only) {
				continue
			}
			queries = append(queries, repository.SearchQuery{
				Kind:        entity.SignalKindCompetitor,
				Category:    entity.CategoryProductLaunch,
				CompanyName: competitor,
				Terms:       competitor + " product launch partnership",
			})
		}
	}
	trendQueries := func() {
		for _, area := range company.FocusAreas {
			queries = append(queries, repository.SearchQuery{
				Kind:     entity.SignalKindFinding,
				Category: entity.CategoryMarketTrend,
				Terms:    area + " trend",
			})
		}
	}

	switch mode {
	case entity.RunModeDaily:
		marketQueries()
		competitorQueries("")
		trendQueries()
	case entity.RunModeQuick:
		marketQueries()
		if topic != "" {
			queries = append(queries, repository.SearchQuery{
				Kind:     entity.SignalKindFinding,
				Category: entity.CategoryMarketTrend,
				Terms:    topic,
			})
		}
	case entity.RunModeCompetitor:
		competitorQueries(topic)
	case entity.RunModeTrends:
		trendQueries()
	}
	return queries
}

// dedupe loads the persisted horizon and partitions the candidates.
func (s *pipelineService) dedupe(ctx context.Context, candidates []entity.RawSignal, windowStart time.Time) (DedupResult, error) {
	findings, err := s.findingRepo.FindSince(ctx, windowStart)
	if err != nil {
		return DedupResult{}, fmt.Errorf("failed to load finding horizon: %w", err)
	}
	updates, err := s.updateRepo.FindSince(ctx, windowStart)
	if err != nil {
		return DedupResult{}, fmt.Errorf("failed to load competitor horizon: %w", err)
	}

	horizon := make([]PersistedSignal, 0, len(findings)+len(updates))
	for _, f := range findings {
		horizon = append(horizon, PersistedSignal{ID: f.ID, Title: f.Title, SourceURL: f.SourceURL, ContentLen: len(f.Content)})
	}
	for _, u := range updates {
		horizon = append(horizon, PersistedSignal{ID: u.ID, Title: u.Description, SourceURL: u.SourceURL})
	}

	result := s.dedup.Dedupe(candidates, horizon)
	s.logger.Info("Dedup complete",
		logger.IntField("new", len(result.New)),
		logger.IntField("merged", len(result.Merges)),
		logger.IntField("skipped", result.Skipped),
	)
	return result, nil
}

// scoreAndPersist scores each new signal and writes the finding or
// competitor update row. Validation failures skip the signal and count
// it; persistence failures abort the run.
func (s *pipelineService) scoreAndPersist(ctx context.Context, signals []entity.RawSignal, runDate, now time.Time, run *entity.AnalysisRun) error {
	for _, signal := range signals {
		score := s.scorer.Score(signal, now)

		switch signal.Kind {
		case entity.SignalKindCompetitor:
			update := &entity.CompetitorUpdate{
				CompanyName:  signal.CompanyName,
				UpdateType:   signal.Category,
				Description:  signal.Title + ": " + signal.Summary,
				ImpactLevel:  s.scorer.ImpactLevelFor(score),
				ImpactScore:  score,
				SourceURL:    signal.SourceURL,
				DetectedDate: runDate,
			}
			if err := update.Validate(); err != nil {
				s.logger.Warn("Skipping invalid competitor update", logger.ErrorField(err))
				run.SkippedSignals++
				continue
			}
			if err := s.updateRepo.Create(ctx, update); err != nil {
				return fmt.Errorf("failed to persist competitor update: %w", err)
			}
			run.CompetitorUpdatesCount++

		default:
			finding := &entity.Finding{
				Date:           utils.DateUTC(signal.PublishedAt),
				Category:       signal.Category,
				Title:          signal.Title,
				Summary:        signal.Summary,
				Content:        signal.Content,
				RelevanceScore: score,
				SourceURL:      signal.SourceURL,
			}
			if err := finding.Validate(); err != nil {
				s.logger.Warn("Skipping invalid finding", logger.ErrorField(err))
				run.SkippedSignals++
				continue
			}
			if err := s.findingRepo.CreateIgnoreConflict(ctx, finding); err != nil {
				return fmt.Errorf("failed to persist finding: %w", err)
			}
			run.FindingsCount++
		}
	}
	return nil
}

// updateTrends advances every trend by one run. Updates are serialized:
// this loop is the single writer for trend rows during a run.
func (s *pipelineService) updateTrends(ctx context.Context, signals []entity.RawSignal, runDate time.Time, run *entity.AnalysisRun) error {
	batches := s.trendEngine.ExtractEvidence(signals, s.cfg.Company.FocusAreas)
	batchByIdentity := make(map[string]*TrendEvidenceBatch, len(batches))
	for i := range batches {
		batchByIdentity[batches[i].Identity()] = &batches[i]
	}

	existing, err := s.trendRepo.FindAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to load trends: %w", err)
	}

	seen := make(map[string]struct{}, len(existing))
	for i := range existing {
		trend := &existing[i]
		identity := trend.TrendName + "|" + string(trend.Category)
		seen[identity] = struct{}{}

		s.trendEngine.Apply(trend, batchByIdentity[identity])
		if err := trend.Validate(); err != nil {
			return fmt.Errorf("trend %q became invalid: %w", trend.TrendName, err)
		}
		if err := s.trendRepo.Update(ctx, trend); err != nil {
			return fmt.Errorf("failed to update trend %q: %w", trend.TrendName, err)
		}
		run.TrendsUpdatedCount++
	}

	for _, batch := range batches {
		if _, exists := seen[batch.Identity()]; exists {
			continue
		}
		trend, ok := s.trendEngine.NewTrend(batch, runDate)
		if !ok {
			continue
		}
		if err := trend.Validate(); err != nil {
			s.logger.Warn("Skipping invalid new trend", logger.ErrorField(err))
			continue
		}
		if err := s.trendRepo.Create(ctx, trend); err != nil {
			return fmt.Errorf("failed to create trend %q: %w", trend.TrendName, err)
		}
		run.TrendsUpdatedCount++
	}
	return nil
}

// synthesize builds and persists this run's opportunities from the
// current window snapshot.
func (s *pipelineService) synthesize(ctx context.Context, windowStart time.Time, run *entity.AnalysisRun, report *dto.AnalysisReport) error {
	findings, err := s.findingRepo.FindHighRelevanceSince(ctx, windowStart, s.cfg.Analysis.HighRelevanceMin)
	if err != nil {
		return fmt.Errorf("failed to load findings for synthesis: %w", err)
	}
	updates, err := s.updateRepo.FindImpactfulSince(ctx, windowStart)
	if err != nil {
		return fmt.Errorf("failed to load updates for synthesis: %w", err)
	}
	trends, err := s.trendRepo.FindRanked(ctx, 0)
	if err != nil {
		return fmt.Errorf("failed to load trends for synthesis: %w", err)
	}

	opportunities := s.synthesizer.Synthesize(findings, updates, trends)
	for i := range opportunities {
		opportunities[i].RunID = run.ID
		if err := opportunities[i].Validate(); err != nil {
			return fmt.Errorf("synthesized opportunity invalid: %w", err)
		}
	}
	if err := s.opportunityRepo.CreateBatch(ctx, opportunities); err != nil {
		return fmt.Errorf("failed to persist opportunities: %w", err)
	}

	run.OpportunitiesIdentified = len(opportunities)
	if len(opportunities) > 10 {
		opportunities = opportunities[:10]
	}
	report.TopOpportunities = opportunities
	if len(trends) > 5 {
		trends = trends[:5]
	}
	report.TopTrends = trends
	return nil
}

// generateInsights fills the narrative fields on the run row. Failures
// are logged and ignored; insight text never gates run completion.
func (s *pipelineService) generateInsights(ctx context.Context, run *entity.AnalysisRun, report *dto.AnalysisReport) {
	result, err := s.insightsRepo.GenerateRunInsights(ctx, run, report.TopOpportunities, report.TopTrends)
	if err != nil {
		s.logger.Warn("Insight generation failed", logger.ErrorField(err), logger.Field("run_id", run.ID))
		return
	}
	run.KeyInsights = result.KeyInsights
	run.Recommendations = result.Recommendations
}

// publishReport pushes the finalized report onto the notification
// stream. Delivery failure never rolls back persisted analysis results.
func (s *pipelineService) publishReport(ctx context.Context, report *dto.AnalysisReport) {
	if s.redisClient == nil {
		return
	}
	payload, err := json.Marshal(report)
	if err != nil {
		s.logger.Error("Failed to marshal report", logger.ErrorField(err))
		return
	}
	err = s.redisClient.XAdd(context.WithoutCancel(ctx), &redis.XAddArgs{
		Stream: common.RedisStreamAnalysisReport,
		Values: map[string]interface{}{"payload": payload},
		MaxLen: s.cfg.Redis.StreamMaxLen,
	}).Err()
	if err != nil {
		s.logger.Error("Failed to publish report", logger.ErrorField(err))
		return
	}
	s.logger.Info("Report published", logger.Field("run_id", report.Run.ID))
}

func mergeCandidates(merges []MergeInstruction) []entity.RawSignal {
	signals := make([]entity.RawSignal, 0, len(merges))
	for _, m := range merges {
		signals = append(signals, m.Candidate)
	}
	return signals
}
