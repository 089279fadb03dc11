package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"golang-competitive-intel/internal/analyzer/repository"
	"golang-competitive-intel/internal/entity"
	"golang-competitive-intel/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

type fakeSearchRepo struct {
	mu         sync.Mutex
	fetchCalls int
}

// Fetch runs from the pipeline's concurrent ingest workers.
func (f *fakeSearchRepo) Fetch(_ context.Context, _ repository.SearchQuery) ([]entity.RawSignal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetchCalls++
	return nil, nil
}

func (f *fakeSearchRepo) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fetchCalls
}

type fakeFindingRepo struct{}

func (f *fakeFindingRepo) Create(_ context.Context, _ *entity.Finding) error { return nil }
func (f *fakeFindingRepo) CreateIgnoreConflict(_ context.Context, _ *entity.Finding) error {
	return nil
}
func (f *fakeFindingRepo) FindSince(_ context.Context, _ time.Time) ([]entity.Finding, error) {
	return nil, nil
}
func (f *fakeFindingRepo) FindHighRelevanceSince(_ context.Context, _ time.Time, _ float64) ([]entity.Finding, error) {
	return nil, nil
}
func (f *fakeFindingRepo) FindRecent(_ context.Context, _ int) ([]entity.Finding, error) {
	return nil, nil
}

type fakeUpdateRepo struct{}

func (f *fakeUpdateRepo) Create(_ context.Context, _ *entity.CompetitorUpdate) error { return nil }
func (f *fakeUpdateRepo) FindSince(_ context.Context, _ time.Time) ([]entity.CompetitorUpdate, error) {
	return nil, nil
}
func (f *fakeUpdateRepo) FindImpactfulSince(_ context.Context, _ time.Time) ([]entity.CompetitorUpdate, error) {
	return nil, nil
}
func (f *fakeUpdateRepo) FindByCompany(_ context.Context, _ string, _ int) ([]entity.CompetitorUpdate, error) {
	return nil, nil
}
func (f *fakeUpdateRepo) FindRecent(_ context.Context, _ int) ([]entity.CompetitorUpdate, error) {
	return nil, nil
}

type fakeTrendRepo struct {
	trends      []entity.Trend
	updateCalls int
}

func (f *fakeTrendRepo) Create(_ context.Context, trend *entity.Trend) error {
	f.trends = append(f.trends, *trend)
	return nil
}

func (f *fakeTrendRepo) Update(_ context.Context, trend *entity.Trend) error {
	f.updateCalls++
	for i := range f.trends {
		if f.trends[i].TrendName == trend.TrendName && f.trends[i].Category == trend.Category {
			f.trends[i] = *trend
		}
	}
	return nil
}

func (f *fakeTrendRepo) FindByIdentity(_ context.Context, trendName string, category entity.Category) (*entity.Trend, error) {
	for i := range f.trends {
		if f.trends[i].TrendName == trendName && f.trends[i].Category == category {
			copied := f.trends[i]
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeTrendRepo) FindAll(_ context.Context) ([]entity.Trend, error) {
	return append([]entity.Trend{}, f.trends...), nil
}

func (f *fakeTrendRepo) FindRanked(_ context.Context, _ int) ([]entity.Trend, error) {
	ranked := make([]entity.Trend, 0, len(f.trends))
	for _, trend := range f.trends {
		if trend.RankedForSynthesis() {
			ranked = append(ranked, trend)
		}
	}
	return ranked, nil
}

type fakeOpportunityRepo struct {
	created []entity.Opportunity
}

func (f *fakeOpportunityRepo) CreateBatch(_ context.Context, opportunities []entity.Opportunity) error {
	f.created = append(f.created, opportunities...)
	return nil
}
func (f *fakeOpportunityRepo) FindByRun(_ context.Context, _ uint) ([]entity.Opportunity, error) {
	return nil, nil
}
func (f *fakeOpportunityRepo) FindTop(_ context.Context, _ int) ([]entity.Opportunity, error) {
	return nil, nil
}

func newTestPipeline(t *testing.T, trendRepo *fakeTrendRepo, searchRepo *fakeSearchRepo) PipelineService {
	t.Helper()
	log, err := logger.New("error", "json")
	require.NoError(t, err)

	ledger := NewRunLedger(&fakeRunRepo{}, log)
	pipeline, err := NewPipelineService(
		newTestConfig(),
		log,
		searchRepo,
		&fakeFindingRepo{},
		&fakeUpdateRepo{},
		trendRepo,
		&fakeOpportunityRepo{},
		repository.NewTemplateInsightsRepository(),
		ledger,
		nil,
	)
	require.NoError(t, err)
	return pipeline
}

func seededTrend(momentum float64) entity.Trend {
	return entity.Trend{
		TrendName:     "ai agents",
		Category:      entity.CategoryAIResearch,
		MomentumScore: momentum,
		State:         entity.TrendStateActive,
		FirstDetected: time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC),
		Evidence:      datatypes.NewJSONType(entity.TrendEvidence{MentionCount: 5, Periods: 1, LastPeriodMentions: 5}),
	}
}

func TestRun_WeeklySkipsIngestionAndTrendUpdates(t *testing.T) {
	trendRepo := &fakeTrendRepo{trends: []entity.Trend{seededTrend(0.3)}}
	searchRepo := &fakeSearchRepo{}
	pipeline := newTestPipeline(t, trendRepo, searchRepo)

	run, err := pipeline.Run(context.Background(), entity.RunModeWeekly, "", 0)
	require.NoError(t, err)

	assert.Equal(t, entity.RunStatusCompleted, run.Status)
	assert.Equal(t, 0, searchRepo.calls())
	assert.Equal(t, 0, trendRepo.updateCalls)
	assert.Equal(t, 0, run.TrendsUpdatedCount)
	// The weekly summary leaves the momentum trajectory untouched.
	assert.InDelta(t, 0.3, trendRepo.trends[0].MomentumScore, 1e-9)
	// It still synthesizes over its window.
	assert.Equal(t, 1, run.OpportunitiesIdentified)
}

func TestRun_QuickAppliesDecayWithoutEvidence(t *testing.T) {
	trendRepo := &fakeTrendRepo{trends: []entity.Trend{seededTrend(0.3)}}
	searchRepo := &fakeSearchRepo{}
	pipeline := newTestPipeline(t, trendRepo, searchRepo)

	run, err := pipeline.Run(context.Background(), entity.RunModeQuick, "", 0)
	require.NoError(t, err)

	assert.Equal(t, entity.RunStatusCompleted, run.Status)
	assert.Positive(t, searchRepo.calls())
	assert.Equal(t, 1, trendRepo.updateCalls)
	assert.Equal(t, 1, run.TrendsUpdatedCount)
	assert.InDelta(t, 0.255, trendRepo.trends[0].MomentumScore, 1e-9)
	assert.Equal(t, entity.TrendStateDecaying, trendRepo.trends[0].State)
}
