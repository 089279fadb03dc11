package repository

import (
	"context"
	"errors"
	"time"

	"golang-competitive-intel/internal/entity"

	"gorm.io/gorm"
)

// AnalysisRunRepository defines the interface for analysis run rows.
type AnalysisRunRepository interface {
	Create(ctx context.Context, run *entity.AnalysisRun) error
	Update(ctx context.Context, run *entity.AnalysisRun) error
	FindByID(ctx context.Context, id uint) (*entity.AnalysisRun, error)
	FindScheduledByDate(ctx context.Context, runDate time.Time, mode entity.RunMode) (*entity.AnalysisRun, error)
	FindRecent(ctx context.Context, limit int) ([]entity.AnalysisRun, error)
}

// NewAnalysisRunRepository creates a new instance of AnalysisRunRepository.
func NewAnalysisRunRepository(db *gorm.DB) AnalysisRunRepository {
	return &analysisRunRepository{db: db}
}

type analysisRunRepository struct {
	db *gorm.DB
}

// Create saves a new analysis run row.
func (r *analysisRunRepository) Create(ctx context.Context, run *entity.AnalysisRun) error {
	return r.db.WithContext(ctx).Create(run).Error
}

// Update persists the finalized counts and status.
func (r *analysisRunRepository) Update(ctx context.Context, run *entity.AnalysisRun) error {
	return r.db.WithContext(ctx).Save(run).Error
}

// FindByID returns one run row. Returns nil when the run does not exist.
func (r *analysisRunRepository) FindByID(ctx context.Context, id uint) (*entity.AnalysisRun, error) {
	var run entity.AnalysisRun
	err := r.db.WithContext(ctx).First(&run, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// FindScheduledByDate returns the newest scheduled run of one mode for a
// calendar date, or nil when none exists. Used by the duplicate-run
// guard; daily and weekly runs on the same date do not block each other.
func (r *analysisRunRepository) FindScheduledByDate(ctx context.Context, runDate time.Time, mode entity.RunMode) (*entity.AnalysisRun, error) {
	var run entity.AnalysisRun
	err := r.db.WithContext(ctx).
		Where("run_date = ? AND mode = ? AND scheduled = ?", runDate, mode, true).
		Order("created_at DESC").
		First(&run).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// FindRecent returns the newest runs for the read API.
func (r *analysisRunRepository) FindRecent(ctx context.Context, limit int) ([]entity.AnalysisRun, error) {
	var runs []entity.AnalysisRun
	err := r.db.WithContext(ctx).
		Order("run_date DESC, id DESC").
		Limit(limit).
		Find(&runs).Error
	return runs, err
}
