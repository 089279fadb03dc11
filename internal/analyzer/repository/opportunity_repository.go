package repository

import (
	"context"

	"golang-competitive-intel/internal/entity"

	"gorm.io/gorm"
)

// OpportunityRepository defines the interface for opportunity rows.
type OpportunityRepository interface {
	CreateBatch(ctx context.Context, opportunities []entity.Opportunity) error
	FindByRun(ctx context.Context, runID uint) ([]entity.Opportunity, error)
	FindTop(ctx context.Context, limit int) ([]entity.Opportunity, error)
}

// NewOpportunityRepository creates a new instance of OpportunityRepository.
func NewOpportunityRepository(db *gorm.DB) OpportunityRepository {
	return &opportunityRepository{db: db}
}

type opportunityRepository struct {
	db *gorm.DB
}

// CreateBatch saves a run's opportunities in one transaction so a run
// either records all of its opportunities or none of them.
func (r *opportunityRepository) CreateBatch(ctx context.Context, opportunities []entity.Opportunity) error {
	if len(opportunities) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&opportunities).Error
	})
}

// FindByRun returns the opportunities generated by one run, ranked.
func (r *opportunityRepository) FindByRun(ctx context.Context, runID uint) ([]entity.Opportunity, error) {
	var opportunities []entity.Opportunity
	err := r.db.WithContext(ctx).
		Where("run_id = ?", runID).
		Order("score DESC, time_to_market_months ASC, title ASC").
		Find(&opportunities).Error
	return opportunities, err
}

// FindTop returns the highest scoring opportunities across runs.
func (r *opportunityRepository) FindTop(ctx context.Context, limit int) ([]entity.Opportunity, error) {
	var opportunities []entity.Opportunity
	q := r.db.WithContext(ctx).
		Order("score DESC, time_to_market_months ASC, title ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&opportunities).Error
	return opportunities, err
}
