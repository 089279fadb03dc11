package repository

import (
	"context"
	"time"

	"golang-competitive-intel/internal/entity"

	"gorm.io/gorm"
)

// CompetitorUpdateRepository defines the interface for competitor update rows.
type CompetitorUpdateRepository interface {
	Create(ctx context.Context, update *entity.CompetitorUpdate) error
	FindSince(ctx context.Context, since time.Time) ([]entity.CompetitorUpdate, error)
	FindImpactfulSince(ctx context.Context, since time.Time) ([]entity.CompetitorUpdate, error)
	FindByCompany(ctx context.Context, companyName string, limit int) ([]entity.CompetitorUpdate, error)
	FindRecent(ctx context.Context, limit int) ([]entity.CompetitorUpdate, error)
}

// NewCompetitorUpdateRepository creates a new instance of CompetitorUpdateRepository.
func NewCompetitorUpdateRepository(db *gorm.DB) CompetitorUpdateRepository {
	return &competitorUpdateRepository{db: db}
}

type competitorUpdateRepository struct {
	db *gorm.DB
}

// Create saves a new competitor update.
func (r *competitorUpdateRepository) Create(ctx context.Context, update *entity.CompetitorUpdate) error {
	return r.db.WithContext(ctx).Create(update).Error
}

// FindSince returns updates detected at or after since, newest first.
func (r *competitorUpdateRepository) FindSince(ctx context.Context, since time.Time) ([]entity.CompetitorUpdate, error) {
	var updates []entity.CompetitorUpdate
	err := r.db.WithContext(ctx).
		Where("detected_date >= ?", since).
		Order("detected_date DESC").
		Find(&updates).Error
	return updates, err
}

// FindImpactfulSince returns medium and high impact updates within the window.
func (r *competitorUpdateRepository) FindImpactfulSince(ctx context.Context, since time.Time) ([]entity.CompetitorUpdate, error) {
	var updates []entity.CompetitorUpdate
	err := r.db.WithContext(ctx).
		Where("detected_date >= ? AND impact_level IN ?", since, []entity.ImpactLevel{entity.ImpactMedium, entity.ImpactHigh}).
		Order("detected_date DESC").
		Find(&updates).Error
	return updates, err
}

// FindByCompany returns the newest updates for one company.
func (r *competitorUpdateRepository) FindByCompany(ctx context.Context, companyName string, limit int) ([]entity.CompetitorUpdate, error) {
	var updates []entity.CompetitorUpdate
	err := r.db.WithContext(ctx).
		Where("company_name = ?", companyName).
		Order("detected_date DESC").
		Limit(limit).
		Find(&updates).Error
	return updates, err
}

// FindRecent returns the newest updates for the read API.
func (r *competitorUpdateRepository) FindRecent(ctx context.Context, limit int) ([]entity.CompetitorUpdate, error) {
	var updates []entity.CompetitorUpdate
	err := r.db.WithContext(ctx).
		Order("detected_date DESC, id DESC").
		Limit(limit).
		Find(&updates).Error
	return updates, err
}
