package repository

import (
	"context"
	"errors"

	"golang-competitive-intel/internal/entity"

	"gorm.io/gorm"
)

// TrendRepository defines the interface for trend rows.
type TrendRepository interface {
	Create(ctx context.Context, trend *entity.Trend) error
	Update(ctx context.Context, trend *entity.Trend) error
	FindByIdentity(ctx context.Context, trendName string, category entity.Category) (*entity.Trend, error)
	FindAll(ctx context.Context) ([]entity.Trend, error)
	FindRanked(ctx context.Context, limit int) ([]entity.Trend, error)
}

// NewTrendRepository creates a new instance of TrendRepository.
func NewTrendRepository(db *gorm.DB) TrendRepository {
	return &trendRepository{db: db}
}

type trendRepository struct {
	db *gorm.DB
}

// Create saves a new trend.
func (r *trendRepository) Create(ctx context.Context, trend *entity.Trend) error {
	return r.db.WithContext(ctx).Create(trend).Error
}

// Update persists in-place changes to momentum, evidence and state.
func (r *trendRepository) Update(ctx context.Context, trend *entity.Trend) error {
	return r.db.WithContext(ctx).Save(trend).Error
}

// FindByIdentity looks a trend up by its matching key. Returns nil when
// no trend with that identity exists.
func (r *trendRepository) FindByIdentity(ctx context.Context, trendName string, category entity.Category) (*entity.Trend, error) {
	var trend entity.Trend
	err := r.db.WithContext(ctx).
		Where("trend_name = ? AND category = ?", trendName, category).
		First(&trend).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &trend, nil
}

// FindAll returns every trend, dormant ones included.
func (r *trendRepository) FindAll(ctx context.Context) ([]entity.Trend, error) {
	var trends []entity.Trend
	err := r.db.WithContext(ctx).
		Order("momentum_score DESC, trend_name ASC").
		Find(&trends).Error
	return trends, err
}

// FindRanked returns non-dormant trends by descending momentum.
func (r *trendRepository) FindRanked(ctx context.Context, limit int) ([]entity.Trend, error) {
	var trends []entity.Trend
	q := r.db.WithContext(ctx).
		Where("state <> ?", entity.TrendStateDormant).
		Order("momentum_score DESC, trend_name ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&trends).Error
	return trends, err
}
