package repository

import (
	"context"
	"time"

	"golang-competitive-intel/internal/entity"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FindingRepository defines the interface for interacting with market findings.
type FindingRepository interface {
	Create(ctx context.Context, finding *entity.Finding) error
	CreateIgnoreConflict(ctx context.Context, finding *entity.Finding) error
	FindSince(ctx context.Context, since time.Time) ([]entity.Finding, error)
	FindHighRelevanceSince(ctx context.Context, since time.Time, minScore float64) ([]entity.Finding, error)
	FindRecent(ctx context.Context, limit int) ([]entity.Finding, error)
}

// NewFindingRepository creates a new instance of FindingRepository.
func NewFindingRepository(db *gorm.DB) FindingRepository {
	return &findingRepository{db: db}
}

type findingRepository struct {
	db *gorm.DB
}

// Create saves a new market finding.
func (r *findingRepository) Create(ctx context.Context, finding *entity.Finding) error {
	return r.db.WithContext(ctx).Create(finding).Error
}

// CreateIgnoreConflict saves a finding, skipping rows that collide with
// the (title, date, category) backstop unique index.
func (r *findingRepository) CreateIgnoreConflict(ctx context.Context, finding *entity.Finding) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "title"}, {Name: "date"}, {Name: "category"}},
		DoNothing: true,
	}).Create(finding).Error
}

// FindSince returns findings with a date at or after since, newest first.
func (r *findingRepository) FindSince(ctx context.Context, since time.Time) ([]entity.Finding, error) {
	var findings []entity.Finding
	err := r.db.WithContext(ctx).
		Where("date >= ?", since).
		Order("date DESC").
		Find(&findings).Error
	return findings, err
}

// FindHighRelevanceSince returns findings at or above minScore within the window.
func (r *findingRepository) FindHighRelevanceSince(ctx context.Context, since time.Time, minScore float64) ([]entity.Finding, error) {
	var findings []entity.Finding
	err := r.db.WithContext(ctx).
		Where("date >= ? AND relevance_score >= ?", since, minScore).
		Order("relevance_score DESC, date DESC").
		Find(&findings).Error
	return findings, err
}

// FindRecent returns the newest findings for the read API.
func (r *findingRepository) FindRecent(ctx context.Context, limit int) ([]entity.Finding, error) {
	var findings []entity.Finding
	err := r.db.WithContext(ctx).
		Order("date DESC, id DESC").
		Limit(limit).
		Find(&findings).Error
	return findings, err
}
