package repository

import (
	"context"

	"github.com/innerlight/circles-backend/internal/domain"
	"gorm.io/gorm"
)

// CircleRepository circle data access interface
type CircleRepository interface {
	List(ctx context.Context) ([]*domain.Circle, error)
	FindByID(ctx context.Context, id string) (*domain.Circle, error)
}

type circleRepository struct {
	db *gorm.DB
}

// NewCircleRepository creates a new CircleRepository
func NewCircleRepository(db *gorm.DB) CircleRepository {
	return &circleRepository{db: db}
}

// List returns circles in display order
func (r *circleRepository) List(ctx context.Context) ([]*domain.Circle, error) {
	var circles []*domain.Circle
	err := r.db.WithContext(ctx).
		Order("sort_order ASC, id ASC").
		Find(&circles).Error
	if err != nil {
		return nil, err
	}
	return circles, nil
}

// FindByID finds a circle by ID
func (r *circleRepository) FindByID(ctx context.Context, id string) (*domain.Circle, error) {
	var circle domain.Circle
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&circle).Error; err != nil {
		return nil, err
	}
	return &circle, nil
}
