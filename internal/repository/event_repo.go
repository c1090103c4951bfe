package repository

import (
	"context"

	"github.com/innerlight/circles-backend/internal/domain"
	"gorm.io/gorm"
)

// EventRepository event persistence
type EventRepository interface {
	Create(ctx context.Context, event *domain.Event) error
	SaveParticipants(ctx context.Context, event *domain.Event) error
	List(ctx context.Context) ([]*domain.Event, error)
	FindByID(ctx context.Context, id string) (*domain.Event, error)
}

type eventRepository struct {
	db *gorm.DB
}

// NewEventRepository creates a new EventRepository
func NewEventRepository(db *gorm.DB) EventRepository {
	return &eventRepository{db: db}
}

// Create inserts a new event
func (r *eventRepository) Create(ctx context.Context, event *domain.Event) error {
	return r.db.WithContext(ctx).Create(event).Error
}

// SaveParticipants writes the participant list of an existing event
func (r *eventRepository) SaveParticipants(ctx context.Context, event *domain.Event) error {
	result := r.db.WithContext(ctx).Model(&domain.Event{}).
		Where("id = ?", event.ID).
		Updates(map[string]interface{}{
			"participants": event.Participants,
			"updated_at":   event.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// List returns every event in creation order
func (r *eventRepository) List(ctx context.Context) ([]*domain.Event, error) {
	var events []*domain.Event
	if err := r.db.WithContext(ctx).Order("created_at ASC").Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

// FindByID finds an event by ID
func (r *eventRepository) FindByID(ctx context.Context, id string) (*domain.Event, error) {
	var event domain.Event
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&event).Error; err != nil {
		return nil, err
	}
	return &event, nil
}
