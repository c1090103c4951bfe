package repository

import (
	"context"

	"github.com/innerlight/circles-backend/internal/domain"
	"gorm.io/gorm"
)

// MessageRepository circle message archive
type MessageRepository interface {
	Create(ctx context.Context, msg *domain.Message) error
	FindByCircle(ctx context.Context, circleID string, page, limit int) ([]*domain.Message, int64, error)
}

type messageRepository struct {
	db *gorm.DB
}

// NewMessageRepository creates a new MessageRepository
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

// Create archives a sent message
func (r *messageRepository) Create(ctx context.Context, msg *domain.Message) error {
	return r.db.WithContext(ctx).Create(msg).Error
}

// FindByCircle returns archived messages for a circle, newest first
func (r *messageRepository) FindByCircle(ctx context.Context, circleID string, page, limit int) ([]*domain.Message, int64, error) {
	var messages []*domain.Message
	var total int64

	db := r.db.WithContext(ctx)
	if err := db.Model(&domain.Message{}).
		Where("circle_id = ?", circleID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	err := db.Where("circle_id = ?", circleID).
		Order("created_at DESC, id DESC").
		Offset(offset).Limit(limit).
		Find(&messages).Error
	return messages, total, err
}
