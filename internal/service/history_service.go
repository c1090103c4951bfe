package service

import (
	"context"
	"fmt"

	"github.com/innerlight/circles-backend/internal/common"
	"github.com/innerlight/circles-backend/internal/domain"
	"github.com/innerlight/circles-backend/internal/repository"
	"github.com/innerlight/circles-backend/internal/store"
	"github.com/innerlight/circles-backend/pkg/cache"
	"github.com/rs/zerolog"
)

// HistoryService reads the message archive. It never touches a session's live view.
type HistoryService interface {
	ListByCircle(ctx context.Context, circleID string, page, limit int) ([]*domain.Message, *common.Meta, error)
	// Archive stores a sent message and drops cached pages for its circle
	Create(ctx context.Context, msg *domain.Message) error
}

type historyService struct {
	repo    repository.MessageRepository
	circles *store.CircleStore
	cache   cache.Service
	logger  zerolog.Logger
}

type historyPage struct {
	Messages []*domain.Message `json:"messages"`
	Total    int64             `json:"total"`
}

// NewHistoryService creates a new HistoryService
func NewHistoryService(repo repository.MessageRepository, circles *store.CircleStore, cacheService cache.Service, logger zerolog.Logger) HistoryService {
	if cacheService == nil {
		cacheService = cache.NewService(nil)
	}
	return &historyService{repo: repo, circles: circles, cache: cacheService, logger: logger}
}

func (s *historyService) ListByCircle(ctx context.Context, circleID string, page, limit int) ([]*domain.Message, *common.Meta, error) {
	if _, ok := s.circles.Get(circleID); !ok {
		return nil, nil, fmt.Errorf("history for circle %q: %w", circleID, common.ErrCircleNotFound)
	}
	page, limit = normalizePage(page, limit)

	var cached historyPage
	if err := s.cache.GetHistory(ctx, circleID, page, limit, &cached); err == nil {
		return cached.Messages, common.NewMeta(page, limit, cached.Total), nil
	}

	msgs, total, err := s.repo.FindByCircle(ctx, circleID, page, limit)
	if err != nil {
		return nil, nil, err
	}
	if err := s.cache.SetHistory(ctx, circleID, page, limit, historyPage{Messages: msgs, Total: total}); err != nil {
		s.logger.Debug().Err(err).Str("circle_id", circleID).Int("page", page).Msg("history cache set failed")
	}
	return msgs, common.NewMeta(page, limit, total), nil
}

func (s *historyService) Create(ctx context.Context, msg *domain.Message) error {
	if err := s.repo.Create(ctx, msg); err != nil {
		return err
	}
	return s.cache.InvalidateHistory(ctx, msg.CircleID)
}
