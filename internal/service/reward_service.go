package service

import (
	"context"
	"fmt"

	"github.com/innerlight/circles-backend/internal/common"
	"github.com/innerlight/circles-backend/internal/domain"
	"github.com/innerlight/circles-backend/internal/eventbus"
	"github.com/innerlight/circles-backend/internal/repository"
	"github.com/innerlight/circles-backend/pkg/cache"
	"github.com/rs/zerolog"
)

// RewardService XP ledger: grants rewards and reports the summary/history
type RewardService interface {
	RewardGranter
	GetSummary(ctx context.Context, userID string) (*domain.ExpSummary, error)
	GetHistory(ctx context.Context, userID string, page, limit int) ([]*domain.ExpLog, *common.Meta, error)
}

type rewardService struct {
	repo   repository.ExpRepository
	cache  cache.Service
	bus    *eventbus.Bus
	logger zerolog.Logger
}

// NewRewardService creates a new RewardService. cache and bus may be nil.
func NewRewardService(repo repository.ExpRepository, cacheService cache.Service, bus *eventbus.Bus, logger zerolog.Logger) RewardService {
	if cacheService == nil {
		cacheService = cache.NewService(nil)
	}
	return &rewardService{
		repo:   repo,
		cache:  cacheService,
		bus:    bus,
		logger: logger,
	}
}

// Grant records XP for the user
func (s *rewardService) Grant(ctx context.Context, grant domain.RewardGrant) error {
	if grant.UserID == "" {
		return fmt.Errorf("grant %s: %w", grant.Reason, common.ErrUnauthorized)
	}
	if grant.Amount <= 0 {
		return nil
	}

	account, err := s.repo.AddExp(ctx, grant)
	if err != nil {
		return fmt.Errorf("grant %d xp to %s: %w", grant.Amount, grant.UserID, err)
	}

	if err := s.cache.InvalidateExpSummary(ctx, grant.UserID); err != nil {
		s.logger.Warn().Err(err).Str("user_id", grant.UserID).Msg("exp summary invalidate failed")
	}

	s.bus.Publish(eventbus.TopicRewardGranted, grant.UserID, map[string]interface{}{
		"amount":    grant.Amount,
		"reason":    grant.Reason,
		"total_exp": account.TotalExp,
		"level":     account.Level,
	})
	return nil
}

// GetSummary returns the user's XP summary, served from cache when possible
func (s *rewardService) GetSummary(ctx context.Context, userID string) (*domain.ExpSummary, error) {
	var cached domain.ExpSummary
	if err := s.cache.GetExpSummary(ctx, userID, &cached); err == nil {
		return &cached, nil
	}

	summary, err := s.repo.GetSummary(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := s.cache.SetExpSummary(ctx, userID, summary); err != nil {
		s.logger.Debug().Err(err).Str("user_id", userID).Msg("exp summary cache set failed")
	}
	return summary, nil
}

// GetHistory returns grants, newest first
func (s *rewardService) GetHistory(ctx context.Context, userID string, page, limit int) ([]*domain.ExpLog, *common.Meta, error) {
	page, limit = normalizePage(page, limit)

	logs, total, err := s.repo.GetHistory(ctx, userID, page, limit)
	if err != nil {
		return nil, nil, err
	}
	return logs, common.NewMeta(page, limit, total), nil
}

// normalizePage page < 1 becomes 1, limit outside 1..100 becomes 20
func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return page, limit
}
