package service

import (
	"context"

	"github.com/innerlight/circles-backend/internal/domain"
	"github.com/innerlight/circles-backend/internal/repository"
	"github.com/innerlight/circles-backend/pkg/cache"
	"github.com/rs/zerolog"
)

// CachedCircleLister feeds CircleStore.Load from redis first, then the database
type CachedCircleLister struct {
	repo   repository.CircleRepository
	cache  cache.Service
	logger zerolog.Logger
}

// NewCachedCircleLister creates a lister; cacheService may be nil
func NewCachedCircleLister(repo repository.CircleRepository, cacheService cache.Service, logger zerolog.Logger) *CachedCircleLister {
	if cacheService == nil {
		cacheService = cache.NewService(nil)
	}
	return &CachedCircleLister{repo: repo, cache: cacheService, logger: logger}
}

func (l *CachedCircleLister) List(ctx context.Context) ([]*domain.Circle, error) {
	var cached []*domain.Circle
	if err := l.cache.GetCircles(ctx, &cached); err == nil && len(cached) > 0 {
		return cached, nil
	}

	circles, err := l.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if err := l.cache.SetCircles(ctx, circles); err != nil {
		l.logger.Debug().Err(err).Msg("circle cache set failed")
	}
	return circles, nil
}
