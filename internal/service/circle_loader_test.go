package service

import (
	"context"
	"errors"
	"testing"

	"github.com/innerlight/circles-backend/internal/domain"
	"github.com/innerlight/circles-backend/internal/store"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockCircleRepo struct {
	mock.Mock
}

func (m *mockCircleRepo) List(ctx context.Context) ([]*domain.Circle, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Circle), args.Error(1)
}

func (m *mockCircleRepo) FindByID(ctx context.Context, id string) (*domain.Circle, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Circle), args.Error(1)
}

func TestCachedCircleLister_FeedsStore(t *testing.T) {
	repo := new(mockCircleRepo)
	repo.On("List", mock.Anything).Return(testCircles(), nil).Once()
	lister := NewCachedCircleLister(repo, nil, zerolog.Nop())

	circles := store.NewCircleStore(nil, nil)
	require.NoError(t, circles.Load(context.Background(), lister))

	assert.Len(t, circles.List(), 2)
	assert.False(t, circles.Loading())
	repo.AssertExpectations(t)
}

func TestCachedCircleLister_RepoError(t *testing.T) {
	repo := new(mockCircleRepo)
	repo.On("List", mock.Anything).Return(nil, errors.New("db down"))
	lister := NewCachedCircleLister(repo, nil, zerolog.Nop())

	_, err := lister.List(context.Background())
	assert.Error(t, err)
}
