package store

import (
	"context"
	"sync"

	"github.com/innerlight/circles-backend/internal/domain"
	"github.com/innerlight/circles-backend/internal/eventbus"
)

// CircleLister loads circles from persistent storage
type CircleLister interface {
	List(ctx context.Context) ([]*domain.Circle, error)
}

// CircleStore holds the ordered circle collection shared by all sessions
type CircleStore struct {
	bus     *eventbus.Bus
	circles []*domain.Circle
	mu      sync.RWMutex
	loading bool
}

// NewCircleStore creates a store seeded with the given circles
func NewCircleStore(seed []*domain.Circle, bus *eventbus.Bus) *CircleStore {
	return &CircleStore{
		circles: cloneCircles(seed),
		bus:     bus,
	}
}

// Load replaces the collection with what the lister returns.
// The seed stays in place when loading fails or yields nothing.
func (s *CircleStore) Load(ctx context.Context, lister CircleLister) error {
	s.mu.Lock()
	s.loading = true
	s.mu.Unlock()

	circles, err := lister.List(ctx)

	s.mu.Lock()
	s.loading = false
	if err == nil && len(circles) > 0 {
		s.circles = cloneCircles(circles)
	}
	count := len(s.circles)
	s.mu.Unlock()

	if err != nil {
		return err
	}
	s.bus.Publish(eventbus.TopicCirclesLoaded, "", count)
	return nil
}

// List returns a snapshot of the circles in order
func (s *CircleStore) List() []*domain.Circle {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneCircles(s.circles)
}

// Loading reports whether a Load is in flight
func (s *CircleStore) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Snapshot returns circles plus the loading flag
func (s *CircleStore) Snapshot() *domain.CircleListResponse {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return &domain.CircleListResponse{
		Circles: cloneCircles(s.circles),
		Loading: s.loading,
	}
}

// Get finds a circle by id
func (s *CircleStore) Get(id string) (*domain.Circle, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.circles {
		if c.ID == id {
			return c.Clone(), true
		}
	}
	return nil, false
}

func cloneCircles(in []*domain.Circle) []*domain.Circle {
	out := make([]*domain.Circle, 0, len(in))
	for _, c := range in {
		out = append(out, c.Clone())
	}
	return out
}
