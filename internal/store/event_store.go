package store

import (
	"sort"
	"sync"
	"time"

	"github.com/innerlight/circles-backend/internal/domain"
)

// EventStore holds scheduled events shared by every session.
// Every mutation swaps in a fresh copy of the touched event.
type EventStore struct {
	events []*domain.Event
	mu     sync.RWMutex
}

// NewEventStore creates a store with initial events (e.g. loaded from DB)
func NewEventStore(initial []*domain.Event) *EventStore {
	s := &EventStore{}
	for _, e := range initial {
		s.events = append(s.events, e.Clone())
	}
	sort.SliceStable(s.events, func(i, j int) bool {
		return s.events[i].CreatedAt.Before(s.events[j].CreatedAt)
	})
	return s
}

// List returns all events in creation order
func (s *EventStore) List() []*domain.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*domain.Event, 0, len(s.events))
	for _, e := range s.events {
		out = append(out, e.Clone())
	}
	return out
}

// Get finds an event by id
func (s *EventStore) Get(id string) (*domain.Event, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexOf(id); i >= 0 {
		return s.events[i].Clone(), true
	}
	return nil, false
}

// Add appends a new event
func (s *EventStore) Add(e *domain.Event) *domain.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := e.Clone()
	s.events = append(s.events, stored)
	return stored.Clone()
}

// Join appends userID to the participant list unless already present.
// joined is false when the user was already a participant or the event is unknown.
func (s *EventStore) Join(id, userID string, now time.Time) (event *domain.Event, joined, found bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return nil, false, false
	}
	current := s.events[i]
	if current.HasParticipant(userID) {
		return current.Clone(), false, true
	}

	next := current.Clone()
	next.Participants = append(next.Participants, domain.Participant{
		UserID:   userID,
		JoinedAt: now,
		Status:   domain.ParticipantStatusJoined,
	})
	next.UpdatedAt = now
	s.events[i] = next
	return next.Clone(), true, true
}

// Leave removes userID from the participant list.
// removed is false when the user was not a participant or the event is unknown.
func (s *EventStore) Leave(id, userID string, now time.Time) (event *domain.Event, removed, found bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return nil, false, false
	}
	current := s.events[i]
	if !current.HasParticipant(userID) {
		return current.Clone(), false, true
	}

	next := current.Clone()
	kept := next.Participants[:0]
	for _, p := range next.Participants {
		if p.UserID != userID {
			kept = append(kept, p)
		}
	}
	next.Participants = kept
	next.UpdatedAt = now
	s.events[i] = next
	return next.Clone(), true, true
}

// indexOf caller must hold mu
func (s *EventStore) indexOf(id string) int {
	for i, e := range s.events {
		if e.ID == id {
			return i
		}
	}
	return -1
}
