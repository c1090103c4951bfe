package store

import (
	"fmt"
	"sync"
	"time"

	"github.com/innerlight/circles-backend/internal/domain"
)

// Welcome set authors
const (
	SystemUserID = "system"
	GuideUserID  = "guide"
)

// WelcomeMessages returns the fixed two-message seed shown when a circle is selected
func WelcomeMessages(circleID string, now time.Time) []*domain.Message {
	return []*domain.Message{
		{
			ID:             fmt.Sprintf("welcome-%s-1", circleID),
			CircleID:       circleID,
			UserID:         SystemUserID,
			Content:        "Welcome to the circle. Take a deep breath and set your intention for this space.",
			MessageType:    domain.MessageTypeSystem,
			Energy:         "welcoming",
			VibrationLevel: domain.DefaultVibrationLevel,
			CreatedAt:      now.Add(-time.Minute),
			UpdatedAt:      now.Add(-time.Minute),
		},
		{
			ID:             fmt.Sprintf("welcome-%s-2", circleID),
			CircleID:       circleID,
			UserID:         GuideUserID,
			Content:        "Share what is alive in you today. Every voice raises the vibration of the circle.",
			MessageType:    domain.MessageTypeText,
			Energy:         "loving",
			VibrationLevel: domain.DefaultVibrationLevel,
			CreatedAt:      now,
			UpdatedAt:      now,
		},
	}
}

// MessageStore holds the message view of one session's active circle
type MessageStore struct {
	circleID string
	messages []*domain.Message
	mu       sync.RWMutex
}

// NewMessageStore creates an empty store
func NewMessageStore() *MessageStore {
	return &MessageStore{}
}

// Reseed drops the current view and replaces it with the welcome set.
// A nil circle leaves the view empty.
func (s *MessageStore) Reseed(circle *domain.Circle, now time.Time) []*domain.Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	if circle == nil {
		s.circleID = ""
		s.messages = nil
		return []*domain.Message{}
	}

	s.circleID = circle.ID
	s.messages = WelcomeMessages(circle.ID, now)
	return cloneMessages(s.messages)
}

// Append adds a message to the end of the view
func (s *MessageStore) Append(msg *domain.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	// copy-on-write so earlier snapshots never see the new element
	next := make([]*domain.Message, len(s.messages), len(s.messages)+1)
	copy(next, s.messages)
	s.messages = append(next, msg.Clone())
}

// List returns a snapshot of the view
func (s *MessageStore) List() []*domain.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneMessages(s.messages)
}

// Len number of messages in the view
func (s *MessageStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.messages)
}

// CircleID the circle the view belongs to
func (s *MessageStore) CircleID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.circleID
}

func cloneMessages(in []*domain.Message) []*domain.Message {
	out := make([]*domain.Message, 0, len(in))
	for _, m := range in {
		out = append(out, m.Clone())
	}
	return out
}
