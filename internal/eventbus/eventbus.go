package eventbus

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Store change topics
const (
	TopicCircleSelected = "circle.selected"
	TopicCirclesLoaded  = "circles.loaded"
	TopicMessageSent    = "message.sent"
	TopicEventCreated   = "event.created"
	TopicEventJoined    = "event.joined"
	TopicEventLeft      = "event.left"
	TopicRewardGranted  = "reward.granted"

	// TopicAll receives every published event
	TopicAll = "*"
)

// Event a state change notification
type Event struct {
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
	Topic     string      `json:"topic"`
	UserID    string      `json:"user_id,omitempty"` // acting user, empty for system changes
}

// Handler receives published events
type Handler func(event Event)

type subscription struct {
	name    string
	handler Handler
}

// Bus publish/subscribe observer list
type Bus struct {
	subscribers map[string][]subscription // topic -> handlers
	mu          sync.RWMutex
	logger      zerolog.Logger
}

// New creates an empty bus
func New(logger zerolog.Logger) *Bus {
	return &Bus{
		subscribers: make(map[string][]subscription),
		logger:      logger,
	}
}

// Subscribe registers handler for topic under name
func (b *Bus) Subscribe(name, topic string, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[topic] = append(b.subscribers[topic], subscription{
		name:    name,
		handler: handler,
	})
	b.logger.Debug().Str("subscriber", name).Str("topic", topic).Msg("subscribed")
}

// Unsubscribe removes every subscription registered under name
func (b *Bus) Unsubscribe(name string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for topic, subs := range b.subscribers {
		var remaining []subscription
		for _, s := range subs {
			if s.name != name {
				remaining = append(remaining, s)
			}
		}
		if len(remaining) == 0 {
			delete(b.subscribers, topic)
		} else {
			b.subscribers[topic] = remaining
		}
	}
}

// Publish runs every handler for topic, then the TopicAll handlers, synchronously
func (b *Bus) Publish(topic, userID string, payload interface{}) {
	if b == nil {
		return
	}
	b.mu.RLock()
	subs := make([]subscription, 0, len(b.subscribers[topic])+len(b.subscribers[TopicAll]))
	subs = append(subs, b.subscribers[topic]...)
	if topic != TopicAll {
		subs = append(subs, b.subscribers[TopicAll]...)
	}
	b.mu.RUnlock()

	if len(subs) == 0 {
		return
	}

	event := Event{
		Topic:     topic,
		UserID:    userID,
		Payload:   payload,
		Timestamp: time.Now(),
	}

	for _, s := range subs {
		func() {
			defer func() {
				if r := recover(); r != nil {
					b.logger.Error().
						Str("topic", topic).
						Str("subscriber", s.name).
						Interface("panic", r).
						Msg("event handler panicked")
				}
			}()
			s.handler(event)
		}()
	}
}

// PublishAsync publishes on a new goroutine
func (b *Bus) PublishAsync(topic, userID string, payload interface{}) {
	go b.Publish(topic, userID, payload)
}

// GetSubscriptions topic to subscriber names
func (b *Bus) GetSubscriptions() map[string][]string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	result := make(map[string][]string)
	for topic, subs := range b.subscribers {
		for _, s := range subs {
			result[topic] = append(result[topic], s.name)
		}
	}
	return result
}
