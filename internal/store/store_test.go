package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/innerlight/circles-backend/internal/domain"
	"github.com/innerlight/circles-backend/internal/eventbus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubLister struct {
	circles []*domain.Circle
	err     error
}

func (l stubLister) List(_ context.Context) ([]*domain.Circle, error) {
	return l.circles, l.err
}

func seed() []*domain.Circle {
	return []*domain.Circle{
		{ID: "1", Name: "Heart Coherence"},
		{ID: "2", Name: "Starseeds"},
	}
}

func TestCircleStore_SnapshotIsIsolated(t *testing.T) {
	s := NewCircleStore(seed(), nil)

	list := s.List()
	list[0].Name = "mutated"

	c, ok := s.Get("1")
	require.True(t, ok)
	assert.Equal(t, "Heart Coherence", c.Name)
}

func TestCircleStore_Load(t *testing.T) {
	bus := eventbus.New(zerolog.Nop())
	var loaded interface{}
	bus.Subscribe("test", eventbus.TopicCirclesLoaded, func(e eventbus.Event) {
		loaded = e.Payload
	})

	s := NewCircleStore(seed(), bus)
	err := s.Load(context.Background(), stubLister{circles: []*domain.Circle{{ID: "9", Name: "Gaia"}}})
	require.NoError(t, err)

	snap := s.Snapshot()
	assert.False(t, snap.Loading)
	require.Len(t, snap.Circles, 1)
	assert.Equal(t, "9", snap.Circles[0].ID)
	assert.Equal(t, 1, loaded)
}

func TestCircleStore_LoadFailureKeepsSeed(t *testing.T) {
	s := NewCircleStore(seed(), nil)

	err := s.Load(context.Background(), stubLister{err: errors.New("db down")})
	assert.Error(t, err)
	assert.False(t, s.Loading())
	assert.Len(t, s.List(), 2)
}

func TestMessageStore_ReseedReplacesEverything(t *testing.T) {
	s := NewMessageStore()
	now := time.Now()

	s.Reseed(&domain.Circle{ID: "1"}, now)
	s.Append(&domain.Message{ID: "m1", CircleID: "1", Content: "hi"})
	s.Append(&domain.Message{ID: "m2", CircleID: "1", Content: "again"})
	require.Equal(t, 4, s.Len())

	msgs := s.Reseed(&domain.Circle{ID: "2"}, now)

	require.Len(t, msgs, 2)
	assert.Equal(t, 2, s.Len())
	assert.Equal(t, "2", s.CircleID())
	for _, m := range s.List() {
		assert.Equal(t, "2", m.CircleID)
	}
	assert.Equal(t, WelcomeMessages("2", now)[0].Content, msgs[0].Content)
	assert.Equal(t, WelcomeMessages("2", now)[1].Content, msgs[1].Content)
}

func TestMessageStore_ReseedNilClears(t *testing.T) {
	s := NewMessageStore()
	s.Reseed(&domain.Circle{ID: "1"}, time.Now())

	msgs := s.Reseed(nil, time.Now())

	assert.Empty(t, msgs)
	assert.Equal(t, 0, s.Len())
	assert.Equal(t, "", s.CircleID())
}

func TestMessageStore_EarlierSnapshotUnchanged(t *testing.T) {
	s := NewMessageStore()
	s.Reseed(&domain.Circle{ID: "1"}, time.Now())
	before := s.List()

	s.Append(&domain.Message{ID: "m1"})

	assert.Len(t, before, 2)
	assert.Len(t, s.List(), 3)
}

func newEvent(id string) *domain.Event {
	return &domain.Event{ID: id, Title: "Full Moon", Status: domain.EventStatusScheduled}
}

func TestEventStore_JoinIsIdempotent(t *testing.T) {
	s := NewEventStore(nil)
	s.Add(newEvent("e1"))
	now := time.Now()

	ev, joined, found := s.Join("e1", "u1", now)
	require.True(t, found)
	assert.True(t, joined)
	require.Len(t, ev.Participants, 1)
	assert.Equal(t, domain.ParticipantStatusJoined, ev.Participants[0].Status)

	ev, joined, found = s.Join("e1", "u1", now)
	require.True(t, found)
	assert.False(t, joined)
	assert.Len(t, ev.Participants, 1)
}

func TestEventStore_JoinUnknown(t *testing.T) {
	s := NewEventStore(nil)

	ev, joined, found := s.Join("missing", "u1", time.Now())
	assert.Nil(t, ev)
	assert.False(t, joined)
	assert.False(t, found)
}

func TestEventStore_Leave(t *testing.T) {
	s := NewEventStore(nil)
	s.Add(newEvent("e1"))
	now := time.Now()
	s.Join("e1", "u1", now)
	s.Join("e1", "u2", now)

	ev, removed, found := s.Leave("e1", "u1", now)
	require.True(t, found)
	assert.True(t, removed)
	require.Len(t, ev.Participants, 1)
	assert.Equal(t, "u2", ev.Participants[0].UserID)
}

func TestEventStore_LeaveNonParticipantUnchanged(t *testing.T) {
	s := NewEventStore(nil)
	s.Add(newEvent("e1"))
	s.Join("e1", "u1", time.Now())

	ev, removed, found := s.Leave("e1", "stranger", time.Now())
	require.True(t, found)
	assert.False(t, removed)
	require.Len(t, ev.Participants, 1)
	assert.Equal(t, "u1", ev.Participants[0].UserID)
}

func TestEventStore_SnapshotsAreImmutable(t *testing.T) {
	s := NewEventStore(nil)
	s.Add(newEvent("e1"))
	before, _ := s.Get("e1")

	s.Join("e1", "u1", time.Now())

	assert.Empty(t, before.Participants)
	after, _ := s.Get("e1")
	assert.Len(t, after.Participants, 1)
}

func TestEventStore_ListOrder(t *testing.T) {
	base := time.Now()
	late := &domain.Event{ID: "late", CreatedAt: base.Add(time.Hour)}
	early := &domain.Event{ID: "early", CreatedAt: base}

	s := NewEventStore([]*domain.Event{late, early})
	s.Add(&domain.Event{ID: "new", CreatedAt: base.Add(2 * time.Hour)})

	list := s.List()
	require.Len(t, list, 3)
	assert.Equal(t, []string{"early", "late", "new"}, []string{list[0].ID, list[1].ID, list[2].ID})
}
