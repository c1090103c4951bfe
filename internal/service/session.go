package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/innerlight/circles-backend/internal/common"
	"github.com/innerlight/circles-backend/internal/domain"
	"github.com/innerlight/circles-backend/internal/eventbus"
	"github.com/innerlight/circles-backend/internal/store"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
)

const defaultMeditationMinutes = 10

// MessageArchiver persists sent messages
type MessageArchiver interface {
	Create(ctx context.Context, msg *domain.Message) error
}

// EventWriter persists event changes
type EventWriter interface {
	Create(ctx context.Context, event *domain.Event) error
	SaveParticipants(ctx context.Context, event *domain.Event) error
}

// SessionDeps collaborators of a Session. Archive, Writer and Bus may be nil.
type SessionDeps struct {
	Actor   ActorProvider
	Energy  EnergyProvider
	Rewards RewardGranter
	Circles *store.CircleStore
	Events  *store.EventStore
	Archive MessageArchiver
	Writer  EventWriter
	Bus     *eventbus.Bus
	Now     func() time.Time
	NewID   func() string
	Logger  zerolog.Logger
	Policy  RewardPolicy
}

// Session is one actor's view: the active circle and its message collection,
// plus access to the shared circle and event stores.
type Session struct {
	deps     SessionDeps
	messages *store.MessageStore
	active   *domain.Circle
	mu       sync.RWMutex
}

// NewSession wires a session. Missing required collaborators are a programming error.
func NewSession(deps SessionDeps) *Session {
	switch {
	case deps.Actor == nil:
		panic("service.NewSession: Actor provider is required")
	case deps.Energy == nil:
		panic("service.NewSession: Energy provider is required")
	case deps.Rewards == nil:
		panic("service.NewSession: Rewards granter is required")
	case deps.Circles == nil || deps.Events == nil:
		panic("service.NewSession: circle and event stores are required")
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.NewID == nil {
		deps.NewID = uuid.NewString
	}
	return &Session{
		deps:     deps,
		messages: store.NewMessageStore(),
	}
}

// ActiveCircle the currently selected circle, nil when none
func (s *Session) ActiveCircle() *domain.Circle {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active.Clone()
}

// SetActiveCircle replaces the selection and always reseeds the message view
// with the welcome set (empty for nil).
func (s *Session) SetActiveCircle(ctx context.Context, circle *domain.Circle) []*domain.Message {
	s.mu.Lock()
	s.active = circle.Clone()
	msgs := s.messages.Reseed(s.active, s.deps.Now())
	s.mu.Unlock()

	var circleID string
	if circle != nil {
		circleID = circle.ID
	}
	s.deps.Bus.Publish(eventbus.TopicCircleSelected, s.deps.Actor.CurrentUserID(ctx), map[string]interface{}{
		"circle_id": circleID,
		"messages":  msgs,
	})
	return msgs
}

// SelectCircle resolves id against the circle store; nil clears the selection
func (s *Session) SelectCircle(ctx context.Context, id *string) ([]*domain.Message, error) {
	if id == nil {
		return s.SetActiveCircle(ctx, nil), nil
	}
	circle, ok := s.deps.Circles.Get(*id)
	if !ok {
		return nil, fmt.Errorf("select circle %q: %w", *id, common.ErrCircleNotFound)
	}
	return s.SetActiveCircle(ctx, circle), nil
}

// Messages snapshot of the message view
func (s *Session) Messages() []*domain.Message {
	return s.messages.List()
}

// SendMessage appends a message to the active circle. Returns nil without an
// active circle or actor. messageType defaults to text.
func (s *Session) SendMessage(ctx context.Context, content, messageType string) (*domain.Message, error) {
	userID := s.deps.Actor.CurrentUserID(ctx)
	if userID == "" {
		return nil, nil
	}
	if messageType == "" {
		messageType = domain.MessageTypeText
	}
	// providers may call back into the session, so resolve before locking
	energy := s.deps.Energy.CurrentEnergy(ctx)

	// the write lock spans the read of s.active and the append, so a
	// concurrent SetActiveCircle cannot reseed the view in between
	s.mu.Lock()
	active := s.active
	if active == nil {
		s.mu.Unlock()
		return nil, nil
	}
	now := s.deps.Now()
	msg := &domain.Message{
		ID:             s.deps.NewID(),
		CircleID:       active.ID,
		UserID:         userID,
		Content:        content,
		MessageType:    messageType,
		Energy:         energy,
		VibrationLevel: domain.DefaultVibrationLevel,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	s.messages.Append(msg)
	s.mu.Unlock()

	if s.deps.Archive != nil {
		if err := s.deps.Archive.Create(ctx, msg.Clone()); err != nil {
			s.deps.Logger.Warn().Err(err).Str("message_id", msg.ID).Msg("message archive failed")
		}
	}

	amount, reason := s.deps.Policy.messageReward(messageType)
	s.grant(ctx, domain.RewardGrant{
		UserID:   userID,
		Amount:   amount,
		Reason:   reason,
		Content:  fmt.Sprintf("%s message in circle %s", messageType, active.ID),
		RelTable: domain.Message{}.TableName(),
		RelID:    msg.ID,
	})

	s.deps.Bus.Publish(eventbus.TopicMessageSent, userID, msg.Clone())
	return msg, nil
}

// SendFrequency shares a healing frequency as a frequency message
func (s *Session) SendFrequency(ctx context.Context, frequency string) (*domain.Message, error) {
	return s.SendMessage(ctx, FormatFrequency(frequency), domain.MessageTypeFrequency)
}

// StartGroupMeditation announces a meditation and grants the meditation bonus
func (s *Session) StartGroupMeditation(ctx context.Context, minutes int) (*domain.Message, error) {
	if minutes <= 0 {
		minutes = defaultMeditationMinutes
	}
	msg, err := s.SendMessage(ctx, FormatMeditation(minutes), domain.MessageTypeMeditation)
	if err != nil || msg == nil {
		return msg, err
	}
	s.grant(ctx, domain.RewardGrant{
		UserID:   msg.UserID,
		Amount:   s.deps.Policy.Meditation,
		Reason:   domain.RewardReasonMeditation,
		Content:  fmt.Sprintf("%d-minute group meditation", minutes),
		RelTable: domain.Message{}.TableName(),
		RelID:    msg.ID,
	})
	return msg, nil
}

// FormatFrequency content line for a frequency share; bare numbers get Hz
func FormatFrequency(frequency string) string {
	frequency = strings.TrimSpace(frequency)
	if _, err := strconv.ParseFloat(frequency, 64); err == nil {
		frequency += "Hz"
	}
	return fmt.Sprintf("Sending %s healing frequency to the circle", frequency)
}

// FormatMeditation content line for a meditation announcement
func FormatMeditation(minutes int) string {
	return fmt.Sprintf("Starting a %d-minute group meditation. Breathe with me.", minutes)
}

// CreateEvent schedules an event hosted by the actor and returns its id.
// Without an actor it returns "".
func (s *Session) CreateEvent(ctx context.Context, req *domain.CreateEventRequest) (string, error) {
	userID := s.deps.Actor.CurrentUserID(ctx)
	if userID == "" {
		return "", nil
	}
	if req == nil {
		req = &domain.CreateEventRequest{}
	}

	now := s.deps.Now()
	event := &domain.Event{
		ID:              s.deps.NewID(),
		Title:           req.Title,
		Description:     req.Description,
		EventType:       req.EventType,
		CircleID:        req.CircleID,
		HostID:          userID,
		DurationMinutes: req.DurationMinutes,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if event.Title == "" {
		event.Title = domain.DefaultEventTitle
	}
	if event.EventType == "" {
		event.EventType = domain.DefaultEventType
	}
	event.StartTime = now
	if req.StartTime != nil && !req.StartTime.IsZero() {
		event.StartTime = *req.StartTime
	}
	if req.Settings != nil {
		settings := *req.Settings
		event.Settings = datatypes.NewJSONType(&settings)
	}
	// always scheduled with nobody joined yet
	event.Status = domain.EventStatusScheduled
	event.Participants = datatypes.JSONSlice[domain.Participant]{}

	stored := s.deps.Events.Add(event)

	if s.deps.Writer != nil {
		if err := s.deps.Writer.Create(ctx, stored.Clone()); err != nil {
			s.deps.Logger.Warn().Err(err).Str("event_id", stored.ID).Msg("event persist failed")
		}
	}

	s.grant(ctx, domain.RewardGrant{
		UserID:   userID,
		Amount:   s.deps.Policy.EventCreated,
		Reason:   domain.RewardReasonEventCreated,
		Content:  "created event " + stored.Title,
		RelTable: domain.Event{}.TableName(),
		RelID:    stored.ID,
	})

	s.deps.Bus.Publish(eventbus.TopicEventCreated, userID, stored)
	return stored.ID, nil
}

// JoinEvent adds the actor to the event once. The join reward follows the
// policy: by default it is granted even when the actor had already joined.
func (s *Session) JoinEvent(ctx context.Context, id string) (*domain.EventActionResponse, error) {
	userID := s.deps.Actor.CurrentUserID(ctx)
	if userID == "" {
		return nil, nil
	}

	event, joined, found := s.deps.Events.Join(id, userID, s.deps.Now())
	if !found {
		return nil, fmt.Errorf("join event %q: %w", id, common.ErrEventNotFound)
	}

	if joined {
		s.persistParticipants(ctx, event)
		s.deps.Bus.Publish(eventbus.TopicEventJoined, userID, event)
	}

	if joined || s.deps.Policy.GrantOnDuplicateJoin {
		s.grant(ctx, domain.RewardGrant{
			UserID:   userID,
			Amount:   s.deps.Policy.EventJoined,
			Reason:   domain.RewardReasonEventJoined,
			Content:  "joined event " + event.Title,
			RelTable: domain.Event{}.TableName(),
			RelID:    event.ID,
		})
	}

	return &domain.EventActionResponse{Event: event, Joined: joined}, nil
}

// LeaveEvent removes the actor from the event. Not being a participant is fine.
func (s *Session) LeaveEvent(ctx context.Context, id string) (*domain.EventActionResponse, error) {
	userID := s.deps.Actor.CurrentUserID(ctx)
	if userID == "" {
		return nil, nil
	}

	event, removed, found := s.deps.Events.Leave(id, userID, s.deps.Now())
	if !found {
		return nil, fmt.Errorf("leave event %q: %w", id, common.ErrEventNotFound)
	}

	if removed {
		s.persistParticipants(ctx, event)
		s.deps.Bus.Publish(eventbus.TopicEventLeft, userID, event)
	}
	return &domain.EventActionResponse{Event: event, Joined: false}, nil
}

// Events snapshot of the shared event store
func (s *Session) Events() []*domain.Event {
	return s.deps.Events.List()
}

// SetEnergy updates the stored energy label. False for an invalid label or a read-only provider.
func (s *Session) SetEnergy(label string) bool {
	if !ValidEnergy(label) {
		return false
	}
	setter, ok := s.deps.Energy.(interface{ Set(string) })
	if !ok {
		return false
	}
	setter.Set(label)
	return true
}

// Snapshot the session as seen by the actor
func (s *Session) Snapshot(ctx context.Context) *domain.SessionResponse {
	return &domain.SessionResponse{
		ActiveCircle: s.ActiveCircle(),
		UserID:       s.deps.Actor.CurrentUserID(ctx),
		Energy:       s.deps.Energy.CurrentEnergy(ctx),
		Messages:     s.messages.List(),
	}
}

func (s *Session) persistParticipants(ctx context.Context, event *domain.Event) {
	if s.deps.Writer == nil {
		return
	}
	if err := s.deps.Writer.SaveParticipants(ctx, event); err != nil {
		s.deps.Logger.Warn().Err(err).Str("event_id", event.ID).Msg("participant persist failed")
	}
}

// grant fire-and-forget reward side effect
func (s *Session) grant(ctx context.Context, grant domain.RewardGrant) {
	if grant.Amount <= 0 {
		return
	}
	if err := s.deps.Rewards.Grant(ctx, grant); err != nil {
		s.deps.Logger.Warn().Err(err).
			Str("user_id", grant.UserID).
			Str("reason", grant.Reason).
			Int("amount", grant.Amount).
			Msg("reward grant failed")
	}
}
