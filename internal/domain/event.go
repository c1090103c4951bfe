package domain

import (
	"time"

	"gorm.io/datatypes"
)

// Event statuses. Only scheduled is assigned today.
const (
	EventStatusScheduled = "scheduled"
	EventStatusActive    = "active"
	EventStatusCompleted = "completed"
	EventStatusCancelled = "cancelled"
)

const (
	ParticipantStatusJoined = "joined"

	DefaultEventTitle = "New Gathering"
	DefaultEventType  = "meditation"
)

// Participant pairs a user with the time they joined
type Participant struct {
	JoinedAt time.Time `json:"joined_at"`
	UserID   string    `json:"user_id"`
	Status   string    `json:"status"`
}

// EventSettings optional per-event knobs
type EventSettings struct {
	MaxParticipants int  `json:"max_participants,omitempty"`
	ReminderMinutes int  `json:"reminder_minutes,omitempty"`
	IsPublic        bool `json:"is_public"`
	AllowChat       bool `json:"allow_chat"`
	RecordSession   bool `json:"record_session"`
}

// Event is a scheduled gathering (circle_events table)
type Event struct {
	StartTime       time.Time                          `gorm:"column:start_time;index" json:"start_time"`
	CreatedAt       time.Time                          `gorm:"column:created_at" json:"created_at"`
	UpdatedAt       time.Time                          `gorm:"column:updated_at" json:"updated_at"`
	Settings        datatypes.JSONType[*EventSettings] `gorm:"column:settings;type:json" json:"settings"`
	ID              string                             `gorm:"column:id;primaryKey;size:36" json:"id"`
	Title           string                             `gorm:"column:title;size:200;not null" json:"title"`
	Description     string                             `gorm:"column:description;type:text" json:"description"`
	EventType       string                             `gorm:"column:event_type;size:30" json:"event_type"`
	CircleID        string                             `gorm:"column:circle_id;size:36;index" json:"circle_id,omitempty"`
	HostID          string                             `gorm:"column:host_id;size:64;index" json:"host_id"`
	Status          string                             `gorm:"column:status;size:20;index" json:"status"`
	Participants    datatypes.JSONSlice[Participant]   `gorm:"column:participants;type:json" json:"participants"`
	DurationMinutes int                                `gorm:"column:duration_minutes" json:"duration_minutes"`
}

func (Event) TableName() string {
	return "circle_events"
}

// Clone deep-copies the event so callers can't mutate store state
func (e *Event) Clone() *Event {
	if e == nil {
		return nil
	}
	cp := *e
	cp.Participants = append(datatypes.JSONSlice[Participant]{}, e.Participants...)
	if s := e.Settings.Data(); s != nil {
		sc := *s
		cp.Settings = datatypes.NewJSONType(&sc)
	}
	return &cp
}

// HasParticipant reports whether userID already joined
func (e *Event) HasParticipant(userID string) bool {
	for _, p := range e.Participants {
		if p.UserID == userID {
			return true
		}
	}
	return false
}

// CreateEventRequest is the partial event supplied by the caller.
// Status and participants are not accepted; new events always start scheduled and empty.
type CreateEventRequest struct {
	StartTime       *time.Time     `json:"start_time"`
	Settings        *EventSettings `json:"settings"`
	Title           string         `json:"title" binding:"omitempty,max=200"`
	Description     string         `json:"description" binding:"omitempty,max=4000"`
	EventType       string         `json:"event_type" binding:"omitempty,max=30"`
	CircleID        string         `json:"circle_id" binding:"omitempty,max=36"`
	DurationMinutes int            `json:"duration_minutes" binding:"omitempty,min=0,max=1440"`
}

// EventActionResponse result of join/leave
type EventActionResponse struct {
	Event  *Event `json:"event"`
	Joined bool   `json:"joined"`
}
