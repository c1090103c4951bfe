package domain

import (
	"time"

	"gorm.io/datatypes"
)

// Message types. Anything other than text is a "rich" message for rewards.
const (
	MessageTypeText       = "text"
	MessageTypeFrequency  = "frequency"
	MessageTypeMeditation = "meditation"
	MessageTypeSystem     = "system"
)

// DefaultVibrationLevel is stamped on every outgoing message
const DefaultVibrationLevel = 7

// Reaction is a single emoji reaction on a message
type Reaction struct {
	CreatedAt time.Time `json:"created_at"`
	UserID    string    `json:"user_id"`
	Emoji     string    `json:"emoji"`
}

// Message is a chat message inside a circle (circle_messages table)
type Message struct {
	CreatedAt      time.Time                     `gorm:"column:created_at;index" json:"created_at"`
	UpdatedAt      time.Time                     `gorm:"column:updated_at" json:"updated_at"`
	ID             string                        `gorm:"column:id;primaryKey;size:36" json:"id"`
	CircleID       string                        `gorm:"column:circle_id;size:36;index" json:"circle_id"`
	UserID         string                        `gorm:"column:user_id;size:64;index" json:"user_id"`
	Content        string                        `gorm:"column:content;type:text" json:"content"`
	MessageType    string                        `gorm:"column:message_type;size:20" json:"message_type"`
	Energy         string                        `gorm:"column:energy;size:50" json:"energy"`
	Reactions      datatypes.JSONSlice[Reaction] `gorm:"column:reactions;type:json" json:"reactions,omitempty"`
	VibrationLevel int                           `gorm:"column:vibration_level" json:"vibration_level"`
	IsEdited       bool                          `gorm:"column:is_edited;default:false" json:"is_edited"`
}

func (Message) TableName() string {
	return "circle_messages"
}

// Clone deep-copies the message including reactions
func (m *Message) Clone() *Message {
	if m == nil {
		return nil
	}
	cp := *m
	if m.Reactions != nil {
		cp.Reactions = append(datatypes.JSONSlice[Reaction]{}, m.Reactions...)
	}
	return &cp
}

// IsRich reports whether the message earns the non-text reward
func (m *Message) IsRich() bool {
	return m.MessageType != MessageTypeText
}

// SendMessageRequest represents a send message request
type SendMessageRequest struct {
	Content     string `json:"content" binding:"required,max=4000"`
	MessageType string `json:"message_type" binding:"omitempty,max=20"`
}

// SendFrequencyRequest shares a healing frequency with the circle
type SendFrequencyRequest struct {
	Frequency string `json:"frequency" binding:"required,max=40"`
}

// StartMeditationRequest starts a group meditation
type StartMeditationRequest struct {
	DurationMinutes int `json:"duration_minutes" binding:"omitempty,min=1,max=180"`
}

// SetActiveCircleRequest selects a circle; a null circle_id clears the selection
type SetActiveCircleRequest struct {
	CircleID *string `json:"circle_id"`
}

// SetEnergyRequest updates the session energy label
type SetEnergyRequest struct {
	Energy string `json:"energy" binding:"required,energy"`
}

// SessionResponse is the per-actor session snapshot
type SessionResponse struct {
	ActiveCircle *Circle    `json:"active_circle"`
	UserID       string     `json:"user_id"`
	Energy       string     `json:"energy"`
	Messages     []*Message `json:"messages"`
}
