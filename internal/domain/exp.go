package domain

import "time"

// ExpAccount running XP total per user (exp_accounts table)
type ExpAccount struct {
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updated_at"`
	UserID    string    `gorm:"column:user_id;primaryKey;size:64" json:"user_id"`
	TotalExp  int       `gorm:"column:total_exp;default:0" json:"total_exp"`
	Level     int       `gorm:"column:level;default:1" json:"level"`
}

func (ExpAccount) TableName() string {
	return "exp_accounts"
}

// ExpLog a single reward grant (exp_logs table)
type ExpLog struct {
	CreatedAt time.Time `gorm:"column:created_at;index" json:"created_at"`
	UserID    string    `gorm:"column:user_id;size:64;index" json:"user_id"`
	Reason    string    `gorm:"column:reason;size:50" json:"reason"`
	Content   string    `gorm:"column:content;size:255" json:"content"`
	RelTable  string    `gorm:"column:rel_table;size:50" json:"rel_table,omitempty"`
	RelID     string    `gorm:"column:rel_id;size:64" json:"rel_id,omitempty"`
	ID        int64     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Point     int       `gorm:"column:point" json:"point"`
}

func (ExpLog) TableName() string {
	return "exp_logs"
}

// ExpSummary represents experience point summary statistics
type ExpSummary struct {
	TotalExp     int `json:"total_exp"`
	CurrentLevel int `json:"current_level"`
	NextLevel    int `json:"next_level"`
	NextLevelExp int `json:"next_level_exp"`
	ExpToNext    int `json:"exp_to_next"`
	Progress     int `json:"progress"` // percentage 0-100
}

// Reward reasons recorded on every grant
const (
	RewardReasonMessage      = "message"
	RewardReasonRichMessage  = "rich_message"
	RewardReasonMeditation   = "group_meditation"
	RewardReasonEventCreated = "event_created"
	RewardReasonEventJoined  = "event_joined"
)

// RewardGrant describes one reward side effect
type RewardGrant struct {
	UserID   string
	Reason   string
	Content  string
	RelTable string
	RelID    string
	Amount   int
}
