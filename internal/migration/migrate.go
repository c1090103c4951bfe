package migration

import (
	"time"

	"github.com/innerlight/circles-backend/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Models every table owned by the service, in migration order
func Models() []interface{} {
	return []interface{}{
		&domain.Circle{},
		&domain.Message{},
		&domain.Event{},
		&domain.ExpAccount{},
		&domain.ExpLog{},
	}
}

// Run executes AutoMigrate for all tables and seeds default circles if empty.
func Run(db *gorm.DB) error {
	// 1. AutoMigrate - 테이블 없으면 생성, 있으면 skip
	if err := db.AutoMigrate(Models()...); err != nil {
		return err
	}

	// 2. Seed - circles 테이블이 비어있을 때만 기본 서클 삽입
	var count int64
	if err := db.Model(&domain.Circle{}).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return SeedCircles(db)
	}
	return nil
}

// SeedCircles inserts the default circles, skipping ids that already exist
func SeedCircles(db *gorm.DB) error {
	return db.Clauses(clause.OnConflict{DoNothing: true}).Create(DefaultCircles()).Error
}

// DefaultCircles the built-in circle set
func DefaultCircles() []*domain.Circle {
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return []*domain.Circle{
		{ID: "1", Name: "Heart Coherence", Description: "Daily practice of opening the heart and sharing gratitude.", Category: "healing", Color: "#f472b6", CreatedBy: "system", LoveLevel: 92, AscensionLevel: 7, MemberCount: 144, OnlineCount: 12, SortOrder: 1, CreatedAt: created},
		{ID: "2", Name: "Starseed Gathering", Description: "A home for cosmic souls remembering their origins.", Category: "cosmic", Color: "#818cf8", CreatedBy: "system", LoveLevel: 88, AscensionLevel: 9, MemberCount: 333, OnlineCount: 27, SortOrder: 2, CreatedAt: created},
		{ID: "3", Name: "Sound Healing Sanctuary", Description: "Frequencies, bowls and mantras for deep restoration.", Category: "sound", Color: "#34d399", CreatedBy: "system", LoveLevel: 85, AscensionLevel: 6, MemberCount: 528, OnlineCount: 41, SortOrder: 3, CreatedAt: created},
		{ID: "4", Name: "Dream Weavers", Description: "Lucid dreaming, dream journals and astral exploration.", Category: "dreams", Color: "#a78bfa", CreatedBy: "system", LoveLevel: 79, AscensionLevel: 5, MemberCount: 111, OnlineCount: 8, SortOrder: 4, CreatedAt: created},
		{ID: "5", Name: "Inner Circle of Light", Description: "Invitation-only circle for dedicated facilitators.", Category: "leadership", Color: "#fbbf24", CreatedBy: "system", LoveLevel: 97, AscensionLevel: 11, MemberCount: 22, OnlineCount: 3, SortOrder: 5, IsPrivate: true, CreatedAt: created},
	}
}
