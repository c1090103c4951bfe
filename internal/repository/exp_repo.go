package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/innerlight/circles-backend/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ExpRepository handles experience point data access
type ExpRepository interface {
	// GetSummary returns exp summary for a user
	GetSummary(ctx context.Context, userID string) (*domain.ExpSummary, error)
	// GetHistory returns exp history with pagination
	GetHistory(ctx context.Context, userID string, page, limit int) ([]*domain.ExpLog, int64, error)
	// AddExp adds experience points to a user and records the grant
	AddExp(ctx context.Context, grant domain.RewardGrant) (*domain.ExpAccount, error)
}

type expRepository struct {
	db *gorm.DB
}

// NewExpRepository creates a new ExpRepository
func NewExpRepository(db *gorm.DB) ExpRepository {
	return &expRepository{db: db}
}

// Level thresholds (cumulative exp required for each level)
var levelThresholds = []int{
	0,     // Level 1
	100,   // Level 2
	300,   // Level 3
	600,   // Level 4
	1000,  // Level 5
	1500,  // Level 6
	2100,  // Level 7
	2800,  // Level 8
	3600,  // Level 9
	4500,  // Level 10
	5500,  // Level 11
	6600,  // Level 12
	7800,  // Level 13
	9100,  // Level 14
	10500, // Level 15
}

// CalculateLevelInfo derives level progress from a cumulative total
func CalculateLevelInfo(totalExp int) domain.ExpSummary {
	s := domain.ExpSummary{TotalExp: totalExp, CurrentLevel: 1}
	for i, threshold := range levelThresholds {
		if totalExp >= threshold {
			s.CurrentLevel = i + 1
		} else {
			break
		}
	}

	if s.CurrentLevel >= len(levelThresholds) {
		// Max level reached
		s.NextLevel = s.CurrentLevel
		s.NextLevelExp = levelThresholds[len(levelThresholds)-1]
		s.ExpToNext = 0
		s.Progress = 100
		return s
	}

	s.NextLevel = s.CurrentLevel + 1
	s.NextLevelExp = levelThresholds[s.CurrentLevel]
	prevLevelExp := levelThresholds[s.CurrentLevel-1]
	s.ExpToNext = s.NextLevelExp - totalExp
	if levelRange := s.NextLevelExp - prevLevelExp; levelRange > 0 {
		s.Progress = (totalExp - prevLevelExp) * 100 / levelRange
	}
	return s
}

func (r *expRepository) GetSummary(ctx context.Context, userID string) (*domain.ExpSummary, error) {
	var account domain.ExpAccount
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&account).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	// users without grants yet start at zero
	summary := CalculateLevelInfo(account.TotalExp)
	return &summary, nil
}

func (r *expRepository) GetHistory(ctx context.Context, userID string, page, limit int) ([]*domain.ExpLog, int64, error) {
	db := r.db.WithContext(ctx)

	var total int64
	if err := db.Model(&domain.ExpLog{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	var logs []*domain.ExpLog
	if err := db.Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Offset(offset).
		Limit(limit).
		Find(&logs).Error; err != nil {
		return nil, 0, err
	}

	return logs, total, nil
}

func (r *expRepository) AddExp(ctx context.Context, grant domain.RewardGrant) (*domain.ExpAccount, error) {
	if grant.UserID == "" {
		return nil, fmt.Errorf("add exp: empty user id")
	}

	var account domain.ExpAccount
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 계정이 없으면 생성
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&domain.ExpAccount{UserID: grant.UserID, Level: 1}).Error; err != nil {
			return err
		}

		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ?", grant.UserID).
			First(&account).Error; err != nil {
			return err
		}

		account.TotalExp += grant.Amount
		if account.TotalExp < 0 {
			account.TotalExp = 0
		}
		account.Level = CalculateLevelInfo(account.TotalExp).CurrentLevel

		if err := tx.Model(&domain.ExpAccount{}).
			Where("user_id = ?", grant.UserID).
			Updates(map[string]interface{}{
				"total_exp":  account.TotalExp,
				"level":      account.Level,
				"updated_at": gorm.Expr("CURRENT_TIMESTAMP"),
			}).Error; err != nil {
			return err
		}

		// Insert exp log
		log := &domain.ExpLog{
			UserID:   grant.UserID,
			Point:    grant.Amount,
			Reason:   grant.Reason,
			Content:  grant.Content,
			RelTable: grant.RelTable,
			RelID:    grant.RelID,
		}
		return tx.Create(log).Error
	})
	if err != nil {
		return nil, err
	}
	return &account, nil
}
