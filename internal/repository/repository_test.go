package repository

import (
	"context"
	"testing"
	"time"

	"github.com/innerlight/circles-backend/internal/domain"
	"github.com/innerlight/circles-backend/internal/migration"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, migration.Run(db))
	return db
}

func TestCircleRepository_ListOrdered(t *testing.T) {
	repo := NewCircleRepository(newTestDB(t))

	circles, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, circles, len(migration.DefaultCircles()))
	for i, c := range circles {
		assert.Equal(t, migration.DefaultCircles()[i].ID, c.ID)
	}

	c, err := repo.FindByID(context.Background(), "2")
	require.NoError(t, err)
	assert.Equal(t, "Starseed Gathering", c.Name)

	_, err = repo.FindByID(context.Background(), "404")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestMessageRepository_CreateAndPage(t *testing.T) {
	repo := NewMessageRepository(newTestDB(t))
	ctx := context.Background()
	base := time.Now().Add(-time.Hour)

	for i, content := range []string{"one", "two", "three"} {
		require.NoError(t, repo.Create(ctx, &domain.Message{
			ID:          content,
			CircleID:    "2",
			UserID:      "u1",
			Content:     content,
			MessageType: domain.MessageTypeText,
			CreatedAt:   base.Add(time.Duration(i) * time.Minute),
		}))
	}
	require.NoError(t, repo.Create(ctx, &domain.Message{ID: "other", CircleID: "3", Content: "elsewhere"}))

	msgs, total, err := repo.FindByCircle(ctx, "2", 1, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, msgs, 2)
	assert.Equal(t, "three", msgs[0].Content)
	assert.Equal(t, "two", msgs[1].Content)

	msgs, _, err = repo.FindByCircle(ctx, "2", 2, 2)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "one", msgs[0].Content)
}

func TestEventRepository_RoundTrip(t *testing.T) {
	repo := NewEventRepository(newTestDB(t))
	ctx := context.Background()

	ev := &domain.Event{
		ID:           "e1",
		Title:        "Full Moon Meditation",
		EventType:    "meditation",
		HostID:       "u1",
		Status:       domain.EventStatusScheduled,
		StartTime:    time.Now().Add(time.Hour),
		Participants: datatypes.JSONSlice[domain.Participant]{},
		Settings:     datatypes.NewJSONType(&domain.EventSettings{IsPublic: true, MaxParticipants: 12}),
	}
	require.NoError(t, repo.Create(ctx, ev))

	ev.Participants = append(ev.Participants, domain.Participant{UserID: "u2", JoinedAt: time.Now(), Status: domain.ParticipantStatusJoined})
	ev.UpdatedAt = time.Now()
	require.NoError(t, repo.SaveParticipants(ctx, ev))

	got, err := repo.FindByID(ctx, "e1")
	require.NoError(t, err)
	require.Len(t, got.Participants, 1)
	assert.Equal(t, "u2", got.Participants[0].UserID)
	require.NotNil(t, got.Settings.Data())
	assert.Equal(t, 12, got.Settings.Data().MaxParticipants)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	err = repo.SaveParticipants(ctx, &domain.Event{ID: "missing"})
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestExpRepository_AddExpAndLevels(t *testing.T) {
	repo := NewExpRepository(newTestDB(t))
	ctx := context.Background()

	summary, err := repo.GetSummary(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 0, summary.TotalExp)
	assert.Equal(t, 1, summary.CurrentLevel)

	account, err := repo.AddExp(ctx, domain.RewardGrant{UserID: "u1", Amount: 50, Reason: domain.RewardReasonEventCreated, RelTable: "circle_events", RelID: "e1"})
	require.NoError(t, err)
	assert.Equal(t, 50, account.TotalExp)
	assert.Equal(t, 1, account.Level)

	account, err = repo.AddExp(ctx, domain.RewardGrant{UserID: "u1", Amount: 60, Reason: domain.RewardReasonEventJoined})
	require.NoError(t, err)
	assert.Equal(t, 110, account.TotalExp)
	assert.Equal(t, 2, account.Level)

	summary, err = repo.GetSummary(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 110, summary.TotalExp)
	assert.Equal(t, 2, summary.CurrentLevel)

	logs, total, err := repo.GetHistory(ctx, "u1", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, logs, 2)
	assert.Equal(t, 60, logs[0].Point)

	_, err = repo.AddExp(ctx, domain.RewardGrant{Amount: 5})
	assert.Error(t, err)
}

func TestCalculateLevelInfo(t *testing.T) {
	tests := []struct {
		name     string
		total    int
		level    int
		next     int
		progress int
	}{
		{"zero", 0, 1, 2, 0},
		{"half way to 2", 50, 1, 2, 50},
		{"exactly level 2", 100, 2, 3, 0},
		{"level 3", 450, 3, 4, 50},
		{"max level", 20000, 15, 15, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := CalculateLevelInfo(tt.total)
			assert.Equal(t, tt.level, s.CurrentLevel)
			assert.Equal(t, tt.next, s.NextLevel)
			assert.Equal(t, tt.progress, s.Progress)
		})
	}
}
