package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/innerlight/circles-backend/internal/eventbus"
	"github.com/innerlight/circles-backend/internal/handler"
	"github.com/innerlight/circles-backend/internal/middleware"
	"github.com/innerlight/circles-backend/internal/migration"
	"github.com/innerlight/circles-backend/internal/repository"
	"github.com/innerlight/circles-backend/internal/service"
	"github.com/innerlight/circles-backend/internal/store"
	"github.com/innerlight/circles-backend/pkg/jwt"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// CirclesAPISuite drives the HTTP surface over in-memory sqlite
type CirclesAPISuite struct {
	suite.Suite
	db         *gorm.DB
	router     *gin.Engine
	jwtManager *jwt.Manager
	sessions   *service.SessionRegistry
}

func TestCirclesAPISuite(t *testing.T) {
	suite.Run(t, new(CirclesAPISuite))
}

func (s *CirclesAPISuite) SetupSuite() {
	gin.SetMode(gin.TestMode)
	s.jwtManager = jwt.NewManager("test-secret-key-for-integration-tests", 900, 86400)
}

func (s *CirclesAPISuite) SetupTest() {
	// Use SQLite for tests (no external DB dependency)
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	s.Require().NoError(err)
	sqlDB, err := db.DB()
	s.Require().NoError(err)
	sqlDB.SetMaxOpenConns(1)
	s.Require().NoError(migration.Run(db))
	s.db = db

	ctx := context.Background()
	bus := eventbus.New(zerolog.Nop())

	circleRepo := repository.NewCircleRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	eventRepo := repository.NewEventRepository(db)
	expRepo := repository.NewExpRepository(db)

	circles := store.NewCircleStore(nil, bus)
	s.Require().NoError(circles.Load(ctx, circleRepo))
	events := store.NewEventStore(nil)

	rewards := service.NewRewardService(expRepo, nil, bus, zerolog.Nop())
	history := service.NewHistoryService(messageRepo, circles, nil, zerolog.Nop())
	s.sessions = service.NewSessionRegistry(service.RegistryOptions{
		Rewards: rewards,
		Circles: circles,
		Events:  events,
		Archive: history,
		Writer:  eventRepo,
		Bus:     bus,
		Logger:  zerolog.Nop(),
		Policy:  service.DefaultRewardPolicy(),
	})

	s.router = gin.New()
	Setup(s.router,
		handler.NewCircleHandler(circles, history),
		handler.NewSessionHandler(s.sessions),
		handler.NewEventHandler(events, s.sessions),
		handler.NewExpHandler(rewards),
		nil,
		s.jwtManager,
		nil,
		middleware.DefaultRateLimitConfig(),
	)
}

// --- helpers ---

type envelopeMeta struct {
	Total int64 `json:"total"`
}

type envelopeError struct {
	Code string `json:"code"`
}

type envelope struct {
	Data    json.RawMessage `json:"data"`
	Meta    *envelopeMeta   `json:"meta"`
	Error   *envelopeError  `json:"error"`
	Success bool            `json:"success"`
}

func (s *CirclesAPISuite) token(userID string) string {
	t, err := s.jwtManager.GenerateAccessToken(userID, userID, 1)
	s.Require().NoError(err)
	return t
}

func (s *CirclesAPISuite) do(method, path, userID string, body interface{}, headers ...string) (int, *envelope) {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set("Authorization", "Bearer "+s.token(userID))
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var env envelope
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w.Code, &env
}

func (s *CirclesAPISuite) decode(env *envelope, dest interface{}) {
	s.Require().NoError(json.Unmarshal(env.Data, dest))
}

func (s *CirclesAPISuite) selectCircle(userID, circleID string) {
	code, _ := s.do(http.MethodPut, "/api/v1/session/active-circle", userID, map[string]interface{}{"circle_id": circleID})
	s.Require().Equal(http.StatusOK, code)
}

// --- Circles ---

func (s *CirclesAPISuite) TestListCircles() {
	code, env := s.do(http.MethodGet, "/api/v1/circles", "", nil)
	s.Equal(http.StatusOK, code)
	s.True(env.Success)

	var data struct {
		Circles []struct {
			ID string `json:"id"`
		} `json:"circles"`
		Loading bool `json:"loading"`
	}
	s.decode(env, &data)
	s.Len(data.Circles, len(migration.DefaultCircles()))
	s.False(data.Loading)
}

func (s *CirclesAPISuite) TestGetCircle_NotFound() {
	code, env := s.do(http.MethodGet, "/api/v1/circles/nope", "", nil)
	s.Equal(http.StatusNotFound, code)
	s.Equal("NOT_FOUND", env.Error.Code)
}

// --- Session ---

func (s *CirclesAPISuite) TestSession_RequiresAuth() {
	code, _ := s.do(http.MethodGet, "/api/v1/session", "", nil)
	s.Equal(http.StatusUnauthorized, code)
}

func (s *CirclesAPISuite) TestSelectCircle_SeedsWelcome() {
	code, env := s.do(http.MethodPut, "/api/v1/session/active-circle", "u1", map[string]interface{}{"circle_id": "2"})
	s.Equal(http.StatusOK, code)

	var snap struct {
		ActiveCircle *struct {
			ID string `json:"id"`
		} `json:"active_circle"`
		Messages []struct {
			ID string `json:"id"`
		} `json:"messages"`
	}
	s.decode(env, &snap)
	s.Equal("2", snap.ActiveCircle.ID)
	s.Len(snap.Messages, 2)

	code, env = s.do(http.MethodPut, "/api/v1/session/active-circle", "u1", map[string]interface{}{"circle_id": nil})
	s.Equal(http.StatusOK, code)
	s.decode(env, &snap)
	s.Nil(snap.ActiveCircle)
	s.Empty(snap.Messages)

	code, _ = s.do(http.MethodPut, "/api/v1/session/active-circle", "u1", map[string]interface{}{"circle_id": "404"})
	s.Equal(http.StatusNotFound, code)
}

func (s *CirclesAPISuite) TestSendMessage_RewardsAndArchives() {
	s.selectCircle("u1", "2")

	code, env := s.do(http.MethodPost, "/api/v1/session/messages", "u1", map[string]string{"content": "hello"})
	s.Equal(http.StatusCreated, code)

	var msg struct {
		CircleID       string `json:"circle_id"`
		UserID         string `json:"user_id"`
		Content        string `json:"content"`
		MessageType    string `json:"message_type"`
		Energy         string `json:"energy"`
		VibrationLevel int    `json:"vibration_level"`
	}
	s.decode(env, &msg)
	s.Equal("2", msg.CircleID)
	s.Equal("u1", msg.UserID)
	s.Equal("text", msg.MessageType)
	s.Equal(service.DefaultEnergy, msg.Energy)
	s.Equal(7, msg.VibrationLevel)

	code, env = s.do(http.MethodGet, "/api/v1/my/exp", "u1", nil)
	s.Equal(http.StatusOK, code)
	var summary struct {
		TotalExp int `json:"total_exp"`
	}
	s.decode(env, &summary)
	s.Equal(5, summary.TotalExp)

	code, env = s.do(http.MethodGet, "/api/v1/circles/2/messages/history", "", nil)
	s.Equal(http.StatusOK, code)
	s.Equal(int64(1), env.Meta.Total)
}

func (s *CirclesAPISuite) TestSendMessage_WithoutCircleConflicts() {
	code, env := s.do(http.MethodPost, "/api/v1/session/messages", "u1", map[string]string{"content": "hello"})
	s.Equal(http.StatusConflict, code)
	s.Equal("CONFLICT", env.Error.Code)
}

func (s *CirclesAPISuite) TestEnergy_HeaderAndStoredLabel() {
	s.selectCircle("u1", "1")

	code, _ := s.do(http.MethodPut, "/api/v1/session/energy", "u1", map[string]string{"energy": "Not Valid!"})
	s.Equal(http.StatusBadRequest, code)

	code, _ = s.do(http.MethodPut, "/api/v1/session/energy", "u1", map[string]string{"energy": "heart-open"})
	s.Equal(http.StatusOK, code)

	var msg struct {
		Energy string `json:"energy"`
	}
	_, env := s.do(http.MethodPost, "/api/v1/session/messages", "u1", map[string]string{"content": "a"})
	s.decode(env, &msg)
	s.Equal("heart-open", msg.Energy)

	_, env = s.do(http.MethodPost, "/api/v1/session/messages", "u1", map[string]string{"content": "b"}, middleware.EnergyHeader, "grateful")
	s.decode(env, &msg)
	s.Equal("grateful", msg.Energy)
}

func (s *CirclesAPISuite) TestEnergy_InvalidHeaderRejected() {
	s.selectCircle("u1", "1")

	code, env := s.do(http.MethodPost, "/api/v1/session/messages", "u1",
		map[string]string{"content": "a"}, middleware.EnergyHeader, strings.Repeat("x", 200))
	s.Equal(http.StatusBadRequest, code)
	s.False(env.Success)

	code, env = s.do(http.MethodGet, "/api/v1/session/messages", "u1", nil)
	s.Equal(http.StatusOK, code)
	var msgs []json.RawMessage
	s.decode(env, &msgs)
	s.Len(msgs, 2)

	_, env = s.do(http.MethodGet, "/api/v1/circles/1/messages/history", "", nil)
	s.Equal(int64(0), env.Meta.Total)
}

func (s *CirclesAPISuite) TestMeditation_GrantsFortyXP() {
	s.selectCircle("u1", "1")

	code, _ := s.do(http.MethodPost, "/api/v1/session/meditation", "u1", map[string]int{"duration_minutes": 20})
	s.Equal(http.StatusCreated, code)

	_, env := s.do(http.MethodGet, "/api/v1/my/exp", "u1", nil)
	var summary struct {
		TotalExp int `json:"total_exp"`
	}
	s.decode(env, &summary)
	s.Equal(40, summary.TotalExp)

	code, env = s.do(http.MethodGet, "/api/v1/my/exp/history", "u1", nil)
	s.Equal(http.StatusOK, code)
	s.Equal(int64(2), env.Meta.Total)
}

// --- Events ---

func (s *CirclesAPISuite) TestEventLifecycle() {
	code, env := s.do(http.MethodPost, "/api/v1/events", "host", map[string]interface{}{
		"title":    "Full Moon Circle",
		"settings": map[string]interface{}{"max_participants": 20, "allow_chat": true},
	})
	s.Equal(http.StatusCreated, code)

	var event struct {
		ID           string        `json:"id"`
		Status       string        `json:"status"`
		HostID       string        `json:"host_id"`
		Participants []interface{} `json:"participants"`
	}
	s.decode(env, &event)
	s.Equal("scheduled", event.Status)
	s.Equal("host", event.HostID)
	s.Empty(event.Participants)

	for i := 0; i < 2; i++ {
		code, _ = s.do(http.MethodPost, "/api/v1/events/"+event.ID+"/join", "u1", nil)
		s.Equal(http.StatusOK, code)
	}

	_, env = s.do(http.MethodGet, "/api/v1/events/"+event.ID, "", nil)
	s.decode(env, &event)
	s.Len(event.Participants, 1)

	// duplicate join still earns the join reward
	_, env = s.do(http.MethodGet, "/api/v1/my/exp", "u1", nil)
	var summary struct {
		TotalExp int `json:"total_exp"`
	}
	s.decode(env, &summary)
	s.Equal(20, summary.TotalExp)

	code, _ = s.do(http.MethodPost, "/api/v1/events/"+event.ID+"/leave", "u1", nil)
	s.Equal(http.StatusOK, code)
	_, env = s.do(http.MethodGet, "/api/v1/events/"+event.ID, "", nil)
	s.decode(env, &event)
	s.Empty(event.Participants)

	code, _ = s.do(http.MethodPost, "/api/v1/events/missing/join", "u1", nil)
	s.Equal(http.StatusNotFound, code)

	// persisted through the write-through path
	persisted, err := repository.NewEventRepository(s.db).FindByID(context.Background(), event.ID)
	s.Require().NoError(err)
	s.Empty(persisted.Participants)
}

func (s *CirclesAPISuite) TestEvents_CreateRequiresAuth() {
	code, _ := s.do(http.MethodPost, "/api/v1/events", "", map[string]string{"title": "x"})
	s.Equal(http.StatusUnauthorized, code)

	code, env := s.do(http.MethodGet, "/api/v1/events", "", nil)
	s.Equal(http.StatusOK, code)
	s.JSONEq("[]", string(env.Data))
}
