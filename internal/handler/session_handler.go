package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/innerlight/circles-backend/internal/common"
	"github.com/innerlight/circles-backend/internal/domain"
	"github.com/innerlight/circles-backend/internal/middleware"
	"github.com/innerlight/circles-backend/internal/service"
)

// SessionHandler exposes the signed-in user's session: active circle, messages, energy
type SessionHandler struct {
	sessions *service.SessionRegistry
}

// NewSessionHandler creates a new SessionHandler
func NewSessionHandler(sessions *service.SessionRegistry) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

func (h *SessionHandler) session(c *gin.Context) *service.Session {
	userID := requireUser(c, middleware.GetUserID(c))
	if userID == "" {
		return nil
	}
	return h.sessions.Get(userID)
}

// GetSession handles GET /session
// @Summary Current session
// @Tags session
// @Produce json
// @Security BearerAuth
// @Success 200 {object} common.APIResponse{data=domain.SessionResponse}
// @Router /session [get]
func (h *SessionHandler) GetSession(c *gin.Context) {
	s := h.session(c)
	if s == nil {
		return
	}
	common.Success(c, s.Snapshot(c.Request.Context()))
}

// SetActiveCircle handles PUT /session/active-circle
// @Summary Select a circle, or clear the selection with circle_id null
// @Tags session
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body domain.SetActiveCircleRequest true "Circle selection"
// @Success 200 {object} common.APIResponse{data=domain.SessionResponse}
// @Failure 404 {object} common.APIResponse
// @Router /session/active-circle [put]
func (h *SessionHandler) SetActiveCircle(c *gin.Context) {
	s := h.session(c)
	if s == nil {
		return
	}

	var req domain.SetActiveCircleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	ctx := c.Request.Context()
	if _, err := s.SelectCircle(ctx, req.CircleID); err != nil {
		respondError(c, err, "Failed to select circle")
		return
	}
	common.Success(c, s.Snapshot(ctx))
}

// SetEnergy handles PUT /session/energy
// @Summary Set the energy label stamped on outgoing messages
// @Tags session
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body domain.SetEnergyRequest true "Energy label"
// @Success 200 {object} common.APIResponse{data=domain.SessionResponse}
// @Router /session/energy [put]
func (h *SessionHandler) SetEnergy(c *gin.Context) {
	s := h.session(c)
	if s == nil {
		return
	}

	var req domain.SetEnergyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid energy label", err)
		return
	}

	s.SetEnergy(req.Energy)
	common.Success(c, s.Snapshot(c.Request.Context()))
}

// ListMessages handles GET /session/messages
// @Summary Messages in the active circle view
// @Tags session
// @Produce json
// @Security BearerAuth
// @Success 200 {object} common.APIResponse{data=[]domain.Message}
// @Router /session/messages [get]
func (h *SessionHandler) ListMessages(c *gin.Context) {
	s := h.session(c)
	if s == nil {
		return
	}
	common.Success(c, s.Messages())
}

// SendMessage handles POST /session/messages
// @Summary Send a message to the active circle
// @Tags session
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param X-Energy header string false "Energy label for this message"
// @Param request body domain.SendMessageRequest true "Message"
// @Success 201 {object} common.APIResponse{data=domain.Message}
// @Failure 409 {object} common.APIResponse
// @Router /session/messages [post]
func (h *SessionHandler) SendMessage(c *gin.Context) {
	s := h.session(c)
	if s == nil {
		return
	}

	var req domain.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	msg, err := s.SendMessage(c.Request.Context(), req.Content, req.MessageType)
	respondMessage(c, msg, err)
}

// SendFrequency handles POST /session/frequency
// @Summary Share a healing frequency with the active circle
// @Tags session
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body domain.SendFrequencyRequest true "Frequency"
// @Success 201 {object} common.APIResponse{data=domain.Message}
// @Router /session/frequency [post]
func (h *SessionHandler) SendFrequency(c *gin.Context) {
	s := h.session(c)
	if s == nil {
		return
	}

	var req domain.SendFrequencyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	msg, err := s.SendFrequency(c.Request.Context(), req.Frequency)
	respondMessage(c, msg, err)
}

// StartMeditation handles POST /session/meditation
// @Summary Start a group meditation in the active circle
// @Tags session
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body domain.StartMeditationRequest false "Duration"
// @Success 201 {object} common.APIResponse{data=domain.Message}
// @Router /session/meditation [post]
func (h *SessionHandler) StartMeditation(c *gin.Context) {
	s := h.session(c)
	if s == nil {
		return
	}

	var req domain.StartMeditationRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			common.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
			return
		}
	}

	msg, err := s.StartGroupMeditation(c.Request.Context(), req.DurationMinutes)
	respondMessage(c, msg, err)
}

// respondMessage a nil message means the session had no active circle
func respondMessage(c *gin.Context, msg *domain.Message, err error) {
	if err != nil {
		respondError(c, err, "Failed to send message")
		return
	}
	if msg == nil {
		respondError(c, common.ErrNoActiveCircle, "")
		return
	}
	common.Created(c, msg)
}
