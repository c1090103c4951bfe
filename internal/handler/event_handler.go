package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/innerlight/circles-backend/internal/common"
	"github.com/innerlight/circles-backend/internal/domain"
	"github.com/innerlight/circles-backend/internal/middleware"
	"github.com/innerlight/circles-backend/internal/service"
	"github.com/innerlight/circles-backend/internal/store"
	"github.com/innerlight/circles-backend/pkg/ginutil"
)

// EventHandler handles scheduled gatherings
type EventHandler struct {
	events   *store.EventStore
	sessions *service.SessionRegistry
}

// NewEventHandler creates a new EventHandler
func NewEventHandler(events *store.EventStore, sessions *service.SessionRegistry) *EventHandler {
	return &EventHandler{events: events, sessions: sessions}
}

// ListEvents handles GET /events
// @Summary List events in creation order
// @Tags events
// @Produce json
// @Success 200 {object} common.APIResponse{data=[]domain.Event}
// @Router /events [get]
func (h *EventHandler) ListEvents(c *gin.Context) {
	common.Success(c, h.events.List())
}

// GetEvent handles GET /events/:id
// @Summary Get an event
// @Tags events
// @Produce json
// @Param id path string true "Event ID"
// @Success 200 {object} common.APIResponse{data=domain.Event}
// @Failure 404 {object} common.APIResponse
// @Router /events/{id} [get]
func (h *EventHandler) GetEvent(c *gin.Context) {
	id, _ := ginutil.ParamID(c, "id")
	event, ok := h.events.Get(id)
	if !ok {
		common.ErrorResponse(c, http.StatusNotFound, "Event not found", nil)
		return
	}
	common.Success(c, event)
}

// CreateEvent handles POST /events
// @Summary Schedule an event hosted by the caller
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body domain.CreateEventRequest true "Event draft"
// @Success 201 {object} common.APIResponse{data=domain.Event}
// @Router /events [post]
func (h *EventHandler) CreateEvent(c *gin.Context) {
	userID := requireUser(c, middleware.GetUserID(c))
	if userID == "" {
		return
	}

	var req domain.CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	id, err := h.sessions.Get(userID).CreateEvent(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err, "Failed to create event")
		return
	}
	event, _ := h.events.Get(id)
	common.Created(c, event)
}

// JoinEvent handles POST /events/:id/join
// @Summary Join an event; joining twice keeps a single entry
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param id path string true "Event ID"
// @Success 200 {object} common.APIResponse{data=domain.EventActionResponse}
// @Failure 404 {object} common.APIResponse
// @Router /events/{id}/join [post]
func (h *EventHandler) JoinEvent(c *gin.Context) {
	userID := requireUser(c, middleware.GetUserID(c))
	if userID == "" {
		return
	}
	id, _ := ginutil.ParamID(c, "id")

	res, err := h.sessions.Get(userID).JoinEvent(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Failed to join event")
		return
	}
	common.Success(c, res)
}

// LeaveEvent handles POST /events/:id/leave
// @Summary Leave an event
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param id path string true "Event ID"
// @Success 200 {object} common.APIResponse{data=domain.EventActionResponse}
// @Failure 404 {object} common.APIResponse
// @Router /events/{id}/leave [post]
func (h *EventHandler) LeaveEvent(c *gin.Context) {
	userID := requireUser(c, middleware.GetUserID(c))
	if userID == "" {
		return
	}
	id, _ := ginutil.ParamID(c, "id")

	res, err := h.sessions.Get(userID).LeaveEvent(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Failed to leave event")
		return
	}
	common.Success(c, res)
}
