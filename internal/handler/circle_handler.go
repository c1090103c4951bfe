package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/innerlight/circles-backend/internal/common"
	"github.com/innerlight/circles-backend/internal/service"
	"github.com/innerlight/circles-backend/internal/store"
	"github.com/innerlight/circles-backend/pkg/ginutil"
)

// CircleHandler serves the shared circle list and the message archive
type CircleHandler struct {
	circles *store.CircleStore
	history service.HistoryService
}

// NewCircleHandler creates a new CircleHandler
func NewCircleHandler(circles *store.CircleStore, history service.HistoryService) *CircleHandler {
	return &CircleHandler{circles: circles, history: history}
}

// ListCircles handles GET /circles
// @Summary List circles
// @Tags circles
// @Produce json
// @Success 200 {object} common.APIResponse{data=domain.CircleListResponse}
// @Router /circles [get]
func (h *CircleHandler) ListCircles(c *gin.Context) {
	common.Success(c, h.circles.Snapshot())
}

// GetCircle handles GET /circles/:id
// @Summary Get a circle
// @Tags circles
// @Produce json
// @Param id path string true "Circle ID"
// @Success 200 {object} common.APIResponse{data=domain.Circle}
// @Failure 404 {object} common.APIResponse
// @Router /circles/{id} [get]
func (h *CircleHandler) GetCircle(c *gin.Context) {
	id, _ := ginutil.ParamID(c, "id")
	circle, ok := h.circles.Get(id)
	if !ok {
		common.ErrorResponse(c, http.StatusNotFound, "Circle not found", nil)
		return
	}
	common.Success(c, circle)
}

// GetHistory handles GET /circles/:id/messages/history
// @Summary Archived messages of a circle, newest first
// @Tags circles
// @Produce json
// @Param id path string true "Circle ID"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} common.APIResponse{data=[]domain.Message}
// @Router /circles/{id}/messages/history [get]
func (h *CircleHandler) GetHistory(c *gin.Context) {
	id, _ := ginutil.ParamID(c, "id")
	page, limit := ginutil.Pagination(c, 20)

	msgs, meta, err := h.history.ListByCircle(c.Request.Context(), id, page, limit)
	if err != nil {
		respondError(c, err, "Failed to load message history")
		return
	}
	common.SuccessWithMeta(c, msgs, meta)
}
