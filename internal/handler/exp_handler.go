package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/innerlight/circles-backend/internal/common"
	"github.com/innerlight/circles-backend/internal/middleware"
	"github.com/innerlight/circles-backend/internal/service"
	"github.com/innerlight/circles-backend/pkg/ginutil"
)

// ExpHandler serves the caller's reward ledger
type ExpHandler struct {
	rewards service.RewardService
}

// NewExpHandler creates a new ExpHandler
func NewExpHandler(rewards service.RewardService) *ExpHandler {
	return &ExpHandler{rewards: rewards}
}

// GetSummary handles GET /my/exp
// @Summary XP total and level progress
// @Tags exp
// @Produce json
// @Security BearerAuth
// @Success 200 {object} common.APIResponse{data=domain.ExpSummary}
// @Router /my/exp [get]
func (h *ExpHandler) GetSummary(c *gin.Context) {
	userID := requireUser(c, middleware.GetUserID(c))
	if userID == "" {
		return
	}

	summary, err := h.rewards.GetSummary(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err, "Failed to load exp summary")
		return
	}
	common.Success(c, summary)
}

// GetHistory handles GET /my/exp/history
// @Summary Reward grants, newest first
// @Tags exp
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} common.APIResponse{data=[]domain.ExpLog}
// @Router /my/exp/history [get]
func (h *ExpHandler) GetHistory(c *gin.Context) {
	userID := requireUser(c, middleware.GetUserID(c))
	if userID == "" {
		return
	}
	page, limit := ginutil.Pagination(c, 20)

	logs, meta, err := h.rewards.GetHistory(c.Request.Context(), userID, page, limit)
	if err != nil {
		respondError(c, err, "Failed to load exp history")
		return
	}
	common.SuccessWithMeta(c, logs, meta)
}
