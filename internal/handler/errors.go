package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/innerlight/circles-backend/internal/common"
	"github.com/innerlight/circles-backend/pkg/logger"
)

// respondError maps service errors onto the response envelope
func respondError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, common.ErrCircleNotFound):
		common.ErrorResponse(c, http.StatusNotFound, "Circle not found", err)
	case errors.Is(err, common.ErrEventNotFound):
		common.ErrorResponse(c, http.StatusNotFound, "Event not found", err)
	case errors.Is(err, common.ErrNotFound):
		common.ErrorResponse(c, http.StatusNotFound, "Not found", err)
	case errors.Is(err, common.ErrUnauthorized):
		common.ErrorResponse(c, http.StatusUnauthorized, "Sign in required", err)
	case errors.Is(err, common.ErrForbidden):
		common.ErrorResponse(c, http.StatusForbidden, "Forbidden", err)
	case errors.Is(err, common.ErrInvalidInput):
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid request", err)
	case errors.Is(err, common.ErrNoActiveCircle):
		common.ErrorResponse(c, http.StatusConflict, "Select a circle first", err)
	default:
		logger.GetLogger().Error().Err(err).Str("path", c.FullPath()).Msg(fallback)
		common.ErrorResponse(c, http.StatusInternalServerError, fallback, err)
	}
}

// requireUser writes 401 and returns "" when nobody is signed in
func requireUser(c *gin.Context, userID string) string {
	if userID == "" {
		common.ErrorResponse(c, http.StatusUnauthorized, "Sign in required", nil)
	}
	return userID
}
