package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/innerlight/circles-backend/internal/common"
	"github.com/innerlight/circles-backend/internal/service"
)

// EnergyHeader is the per-request energy label override
const EnergyHeader = "X-Energy"

// Energy moves the X-Energy header into the request context.
// A header that is not a valid energy label is rejected with 400.
func Energy() gin.HandlerFunc {
	return func(c *gin.Context) {
		label := strings.TrimSpace(c.GetHeader(EnergyHeader))
		if label == "" {
			c.Next()
			return
		}
		if !service.ValidEnergy(label) {
			common.ErrorResponse(c, http.StatusBadRequest, "Invalid X-Energy header", nil)
			c.Abort()
			return
		}
		c.Request = c.Request.WithContext(service.WithEnergyOverride(c.Request.Context(), label))
		c.Next()
	}
}
