package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/innerlight/circles-backend/internal/metrics"
)

// Metrics records every API request on m. /metrics and /health are skipped.
// Register it before the auth middleware; the actor is read after the chain runs.
func Metrics(m *metrics.HTTP) gin.HandlerFunc {
	return func(c *gin.Context) {
		if p := c.Request.URL.Path; p == "/metrics" || p == "/health" {
			c.Next()
			return
		}

		start := time.Now()
		done := m.Begin()
		c.Next()
		done()

		// route template, never the raw path
		m.Observe(c.Request.Method, c.FullPath(), c.Writer.Status(), GetUserID(c), time.Since(start), c.Writer.Size())
	}
}
