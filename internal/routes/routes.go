package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/innerlight/circles-backend/internal/handler"
	"github.com/innerlight/circles-backend/internal/middleware"
	"github.com/innerlight/circles-backend/pkg/jwt"
	"github.com/redis/go-redis/v9"
)

// Setup configures all API routes
func Setup(
	router *gin.Engine,
	circleHandler *handler.CircleHandler,
	sessionHandler *handler.SessionHandler,
	eventHandler *handler.EventHandler,
	expHandler *handler.ExpHandler,
	wsHandler *handler.WSHandler,
	jwtManager *jwt.Manager,
	redisClient *redis.Client,
	rateLimit middleware.RateLimitConfig,
) {
	handler.RegisterValidators()

	// Actor is optional on reads; writes go through auth
	api := router.Group("/api/v1", middleware.OptionalJWTAuth(jwtManager), middleware.Energy())
	auth := middleware.JWTAuth(jwtManager)
	limited := middleware.RateLimit(redisClient, rateLimit)

	// Circles (public)
	circles := api.Group("/circles")
	circles.GET("", circleHandler.ListCircles)
	circles.GET("/:id", circleHandler.GetCircle)
	circles.GET("/:id/messages/history", circleHandler.GetHistory)

	// Session (signed in)
	session := api.Group("/session", auth)
	session.GET("", sessionHandler.GetSession)
	session.PUT("/active-circle", sessionHandler.SetActiveCircle)
	session.PUT("/energy", sessionHandler.SetEnergy)
	session.GET("/messages", sessionHandler.ListMessages)
	session.POST("/messages", limited, sessionHandler.SendMessage)
	session.POST("/frequency", limited, sessionHandler.SendFrequency)
	session.POST("/meditation", limited, sessionHandler.StartMeditation)

	// Events
	events := api.Group("/events")
	events.GET("", eventHandler.ListEvents)
	events.GET("/:id", eventHandler.GetEvent)
	events.POST("", auth, limited, eventHandler.CreateEvent)
	events.POST("/:id/join", auth, eventHandler.JoinEvent)
	events.POST("/:id/leave", auth, eventHandler.LeaveEvent)

	// Reward ledger
	my := api.Group("/my", auth)
	my.GET("/exp", expHandler.GetSummary)
	my.GET("/exp/history", expHandler.GetHistory)

	// Realtime
	if wsHandler != nil {
		router.GET("/ws/circles", auth, wsHandler.Connect)
	}
}
