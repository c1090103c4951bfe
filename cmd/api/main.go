package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	_ "github.com/innerlight/circles-backend/docs"
	"github.com/innerlight/circles-backend/internal/config"
	"github.com/innerlight/circles-backend/internal/eventbus"
	"github.com/innerlight/circles-backend/internal/handler"
	"github.com/innerlight/circles-backend/internal/metrics"
	"github.com/innerlight/circles-backend/internal/middleware"
	"github.com/innerlight/circles-backend/internal/migration"
	"github.com/innerlight/circles-backend/internal/repository"
	"github.com/innerlight/circles-backend/internal/routes"
	"github.com/innerlight/circles-backend/internal/service"
	"github.com/innerlight/circles-backend/internal/store"
	"github.com/innerlight/circles-backend/internal/ws"
	pkgcache "github.com/innerlight/circles-backend/pkg/cache"
	"github.com/innerlight/circles-backend/pkg/database"
	"github.com/innerlight/circles-backend/pkg/jwt"
	pkglogger "github.com/innerlight/circles-backend/pkg/logger"
	pkgredis "github.com/innerlight/circles-backend/pkg/redis"
)

// @title           Circles Backend API
// @version         1.0
// @description     Circles, messages and gatherings for the consciousness community
//
// @license.name    MIT
//
// @host            localhost:8082
// @BasePath        /api/v1
//
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT Authorization header using the Bearer scheme. Example: "Bearer {token}"

// getConfigPath returns config file path based on APP_ENV environment variable
func getConfigPath() string {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "local"
	}
	return fmt.Sprintf("configs/config.%s.yaml", env)
}

func main() {
	dotenvFiles := config.LoadDotEnv()

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "local"
	}
	pkglogger.InitStructured(env)
	pkglogger.Info("APP_ENV=%s, loaded env files: %v", env, dotenvFiles)

	configPath := getConfigPath()
	pkglogger.Info("Loading config from: %s", configPath)
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	config.LogResolved(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Database
	db, err := initDB(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	pkglogger.Info("Connected to %s", cfg.Database.Driver)
	if err := migration.Run(db); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	// Redis (optional)
	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = pkgredis.NewClient(
			cfg.Redis.Host,
			cfg.Redis.Port,
			cfg.Redis.Password,
			cfg.Redis.DB,
			cfg.Redis.PoolSize,
		)
		if err != nil {
			pkglogger.Warn("Failed to connect to Redis: %v (continuing without Redis)", err)
			redisClient = nil
		} else {
			pkglogger.Info("Connected to Redis")
		}
	}
	cacheService := pkgcache.NewService(redisClient)

	// Change notification
	appLogger := *pkglogger.GetLogger()
	bus := eventbus.New(pkglogger.WithComponent("eventbus"))
	domainMetrics := metrics.NewDomain(prometheus.DefaultRegisterer)
	domainMetrics.Attach(bus)

	// Repositories
	circleRepo := repository.NewCircleRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	eventRepo := repository.NewEventRepository(db)
	expRepo := repository.NewExpRepository(db)

	// Stores
	circles := store.NewCircleStore(migration.DefaultCircles(), bus)
	if err := circles.Load(ctx, service.NewCachedCircleLister(circleRepo, cacheService, appLogger)); err != nil {
		pkglogger.Warn("Circle load failed, serving built-in circles: %v", err)
	}
	persistedEvents, err := eventRepo.List(ctx)
	if err != nil {
		pkglogger.Warn("Event load failed, starting empty: %v", err)
	}
	events := store.NewEventStore(persistedEvents)

	// Services
	rewards := service.NewRewardService(expRepo, cacheService, bus, pkglogger.WithComponent("rewards"))
	history := service.NewHistoryService(messageRepo, circles, cacheService, pkglogger.WithComponent("history"))
	sessions := service.NewSessionRegistry(service.RegistryOptions{
		Rewards: rewards,
		Circles: circles,
		Events:  events,
		Archive: history,
		Writer:  eventRepo,
		Bus:     bus,
		Logger:  pkglogger.WithComponent("session"),
		Policy:  rewardPolicy(cfg.Rewards),
		IdleTTL: cfg.Session.IdleTTL,
	})
	go sessions.Run(ctx, cfg.Session.SweepInterval)
	go pollGauges(ctx, db, sessions, domainMetrics, cfg.Session.SweepInterval)

	// WebSocket Hub
	wsHub := ws.NewHub(redisClient, cfg.Session.MaxSocketsPerUser, pkglogger.WithComponent("ws"))
	wsHub.Forward(bus)
	go wsHub.Run()
	defer wsHub.Stop()

	// JWT Manager
	jwtManager := jwt.NewManager(
		cfg.JWT.Secret,
		cfg.JWT.ExpiresIn,
		cfg.JWT.RefreshIn,
	)

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())

	allowOrigins := splitAndTrim(cfg.CORS.AllowOrigins)
	if len(allowOrigins) == 0 {
		allowOrigins = []string{"http://localhost:3000"}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowOrigins,
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID", middleware.EnergyHeader},
		AllowCredentials: true,
		AllowMethods:     []string{"GET", "POST", "PUT", "OPTIONS"},
		ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Remaining"},
		MaxAge:           12 * time.Hour,
	}))

	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.Metrics(metrics.NewHTTP(prometheus.DefaultRegisterer)))
	router.Use(middleware.RequestLogger())

	// Prometheus metrics
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Health Check
	router.GET("/health", func(c *gin.Context) {
		status := http.StatusOK
		dbStatus := "ok"
		if sqlDB, err := db.DB(); err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
			status, dbStatus = http.StatusServiceUnavailable, "down"
		}
		c.JSON(status, gin.H{
			"status":   dbStatus,
			"service":  "circles-backend",
			"redis":    cacheService.IsAvailable(),
			"sessions": sessions.Len(),
			"time":     time.Now().Unix(),
		})
	})

	// Swagger UI
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	rateLimit := middleware.DefaultRateLimitConfig()
	rateLimit.RequestsPerMinute = cfg.RateLimit.RequestsPerMinute
	var limiterClient *redis.Client
	if cfg.RateLimit.Enabled {
		limiterClient = redisClient
	}

	routes.Setup(router,
		handler.NewCircleHandler(circles, history),
		handler.NewSessionHandler(sessions),
		handler.NewEventHandler(events, sessions),
		handler.NewExpHandler(rewards),
		handler.NewWSHandler(wsHub, cfg.CORS.AllowOrigins),
		jwtManager,
		limiterClient,
		rateLimit,
	)

	// 서버 시작
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		pkglogger.Info("Server listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	pkglogger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		pkglogger.Error("Graceful shutdown failed: %v", err)
	}
}

// initDB opens the configured database
func initDB(cfg *config.Config) (*gorm.DB, error) {
	dsn := cfg.Database.SQLitePath
	if cfg.Database.Driver == "mysql" {
		dsn = cfg.Database.GetDSN()
	}
	return database.Open(database.Options{
		Driver:          cfg.Database.Driver,
		DSN:             dsn,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		ConnMaxLifetime: time.Duration(cfg.Database.ConnMaxLifetime) * time.Second,
		Verbose:         cfg.IsDevelopment(),
	})
}

func rewardPolicy(r config.RewardConfig) service.RewardPolicy {
	return service.RewardPolicy{
		TextMessage:          r.TextMessage,
		RichMessage:          r.RichMessage,
		Meditation:           r.Meditation,
		EventCreated:         r.EventCreated,
		EventJoined:          r.EventJoined,
		GrantOnDuplicateJoin: r.GrantOnDuplicateJoin,
	}
}

// pollGauges refreshes the pool and session gauges
func pollGauges(ctx context.Context, db *gorm.DB, sessions *service.SessionRegistry, m *metrics.Domain, every time.Duration) {
	if every <= 0 {
		every = time.Minute
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if sqlDB, err := db.DB(); err == nil {
				m.SetDBConnectionsOpen(sqlDB.Stats().OpenConnections)
			}
			m.SetLiveSessions(sessions.Len())
		}
	}
}

// splitAndTrim splits a comma-separated list and drops blanks
func splitAndTrim(s string) []string {
	parts := []string{}
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
