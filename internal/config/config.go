package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	pkglogger "github.com/innerlight/circles-backend/pkg/logger"
	"gopkg.in/yaml.v3"
)

// Config 애플리케이션 설정
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	JWT       JWTConfig       `yaml:"jwt"`
	CORS      CORSConfig      `yaml:"cors"`
	Rewards   RewardConfig    `yaml:"rewards"`
	Session   SessionConfig   `yaml:"session"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

type ServerConfig struct {
	Port int    `yaml:"port" env:"SERVER_PORT"`
	Env  string `yaml:"env" env:"APP_ENV"`
}

type DatabaseConfig struct {
	Driver          string `yaml:"driver" env:"DB_DRIVER"` // mysql | sqlite
	Host            string `yaml:"host" env:"DB_HOST"`
	Port            int    `yaml:"port" env:"DB_PORT"`
	User            string `yaml:"user" env:"DB_USER"`
	Password        string `yaml:"password" env:"DB_PASSWORD"`
	Name            string `yaml:"name" env:"DB_NAME"`
	SQLitePath      string `yaml:"sqlite_path" env:"DB_SQLITE_PATH"`
	MaxIdleConns    int    `yaml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS"`
	MaxOpenConns    int    `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS"`
	ConnMaxLifetime int    `yaml:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME"` // seconds
}

// GetDSN returns the MySQL DSN
func (d DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		d.User, d.Password, d.Host, d.Port, d.Name)
}

type RedisConfig struct {
	Enabled  bool   `yaml:"enabled" env:"REDIS_ENABLED"`
	Host     string `yaml:"host" env:"REDIS_HOST"`
	Port     int    `yaml:"port" env:"REDIS_PORT"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"REDIS_DB"`
	PoolSize int    `yaml:"pool_size" env:"REDIS_POOL_SIZE"`
}

type JWTConfig struct {
	Secret    string `yaml:"secret" env:"JWT_SECRET"`
	ExpiresIn int    `yaml:"expires_in" env:"JWT_EXPIRES_IN"` // seconds
	RefreshIn int    `yaml:"refresh_in" env:"JWT_REFRESH_IN"` // seconds
}

type CORSConfig struct {
	AllowOrigins string `yaml:"allow_origins" env:"CORS_ALLOW_ORIGINS"`
}

// RewardConfig XP amounts granted per action
type RewardConfig struct {
	TextMessage  int `yaml:"text_message" env:"REWARD_TEXT_MESSAGE"`
	RichMessage  int `yaml:"rich_message" env:"REWARD_RICH_MESSAGE"`
	Meditation   int `yaml:"meditation" env:"REWARD_MEDITATION"`
	EventCreated int `yaml:"event_created" env:"REWARD_EVENT_CREATED"`
	EventJoined  int `yaml:"event_joined" env:"REWARD_EVENT_JOINED"`
	// GrantOnDuplicateJoin keeps the join reward even when the actor was already a participant
	GrantOnDuplicateJoin bool `yaml:"grant_on_duplicate_join" env:"REWARD_GRANT_ON_DUPLICATE_JOIN"`
}

type SessionConfig struct {
	IdleTTL           time.Duration `yaml:"idle_ttl" env:"SESSION_IDLE_TTL"`
	SweepInterval     time.Duration `yaml:"sweep_interval" env:"SESSION_SWEEP_INTERVAL"`
	MaxSocketsPerUser int           `yaml:"max_sockets_per_user" env:"SESSION_MAX_SOCKETS_PER_USER"`
}

type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled" env:"RATE_LIMIT_ENABLED"`
	RequestsPerMinute int  `yaml:"requests_per_minute" env:"RATE_LIMIT_RPM"`
}

// Default returns the built-in configuration used when no file is present
func Default() *Config {
	return &Config{
		Server: ServerConfig{Port: 8082, Env: "local"},
		Database: DatabaseConfig{
			Driver:          "sqlite",
			Host:            "localhost",
			Port:            3306,
			Name:            "circles",
			SQLitePath:      "circles.db",
			MaxIdleConns:    10,
			MaxOpenConns:    50,
			ConnMaxLifetime: 300,
		},
		Redis: RedisConfig{Host: "localhost", Port: 6379, PoolSize: 10},
		JWT:   JWTConfig{ExpiresIn: 900, RefreshIn: 604800},
		CORS:  CORSConfig{AllowOrigins: "http://localhost:3000"},
		Rewards: RewardConfig{
			TextMessage:          5,
			RichMessage:          15,
			Meditation:           25,
			EventCreated:         50,
			EventJoined:          10,
			GrantOnDuplicateJoin: true,
		},
		Session:   SessionConfig{IdleTTL: 30 * time.Minute, SweepInterval: time.Minute},
		RateLimit: RateLimitConfig{RequestsPerMinute: 120},
	}
}

// Load reads a YAML file on top of the defaults, then applies env overrides.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
		pkglogger.Warn("config file %s not found, using defaults", path)
	default:
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("env overrides: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks required settings
func (c *Config) Validate() error {
	var problems []string
	if c.Server.Port <= 0 {
		problems = append(problems, "server.port must be positive")
	}
	switch c.Database.Driver {
	case "mysql", "sqlite":
	default:
		problems = append(problems, fmt.Sprintf("database.driver %q is not supported", c.Database.Driver))
	}
	if c.JWT.Secret == "" && !c.IsDevelopment() {
		problems = append(problems, "jwt.secret is required outside development")
	}
	if c.Session.IdleTTL <= 0 {
		problems = append(problems, "session.idle_ttl must be positive")
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
	}
	return nil
}

// IsDevelopment reports whether the server runs in a local/dev environment
func (c *Config) IsDevelopment() bool {
	switch c.Server.Env {
	case "", "local", "dev", "development", "test":
		return true
	}
	return false
}

// LogResolved logs the effective configuration with secrets masked
func LogResolved(c *Config) {
	pkglogger.GetLogger().Info().
		Str("env", c.Server.Env).
		Int("port", c.Server.Port).
		Str("db_driver", c.Database.Driver).
		Str("db_host", c.Database.Host).
		Str("db_name", c.Database.Name).
		Str("db_password", mask(c.Database.Password)).
		Bool("redis_enabled", c.Redis.Enabled).
		Str("redis_addr", fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)).
		Str("jwt_secret", mask(c.JWT.Secret)).
		Dur("session_idle_ttl", c.Session.IdleTTL).
		Msg("config resolved")
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 4 {
		return "****"
	}
	return s[:2] + strings.Repeat("*", len(s)-4) + s[len(s)-2:]
}
