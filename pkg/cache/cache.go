package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrUnavailable is returned by reads when no redis client is configured
var ErrUnavailable = errors.New("redis not available")

// TTLs
const (
	TTLCircles    = 10 * time.Minute // circle list changes only on reload
	TTLExpSummary = 2 * time.Minute
	TTLHistory    = 30 * time.Second
	TTLDefault    = 5 * time.Minute
)

// Key prefixes
const (
	PrefixCircles    = "circles:"
	PrefixExpSummary = "exp:summary:"
	PrefixHistory    = "history:"
)

// Service redis JSON cache. Every method is a no-op (or ErrUnavailable on
// reads) when the client is nil, so callers never branch on redis being up.
type Service interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	Exists(ctx context.Context, key string) (bool, error)

	// circle list
	GetCircles(ctx context.Context, dest interface{}) error
	SetCircles(ctx context.Context, data interface{}) error
	InvalidateCircles(ctx context.Context) error

	// reward summary
	GetExpSummary(ctx context.Context, userID string, dest interface{}) error
	SetExpSummary(ctx context.Context, userID string, data interface{}) error
	InvalidateExpSummary(ctx context.Context, userID string) error

	// message archive pages
	GetHistory(ctx context.Context, circleID string, page, limit int, dest interface{}) error
	SetHistory(ctx context.Context, circleID string, page, limit int, data interface{}) error
	InvalidateHistory(ctx context.Context, circleID string) error

	IsAvailable() bool
	Ping(ctx context.Context) error
}

type redisCache struct {
	client *redis.Client
}

// NewService creates a cache over client; client may be nil
func NewService(client *redis.Client) Service {
	return &redisCache{client: client}
}

func (c *redisCache) IsAvailable() bool {
	return c.client != nil
}

func (c *redisCache) Ping(ctx context.Context) error {
	if c.client == nil {
		return ErrUnavailable
	}
	return c.client.Ping(ctx).Err()
}

func (c *redisCache) Get(ctx context.Context, key string, dest interface{}) error {
	if c.client == nil {
		return ErrUnavailable
	}

	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return err
	}

	return json.Unmarshal(data, dest)
}

func (c *redisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if c.client == nil {
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	return c.client.Set(ctx, key, data, ttl).Err()
}

func (c *redisCache) Delete(ctx context.Context, keys ...string) error {
	if c.client == nil || len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}

func (c *redisCache) Exists(ctx context.Context, key string) (bool, error) {
	if c.client == nil {
		return false, nil
	}
	n, err := c.client.Exists(ctx, key).Result()
	return n > 0, err
}

// ========================================
// circles
// ========================================

func circlesKey() string {
	return PrefixCircles + "all"
}

func (c *redisCache) GetCircles(ctx context.Context, dest interface{}) error {
	return c.Get(ctx, circlesKey(), dest)
}

func (c *redisCache) SetCircles(ctx context.Context, data interface{}) error {
	return c.Set(ctx, circlesKey(), data, TTLCircles)
}

func (c *redisCache) InvalidateCircles(ctx context.Context) error {
	return c.Delete(ctx, circlesKey())
}

// ========================================
// exp summary
// ========================================

// ExpSummaryKey cache key for a user's reward summary
func ExpSummaryKey(userID string) string {
	return PrefixExpSummary + userID
}

func (c *redisCache) GetExpSummary(ctx context.Context, userID string, dest interface{}) error {
	return c.Get(ctx, ExpSummaryKey(userID), dest)
}

func (c *redisCache) SetExpSummary(ctx context.Context, userID string, data interface{}) error {
	return c.Set(ctx, ExpSummaryKey(userID), data, TTLExpSummary)
}

func (c *redisCache) InvalidateExpSummary(ctx context.Context, userID string) error {
	return c.Delete(ctx, ExpSummaryKey(userID))
}

// ========================================
// message history
// ========================================

// HistoryKey cache key for one archive page
func HistoryKey(circleID string, page, limit int) string {
	return fmt.Sprintf("%s%s:%d:%d", PrefixHistory, circleID, page, limit)
}

func (c *redisCache) GetHistory(ctx context.Context, circleID string, page, limit int, dest interface{}) error {
	return c.Get(ctx, HistoryKey(circleID, page, limit), dest)
}

func (c *redisCache) SetHistory(ctx context.Context, circleID string, page, limit int, data interface{}) error {
	return c.Set(ctx, HistoryKey(circleID, page, limit), data, TTLHistory)
}

func (c *redisCache) InvalidateHistory(ctx context.Context, circleID string) error {
	if c.client == nil {
		return nil
	}
	return c.deleteByPattern(ctx, PrefixHistory+circleID+":*")
}

func (c *redisCache) deleteByPattern(ctx context.Context, pattern string) error {
	iter := c.client.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}
