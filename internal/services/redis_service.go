package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"room-relay/internal/database"

	"github.com/redis/go-redis/v9"
)

type RedisService struct {
	client *database.RedisClient
}

func NewRedisService(client *database.RedisClient) *RedisService {
	return &RedisService{
		client: client,
	}
}

// =============================================================================
// Rate Limiting
// =============================================================================

// CheckRateLimit records one hit under key and reports whether fewer than
// limit hits were already recorded within window.
func (r *RedisService) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	now := time.Now()
	windowStart := now.Add(-window).UnixNano()

	pipe := r.client.GetClient().Pipeline()

	// Remove old entries
	pipe.ZRemRangeByScore(ctx, key, "0", fmt.Sprintf("%d", windowStart))

	// Count current entries
	count := pipe.ZCard(ctx, key)

	// Add current request
	pipe.ZAdd(ctx, key, redis.Z{Score: float64(now.UnixNano()), Member: now.UnixNano()})

	pipe.Expire(ctx, key, window)

	if _, err := pipe.Exec(ctx); err != nil {
		return false, err
	}

	return count.Val() < int64(limit), nil
}

// =============================================================================
// Cache Operations
// =============================================================================

func (r *RedisService) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}

	return r.client.GetClient().Set(ctx, key, data, expiration).Err()
}

// Get decodes the JSON value stored under key into dest. A missing key
// returns ErrCacheMiss.
func (r *RedisService) Get(ctx context.Context, key string, dest interface{}) error {
	data, err := r.client.GetClient().Get(ctx, key).Bytes()
	if err == redis.Nil {
		return ErrCacheMiss
	}
	if err != nil {
		return err
	}

	return json.Unmarshal(data, dest)
}

func (r *RedisService) Delete(ctx context.Context, keys ...string) error {
	return r.client.GetClient().Del(ctx, keys...).Err()
}
