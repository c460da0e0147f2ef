package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const keyPrefix = "arcade:ratelimit:"

// NewRedisClient parses a redis:// URL and pings the server.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return rdb, nil
}

// RedisLimiter keeps one sorted set per key so every API instance shares
// the same window.
type RedisLimiter struct {
	client *redis.Client
	logger *zap.SugaredLogger
}

var _ Limiter = (*RedisLimiter)(nil)

func NewRedisLimiter(client *redis.Client, logger *zap.SugaredLogger) *RedisLimiter {
	return &RedisLimiter{client: client, logger: logger}
}

// Check records the request and reports whether it is within limit.
// Rejected requests still count toward the window.
func (l *RedisLimiter) Check(ctx context.Context, key string, limit int, window time.Duration) (*Result, error) {
	if l.client == nil {
		return nil, errors.New("redis client is not configured for rate limiting")
	}
	now := time.Now()
	windowStart := now.Add(-window)
	if limit <= 0 {
		return &Result{Allowed: false, ResetAt: now.Add(window)}, ErrLimitExceeded
	}

	redisKey := keyPrefix + key
	pipe := l.client.TxPipeline()
	pipe.ZRemRangeByScore(ctx, redisKey, "-inf", fmt.Sprintf("(%d", windowStart.UnixMicro()))
	pipe.ZAdd(ctx, redisKey, redis.Z{Score: float64(now.UnixMicro()), Member: uuid.NewString()})
	countCmd := pipe.ZCard(ctx, redisKey)
	pipe.Expire(ctx, redisKey, window*2)
	if _, err := pipe.Exec(ctx); err != nil {
		l.logger.Errorw("rate limiter pipeline failed", "key", key, "err", err)
		return nil, err
	}

	count := countCmd.Val()
	res := &Result{
		Allowed:   count <= int64(limit),
		Remaining: max(limit-int(count), 0),
		ResetAt:   now.Add(window),
	}
	if !res.Allowed {
		return res, ErrLimitExceeded
	}
	return res, nil
}
