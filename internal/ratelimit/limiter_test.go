package ratelimit

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestRedisLimiterBlocksWhenExceeded(t *testing.T) {
	limiter := NewRedisLimiter(setupTestRedis(t), zap.NewNop().Sugar())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		res, err := limiter.Check(ctx, "login:1.2.3.4", 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, res.Allowed)
		assert.Equal(t, 2-i, res.Remaining)
	}
	res, err := limiter.Check(ctx, "login:1.2.3.4", 3, time.Minute)
	assert.ErrorIs(t, err, ErrLimitExceeded)
	assert.False(t, res.Allowed)

	// other keys are independent
	res, err = limiter.Check(ctx, "login:5.6.7.8", 3, time.Minute)
	require.NoError(t, err)
	assert.True(t, res.Allowed)
}

func TestNewRedisClient(t *testing.T) {
	mr := miniredis.RunT(t)
	client, err := NewRedisClient(context.Background(), "redis://"+mr.Addr()+"/0")
	require.NoError(t, err)
	_ = client.Close()

	_, err = NewRedisClient(context.Background(), "not a url")
	assert.Error(t, err)
}

func TestMemoryLimiterSlidingWindow(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	limiter := NewMemoryLimiter()
	limiter.now = func() time.Time { return now }
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := limiter.Check(ctx, "k", 2, time.Minute)
		require.NoError(t, err)
	}
	res, err := limiter.Check(ctx, "k", 2, time.Minute)
	assert.ErrorIs(t, err, ErrLimitExceeded)
	assert.Equal(t, 0, res.Remaining)

	now = now.Add(61 * time.Second)
	res, err = limiter.Check(ctx, "k", 2, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Remaining)

	now = now.Add(time.Hour)
	limiter.Cleanup(time.Minute)
	assert.Empty(t, limiter.buckets)
}

func TestResultRetryAfter(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	res := &Result{ResetAt: now.Add(1500 * time.Millisecond)}
	assert.Equal(t, 2, res.RetryAfter(now))

	res = &Result{ResetAt: now.Add(-time.Second)}
	assert.Equal(t, 1, res.RetryAfter(now))
}

func TestKeyScopesClients(t *testing.T) {
	assert.Equal(t, "auth:1.2.3.4", Key("auth", "1.2.3.4"))
	assert.NotEqual(t, Key("auth", "1.2.3.4"), Key("admin", "1.2.3.4"))
}
