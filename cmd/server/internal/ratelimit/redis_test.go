package ratelimit_test

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/autograde/grader/cmd/server/internal/ratelimit"
)

func TestRedisLimiterStore(t *testing.T) {
	if testing.Short() {
		t.Skip("requires docker")
	}
	ctx := context.Background()

	redisContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	t.Cleanup(func() {
		assert.NoError(t, testcontainers.TerminateContainer(redisContainer), "failed to terminate container")
	})
	require.NoError(t, err, "failed to start redis container")

	endpoint, err := redisContainer.Endpoint(ctx, "")
	require.NoError(t, err)
	client := redis.NewClient(&redis.Options{Addr: endpoint})

	limiter := ratelimit.NewRedisLimitStore(ratelimit.RedisLimiterConfig{
		RedisClient: client,
		LimiterKey:  "test",
		PerMinute:   3,
	})

	for i := range 3 {
		allowed, err := limiter.Allow("10.0.0.1")
		require.NoError(t, err)
		assert.True(t, allowed, "request %d should be allowed", i)
	}

	allowed, err := limiter.Allow("10.0.0.1")
	require.NoError(t, err)
	assert.False(t, allowed, "fourth request in the window is denied")

	allowed, err = limiter.Allow("10.0.0.2")
	require.NoError(t, err)
	assert.True(t, allowed, "other clients have their own window")

	ttl, err := client.TTL(ctx, "grader-ratelimit-test-10.0.0.1").Result()
	require.NoError(t, err)
	assert.Positive(t, ttl)
	assert.LessOrEqual(t, ttl, time.Minute)
}

func TestRedisLimiterStoreUnavailable(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})

	for _, failOpen := range []bool{true, false} {
		limiter := ratelimit.NewRedisLimitStore(ratelimit.RedisLimiterConfig{
			RedisClient: client,
			LimiterKey:  "test",
			PerMinute:   1,
			FailOpen:    failOpen,
		})

		allowed, err := limiter.Allow("10.0.0.1")
		require.Error(t, err)
		assert.Equal(t, failOpen, allowed)
	}
}
