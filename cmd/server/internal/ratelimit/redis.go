package ratelimit

import (
	"context"
	"time"

	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
)

const window = time.Minute

var _ middleware.RateLimiterStore = (*RedisLimiterStore)(nil)

// Fixed window request counter shared by every server replica
type RedisLimiterStore struct {
	db         *redis.Client
	limiterKey string
	perMinute  int64
	failOpen   bool
}

type RedisLimiterConfig struct {
	RedisClient *redis.Client
	LimiterKey  string
	PerMinute   int64
	FailOpen    bool
}

func NewRedisLimitStore(config RedisLimiterConfig) *RedisLimiterStore {
	return &RedisLimiterStore{
		db:         config.RedisClient,
		limiterKey: config.LimiterKey,
		perMinute:  config.PerMinute,
		failOpen:   config.FailOpen,
	}
}

func (store *RedisLimiterStore) key(identifier string) string {
	return "grader-ratelimit-" + store.limiterKey + "-" + identifier
}

// The window starts with the first request of an identifier and the counter expires with it
func (store *RedisLimiterStore) Allow(identifier string) (bool, error) {
	ctx := context.Background()
	key := store.key(identifier)

	var incr *redis.IntCmd
	_, err := store.db.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		pipe.ExpireNX(ctx, key, window)
		return nil
	})
	if err != nil {
		return store.failOpen, err
	}

	return incr.Val() <= store.perMinute, nil
}
