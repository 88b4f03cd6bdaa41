package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/mock/gomock"

	"github.com/autograde/grader/internal/store"
	mockstore "github.com/autograde/grader/internal/store/mock"
	"github.com/autograde/grader/internal/types"
)

func setupRedis(t *testing.T) *redis.Client {
	t.Helper()
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

	return redis.NewClient(&redis.Options{Addr: endpoint})
}

func TestCachedAssignmentSource(t *testing.T) {
	if testing.Short() {
		t.Skip("requires docker")
	}

	ctx := context.Background()
	client := setupRedis(t)

	cfg := &types.AssignmentGradingConfig{
		AssignmentID: "11",
		TotalPoints:  50,
		Criteria:     map[string]float64{"content": 50},
		Kind:         types.AssignmentKindEssay,
	}

	t.Run("ReadThrough", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		next := mockstore.NewMockAssignmentSource(ctrl)
		next.EXPECT().GradingConfig(gomock.Any(), "11").Return(cfg, nil).Times(1)

		cached := store.NewCachedAssignmentSource(client, next, time.Minute)

		for range 3 {
			got, err := cached.GradingConfig(ctx, "11")
			require.NoError(t, err)
			assert.Equal(t, cfg, got)
		}
	})

	t.Run("Invalidate", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		next := mockstore.NewMockAssignmentSource(ctrl)
		next.EXPECT().GradingConfig(gomock.Any(), "12").Return(cfg, nil).Times(2)

		cached := store.NewCachedAssignmentSource(client, next, time.Minute)

		_, err := cached.GradingConfig(ctx, "12")
		require.NoError(t, err)
		require.NoError(t, cached.Invalidate(ctx, "12"))
		_, err = cached.GradingConfig(ctx, "12")
		require.NoError(t, err)
	})

	t.Run("PutInvalidates", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		next := mockstore.NewMockAssignmentStore(ctrl)

		updated := *cfg
		updated.AssignmentID = "14"
		updated.Version = 2

		gomock.InOrder(
			next.EXPECT().GradingConfig(gomock.Any(), "14").Return(cfg, nil),
			next.EXPECT().Put(gomock.Any(), &updated).Return(nil),
			next.EXPECT().GradingConfig(gomock.Any(), "14").Return(&updated, nil),
		)

		cached := store.NewCachedAssignmentSource(client, next, time.Minute)

		_, err := cached.GradingConfig(ctx, "14")
		require.NoError(t, err)
		require.NoError(t, cached.Put(ctx, &updated))

		got, err := cached.GradingConfig(ctx, "14")
		require.NoError(t, err)
		assert.Equal(t, 2, got.Version)
	})

	t.Run("PutReadOnly", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		next := mockstore.NewMockAssignmentSource(ctrl)

		cached := store.NewCachedAssignmentSource(client, next, time.Minute)
		require.ErrorIs(t, cached.Put(ctx, cfg), store.ErrReadOnly)
	})

	t.Run("ErrorsNotCached", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		next := mockstore.NewMockAssignmentSource(ctrl)
		next.EXPECT().GradingConfig(gomock.Any(), "13").Return(nil, store.ErrNotFound).Times(2)

		cached := store.NewCachedAssignmentSource(client, next, time.Minute)

		for range 2 {
			_, err := cached.GradingConfig(ctx, "13")
			require.ErrorIs(t, err, store.ErrNotFound)
		}
	})
}

func TestCachedAssignmentSourceRedisDown(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)

	cfg := &types.AssignmentGradingConfig{AssignmentID: "1", TotalPoints: 1}
	next := mockstore.NewMockAssignmentSource(ctrl)
	next.EXPECT().GradingConfig(gomock.Any(), "1").Return(cfg, nil)

	// nothing listens here
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	cached := store.NewCachedAssignmentSource(client, next, time.Minute)

	got, err := cached.GradingConfig(ctx, "1")
	require.NoError(t, err, "redis being down should not fail the read")
	assert.Equal(t, cfg, got)

	err = cached.Invalidate(ctx, "1")
	require.Error(t, err)
	assert.False(t, errors.Is(err, redis.Nil))
}
