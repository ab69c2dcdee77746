//go:build integration

package quota

import (
	"context"
	"testing"
	"time"

	"github.com/SlpAus/plantify-backend/internal/platform/apperr"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func startRedis(t *testing.T) *redis.Client {
	t.Helper()
	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForListeningPort("6379/tcp"),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err)
	rdb := redis.NewClient(&redis.Options{Addr: endpoint})
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

func TestSlidingWindowQuota(t *testing.T) {
	rdb := startRedis(t)
	ctx := context.Background()
	l := NewLimiter(rdb, 2, nil)
	now := time.Now()

	for i := 0; i < 2; i++ {
		comp, err := l.Reserve(ctx, 1, now)
		require.NoError(t, err)
		comp.Commit()
	}

	_, err := l.Reserve(ctx, 1, now)
	assert.True(t, apperr.Is(err, apperr.KindRateLimited))

	// 另一个用户不受影响
	_, err = l.Reserve(ctx, 2, now)
	require.NoError(t, err)

	// 窗口之外的调用不再计数
	comp, err := l.Reserve(ctx, 1, now.Add(window+time.Second))
	require.NoError(t, err)
	comp.Commit()
}

func TestRollbackReturnsQuota(t *testing.T) {
	rdb := startRedis(t)
	ctx := context.Background()
	l := NewLimiter(rdb, 1, nil)
	now := time.Now()

	comp, err := l.Reserve(ctx, 1, now)
	require.NoError(t, err)
	comp.RollbackUnlessCommitted()

	comp, err = l.Reserve(ctx, 1, now)
	require.NoError(t, err)
	comp.Commit()

	n, err := rdb.ZCard(ctx, key(1)).Result()
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
