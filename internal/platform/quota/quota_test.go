package quota

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisabledLimiterAlwaysAllows(t *testing.T) {
	tests := []struct {
		name    string
		limiter *Limiter
	}{
		{"nil limiter", nil},
		{"no redis", NewLimiter(nil, 5, nil)},
		{"zero limit", NewLimiter(redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"}), 0, nil)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for i := 0; i < 10; i++ {
				comp, err := tt.limiter.Reserve(context.Background(), 1, time.Now())
				require.NoError(t, err)
				comp.RollbackUnlessCommitted()
			}
		})
	}
}

func TestUnhealthyRedisFailsOpen(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	defer rdb.Close()
	l := NewLimiter(rdb, 1, func() bool { return false })

	comp, err := l.Reserve(context.Background(), 7, time.Now())
	require.NoError(t, err)
	assert.Empty(t, comp.member)
}

func TestCompensatorCommitPreventsRollback(t *testing.T) {
	c := &Compensator{}
	c.Commit()
	assert.True(t, c.committed)
	// rdb为nil时不会访问Redis
	c.RollbackUnlessCommitted()

	var nilComp *Compensator
	assert.NotPanics(t, nilComp.RollbackUnlessCommitted)
}

func TestKey(t *testing.T) {
	assert.Equal(t, "agent_calls:42", key(42))
}
