package lease

import (
	"context"
	"testing"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/imperium/internal/application/production"
)

var (
	_ production.Lease = (*RedisLease)(nil)
	_ production.Lease = (*LocalLease)(nil)
)

func TestLocalLease_AlwaysHeld(t *testing.T) {
	l := NewLocalLease()

	held, err := l.Acquire(context.Background(), time.Second)
	require.NoError(t, err)
	assert.True(t, held)
	assert.NoError(t, l.Release(context.Background()))
}

func TestNewRedisLease_Validates(t *testing.T) {
	_, err := NewRedisLease(nil, "k")
	assert.Error(t, err)

	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	defer client.Close()
	_, err = NewRedisLease(client, "")
	assert.Error(t, err)
}

func TestRedisLease_UnreachableServerReportsError(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	l, err := NewRedisLease(client, "imperium:test:lease")
	require.NoError(t, err)

	held, err := l.Acquire(context.Background(), time.Second)
	assert.Error(t, err)
	assert.False(t, held)
}

func TestRedisLease_RejectsNonPositiveTTL(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	defer client.Close()
	l, err := NewRedisLease(client, "k")
	require.NoError(t, err)

	_, err = l.Acquire(context.Background(), 0)
	assert.Error(t, err)
}
