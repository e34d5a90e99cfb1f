package lease

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
)

// acquireScript takes the lease when free or renews it when this holder owns it
const acquireScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
  redis.call("PEXPIRE", KEYS[1], ARGV[2])
  return 1
end
if redis.call("SET", KEYS[1], ARGV[1], "NX", "PX", ARGV[2]) then
  return 1
end
return 0
`

// releaseScript deletes the key only if this holder still owns it
const releaseScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`

// RedisLease is a single-holder lease on a Redis key shared by every server process
type RedisLease struct {
	client  *redis.Client
	key     string
	token   string
	acquire *redis.Script
	release *redis.Script
}

// NewRedisLease creates a lease on key with a random holder token
func NewRedisLease(client *redis.Client, key string) (*RedisLease, error) {
	if client == nil {
		return nil, errors.New("lease client not configured")
	}
	if key == "" {
		return nil, errors.New("lease key is empty")
	}
	return &RedisLease{
		client:  client,
		key:     key,
		token:   uuid.NewString(),
		acquire: redis.NewScript(acquireScript),
		release: redis.NewScript(releaseScript),
	}, nil
}

// Acquire takes or renews the lease for ttl
func (l *RedisLease) Acquire(ctx context.Context, ttl time.Duration) (bool, error) {
	if ttl <= 0 {
		return false, errors.New("lease ttl must be positive")
	}
	held, err := l.acquire.Run(ctx, l.client, []string{l.key}, l.token, ttl.Milliseconds()).Int()
	if err != nil {
		return false, fmt.Errorf("failed to acquire lease %s: %w", l.key, err)
	}
	return held == 1, nil
}

// Release gives the lease up if this holder owns it
func (l *RedisLease) Release(ctx context.Context) error {
	if err := l.release.Run(ctx, l.client, []string{l.key}, l.token).Err(); err != nil {
		return fmt.Errorf("failed to release lease %s: %w", l.key, err)
	}
	return nil
}

// Connect opens a Redis client and checks it answers
func Connect(ctx context.Context, addr, password string, db int, timeout time.Duration) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  timeout,
		ReadTimeout:  timeout,
		WriteTimeout: timeout,
	})

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis at %s: %w", addr, err)
	}
	return client, nil
}
