package redis

import (
	"context"
	"fmt"
	"time"

	"social-wallet-api/internal/core/ports"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

// releaseScript deletes the lock only if the caller still holds it, so a
// holder whose TTL lapsed cannot free a lock someone else now owns.
var releaseScript = goredis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// LockStore implements ports.LockStore using Redis SET NX PX.
type LockStore struct {
	client *goredis.Client
	prefix string
	retry  time.Duration
}

// NewLockStore creates a new Redis-backed lock store.
func NewLockStore(client *goredis.Client) *LockStore {
	return &LockStore{
		client: client,
		prefix: "lock:",
		retry:  50 * time.Millisecond,
	}
}

// Acquire polls for the lock until it is free or wait elapses. A zero wait
// makes a single attempt. Returns ports.ErrLockNotAcquired on contention.
func (s *LockStore) Acquire(ctx context.Context, key string, ttl, wait time.Duration) (string, error) {
	token := uuid.NewString()
	deadline := time.Now().Add(wait)

	for {
		ok, err := s.client.SetNX(ctx, s.prefix+key, token, ttl).Result()
		if err != nil {
			return "", fmt.Errorf("redis lock acquire: %w", err)
		}
		if ok {
			return token, nil
		}
		if !time.Now().Before(deadline) {
			return "", ports.ErrLockNotAcquired
		}

		timer := time.NewTimer(s.retry)
		select {
		case <-ctx.Done():
			timer.Stop()
			return "", ctx.Err()
		case <-timer.C:
		}
	}
}

// Release frees the lock if token still owns it. Releasing a lock that
// expired or was taken over is not an error.
func (s *LockStore) Release(ctx context.Context, key, token string) error {
	if err := releaseScript.Run(ctx, s.client, []string{s.prefix + key}, token).Err(); err != nil {
		return fmt.Errorf("redis lock release: %w", err)
	}
	return nil
}
