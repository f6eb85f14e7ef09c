package redis

import (
	"context"
	"testing"
	"time"

	"social-wallet-api/internal/core/ports"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLockStore(t *testing.T) (*LockStore, *miniredis.Miniredis) {
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	t.Cleanup(func() { client.Close() })
	store := NewLockStore(client)
	store.retry = 5 * time.Millisecond
	return store, s
}

func TestLockStore_AcquireAndRelease(t *testing.T) {
	store, s := newTestLockStore(t)
	ctx := context.Background()

	token, err := store.Acquire(ctx, "wallet:u1:hedera", time.Minute, 0)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.True(t, s.Exists("lock:wallet:u1:hedera"))

	require.NoError(t, store.Release(ctx, "wallet:u1:hedera", token))
	assert.False(t, s.Exists("lock:wallet:u1:hedera"))
}

func TestLockStore_ContentionReturnsNotAcquired(t *testing.T) {
	store, _ := newTestLockStore(t)
	ctx := context.Background()

	_, err := store.Acquire(ctx, "wallet:u1:stellar", time.Minute, 0)
	require.NoError(t, err)

	_, err = store.Acquire(ctx, "wallet:u1:stellar", time.Minute, 20*time.Millisecond)
	assert.ErrorIs(t, err, ports.ErrLockNotAcquired)
}

func TestLockStore_DifferentKeysIndependent(t *testing.T) {
	store, _ := newTestLockStore(t)
	ctx := context.Background()

	_, err := store.Acquire(ctx, "wallet:u1:hedera", time.Minute, 0)
	require.NoError(t, err)
	_, err = store.Acquire(ctx, "wallet:u1:stellar", time.Minute, 0)
	assert.NoError(t, err)
}

func TestLockStore_ReleaseWithStaleTokenKeepsLock(t *testing.T) {
	store, s := newTestLockStore(t)
	ctx := context.Background()

	_, err := store.Acquire(ctx, "k", time.Minute, 0)
	require.NoError(t, err)

	require.NoError(t, store.Release(ctx, "k", "someone-else"))
	assert.True(t, s.Exists("lock:k"), "lock must survive a release by a non-owner")
}

func TestLockStore_ExpiredLockCanBeRetaken(t *testing.T) {
	store, s := newTestLockStore(t)
	ctx := context.Background()

	first, err := store.Acquire(ctx, "k", time.Second, 0)
	require.NoError(t, err)

	s.FastForward(2 * time.Second)

	second, err := store.Acquire(ctx, "k", time.Minute, 0)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	// the first holder's late release must not free the new owner's lock
	require.NoError(t, store.Release(ctx, "k", first))
	assert.True(t, s.Exists("lock:k"))
}

func TestLockStore_WaiterAcquiresAfterRelease(t *testing.T) {
	store, _ := newTestLockStore(t)
	ctx := context.Background()

	token, err := store.Acquire(ctx, "k", time.Minute, 0)
	require.NoError(t, err)

	go func() {
		time.Sleep(30 * time.Millisecond)
		_ = store.Release(context.Background(), "k", token)
	}()

	_, err = store.Acquire(ctx, "k", time.Minute, 2*time.Second)
	assert.NoError(t, err)
}

func TestLockStore_ContextCancelledWhileWaiting(t *testing.T) {
	store, _ := newTestLockStore(t)

	_, err := store.Acquire(context.Background(), "k", time.Minute, 0)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = store.Acquire(ctx, "k", time.Minute, 5*time.Second)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestLockStore_RedisDown(t *testing.T) {
	store, s := newTestLockStore(t)
	s.Close()

	_, err := store.Acquire(context.Background(), "k", time.Minute, 0)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ports.ErrLockNotAcquired)
}
