package ledger

import (
	"context"
	"sync"
	"testing"
	"time"

	"social-wallet-api/pkg/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiter_SameEndpointSharesBucket(t *testing.T) {
	rl := NewRateLimiter(10, 2)

	var wg sync.WaitGroup
	seen := make(chan any, 50)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			seen <- rl.get(EndpointSubmit)
		}()
	}
	wg.Wait()
	close(seen)

	first := rl.get(EndpointSubmit)
	for l := range seen {
		assert.Same(t, first, l)
	}
	assert.NotSame(t, first, rl.get(EndpointQuery))
}

func TestRateLimiter_WaitHonoursContext(t *testing.T) {
	rl := NewRateLimiter(0.001, 1)

	require.NoError(t, rl.Wait(context.Background(), EndpointSubmit))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	err := rl.Wait(ctx, EndpointSubmit)
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeLedgerUnavailable))
}

func TestRateLimiter_NonPositiveRateIsUnlimited(t *testing.T) {
	rl := NewRateLimiter(0, 0)
	ctx := context.Background()
	for i := 0; i < 100; i++ {
		require.NoError(t, rl.Wait(ctx, EndpointQuery))
	}
}
