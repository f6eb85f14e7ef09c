package ledger

import (
	"context"
	"sync"

	"social-wallet-api/pkg/apperror"

	"golang.org/x/time/rate"
)

// Endpoints used as limiter keys by the adapters.
const (
	EndpointSubmit  = "submit"
	EndpointQuery   = "query"
	EndpointHistory = "history"
	EndpointFaucet  = "faucet"
)

// RateLimiter throttles outbound ledger calls with one token bucket per
// endpoint.
type RateLimiter struct {
	mu       sync.RWMutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
}

// NewRateLimiter creates a limiter allowing ratePerSecond requests per
// endpoint. A non-positive rate disables throttling.
func NewRateLimiter(ratePerSecond float64, burst int) *RateLimiter {
	limit := rate.Limit(ratePerSecond)
	if ratePerSecond <= 0 {
		limit = rate.Inf
	}
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{
		limiters: make(map[string]*rate.Limiter),
		limit:    limit,
		burst:    burst,
	}
}

// Wait blocks until the endpoint has capacity. A cancelled context surfaces
// as LedgerUnavailable since no call was made.
func (r *RateLimiter) Wait(ctx context.Context, endpoint string) error {
	if err := r.get(endpoint).Wait(ctx); err != nil {
		return apperror.ErrLedgerUnavailable(err)
	}
	return nil
}

func (r *RateLimiter) get(endpoint string) *rate.Limiter {
	r.mu.RLock()
	l, ok := r.limiters[endpoint]
	r.mu.RUnlock()
	if ok {
		return l
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if l, ok = r.limiters[endpoint]; ok {
		return l
	}
	l = rate.NewLimiter(r.limit, r.burst)
	r.limiters[endpoint] = l
	return l
}
