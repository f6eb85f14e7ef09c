package middleware

import (
	"context"
	"fmt"
	"strconv"
	"time"

	redisStore "social-wallet-api/internal/adapter/storage/redis"
	"social-wallet-api/pkg/apperror"
	"social-wallet-api/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RateLimitRule defines a rate limit for an endpoint group.
type RateLimitRule struct {
	Limit  int64
	Window time.Duration
}

// Counter is the fixed-window counter behind RateLimiter.
type Counter interface {
	Allow(ctx context.Context, key string, limit int64, window time.Duration) (*redisStore.RateLimitResult, error)
}

// RateLimitRules builds the per-group limits. Non-positive per-minute values
// fall back to the defaults.
func RateLimitRules(authPerMinute, walletPerMinute, paymentPerMinute int) map[string]RateLimitRule {
	perMinute := func(n, def int) RateLimitRule {
		if n <= 0 {
			n = def
		}
		return RateLimitRule{Limit: int64(n), Window: time.Minute}
	}
	return map[string]RateLimitRule{
		"auth":     perMinute(authPerMinute, 10),
		"wallets":  perMinute(walletPerMinute, 60),
		"payments": perMinute(paymentPerMinute, 20),
	}
}

// RateLimiter creates a rate-limiting middleware for a given endpoint group.
// Authenticated requests are counted per user, others per client IP. A
// Redis failure lets the request through.
func RateLimiter(store Counter, group string, rule RateLimitRule, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := fmt.Sprintf("%s:%s", extractIdentifier(c), group)

		result, err := store.Allow(c.Request.Context(), key, rule.Limit, rule.Window)
		if err != nil {
			log.Warn().Err(err).Str("group", group).Msg("rate limit check failed, allowing request (degraded mode)")
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.FormatInt(result.Limit, 10))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(result.Remaining, 10))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt, 10))

		if !result.Allowed {
			retryAfter := result.ResetAt - time.Now().Unix()
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Header("Retry-After", strconv.FormatInt(retryAfter, 10))
			response.Error(c, apperror.ErrRateLimitExceeded())
			c.Abort()
			return
		}

		c.Next()
	}
}

func extractIdentifier(c *gin.Context) string {
	if id, ok := UserID(c); ok {
		return "user:" + id.String()
	}
	return "ip:" + c.ClientIP()
}
