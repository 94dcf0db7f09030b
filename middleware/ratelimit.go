package middleware

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/medisync/hospital-api/config"
	"github.com/medisync/hospital-api/util"
)

const (
	defaultRateLimit  = 5
	defaultRateWindow = 15 * time.Minute
)

// RateLimitConfig bounds how many requests a single client IP may make
// within the window. By default the counter is scoped to the request path;
// setting Scope instead shares one counter per IP across every route the
// limiter is mounted on, which is how the API-wide cap works.
type RateLimitConfig struct {
	Limit  int
	Window time.Duration
	Scope  string
}

func (cfg RateLimitConfig) key(clientIP, endpoint string) string {
	if cfg.Scope != "" {
		return fmt.Sprintf("ratelimit:%s:%s", cfg.Scope, clientIP)
	}
	return rateLimitKey(clientIP, endpoint)
}

func rateLimitKey(clientIP, endpoint string) string {
	return fmt.Sprintf("ratelimit:%s:%s", endpoint, clientIP)
}

// RateLimiter returns a middleware enforcing a per-IP counter backed by
// Redis. When Redis is unreachable the request is allowed through so an
// infrastructure outage does not lock everyone out; the failure is recorded
// in the security log instead.
func RateLimiter(config RateLimitConfig) gin.HandlerFunc {
	if config.Limit == 0 {
		config.Limit = defaultRateLimit
	}
	if config.Window == 0 {
		config.Window = defaultRateWindow
	}

	return func(c *gin.Context) {
		clientIP := c.ClientIP()
		endpoint := c.Request.URL.Path

		allowed, err := checkRateLimit(config.key(clientIP, endpoint), config.Limit, config.Window)
		if err != nil {
			util.LogSecurityEvent(util.SecurityEvent{
				EventType: util.EventSuspiciousActivity,
				IP:        clientIP,
				Message:   fmt.Sprintf("Rate limit check failed: %v", err),
			})
			c.Next()
			return
		}

		if !allowed {
			util.LogRateLimitExceeded(util.RateLimitParams{IP: clientIP, Endpoint: endpoint})
			util.CallUserError(c, util.APIErrorParams{
				Msg: "Too many requests. Please try again later.",
				Err: fmt.Errorf("rate limit exceeded"),
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// checkRateLimit increments the counter for key and reports whether the
// caller is still within limit. The TTL is set only on the first increment
// so the window stays fixed-length; renewing it on every request would let
// a steady probe keep the counter alive forever.
func checkRateLimit(key string, limit int, window time.Duration) (bool, error) {
	rdb := config.GetRedisClient()
	if rdb == nil {
		return true, nil
	}

	ctx := context.Background()
	count, err := rdb.Incr(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check rate limit: %w", err)
	}
	if count == 1 {
		if err := rdb.Expire(ctx, key, window).Err(); err != nil {
			return false, fmt.Errorf("failed to set rate limit window: %w", err)
		}
	}

	return count <= int64(limit), nil
}

// ResetRateLimit clears the per-endpoint counter for a client/endpoint pair.
func ResetRateLimit(clientIP, endpoint string) error {
	rdb := config.GetRedisClient()
	if rdb == nil {
		return fmt.Errorf("redis not available")
	}
	return rdb.Del(context.Background(), rateLimitKey(clientIP, endpoint)).Err()
}
