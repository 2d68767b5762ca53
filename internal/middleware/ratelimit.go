package middleware

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/FachruDev/backend-codecraft/internal/metrics"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

var rejectRateLimited = rejection{
	Message: "Too many requests, please try again later",
	Error:   "RATE_LIMITED",
}

// RateLimiterConfig holds configuration for a fixed-window rate limiter.
type RateLimiterConfig struct {
	// Name labels the limiter in keys and metrics.
	Name string
	// Window is the fixed counting window.
	Window time.Duration
	// Max is the request ceiling per client IP per window.
	Max int
	// CountOnlyFailures makes the limiter count a request only when the
	// response status is >= 400, so legitimate traffic is not throttled.
	// Used by the login limiter to count failed attempts only.
	CountOnlyFailures bool
}

// RateLimiter returns middleware enforcing a per-client-IP fixed-window
// ceiling backed by Redis, so the window is shared across instances. If
// Redis is unreachable the limiter fails open and logs.
func RateLimiter(client *redis.Client, m *metrics.Metrics, cfg RateLimiterConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		key := fmt.Sprintf("ratelimit:%s:%s", cfg.Name, c.ClientIP())

		count, err := client.Get(ctx, key).Int()
		if err != nil && err != redis.Nil {
			log.Printf("Rate limiter %s unavailable, failing open: %v", cfg.Name, err)
			c.Next()
			return
		}

		if count >= cfg.Max {
			if m != nil {
				m.RateLimitRejections.WithLabelValues(cfg.Name).Inc()
			}
			c.AbortWithStatusJSON(http.StatusTooManyRequests, rejectRateLimited)
			return
		}

		if cfg.CountOnlyFailures {
			c.Next()
			if c.Writer.Status() < http.StatusBadRequest {
				return
			}
		}

		total, err := client.Incr(ctx, key).Result()
		if err != nil {
			log.Printf("Rate limiter %s failed to count request: %v", cfg.Name, err)
		} else if total == 1 {
			// First hit in this window starts the window timer.
			client.Expire(ctx, key, cfg.Window)
		}

		if !cfg.CountOnlyFailures {
			c.Next()
		}
	}
}
