package rate

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/agenthands/healthrisk/internal/config"
	"github.com/gin-gonic/gin"
	"github.com/go-logr/logr"
)

// NewLimiter returns a new rate limiter.
func NewLimiter(c config.RateLimitConfig, logger logr.Logger) *Limiter {
	log := logger.WithName("rate")
	if !c.Enable {
		log.Info("Rate limiter is disabled")
		return &Limiter{store: &noopStore{}, logger: log}
	}
	var s store
	switch c.StoreType {
	case config.RateLimitStoreRedis:
		s = newRedisStore(c, log)
	default:
		s = newMemoryStore(c, log)
	}
	return &Limiter{store: s, logger: log}
}

// Limiter is a rate limiter.
type Limiter struct {
	store  store
	logger logr.Logger
}

// Take takes a token from the given key if available.
func (l *Limiter) Take(ctx context.Context, key string) (*Result, error) {
	return l.store.Take(ctx, key, 1)
}

// Middleware limits requests per client IP. Store failures let the request through.
func (l *Limiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		res, err := l.Take(c.Request.Context(), c.ClientIP())
		if err != nil {
			l.logger.Error(err, "Failed to take rate limit token", "client", c.ClientIP())
			c.Next()
			return
		}
		SetRateLimitHTTPHeaders(c.Writer, res)
		if !res.Allowed {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"status":  "error",
				"message": "Rate limit exceeded, retry after " + res.RetryAfter.Truncate(time.Second).String(),
			})
			return
		}
		c.Next()
	}
}

// SetRateLimitHTTPHeaders sets rate limit headers to the response.
func SetRateLimitHTTPHeaders(w http.ResponseWriter, res *Result) {
	if res.Limit == -1 {
		// rate limiter is disabled
		return
	}
	w.Header().Set("X-RateLimit-Limit-Requests", strconv.Itoa(res.Limit))
	w.Header().Set("X-RateLimit-Remaining-Requests", strconv.Itoa(res.Remaining))
	w.Header().Set("X-RateLimit-Reset-Requests", res.ResetAfter.Truncate(time.Second).String())
	if !res.Allowed {
		retry := int(res.RetryAfter.Round(time.Second) / time.Second)
		if retry < 1 {
			retry = 1
		}
		w.Header().Set("Retry-After", strconv.Itoa(retry))
		w.Header().Set("X-RateLimit-RetryAfter", res.RetryAfter.Truncate(time.Second).String())
	}
}
