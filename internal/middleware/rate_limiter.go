package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"stockroom/internal/apierror"

	"github.com/gin-gonic/gin"
	gocache "github.com/patrickmn/go-cache"
	"github.com/rs/zerolog/log"
)

// AttemptStore counts hits per key inside a fixed window that starts with
// the first hit.
type AttemptStore interface {
	Hit(ctx context.Context, key string, window time.Duration) (int64, error)
}

// MemoryAttemptStore keeps counters in process memory. Expired windows are
// purged by go-cache's janitor.
type MemoryAttemptStore struct {
	cache *gocache.Cache
}

func NewMemoryAttemptStore() *MemoryAttemptStore {
	return &MemoryAttemptStore{cache: gocache.New(time.Minute, 5*time.Minute)}
}

func (s *MemoryAttemptStore) Hit(_ context.Context, key string, window time.Duration) (int64, error) {
	for {
		if err := s.cache.Add(key, int64(1), window); err == nil {
			return 1, nil
		}
		n, err := s.cache.IncrementInt64(key, 1)
		if err == nil {
			return n, nil
		}
		// The entry expired between Add and Increment; start a new window.
	}
}

// ── Login rate limiter ────────────────────────────────────────────────────────

// LoginRateLimiter limits login attempts to limit per minute per IP.
func LoginRateLimiter(store AttemptStore, limit int) gin.HandlerFunc {
	return rateLimit(store, "login", limit, time.Minute, "Too many login attempts. Try again in a minute.")
}

// ── General API rate limiter ──────────────────────────────────────────────────

// RateLimiter returns a general-purpose per-IP rate limiter.
func RateLimiter(store AttemptStore, limit int, window time.Duration) gin.HandlerFunc {
	return rateLimit(store, "api", limit, window, "Too many requests. Try again shortly.")
}

// rateLimit fails open: a store error lets the request through.
func rateLimit(store AttemptStore, scope string, limit int, window time.Duration, message string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limit <= 0 {
			c.Next()
			return
		}
		ip := c.ClientIP()
		n, err := store.Hit(c.Request.Context(), scope+":"+ip, window)
		if err != nil {
			log.Warn().Err(err).Str("scope", scope).Msg("rate limiter store unavailable")
			c.Next()
			return
		}
		if n > int64(limit) {
			log.Warn().
				Str("request_id", c.GetString(RequestIDKey)).
				Str("scope", scope).
				Str("ip", ip).
				Int64("attempts", n).
				Msg("rate limit exceeded")
			c.Header("Retry-After", strconv.Itoa(int(window.Seconds())))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New(message))
			return
		}
		c.Next()
	}
}
