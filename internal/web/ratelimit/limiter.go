// Package ratelimit throttles requests per key, in memory or in Redis.
package ratelimit

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/splashsync/connector/internal/web/response"
)

// ErrLimitExceeded is rendered with 429 when a key has no requests left
var ErrLimitExceeded = errors.New("rate limit exceeded")

// Limiter decides whether one more request is allowed for key
type Limiter interface {
	Allow(ctx context.Context, key string) (Info, error)
}

// Info is the limiter state after a decision
type Info struct {
	Limit     int
	Remaining int
	ResetAt   time.Time
	Allowed   bool
}

// Response headers set by Middleware
const (
	HeaderLimit     = "X-RateLimit-Limit"
	HeaderRemaining = "X-RateLimit-Remaining"
	HeaderReset     = "X-RateLimit-Reset"
)

// Middleware rejects requests once the key returned by keyFn is exhausted.
// Limiter failures are logged and the request is let through.
func Middleware(l Limiter, keyFn func(r *http.Request) string, logger *zap.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := keyFn(r)
			info, err := l.Allow(r.Context(), key)
			if err != nil {
				logger.Warn("rate limiter unavailable", zap.String("key", key), zap.Error(err))
				next.ServeHTTP(w, r)
				return
			}

			h := w.Header()
			h.Set(HeaderLimit, strconv.Itoa(info.Limit))
			h.Set(HeaderRemaining, strconv.Itoa(info.Remaining))
			h.Set(HeaderReset, strconv.FormatInt(info.ResetAt.Unix(), 10))

			if !info.Allowed {
				retry := time.Until(info.ResetAt)
				if retry < time.Second {
					retry = time.Second
				}
				h.Set("Retry-After", strconv.Itoa(int(retry.Seconds())))
				response.RenderError(w, http.StatusTooManyRequests, ErrLimitExceeded)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
