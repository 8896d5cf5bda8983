package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/algopath/community-bot/internal/http/response"
)

// Limiter decides whether one more request under the key fits inside
// the window.
type Limiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, time.Duration, error)
}

type fixedWindow struct {
	count       int
	windowStart time.Time
}

type localFixedWindowLimiter struct {
	mu      sync.Mutex
	store   map[string]*fixedWindow
	cleanup time.Time
}

func NewLocalFixedWindowLimiter() Limiter {
	return &localFixedWindowLimiter{
		store:   make(map[string]*fixedWindow),
		cleanup: time.Now().Add(time.Minute),
	}
}

func (l *localFixedWindowLimiter) Allow(_ context.Context, key string, limit int, window time.Duration) (bool, time.Duration, error) {
	now := time.Now()
	l.mu.Lock()
	defer l.mu.Unlock()

	if now.After(l.cleanup) {
		for k, v := range l.store {
			if now.Sub(v.windowStart) > 2*window {
				delete(l.store, k)
			}
		}
		l.cleanup = now.Add(window)
	}

	entry, ok := l.store[key]
	if !ok || now.Sub(entry.windowStart) >= window {
		l.store[key] = &fixedWindow{count: 1, windowStart: now}
		return true, 0, nil
	}
	if entry.count >= limit {
		retryAfter := window - now.Sub(entry.windowStart)
		if retryAfter < 0 {
			retryAfter = 0
		}
		return false, retryAfter, nil
	}
	entry.count++
	return true, 0, nil
}

// RateLimiter rejects requests over the per-key quota. Limiter
// backend errors fail closed.
type RateLimiter struct {
	limiter Limiter
	limit   int
	window  time.Duration
	logger  *slog.Logger
}

func NewRateLimiter(limiter Limiter, limit int, window time.Duration, logger *slog.Logger) *RateLimiter {
	if limiter == nil {
		limiter = NewLocalFixedWindowLimiter()
	}
	return &RateLimiter{limiter: limiter, limit: limit, window: window, logger: logger}
}

func (rl *RateLimiter) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := clientIPKey(r)
			allowed, retryAfter, err := rl.limiter.Allow(r.Context(), key, rl.limit, rl.window)
			if err != nil {
				rl.logger.Warn("rate limiter backend unavailable, rejecting request", "error", err)
				w.Header().Set("Retry-After", retryAfterHeader(rl.window))
				response.Error(w, http.StatusTooManyRequests, "Too many requests. Please try again later.")
				return
			}
			if !allowed {
				w.Header().Set("Retry-After", retryAfterHeader(retryAfter))
				response.Error(w, http.StatusTooManyRequests, "Too many requests. Please try again after 15 minutes.")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientIPKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}

func retryAfterHeader(d time.Duration) string {
	seconds := int(d.Round(time.Second).Seconds())
	if seconds <= 0 {
		seconds = 1
	}
	return fmt.Sprintf("%d", seconds)
}
