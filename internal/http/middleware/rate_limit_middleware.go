package middleware

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"go-session-auth-service/internal/http/response"
)

type windowState struct {
	count   int
	startAt time.Time
}

// RateLimiter is a local fixed-window limiter keyed by client IP.
// State is per-process; limits apply to each node independently.
type RateLimiter struct {
	mu     sync.Mutex
	limit  int
	window time.Duration
	keys   map[string]*windowState
}

func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		limit:  limit,
		window: window,
		keys:   make(map[string]*windowState),
	}
}

func (l *RateLimiter) allow(key string, now time.Time) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	state, ok := l.keys[key]
	if !ok || now.Sub(state.startAt) >= l.window {
		l.keys[key] = &windowState{count: 1, startAt: now}
		if len(l.keys) > 10000 {
			l.evictExpired(now)
		}
		return true, 0
	}
	if state.count >= l.limit {
		return false, state.startAt.Add(l.window).Sub(now)
	}
	state.count++
	return true, 0
}

func (l *RateLimiter) evictExpired(now time.Time) {
	for key, state := range l.keys {
		if now.Sub(state.startAt) >= l.window {
			delete(l.keys, key)
		}
	}
}

func (l *RateLimiter) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if l.limit <= 0 {
				next.ServeHTTP(w, r)
				return
			}
			ok, retryAfter := l.allow(clientKey(r), time.Now())
			if !ok {
				seconds := int(retryAfter.Seconds()) + 1
				w.Header().Set("Retry-After", strconv.Itoa(seconds))
				response.Error(w, r, http.StatusTooManyRequests, "RATE_LIMITED", "too many requests")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
