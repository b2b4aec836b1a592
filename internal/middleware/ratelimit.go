package middleware

import (
	"net/http"
	"sync"
	"time"
)

type bucket struct {
	count    int
	resetsAt time.Time
}

// RateLimiter is a fixed-window in-memory limiter, used to slow down admin
// login guessing.
type RateLimiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
}

func NewRateLimiter() *RateLimiter {
	return &RateLimiter{buckets: make(map[string]*bucket)}
}

// Allow reports whether key may proceed given the limit per window.
func (rl *RateLimiter) Allow(key string, limit int, window time.Duration) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	b, ok := rl.buckets[key]
	if !ok || now.After(b.resetsAt) {
		rl.buckets[key] = &bucket{count: 1, resetsAt: now.Add(window)}
		return true
	}
	b.count++
	return b.count <= limit
}

// RateLimit wraps a handler, keying each request through keyFunc.
func RateLimit(rl *RateLimiter, keyFunc func(*http.Request) string, limit int, window time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !rl.Allow(keyFunc(r), limit, window) {
				http.Error(w, "too many requests", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
