package middleware

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter controls how frequently a caller may perform an action.
type RateLimiter interface {
	Allow(key string) bool
}

// ipRateLimiter keeps one token bucket per key. Keys are usually client IPs
// prefixed with an endpoint scope, so a flood of register attempts does not
// also starve logins from the same address.
type ipRateLimiter struct {
	limit rate.Limit
	burst int
	ttl   time.Duration
	now   func() time.Time

	mu      sync.Mutex
	buckets map[string]*bucket
}

type bucket struct {
	limiter *rate.Limiter
	touched time.Time
}

// NewIPRateLimiter builds a limiter allowing `requests` events per `window`
// plus a burst allowance. Idle buckets are evicted after ttl.
func NewIPRateLimiter(requests int, window time.Duration, burst int, ttl time.Duration) RateLimiter {
	if requests <= 0 {
		requests = 1
	}
	if window <= 0 {
		window = time.Second
	}
	if burst <= 0 {
		burst = 1
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}

	return &ipRateLimiter{
		limit:   rate.Every(window / time.Duration(requests)),
		burst:   burst,
		ttl:     ttl,
		now:     time.Now,
		buckets: make(map[string]*bucket),
	}
}

func (l *ipRateLimiter) Allow(key string) bool {
	if key == "" {
		key = "unknown"
	}
	now := l.now()

	l.mu.Lock()
	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.buckets[key] = b
	}
	b.touched = now
	l.evictIdle(now)
	l.mu.Unlock()

	return b.limiter.Allow()
}

// evictIdle runs under the mutex.
func (l *ipRateLimiter) evictIdle(now time.Time) {
	for key, b := range l.buckets {
		if now.Sub(b.touched) > l.ttl {
			delete(l.buckets, key)
		}
	}
}
