package middleware

import (
	"testing"
	"time"
)

func TestRateLimiterEnforcesBurst(t *testing.T) {
	limiter := NewIPRateLimiter(1, time.Hour, 2, time.Hour)

	for i := 0; i < 2; i++ {
		if !limiter.Allow("10.0.0.1") {
			t.Fatalf("request %d within burst was denied", i)
		}
	}
	if limiter.Allow("10.0.0.1") {
		t.Fatalf("request beyond burst was allowed")
	}
}

func TestRateLimiterKeysAreIndependent(t *testing.T) {
	limiter := NewIPRateLimiter(1, time.Hour, 1, time.Hour)

	if !limiter.Allow("register:10.0.0.1") {
		t.Fatalf("first key denied")
	}
	if limiter.Allow("register:10.0.0.1") {
		t.Fatalf("exhausted key allowed")
	}
	if !limiter.Allow("login:10.0.0.1") {
		t.Fatalf("separate scope for the same address was denied")
	}
	if !limiter.Allow("register:10.0.0.2") {
		t.Fatalf("separate address was denied")
	}
}

func TestRateLimiterEvictsIdleBuckets(t *testing.T) {
	limiter := NewIPRateLimiter(1, time.Hour, 1, time.Minute).(*ipRateLimiter)

	base := time.Now()
	limiter.now = func() time.Time { return base }
	limiter.Allow("10.0.0.1")

	limiter.now = func() time.Time { return base.Add(2 * time.Minute) }
	limiter.Allow("10.0.0.2")

	limiter.mu.Lock()
	_, stale := limiter.buckets["10.0.0.1"]
	limiter.mu.Unlock()
	if stale {
		t.Fatalf("idle bucket survived past its ttl")
	}

	// A fresh bucket after eviction starts with full burst again.
	if !limiter.Allow("10.0.0.1") {
		t.Fatalf("re-created bucket denied its first request")
	}
}

func TestRateLimiterBlankKey(t *testing.T) {
	limiter := NewIPRateLimiter(1, time.Hour, 1, time.Hour)

	if !limiter.Allow("") {
		t.Fatalf("first blank-key request denied")
	}
	if limiter.Allow("") {
		t.Fatalf("blank keys must share one bucket")
	}
}
