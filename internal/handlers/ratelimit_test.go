package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

type captureLimiter struct {
	allow bool
	keys  []string
}

func (l *captureLimiter) Allow(key string) bool {
	l.keys = append(l.keys, key)
	return l.allow
}

func TestAllowRequestScopesKeyByEndpoint(t *testing.T) {
	limiter := &captureLimiter{allow: true}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/login", nil)
	req.RemoteAddr = "192.0.2.7:51234"

	if !allowRequest(limiter, req, "login") {
		t.Fatalf("allowing limiter denied the request")
	}
	if len(limiter.keys) != 1 || limiter.keys[0] != "login:192.0.2.7" {
		t.Fatalf("unexpected limiter keys %v", limiter.keys)
	}

	if !allowRequest(nil, req, "login") {
		t.Fatalf("nil limiter must not guard")
	}
}

func TestClientIPPrefersForwardedHeader(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:443"
	req.Header.Set("X-Forwarded-For", " 203.0.113.9 , 10.0.0.1")

	if ip := clientIP(req); ip != "203.0.113.9" {
		t.Fatalf("clientIP = %q, want %q", ip, "203.0.113.9")
	}

	req.Header.Del("X-Forwarded-For")
	if ip := clientIP(req); ip != "10.0.0.1" {
		t.Fatalf("clientIP = %q, want %q", ip, "10.0.0.1")
	}
}

func TestLoginRateLimited(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "alice")

	handler := UserHandler{
		Users:    env.users,
		Sessions: env.tokens,
		Limiter:  &captureLimiter{allow: false},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/login", nil)
	rec := httptest.NewRecorder()
	handler.Login(rec, req)

	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d: %s", rec.Code, rec.Body.String())
	}
}
