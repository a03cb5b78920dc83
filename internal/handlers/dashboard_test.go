package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/clipstack/backend/internal/middleware"
	"github.com/clipstack/backend/internal/views"
)

func TestDashboardStats(t *testing.T) {
	env := newTestEnv(t)
	alice, aliceToken := env.createUser(t, "alice")
	_, bobToken := env.createUser(t, "bob")

	published := env.createVideo(t, alice.ID, "hit", true)
	env.createVideo(t, alice.ID, "draft", false)

	if rec := env.do(t, http.MethodPost, "/api/v1/subscriptions/c/"+alice.ID, bobToken, nil, ""); rec.Code != http.StatusOK {
		t.Fatalf("subscribe: got %d", rec.Code)
	}
	if rec := env.do(t, http.MethodPost, "/api/v1/likes/toggle/v/"+published.ID, bobToken, nil, ""); rec.Code != http.StatusOK {
		t.Fatalf("like: got %d", rec.Code)
	}
	if rec := env.do(t, http.MethodGet, "/api/v1/videos/"+published.ID, bobToken, nil, ""); rec.Code != http.StatusOK {
		t.Fatalf("view: got %d", rec.Code)
	}

	rec := env.do(t, http.MethodGet, "/api/v1/dashboard/stats", aliceToken, nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	data := decodeEnvelope(t, rec)["data"].(map[string]any)
	if data["totalVideos"] != float64(2) {
		t.Fatalf("expected totalVideos 2, got %v", data["totalVideos"])
	}
	if data["totalViews"] != float64(1) {
		t.Fatalf("expected totalViews 1, got %v", data["totalViews"])
	}
	if data["totalSubscribers"] != float64(1) {
		t.Fatalf("expected totalSubscribers 1, got %v", data["totalSubscribers"])
	}
	if data["totalLikes"] != float64(1) {
		t.Fatalf("expected totalLikes 1, got %v", data["totalLikes"])
	}
}

func TestDashboardHandlerServesStatsDirectly(t *testing.T) {
	env := newTestEnv(t)
	alice, _ := env.createUser(t, "alice")
	env.createVideo(t, alice.ID, "solo", true)

	handler := DashboardHandler{
		Stats: views.NewStatsCache(env.store, time.Minute),
		Query: env.store,
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/dashboard/stats", nil)
	req = req.WithContext(middleware.WithUser(req.Context(), alice.Sanitized()))
	rec := httptest.NewRecorder()
	handler.ChannelStats(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	data := decodeEnvelope(t, rec)["data"].(map[string]any)
	if data["totalVideos"] != float64(1) {
		t.Fatalf("expected totalVideos 1, got %v", data["totalVideos"])
	}
}

func TestDashboardVideosIncludeDrafts(t *testing.T) {
	env := newTestEnv(t)
	alice, token := env.createUser(t, "alice")
	env.createVideo(t, alice.ID, "published", true)
	env.createVideo(t, alice.ID, "draft", false)

	rec := env.do(t, http.MethodGet, "/api/v1/dashboard/videos", token, nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	items := decodeEnvelope(t, rec)["data"].(map[string]any)["items"].([]any)
	if len(items) != 2 {
		t.Fatalf("expected both videos on the dashboard, got %d", len(items))
	}
}
