package handlers

import (
	"fmt"
	"net/http"
	"testing"
)

func TestCommentLifecycle(t *testing.T) {
	env := newTestEnv(t)
	alice, _ := env.createUser(t, "alice")
	_, bobToken := env.createUser(t, "bob")
	video := env.createVideo(t, alice.ID, "discussed", true)

	rec := env.doJSON(t, http.MethodPost, "/api/v1/comments/"+video.ID, bobToken, map[string]string{
		"content": "great clip",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	created := decodeEnvelope(t, rec)["data"].(map[string]any)
	commentID := created["id"].(string)

	rec = env.doJSON(t, http.MethodPatch, "/api/v1/comments/c/"+commentID, bobToken, map[string]string{
		"content": "great clip, edited",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 updating own comment, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = env.do(t, http.MethodDelete, "/api/v1/comments/c/"+commentID, bobToken, nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 deleting own comment, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = env.do(t, http.MethodGet, "/api/v1/comments/"+video.ID, bobToken, nil, "")
	items := decodeEnvelope(t, rec)["data"].(map[string]any)["items"].([]any)
	if len(items) != 0 {
		t.Fatalf("expected no comments after delete, got %d", len(items))
	}
}

func TestCommentRejectsBlankContent(t *testing.T) {
	env := newTestEnv(t)
	alice, token := env.createUser(t, "alice")
	video := env.createVideo(t, alice.ID, "quiet", true)

	rec := env.doJSON(t, http.MethodPost, "/api/v1/comments/"+video.ID, token, map[string]string{
		"content": "   ",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for blank content, got %d", rec.Code)
	}
}

func TestCommentOwnershipGuards(t *testing.T) {
	env := newTestEnv(t)
	alice, aliceToken := env.createUser(t, "alice")
	_, bobToken := env.createUser(t, "bob")
	video := env.createVideo(t, alice.ID, "guarded", true)

	rec := env.doJSON(t, http.MethodPost, "/api/v1/comments/"+video.ID, aliceToken, map[string]string{
		"content": "mine",
	})
	commentID := decodeEnvelope(t, rec)["data"].(map[string]any)["id"].(string)

	rec = env.doJSON(t, http.MethodPatch, "/api/v1/comments/c/"+commentID, bobToken, map[string]string{
		"content": "not yours",
	})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 updating a foreign comment, got %d", rec.Code)
	}

	rec = env.do(t, http.MethodDelete, "/api/v1/comments/c/"+commentID, bobToken, nil, "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 deleting a foreign comment, got %d", rec.Code)
	}
}

func TestCommentListPaginates(t *testing.T) {
	env := newTestEnv(t)
	alice, token := env.createUser(t, "alice")
	video := env.createVideo(t, alice.ID, "popular", true)

	for i := 0; i < 12; i++ {
		rec := env.doJSON(t, http.MethodPost, "/api/v1/comments/"+video.ID, token, map[string]string{
			"content": fmt.Sprintf("comment %02d", i),
		})
		if rec.Code != http.StatusCreated {
			t.Fatalf("seed comment %d: got %d", i, rec.Code)
		}
	}

	rec := env.do(t, http.MethodGet, "/api/v1/comments/"+video.ID+"?page=2&limit=5", token, nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	data := decodeEnvelope(t, rec)["data"].(map[string]any)
	if data["totalDocs"] != float64(12) || data["totalPages"] != float64(3) {
		t.Fatalf("unexpected pagination totals: %+v", data)
	}
	if len(data["items"].([]any)) != 5 {
		t.Fatalf("expected 5 items on page 2, got %d", len(data["items"].([]any)))
	}

	rec = env.do(t, http.MethodGet, "/api/v1/comments/missing-video", token, nil, "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for an unknown video, got %d", rec.Code)
	}
}
