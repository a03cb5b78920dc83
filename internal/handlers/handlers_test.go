package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/clipstack/backend/internal/auth"
	"github.com/clipstack/backend/internal/media"
	"github.com/clipstack/backend/internal/models"
	"github.com/clipstack/backend/internal/repositories"
	"github.com/clipstack/backend/internal/store"
	"github.com/clipstack/backend/internal/views"
)

// testEnv wires the full handler stack over the in-memory store.
type testEnv struct {
	mux    *http.ServeMux
	store  *store.MemoryStore
	users  *repositories.UserRepository
	videos *repositories.VideoRepository
	tokens *auth.TokenManager
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	mem := store.NewMemoryStore()
	users := repositories.NewUserRepository(mem)
	tokens := auth.NewTokenManager(users, "access-secret", "refresh-secret", 15*time.Minute, 240*time.Hour)

	mediaStore, err := media.NewDirStorage(t.TempDir(), "/media")
	if err != nil {
		t.Fatalf("create media storage: %v", err)
	}

	deps := Dependencies{
		Users:         users,
		Sessions:      tokens,
		Videos:        repositories.NewVideoRepository(mem),
		Comments:      repositories.NewCommentRepository(mem),
		Tweets:        repositories.NewTweetRepository(mem),
		Likes:         repositories.NewLikeRepository(mem),
		Subscriptions: repositories.NewSubscriptionRepository(mem),
		Playlists:     repositories.NewPlaylistRepository(mem),
		Stats:         views.NewStatsCache(mem, time.Minute),
		Media:         mediaStore,
		Query:         mem,
		Verifier:      tokens,
	}

	mux := http.NewServeMux()
	RegisterRoutes(mux, deps)

	return &testEnv{
		mux:    mux,
		store:  mem,
		users:  users,
		videos: repositories.NewVideoRepository(mem),
		tokens: tokens,
	}
}

// createUser inserts an account directly and returns it with a valid access
// token.
func (env *testEnv) createUser(t *testing.T, username string) (models.User, string) {
	t.Helper()
	ctx := context.Background()

	hash, err := auth.HashPassword("password123")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}

	now := time.Now().UTC()
	user := models.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        username + "@example.com",
		FullName:     "Test " + username,
		Avatar:       "/media/" + username + ".png",
		WatchHistory: []string{},
		Password:     hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := env.users.Create(ctx, user); err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}

	pair, err := env.tokens.Issue(ctx, user)
	if err != nil {
		t.Fatalf("issue tokens for %s: %v", username, err)
	}
	return user, pair.AccessToken
}

func (env *testEnv) createVideo(t *testing.T, ownerID, title string, published bool) models.Video {
	t.Helper()

	now := time.Now().UTC()
	video := models.Video{
		ID:          uuid.NewString(),
		VideoFile:   "/media/" + uuid.NewString() + ".mp4",
		Thumbnail:   "/media/" + uuid.NewString() + ".png",
		Title:       title,
		Duration:    120,
		IsPublished: published,
		Owner:       ownerID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := env.videos.Create(context.Background(), video); err != nil {
		t.Fatalf("create video: %v", err)
	}
	return video
}

func (env *testEnv) do(t *testing.T, method, target, token string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, target, body)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	env.mux.ServeHTTP(rec, req)
	return rec
}

func (env *testEnv) doJSON(t *testing.T, method, target, token string, payload any) *httptest.ResponseRecorder {
	t.Helper()

	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	return env.do(t, method, target, token, bytes.NewReader(body), "application/json")
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var envelope map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode envelope: %v (body %s)", err, rec.Body.String())
	}
	return envelope
}

// multipartBody builds a multipart form with the given fields and files.
func multipartBody(t *testing.T, fields map[string]string, files map[string]string) (*bytes.Buffer, string) {
	t.Helper()

	buf := &bytes.Buffer{}
	writer := multipart.NewWriter(buf)
	for name, value := range fields {
		if err := writer.WriteField(name, value); err != nil {
			t.Fatalf("write field %s: %v", name, err)
		}
	}
	for field, filename := range files {
		part, err := writer.CreateFormFile(field, filename)
		if err != nil {
			t.Fatalf("create file part %s: %v", field, err)
		}
		if _, err := part.Write([]byte("file-contents")); err != nil {
			t.Fatalf("write file part %s: %v", field, err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}
	return buf, writer.FormDataContentType()
}
