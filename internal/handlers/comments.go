package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/clipstack/backend/internal/models"
	"github.com/clipstack/backend/internal/query"
	"github.com/clipstack/backend/internal/repositories"
	"github.com/clipstack/backend/internal/views"
)

// CommentHandler implements video comment endpoints.
type CommentHandler struct {
	Comments CommentStore
	Videos   VideoStore
	Query    query.Scanner
	NowFunc  func() time.Time
}

// List handles GET /api/v1/comments/{videoId} requests.
func (h CommentHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if _, ok := currentUser(r); !ok {
		respondError(ctx, w, http.StatusUnauthorized, "unauthorized request")
		return
	}

	videoID := r.PathValue("videoId")
	if _, err := h.Videos.FindByID(ctx, videoID); err != nil {
		respondStoreError(ctx, w, err, "video not found")
		return
	}

	page, limit := pageParams(r)
	result, err := query.Paginate(ctx, h.Query, views.VideoComments(videoID), page, limit)
	if err != nil {
		respondStoreError(ctx, w, err, "comments not found")
		return
	}

	respond(ctx, w, http.StatusOK, "comments fetched", result)
}

// Create handles POST /api/v1/comments/{videoId} requests.
func (h CommentHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, ok := currentUser(r)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "unauthorized request")
		return
	}

	videoID := r.PathValue("videoId")
	if _, err := h.Videos.FindByID(ctx, videoID); err != nil {
		respondStoreError(ctx, w, err, "video not found")
		return
	}

	content, ok := decodeContent(w, r)
	if !ok {
		return
	}

	now := h.now()
	comment := models.Comment{
		ID:        uuid.NewString(),
		Content:   content,
		Video:     videoID,
		Owner:     user.ID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := h.Comments.Create(ctx, comment); err != nil {
		respondStoreError(ctx, w, err, "video not found")
		return
	}

	respond(ctx, w, http.StatusCreated, "comment added", comment)
}

// Update handles PATCH /api/v1/comments/c/{commentId} requests.
func (h CommentHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, ok := currentUser(r)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "unauthorized request")
		return
	}

	comment, err := h.ownedComment(w, r, user.ID)
	if err != nil {
		return
	}

	content, ok := decodeContent(w, r)
	if !ok {
		return
	}

	updated, err := h.Comments.UpdateContent(ctx, comment.ID, content)
	if err != nil {
		respondStoreError(ctx, w, err, "comment not found")
		return
	}
	respond(ctx, w, http.StatusOK, "comment updated", updated)
}

// Delete handles DELETE /api/v1/comments/c/{commentId} requests.
func (h CommentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, ok := currentUser(r)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "unauthorized request")
		return
	}

	comment, err := h.ownedComment(w, r, user.ID)
	if err != nil {
		return
	}

	if err := h.Comments.Delete(ctx, comment.ID); err != nil {
		respondStoreError(ctx, w, err, "comment not found")
		return
	}
	respond(ctx, w, http.StatusOK, "comment deleted", map[string]any{})
}

func (h CommentHandler) ownedComment(w http.ResponseWriter, r *http.Request, ownerID string) (models.Comment, error) {
	ctx := r.Context()

	comment, err := h.Comments.FindByID(ctx, r.PathValue("commentId"))
	if err != nil {
		respondStoreError(ctx, w, err, "comment not found")
		return models.Comment{}, err
	}
	if comment.Owner != ownerID {
		respondError(ctx, w, http.StatusNotFound, "comment not found")
		return models.Comment{}, repositories.ErrNotFound
	}
	return comment, nil
}

func (h CommentHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}

// decodeContent reads a {"content": "..."} body, rejecting blank content.
// The error response is already written when ok is false.
func decodeContent(w http.ResponseWriter, r *http.Request) (string, bool) {
	ctx := r.Context()

	var req struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "invalid request body")
		return "", false
	}
	content := strings.TrimSpace(req.Content)
	if content == "" {
		respondError(ctx, w, http.StatusBadRequest, "content is required")
		return "", false
	}
	return content, true
}
