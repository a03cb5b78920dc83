package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/clipstack/backend/internal/models"
	"github.com/clipstack/backend/internal/query"
	"github.com/clipstack/backend/internal/repositories"
	"github.com/clipstack/backend/internal/views"
)

// PlaylistHandler implements playlist endpoints.
type PlaylistHandler struct {
	Playlists PlaylistStore
	Videos    VideoStore
	Users     UserStore
	Query     query.Scanner
	NowFunc   func() time.Time
}

// Create handles POST /api/v1/playlists requests.
func (h PlaylistHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, ok := currentUser(r)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "unauthorized request")
		return
	}

	var req playlistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		respondError(ctx, w, http.StatusBadRequest, "name is required")
		return
	}

	now := h.now()
	playlist := models.Playlist{
		ID:          uuid.NewString(),
		Name:        req.Name,
		Description: strings.TrimSpace(req.Description),
		Owner:       user.ID,
		Videos:      []string{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := h.Playlists.Create(ctx, playlist); err != nil {
		respondStoreError(ctx, w, err, "playlist not found")
		return
	}

	respond(ctx, w, http.StatusCreated, "playlist created", playlist)
}

// ListForUser handles GET /api/v1/playlists/user/{userId} requests.
func (h PlaylistHandler) ListForUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if _, ok := currentUser(r); !ok {
		respondError(ctx, w, http.StatusUnauthorized, "unauthorized request")
		return
	}

	userID := r.PathValue("userId")
	if _, err := h.Users.FindByID(ctx, userID); err != nil {
		respondStoreError(ctx, w, err, "user not found")
		return
	}

	docs, err := query.Execute(ctx, h.Query, views.UserPlaylists(userID))
	if err != nil {
		respondStoreError(ctx, w, err, "playlists not found")
		return
	}

	respond(ctx, w, http.StatusOK, "playlists fetched", docs)
}

// Get handles GET /api/v1/playlists/{playlistId} requests.
func (h PlaylistHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if _, ok := currentUser(r); !ok {
		respondError(ctx, w, http.StatusUnauthorized, "unauthorized request")
		return
	}

	docs, err := query.Execute(ctx, h.Query, views.PlaylistByID(r.PathValue("playlistId")))
	if err != nil {
		respondStoreError(ctx, w, err, "playlist not found")
		return
	}
	if len(docs) == 0 {
		respondError(ctx, w, http.StatusNotFound, "playlist not found")
		return
	}

	respond(ctx, w, http.StatusOK, "playlist fetched", docs[0])
}

// Update handles PATCH /api/v1/playlists/{playlistId} requests.
func (h PlaylistHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, ok := currentUser(r)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "unauthorized request")
		return
	}

	playlist, err := h.ownedPlaylist(w, r, user.ID)
	if err != nil {
		return
	}

	var req playlistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "invalid request body")
		return
	}

	updated, err := h.Playlists.UpdateDetails(ctx, playlist.ID, strings.TrimSpace(req.Name), strings.TrimSpace(req.Description))
	if err != nil {
		respondStoreError(ctx, w, err, "playlist not found")
		return
	}
	respond(ctx, w, http.StatusOK, "playlist updated", updated)
}

// Delete handles DELETE /api/v1/playlists/{playlistId} requests.
func (h PlaylistHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, ok := currentUser(r)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "unauthorized request")
		return
	}

	playlist, err := h.ownedPlaylist(w, r, user.ID)
	if err != nil {
		return
	}

	if err := h.Playlists.Delete(ctx, playlist.ID); err != nil {
		respondStoreError(ctx, w, err, "playlist not found")
		return
	}
	respond(ctx, w, http.StatusOK, "playlist deleted", map[string]any{})
}

// AddVideo handles PATCH /api/v1/playlists/add/{videoId}/{playlistId}.
// Adding a video that is already present is rejected.
func (h PlaylistHandler) AddVideo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, ok := currentUser(r)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "unauthorized request")
		return
	}

	playlist, err := h.ownedPlaylist(w, r, user.ID)
	if err != nil {
		return
	}

	videoID := r.PathValue("videoId")
	if _, err := h.Videos.FindByID(ctx, videoID); err != nil {
		respondStoreError(ctx, w, err, "video not found")
		return
	}

	if err := h.Playlists.AddVideo(ctx, playlist.ID, videoID); err != nil {
		if errors.Is(err, repositories.ErrVideoInPlaylist) {
			respondError(ctx, w, http.StatusConflict, "video already in playlist")
			return
		}
		respondStoreError(ctx, w, err, "playlist not found")
		return
	}

	respond(ctx, w, http.StatusOK, "video added to playlist", map[string]any{})
}

// RemoveVideo handles PATCH /api/v1/playlists/remove/{videoId}/{playlistId}.
func (h PlaylistHandler) RemoveVideo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, ok := currentUser(r)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "unauthorized request")
		return
	}

	playlist, err := h.ownedPlaylist(w, r, user.ID)
	if err != nil {
		return
	}

	if err := h.Playlists.RemoveVideo(ctx, playlist.ID, r.PathValue("videoId")); err != nil {
		if errors.Is(err, repositories.ErrVideoNotInPlaylist) {
			respondError(ctx, w, http.StatusNotFound, "video not in playlist")
			return
		}
		respondStoreError(ctx, w, err, "playlist not found")
		return
	}

	respond(ctx, w, http.StatusOK, "video removed from playlist", map[string]any{})
}

func (h PlaylistHandler) ownedPlaylist(w http.ResponseWriter, r *http.Request, ownerID string) (models.Playlist, error) {
	ctx := r.Context()

	playlist, err := h.Playlists.FindByID(ctx, r.PathValue("playlistId"))
	if err != nil {
		respondStoreError(ctx, w, err, "playlist not found")
		return models.Playlist{}, err
	}
	if playlist.Owner != ownerID {
		respondError(ctx, w, http.StatusNotFound, "playlist not found")
		return models.Playlist{}, repositories.ErrNotFound
	}
	return playlist, nil
}

type playlistRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (h PlaylistHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}
