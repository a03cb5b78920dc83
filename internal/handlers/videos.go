package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/clipstack/backend/internal/logging"
	"github.com/clipstack/backend/internal/models"
	"github.com/clipstack/backend/internal/query"
	"github.com/clipstack/backend/internal/repositories"
	"github.com/clipstack/backend/internal/views"
)

// VideoHandler implements the video catalog endpoints.
type VideoHandler struct {
	Videos  VideoStore
	Users   UserStore
	Query   query.Scanner
	Media   MediaStore
	NowFunc func() time.Time
}

// List handles GET /api/v1/videos requests. Only published videos appear
// unless the listing is scoped to the caller's own channel.
func (h VideoHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	viewer, ok := currentUser(r)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "unauthorized request")
		return
	}

	q := r.URL.Query()
	listing := views.VideoListing{
		OwnerID:        strings.TrimSpace(q.Get("userId")),
		Query:          strings.TrimSpace(q.Get("query")),
		SortBy:         strings.TrimSpace(q.Get("sortBy")),
		SortDescending: strings.EqualFold(q.Get("sortType"), "desc"),
	}
	listing.IncludeUnpublished = listing.OwnerID != "" && listing.OwnerID == viewer.ID

	page, limit := pageParams(r)
	result, err := query.Paginate(ctx, h.Query, views.Videos(listing), page, limit)
	if err != nil {
		respondStoreError(ctx, w, err, "videos not found")
		return
	}

	respond(ctx, w, http.StatusOK, "videos fetched", result)
}

// Mine handles GET /api/v1/videos/me requests: every video of the caller,
// published or not.
func (h VideoHandler) Mine(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, ok := currentUser(r)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "unauthorized request")
		return
	}

	listing := views.VideoListing{OwnerID: user.ID, IncludeUnpublished: true, SortBy: "createdAt", SortDescending: true}
	page, limit := pageParams(r)
	result, err := query.Paginate(ctx, h.Query, views.Videos(listing), page, limit)
	if err != nil {
		respondStoreError(ctx, w, err, "videos not found")
		return
	}

	respond(ctx, w, http.StatusOK, "videos fetched", result)
}

// Publish handles POST /api/v1/videos requests: a multipart upload carrying
// the video file, its thumbnail, and the descriptive fields.
func (h VideoHandler) Publish(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	user, ok := currentUser(r)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "unauthorized request")
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	title := strings.TrimSpace(r.FormValue("title"))
	description := strings.TrimSpace(r.FormValue("description"))
	if title == "" {
		respondError(ctx, w, http.StatusBadRequest, "title is required")
		return
	}
	duration, err := strconv.ParseFloat(r.FormValue("duration"), 64)
	if err != nil || duration < 0 {
		duration = 0
	}

	videoURL, err := saveUpload(r, h.Media, "videoFile")
	if err != nil {
		if errors.Is(err, errMissingFile) {
			respondError(ctx, w, http.StatusBadRequest, "videoFile is required")
			return
		}
		logger.Error("video upload failed", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "failed to store video")
		return
	}
	thumbURL, err := saveUpload(r, h.Media, "thumbnail")
	if err != nil {
		if errors.Is(err, errMissingFile) {
			respondError(ctx, w, http.StatusBadRequest, "thumbnail is required")
			return
		}
		logger.Error("thumbnail upload failed", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "failed to store thumbnail")
		return
	}

	now := h.now()
	video := models.Video{
		ID:          uuid.NewString(),
		VideoFile:   videoURL,
		Thumbnail:   thumbURL,
		Title:       title,
		Description: description,
		Duration:    duration,
		IsPublished: true,
		Owner:       user.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := h.Videos.Create(ctx, video); err != nil {
		respondStoreError(ctx, w, err, "video not found")
		return
	}

	respond(ctx, w, http.StatusCreated, "video published", video)
}

// Get handles GET /api/v1/videos/{videoId} requests. A successful fetch
// counts as a view and lands at the front of the caller's watch history.
func (h VideoHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	user, ok := currentUser(r)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "unauthorized request")
		return
	}

	video, err := h.Videos.FindByID(ctx, r.PathValue("videoId"))
	if err != nil {
		respondStoreError(ctx, w, err, "video not found")
		return
	}
	if !video.IsPublished && video.Owner != user.ID {
		respondError(ctx, w, http.StatusNotFound, "video not found")
		return
	}

	if err := h.Videos.IncrementViews(ctx, video.ID); err != nil {
		logger.Warn("failed to count view", "videoId", video.ID, "error", err)
	} else {
		video.Views++
	}
	if err := h.Users.RecordWatch(ctx, user.ID, video.ID); err != nil {
		logger.Warn("failed to record watch history", "videoId", video.ID, "error", err)
	}

	respond(ctx, w, http.StatusOK, "video fetched", video)
}

// Update handles PATCH /api/v1/videos/{videoId} requests. Title,
// description, and an optional replacement thumbnail may change; only the
// owner may update.
func (h VideoHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	user, ok := currentUser(r)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "unauthorized request")
		return
	}

	video, err := h.ownedVideo(w, r, user.ID)
	if err != nil {
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	if title := strings.TrimSpace(r.FormValue("title")); title != "" {
		video.Title = title
	}
	if description := strings.TrimSpace(r.FormValue("description")); description != "" {
		video.Description = description
	}
	thumbURL, err := saveUpload(r, h.Media, "thumbnail")
	if err == nil {
		video.Thumbnail = thumbURL
	} else if !errors.Is(err, errMissingFile) {
		logger.Error("thumbnail upload failed", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "failed to store thumbnail")
		return
	}

	updated, err := h.Videos.Update(ctx, video)
	if err != nil {
		respondStoreError(ctx, w, err, "video not found")
		return
	}
	respond(ctx, w, http.StatusOK, "video updated", updated)
}

// Delete handles DELETE /api/v1/videos/{videoId} requests.
func (h VideoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, ok := currentUser(r)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "unauthorized request")
		return
	}

	video, err := h.ownedVideo(w, r, user.ID)
	if err != nil {
		return
	}

	if err := h.Videos.Delete(ctx, video.ID); err != nil {
		respondStoreError(ctx, w, err, "video not found")
		return
	}
	respond(ctx, w, http.StatusOK, "video deleted", map[string]any{})
}

// TogglePublish handles PATCH /api/v1/videos/toggle/publish/{videoId}.
func (h VideoHandler) TogglePublish(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, ok := currentUser(r)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "unauthorized request")
		return
	}

	video, err := h.ownedVideo(w, r, user.ID)
	if err != nil {
		return
	}

	updated, err := h.Videos.TogglePublish(ctx, video.ID)
	if err != nil {
		respondStoreError(ctx, w, err, "video not found")
		return
	}
	respond(ctx, w, http.StatusOK, "publish state toggled", updated)
}

// ownedVideo loads the path video and enforces ownership. Foreign or
// missing videos both read as 404; the response is already written when an
// error is returned.
func (h VideoHandler) ownedVideo(w http.ResponseWriter, r *http.Request, ownerID string) (models.Video, error) {
	ctx := r.Context()

	video, err := h.Videos.FindByID(ctx, r.PathValue("videoId"))
	if err != nil {
		respondStoreError(ctx, w, err, "video not found")
		return models.Video{}, err
	}
	if video.Owner != ownerID {
		respondError(ctx, w, http.StatusNotFound, "video not found")
		return models.Video{}, repositories.ErrNotFound
	}
	return video, nil
}

func (h VideoHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}
