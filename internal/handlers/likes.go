package handlers

import (
	"net/http"

	"github.com/clipstack/backend/internal/query"
	"github.com/clipstack/backend/internal/repositories"
	"github.com/clipstack/backend/internal/views"
)

// LikeHandler implements like toggles and the liked-video listing.
type LikeHandler struct {
	Likes    LikeStore
	Videos   VideoStore
	Comments CommentStore
	Tweets   TweetStore
	Query    query.Scanner
}

// ToggleVideo handles POST /api/v1/likes/toggle/v/{videoId} requests.
func (h LikeHandler) ToggleVideo(w http.ResponseWriter, r *http.Request) {
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

	h.toggle(w, r, user.ID, videoID, repositories.LikeVideo)
}

// ToggleComment handles POST /api/v1/likes/toggle/c/{commentId} requests.
func (h LikeHandler) ToggleComment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, ok := currentUser(r)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "unauthorized request")
		return
	}

	commentID := r.PathValue("commentId")
	if _, err := h.Comments.FindByID(ctx, commentID); err != nil {
		respondStoreError(ctx, w, err, "comment not found")
		return
	}

	h.toggle(w, r, user.ID, commentID, repositories.LikeComment)
}

// ToggleTweet handles POST /api/v1/likes/toggle/t/{tweetId} requests.
func (h LikeHandler) ToggleTweet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, ok := currentUser(r)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "unauthorized request")
		return
	}

	tweetID := r.PathValue("tweetId")
	if _, err := h.Tweets.FindByID(ctx, tweetID); err != nil {
		respondStoreError(ctx, w, err, "tweet not found")
		return
	}

	h.toggle(w, r, user.ID, tweetID, repositories.LikeTweet)
}

func (h LikeHandler) toggle(w http.ResponseWriter, r *http.Request, actorID, targetID string, target repositories.LikeTarget) {
	ctx := r.Context()

	liked, err := h.Likes.Toggle(ctx, actorID, targetID, target)
	if err != nil {
		respondStoreError(ctx, w, err, "target not found")
		return
	}

	message := "like removed"
	if liked {
		message = "like added"
	}
	respond(ctx, w, http.StatusOK, message, map[string]any{"liked": liked})
}

// LikedVideos handles GET /api/v1/likes/videos requests.
func (h LikeHandler) LikedVideos(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, ok := currentUser(r)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "unauthorized request")
		return
	}

	page, limit := pageParams(r)
	result, err := query.Paginate(ctx, h.Query, views.LikedVideos(user.ID), page, limit)
	if err != nil {
		respondStoreError(ctx, w, err, "liked videos not found")
		return
	}

	respond(ctx, w, http.StatusOK, "liked videos fetched", result)
}
