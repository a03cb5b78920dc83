package handlers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/clipstack/backend/internal/models"
	"github.com/clipstack/backend/internal/query"
	"github.com/clipstack/backend/internal/repositories"
	"github.com/clipstack/backend/internal/views"
)

// TweetHandler implements the short-post endpoints.
type TweetHandler struct {
	Tweets  TweetStore
	Users   UserStore
	Query   query.Scanner
	NowFunc func() time.Time
}

// Create handles POST /api/v1/tweets requests.
func (h TweetHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, ok := currentUser(r)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "unauthorized request")
		return
	}

	content, ok := decodeContent(w, r)
	if !ok {
		return
	}

	now := h.now()
	tweet := models.Tweet{
		ID:        uuid.NewString(),
		Content:   content,
		Owner:     user.ID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := h.Tweets.Create(ctx, tweet); err != nil {
		respondStoreError(ctx, w, err, "tweet not found")
		return
	}

	respond(ctx, w, http.StatusCreated, "tweet created", tweet)
}

// ListForUser handles GET /api/v1/tweets/user/{userId} requests.
func (h TweetHandler) ListForUser(w http.ResponseWriter, r *http.Request) {
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

	page, limit := pageParams(r)
	result, err := query.Paginate(ctx, h.Query, views.UserTweets(userID), page, limit)
	if err != nil {
		respondStoreError(ctx, w, err, "tweets not found")
		return
	}

	respond(ctx, w, http.StatusOK, "tweets fetched", result)
}

// Update handles PATCH /api/v1/tweets/{tweetId} requests.
func (h TweetHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, ok := currentUser(r)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "unauthorized request")
		return
	}

	tweet, err := h.ownedTweet(w, r, user.ID)
	if err != nil {
		return
	}

	content, ok := decodeContent(w, r)
	if !ok {
		return
	}

	updated, err := h.Tweets.UpdateContent(ctx, tweet.ID, content)
	if err != nil {
		respondStoreError(ctx, w, err, "tweet not found")
		return
	}
	respond(ctx, w, http.StatusOK, "tweet updated", updated)
}

// Delete handles DELETE /api/v1/tweets/{tweetId} requests.
func (h TweetHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, ok := currentUser(r)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "unauthorized request")
		return
	}

	tweet, err := h.ownedTweet(w, r, user.ID)
	if err != nil {
		return
	}

	if err := h.Tweets.Delete(ctx, tweet.ID); err != nil {
		respondStoreError(ctx, w, err, "tweet not found")
		return
	}
	respond(ctx, w, http.StatusOK, "tweet deleted", map[string]any{})
}

func (h TweetHandler) ownedTweet(w http.ResponseWriter, r *http.Request, ownerID string) (models.Tweet, error) {
	ctx := r.Context()

	tweet, err := h.Tweets.FindByID(ctx, r.PathValue("tweetId"))
	if err != nil {
		respondStoreError(ctx, w, err, "tweet not found")
		return models.Tweet{}, err
	}
	if tweet.Owner != ownerID {
		respondError(ctx, w, http.StatusNotFound, "tweet not found")
		return models.Tweet{}, repositories.ErrNotFound
	}
	return tweet, nil
}

func (h TweetHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}
