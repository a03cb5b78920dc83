package handlers

import (
	"net/http"

	"github.com/clipstack/backend/internal/query"
	"github.com/clipstack/backend/internal/views"
)

// SubscriptionHandler implements channel subscription endpoints.
type SubscriptionHandler struct {
	Subscriptions SubscriptionStore
	Users         UserStore
	Query         query.Scanner
}

// Toggle handles POST /api/v1/subscriptions/c/{channelId} requests. A user
// cannot subscribe to their own channel.
func (h SubscriptionHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, ok := currentUser(r)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "unauthorized request")
		return
	}

	channelID := r.PathValue("channelId")
	if channelID == user.ID {
		respondError(ctx, w, http.StatusBadRequest, "cannot subscribe to your own channel")
		return
	}
	if _, err := h.Users.FindByID(ctx, channelID); err != nil {
		respondStoreError(ctx, w, err, "channel not found")
		return
	}

	subscribed, err := h.Subscriptions.Toggle(ctx, user.ID, channelID)
	if err != nil {
		respondStoreError(ctx, w, err, "channel not found")
		return
	}

	message := "unsubscribed"
	if subscribed {
		message = "subscribed"
	}
	respond(ctx, w, http.StatusOK, message, map[string]any{"subscribed": subscribed})
}

// Subscribers handles GET /api/v1/subscriptions/c/{channelId} requests.
func (h SubscriptionHandler) Subscribers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if _, ok := currentUser(r); !ok {
		respondError(ctx, w, http.StatusUnauthorized, "unauthorized request")
		return
	}

	channelID := r.PathValue("channelId")
	if _, err := h.Users.FindByID(ctx, channelID); err != nil {
		respondStoreError(ctx, w, err, "channel not found")
		return
	}

	page, limit := pageParams(r)
	result, err := query.Paginate(ctx, h.Query, views.ChannelSubscribers(channelID), page, limit)
	if err != nil {
		respondStoreError(ctx, w, err, "subscribers not found")
		return
	}

	respond(ctx, w, http.StatusOK, "subscribers fetched", result)
}

// Subscribed handles GET /api/v1/subscriptions/u/{subscriberId} requests.
func (h SubscriptionHandler) Subscribed(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if _, ok := currentUser(r); !ok {
		respondError(ctx, w, http.StatusUnauthorized, "unauthorized request")
		return
	}

	subscriberID := r.PathValue("subscriberId")
	if _, err := h.Users.FindByID(ctx, subscriberID); err != nil {
		respondStoreError(ctx, w, err, "user not found")
		return
	}

	page, limit := pageParams(r)
	result, err := query.Paginate(ctx, h.Query, views.SubscribedChannels(subscriberID), page, limit)
	if err != nil {
		respondStoreError(ctx, w, err, "subscriptions not found")
		return
	}

	respond(ctx, w, http.StatusOK, "subscribed channels fetched", result)
}
