package handlers

import (
	"net/http"

	"github.com/clipstack/backend/internal/query"
	"github.com/clipstack/backend/internal/views"
)

// DashboardHandler implements the channel dashboard endpoints.
type DashboardHandler struct {
	Stats StatsProvider
	Query query.Scanner
}

// ChannelStats handles GET /api/v1/dashboard/stats requests.
func (h DashboardHandler) ChannelStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, ok := currentUser(r)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "unauthorized request")
		return
	}

	stats, err := h.Stats.Load(ctx, user.ID)
	if err != nil {
		respondStoreError(ctx, w, err, "channel not found")
		return
	}

	respond(ctx, w, http.StatusOK, "channel stats fetched", stats)
}

// Videos handles GET /api/v1/dashboard/videos requests: every video of the
// caller's channel, published or not.
func (h DashboardHandler) Videos(w http.ResponseWriter, r *http.Request) {
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

	respond(ctx, w, http.StatusOK, "channel videos fetched", result)
}
