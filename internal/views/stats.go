package views

import (
	"context"
	"fmt"

	"github.com/clipstack/backend/internal/query"
	"github.com/clipstack/backend/internal/store"
)

// Stats is the channel dashboard rollup.
type Stats struct {
	TotalVideos      int64 `json:"totalVideos"`
	TotalViews       int64 `json:"totalViews"`
	TotalLikes       int64 `json:"totalLikes"`
	TotalComments    int64 `json:"totalComments"`
	TotalSubscribers int64 `json:"totalSubscribers"`
}

// ChannelStats computes the dashboard totals for a channel owner by
// aggregating over the owner's videos and subscription edges.
func ChannelStats(ctx context.Context, src query.Scanner, ownerID string) (Stats, error) {
	plan := query.NewBuilder(store.Videos).
		Match("owner", ownerID).
		Lookup(query.Lookup{
			From:         store.Likes,
			LocalField:   "id",
			ForeignField: "video",
			As:           "likes",
		}).
		Lookup(query.Lookup{
			From:         store.Comments,
			LocalField:   "id",
			ForeignField: "video",
			As:           "comments",
		}).
		AddCount("likeCount", "likes").
		AddCount("commentCount", "comments").
		Project("id", "views", "likeCount", "commentCount").
		Plan()

	docs, err := query.Execute(ctx, src, plan)
	if err != nil {
		return Stats{}, fmt.Errorf("channel stats: %w", err)
	}

	stats := Stats{TotalVideos: int64(len(docs))}
	for _, doc := range docs {
		stats.TotalViews += asCount(doc["views"])
		stats.TotalLikes += asCount(doc["likeCount"])
		stats.TotalComments += asCount(doc["commentCount"])
	}

	subscribers, err := query.Execute(ctx, src,
		query.NewBuilder(store.Subscriptions).Match("channel", ownerID).Plan())
	if err != nil {
		return Stats{}, fmt.Errorf("channel stats: %w", err)
	}
	stats.TotalSubscribers = int64(len(subscribers))

	return stats, nil
}

// asCount reads a numeric document value regardless of whether it was
// computed in-process or round-tripped through JSON.
func asCount(v any) int64 {
	switch n := v.(type) {
	case int:
		return int64(n)
	case int64:
		return n
	case float64:
		return int64(n)
	}
	return 0
}
