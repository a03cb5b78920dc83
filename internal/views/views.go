// Package views holds the social-graph projections: each function composes
// the aggregation plan for one denormalized read view. Owner profiles are
// always embedded as {fullname, username, avatar} and never carry
// credential fields.
package views

import (
	"github.com/clipstack/backend/internal/query"
	"github.com/clipstack/backend/internal/store"
)

// ownerProfile is the projection applied to every embedded user profile.
func ownerProfile() *query.Plan {
	return query.NewPipeline().Project("id", "fullname", "username", "avatar").Plan()
}

func ownerLookup(localField, as string) query.Lookup {
	return query.Lookup{
		From:         store.Users,
		LocalField:   localField,
		ForeignField: "id",
		As:           as,
		Pipeline:     ownerProfile(),
	}
}

// VideoListing configures the public and per-channel video listings.
type VideoListing struct {
	// OwnerID restricts the listing to one channel when non-empty.
	OwnerID string
	// IncludeUnpublished lifts the published filter; only valid when the
	// caller is the owner.
	IncludeUnpublished bool
	// Query is an optional free-text filter over title and description.
	Query string
	// SortBy and SortDescending order the listing; unset leaves store order.
	SortBy         string
	SortDescending bool
}

// Videos builds the video listing plan: published videos with the owner
// profile embedded.
func Videos(listing VideoListing) *query.Plan {
	b := query.NewBuilder(store.Videos)
	if !listing.IncludeUnpublished {
		b.Match("isPublished", true)
	}
	if listing.OwnerID != "" {
		b.Match("owner", listing.OwnerID)
	}
	b.Search(listing.Query, "title", "description")
	b.Lookup(ownerLookup("owner", "owner")).AddFirst("owner", "owner")
	if listing.SortBy != "" {
		b.Sort(listing.SortBy, listing.SortDescending)
	}
	return b.Plan()
}

// VideoComments builds the comment listing for a video: embedded owner
// profile and like count, newest first.
func VideoComments(videoID string) *query.Plan {
	return query.NewBuilder(store.Comments).
		Match("video", videoID).
		Lookup(ownerLookup("owner", "owner")).
		Lookup(query.Lookup{
			From:         store.Likes,
			LocalField:   "id",
			ForeignField: "comment",
			As:           "commentLikes",
		}).
		AddFirst("owner", "owner").
		AddCount("totalLikes", "commentLikes").
		Project("id", "owner", "content", "totalLikes", "createdAt").
		Sort("createdAt", true).
		Plan()
}

// UserTweets builds the tweet listing for a user: embedded owner profile
// and like count, newest first.
func UserTweets(userID string) *query.Plan {
	return query.NewBuilder(store.Tweets).
		Match("owner", userID).
		Lookup(ownerLookup("owner", "owner")).
		Lookup(query.Lookup{
			From:         store.Likes,
			LocalField:   "id",
			ForeignField: "tweet",
			As:           "tweetLikes",
		}).
		AddFirst("owner", "owner").
		AddCount("likesCount", "tweetLikes").
		Project("id", "owner", "content", "likesCount", "createdAt").
		Sort("createdAt", true).
		Plan()
}

// LikedVideos builds the listing of videos a user has liked, each with its
// owner profile embedded.
func LikedVideos(userID string) *query.Plan {
	videoPipeline := query.NewPipeline().
		Lookup(ownerLookup("owner", "owner")).
		AddFirst("owner", "owner").
		Project("id", "videoFile", "thumbnail", "title", "duration", "views", "owner").
		Plan()

	return query.NewBuilder(store.Likes).
		Match("likedBy", userID).
		MatchExists("video").
		Lookup(query.Lookup{
			From:         store.Videos,
			LocalField:   "video",
			ForeignField: "id",
			As:           "video",
			Pipeline:     videoPipeline,
		}).
		AddFirst("video", "video").
		Project("id", "video", "createdAt").
		Sort("createdAt", true).
		Plan()
}

// ChannelSubscribers builds the subscriber listing for a channel with each
// subscriber's profile embedded.
func ChannelSubscribers(channelID string) *query.Plan {
	return query.NewBuilder(store.Subscriptions).
		Match("channel", channelID).
		Lookup(ownerLookup("subscriber", "subscriber")).
		AddFirst("subscriber", "subscriber").
		Project("id", "subscriber", "createdAt").
		Sort("createdAt", true).
		Plan()
}

// SubscribedChannels builds the listing of channels a user follows with
// each channel's profile embedded.
func SubscribedChannels(subscriberID string) *query.Plan {
	return query.NewBuilder(store.Subscriptions).
		Match("subscriber", subscriberID).
		Lookup(ownerLookup("channel", "channel")).
		AddFirst("channel", "channel").
		Project("id", "channel", "createdAt").
		Sort("createdAt", true).
		Plan()
}

// ChannelProfile builds the public profile of a channel: subscriber count,
// followed-channel count, and whether the viewer is subscribed.
func ChannelProfile(username, viewerID string) *query.Plan {
	return query.NewBuilder(store.Users).
		Match("username", username).
		Lookup(query.Lookup{
			From:         store.Subscriptions,
			LocalField:   "id",
			ForeignField: "channel",
			As:           "subscribers",
		}).
		Lookup(query.Lookup{
			From:         store.Subscriptions,
			LocalField:   "id",
			ForeignField: "subscriber",
			As:           "subscribedTo",
		}).
		AddCount("subscribersCount", "subscribers").
		AddCount("channelsSubscribedToCount", "subscribedTo").
		AddContains("isSubscribed", "subscribers", "subscriber", viewerID).
		Project("id", "fullname", "username", "avatar", "coverImage",
			"subscribersCount", "channelsSubscribedToCount", "isSubscribed", "createdAt").
		Plan()
}

// WatchHistory builds the watch-history view for a user: the history videos
// in watched order, each with its owner profile embedded.
func WatchHistory(userID string) *query.Plan {
	videoPipeline := query.NewPipeline().
		Lookup(ownerLookup("owner", "owner")).
		AddFirst("owner", "owner").
		Project("id", "videoFile", "thumbnail", "title", "duration", "views", "owner").
		Plan()

	return query.NewBuilder(store.Users).
		Match("id", userID).
		Lookup(query.Lookup{
			From:         store.Videos,
			LocalField:   "watchHistory",
			ForeignField: "id",
			As:           "watchHistory",
			Pipeline:     videoPipeline,
		}).
		Project("id", "watchHistory").
		Plan()
}

// playlistVideos is the nested projection for videos inside a playlist.
func playlistVideos() query.Lookup {
	pipeline := query.NewPipeline().
		Lookup(ownerLookup("owner", "owner")).
		AddFirst("owner", "owner").
		Project("id", "videoFile", "thumbnail", "title", "duration", "views", "owner").
		Plan()
	return query.Lookup{
		From:         store.Videos,
		LocalField:   "videos",
		ForeignField: "id",
		As:           "videos",
		Pipeline:     pipeline,
	}
}

// UserPlaylists builds the playlist listing for an owner, with videos and
// their owners embedded.
func UserPlaylists(ownerID string) *query.Plan {
	return query.NewBuilder(store.Playlists).
		Match("owner", ownerID).
		Lookup(playlistVideos()).
		Project("id", "name", "description", "videos").
		Plan()
}

// PlaylistByID builds the single-playlist view with videos embedded.
func PlaylistByID(id string) *query.Plan {
	return query.NewBuilder(store.Playlists).
		Match("id", id).
		Lookup(playlistVideos()).
		Project("id", "name", "description", "videos").
		Plan()
}
