package handlers

import (
	"net/http"

	"github.com/clipstack/backend/internal/middleware"
)

// RegisterRoutes wires HTTP handlers into the provided ServeMux. Routes are
// protected by the authentication gate except registration, login, token
// refresh, and the health check.
func RegisterRoutes(mux *http.ServeMux, deps Dependencies) {
	health := HealthHandler{}
	users := UserHandler{Users: deps.Users, Sessions: deps.Sessions, Media: deps.Media, Query: deps.Query, Limiter: deps.AuthLimiter}
	videos := VideoHandler{Videos: deps.Videos, Users: deps.Users, Query: deps.Query, Media: deps.Media}
	comments := CommentHandler{Comments: deps.Comments, Videos: deps.Videos, Query: deps.Query}
	tweets := TweetHandler{Tweets: deps.Tweets, Users: deps.Users, Query: deps.Query}
	likes := LikeHandler{Likes: deps.Likes, Videos: deps.Videos, Comments: deps.Comments, Tweets: deps.Tweets, Query: deps.Query}
	subscriptions := SubscriptionHandler{Subscriptions: deps.Subscriptions, Users: deps.Users, Query: deps.Query}
	playlists := PlaylistHandler{Playlists: deps.Playlists, Videos: deps.Videos, Users: deps.Users, Query: deps.Query}
	dashboard := DashboardHandler{Stats: deps.Stats, Query: deps.Query}

	guard := middleware.Authenticate(deps.Verifier, deps.Users)
	protect := func(h http.HandlerFunc) http.Handler {
		return guard(h)
	}

	mux.HandleFunc("GET /healthz", health.Handle)

	mux.HandleFunc("POST /api/v1/users/register", users.Register)
	mux.HandleFunc("POST /api/v1/users/login", users.Login)
	mux.HandleFunc("POST /api/v1/users/refresh-token", users.RefreshToken)
	mux.Handle("POST /api/v1/users/logout", protect(users.Logout))
	mux.Handle("GET /api/v1/users/me", protect(users.Me))
	mux.Handle("PATCH /api/v1/users/update-password", protect(users.UpdatePassword))
	mux.Handle("PATCH /api/v1/users/update-account", protect(users.UpdateAccount))
	mux.Handle("PATCH /api/v1/users/update-avatar", protect(users.UpdateAvatar))
	mux.Handle("PATCH /api/v1/users/update-cover", protect(users.UpdateCover))
	mux.Handle("GET /api/v1/users/c/{username}", protect(users.ChannelProfile))
	mux.Handle("GET /api/v1/users/history", protect(users.WatchHistory))

	mux.Handle("GET /api/v1/videos", protect(videos.List))
	mux.Handle("POST /api/v1/videos", protect(videos.Publish))
	mux.Handle("GET /api/v1/videos/me", protect(videos.Mine))
	mux.Handle("GET /api/v1/videos/{videoId}", protect(videos.Get))
	mux.Handle("PATCH /api/v1/videos/{videoId}", protect(videos.Update))
	mux.Handle("DELETE /api/v1/videos/{videoId}", protect(videos.Delete))
	mux.Handle("PATCH /api/v1/videos/toggle/publish/{videoId}", protect(videos.TogglePublish))

	mux.Handle("GET /api/v1/comments/{videoId}", protect(comments.List))
	mux.Handle("POST /api/v1/comments/{videoId}", protect(comments.Create))
	mux.Handle("PATCH /api/v1/comments/c/{commentId}", protect(comments.Update))
	mux.Handle("DELETE /api/v1/comments/c/{commentId}", protect(comments.Delete))

	mux.Handle("POST /api/v1/tweets", protect(tweets.Create))
	mux.Handle("GET /api/v1/tweets/user/{userId}", protect(tweets.ListForUser))
	mux.Handle("PATCH /api/v1/tweets/{tweetId}", protect(tweets.Update))
	mux.Handle("DELETE /api/v1/tweets/{tweetId}", protect(tweets.Delete))

	mux.Handle("POST /api/v1/likes/toggle/v/{videoId}", protect(likes.ToggleVideo))
	mux.Handle("POST /api/v1/likes/toggle/c/{commentId}", protect(likes.ToggleComment))
	mux.Handle("POST /api/v1/likes/toggle/t/{tweetId}", protect(likes.ToggleTweet))
	mux.Handle("GET /api/v1/likes/videos", protect(likes.LikedVideos))

	mux.Handle("POST /api/v1/subscriptions/c/{channelId}", protect(subscriptions.Toggle))
	mux.Handle("GET /api/v1/subscriptions/c/{channelId}", protect(subscriptions.Subscribers))
	mux.Handle("GET /api/v1/subscriptions/u/{subscriberId}", protect(subscriptions.Subscribed))

	mux.Handle("POST /api/v1/playlists", protect(playlists.Create))
	mux.Handle("GET /api/v1/playlists/user/{userId}", protect(playlists.ListForUser))
	mux.Handle("GET /api/v1/playlists/{playlistId}", protect(playlists.Get))
	mux.Handle("PATCH /api/v1/playlists/{playlistId}", protect(playlists.Update))
	mux.Handle("DELETE /api/v1/playlists/{playlistId}", protect(playlists.Delete))
	mux.Handle("PATCH /api/v1/playlists/add/{videoId}/{playlistId}", protect(playlists.AddVideo))
	mux.Handle("PATCH /api/v1/playlists/remove/{videoId}/{playlistId}", protect(playlists.RemoveVideo))

	mux.Handle("GET /api/v1/dashboard/stats", protect(dashboard.ChannelStats))
	mux.Handle("GET /api/v1/dashboard/videos", protect(dashboard.Videos))
}
