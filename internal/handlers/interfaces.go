package handlers

import (
	"context"
	"io"

	"github.com/clipstack/backend/internal/middleware"
	"github.com/clipstack/backend/internal/models"
	"github.com/clipstack/backend/internal/query"
	"github.com/clipstack/backend/internal/repositories"
	"github.com/clipstack/backend/internal/views"
)

// UserStore captures the persistence operations required by the user handlers.
type UserStore interface {
	Create(ctx context.Context, user models.User) error
	FindByID(ctx context.Context, id string) (models.User, error)
	FindByUsername(ctx context.Context, username string) (models.User, error)
	FindByEmail(ctx context.Context, email string) (models.User, error)
	Update(ctx context.Context, user models.User) (models.User, error)
	SetPassword(ctx context.Context, userID, passwordHash string) error
	RecordWatch(ctx context.Context, userID, videoID string) error
}

// SessionManager issues, rotates, and revokes authentication token pairs.
type SessionManager interface {
	Issue(ctx context.Context, user models.User) (models.TokenPair, error)
	Rotate(ctx context.Context, refreshToken string) (models.User, models.TokenPair, error)
	Revoke(ctx context.Context, userID string) error
}

// VideoStore captures persistence for video records.
type VideoStore interface {
	Create(ctx context.Context, video models.Video) error
	FindByID(ctx context.Context, id string) (models.Video, error)
	Update(ctx context.Context, video models.Video) (models.Video, error)
	Delete(ctx context.Context, id string) error
	TogglePublish(ctx context.Context, id string) (models.Video, error)
	IncrementViews(ctx context.Context, id string) error
}

// CommentStore captures persistence for comment records.
type CommentStore interface {
	Create(ctx context.Context, comment models.Comment) error
	FindByID(ctx context.Context, id string) (models.Comment, error)
	UpdateContent(ctx context.Context, id, content string) (models.Comment, error)
	Delete(ctx context.Context, id string) error
}

// TweetStore captures persistence for tweet records.
type TweetStore interface {
	Create(ctx context.Context, tweet models.Tweet) error
	FindByID(ctx context.Context, id string) (models.Tweet, error)
	UpdateContent(ctx context.Context, id, content string) (models.Tweet, error)
	Delete(ctx context.Context, id string) error
}

// LikeStore toggles like edges.
type LikeStore interface {
	Toggle(ctx context.Context, actorID, targetID string, target repositories.LikeTarget) (bool, error)
}

// SubscriptionStore toggles subscription edges.
type SubscriptionStore interface {
	Toggle(ctx context.Context, subscriberID, channelID string) (bool, error)
}

// PlaylistStore captures persistence for playlist records.
type PlaylistStore interface {
	Create(ctx context.Context, playlist models.Playlist) error
	FindByID(ctx context.Context, id string) (models.Playlist, error)
	UpdateDetails(ctx context.Context, id, name, description string) (models.Playlist, error)
	Delete(ctx context.Context, id string) error
	AddVideo(ctx context.Context, playlistID, videoID string) error
	RemoveVideo(ctx context.Context, playlistID, videoID string) error
}

// StatsProvider resolves channel dashboard totals.
type StatsProvider interface {
	Load(ctx context.Context, ownerID string) (views.Stats, error)
}

// MediaStore persists uploaded files and returns their public URL.
type MediaStore interface {
	Save(ctx context.Context, name string, r io.Reader) (string, error)
}

// Dependencies aggregates collaborators required by HTTP handlers.
type Dependencies struct {
	Users         UserStore
	Sessions      SessionManager
	Videos        VideoStore
	Comments      CommentStore
	Tweets        TweetStore
	Likes         LikeStore
	Subscriptions SubscriptionStore
	Playlists     PlaylistStore
	Stats         StatsProvider
	Media         MediaStore

	// Query executes aggregation plans against the document store.
	Query query.Scanner

	// Verifier validates access tokens for the authentication gate.
	Verifier middleware.TokenVerifier

	// AuthLimiter guards the credential endpoints.
	AuthLimiter RateLimiter
}
