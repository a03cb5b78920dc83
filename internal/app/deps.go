package app

import (
	"context"
	"fmt"
	"time"

	"github.com/clipstack/backend/internal/auth"
	"github.com/clipstack/backend/internal/config"
	"github.com/clipstack/backend/internal/db"
	"github.com/clipstack/backend/internal/handlers"
	"github.com/clipstack/backend/internal/media"
	"github.com/clipstack/backend/internal/middleware"
	"github.com/clipstack/backend/internal/repositories"
	"github.com/clipstack/backend/internal/store"
	"github.com/clipstack/backend/internal/views"
)

// buildDependencies wires together concrete implementations used by the HTTP handlers.
func buildDependencies(ctx context.Context, pool db.Pool, cfg config.Config) (handlers.Dependencies, error) {
	docStore := store.NewPostgresStore(pool, cfg.StoreTimeout)

	users := repositories.NewUserRepository(docStore)
	tokens := auth.NewTokenManager(users,
		cfg.AccessTokenSecret, cfg.RefreshTokenSecret,
		cfg.AccessTokenTTL, cfg.RefreshTokenTTL)

	mediaStore, err := buildMediaStore(ctx, cfg)
	if err != nil {
		return handlers.Dependencies{}, err
	}

	return handlers.Dependencies{
		Users:         users,
		Sessions:      tokens,
		Videos:        repositories.NewVideoRepository(docStore),
		Comments:      repositories.NewCommentRepository(docStore),
		Tweets:        repositories.NewTweetRepository(docStore),
		Likes:         repositories.NewLikeRepository(docStore),
		Subscriptions: repositories.NewSubscriptionRepository(docStore),
		Playlists:     repositories.NewPlaylistRepository(docStore),
		Stats:         views.NewStatsCache(docStore, cfg.StatsCacheTTL),
		Media:         mediaStore,
		Query:         docStore,
		Verifier:      tokens,
		AuthLimiter:   middleware.NewIPRateLimiter(cfg.AuthRateRequests, cfg.AuthRateWindow, cfg.AuthRateBurst, 10*time.Minute),
	}, nil
}

// buildMediaStore selects S3 when a bucket is configured, the local media
// directory otherwise.
func buildMediaStore(ctx context.Context, cfg config.Config) (handlers.MediaStore, error) {
	if cfg.ObjectStore.Bucket != "" {
		s3Store, err := media.NewS3Storage(ctx, cfg.ObjectStore)
		if err != nil {
			return nil, fmt.Errorf("configure s3 media storage: %w", err)
		}
		return s3Store, nil
	}

	dirStore, err := media.NewDirStorage(cfg.MediaDir, cfg.MediaBaseURL)
	if err != nil {
		return nil, fmt.Errorf("configure local media storage: %w", err)
	}
	return dirStore, nil
}
