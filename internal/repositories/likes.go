package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/clipstack/backend/internal/models"
	"github.com/clipstack/backend/internal/store"
)

// LikeTarget names the kind of entity a like attaches to. It doubles as the
// document field carrying the target id.
type LikeTarget string

const (
	LikeVideo   LikeTarget = "video"
	LikeComment LikeTarget = "comment"
	LikeTweet   LikeTarget = "tweet"
)

// LikeRepository persists like records and implements the existence-gated
// toggle primitive.
type LikeRepository struct {
	store store.Store
}

// NewLikeRepository constructs a like repository over the provided store.
func NewLikeRepository(s store.Store) *LikeRepository {
	return &LikeRepository{store: s}
}

// Toggle flips the like state for (actor, target). The delete runs as a
// single conditional statement; when nothing was deleted, the insert is
// guarded by the store's unique (likedBy, target) key, so a concurrent
// duplicate resolves to "already liked" instead of a second record. After
// any call exactly zero or one record exists for the pair.
func (r *LikeRepository) Toggle(ctx context.Context, actorID, targetID string, target LikeTarget) (bool, error) {
	match := store.Document{"likedBy": actorID, string(target): targetID}

	deleted, err := r.store.DeleteMatch(ctx, store.Likes, match)
	if err != nil {
		return false, fmt.Errorf("toggle like: %w", err)
	}
	if deleted > 0 {
		return false, nil
	}

	like := models.Like{
		ID:        uuid.NewString(),
		LikedBy:   actorID,
		CreatedAt: time.Now().UTC(),
	}
	switch target {
	case LikeVideo:
		like.Video = targetID
	case LikeComment:
		like.Comment = targetID
	case LikeTweet:
		like.Tweet = targetID
	default:
		return false, fmt.Errorf("unknown like target %q", target)
	}

	doc, err := store.ToDocument(like)
	if err != nil {
		return false, err
	}
	if err := r.store.Insert(ctx, store.Likes, doc); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return true, nil
		}
		return false, fmt.Errorf("toggle like: %w", err)
	}
	return true, nil
}

// CountFor reports how many likes the target currently has.
func (r *LikeRepository) CountFor(ctx context.Context, targetID string, target LikeTarget) (int64, error) {
	return r.store.Count(ctx, store.Likes, store.Document{string(target): targetID})
}
