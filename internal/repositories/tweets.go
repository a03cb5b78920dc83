package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/clipstack/backend/internal/models"
	"github.com/clipstack/backend/internal/store"
)

// TweetRepository persists tweet records.
type TweetRepository struct {
	store store.Store
}

// NewTweetRepository constructs a tweet repository over the provided store.
func NewTweetRepository(s store.Store) *TweetRepository {
	return &TweetRepository{store: s}
}

// Create persists a new tweet.
func (r *TweetRepository) Create(ctx context.Context, tweet models.Tweet) error {
	doc, err := store.ToDocument(tweet)
	if err != nil {
		return err
	}
	return r.store.Insert(ctx, store.Tweets, doc)
}

// FindByID fetches a tweet by id.
func (r *TweetRepository) FindByID(ctx context.Context, id string) (models.Tweet, error) {
	doc, err := r.store.Get(ctx, store.Tweets, id)
	if err != nil {
		return models.Tweet{}, err
	}
	return decodeTweet(doc)
}

// UpdateContent replaces the tweet body.
func (r *TweetRepository) UpdateContent(ctx context.Context, id, content string) (models.Tweet, error) {
	doc, err := r.store.Update(ctx, store.Tweets, id, func(doc store.Document) (store.Document, error) {
		doc["content"] = content
		doc["updatedAt"] = time.Now().UTC().Format(time.RFC3339Nano)
		return doc, nil
	})
	if err != nil {
		return models.Tweet{}, err
	}
	return decodeTweet(doc)
}

// Delete removes a tweet by id.
func (r *TweetRepository) Delete(ctx context.Context, id string) error {
	return r.store.Delete(ctx, store.Tweets, id)
}

func decodeTweet(doc store.Document) (models.Tweet, error) {
	var tweet models.Tweet
	if err := store.FromDocument(doc, &tweet); err != nil {
		return models.Tweet{}, fmt.Errorf("decode tweet: %w", err)
	}
	return tweet, nil
}
