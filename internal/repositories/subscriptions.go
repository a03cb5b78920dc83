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

// SubscriptionRepository persists subscriber-to-channel edges.
type SubscriptionRepository struct {
	store store.Store
}

// NewSubscriptionRepository constructs a subscription repository over the
// provided store.
func NewSubscriptionRepository(s store.Store) *SubscriptionRepository {
	return &SubscriptionRepository{store: s}
}

// Toggle flips the subscription state for (subscriber, channel) with the
// same conditional-write discipline as like toggles: delete-match first,
// then an insert guarded by the unique (subscriber, channel) key.
func (r *SubscriptionRepository) Toggle(ctx context.Context, subscriberID, channelID string) (bool, error) {
	match := store.Document{"subscriber": subscriberID, "channel": channelID}

	deleted, err := r.store.DeleteMatch(ctx, store.Subscriptions, match)
	if err != nil {
		return false, fmt.Errorf("toggle subscription: %w", err)
	}
	if deleted > 0 {
		return false, nil
	}

	sub := models.Subscription{
		ID:         uuid.NewString(),
		Subscriber: subscriberID,
		Channel:    channelID,
		CreatedAt:  time.Now().UTC(),
	}
	doc, err := store.ToDocument(sub)
	if err != nil {
		return false, err
	}
	if err := r.store.Insert(ctx, store.Subscriptions, doc); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return true, nil
		}
		return false, fmt.Errorf("toggle subscription: %w", err)
	}
	return true, nil
}

// CountSubscribers reports how many users follow the channel.
func (r *SubscriptionRepository) CountSubscribers(ctx context.Context, channelID string) (int64, error) {
	return r.store.Count(ctx, store.Subscriptions, store.Document{"channel": channelID})
}
