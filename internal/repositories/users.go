// Package repositories provides typed per-entity access over the document
// store. Each repository converts between entity structs and store
// documents and translates store sentinels for its callers.
package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/clipstack/backend/internal/models"
	"github.com/clipstack/backend/internal/store"
)

// UserRepository persists user records.
type UserRepository struct {
	store store.Store
}

// NewUserRepository constructs a user repository over the provided store.
func NewUserRepository(s store.Store) *UserRepository {
	return &UserRepository{store: s}
}

// Create persists a new user. Username and email uniqueness is enforced by
// the store; a collision surfaces as ErrConflict.
func (r *UserRepository) Create(ctx context.Context, user models.User) error {
	doc, err := store.ToDocument(user)
	if err != nil {
		return err
	}
	return r.store.Insert(ctx, store.Users, doc)
}

// FindByID fetches a user by id.
func (r *UserRepository) FindByID(ctx context.Context, id string) (models.User, error) {
	doc, err := r.store.Get(ctx, store.Users, id)
	if err != nil {
		return models.User{}, err
	}
	return decodeUser(doc)
}

// FindByUsername fetches a user by their unique username.
func (r *UserRepository) FindByUsername(ctx context.Context, username string) (models.User, error) {
	doc, err := r.store.FindOne(ctx, store.Users, store.Document{"username": username})
	if err != nil {
		return models.User{}, err
	}
	return decodeUser(doc)
}

// FindByEmail fetches a user by their unique email address.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (models.User, error) {
	doc, err := r.store.FindOne(ctx, store.Users, store.Document{"email": email})
	if err != nil {
		return models.User{}, err
	}
	return decodeUser(doc)
}

// Update replaces the stored record for the user, preserving fields the
// struct does not carry through the document encoding.
func (r *UserRepository) Update(ctx context.Context, user models.User) (models.User, error) {
	user.UpdatedAt = time.Now().UTC()
	replacement, err := store.ToDocument(user)
	if err != nil {
		return models.User{}, err
	}
	doc, err := r.store.Update(ctx, store.Users, user.ID, func(store.Document) (store.Document, error) {
		return replacement, nil
	})
	if err != nil {
		return models.User{}, err
	}
	return decodeUser(doc)
}

// SetRefreshToken stores the single active refresh token for the user. An
// empty token clears the session (logout).
func (r *UserRepository) SetRefreshToken(ctx context.Context, userID, token string) error {
	_, err := r.store.Update(ctx, store.Users, userID, func(doc store.Document) (store.Document, error) {
		if token == "" {
			delete(doc, "refreshToken")
		} else {
			doc["refreshToken"] = token
		}
		return doc, nil
	})
	return err
}

// SetPassword stores a new password hash for the user.
func (r *UserRepository) SetPassword(ctx context.Context, userID, passwordHash string) error {
	_, err := r.store.Update(ctx, store.Users, userID, func(doc store.Document) (store.Document, error) {
		doc["passwordHash"] = passwordHash
		doc["updatedAt"] = time.Now().UTC().Format(time.RFC3339Nano)
		return doc, nil
	})
	return err
}

// RecordWatch moves the video to the front of the user's watch history,
// deduplicating any earlier entry.
func (r *UserRepository) RecordWatch(ctx context.Context, userID, videoID string) error {
	_, err := r.store.Update(ctx, store.Users, userID, func(doc store.Document) (store.Document, error) {
		history, _ := doc["watchHistory"].([]any)
		updated := make([]any, 0, len(history)+1)
		updated = append(updated, videoID)
		for _, entry := range history {
			if entry == videoID {
				continue
			}
			updated = append(updated, entry)
		}
		doc["watchHistory"] = updated
		return doc, nil
	})
	return err
}

func decodeUser(doc store.Document) (models.User, error) {
	var user models.User
	if err := store.FromDocument(doc, &user); err != nil {
		return models.User{}, fmt.Errorf("decode user: %w", err)
	}
	return user, nil
}
