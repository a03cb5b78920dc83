package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/clipstack/backend/internal/models"
	"github.com/clipstack/backend/internal/store"
)

var (
	// ErrVideoInPlaylist indicates the video is already in the playlist.
	ErrVideoInPlaylist = errors.New("video already in playlist")
	// ErrVideoNotInPlaylist indicates the video is not in the playlist.
	ErrVideoNotInPlaylist = errors.New("video not in playlist")
)

// PlaylistRepository persists playlist records.
type PlaylistRepository struct {
	store store.Store
}

// NewPlaylistRepository constructs a playlist repository over the provided
// store.
func NewPlaylistRepository(s store.Store) *PlaylistRepository {
	return &PlaylistRepository{store: s}
}

// Create persists a new playlist.
func (r *PlaylistRepository) Create(ctx context.Context, playlist models.Playlist) error {
	doc, err := store.ToDocument(playlist)
	if err != nil {
		return err
	}
	return r.store.Insert(ctx, store.Playlists, doc)
}

// FindByID fetches a playlist by id.
func (r *PlaylistRepository) FindByID(ctx context.Context, id string) (models.Playlist, error) {
	doc, err := r.store.Get(ctx, store.Playlists, id)
	if err != nil {
		return models.Playlist{}, err
	}
	return decodePlaylist(doc)
}

// UpdateDetails replaces the playlist name and description, keeping any
// empty argument's current value.
func (r *PlaylistRepository) UpdateDetails(ctx context.Context, id, name, description string) (models.Playlist, error) {
	doc, err := r.store.Update(ctx, store.Playlists, id, func(doc store.Document) (store.Document, error) {
		if name != "" {
			doc["name"] = name
		}
		if description != "" {
			doc["description"] = description
		}
		doc["updatedAt"] = time.Now().UTC().Format(time.RFC3339Nano)
		return doc, nil
	})
	if err != nil {
		return models.Playlist{}, err
	}
	return decodePlaylist(doc)
}

// Delete removes a playlist by id.
func (r *PlaylistRepository) Delete(ctx context.Context, id string) error {
	return r.store.Delete(ctx, store.Playlists, id)
}

// AddVideo appends the video id to the playlist under the document lock,
// rejecting duplicates.
func (r *PlaylistRepository) AddVideo(ctx context.Context, playlistID, videoID string) error {
	_, err := r.store.Update(ctx, store.Playlists, playlistID, func(doc store.Document) (store.Document, error) {
		videos, _ := doc["videos"].([]any)
		for _, existing := range videos {
			if existing == videoID {
				return nil, ErrVideoInPlaylist
			}
		}
		doc["videos"] = append(videos, videoID)
		doc["updatedAt"] = time.Now().UTC().Format(time.RFC3339Nano)
		return doc, nil
	})
	return err
}

// RemoveVideo drops the video id from the playlist under the document lock.
func (r *PlaylistRepository) RemoveVideo(ctx context.Context, playlistID, videoID string) error {
	_, err := r.store.Update(ctx, store.Playlists, playlistID, func(doc store.Document) (store.Document, error) {
		videos, _ := doc["videos"].([]any)
		kept := make([]any, 0, len(videos))
		found := false
		for _, existing := range videos {
			if existing == videoID {
				found = true
				continue
			}
			kept = append(kept, existing)
		}
		if !found {
			return nil, ErrVideoNotInPlaylist
		}
		doc["videos"] = kept
		doc["updatedAt"] = time.Now().UTC().Format(time.RFC3339Nano)
		return doc, nil
	})
	return err
}

func decodePlaylist(doc store.Document) (models.Playlist, error) {
	var playlist models.Playlist
	if err := store.FromDocument(doc, &playlist); err != nil {
		return models.Playlist{}, fmt.Errorf("decode playlist: %w", err)
	}
	return playlist, nil
}
