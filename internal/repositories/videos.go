package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/clipstack/backend/internal/models"
	"github.com/clipstack/backend/internal/store"
)

// VideoRepository persists video records.
type VideoRepository struct {
	store store.Store
}

// NewVideoRepository constructs a video repository over the provided store.
func NewVideoRepository(s store.Store) *VideoRepository {
	return &VideoRepository{store: s}
}

// Create persists a new video.
func (r *VideoRepository) Create(ctx context.Context, video models.Video) error {
	doc, err := store.ToDocument(video)
	if err != nil {
		return err
	}
	return r.store.Insert(ctx, store.Videos, doc)
}

// FindByID fetches a video by id.
func (r *VideoRepository) FindByID(ctx context.Context, id string) (models.Video, error) {
	doc, err := r.store.Get(ctx, store.Videos, id)
	if err != nil {
		return models.Video{}, err
	}
	return decodeVideo(doc)
}

// Update replaces the stored record for the video.
func (r *VideoRepository) Update(ctx context.Context, video models.Video) (models.Video, error) {
	video.UpdatedAt = time.Now().UTC()
	replacement, err := store.ToDocument(video)
	if err != nil {
		return models.Video{}, err
	}
	doc, err := r.store.Update(ctx, store.Videos, video.ID, func(store.Document) (store.Document, error) {
		return replacement, nil
	})
	if err != nil {
		return models.Video{}, err
	}
	return decodeVideo(doc)
}

// Delete removes a video by id.
func (r *VideoRepository) Delete(ctx context.Context, id string) error {
	return r.store.Delete(ctx, store.Videos, id)
}

// TogglePublish flips the publish flag under the document lock and returns
// the updated video.
func (r *VideoRepository) TogglePublish(ctx context.Context, id string) (models.Video, error) {
	doc, err := r.store.Update(ctx, store.Videos, id, func(doc store.Document) (store.Document, error) {
		published, _ := doc["isPublished"].(bool)
		doc["isPublished"] = !published
		doc["updatedAt"] = time.Now().UTC().Format(time.RFC3339Nano)
		return doc, nil
	})
	if err != nil {
		return models.Video{}, err
	}
	return decodeVideo(doc)
}

// IncrementViews bumps the view counter under the document lock.
func (r *VideoRepository) IncrementViews(ctx context.Context, id string) error {
	_, err := r.store.Update(ctx, store.Videos, id, func(doc store.Document) (store.Document, error) {
		views, _ := doc["views"].(float64)
		doc["views"] = views + 1
		return doc, nil
	})
	return err
}

func decodeVideo(doc store.Document) (models.Video, error) {
	var video models.Video
	if err := store.FromDocument(doc, &video); err != nil {
		return models.Video{}, fmt.Errorf("decode video: %w", err)
	}
	return video, nil
}
