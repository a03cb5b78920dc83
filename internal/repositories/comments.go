package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/clipstack/backend/internal/models"
	"github.com/clipstack/backend/internal/store"
)

// CommentRepository persists comment records.
type CommentRepository struct {
	store store.Store
}

// NewCommentRepository constructs a comment repository over the provided store.
func NewCommentRepository(s store.Store) *CommentRepository {
	return &CommentRepository{store: s}
}

// Create persists a new comment.
func (r *CommentRepository) Create(ctx context.Context, comment models.Comment) error {
	doc, err := store.ToDocument(comment)
	if err != nil {
		return err
	}
	return r.store.Insert(ctx, store.Comments, doc)
}

// FindByID fetches a comment by id.
func (r *CommentRepository) FindByID(ctx context.Context, id string) (models.Comment, error) {
	doc, err := r.store.Get(ctx, store.Comments, id)
	if err != nil {
		return models.Comment{}, err
	}
	return decodeComment(doc)
}

// UpdateContent replaces the comment body. Comments are mutable by content
// only.
func (r *CommentRepository) UpdateContent(ctx context.Context, id, content string) (models.Comment, error) {
	doc, err := r.store.Update(ctx, store.Comments, id, func(doc store.Document) (store.Document, error) {
		doc["content"] = content
		doc["updatedAt"] = time.Now().UTC().Format(time.RFC3339Nano)
		return doc, nil
	})
	if err != nil {
		return models.Comment{}, err
	}
	return decodeComment(doc)
}

// Delete removes a comment by id.
func (r *CommentRepository) Delete(ctx context.Context, id string) error {
	return r.store.Delete(ctx, store.Comments, id)
}

func decodeComment(doc store.Document) (models.Comment, error) {
	var comment models.Comment
	if err := store.FromDocument(doc, &comment); err != nil {
		return models.Comment{}, fmt.Errorf("decode comment: %w", err)
	}
	return comment, nil
}
