// Package store defines the document-store contract the rest of the service
// is written against: named collections of JSON documents with per-document
// atomic writes, equality scans, and store-enforced unique keys. Joins are
// not provided; the query package emulates them over scans.
package store

import (
	"context"
	"errors"
)

// Document is a single record within a collection. The id is carried under
// the "id" key and duplicated as the primary key by implementations.
type Document = map[string]any

var (
	// ErrNotFound indicates the requested document does not exist.
	ErrNotFound = errors.New("document not found")
	// ErrConflict indicates the attempted write would violate a unique key.
	ErrConflict = errors.New("document conflict")
	// ErrUnavailable indicates the store could not be reached in time. Calls
	// failing with it may be retried; ErrNotFound and ErrConflict may not.
	ErrUnavailable = errors.New("store unavailable")
	// ErrUnknownCollection indicates a collection name outside the declared
	// schema. Joins against it resolve to an empty list rather than failing.
	ErrUnknownCollection = errors.New("unknown collection")
)

// Store is the document-store access contract. Match arguments are equality
// predicates: a document matches when every listed field equals the given
// value. A nil or empty match selects the whole collection.
type Store interface {
	// Insert adds a new document, failing with ErrConflict when one of the
	// collection's unique keys collides with an existing document.
	Insert(ctx context.Context, collection string, doc Document) error

	// Get fetches a document by id.
	Get(ctx context.Context, collection, id string) (Document, error)

	// FindOne returns a single matching document or ErrNotFound.
	FindOne(ctx context.Context, collection string, match Document) (Document, error)

	// Scan returns all matching documents.
	Scan(ctx context.Context, collection string, match Document) ([]Document, error)

	// Count reports how many documents match.
	Count(ctx context.Context, collection string, match Document) (int64, error)

	// Update applies mutate to the document under a per-document write lock
	// and persists the result. The returned document is the stored value.
	Update(ctx context.Context, collection, id string, mutate func(Document) (Document, error)) (Document, error)

	// Delete removes a document by id, failing with ErrNotFound when absent.
	Delete(ctx context.Context, collection, id string) error

	// DeleteMatch removes all matching documents in a single conditional
	// statement and reports how many were removed.
	DeleteMatch(ctx context.Context, collection string, match Document) (int64, error)
}

// Collection names used by the service.
const (
	Users         = "users"
	Videos        = "videos"
	Comments      = "comments"
	Tweets        = "tweets"
	Likes         = "likes"
	Subscriptions = "subscriptions"
	Playlists     = "playlists"
)

// CollectionSpec declares a collection and the unique keys the store must
// enforce on it. A unique key applies only to documents carrying every
// field in the key, which keeps the per-target like keys independent.
type CollectionSpec struct {
	Name       string
	UniqueKeys [][]string
}

// Collections returns the full schema the service operates over. Both store
// implementations and the migration files derive from this list.
func Collections() []CollectionSpec {
	return []CollectionSpec{
		{Name: Users, UniqueKeys: [][]string{{"username"}, {"email"}}},
		{Name: Videos},
		{Name: Comments},
		{Name: Tweets},
		{Name: Likes, UniqueKeys: [][]string{
			{"likedBy", "video"},
			{"likedBy", "comment"},
			{"likedBy", "tweet"},
		}},
		{Name: Subscriptions, UniqueKeys: [][]string{{"subscriber", "channel"}}},
		{Name: Playlists},
	}
}

func collectionSpec(name string) (CollectionSpec, bool) {
	for _, spec := range Collections() {
		if spec.Name == name {
			return spec, true
		}
	}
	return CollectionSpec{}, false
}
