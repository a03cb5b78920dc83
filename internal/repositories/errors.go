package repositories

import "github.com/clipstack/backend/internal/store"

var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = store.ErrNotFound
	// ErrConflict indicates the attempted write would violate a uniqueness
	// constraint enforced by the store.
	ErrConflict = store.ErrConflict
)
