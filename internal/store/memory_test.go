package store

import (
	"context"
	"errors"
	"testing"
)

func TestMemoryStoreUniqueKeys(t *testing.T) {
	ctx := context.Background()
	mem := NewMemoryStore()

	if err := mem.Insert(ctx, Users, Document{"id": "u1", "username": "alice", "email": "alice@example.com"}); err != nil {
		t.Fatalf("insert user: %v", err)
	}

	err := mem.Insert(ctx, Users, Document{"id": "u2", "username": "bob", "email": "alice@example.com"})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict on duplicate email, got %v", err)
	}

	err = mem.Insert(ctx, Users, Document{"id": "u3", "username": "alice", "email": "other@example.com"})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict on duplicate username, got %v", err)
	}
}

func TestMemoryStoreLikeKeysAreIndependentPerTarget(t *testing.T) {
	ctx := context.Background()
	mem := NewMemoryStore()

	if err := mem.Insert(ctx, Likes, Document{"id": "l1", "likedBy": "u1", "video": "v1"}); err != nil {
		t.Fatalf("insert video like: %v", err)
	}
	// Same actor liking a comment must not collide with the video key.
	if err := mem.Insert(ctx, Likes, Document{"id": "l2", "likedBy": "u1", "comment": "c1"}); err != nil {
		t.Fatalf("insert comment like: %v", err)
	}
	// A second like on the same video pair must collide.
	err := mem.Insert(ctx, Likes, Document{"id": "l3", "likedBy": "u1", "video": "v1"})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict on duplicate like pair, got %v", err)
	}
}

func TestMemoryStoreUpdateMutatesUnderLock(t *testing.T) {
	ctx := context.Background()
	mem := NewMemoryStore()

	if err := mem.Insert(ctx, Videos, Document{"id": "v1", "views": float64(0)}); err != nil {
		t.Fatalf("insert video: %v", err)
	}

	updated, err := mem.Update(ctx, Videos, "v1", func(doc Document) (Document, error) {
		views, _ := doc["views"].(float64)
		doc["views"] = views + 1
		return doc, nil
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated["views"] != float64(1) {
		t.Fatalf("expected views 1, got %v", updated["views"])
	}

	stored, err := mem.Get(ctx, Videos, "v1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored["views"] != float64(1) {
		t.Fatalf("expected persisted views 1, got %v", stored["views"])
	}

	if _, err := mem.Update(ctx, Videos, "missing", func(doc Document) (Document, error) { return doc, nil }); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound updating missing doc, got %v", err)
	}
}

func TestMemoryStoreDeleteMatchReportsRemovals(t *testing.T) {
	ctx := context.Background()
	mem := NewMemoryStore()

	docs := []Document{
		{"id": "s1", "subscriber": "u1", "channel": "c1"},
		{"id": "s2", "subscriber": "u2", "channel": "c1"},
		{"id": "s3", "subscriber": "u1", "channel": "c2"},
	}
	for _, doc := range docs {
		if err := mem.Insert(ctx, Subscriptions, doc); err != nil {
			t.Fatalf("insert subscription: %v", err)
		}
	}

	removed, err := mem.DeleteMatch(ctx, Subscriptions, Document{"channel": "c1"})
	if err != nil {
		t.Fatalf("delete match: %v", err)
	}
	if removed != 2 {
		t.Fatalf("expected 2 removals, got %d", removed)
	}

	count, err := mem.Count(ctx, Subscriptions, nil)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 remaining subscription, got %d", count)
	}

	removed, err = mem.DeleteMatch(ctx, Subscriptions, Document{"channel": "c1"})
	if err != nil {
		t.Fatalf("delete match again: %v", err)
	}
	if removed != 0 {
		t.Fatalf("expected no removals on the second pass, got %d", removed)
	}
}

func TestMemoryStoreUnknownCollection(t *testing.T) {
	ctx := context.Background()
	mem := NewMemoryStore()

	_, err := mem.Scan(ctx, "reactions", nil)
	if !errors.Is(err, ErrUnknownCollection) {
		t.Fatalf("expected ErrUnknownCollection, got %v", err)
	}
}

func TestMemoryStoreDelete(t *testing.T) {
	ctx := context.Background()
	mem := NewMemoryStore()

	if err := mem.Insert(ctx, Tweets, Document{"id": "t1", "content": "hello"}); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := mem.Delete(ctx, Tweets, "t1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := mem.Delete(ctx, Tweets, "t1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound deleting twice, got %v", err)
	}
}
