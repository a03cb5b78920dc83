package store

import (
	"context"
	"fmt"
	"sync"
)

// MemoryStore is an in-process Store used by tests and as the executor fake
// for the query engine. It enforces the same unique keys as the Postgres
// implementation and serializes writes behind a single mutex, which gives
// the per-document atomicity the contract requires.
type MemoryStore struct {
	mu    sync.RWMutex
	colls map[string]*memCollection
}

type memCollection struct {
	spec  CollectionSpec
	order []string
	docs  map[string]Document
}

// NewMemoryStore returns a MemoryStore covering every declared collection.
func NewMemoryStore() *MemoryStore {
	colls := make(map[string]*memCollection)
	for _, spec := range Collections() {
		colls[spec.Name] = &memCollection{spec: spec, docs: make(map[string]Document)}
	}
	return &MemoryStore{colls: colls}
}

func (s *MemoryStore) collection(name string) (*memCollection, error) {
	coll, ok := s.colls[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCollection, name)
	}
	return coll, nil
}

// Insert adds a document, enforcing the collection's unique keys.
func (s *MemoryStore) Insert(ctx context.Context, collection string, doc Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	id, ok := doc["id"].(string)
	if !ok || id == "" {
		return fmt.Errorf("document id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	coll, err := s.collection(collection)
	if err != nil {
		return err
	}
	if _, exists := coll.docs[id]; exists {
		return ErrConflict
	}

	for _, key := range coll.spec.UniqueKeys {
		match, covered := uniqueKeyMatch(doc, key)
		if !covered {
			continue
		}
		for _, existing := range coll.docs {
			if matchesDocument(existing, match) {
				return ErrConflict
			}
		}
	}

	coll.docs[id] = copyDocument(doc)
	coll.order = append(coll.order, id)
	return nil
}

// Get fetches a document by id.
func (s *MemoryStore) Get(ctx context.Context, collection, id string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	coll, err := s.collection(collection)
	if err != nil {
		return nil, err
	}
	doc, ok := coll.docs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return copyDocument(doc), nil
}

// FindOne returns the first matching document in insertion order.
func (s *MemoryStore) FindOne(ctx context.Context, collection string, match Document) (Document, error) {
	docs, err := s.Scan(ctx, collection, match)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, ErrNotFound
	}
	return docs[0], nil
}

// Scan returns all matching documents in insertion order.
func (s *MemoryStore) Scan(ctx context.Context, collection string, match Document) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	coll, err := s.collection(collection)
	if err != nil {
		return nil, err
	}

	var results []Document
	for _, id := range coll.order {
		doc, ok := coll.docs[id]
		if !ok {
			continue
		}
		if matchesDocument(doc, match) {
			results = append(results, copyDocument(doc))
		}
	}
	return results, nil
}

// Count reports how many documents match.
func (s *MemoryStore) Count(ctx context.Context, collection string, match Document) (int64, error) {
	docs, err := s.Scan(ctx, collection, match)
	if err != nil {
		return 0, err
	}
	return int64(len(docs)), nil
}

// Update applies mutate to the stored document under the write lock.
func (s *MemoryStore) Update(ctx context.Context, collection, id string, mutate func(Document) (Document, error)) (Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	coll, err := s.collection(collection)
	if err != nil {
		return nil, err
	}
	doc, ok := coll.docs[id]
	if !ok {
		return nil, ErrNotFound
	}

	updated, err := mutate(copyDocument(doc))
	if err != nil {
		return nil, err
	}
	updated["id"] = id
	coll.docs[id] = copyDocument(updated)
	return updated, nil
}

// Delete removes a document by id.
func (s *MemoryStore) Delete(ctx context.Context, collection, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	coll, err := s.collection(collection)
	if err != nil {
		return err
	}
	if _, ok := coll.docs[id]; !ok {
		return ErrNotFound
	}
	delete(coll.docs, id)
	for i, existing := range coll.order {
		if existing == id {
			coll.order = append(coll.order[:i], coll.order[i+1:]...)
			break
		}
	}
	return nil
}

// DeleteMatch removes every matching document in one critical section.
func (s *MemoryStore) DeleteMatch(ctx context.Context, collection string, match Document) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	coll, err := s.collection(collection)
	if err != nil {
		return 0, err
	}

	var removed int64
	kept := coll.order[:0]
	for _, id := range coll.order {
		doc := coll.docs[id]
		if matchesDocument(doc, match) {
			delete(coll.docs, id)
			removed++
			continue
		}
		kept = append(kept, id)
	}
	coll.order = kept
	return removed, nil
}

// uniqueKeyMatch builds an equality match for a unique key, reporting false
// when the document does not carry every field of the key.
func uniqueKeyMatch(doc Document, key []string) (Document, bool) {
	match := make(Document, len(key))
	for _, field := range key {
		value, ok := doc[field]
		if !ok || value == nil || value == "" {
			return nil, false
		}
		match[field] = value
	}
	return match, true
}

func matchesDocument(doc, match Document) bool {
	for field, want := range match {
		got, ok := doc[field]
		if !ok || !equalValues(got, want) {
			return false
		}
	}
	return true
}

// equalValues compares two JSON-typed values, tolerating the int/float64
// drift between values that did and did not pass through json.Unmarshal.
func equalValues(a, b any) bool {
	if a == b {
		return true
	}
	af, aok := asFloat(a)
	bf, bok := asFloat(b)
	if aok && bok {
		return af == bf
	}
	return false
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

func copyDocument(doc Document) Document {
	out := make(Document, len(doc))
	for k, v := range doc {
		out[k] = copyValue(v)
	}
	return out
}

func copyValue(v any) any {
	switch val := v.(type) {
	case Document:
		return copyDocument(val)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = copyValue(item)
		}
		return out
	default:
		return v
	}
}
