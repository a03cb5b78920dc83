package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/clipstack/backend/internal/db"
)

// PostgresStore implements Store over one jsonb table per collection
// (id TEXT PRIMARY KEY, doc JSONB). Unique keys are enforced by expression
// indexes created by the migrations, so a concurrent duplicate insert
// surfaces as ErrConflict rather than a second row. Every call is bounded
// by the configured timeout.
type PostgresStore struct {
	pool    db.Pool
	timeout time.Duration
}

// NewPostgresStore constructs a store backed by the provided pool. A zero
// timeout disables per-call deadlines.
func NewPostgresStore(pool db.Pool, timeout time.Duration) *PostgresStore {
	return &PostgresStore{pool: pool, timeout: timeout}
}

func (s *PostgresStore) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.timeout)
}

// tableName validates the collection against the declared schema before it
// is interpolated into SQL.
func tableName(collection string) (string, error) {
	if _, ok := collectionSpec(collection); !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownCollection, collection)
	}
	return collection, nil
}

// Insert adds a new document.
func (s *PostgresStore) Insert(ctx context.Context, collection string, doc Document) error {
	table, err := tableName(collection)
	if err != nil {
		return err
	}
	id, ok := doc["id"].(string)
	if !ok || id == "" {
		return fmt.Errorf("document id is required")
	}

	ctx, cancel := s.bound(ctx)
	defer cancel()

	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return storeErr("acquire connection", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, fmt.Sprintf(`INSERT INTO %s (id, doc) VALUES ($1, $2)`, table), id, doc)
	if err != nil {
		return storeErr("insert "+collection, err)
	}
	return nil
}

// Get fetches a document by id.
func (s *PostgresStore) Get(ctx context.Context, collection, id string) (Document, error) {
	table, err := tableName(collection)
	if err != nil {
		return nil, err
	}

	ctx, cancel := s.bound(ctx)
	defer cancel()

	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return nil, storeErr("acquire connection", err)
	}
	defer conn.Release()

	var doc Document
	row := conn.QueryRow(ctx, fmt.Sprintf(`SELECT doc FROM %s WHERE id = $1`, table), id)
	if err := row.Scan(&doc); err != nil {
		return nil, storeErr("select "+collection, err)
	}
	return doc, nil
}

// FindOne returns a single matching document.
func (s *PostgresStore) FindOne(ctx context.Context, collection string, match Document) (Document, error) {
	table, err := tableName(collection)
	if err != nil {
		return nil, err
	}

	ctx, cancel := s.bound(ctx)
	defer cancel()

	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return nil, storeErr("acquire connection", err)
	}
	defer conn.Release()

	var doc Document
	row := conn.QueryRow(ctx, fmt.Sprintf(`SELECT doc FROM %s WHERE doc @> $1 LIMIT 1`, table), matchArg(match))
	if err := row.Scan(&doc); err != nil {
		return nil, storeErr("select "+collection, err)
	}
	return doc, nil
}

// Scan returns all matching documents.
func (s *PostgresStore) Scan(ctx context.Context, collection string, match Document) ([]Document, error) {
	table, err := tableName(collection)
	if err != nil {
		return nil, err
	}

	ctx, cancel := s.bound(ctx)
	defer cancel()

	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return nil, storeErr("acquire connection", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, fmt.Sprintf(`SELECT doc FROM %s WHERE doc @> $1`, table), matchArg(match))
	if err != nil {
		return nil, storeErr("query "+collection, err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var doc Document
		if err := rows.Scan(&doc); err != nil {
			return nil, storeErr("scan "+collection, err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("iterate "+collection, err)
	}
	return docs, nil
}

// Count reports how many documents match.
func (s *PostgresStore) Count(ctx context.Context, collection string, match Document) (int64, error) {
	table, err := tableName(collection)
	if err != nil {
		return 0, err
	}

	ctx, cancel := s.bound(ctx)
	defer cancel()

	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return 0, storeErr("acquire connection", err)
	}
	defer conn.Release()

	var count int64
	row := conn.QueryRow(ctx, fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE doc @> $1`, table), matchArg(match))
	if err := row.Scan(&count); err != nil {
		return 0, storeErr("count "+collection, err)
	}
	return count, nil
}

// Update applies mutate under a row lock so concurrent read-modify-write
// cycles on the same document serialize.
func (s *PostgresStore) Update(ctx context.Context, collection, id string, mutate func(Document) (Document, error)) (Document, error) {
	table, err := tableName(collection)
	if err != nil {
		return nil, err
	}

	ctx, cancel := s.bound(ctx)
	defer cancel()

	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return nil, storeErr("acquire connection", err)
	}
	defer conn.Release()

	tx, err := conn.Begin(ctx)
	if err != nil {
		return nil, storeErr("begin update "+collection, err)
	}
	defer tx.Rollback(ctx)

	var doc Document
	row := tx.QueryRow(ctx, fmt.Sprintf(`SELECT doc FROM %s WHERE id = $1 FOR UPDATE`, table), id)
	if err := row.Scan(&doc); err != nil {
		return nil, storeErr("select "+collection+" for update", err)
	}

	updated, err := mutate(doc)
	if err != nil {
		return nil, err
	}
	updated["id"] = id

	if _, err := tx.Exec(ctx, fmt.Sprintf(`UPDATE %s SET doc = $2 WHERE id = $1`, table), id, updated); err != nil {
		return nil, storeErr("update "+collection, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, storeErr("commit update "+collection, err)
	}
	return updated, nil
}

// Delete removes a document by id.
func (s *PostgresStore) Delete(ctx context.Context, collection, id string) error {
	table, err := tableName(collection)
	if err != nil {
		return err
	}

	ctx, cancel := s.bound(ctx)
	defer cancel()

	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return storeErr("acquire connection", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, table), id)
	if err != nil {
		return storeErr("delete "+collection, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteMatch removes all matching documents in a single statement.
func (s *PostgresStore) DeleteMatch(ctx context.Context, collection string, match Document) (int64, error) {
	table, err := tableName(collection)
	if err != nil {
		return 0, err
	}

	ctx, cancel := s.bound(ctx)
	defer cancel()

	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return 0, storeErr("acquire connection", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE doc @> $1`, table), matchArg(match))
	if err != nil {
		return 0, storeErr("delete "+collection, err)
	}
	return tag.RowsAffected(), nil
}

func matchArg(match Document) Document {
	if match == nil {
		return Document{}
	}
	return match
}

// storeErr maps driver failures onto the store's sentinel errors.
func storeErr(op string, err error) error {
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return ErrNotFound
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%s: %w", op, ErrUnavailable)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrConflict
	}
	return fmt.Errorf("%s: %w", op, err)
}
