package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/cockroachdb/cockroach-go/v2/testserver"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

var testPool *pgxpool.Pool

func TestMain(m *testing.M) {
	server, err := testserver.NewTestServer()
	if err != nil {
		// Leave testPool nil so the integration tests skip and the
		// in-memory tests still run.
		fmt.Fprintf(os.Stderr, "start cockroach test server: %v\n", err)
		os.Exit(m.Run())
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, server.PGURL().String())
	if err != nil {
		fmt.Fprintf(os.Stderr, "connect to cockroach test server: %v\n", err)
		server.Stop()
		os.Exit(m.Run())
	}

	if err := applyMigrations(ctx, pool); err != nil {
		fmt.Fprintf(os.Stderr, "apply migrations: %v\n", err)
		pool.Close()
		server.Stop()
		os.Exit(m.Run())
	}

	testPool = pool

	code := m.Run()

	pool.Close()
	server.Stop()

	os.Exit(code)
}

func newIntegrationStore(t *testing.T) *PostgresStore {
	t.Helper()
	if testPool == nil {
		t.Skip("cockroach test server unavailable")
	}
	resetDatabase(t)
	return NewPostgresStore(testPool, 5*time.Second)
}

func TestPostgresStoreInsertAndGet(t *testing.T) {
	ctx := context.Background()
	pg := newIntegrationStore(t)

	id := uuid.NewString()
	doc := Document{
		"id":       id,
		"username": "alice",
		"email":    "alice@example.com",
		"fullname": "Alice Example",
	}
	if err := pg.Insert(ctx, Users, doc); err != nil {
		t.Fatalf("insert user: %v", err)
	}

	got, err := pg.Get(ctx, Users, id)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if got["username"] != "alice" || got["email"] != "alice@example.com" {
		t.Fatalf("unexpected document: %+v", got)
	}

	if _, err := pg.Get(ctx, Users, uuid.NewString()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown id, got %v", err)
	}
}

func TestPostgresStoreUniqueIndexes(t *testing.T) {
	ctx := context.Background()
	pg := newIntegrationStore(t)

	first := Document{"id": uuid.NewString(), "username": "alice", "email": "alice@example.com"}
	if err := pg.Insert(ctx, Users, first); err != nil {
		t.Fatalf("insert first user: %v", err)
	}

	sameName := Document{"id": uuid.NewString(), "username": "alice", "email": "other@example.com"}
	if err := pg.Insert(ctx, Users, sameName); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict for duplicate username, got %v", err)
	}

	sameEmail := Document{"id": uuid.NewString(), "username": "other", "email": "alice@example.com"}
	if err := pg.Insert(ctx, Users, sameEmail); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict for duplicate email, got %v", err)
	}
}

func TestPostgresStoreLikeEdgeUniqueness(t *testing.T) {
	ctx := context.Background()
	pg := newIntegrationStore(t)

	like := Document{"id": uuid.NewString(), "likedBy": "alice", "video": "v1"}
	if err := pg.Insert(ctx, Likes, like); err != nil {
		t.Fatalf("insert like: %v", err)
	}

	duplicate := Document{"id": uuid.NewString(), "likedBy": "alice", "video": "v1"}
	if err := pg.Insert(ctx, Likes, duplicate); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict for duplicate like edge, got %v", err)
	}

	// The same pair on a different target kind is a distinct edge.
	commentLike := Document{"id": uuid.NewString(), "likedBy": "alice", "comment": "v1"}
	if err := pg.Insert(ctx, Likes, commentLike); err != nil {
		t.Fatalf("insert comment like: %v", err)
	}
}

func TestPostgresStoreScanAndCount(t *testing.T) {
	ctx := context.Background()
	pg := newIntegrationStore(t)

	owner := uuid.NewString()
	for i := 0; i < 3; i++ {
		doc := Document{
			"id":          uuid.NewString(),
			"owner":       owner,
			"title":       fmt.Sprintf("video %d", i),
			"isPublished": i != 0,
		}
		if err := pg.Insert(ctx, Videos, doc); err != nil {
			t.Fatalf("insert video %d: %v", i, err)
		}
	}

	published, err := pg.Scan(ctx, Videos, Document{"owner": owner, "isPublished": true})
	if err != nil {
		t.Fatalf("scan videos: %v", err)
	}
	if len(published) != 2 {
		t.Fatalf("expected 2 published videos, got %d", len(published))
	}

	total, err := pg.Count(ctx, Videos, Document{"owner": owner})
	if err != nil {
		t.Fatalf("count videos: %v", err)
	}
	if total != 3 {
		t.Fatalf("expected count 3, got %d", total)
	}
}

func TestPostgresStoreUpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	pg := newIntegrationStore(t)

	id := uuid.NewString()
	doc := Document{"id": id, "content": "first draft", "owner": "alice"}
	if err := pg.Insert(ctx, Tweets, doc); err != nil {
		t.Fatalf("insert tweet: %v", err)
	}

	updated, err := pg.Update(ctx, Tweets, id, func(d Document) (Document, error) {
		d["content"] = "edited"
		return d, nil
	})
	if err != nil {
		t.Fatalf("update tweet: %v", err)
	}
	if updated["content"] != "edited" {
		t.Fatalf("expected edited content, got %v", updated["content"])
	}

	got, err := pg.Get(ctx, Tweets, id)
	if err != nil {
		t.Fatalf("get tweet: %v", err)
	}
	if got["content"] != "edited" {
		t.Fatalf("expected persisted edit, got %v", got["content"])
	}

	if err := pg.Delete(ctx, Tweets, id); err != nil {
		t.Fatalf("delete tweet: %v", err)
	}
	if err := pg.Delete(ctx, Tweets, id); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound deleting twice, got %v", err)
	}
}

func TestPostgresStoreDeleteMatch(t *testing.T) {
	ctx := context.Background()
	pg := newIntegrationStore(t)

	for _, channel := range []string{"c1", "c1", "c2"} {
		doc := Document{"id": uuid.NewString(), "subscriber": uuid.NewString(), "channel": channel}
		if err := pg.Insert(ctx, Subscriptions, doc); err != nil {
			t.Fatalf("insert subscription: %v", err)
		}
	}

	removed, err := pg.DeleteMatch(ctx, Subscriptions, Document{"channel": "c1"})
	if err != nil {
		t.Fatalf("delete match: %v", err)
	}
	if removed != 2 {
		t.Fatalf("expected 2 removed, got %d", removed)
	}

	removed, err = pg.DeleteMatch(ctx, Subscriptions, Document{"channel": "c1"})
	if err != nil {
		t.Fatalf("second delete match: %v", err)
	}
	if removed != 0 {
		t.Fatalf("expected 0 removed, got %d", removed)
	}
}

func applyMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	migrationsDir := filepath.Join("..", "..", "migrations")
	entries, err := os.ReadDir(migrationsDir)
	if err != nil {
		return fmt.Errorf("read migrations dir: %w", err)
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		contents, err := os.ReadFile(filepath.Join(migrationsDir, entry.Name()))
		if err != nil {
			return fmt.Errorf("read migration %s: %w", entry.Name(), err)
		}

		if _, err := pool.Exec(ctx, string(contents)); err != nil {
			return fmt.Errorf("apply migration %s: %w", entry.Name(), err)
		}
	}

	return nil
}

func resetDatabase(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	conn, err := testPool.Acquire(ctx)
	if err != nil {
		t.Fatalf("acquire connection: %v", err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "TRUNCATE TABLE users, videos, comments, tweets, likes, subscriptions, playlists CASCADE"); err != nil {
		t.Fatalf("truncate tables: %v", err)
	}
}
