package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/clipstack/backend/internal/models"
)

type fakeUserSource struct {
	users map[string]models.User
}

func newFakeUserSource(users ...models.User) *fakeUserSource {
	src := &fakeUserSource{users: make(map[string]models.User)}
	for _, user := range users {
		src.users[user.ID] = user
	}
	return src
}

func (s *fakeUserSource) FindByID(_ context.Context, id string) (models.User, error) {
	user, ok := s.users[id]
	if !ok {
		return models.User{}, errors.New("user not found")
	}
	return user, nil
}

func (s *fakeUserSource) SetRefreshToken(_ context.Context, userID, token string) error {
	user, ok := s.users[userID]
	if !ok {
		return errors.New("user not found")
	}
	user.RefreshToken = token
	s.users[userID] = user
	return nil
}

func newTestManager(src UserSource) *TokenManager {
	return NewTokenManager(src, "access-secret", "refresh-secret", 15*time.Minute, 240*time.Hour)
}

func TestIssueAndVerifyAccess(t *testing.T) {
	ctx := context.Background()
	user := models.User{ID: "u1", Username: "alice", Email: "alice@example.com", FullName: "Alice Example"}
	src := newFakeUserSource(user)
	mgr := newTestManager(src)

	pair, err := mgr.Issue(ctx, user)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatalf("expected both tokens, got %+v", pair)
	}
	if src.users["u1"].RefreshToken != pair.RefreshToken {
		t.Fatalf("expected refresh token persisted on the user record")
	}

	claims, err := mgr.VerifyAccess(pair.AccessToken)
	if err != nil {
		t.Fatalf("verify access: %v", err)
	}
	if claims.Subject != "u1" || claims.Username != "alice" || claims.Email != "alice@example.com" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestVerifyAccessRejectsRefreshToken(t *testing.T) {
	ctx := context.Background()
	user := models.User{ID: "u1", Username: "alice"}
	mgr := newTestManager(newFakeUserSource(user))

	pair, err := mgr.Issue(ctx, user)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if _, err := mgr.VerifyAccess(pair.RefreshToken); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for refresh token on access check, got %v", err)
	}
}

func TestRotateSupersedesOldToken(t *testing.T) {
	ctx := context.Background()
	user := models.User{ID: "u1", Username: "alice"}
	src := newFakeUserSource(user)
	mgr := newTestManager(src)

	first, err := mgr.Issue(ctx, user)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	rotatedUser, second, err := mgr.Rotate(ctx, first.RefreshToken)
	if err != nil {
		t.Fatalf("rotate: %v", err)
	}
	if rotatedUser.ID != "u1" {
		t.Fatalf("unexpected rotated user: %+v", rotatedUser)
	}
	if second.RefreshToken == first.RefreshToken {
		t.Fatalf("expected rotation to mint a fresh refresh token")
	}

	// The first token is now superseded; replaying it must fail.
	if _, _, err := mgr.Rotate(ctx, first.RefreshToken); !errors.Is(err, ErrTokenReused) {
		t.Fatalf("expected ErrTokenReused replaying the old token, got %v", err)
	}

	// The second token remains valid.
	if _, _, err := mgr.Rotate(ctx, second.RefreshToken); err != nil {
		t.Fatalf("rotate second token: %v", err)
	}
}

func TestRotateAfterRevokeFails(t *testing.T) {
	ctx := context.Background()
	user := models.User{ID: "u1", Username: "alice"}
	src := newFakeUserSource(user)
	mgr := newTestManager(src)

	pair, err := mgr.Issue(ctx, user)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if err := mgr.Revoke(ctx, user.ID); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if src.users["u1"].RefreshToken != "" {
		t.Fatalf("expected refresh token cleared after revoke")
	}

	if _, _, err := mgr.Rotate(ctx, pair.RefreshToken); !errors.Is(err, ErrTokenReused) {
		t.Fatalf("expected ErrTokenReused after revoke, got %v", err)
	}
}

func TestExpiredTokensAreRejected(t *testing.T) {
	ctx := context.Background()
	user := models.User{ID: "u1", Username: "alice"}
	src := newFakeUserSource(user)
	mgr := newTestManager(src)

	issuedAt := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	mgr.now = func() time.Time { return issuedAt }

	pair, err := mgr.Issue(ctx, user)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	mgr.now = func() time.Time { return issuedAt.Add(16 * time.Minute) }
	if _, err := mgr.VerifyAccess(pair.AccessToken); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired for stale access token, got %v", err)
	}

	mgr.now = func() time.Time { return issuedAt.Add(241 * time.Hour) }
	if _, _, err := mgr.Rotate(ctx, pair.RefreshToken); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired for stale refresh token, got %v", err)
	}
}
