// Package auth implements the session token lifecycle: a short-lived access
// token and a long-lived refresh token, both HS256-signed JWTs. The refresh
// token is persisted on the user record as the single active value, so
// issuing a new pair invalidates every previously issued refresh token.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/clipstack/backend/internal/models"
)

var (
	// ErrInvalidToken indicates the token failed signature or structural checks.
	ErrInvalidToken = errors.New("invalid token")
	// ErrTokenExpired indicates a correctly signed token past its expiry.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenReused indicates a refresh token that was valid when issued but
	// has since been superseded or revoked. Treated as a replay attempt.
	ErrTokenReused = errors.New("refresh token superseded")
)

// UserSource is the slice of user persistence the token manager needs.
type UserSource interface {
	FindByID(ctx context.Context, id string) (models.User, error)
	SetRefreshToken(ctx context.Context, userID, token string) error
}

// AccessClaims is the payload of an access token.
type AccessClaims struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	FullName string `json:"fullname"`
	jwt.RegisteredClaims
}

// RefreshClaims is the payload of a refresh token: the user id only.
type RefreshClaims struct {
	jwt.RegisteredClaims
}

// TokenManager issues, verifies, and rotates session token pairs.
type TokenManager struct {
	users         UserSource
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration

	now func() time.Time
}

// NewTokenManager constructs a TokenManager. Access and refresh tokens are
// signed with independent secrets.
func NewTokenManager(users UserSource, accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *TokenManager {
	if users == nil {
		panic("auth: user source must not be nil")
	}
	return &TokenManager{
		users:         users,
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		now:           time.Now,
	}
}

// Issue signs a new token pair for the user and persists the refresh token
// on the user record, superseding any previously issued one.
func (m *TokenManager) Issue(ctx context.Context, user models.User) (models.TokenPair, error) {
	if user.ID == "" {
		return models.TokenPair{}, errors.New("auth: user id must be provided")
	}

	now := m.now().UTC()
	accessExpiry := now.Add(m.accessTTL)
	refreshExpiry := now.Add(m.refreshTTL)

	access, err := m.signAccess(user, now, accessExpiry)
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("sign access token: %w", err)
	}

	refresh, err := m.signRefresh(user.ID, now, refreshExpiry)
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("sign refresh token: %w", err)
	}

	if err := m.users.SetRefreshToken(ctx, user.ID, refresh); err != nil {
		return models.TokenPair{}, fmt.Errorf("persist refresh token: %w", err)
	}

	return models.TokenPair{
		AccessToken:      access,
		AccessExpiresAt:  accessExpiry,
		RefreshToken:     refresh,
		RefreshExpiresAt: refreshExpiry,
	}, nil
}

// Rotate exchanges a refresh token for a new pair. The presented token must
// byte-equal the persisted one; a mismatch means it was superseded by a
// later issue or cleared by logout, and fails with ErrTokenReused.
func (m *TokenManager) Rotate(ctx context.Context, presented string) (models.User, models.TokenPair, error) {
	claims := RefreshClaims{}
	if err := m.parse(presented, m.refreshSecret, &claims); err != nil {
		return models.User{}, models.TokenPair{}, err
	}

	user, err := m.users.FindByID(ctx, claims.Subject)
	if err != nil {
		return models.User{}, models.TokenPair{}, fmt.Errorf("load user for rotation: %w", err)
	}

	if user.RefreshToken == "" || user.RefreshToken != presented {
		return models.User{}, models.TokenPair{}, ErrTokenReused
	}

	pair, err := m.Issue(ctx, user)
	if err != nil {
		return models.User{}, models.TokenPair{}, err
	}
	return user, pair, nil
}

// Revoke clears the persisted refresh token so every outstanding refresh
// token for the user fails Rotate.
func (m *TokenManager) Revoke(ctx context.Context, userID string) error {
	return m.users.SetRefreshToken(ctx, userID, "")
}

// VerifyAccess validates an access token and returns its claims.
func (m *TokenManager) VerifyAccess(token string) (AccessClaims, error) {
	claims := AccessClaims{}
	if err := m.parse(token, m.accessSecret, &claims); err != nil {
		return AccessClaims{}, err
	}
	return claims, nil
}

func (m *TokenManager) signAccess(user models.User, now, expiry time.Time) (string, error) {
	claims := AccessClaims{
		Email:    user.Email,
		Username: user.Username,
		FullName: user.FullName,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiry),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.accessSecret)
}

func (m *TokenManager) signRefresh(userID string, now, expiry time.Time) (string, error) {
	claims := RefreshClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiry),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.refreshSecret)
}

func (m *TokenManager) parse(token string, secret []byte, claims jwt.Claims) error {
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return secret, nil
	}, jwt.WithTimeFunc(m.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return ErrTokenExpired
		}
		return ErrInvalidToken
	}
	if !parsed.Valid {
		return ErrInvalidToken
	}
	return nil
}
