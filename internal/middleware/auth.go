package middleware

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/clipstack/backend/internal/auth"
	"github.com/clipstack/backend/internal/models"
)

const accessTokenCookie = "accessToken"

type userKey struct{}

// TokenVerifier validates an access token and returns its claims.
type TokenVerifier interface {
	VerifyAccess(token string) (auth.AccessClaims, error)
}

// UserLoader resolves the account a verified token belongs to.
type UserLoader interface {
	FindByID(ctx context.Context, id string) (models.User, error)
}

// WithUser stores the authenticated user on the context.
func WithUser(ctx context.Context, user models.User) context.Context {
	return context.WithValue(ctx, userKey{}, user)
}

// UserFromContext retrieves the authenticated user placed by Authenticate.
func UserFromContext(ctx context.Context) (models.User, bool) {
	user, ok := ctx.Value(userKey{}).(models.User)
	return user, ok
}

// Authenticate verifies the access token carried in the accessToken cookie
// or the Authorization header, loads the matching account, and stores its
// sanitized form on the request context. Requests without a valid token are
// rejected with 401 before reaching the handler.
func Authenticate(verifier TokenVerifier, users UserLoader) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				unauthorized(w, "unauthorized request")
				return
			}

			claims, err := verifier.VerifyAccess(token)
			if err != nil {
				unauthorized(w, "invalid access token")
				return
			}

			user, err := users.FindByID(r.Context(), claims.Subject)
			if err != nil {
				unauthorized(w, "invalid access token")
				return
			}

			ctx := WithUser(r.Context(), user.Sanitized())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// bearerToken pulls the access token from the cookie or, failing that, the
// Authorization header.
func bearerToken(r *http.Request) string {
	if cookie, err := r.Cookie(accessTokenCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	header := r.Header.Get("Authorization")
	if after, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(after)
	}
	return ""
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)

	body := map[string]any{
		"statusCode": http.StatusUnauthorized,
		"message":    message,
		"success":    false,
		"errors":     []string{},
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Default().Warn("write unauthorized response", "error", err)
	}
}
