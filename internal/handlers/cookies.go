package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/clipstack/backend/internal/models"
)

const (
	accessTokenCookie  = "accessToken"
	refreshTokenCookie = "refreshToken"
)

// setAuthCookies attaches the token pair as httpOnly cookies so browser
// clients never expose the tokens to scripts. API clients may ignore the
// cookies and use the tokens from the response body instead.
func setAuthCookies(w http.ResponseWriter, r *http.Request, pair models.TokenPair) {
	setTokenCookie(w, r, accessTokenCookie, pair.AccessToken, pair.AccessExpiresAt)
	setTokenCookie(w, r, refreshTokenCookie, pair.RefreshToken, pair.RefreshExpiresAt)
}

// clearAuthCookies expires both token cookies.
func clearAuthCookies(w http.ResponseWriter, r *http.Request) {
	expireTokenCookie(w, r, accessTokenCookie)
	expireTokenCookie(w, r, refreshTokenCookie)
}

func setTokenCookie(w http.ResponseWriter, r *http.Request, name, value string, expires time.Time) {
	if value == "" {
		return
	}
	maxAge := int(time.Until(expires).Seconds())
	if maxAge < 0 {
		maxAge = 0
	}
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  expires.UTC(),
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   isSecureRequest(r),
		SameSite: http.SameSiteStrictMode,
	})
}

func expireTokenCookie(w http.ResponseWriter, r *http.Request, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0).UTC(),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   isSecureRequest(r),
		SameSite: http.SameSiteStrictMode,
	})
}

func isSecureRequest(r *http.Request) bool {
	if r == nil {
		return false
	}
	if r.TLS != nil {
		return true
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		for _, p := range strings.Split(proto, ",") {
			if strings.EqualFold(strings.TrimSpace(p), "https") {
				return true
			}
		}
	}
	return false
}
