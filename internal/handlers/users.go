package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/clipstack/backend/internal/auth"
	"github.com/clipstack/backend/internal/logging"
	"github.com/clipstack/backend/internal/models"
	"github.com/clipstack/backend/internal/query"
	"github.com/clipstack/backend/internal/repositories"
	"github.com/clipstack/backend/internal/views"
)

// UserHandler implements account, session, and profile endpoints.
type UserHandler struct {
	Users    UserStore
	Sessions SessionManager
	Media    MediaStore
	Query    query.Scanner
	Limiter  RateLimiter
	NowFunc  func() time.Time
}

// Register handles POST /api/v1/users/register requests.
func (h UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if !allowRequest(h.Limiter, r, "register") {
		respondError(ctx, w, http.StatusTooManyRequests, "too many registration attempts")
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		logger.Warn("invalid register payload", "error", err)
		respondError(ctx, w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	fullName := strings.TrimSpace(r.FormValue("fullname"))
	email := models.NormalizeEmail(r.FormValue("email"))
	username := models.NormalizeUsername(r.FormValue("username"))
	password := r.FormValue("password")

	if fullName == "" {
		respondError(ctx, w, http.StatusBadRequest, "fullname is required")
		return
	}
	if err := models.ValidateUsername(username); err != nil {
		respondError(ctx, w, http.StatusBadRequest, err.Error())
		return
	}
	if err := models.ValidateEmail(email); err != nil {
		respondError(ctx, w, http.StatusBadRequest, err.Error())
		return
	}
	if err := models.ValidatePassword(password); err != nil {
		respondError(ctx, w, http.StatusBadRequest, err.Error())
		return
	}

	if _, err := h.Users.FindByUsername(ctx, username); err == nil {
		respondError(ctx, w, http.StatusConflict, "username already taken", "username")
		return
	} else if !errors.Is(err, repositories.ErrNotFound) {
		logger.Error("register username lookup failed", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "unable to verify existing accounts")
		return
	}
	if _, err := h.Users.FindByEmail(ctx, email); err == nil {
		respondError(ctx, w, http.StatusConflict, "email already registered", "email")
		return
	} else if !errors.Is(err, repositories.ErrNotFound) {
		logger.Error("register email lookup failed", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "unable to verify existing accounts")
		return
	}

	avatarURL, err := saveUpload(r, h.Media, "avatar")
	if err != nil {
		if errors.Is(err, errMissingFile) {
			respondError(ctx, w, http.StatusBadRequest, "avatar file is required")
			return
		}
		logger.Error("register avatar upload failed", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "failed to store avatar")
		return
	}

	coverURL, err := saveUpload(r, h.Media, "coverImage")
	if err != nil && !errors.Is(err, errMissingFile) {
		logger.Error("register cover upload failed", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "failed to store cover image")
		return
	}

	hashed, err := auth.HashPassword(password)
	if err != nil {
		logger.Error("register failed to hash password", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "failed to secure password")
		return
	}

	now := h.now()
	user := models.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		FullName:     fullName,
		Avatar:       avatarURL,
		CoverImage:   coverURL,
		WatchHistory: []string{},
		Password:     hashed,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := h.Users.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrConflict) {
			respondError(ctx, w, http.StatusConflict, "account already exists")
			return
		}
		logger.Error("register failed to create user", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "failed to create account")
		return
	}

	respond(ctx, w, http.StatusCreated, "user registered", user.Sanitized())
}

// Login handles POST /api/v1/users/login requests.
func (h UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if !allowRequest(h.Limiter, r, "login") {
		respondError(ctx, w, http.StatusTooManyRequests, "too many login attempts")
		return
	}

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid login payload", "error", err)
		respondError(ctx, w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Username = models.NormalizeUsername(req.Username)
	req.Email = models.NormalizeEmail(req.Email)
	if (req.Username == "" && req.Email == "") || req.Password == "" {
		respondError(ctx, w, http.StatusBadRequest, "username or email and password are required")
		return
	}

	var (
		user models.User
		err  error
	)
	if req.Username != "" {
		user, err = h.Users.FindByUsername(ctx, req.Username)
	} else {
		user, err = h.Users.FindByEmail(ctx, req.Email)
	}
	if err != nil {
		logger.Warn("login user lookup failed", "error", err)
		respondError(ctx, w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	if err := auth.CheckPassword(user.Password, req.Password); err != nil {
		logger.Warn("login password mismatch", "userId", user.ID)
		respondError(ctx, w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	tokens, err := h.Sessions.Issue(ctx, user)
	if err != nil {
		logger.Error("failed to issue session", "error", err, "userId", user.ID)
		respondError(ctx, w, http.StatusInternalServerError, "failed to create session")
		return
	}

	setAuthCookies(w, r, tokens)
	respond(ctx, w, http.StatusOK, "logged in", sessionResponse{
		User:   user.Sanitized(),
		Tokens: tokens,
	})
}

// Logout handles POST /api/v1/users/logout requests.
func (h UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, ok := currentUser(r)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "unauthorized request")
		return
	}

	if err := h.Sessions.Revoke(ctx, user.ID); err != nil {
		logging.FromContext(ctx).Error("failed to revoke session", "error", err, "userId", user.ID)
		respondError(ctx, w, http.StatusInternalServerError, "failed to end session")
		return
	}

	clearAuthCookies(w, r)
	respond(ctx, w, http.StatusOK, "logged out", map[string]any{})
}

// RefreshToken handles POST /api/v1/users/refresh-token requests. The
// refresh token is read from the refreshToken cookie, falling back to the
// request body.
func (h UserHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if !allowRequest(h.Limiter, r, "refresh") {
		respondError(ctx, w, http.StatusTooManyRequests, "too many refresh attempts")
		return
	}

	token := ""
	if cookie, err := r.Cookie(refreshTokenCookie); err == nil {
		token = cookie.Value
	}
	if token == "" {
		var req refreshRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err == nil {
			token = strings.TrimSpace(req.RefreshToken)
		}
	}
	if token == "" {
		respondError(ctx, w, http.StatusUnauthorized, "refresh token is required")
		return
	}

	user, tokens, err := h.Sessions.Rotate(ctx, token)
	if err != nil {
		logger.Warn("refresh rotation failed", "error", err)
		respondError(ctx, w, http.StatusUnauthorized, "invalid refresh token")
		return
	}

	setAuthCookies(w, r, tokens)
	respond(ctx, w, http.StatusOK, "session refreshed", sessionResponse{
		User:   user.Sanitized(),
		Tokens: tokens,
	})
}

// Me handles GET /api/v1/users/me requests.
func (h UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, ok := currentUser(r)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "unauthorized request")
		return
	}
	respond(ctx, w, http.StatusOK, "current user", user)
}

// UpdatePassword handles PATCH /api/v1/users/update-password requests.
func (h UserHandler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	user, ok := currentUser(r)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "unauthorized request")
		return
	}

	var req updatePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := models.ValidatePassword(req.NewPassword); err != nil {
		respondError(ctx, w, http.StatusBadRequest, err.Error())
		return
	}

	// The context user is sanitized; load the stored record for the hash.
	stored, err := h.Users.FindByID(ctx, user.ID)
	if err != nil {
		respondStoreError(ctx, w, err, "user not found")
		return
	}
	if err := auth.CheckPassword(stored.Password, req.OldPassword); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "incorrect old password")
		return
	}

	hashed, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		logger.Error("failed to hash new password", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "failed to secure password")
		return
	}
	if err := h.Users.SetPassword(ctx, user.ID, hashed); err != nil {
		respondStoreError(ctx, w, err, "user not found")
		return
	}

	respond(ctx, w, http.StatusOK, "password updated", map[string]any{})
}

// UpdateAccount handles PATCH /api/v1/users/update-account requests.
func (h UserHandler) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, ok := currentUser(r)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "unauthorized request")
		return
	}

	var req updateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.FullName = strings.TrimSpace(req.FullName)
	req.Email = models.NormalizeEmail(req.Email)
	if req.FullName == "" || req.Email == "" {
		respondError(ctx, w, http.StatusBadRequest, "fullname and email are required")
		return
	}
	if err := models.ValidateEmail(req.Email); err != nil {
		respondError(ctx, w, http.StatusBadRequest, err.Error())
		return
	}

	stored, err := h.Users.FindByID(ctx, user.ID)
	if err != nil {
		respondStoreError(ctx, w, err, "user not found")
		return
	}
	stored.FullName = req.FullName
	stored.Email = req.Email

	updated, err := h.Users.Update(ctx, stored)
	if err != nil {
		if errors.Is(err, repositories.ErrConflict) {
			respondError(ctx, w, http.StatusConflict, "email already registered", "email")
			return
		}
		respondStoreError(ctx, w, err, "user not found")
		return
	}

	respond(ctx, w, http.StatusOK, "account updated", updated.Sanitized())
}

// UpdateAvatar handles PATCH /api/v1/users/update-avatar requests.
func (h UserHandler) UpdateAvatar(w http.ResponseWriter, r *http.Request) {
	h.updateImage(w, r, "avatar")
}

// UpdateCover handles PATCH /api/v1/users/update-cover requests.
func (h UserHandler) UpdateCover(w http.ResponseWriter, r *http.Request) {
	h.updateImage(w, r, "coverImage")
}

func (h UserHandler) updateImage(w http.ResponseWriter, r *http.Request, field string) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	user, ok := currentUser(r)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "unauthorized request")
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	url, err := saveUpload(r, h.Media, field)
	if err != nil {
		if errors.Is(err, errMissingFile) {
			respondError(ctx, w, http.StatusBadRequest, field+" file is required")
			return
		}
		logger.Error("image upload failed", "field", field, "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "failed to store image")
		return
	}

	stored, err := h.Users.FindByID(ctx, user.ID)
	if err != nil {
		respondStoreError(ctx, w, err, "user not found")
		return
	}
	switch field {
	case "avatar":
		stored.Avatar = url
	case "coverImage":
		stored.CoverImage = url
	}

	updated, err := h.Users.Update(ctx, stored)
	if err != nil {
		respondStoreError(ctx, w, err, "user not found")
		return
	}
	respond(ctx, w, http.StatusOK, field+" updated", updated.Sanitized())
}

// ChannelProfile handles GET /api/v1/users/c/{username} requests.
func (h UserHandler) ChannelProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	viewer, ok := currentUser(r)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "unauthorized request")
		return
	}

	username := models.NormalizeUsername(r.PathValue("username"))
	if username == "" {
		respondError(ctx, w, http.StatusBadRequest, "username is required")
		return
	}

	docs, err := query.Execute(ctx, h.Query, views.ChannelProfile(username, viewer.ID))
	if err != nil {
		respondStoreError(ctx, w, err, "channel does not exist")
		return
	}
	if len(docs) == 0 {
		respondError(ctx, w, http.StatusNotFound, "channel does not exist")
		return
	}

	respond(ctx, w, http.StatusOK, "channel profile", docs[0])
}

// WatchHistory handles GET /api/v1/users/history requests.
func (h UserHandler) WatchHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, ok := currentUser(r)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "unauthorized request")
		return
	}

	docs, err := query.Execute(ctx, h.Query, views.WatchHistory(user.ID))
	if err != nil {
		respondStoreError(ctx, w, err, "user not found")
		return
	}

	history := []any{}
	if len(docs) > 0 {
		if entries, ok := docs[0]["watchHistory"].([]any); ok {
			history = entries
		}
	}

	respond(ctx, w, http.StatusOK, "watch history", history)
}

type loginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type updatePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

type updateAccountRequest struct {
	FullName string `json:"fullname"`
	Email    string `json:"email"`
}

type sessionResponse struct {
	User   models.User      `json:"user"`
	Tokens models.TokenPair `json:"tokens"`
}

func (h UserHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}
