package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/google/uuid"

	"github.com/clipstack/backend/internal/middleware"
	"github.com/clipstack/backend/internal/models"
	"github.com/clipstack/backend/internal/query"
)

// maxUploadBytes bounds multipart request memory before spilling to disk.
const maxUploadBytes = 64 << 20

var errMissingFile = errors.New("missing file")

// pageParams reads the page and limit query parameters. Missing or
// malformed values fall back to the defaults rather than failing the
// request.
func pageParams(r *http.Request) (page, limit int) {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil {
		page = query.DefaultPage
	}
	limit, err = strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil {
		limit = query.DefaultLimit
	}
	return query.NormalizePage(page), query.NormalizeLimit(limit)
}

// currentUser returns the authenticated user attached by the auth middleware.
func currentUser(r *http.Request) (models.User, bool) {
	return middleware.UserFromContext(r.Context())
}

// saveUpload stores one multipart file field and returns its public URL.
// A missing field surfaces as errMissingFile so callers can decide whether
// the file was required.
func saveUpload(r *http.Request, media MediaStore, field string) (string, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return "", errMissingFile
		}
		return "", fmt.Errorf("read %s upload: %w", field, err)
	}
	defer file.Close()

	name := uuid.NewString() + filepath.Ext(header.Filename)
	url, err := media.Save(r.Context(), name, file)
	if err != nil {
		return "", fmt.Errorf("store %s upload: %w", field, err)
	}
	return url, nil
}
