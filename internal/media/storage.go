// Package media is the narrow interface to the external media-hosting
// service. Handlers hand it uploaded file contents and receive back a
// public location to store on the entity.
package media

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Storage persists uploaded media and returns its public location.
type Storage interface {
	Save(ctx context.Context, name string, r io.Reader) (string, error)
}

// DirStorage writes uploads to a local directory, for development and tests.
type DirStorage struct {
	dir     string
	baseURL string
}

// NewDirStorage constructs storage rooted at dir. Saved files are addressed
// as baseURL/name when baseURL is set, otherwise as the bare name.
func NewDirStorage(dir, baseURL string) (*DirStorage, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("media storage: directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("media storage: create directory: %w", err)
	}
	return &DirStorage{dir: dir, baseURL: strings.TrimSuffix(baseURL, "/")}, nil
}

// Save writes the content under name inside the storage directory.
func (d *DirStorage) Save(_ context.Context, name string, r io.Reader) (string, error) {
	key := filepath.Clean(strings.TrimLeft(name, "/"))
	if key == "" || key == "." || strings.HasPrefix(key, "..") {
		return "", fmt.Errorf("media storage: invalid key %q", name)
	}

	path := filepath.Join(d.dir, key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("media storage: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("media storage: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		return "", fmt.Errorf("media storage: write %s: %w", key, err)
	}

	if d.baseURL == "" {
		return key, nil
	}
	return fmt.Sprintf("%s/%s", d.baseURL, filepath.ToSlash(key)), nil
}
