package media

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDirStorageSave(t *testing.T) {
	dir := t.TempDir()
	storage, err := NewDirStorage(dir, "/media")
	if err != nil {
		t.Fatalf("NewDirStorage: %v", err)
	}

	url, err := storage.Save(context.Background(), "avatars/alice.png", strings.NewReader("pixels"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if url != "/media/avatars/alice.png" {
		t.Fatalf("unexpected url %q", url)
	}

	data, err := os.ReadFile(filepath.Join(dir, "avatars", "alice.png"))
	if err != nil {
		t.Fatalf("read saved file: %v", err)
	}
	if string(data) != "pixels" {
		t.Fatalf("unexpected contents %q", data)
	}
}

func TestDirStorageSaveWithoutBaseURL(t *testing.T) {
	storage, err := NewDirStorage(t.TempDir(), "")
	if err != nil {
		t.Fatalf("NewDirStorage: %v", err)
	}

	url, err := storage.Save(context.Background(), "clip.mp4", strings.NewReader("frames"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if url != "clip.mp4" {
		t.Fatalf("unexpected url %q", url)
	}
}

func TestDirStorageRejectsTraversal(t *testing.T) {
	storage, err := NewDirStorage(t.TempDir(), "/media")
	if err != nil {
		t.Fatalf("NewDirStorage: %v", err)
	}

	for _, name := range []string{"", ".", "../escape.png", "/../escape.png"} {
		if _, err := storage.Save(context.Background(), name, strings.NewReader("x")); err == nil {
			t.Fatalf("expected error for key %q", name)
		}
	}
}

func TestNewDirStorageRequiresDirectory(t *testing.T) {
	if _, err := NewDirStorage("  ", "/media"); err == nil {
		t.Fatalf("expected error for blank directory")
	}
}
