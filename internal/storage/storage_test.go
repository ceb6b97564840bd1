package storage_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mfreitas/devmarket/internal/storage"
)

func TestLocalStore_PutDelete(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	s, err := storage.NewLocalStore(dir, "http://localhost:8080/uploads/")
	if err != nil {
		t.Fatalf("NewLocalStore: %v", err)
	}

	url, err := s.Put(ctx, "avatars/1-abc.png", "image/png", strings.NewReader("fake png bytes"))
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if url != "http://localhost:8080/uploads/avatars/1-abc.png" {
		t.Fatalf("unexpected URL: %q", url)
	}

	b, err := os.ReadFile(filepath.Join(dir, "avatars", "1-abc.png"))
	if err != nil {
		t.Fatalf("read stored object: %v", err)
	}
	if string(b) != "fake png bytes" {
		t.Fatalf("unexpected object content: %q", string(b))
	}

	if err := s.Delete(ctx, "avatars/1-abc.png"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "avatars", "1-abc.png")); !os.IsNotExist(err) {
		t.Fatalf("expected object to be gone, got %v", err)
	}

	// deleting a missing object is not an error
	if err := s.Delete(ctx, "avatars/does-not-exist.png"); err != nil {
		t.Fatalf("Delete missing: %v", err)
	}
}

func TestLocalStore_RequiresDir(t *testing.T) {
	if _, err := storage.NewLocalStore("", "http://localhost"); err == nil {
		t.Fatalf("expected error for empty dir")
	}
}

func TestLocalStore_CanceledContext(t *testing.T) {
	s, err := storage.NewLocalStore(t.TempDir(), "http://localhost")
	if err != nil {
		t.Fatalf("NewLocalStore: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := s.Put(ctx, "k", "text/plain", strings.NewReader("x")); err == nil {
		t.Fatalf("expected error for canceled context")
	}
	if err := s.Delete(ctx, "k"); err == nil {
		t.Fatalf("expected error for canceled context")
	}
}
