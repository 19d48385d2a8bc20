package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func newTestFileStore(t *testing.T) (*FileStore, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "session.json")
	fs, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}
	return fs, path
}

func TestFileStoreRequiresPath(t *testing.T) {
	if _, err := NewFileStore(""); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestFileStoreContract(t *testing.T) {
	fs, _ := newTestFileStore(t)
	tokenStoreContract(t, fs)
}

func TestFileStorePersistsAcrossInstances(t *testing.T) {
	fs, path := newTestFileStore(t)
	ctx := context.Background()

	if err := fs.Set(ctx, "sg:session", "record"); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	reopened, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	value, ok, err := reopened.Get(ctx, "sg:session")
	if err != nil || !ok || value != "record" {
		t.Fatalf("expected persisted value, got (%q, %t, %v)", value, ok, err)
	}
}

func TestFileStoreMode(t *testing.T) {
	fs, path := newTestFileStore(t)

	if err := fs.Set(context.Background(), "k", "v"); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat failed: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("expected mode 0600, got %o", info.Mode().Perm())
	}
}

func TestFileStoreClearRemovesFile(t *testing.T) {
	fs, path := newTestFileStore(t)
	ctx := context.Background()

	if err := fs.Set(ctx, "k", "v"); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if err := fs.Clear(ctx); err != nil {
		t.Fatalf("clear failed: %v", err)
	}
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected the file to be gone, got %v", err)
	}

	// clearing an absent file is a no-op
	if err := fs.Clear(ctx); err != nil {
		t.Fatalf("second clear failed: %v", err)
	}
}

func TestFileStoreRejectsCorruptFile(t *testing.T) {
	fs, path := newTestFileStore(t)
	ctx := context.Background()

	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	if _, _, err := fs.Get(ctx, "k"); !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
}

func TestFileStoreCreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "session.json")
	fs, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}

	if err := fs.Set(context.Background(), "k", "v"); err != nil {
		t.Fatalf("set with missing parent failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected file to exist: %v", err)
	}
}
