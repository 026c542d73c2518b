package storage

import (
	"context"
	"path/filepath"
	"testing"
)

func TestFileStore_RoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "store.json")
	ctx := context.Background()

	store, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}

	if _, found, err := store.Get(ctx, KeyTasks); err != nil || found {
		t.Fatalf("expected empty store, found=%v err=%v", found, err)
	}

	if err := store.Set(ctx, KeyTasks, `{"a":1}`); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	// A second store over the same file sees the write.
	reopened, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("NewFileStore reopen failed: %v", err)
	}
	value, found, err := reopened.Get(ctx, KeyTasks)
	if err != nil || !found {
		t.Fatalf("expected value after reopen, found=%v err=%v", found, err)
	}
	if value != `{"a":1}` {
		t.Errorf("got %q, want %q", value, `{"a":1}`)
	}
}

func TestFileStore_Remove(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "store.json")
	ctx := context.Background()

	store, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}

	if err := store.Set(ctx, KeyCurrentUser, "x"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := store.Remove(ctx, KeyCurrentUser); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if _, found, _ := store.Get(ctx, KeyCurrentUser); found {
		t.Error("expected key to be gone after Remove")
	}

	// Removing an absent key is fine.
	if err := store.Remove(ctx, "never-set"); err != nil {
		t.Errorf("Remove of absent key errored: %v", err)
	}
}

func TestFileStore_CreatesParentDirectory(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "dir", "store.json")
	ctx := context.Background()

	store, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}
	if err := store.Set(ctx, KeyUsers, "{}"); err != nil {
		t.Fatalf("Set into nested path failed: %v", err)
	}
}

func TestMemStore_Basics(t *testing.T) {
	t.Parallel()

	store := NewMemStore()
	ctx := context.Background()

	if _, found, _ := store.Get(ctx, "k"); found {
		t.Fatal("expected absent key")
	}
	if err := store.Set(ctx, "k", "v"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	value, found, _ := store.Get(ctx, "k")
	if !found || value != "v" {
		t.Fatalf("got (%q, %v), want (\"v\", true)", value, found)
	}
	if err := store.Remove(ctx, "k"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if _, found, _ := store.Get(ctx, "k"); found {
		t.Error("expected key removed")
	}
}
