package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/rishtahub/rishta-backend/pkg/config"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(config.UploadsConfig{RootDir: t.TempDir()}, nil)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return store
}

func TestStorePutGetDelete(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	info, err := store.Put(ctx, "photos/user-1/pic.jpg", bytes.NewBufferString("image-bytes"))
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if info.SizeBytes != int64(len("image-bytes")) {
		t.Fatalf("unexpected size %d", info.SizeBytes)
	}

	r, err := store.Get(ctx, "photos/user-1/pic.jpg")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	data, err := io.ReadAll(r)
	_ = r.Close()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "image-bytes" {
		t.Fatalf("unexpected contents %q", data)
	}

	exists, err := store.Exists(ctx, "photos/user-1/pic.jpg")
	if err != nil || !exists {
		t.Fatalf("expected object to exist, err=%v", err)
	}

	if err := store.Delete(ctx, "photos/user-1/pic.jpg"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Get(ctx, "photos/user-1/pic.jpg"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestStoreDeleteMissingKeyIsNoop(t *testing.T) {
	store := newTestStore(t)
	if err := store.Delete(context.Background(), "photos/absent.jpg"); err != nil {
		t.Fatalf("delete missing: %v", err)
	}
}

func TestStoreRejectsEscapingKeys(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	for _, key := range []string{"", "../outside", "/etc/passwd", "a/../../b"} {
		if _, err := store.Put(ctx, key, bytes.NewBufferString("x")); err == nil {
			t.Fatalf("expected rejection for key %q", key)
		}
	}
}

func TestStoreListWithPrefix(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	for _, key := range []string{"photos/a/1.jpg", "photos/a/2.jpg", "photos/b/3.jpg"} {
		if _, err := store.Put(ctx, key, bytes.NewBufferString("x")); err != nil {
			t.Fatalf("put %s: %v", key, err)
		}
	}

	keys, err := store.List(ctx, "photos/a/")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(keys) != 2 {
		t.Fatalf("expected 2 keys, got %v", keys)
	}
}
