package localstore

import (
	"testing"
)

func TestOpenRequiresDir(t *testing.T) {
	if _, err := Open("  "); err != ErrStorageDirRequired {
		t.Fatalf("expected ErrStorageDirRequired, got %v", err)
	}
}

func TestSetGetRemove(t *testing.T) {
	store, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	defer store.Close()

	if err := store.Set("movie_note:u1:42", "hello"); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	value, ok, err := store.Get("movie_note:u1:42")
	if err != nil || !ok || value != "hello" {
		t.Fatalf("get = (%q, %v, %v), want (hello, true, nil)", value, ok, err)
	}

	// Overwrite replaces.
	if err := store.Set("movie_note:u1:42", "world"); err != nil {
		t.Fatalf("overwrite failed: %v", err)
	}
	value, _, _ = store.Get("movie_note:u1:42")
	if value != "world" {
		t.Fatalf("expected overwritten value, got %q", value)
	}

	if err := store.Remove("movie_note:u1:42"); err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	_, ok, _ = store.Get("movie_note:u1:42")
	if ok {
		t.Fatal("expected key to be gone after remove")
	}

	// Removing again is not an error.
	if err := store.Remove("movie_note:u1:42"); err != nil {
		t.Fatalf("second remove should be a no-op, got %v", err)
	}
}

func TestKeysPrefixScan(t *testing.T) {
	store, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	defer store.Close()

	seed := map[string]string{
		"movie_note:u1:1":     "a",
		"movie_note:u1:2":     "b",
		"movie_note:u2:1":     "c",
		"user_preferences:u1": "[]",
	}
	for k, v := range seed {
		if err := store.Set(k, v); err != nil {
			t.Fatalf("seed %q failed: %v", k, err)
		}
	}

	keys, err := store.Keys("movie_note:u1:")
	if err != nil {
		t.Fatalf("keys failed: %v", err)
	}
	if len(keys) != 2 {
		t.Fatalf("expected 2 keys, got %d: %v", len(keys), keys)
	}
	if keys[0] != "movie_note:u1:1" || keys[1] != "movie_note:u1:2" {
		t.Fatalf("unexpected keys: %v", keys)
	}
}

func TestKeysPrefixEscapesLikeMetacharacters(t *testing.T) {
	store, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	defer store.Close()

	if err := store.Set("a_b:1", "x"); err != nil {
		t.Fatal(err)
	}
	if err := store.Set("aXb:1", "y"); err != nil {
		t.Fatal(err)
	}

	keys, err := store.Keys("a_b:")
	if err != nil {
		t.Fatalf("keys failed: %v", err)
	}
	if len(keys) != 1 || keys[0] != "a_b:1" {
		t.Fatalf("underscore should match literally, got %v", keys)
	}
}
