package watchlist

import (
	"context"
	"errors"
	"testing"

	"sydneymovies/models"
)

type stubGateway struct {
	err   error
	calls int
}

func (g *stubGateway) MovieDetails(_ context.Context, id int64) (*models.MovieDetails, error) {
	g.calls++
	if g.err != nil {
		return nil, g.err
	}
	return &models.MovieDetails{
		ID:          id,
		Title:       "Stub Movie",
		ReleaseDate: "2010-07-16",
		VoteAverage: 8.8,
		PosterPath:  "/stub.jpg",
	}, nil
}

func (g *stubGateway) ImageURL(posterPath, size string) string {
	if posterPath == "" {
		return ""
	}
	return "https://img.example" + posterPath
}

func newTestService() (*Service, *MemoryStore) {
	store := NewMemoryStore()
	return NewService(store, &stubGateway{}), store
}

func TestFirstAddCreatesDefaultCollection(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	if err := svc.AddToCollections(ctx, "u1", 42, nil); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	collections, err := store.CollectionsByOwner(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if len(collections) != 1 {
		t.Fatalf("expected exactly one collection, got %d", len(collections))
	}
	if collections[0].Name != DefaultCollectionName {
		t.Fatalf("expected default name %q, got %q", DefaultCollectionName, collections[0].Name)
	}

	memberships, err := store.Memberships(ctx, collections[0].ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(memberships) != 1 || memberships[0].MovieID != 42 {
		t.Fatalf("expected movie 42 as sole member, got %+v", memberships)
	}

	// Content record persisted before membership.
	if _, ok := store.Movie(42); !ok {
		t.Fatal("expected movie row to be upserted")
	}
}

func TestAddIsIdempotent(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	if err := svc.AddToCollections(ctx, "u1", 42, nil); err != nil {
		t.Fatalf("first add failed: %v", err)
	}
	if err := svc.AddToCollections(ctx, "u1", 42, nil); err != nil {
		t.Fatalf("second add failed: %v", err)
	}

	collections, _ := store.CollectionsByOwner(ctx, "u1")
	memberships, _ := store.Memberships(ctx, collections[0].ID)
	if len(memberships) != 1 {
		t.Fatalf("expected one membership row after repeated add, got %d", len(memberships))
	}
}

func TestAddFanOutAcrossCollections(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	a, err := svc.CreateCollection(ctx, "u1", "Action", "")
	if err != nil {
		t.Fatal(err)
	}
	b, err := svc.CreateCollection(ctx, "u1", "Favorites", "")
	if err != nil {
		t.Fatal(err)
	}

	if err := svc.AddToCollections(ctx, "u1", 42, []int64{a.ID, b.ID}); err != nil {
		t.Fatalf("fan-out add failed: %v", err)
	}

	for _, c := range []models.Collection{a, b} {
		memberships, _ := store.Memberships(ctx, c.ID)
		if len(memberships) != 1 || memberships[0].MovieID != 42 {
			t.Fatalf("collection %d missing movie 42: %+v", c.ID, memberships)
		}
	}
}

func TestAddFailsWhenMetadataUnavailable(t *testing.T) {
	store := NewMemoryStore()
	gateway := &stubGateway{err: errors.New("tmdb down")}
	svc := NewService(store, gateway)
	ctx := context.Background()

	c, err := svc.CreateCollection(ctx, "u1", "Action", "")
	if err != nil {
		t.Fatal(err)
	}

	if err := svc.AddToCollections(ctx, "u1", 42, []int64{c.ID}); err == nil {
		t.Fatal("expected add to fail when metadata upsert fails")
	}

	// All-or-nothing: no membership row written.
	memberships, _ := store.Memberships(ctx, c.ID)
	if len(memberships) != 0 {
		t.Fatalf("expected no membership rows, got %+v", memberships)
	}
	if _, ok := store.Movie(42); ok {
		t.Fatal("expected no movie row")
	}
}

func TestAddPropagatesRemoteFailure(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	c, err := svc.CreateCollection(ctx, "u1", "Action", "")
	if err != nil {
		t.Fatal(err)
	}

	store.FailWith(errors.New("connection refused"))
	if err := svc.AddToCollections(ctx, "u1", 42, []int64{c.ID}); err == nil {
		t.Fatal("membership mutations must propagate remote failures as hard failures")
	}
}

func TestRemoveIsIdempotent(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	if err := svc.AddToCollections(ctx, "u1", 42, nil); err != nil {
		t.Fatal(err)
	}
	collections, _ := store.CollectionsByOwner(ctx, "u1")

	// Removing a non-member does not error and leaves membership unchanged.
	if err := svc.Remove(ctx, "u1", collections[0].ID, 999); err != nil {
		t.Fatalf("removing non-member should not error: %v", err)
	}
	memberships, _ := store.Memberships(ctx, collections[0].ID)
	if len(memberships) != 1 {
		t.Fatalf("membership changed by no-op remove: %+v", memberships)
	}

	if err := svc.Remove(ctx, "u1", collections[0].ID, 42); err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	memberships, _ = store.Memberships(ctx, collections[0].ID)
	if len(memberships) != 0 {
		t.Fatalf("expected empty membership, got %+v", memberships)
	}
}

func TestIsMemberTracksDefaultCollectionOnly(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	if svc.IsMember("u1", 42) {
		t.Fatal("empty projection should report non-member")
	}

	if err := svc.AddToCollections(ctx, "u1", 42, nil); err != nil {
		t.Fatal(err)
	}
	if !svc.IsMember("u1", 42) {
		t.Fatal("expected member after add")
	}

	if err := svc.Remove(ctx, "u1", 0, 42); err != nil {
		t.Fatal(err)
	}
	if svc.IsMember("u1", 42) {
		t.Fatal("expected non-member after remove")
	}
}

func TestDeleteCollectionLeavesOtherMembership(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	a, _ := svc.CreateCollection(ctx, "u1", "A", "")
	b, _ := svc.CreateCollection(ctx, "u1", "B", "")

	if err := svc.AddToCollections(ctx, "u1", 42, []int64{a.ID, b.ID}); err != nil {
		t.Fatal(err)
	}

	if err := svc.DeleteCollection(ctx, "u1", a.ID); err != nil {
		t.Fatalf("delete collection failed: %v", err)
	}

	collections, _ := store.CollectionsByOwner(ctx, "u1")
	if len(collections) != 1 || collections[0].ID != b.ID {
		t.Fatalf("expected only collection B to survive, got %+v", collections)
	}

	memberships, _ := store.Memberships(ctx, b.ID)
	if len(memberships) != 1 || memberships[0].MovieID != 42 {
		t.Fatalf("movie 42 should remain a member of B, got %+v", memberships)
	}
	if remaining, _ := store.Memberships(ctx, a.ID); len(remaining) != 0 {
		t.Fatalf("collection A memberships should be gone, got %+v", remaining)
	}
}

func TestDeleteCollectionRejectsForeignOwner(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	c, _ := svc.CreateCollection(ctx, "u1", "A", "")
	if err := svc.DeleteCollection(ctx, "u2", c.ID); !errors.Is(err, ErrCollectionNotOwned) {
		t.Fatalf("expected ErrCollectionNotOwned, got %v", err)
	}
}

func TestListHydratesAndToleratesMetadataFailure(t *testing.T) {
	store := NewMemoryStore()
	gateway := &stubGateway{}
	svc := NewService(store, gateway)
	ctx := context.Background()

	if err := svc.AddToCollections(ctx, "u1", 42, nil); err != nil {
		t.Fatal(err)
	}

	// Metadata failing on read must not drop the entry.
	gateway.err = errors.New("tmdb down")
	entries, err := svc.List(ctx, "u1")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].Title != "Movie #42" {
		t.Fatalf("expected fallback label, got %q", entries[0].Title)
	}

	gateway.err = nil
	entries, err = svc.List(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if entries[0].Title != "Stub Movie" || entries[0].Year != 2010 {
		t.Fatalf("expected hydrated entry, got %+v", entries[0])
	}
}

func TestListWithoutCollectionsCreatesNothing(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	entries, err := svc.List(ctx, "u1")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected empty list, got %+v", entries)
	}
	collections, _ := store.CollectionsByOwner(ctx, "u1")
	if len(collections) != 0 {
		t.Fatal("read path must not create collections")
	}
}

func TestValidation(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	if err := svc.AddToCollections(ctx, " ", 42, nil); !errors.Is(err, ErrOwnerIDRequired) {
		t.Fatalf("expected ErrOwnerIDRequired, got %v", err)
	}
	if err := svc.AddToCollections(ctx, "u1", 0, nil); !errors.Is(err, ErrMovieIDRequired) {
		t.Fatalf("expected ErrMovieIDRequired, got %v", err)
	}
	if err := svc.AddToCollections(ctx, "u1", 42, []int64{-3}); !errors.Is(err, ErrCollectionIDRequired) {
		t.Fatalf("expected ErrCollectionIDRequired, got %v", err)
	}
}
