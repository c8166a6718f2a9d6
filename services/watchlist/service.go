package watchlist

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sourcegraph/conc/pool"

	"sydneymovies/models"
)

var (
	ErrOwnerIDRequired      = errors.New("owner id is required")
	ErrMovieIDRequired      = errors.New("movie id is required")
	ErrCollectionIDRequired = errors.New("collection id is required")
	ErrCollectionNotOwned   = errors.New("collection does not belong to this user")
)

// DefaultCollectionName is used when a first add creates a collection
// implicitly.
const DefaultCollectionName = "My Watchlist"

const hydrateWorkers = 8

// MetadataGateway is the slice of the metadata service the manager needs.
type MetadataGateway interface {
	MovieDetails(ctx context.Context, id int64) (*models.MovieDetails, error)
	ImageURL(posterPath, size string) string
}

// Service owns multi-list membership: create-list-on-demand, idempotent
// add/remove, multi-list fan-out add. Membership lives only in the remote
// store; mutations propagate remote failures as hard failures.
type Service struct {
	store Store
	meta  MetadataGateway

	// members is the in-memory projection of each owner's default
	// collection, backing IsMember.
	mu      sync.RWMutex
	members map[string]map[int64]struct{}
}

// NewService creates the membership manager.
func NewService(store Store, meta MetadataGateway) *Service {
	return &Service{
		store:   store,
		meta:    meta,
		members: make(map[string]map[int64]struct{}),
	}
}

// ResolveDefaultCollection returns the owner's oldest collection, creating
// "My Watchlist" when none exists. Two concurrent first-adds can race and
// create two default collections; the remote store enforces no uniqueness
// constraint that would prevent it, and reads always pick the oldest, so
// duplicates are tolerated rather than corrected.
func (s *Service) ResolveDefaultCollection(ctx context.Context, ownerID string) (models.Collection, error) {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return models.Collection{}, ErrOwnerIDRequired
	}

	collections, err := s.store.CollectionsByOwner(ctx, ownerID)
	if err != nil {
		return models.Collection{}, fmt.Errorf("resolve default collection: %w", err)
	}
	if len(collections) > 0 {
		return collections[0], nil
	}

	created, err := s.store.CreateCollection(ctx, ownerID, DefaultCollectionName, "")
	if err != nil {
		return models.Collection{}, fmt.Errorf("create default collection: %w", err)
	}
	return created, nil
}

// AddToCollections adds a movie to every target collection. An empty target
// set resolves to the default collection. The movie's metadata row is
// upserted first so the membership foreign keys are valid; if that upsert
// fails the whole call fails and no membership rows are written. Repeated
// adds are idempotent.
func (s *Service) AddToCollections(ctx context.Context, ownerID string, movieID int64, collectionIDs []int64) error {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return ErrOwnerIDRequired
	}
	if movieID <= 0 {
		return ErrMovieIDRequired
	}
	for _, collectionID := range collectionIDs {
		if collectionID <= 0 {
			return ErrCollectionIDRequired
		}
	}

	if len(collectionIDs) == 0 {
		def, err := s.ResolveDefaultCollection(ctx, ownerID)
		if err != nil {
			return err
		}
		collectionIDs = []int64{def.ID}
	}

	details, err := s.meta.MovieDetails(ctx, movieID)
	if err != nil {
		return fmt.Errorf("resolve movie metadata: %w", err)
	}
	if err := s.store.UpsertMovie(ctx, s.movieFromDetails(details)); err != nil {
		return err
	}

	now := time.Now().UTC()
	for _, collectionID := range collectionIDs {
		err := s.store.UpsertMembership(ctx, models.Membership{
			CollectionID: collectionID,
			MovieID:      movieID,
			Watched:      false,
			AddedAt:      now,
		})
		if err != nil {
			return err
		}
	}

	s.mu.Lock()
	s.ensureOwnerLocked(ownerID)[movieID] = struct{}{}
	s.mu.Unlock()
	return nil
}

// Remove deletes one membership row. collectionID 0 resolves to the default
// collection. Removing a non-member is a no-op.
func (s *Service) Remove(ctx context.Context, ownerID string, collectionID, movieID int64) error {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return ErrOwnerIDRequired
	}
	if movieID <= 0 {
		return ErrMovieIDRequired
	}

	if collectionID <= 0 {
		def, err := s.ResolveDefaultCollection(ctx, ownerID)
		if err != nil {
			return err
		}
		collectionID = def.ID
	}

	if err := s.store.DeleteMembership(ctx, collectionID, movieID); err != nil {
		return err
	}

	s.mu.Lock()
	delete(s.ensureOwnerLocked(ownerID), movieID)
	s.mu.Unlock()
	return nil
}

// IsMember reports whether the movie is in the owner's default collection,
// per the projection refreshed by List, AddToCollections and Remove.
// Membership in other collections is not reflected here.
func (s *Service) IsMember(ownerID string, movieID int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.members[ownerID][movieID]
	return ok
}

// List returns the default collection's entries hydrated with metadata,
// newest first, and refreshes the membership projection. An owner with no
// collections gets an empty list; nothing is created on read.
func (s *Service) List(ctx context.Context, ownerID string) ([]models.WatchlistEntry, error) {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return nil, ErrOwnerIDRequired
	}

	collections, err := s.store.CollectionsByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list watchlist: %w", err)
	}
	if len(collections) == 0 {
		s.replaceProjection(ownerID, nil)
		return []models.WatchlistEntry{}, nil
	}

	memberships, err := s.store.Memberships(ctx, collections[0].ID)
	if err != nil {
		return nil, fmt.Errorf("list watchlist: %w", err)
	}

	entries := s.hydrate(ctx, memberships)
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].AddedAt.Equal(entries[j].AddedAt) {
			return entries[i].MovieID < entries[j].MovieID
		}
		return entries[i].AddedAt.After(entries[j].AddedAt)
	})

	s.replaceProjection(ownerID, memberships)
	return entries, nil
}

// Collections returns all of the owner's collections, oldest first.
func (s *Service) Collections(ctx context.Context, ownerID string) ([]models.Collection, error) {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return nil, ErrOwnerIDRequired
	}
	return s.store.CollectionsByOwner(ctx, ownerID)
}

// CreateCollection creates a named collection for the owner. A blank name
// falls back to the default name; names are not unique.
func (s *Service) CreateCollection(ctx context.Context, ownerID, name, description string) (models.Collection, error) {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return models.Collection{}, ErrOwnerIDRequired
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultCollectionName
	}
	return s.store.CreateCollection(ctx, ownerID, name, strings.TrimSpace(description))
}

// DeleteCollection removes the collection and its membership rows. Other
// collections keep their rows: a movie in two collections survives the
// deletion of one.
func (s *Service) DeleteCollection(ctx context.Context, ownerID string, collectionID int64) error {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return ErrOwnerIDRequired
	}
	if collectionID <= 0 {
		return ErrCollectionIDRequired
	}

	collections, err := s.store.CollectionsByOwner(ctx, ownerID)
	if err != nil {
		return fmt.Errorf("delete collection: %w", err)
	}
	owned := false
	wasDefault := false
	for i, c := range collections {
		if c.ID == collectionID {
			owned = true
			wasDefault = i == 0
			break
		}
	}
	if !owned {
		return ErrCollectionNotOwned
	}

	if err := s.store.DeleteCollection(ctx, collectionID); err != nil {
		return err
	}

	if wasDefault {
		s.replaceProjection(ownerID, nil)
	}
	return nil
}

// hydrate resolves metadata for each membership concurrently. A failed
// resolution yields a fallback entry; it never cancels sibling resolutions.
func (s *Service) hydrate(ctx context.Context, memberships []models.Membership) []models.WatchlistEntry {
	entries := make([]models.WatchlistEntry, len(memberships))

	p := pool.New().WithMaxGoroutines(hydrateWorkers)
	for i, m := range memberships {
		i, m := i, m
		p.Go(func() {
			entries[i] = models.WatchlistEntry{
				MovieID: m.MovieID,
				Title:   models.FallbackTitle(m.MovieID),
				Watched: m.Watched,
				AddedAt: m.AddedAt,
			}

			details, err := s.meta.MovieDetails(ctx, m.MovieID)
			if err != nil {
				return
			}
			entries[i].Title = details.Title
			entries[i].Rating = details.VoteAverage
			entries[i].Genres = details.GenreNames()
			entries[i].PosterURL = s.meta.ImageURL(details.PosterPath, "")
			if year := details.ReleaseYear(); year != nil {
				entries[i].Year = *year
			}
		})
	}
	p.Wait()

	return entries
}

func (s *Service) movieFromDetails(details *models.MovieDetails) models.Movie {
	ageRating := "PG-13"
	if details.Adult {
		ageRating = "R"
	}
	language := details.OriginalLanguage
	if language == "" {
		language = "en"
	}
	return models.Movie{
		ID:             details.ID,
		Title:          details.Title,
		ReleaseYear:    details.ReleaseYear(),
		AgeRating:      ageRating,
		RuntimeMinutes: details.RuntimeMinutes,
		Language:       language,
		AverageRating:  details.VoteAverage,
		PosterURL:      s.meta.ImageURL(details.PosterPath, ""),
	}
}

func (s *Service) replaceProjection(ownerID string, memberships []models.Membership) {
	projection := make(map[int64]struct{}, len(memberships))
	for _, m := range memberships {
		projection[m.MovieID] = struct{}{}
	}
	s.mu.Lock()
	s.members[ownerID] = projection
	s.mu.Unlock()
}

func (s *Service) ensureOwnerLocked(ownerID string) map[int64]struct{} {
	perOwner, ok := s.members[ownerID]
	if !ok {
		perOwner = make(map[int64]struct{})
		s.members[ownerID] = perOwner
	}
	return perOwner
}
