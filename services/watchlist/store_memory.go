package watchlist

import (
	"context"
	"sort"
	"sync"
	"time"

	"sydneymovies/models"
)

// MemoryStore is an in-memory Store used when no remote database is
// configured, and by tests. Not durable across restarts.
type MemoryStore struct {
	mu          sync.RWMutex
	nextID      int64
	collections map[int64]models.Collection
	memberships map[int64]map[int64]models.Membership // collectionID -> movieID
	movies      map[int64]models.Movie

	failWith error
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		nextID:      1,
		collections: make(map[int64]models.Collection),
		memberships: make(map[int64]map[int64]models.Membership),
		movies:      make(map[int64]models.Movie),
	}
}

// FailWith makes every subsequent call return err; nil restores normal
// operation. Used to simulate remote unavailability.
func (s *MemoryStore) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failWith = err
}

func (s *MemoryStore) CollectionsByOwner(_ context.Context, ownerID string) ([]models.Collection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.failWith != nil {
		return nil, s.failWith
	}

	collections := make([]models.Collection, 0)
	for _, c := range s.collections {
		if c.OwnerID == ownerID {
			collections = append(collections, c)
		}
	}
	sort.Slice(collections, func(i, j int) bool {
		if collections[i].CreatedAt.Equal(collections[j].CreatedAt) {
			return collections[i].ID < collections[j].ID
		}
		return collections[i].CreatedAt.Before(collections[j].CreatedAt)
	})
	return collections, nil
}

func (s *MemoryStore) CreateCollection(_ context.Context, ownerID, name, description string) (models.Collection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return models.Collection{}, s.failWith
	}

	c := models.Collection{
		ID:          s.nextID,
		OwnerID:     ownerID,
		Name:        name,
		Description: description,
		CreatedAt:   time.Now().UTC(),
	}
	s.nextID++
	s.collections[c.ID] = c
	return c, nil
}

func (s *MemoryStore) DeleteCollection(_ context.Context, collectionID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return s.failWith
	}

	delete(s.memberships, collectionID)
	delete(s.collections, collectionID)
	return nil
}

func (s *MemoryStore) UpsertMovie(_ context.Context, movie models.Movie) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return s.failWith
	}

	s.movies[movie.ID] = movie
	return nil
}

func (s *MemoryStore) UpsertMembership(_ context.Context, m models.Membership) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return s.failWith
	}

	perCollection, ok := s.memberships[m.CollectionID]
	if !ok {
		perCollection = make(map[int64]models.Membership)
		s.memberships[m.CollectionID] = perCollection
	}
	if _, exists := perCollection[m.MovieID]; !exists {
		perCollection[m.MovieID] = m
	}
	return nil
}

func (s *MemoryStore) DeleteMembership(_ context.Context, collectionID, movieID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return s.failWith
	}

	if perCollection, ok := s.memberships[collectionID]; ok {
		delete(perCollection, movieID)
	}
	return nil
}

func (s *MemoryStore) Memberships(_ context.Context, collectionID int64) ([]models.Membership, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.failWith != nil {
		return nil, s.failWith
	}

	memberships := make([]models.Membership, 0, len(s.memberships[collectionID]))
	for _, m := range s.memberships[collectionID] {
		memberships = append(memberships, m)
	}
	sort.Slice(memberships, func(i, j int) bool {
		return memberships[i].MovieID < memberships[j].MovieID
	})
	return memberships, nil
}

// Movie returns the stored movie row, for tests.
func (s *MemoryStore) Movie(movieID int64) (models.Movie, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.movies[movieID]
	return m, ok
}
