package notes

import (
	"context"
	"sync"

	"sydneymovies/internal/database"
	"sydneymovies/models"
)

// MemoryStore is an in-memory RemoteStore used when no remote database is
// configured, and by tests. Not durable across restarts.
type MemoryStore struct {
	mu       sync.RWMutex
	notes    map[string]map[int64]models.Note // ownerID -> movieID
	failWith error
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{notes: make(map[string]map[int64]models.Note)}
}

// FailWith makes every subsequent call return err; nil restores normal
// operation. Used to simulate remote unavailability.
func (s *MemoryStore) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failWith = err
}

func (s *MemoryStore) Get(_ context.Context, ownerID string, movieID int64) (models.Note, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.failWith != nil {
		return models.Note{}, s.failWith
	}

	note, ok := s.notes[ownerID][movieID]
	if !ok {
		return models.Note{}, database.ErrNotFound
	}
	return note, nil
}

func (s *MemoryStore) List(_ context.Context, ownerID string) ([]models.Note, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.failWith != nil {
		return nil, s.failWith
	}

	out := make([]models.Note, 0, len(s.notes[ownerID]))
	for _, note := range s.notes[ownerID] {
		out = append(out, note)
	}
	return out, nil
}

func (s *MemoryStore) Upsert(_ context.Context, note models.Note) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return s.failWith
	}

	perOwner, ok := s.notes[note.OwnerID]
	if !ok {
		perOwner = make(map[int64]models.Note)
		s.notes[note.OwnerID] = perOwner
	}
	perOwner[note.MovieID] = note
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, ownerID string, movieID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return s.failWith
	}

	if perOwner, ok := s.notes[ownerID]; ok {
		delete(perOwner, movieID)
	}
	return nil
}
