package notes

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/sourcegraph/conc/pool"

	"sydneymovies/internal/database"
	"sydneymovies/models"
)

var (
	ErrOwnerIDRequired  = errors.New("owner id is required")
	ErrMovieIDRequired  = errors.New("movie id is required")
	ErrBodyRequired     = errors.New("note body is required")
	ErrNothingPersisted = errors.New("note could not be persisted to any store")
)

const (
	noteKeyPrefix  = "movie_note:"
	saveAttempts   = 3
	saveRetryDelay = 150 * time.Millisecond
	hydrateWorkers = 8
)

// LocalCache is the slice of the local store the synchronizer needs.
type LocalCache interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Remove(key string) error
	Keys(prefix string) ([]string, error)
}

// MetadataGateway resolves movie summaries for the aggregate listing.
type MetadataGateway interface {
	MovieDetails(ctx context.Context, id int64) (*models.MovieDetails, error)
	ImageURL(posterPath, size string) string
}

// Service synchronizes note annotations between the remote store and the
// local cache. Reads try remote first and fall back locally; writes always
// land locally whatever the remote outcome, so the cache is never stale
// relative to the user's own last action on this device.
type Service struct {
	remote RemoteStore
	cache  LocalCache
	meta   MetadataGateway
}

// Result reports how a note operation persisted. Synced is false when only
// the local cache holds the outcome ("saved locally only").
type Result struct {
	Synced bool `json:"synced"`
}

// NewService creates the annotation synchronizer.
func NewService(remote RemoteStore, cache LocalCache, meta MetadataGateway) *Service {
	return &Service{remote: remote, cache: cache, meta: meta}
}

func noteKey(ownerID string, movieID int64) string {
	return noteKeyPrefix + ownerID + ":" + strconv.FormatInt(movieID, 10)
}

// Load resolves one note. Remote first: a row with a non-empty body wins
// outright; a missing or empty row, or a degraded remote, falls back to the
// local cache; an absent or undecodable cache entry resolves to an empty
// body. The caller never sees a union of both stores. The second return
// value is false when the remote store could not be consulted.
func (s *Service) Load(ctx context.Context, ownerID string, movieID int64) (models.Note, bool, error) {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return models.Note{}, false, ErrOwnerIDRequired
	}
	if movieID <= 0 {
		return models.Note{}, false, ErrMovieIDRequired
	}

	synced := true
	remote, err := s.remote.Get(ctx, ownerID, movieID)
	switch {
	case err == nil && strings.TrimSpace(remote.Body) != "":
		return remote, true, nil
	case err == nil || database.IsNotFound(err):
		// Empty or absent row: not an error, fall back.
	default:
		logRemoteDegraded("load", err)
		synced = false
	}

	note := models.Note{OwnerID: ownerID, MovieID: movieID}
	raw, ok, cacheErr := s.cache.Get(noteKey(ownerID, movieID))
	if cacheErr != nil || !ok {
		return note, synced, nil
	}
	note.Body, note.UpdatedAt = decodeLocalNote(raw)
	return note, synced, nil
}

// Save upserts the note remotely, then always writes the same body and
// timestamp to the local cache. A remote failure is degraded success, not
// failure: the user's text still persists across reloads on this device.
func (s *Service) Save(ctx context.Context, ownerID string, movieID int64, body string) (Result, error) {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return Result{}, ErrOwnerIDRequired
	}
	if movieID <= 0 {
		return Result{}, ErrMovieIDRequired
	}
	if strings.TrimSpace(body) == "" {
		return Result{}, ErrBodyRequired
	}

	now := time.Now().UTC()
	note := models.Note{OwnerID: ownerID, MovieID: movieID, Body: body, UpdatedAt: &now}

	remoteErr := retry.Do(
		func() error { return s.remote.Upsert(ctx, note) },
		retry.Context(ctx),
		retry.Attempts(saveAttempts),
		retry.Delay(saveRetryDelay),
		retry.LastErrorOnly(true),
	)
	if remoteErr != nil {
		logRemoteDegraded("save", remoteErr)
	}

	// The local write happens after the remote attempt resolved, never
	// instead of it, and never waits for remote success.
	encoded, err := encodeLocalNote(body, &now)
	if err != nil {
		return Result{}, fmt.Errorf("encode note: %w", err)
	}
	localErr := s.cache.Set(noteKey(ownerID, movieID), encoded)

	if remoteErr == nil {
		if localErr != nil {
			log.Printf("[notes] local cache write failed after remote success: %v", localErr)
		}
		return Result{Synced: true}, nil
	}
	if localErr != nil {
		return Result{}, fmt.Errorf("%w: remote: %v, local: %v", ErrNothingPersisted, remoteErr, localErr)
	}
	return Result{Synced: false}, nil
}

// Delete removes the note from both stores with the same degraded-success
// semantics as Save. Deleting an absent note is a no-op.
func (s *Service) Delete(ctx context.Context, ownerID string, movieID int64) (Result, error) {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return Result{}, ErrOwnerIDRequired
	}
	if movieID <= 0 {
		return Result{}, ErrMovieIDRequired
	}

	remoteErr := s.remote.Delete(ctx, ownerID, movieID)
	if remoteErr != nil && !database.IsNotFound(remoteErr) {
		logRemoteDegraded("delete", remoteErr)
	} else {
		remoteErr = nil
	}

	localErr := s.cache.Remove(noteKey(ownerID, movieID))
	if remoteErr == nil {
		if localErr != nil {
			log.Printf("[notes] local cache remove failed after remote success: %v", localErr)
		}
		return Result{Synced: true}, nil
	}
	if localErr != nil {
		return Result{}, fmt.Errorf("%w: remote: %v, local: %v", ErrNothingPersisted, remoteErr, localErr)
	}
	return Result{Synced: false}, nil
}

// ListAll returns every annotated movie for the owner: candidates from the
// local cache scan and one remote query, merged last-write-wins per movie,
// blank bodies dropped, newest first, each surviving entry hydrated with
// metadata. One movie's metadata failure never cancels its siblings. The
// second return value is false when the remote store could not be
// consulted and the listing is device-local only.
func (s *Service) ListAll(ctx context.Context, ownerID string) ([]models.NoteListItem, bool, error) {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return nil, false, ErrOwnerIDRequired
	}

	local := s.loadLocal(ownerID)

	synced := true
	remote, err := s.remote.List(ctx, ownerID)
	if err != nil {
		logRemoteDegraded("list", err)
		remote = nil
		synced = false
	}

	merged := mergeLastWriteWins(local, remote)

	items := make([]models.NoteListItem, len(merged))
	p := pool.New().WithMaxGoroutines(hydrateWorkers)
	for i, note := range merged {
		i, note := i, note
		p.Go(func() {
			items[i] = models.NoteListItem{
				MovieID:   note.MovieID,
				Body:      note.Body,
				UpdatedAt: note.UpdatedAt,
				Title:     models.FallbackTitle(note.MovieID),
			}

			details, err := s.meta.MovieDetails(ctx, note.MovieID)
			if err != nil {
				return
			}
			summary := &models.MovieSummary{
				ID:        details.ID,
				Title:     details.Title,
				Rating:    details.VoteAverage,
				PosterURL: s.meta.ImageURL(details.PosterPath, ""),
			}
			if year := details.ReleaseYear(); year != nil {
				summary.Year = *year
			}
			items[i].Title = details.Title
			items[i].Movie = summary
		})
	}
	p.Wait()

	return items, synced, nil
}

// loadLocal scans the cache for the owner's note entries. Undecodable keys
// and blank bodies are skipped; the cache being unreadable yields an empty
// candidate set, never an error.
func (s *Service) loadLocal(ownerID string) []models.Note {
	prefix := noteKeyPrefix + ownerID + ":"
	keys, err := s.cache.Keys(prefix)
	if err != nil {
		log.Printf("[notes] local cache scan failed: %v", err)
		return nil
	}

	out := make([]models.Note, 0, len(keys))
	for _, key := range keys {
		movieID, err := strconv.ParseInt(key[len(prefix):], 10, 64)
		if err != nil {
			continue
		}
		raw, ok, err := s.cache.Get(key)
		if err != nil || !ok || raw == "" {
			continue
		}
		body, updatedAt := decodeLocalNote(raw)
		if strings.TrimSpace(body) == "" {
			continue
		}
		out = append(out, models.Note{OwnerID: ownerID, MovieID: movieID, Body: body, UpdatedAt: updatedAt})
	}
	return out
}

func logRemoteDegraded(op string, err error) {
	if database.IsSchemaDrift(err) {
		log.Printf("[notes] remote %s degraded (schema drift): %v", op, err)
		return
	}
	log.Printf("[notes] remote %s degraded: %v", op, err)
}
