package notes

import (
	"context"

	"sydneymovies/models"
)

// RemoteStore is the authoritative persistence for notes. Get returns a
// database.ErrNotFound-classifiable error for a missing row; any other
// error means the remote store is degraded and callers fall back to the
// local cache.
type RemoteStore interface {
	Get(ctx context.Context, ownerID string, movieID int64) (models.Note, error)
	List(ctx context.Context, ownerID string) ([]models.Note, error)
	Upsert(ctx context.Context, note models.Note) error
	// Delete is idempotent; deleting an absent note is not an error.
	Delete(ctx context.Context, ownerID string, movieID int64) error
}
