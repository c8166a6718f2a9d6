package watchlist

import (
	"context"

	"sydneymovies/models"
)

// Store is the authoritative persistence for collections and membership.
// Implementations must make UpsertMovie and UpsertMembership idempotent on
// their natural keys, and must return database.ErrNotFound-classifiable
// errors for missing rows.
type Store interface {
	// CollectionsByOwner returns the owner's collections ordered by
	// creation time ascending.
	CollectionsByOwner(ctx context.Context, ownerID string) ([]models.Collection, error)
	CreateCollection(ctx context.Context, ownerID, name, description string) (models.Collection, error)
	// DeleteCollection removes the membership rows first, then the
	// collection itself, so a failure between the two never orphans rows.
	DeleteCollection(ctx context.Context, collectionID int64) error
	UpsertMovie(ctx context.Context, movie models.Movie) error
	UpsertMembership(ctx context.Context, m models.Membership) error
	// DeleteMembership is idempotent; deleting an absent row is not an error.
	DeleteMembership(ctx context.Context, collectionID, movieID int64) error
	Memberships(ctx context.Context, collectionID int64) ([]models.Membership, error)
}
