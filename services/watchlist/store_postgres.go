package watchlist

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"sydneymovies/models"
)

// PostgresStore persists collections and membership in Postgres.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a store backed by Postgres.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) CollectionsByOwner(ctx context.Context, ownerID string) ([]models.Collection, error) {
	const q = `SELECT watchlist_id, user_id, COALESCE(name, ''), COALESCE(description, ''), created_at
	           FROM watchlists
	           WHERE user_id = $1
	           ORDER BY created_at ASC, watchlist_id ASC`
	rows, err := s.pool.Query(ctx, q, ownerID)
	if err != nil {
		return nil, fmt.Errorf("query collections: %w", err)
	}
	defer rows.Close()

	collections := make([]models.Collection, 0)
	for rows.Next() {
		var c models.Collection
		if err := rows.Scan(&c.ID, &c.OwnerID, &c.Name, &c.Description, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan collection: %w", err)
		}
		collections = append(collections, c)
	}
	return collections, rows.Err()
}

func (s *PostgresStore) CreateCollection(ctx context.Context, ownerID, name, description string) (models.Collection, error) {
	const q = `INSERT INTO watchlists (user_id, name, description)
	           VALUES ($1, $2, $3)
	           RETURNING watchlist_id, user_id, COALESCE(name, ''), COALESCE(description, ''), created_at`
	var c models.Collection
	err := s.pool.QueryRow(ctx, q, ownerID, name, description).
		Scan(&c.ID, &c.OwnerID, &c.Name, &c.Description, &c.CreatedAt)
	if err != nil {
		return models.Collection{}, fmt.Errorf("create collection: %w", err)
	}
	return c, nil
}

func (s *PostgresStore) DeleteCollection(ctx context.Context, collectionID int64) error {
	// Children before parent: if the second delete fails, re-running is
	// safe and nothing references a missing collection.
	if _, err := s.pool.Exec(ctx,
		`DELETE FROM watchlist_items WHERE watchlist_id = $1`, collectionID); err != nil {
		return fmt.Errorf("delete membership rows: %w", err)
	}
	if _, err := s.pool.Exec(ctx,
		`DELETE FROM watchlists WHERE watchlist_id = $1`, collectionID); err != nil {
		return fmt.Errorf("delete collection: %w", err)
	}
	return nil
}

func (s *PostgresStore) UpsertMovie(ctx context.Context, movie models.Movie) error {
	const q = `INSERT INTO movies (movie_id, title, release_year, age_rating, runtime_minutes,
	                               original_language, average_viewer_rating, poster_url)
	           VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	           ON CONFLICT (movie_id) DO UPDATE SET
	               title = EXCLUDED.title,
	               release_year = EXCLUDED.release_year,
	               age_rating = EXCLUDED.age_rating,
	               runtime_minutes = EXCLUDED.runtime_minutes,
	               original_language = EXCLUDED.original_language,
	               average_viewer_rating = EXCLUDED.average_viewer_rating,
	               poster_url = EXCLUDED.poster_url`
	_, err := s.pool.Exec(ctx, q,
		movie.ID, movie.Title, movie.ReleaseYear, movie.AgeRating, movie.RuntimeMinutes,
		movie.Language, movie.AverageRating, movie.PosterURL)
	if err != nil {
		return fmt.Errorf("upsert movie %d: %w", movie.ID, err)
	}
	return nil
}

func (s *PostgresStore) UpsertMembership(ctx context.Context, m models.Membership) error {
	const q = `INSERT INTO watchlist_items (watchlist_id, movie_id, is_watched, added_at)
	           VALUES ($1, $2, $3, $4)
	           ON CONFLICT (watchlist_id, movie_id) DO NOTHING`
	if _, err := s.pool.Exec(ctx, q, m.CollectionID, m.MovieID, m.Watched, m.AddedAt); err != nil {
		return fmt.Errorf("upsert membership (%d, %d): %w", m.CollectionID, m.MovieID, err)
	}
	return nil
}

func (s *PostgresStore) DeleteMembership(ctx context.Context, collectionID, movieID int64) error {
	if _, err := s.pool.Exec(ctx,
		`DELETE FROM watchlist_items WHERE watchlist_id = $1 AND movie_id = $2`,
		collectionID, movieID); err != nil {
		return fmt.Errorf("delete membership (%d, %d): %w", collectionID, movieID, err)
	}
	return nil
}

func (s *PostgresStore) Memberships(ctx context.Context, collectionID int64) ([]models.Membership, error) {
	const q = `SELECT watchlist_id, movie_id, is_watched, added_at
	           FROM watchlist_items
	           WHERE watchlist_id = $1`
	rows, err := s.pool.Query(ctx, q, collectionID)
	if err != nil {
		return nil, fmt.Errorf("query memberships: %w", err)
	}
	defer rows.Close()

	memberships := make([]models.Membership, 0)
	for rows.Next() {
		var m models.Membership
		if err := rows.Scan(&m.CollectionID, &m.MovieID, &m.Watched, &m.AddedAt); err != nil {
			return nil, fmt.Errorf("scan membership: %w", err)
		}
		memberships = append(memberships, m)
	}
	return memberships, rows.Err()
}
