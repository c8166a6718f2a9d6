package notes

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"sydneymovies/internal/database"
	"sydneymovies/models"
)

// PostgresStore persists notes in Postgres.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a store backed by Postgres.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) Get(ctx context.Context, ownerID string, movieID int64) (models.Note, error) {
	const q = `SELECT user_id, movie_id, COALESCE(body, ''), updated_at
	           FROM notes
	           WHERE user_id = $1 AND movie_id = $2`
	var n models.Note
	err := s.pool.QueryRow(ctx, q, ownerID, movieID).
		Scan(&n.OwnerID, &n.MovieID, &n.Body, &n.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Note{}, database.ErrNotFound
	}
	if err != nil {
		return models.Note{}, fmt.Errorf("query note (%s, %d): %w", ownerID, movieID, err)
	}
	return n, nil
}

func (s *PostgresStore) List(ctx context.Context, ownerID string) ([]models.Note, error) {
	const q = `SELECT user_id, movie_id, COALESCE(body, ''), updated_at
	           FROM notes
	           WHERE user_id = $1`
	rows, err := s.pool.Query(ctx, q, ownerID)
	if err != nil {
		return nil, fmt.Errorf("query notes: %w", err)
	}
	defer rows.Close()

	out := make([]models.Note, 0)
	for rows.Next() {
		var n models.Note
		if err := rows.Scan(&n.OwnerID, &n.MovieID, &n.Body, &n.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan note: %w", err)
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (s *PostgresStore) Upsert(ctx context.Context, note models.Note) error {
	const q = `INSERT INTO notes (user_id, movie_id, body, updated_at)
	           VALUES ($1, $2, $3, $4)
	           ON CONFLICT (user_id, movie_id) DO UPDATE SET
	               body = EXCLUDED.body,
	               updated_at = EXCLUDED.updated_at`
	if _, err := s.pool.Exec(ctx, q, note.OwnerID, note.MovieID, note.Body, note.UpdatedAt); err != nil {
		return fmt.Errorf("upsert note (%s, %d): %w", note.OwnerID, note.MovieID, err)
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, ownerID string, movieID int64) error {
	if _, err := s.pool.Exec(ctx,
		`DELETE FROM notes WHERE user_id = $1 AND movie_id = $2`, ownerID, movieID); err != nil {
		return fmt.Errorf("delete note (%s, %d): %w", ownerID, movieID, err)
	}
	return nil
}
