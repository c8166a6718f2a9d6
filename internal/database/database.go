package database

import (
	"context"
	"errors"
	"net"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound marks the absence of a matching row. Stores translate
// pgx.ErrNoRows into this so callers never import pgx directly.
var ErrNotFound = errors.New("not found")

// Open connects a pgxpool to the remote authoritative store.
func Open(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, errors.New("database url is required")
	}

	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}

	cfg.MaxConns = 10
	cfg.MinConns = 1
	cfg.MaxConnIdleTime = 5 * time.Minute
	cfg.HealthCheckPeriod = 30 * time.Second

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

// IsNotFound reports whether err means "no matching row". Expected during
// fallback branching; never an operational failure.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, pgx.ErrNoRows)
}

// IsSchemaDrift reports whether err indicates the remote schema is missing a
// table or column this build expects. Treated the same as unavailability by
// callers, but logged distinctly.
func IsSchemaDrift(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	switch pgErr.Code {
	case "42P01", "42703": // undefined_table, undefined_column
		return true
	}
	return false
}

// IsUnavailable reports whether err is an operational failure of the remote
// store: unreachable, timed out, resource-exhausted, or schema drift. A
// missing row and a cancelled caller are not unavailability.
func IsUnavailable(err error) bool {
	if err == nil || IsNotFound(err) || errors.Is(err, context.Canceled) {
		return false
	}
	if IsSchemaDrift(err) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if len(pgErr.Code) < 2 {
			return false
		}
		switch pgErr.Code[:2] {
		case "08", "53", "57", "58": // connection, resources, operator intervention, system
			return true
		}
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var connErr *pgconn.ConnectError
	return errors.As(err, &connErr)
}
