package models

import (
	"strconv"
	"time"
)

// Collection is a named watchlist owned by a single user. A user may own any
// number of collections; names are not unique.
type Collection struct {
	ID          int64     `json:"id"`
	OwnerID     string    `json:"ownerId"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Membership is a single (collection, movie) relation row. The pair is
// unique; a movie may belong to many collections at once.
type Membership struct {
	CollectionID int64     `json:"collectionId"`
	MovieID      int64     `json:"movieId"`
	Watched      bool      `json:"watched"`
	AddedAt      time.Time `json:"addedAt"`
}

// Movie is the denormalized metadata row kept remotely as a durable join
// target, so membership and note rows stay valid even when the metadata
// provider is unreachable. Upsert-only; never deleted.
type Movie struct {
	ID             int64   `json:"id"`
	Title          string  `json:"title"`
	ReleaseYear    *int    `json:"releaseYear,omitempty"`
	AgeRating      string  `json:"ageRating,omitempty"`
	RuntimeMinutes int     `json:"runtimeMinutes,omitempty"`
	Language       string  `json:"language,omitempty"`
	AverageRating  float64 `json:"averageRating,omitempty"`
	PosterURL      string  `json:"posterUrl,omitempty"`
}

// WatchlistEntry is a hydrated membership row as rendered to clients.
type WatchlistEntry struct {
	MovieID   int64     `json:"movieId"`
	Title     string    `json:"title"`
	Year      int       `json:"year,omitempty"`
	Rating    float64   `json:"rating,omitempty"`
	Genres    []string  `json:"genres,omitempty"`
	PosterURL string    `json:"posterUrl,omitempty"`
	Watched   bool      `json:"watched"`
	AddedAt   time.Time `json:"addedAt"`
}

// SeriesRef is a lightweight TV reference stored in the local-only series
// buckets; the remote store does not model TV membership.
type SeriesRef struct {
	ID           int64   `json:"id"`
	Title        string  `json:"title"`
	PosterPath   string  `json:"poster_path,omitempty"`
	FirstAirDate string  `json:"release_date,omitempty"`
	VoteAverage  float64 `json:"vote_average,omitempty"`
}

// FallbackTitle returns a label usable when metadata cannot be resolved.
func FallbackTitle(movieID int64) string {
	return "Movie #" + strconv.FormatInt(movieID, 10)
}
