package models

import "time"

// Note is a free-text annotation attached to a (user, movie) pair. One note
// per pair. The same note exists as a remote row and a local cache entry;
// the two are reconciled by last-write-wins on UpdatedAt.
type Note struct {
	OwnerID   string     `json:"ownerId,omitempty"`
	MovieID   int64      `json:"movieId"`
	Body      string     `json:"body"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

// MovieSummary is the subset of metadata shown alongside aggregated notes.
type MovieSummary struct {
	ID        int64   `json:"id"`
	Title     string  `json:"title"`
	Year      int     `json:"year,omitempty"`
	Rating    float64 `json:"rating,omitempty"`
	PosterURL string  `json:"posterUrl,omitempty"`
}

// NoteListItem is one entry of the merged note listing. Movie is nil when
// metadata resolution failed for this item; Title then carries a fallback
// label so the note still renders.
type NoteListItem struct {
	MovieID   int64         `json:"movieId"`
	Body      string        `json:"body"`
	UpdatedAt *time.Time    `json:"updatedAt,omitempty"`
	Title     string        `json:"title"`
	Movie     *MovieSummary `json:"movie,omitempty"`
}
