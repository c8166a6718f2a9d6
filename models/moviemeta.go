package models

import (
	"strconv"
	"strings"
)

// Metadata shapes returned by the content metadata gateway.

type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// MovieDetails is the gateway view of a single movie.
type MovieDetails struct {
	ID               int64   `json:"id"`
	Title            string  `json:"title"`
	Overview         string  `json:"overview,omitempty"`
	ReleaseDate      string  `json:"releaseDate,omitempty"` // YYYY-MM-DD
	RuntimeMinutes   int     `json:"runtimeMinutes,omitempty"`
	Adult            bool    `json:"adult,omitempty"`
	OriginalLanguage string  `json:"originalLanguage,omitempty"`
	VoteAverage      float64 `json:"voteAverage,omitempty"`
	PosterPath       string  `json:"posterPath,omitempty"`
	Genres           []Genre `json:"genres,omitempty"`
	Cast             []string `json:"cast,omitempty"`
}

// ReleaseYear parses the year component of ReleaseDate. Nil when absent.
func (d MovieDetails) ReleaseYear() *int {
	if len(d.ReleaseDate) < 4 {
		return nil
	}
	year, err := strconv.Atoi(d.ReleaseDate[:4])
	if err != nil {
		return nil
	}
	return &year
}

// GenreNames returns the genre display names in catalogue order.
func (d MovieDetails) GenreNames() []string {
	if len(d.Genres) == 0 {
		return nil
	}
	names := make([]string, 0, len(d.Genres))
	for _, g := range d.Genres {
		if strings.TrimSpace(g.Name) != "" {
			names = append(names, g.Name)
		}
	}
	return names
}

// SeriesDetails is the gateway view of a single TV series.
type SeriesDetails struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	Overview     string  `json:"overview,omitempty"`
	FirstAirDate string  `json:"firstAirDate,omitempty"`
	VoteAverage  float64 `json:"voteAverage,omitempty"`
	PosterPath   string  `json:"posterPath,omitempty"`
	Genres       []Genre `json:"genres,omitempty"`
}

// DiscoverItem is one row of a discovery result, normalised to the
// movie-like card shape regardless of media type.
type DiscoverItem struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	PosterPath  string  `json:"posterPath,omitempty"`
	ReleaseDate string  `json:"releaseDate,omitempty"`
	VoteAverage float64 `json:"voteAverage,omitempty"`
	GenreIDs    []int   `json:"genreIds,omitempty"`
	MediaType   string  `json:"mediaType"`
}
