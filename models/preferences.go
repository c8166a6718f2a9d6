package models

// MediaType selects which discovery catalogue preferences apply to.
type MediaType string

const (
	MediaTypeMovie MediaType = "movie"
	MediaTypeTV    MediaType = "tv"
)

// Valid reports whether m is one of the recognized media types.
func (m MediaType) Valid() bool {
	return m == MediaTypeMovie || m == MediaTypeTV
}

// DiscoveryPreferences is the single per-user preference record feeding the
// recommendation pipeline. Stored locally only; decoding tolerates legacy
// shapes (a bare array of genre ids, or a partial object).
type DiscoveryPreferences struct {
	MediaType MediaType `json:"mediaType"`
	GenreIDs  []int     `json:"genreIds"`
	YearFrom  *int      `json:"yearFrom"`
	YearTo    *int      `json:"yearTo"`
}

// DefaultDiscoveryPreferences returns the record used when nothing usable is
// stored: movies, no genre filter, unbounded year range.
func DefaultDiscoveryPreferences() DiscoveryPreferences {
	return DiscoveryPreferences{
		MediaType: MediaTypeMovie,
		GenreIDs:  []int{},
	}
}
