package metadata

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"sydneymovies/models"
)

var (
	ErrNotConfigured      = errors.New("tmdb api key not configured")
	ErrContentIDRequired  = errors.New("content id is required")
	ErrUnknownMediaType   = errors.New("unknown media type")
	ErrDiscoverPathNeeded = errors.New("discover path is required")
)

// Service is the content metadata gateway. It resolves external content
// identifiers to display metadata and builds image URLs. Callers must
// tolerate per-call failures; nothing here is authoritative.
type Service struct {
	client *tmdbClient
}

// NewService creates the gateway. httpc may be nil for the default client.
func NewService(apiKey, language string, httpc *http.Client) *Service {
	return &Service{client: newTMDBClient(apiKey, language, httpc)}
}

// Configured reports whether an API key is present.
func (s *Service) Configured() bool {
	return s.client.isConfigured()
}

// MovieDetails resolves one movie id to display metadata.
func (s *Service) MovieDetails(ctx context.Context, id int64) (*models.MovieDetails, error) {
	if id <= 0 {
		return nil, ErrContentIDRequired
	}
	return s.client.movieDetails(ctx, id)
}

// SeriesDetails resolves one TV series id to display metadata.
func (s *Service) SeriesDetails(ctx context.Context, id int64) (*models.SeriesDetails, error) {
	if id <= 0 {
		return nil, ErrContentIDRequired
	}
	return s.client.seriesDetails(ctx, id)
}

// Genres lists the genre catalogue for a media type.
func (s *Service) Genres(ctx context.Context, mediaType models.MediaType) ([]models.Genre, error) {
	if !mediaType.Valid() {
		return nil, ErrUnknownMediaType
	}
	return s.client.genreList(ctx, string(mediaType))
}

// Discover runs a compiled discovery query against the provider.
func (s *Service) Discover(ctx context.Context, apiPath string, params url.Values) ([]models.DiscoverItem, error) {
	if strings.TrimSpace(apiPath) == "" {
		return nil, ErrDiscoverPathNeeded
	}
	return s.client.discover(ctx, apiPath, params)
}

// ImageURL builds a CDN URL for a poster reference. Empty when the
// reference is absent.
func (s *Service) ImageURL(posterPath, size string) string {
	return imageURL(posterPath, size)
}
