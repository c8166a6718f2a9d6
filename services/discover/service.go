package discover

import (
	"context"
	"fmt"
	"net/url"

	"sydneymovies/models"
	"sydneymovies/services/preferences"
)

// Catalog is the discovery surface of the metadata gateway.
type Catalog interface {
	Discover(ctx context.Context, apiPath string, params url.Values) ([]models.DiscoverItem, error)
	ImageURL(posterPath, size string) string
}

// Preferences supplies the stored per-user discovery preferences.
type Preferences interface {
	Load(ownerID string) (models.DiscoveryPreferences, error)
}

// Service turns a user's stored preferences into a recommendation
// listing: load preferences, compile them into a discovery query, run
// it against the catalogue.
type Service struct {
	catalog Catalog
	prefs   Preferences
}

func NewService(catalog Catalog, prefs Preferences) *Service {
	return &Service{catalog: catalog, prefs: prefs}
}

// Recommendations returns discovery results filtered by the owner's
// preferences, together with the preferences that produced them.
func (s *Service) Recommendations(ctx context.Context, ownerID string) ([]models.DiscoverItem, models.DiscoveryPreferences, error) {
	stored, err := s.prefs.Load(ownerID)
	if err != nil {
		return nil, stored, err
	}

	query := preferences.CompileDiscoveryQuery(stored)
	items, err := s.catalog.Discover(ctx, query.Path, query.Values)
	if err != nil {
		return nil, stored, fmt.Errorf("failed to run discovery query: %w", err)
	}

	for i := range items {
		items[i].PosterPath = s.catalog.ImageURL(items[i].PosterPath, "w342")
	}
	return items, stored, nil
}
