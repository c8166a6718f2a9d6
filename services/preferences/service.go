package preferences

import (
	"encoding/json"
	"errors"
	"math"
	"time"

	"sydneymovies/models"
)

var ErrOwnerIDRequired = errors.New("owner id is required")

const (
	prefsKeyPrefix  = "user_preferences:"
	legacyKeyPrefix = "movie_genre_preferences:"
)

// LocalCache is the slice of the key-value cache the preference
// service needs.
type LocalCache interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
}

// Service persists per-user discovery preferences in the local cache
// and compiles them into discovery query parameters. Preferences are
// device-local; there is no remote copy to reconcile.
type Service struct {
	cache LocalCache
}

func NewService(cache LocalCache) *Service {
	return &Service{cache: cache}
}

// Load returns the stored preferences for the owner. Decoding is
// schema-tolerant: older installs stored a bare array of genre ids
// under a different key, and partially-written objects are accepted
// field by field. Load never fails on bad data, only on a missing
// owner id.
func (s *Service) Load(ownerID string) (models.DiscoveryPreferences, error) {
	if ownerID == "" {
		return models.DefaultDiscoveryPreferences(), ErrOwnerIDRequired
	}

	if raw, ok, err := s.cache.Get(prefsKeyPrefix + ownerID); err == nil && ok {
		return decodePreferences(raw), nil
	}

	// Fall back to the legacy genre-only key.
	if raw, ok, err := s.cache.Get(legacyKeyPrefix + ownerID); err == nil && ok {
		return decodePreferences(raw), nil
	}

	return models.DefaultDiscoveryPreferences(), nil
}

// Save clamps the year bounds and writes the record under both the
// current and the legacy key, so older builds reading the legacy key
// still see the genre selection.
func (s *Service) Save(ownerID string, prefs models.DiscoveryPreferences) (models.DiscoveryPreferences, error) {
	if ownerID == "" {
		return models.DefaultDiscoveryPreferences(), ErrOwnerIDRequired
	}

	if !prefs.MediaType.Valid() {
		prefs.MediaType = models.MediaTypeMovie
	}
	if prefs.GenreIDs == nil {
		prefs.GenreIDs = []int{}
	}
	prefs.YearFrom = clampStoredYear(prefs.YearFrom)
	prefs.YearTo = clampStoredYear(prefs.YearTo)

	encoded, err := json.Marshal(prefs)
	if err != nil {
		return prefs, err
	}
	if err := s.cache.Set(prefsKeyPrefix+ownerID, string(encoded)); err != nil {
		return prefs, err
	}

	legacy, err := json.Marshal(prefs.GenreIDs)
	if err != nil {
		return prefs, err
	}
	if err := s.cache.Set(legacyKeyPrefix+ownerID, string(legacy)); err != nil {
		return prefs, err
	}

	return prefs, nil
}

// ClampYear normalises a user-supplied year. Non-finite input yields
// nil; anything outside [1900, current year] saturates to the nearest
// bound; fractional input is floored.
func ClampYear(v float64) *int {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	year := int(math.Floor(v))
	if year < 1900 {
		year = 1900
	}
	if max := time.Now().Year(); year > max {
		year = max
	}
	return &year
}

func clampStoredYear(v *int) *int {
	if v == nil {
		return nil
	}
	return ClampYear(float64(*v))
}

// decodePreferences accepts three historical shapes in priority
// order: a structured object, a bare array of genre ids, and
// everything else (absent or unparseable) as full defaults.
func decodePreferences(raw string) models.DiscoveryPreferences {
	prefs := models.DefaultDiscoveryPreferences()

	var obj struct {
		MediaType models.MediaType `json:"mediaType"`
		GenreIDs  []int            `json:"genreIds"`
		YearFrom  *int             `json:"yearFrom"`
		YearTo    *int             `json:"yearTo"`
	}
	if err := json.Unmarshal([]byte(raw), &obj); err == nil {
		if obj.MediaType.Valid() {
			prefs.MediaType = obj.MediaType
		}
		if obj.GenreIDs != nil {
			prefs.GenreIDs = obj.GenreIDs
		}
		prefs.YearFrom = clampStoredYear(obj.YearFrom)
		prefs.YearTo = clampStoredYear(obj.YearTo)
		return prefs
	}

	var genres []int
	if err := json.Unmarshal([]byte(raw), &genres); err == nil {
		prefs.GenreIDs = genres
		return prefs
	}

	return prefs
}
