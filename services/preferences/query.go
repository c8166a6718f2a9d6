package preferences

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"sydneymovies/models"
)

// QueryParams is a compiled discovery request: the catalogue path and
// the filter values to send with it.
type QueryParams struct {
	Path   string
	Values url.Values
}

// CompileDiscoveryQuery translates a preference record into discovery
// query parameters. It is a pure function and always yields a usable
// query; unusable preference fields compile to the unfiltered form.
func CompileDiscoveryQuery(prefs models.DiscoveryPreferences) QueryParams {
	mediaType := prefs.MediaType
	if !mediaType.Valid() {
		mediaType = models.MediaTypeMovie
	}

	values := url.Values{}
	values.Set("sort_by", "popularity.desc")

	if len(prefs.GenreIDs) > 0 {
		ids := make([]string, 0, len(prefs.GenreIDs))
		for _, id := range prefs.GenreIDs {
			ids = append(ids, strconv.Itoa(id))
		}
		values.Set("with_genres", strings.Join(ids, ","))
	}

	// Movies and series use different date-range parameter names.
	dateParam := "primary_release_date"
	if mediaType == models.MediaTypeTV {
		dateParam = "first_air_date"
	}
	if prefs.YearFrom != nil {
		values.Set(dateParam+".gte", fmt.Sprintf("%d-01-01", *prefs.YearFrom))
	}
	if prefs.YearTo != nil {
		values.Set(dateParam+".lte", fmt.Sprintf("%d-12-31", *prefs.YearTo))
	}

	return QueryParams{
		Path:   "discover/" + string(mediaType),
		Values: values,
	}
}
