package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"sydneymovies/handlers"
	"sydneymovies/internal/localstore"
	"sydneymovies/models"
	"sydneymovies/services/discover"
	"sydneymovies/services/preferences"

	"github.com/gorilla/mux"
)

func newPreferencesHandler(t *testing.T) (*handlers.PreferencesHandler, *preferences.Service) {
	t.Helper()
	cache, err := localstore.Open(t.TempDir())
	if err != nil {
		t.Fatalf("failed to open cache: %v", err)
	}
	t.Cleanup(func() { cache.Close() })

	svc := preferences.NewService(cache)
	return handlers.NewPreferencesHandler(svc), svc
}

func TestPreferencesSaveAndGet(t *testing.T) {
	h, _ := newPreferencesHandler(t)

	payload := []byte(`{"mediaType":"tv","genreIds":[18],"yearFrom":2015.7,"yearTo":9999}`)
	req := httptest.NewRequest(http.MethodPut, "/api/users/u1/preferences", bytes.NewReader(payload))
	req = mux.SetURLVars(req, map[string]string{"userID": "u1"})
	rec := httptest.NewRecorder()
	h.Save(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	reqGet := httptest.NewRequest(http.MethodGet, "/api/users/u1/preferences", nil)
	reqGet = mux.SetURLVars(reqGet, map[string]string{"userID": "u1"})
	recGet := httptest.NewRecorder()
	h.Get(recGet, reqGet)

	var got models.DiscoveryPreferences
	if err := json.Unmarshal(recGet.Body.Bytes(), &got); err != nil {
		t.Fatalf("failed to decode get response: %v", err)
	}
	if got.MediaType != models.MediaTypeTV || len(got.GenreIDs) != 1 {
		t.Fatalf("unexpected preferences: %+v", got)
	}
	if got.YearFrom == nil || *got.YearFrom != 2015 {
		t.Fatalf("fractional year not floored: %+v", got.YearFrom)
	}
	if got.YearTo == nil || *got.YearTo > 2100 {
		t.Fatalf("out-of-range year not clamped: %+v", got.YearTo)
	}
}

func TestPreferencesGetDefaults(t *testing.T) {
	h, _ := newPreferencesHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/users/u1/preferences", nil)
	req = mux.SetURLVars(req, map[string]string{"userID": "u1"})
	rec := httptest.NewRecorder()
	h.Get(rec, req)

	var got models.DiscoveryPreferences
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if got.MediaType != models.MediaTypeMovie || len(got.GenreIDs) != 0 {
		t.Fatalf("expected defaults, got %+v", got)
	}
}

type fakeCatalog struct {
	lastPath string
	lastVals url.Values
}

func (c *fakeCatalog) Discover(_ context.Context, apiPath string, params url.Values) ([]models.DiscoverItem, error) {
	c.lastPath = apiPath
	c.lastVals = params
	return []models.DiscoverItem{{ID: 155, Title: "The Dark Knight"}}, nil
}

func (c *fakeCatalog) ImageURL(posterPath, size string) string { return posterPath }

func TestRecommendationsUseStoredPreferences(t *testing.T) {
	prefsHandler, prefsSvc := newPreferencesHandler(t)

	payload := []byte(`{"mediaType":"movie","genreIds":[80,18]}`)
	req := httptest.NewRequest(http.MethodPut, "/api/users/u1/preferences", bytes.NewReader(payload))
	req = mux.SetURLVars(req, map[string]string{"userID": "u1"})
	prefsHandler.Save(httptest.NewRecorder(), req)

	catalog := &fakeCatalog{}
	h := handlers.NewRecommendationsHandler(discover.NewService(catalog, prefsSvc))

	reqRec := httptest.NewRequest(http.MethodGet, "/api/users/u1/recommendations", nil)
	reqRec = mux.SetURLVars(reqRec, map[string]string{"userID": "u1"})
	recRec := httptest.NewRecorder()
	h.Get(recRec, reqRec)

	if recRec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", recRec.Code, recRec.Body.String())
	}
	if catalog.lastPath != "discover/movie" {
		t.Fatalf("expected movie catalogue, got %q", catalog.lastPath)
	}
	if got := catalog.lastVals.Get("with_genres"); got != "80,18" {
		t.Fatalf("stored genres not compiled into the query: %q", got)
	}

	var resp struct {
		Results []models.DiscoverItem `json:"results"`
	}
	if err := json.Unmarshal(recRec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Results) != 1 || resp.Results[0].Title != "The Dark Knight" {
		t.Fatalf("unexpected results: %+v", resp.Results)
	}
}
