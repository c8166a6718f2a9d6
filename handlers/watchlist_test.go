package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"sydneymovies/handlers"
	"sydneymovies/internal/localstore"
	"sydneymovies/models"
	"sydneymovies/services/watchlist"

	"github.com/gorilla/mux"
)

type fakeGateway struct{}

func (fakeGateway) MovieDetails(_ context.Context, id int64) (*models.MovieDetails, error) {
	return &models.MovieDetails{ID: id, Title: "Inception", ReleaseDate: "2010-07-16", VoteAverage: 8.8}, nil
}

func (fakeGateway) ImageURL(posterPath, size string) string { return posterPath }

func (fakeGateway) SeriesDetails(_ context.Context, id int64) (*models.SeriesDetails, error) {
	return &models.SeriesDetails{ID: id, Name: "Dark", FirstAirDate: "2017-12-01", VoteAverage: 8.7}, nil
}

func newWatchlistHandler(t *testing.T) *handlers.WatchlistHandler {
	t.Helper()
	cache, err := localstore.Open(t.TempDir())
	if err != nil {
		t.Fatalf("failed to open cache: %v", err)
	}
	t.Cleanup(func() { cache.Close() })

	svc := watchlist.NewService(watchlist.NewMemoryStore(), fakeGateway{})
	return handlers.NewWatchlistHandler(svc, watchlist.NewBuckets(cache), fakeGateway{})
}

func TestWatchlistAddAndList(t *testing.T) {
	h := newWatchlistHandler(t)

	payload, _ := json.Marshal(map[string]any{"movie_id": 27205})
	req := httptest.NewRequest(http.MethodPost, "/api/users/u1/watchlist", bytes.NewReader(payload))
	req = mux.SetURLVars(req, map[string]string{"userID": "u1"})
	rec := httptest.NewRecorder()
	h.Add(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var added struct {
		InWatchlist bool `json:"in_watchlist"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &added); err != nil {
		t.Fatalf("failed to decode add response: %v", err)
	}
	if !added.InWatchlist {
		t.Fatal("expected membership after add")
	}

	reqList := httptest.NewRequest(http.MethodGet, "/api/users/u1/watchlist", nil)
	reqList = mux.SetURLVars(reqList, map[string]string{"userID": "u1"})
	recList := httptest.NewRecorder()
	h.List(recList, reqList)

	if recList.Code != http.StatusOK {
		t.Fatalf("expected list status 200, got %d", recList.Code)
	}

	var entries []models.WatchlistEntry
	if err := json.Unmarshal(recList.Body.Bytes(), &entries); err != nil {
		t.Fatalf("failed to decode list response: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].MovieID != 27205 || entries[0].Title != "Inception" {
		t.Fatalf("unexpected entry returned: %+v", entries[0])
	}
}

func TestWatchlistAddRequiresMovieID(t *testing.T) {
	h := newWatchlistHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/api/users/u1/watchlist", bytes.NewReader([]byte(`{}`)))
	req = mux.SetURLVars(req, map[string]string{"userID": "u1"})
	rec := httptest.NewRecorder()
	h.Add(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
}

func TestWatchlistRemove(t *testing.T) {
	h := newWatchlistHandler(t)

	payload, _ := json.Marshal(map[string]any{"movie_id": 27205})
	req := httptest.NewRequest(http.MethodPost, "/api/users/u1/watchlist", bytes.NewReader(payload))
	req = mux.SetURLVars(req, map[string]string{"userID": "u1"})
	h.Add(httptest.NewRecorder(), req)

	reqDel := httptest.NewRequest(http.MethodDelete, "/api/users/u1/watchlist/27205", nil)
	reqDel = mux.SetURLVars(reqDel, map[string]string{"userID": "u1", "movieID": "27205"})
	recDel := httptest.NewRecorder()
	h.Remove(recDel, reqDel)

	if recDel.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d", recDel.Code)
	}

	reqStatus := httptest.NewRequest(http.MethodGet, "/api/users/u1/watchlist/27205", nil)
	reqStatus = mux.SetURLVars(reqStatus, map[string]string{"userID": "u1", "movieID": "27205"})
	recStatus := httptest.NewRecorder()
	h.Status(recStatus, reqStatus)

	var status struct {
		InWatchlist bool `json:"in_watchlist"`
	}
	if err := json.Unmarshal(recStatus.Body.Bytes(), &status); err != nil {
		t.Fatalf("failed to decode status response: %v", err)
	}
	if status.InWatchlist {
		t.Fatal("expected membership gone after remove")
	}
}

func TestWatchlistCollectionLifecycle(t *testing.T) {
	h := newWatchlistHandler(t)

	payload, _ := json.Marshal(map[string]any{"name": "Date Night"})
	req := httptest.NewRequest(http.MethodPost, "/api/users/u1/collections", bytes.NewReader(payload))
	req = mux.SetURLVars(req, map[string]string{"userID": "u1"})
	rec := httptest.NewRecorder()
	h.CreateCollection(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var created models.Collection
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("failed to decode create response: %v", err)
	}
	if created.Name != "Date Night" || created.ID <= 0 {
		t.Fatalf("unexpected collection: %+v", created)
	}

	reqDel := httptest.NewRequest(http.MethodDelete, "/api/users/u1/collections/1", nil)
	reqDel = mux.SetURLVars(reqDel, map[string]string{"userID": "u1", "collectionID": "1"})
	recDel := httptest.NewRecorder()
	h.DeleteCollection(recDel, reqDel)

	if recDel.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d", recDel.Code)
	}
}

func TestWatchlistDeleteForeignCollection(t *testing.T) {
	h := newWatchlistHandler(t)

	payload, _ := json.Marshal(map[string]any{"name": "Mine"})
	req := httptest.NewRequest(http.MethodPost, "/api/users/u1/collections", bytes.NewReader(payload))
	req = mux.SetURLVars(req, map[string]string{"userID": "u1"})
	h.CreateCollection(httptest.NewRecorder(), req)

	reqDel := httptest.NewRequest(http.MethodDelete, "/api/users/u2/collections/1", nil)
	reqDel = mux.SetURLVars(reqDel, map[string]string{"userID": "u2", "collectionID": "1"})
	recDel := httptest.NewRecorder()
	h.DeleteCollection(recDel, reqDel)

	if recDel.Code != http.StatusForbidden {
		t.Fatalf("expected status 403, got %d", recDel.Code)
	}
}

func TestWatchlistRequiresUser(t *testing.T) {
	h := newWatchlistHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/users//watchlist", nil)
	req = mux.SetURLVars(req, map[string]string{"userID": " "})
	rec := httptest.NewRecorder()
	h.List(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
}

func TestSeriesBucketAssignment(t *testing.T) {
	h := newWatchlistHandler(t)

	payload, _ := json.Marshal(map[string]any{"collection_ids": []int64{1, 2}})
	req := httptest.NewRequest(http.MethodPut, "/api/users/u1/series-buckets/1396", bytes.NewReader(payload))
	req = mux.SetURLVars(req, map[string]string{"userID": "u1", "seriesID": "1396"})
	rec := httptest.NewRecorder()
	h.AssignSeries(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var assigned struct {
		CollectionIDs []int64 `json:"collection_ids"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &assigned); err != nil {
		t.Fatalf("failed to decode assign response: %v", err)
	}
	if len(assigned.CollectionIDs) != 2 {
		t.Fatalf("expected 2 buckets, got %+v", assigned.CollectionIDs)
	}

	reqList := httptest.NewRequest(http.MethodGet, "/api/users/u1/series-buckets", nil)
	reqList = mux.SetURLVars(reqList, map[string]string{"userID": "u1"})
	recList := httptest.NewRecorder()
	h.SeriesBuckets(recList, reqList)

	var buckets map[string][]models.SeriesRef
	if err := json.Unmarshal(recList.Body.Bytes(), &buckets); err != nil {
		t.Fatalf("failed to decode buckets response: %v", err)
	}
	if len(buckets["1"]) != 1 || buckets["1"][0].Title != "Dark" {
		t.Fatalf("expected resolved series ref in bucket 1, got %+v", buckets)
	}
}
