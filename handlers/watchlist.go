package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"sydneymovies/models"
	"sydneymovies/services/watchlist"

	"github.com/gorilla/mux"
)

type watchlistService interface {
	List(ctx context.Context, ownerID string) ([]models.WatchlistEntry, error)
	AddToCollections(ctx context.Context, ownerID string, movieID int64, collectionIDs []int64) error
	Remove(ctx context.Context, ownerID string, collectionID, movieID int64) error
	IsMember(ownerID string, movieID int64) bool
	Collections(ctx context.Context, ownerID string) ([]models.Collection, error)
	CreateCollection(ctx context.Context, ownerID, name, description string) (models.Collection, error)
	DeleteCollection(ctx context.Context, ownerID string, collectionID int64) error
}

type seriesBucketService interface {
	ByOwner(ownerID string) (map[int64][]models.SeriesRef, error)
	Assign(ownerID string, ref models.SeriesRef, collectionIDs []int64) error
	Containing(ownerID string, seriesID int64) ([]int64, error)
}

var (
	_ watchlistService    = (*watchlist.Service)(nil)
	_ seriesBucketService = (*watchlist.Buckets)(nil)
)

type WatchlistHandler struct {
	Service watchlistService
	Buckets seriesBucketService
	Series  seriesResolver
}

type seriesResolver interface {
	SeriesDetails(ctx context.Context, id int64) (*models.SeriesDetails, error)
}

func NewWatchlistHandler(service watchlistService, buckets seriesBucketService, series seriesResolver) *WatchlistHandler {
	return &WatchlistHandler{
		Service: service,
		Buckets: buckets,
		Series:  series,
	}
}

// List returns the hydrated contents of the user's default watchlist,
// newest additions first.
func (h *WatchlistHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	entries, err := h.Service.List(r.Context(), userID)
	if err != nil {
		http.Error(w, err.Error(), watchlistStatus(err))
		return
	}
	if entries == nil {
		entries = []models.WatchlistEntry{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(entries)
}

// Add puts a movie into one or more of the user's collections. With no
// collection ids the default watchlist is used, created on first add.
func (h *WatchlistHandler) Add(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req struct {
		MovieID       int64   `json:"movie_id"`
		CollectionIDs []int64 `json:"collection_ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.Service.AddToCollections(r.Context(), userID, req.MovieID, req.CollectionIDs); err != nil {
		http.Error(w, err.Error(), watchlistStatus(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"movie_id":     req.MovieID,
		"in_watchlist": h.Service.IsMember(userID, req.MovieID),
	})
}

// Status reports whether the movie is in the user's default watchlist.
func (h *WatchlistHandler) Status(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	movieID, ok := requireID(w, r, "movieID")
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"movie_id":     movieID,
		"in_watchlist": h.Service.IsMember(userID, movieID),
	})
}

// Remove deletes a single membership row. An optional collection_id
// query parameter targets a specific collection; without it the
// default watchlist is used. Removing a non-member is a no-op.
func (h *WatchlistHandler) Remove(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	movieID, ok := requireID(w, r, "movieID")
	if !ok {
		return
	}

	var collectionID int64
	if raw := strings.TrimSpace(r.URL.Query().Get("collection_id")); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			http.Error(w, "invalid collection id", http.StatusBadRequest)
			return
		}
		collectionID = parsed
	}

	if err := h.Service.Remove(r.Context(), userID, collectionID, movieID); err != nil {
		http.Error(w, err.Error(), watchlistStatus(err))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Collections lists the user's collections, oldest first.
func (h *WatchlistHandler) Collections(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	collections, err := h.Service.Collections(r.Context(), userID)
	if err != nil {
		http.Error(w, err.Error(), watchlistStatus(err))
		return
	}
	if collections == nil {
		collections = []models.Collection{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(collections)
}

// CreateCollection adds a named collection for the user.
func (h *WatchlistHandler) CreateCollection(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	collection, err := h.Service.CreateCollection(r.Context(), userID, req.Name, req.Description)
	if err != nil {
		http.Error(w, err.Error(), watchlistStatus(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(collection)
}

// DeleteCollection removes a collection and all of its memberships.
func (h *WatchlistHandler) DeleteCollection(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	collectionID, ok := requireID(w, r, "collectionID")
	if !ok {
		return
	}

	if err := h.Service.DeleteCollection(r.Context(), userID, collectionID); err != nil {
		http.Error(w, err.Error(), watchlistStatus(err))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// SeriesBuckets returns the device-local grouping of TV series by
// collection.
func (h *WatchlistHandler) SeriesBuckets(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	buckets, err := h.Buckets.ByOwner(userID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(buckets)
}

// AssignSeries places a TV series into the named local buckets,
// resolving its display fields from the metadata gateway.
func (h *WatchlistHandler) AssignSeries(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	seriesID, ok := requireID(w, r, "seriesID")
	if !ok {
		return
	}

	var req struct {
		CollectionIDs []int64 `json:"collection_ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ref := models.SeriesRef{ID: seriesID}
	if h.Series != nil {
		if details, err := h.Series.SeriesDetails(r.Context(), seriesID); err == nil {
			ref.Title = details.Name
			ref.PosterPath = details.PosterPath
			ref.FirstAirDate = details.FirstAirDate
			ref.VoteAverage = details.VoteAverage
		}
	}

	if err := h.Buckets.Assign(userID, ref, req.CollectionIDs); err != nil {
		http.Error(w, err.Error(), watchlistStatus(err))
		return
	}

	assigned, err := h.Buckets.Containing(userID, seriesID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if assigned == nil {
		assigned = []int64{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"series_id":      seriesID,
		"collection_ids": assigned,
	})
}

func watchlistStatus(err error) int {
	switch {
	case errors.Is(err, watchlist.ErrOwnerIDRequired),
		errors.Is(err, watchlist.ErrMovieIDRequired),
		errors.Is(err, watchlist.ErrCollectionIDRequired),
		errors.Is(err, watchlist.ErrSeriesIDRequired):
		return http.StatusBadRequest
	case errors.Is(err, watchlist.ErrCollectionNotOwned):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

func requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := strings.TrimSpace(mux.Vars(r)["userID"])
	if userID == "" {
		http.Error(w, "user id is required", http.StatusBadRequest)
		return "", false
	}
	return userID, true
}

func requireID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	raw := strings.TrimSpace(mux.Vars(r)[name])
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		http.Error(w, "invalid "+strings.TrimSuffix(name, "ID")+" id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}
