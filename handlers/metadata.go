package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"sydneymovies/models"
	"sydneymovies/services/metadata"
)

type metadataService interface {
	Configured() bool
	MovieDetails(ctx context.Context, id int64) (*models.MovieDetails, error)
	SeriesDetails(ctx context.Context, id int64) (*models.SeriesDetails, error)
	Genres(ctx context.Context, mediaType models.MediaType) ([]models.Genre, error)
	ImageURL(posterPath, size string) string
}

var _ metadataService = (*metadata.Service)(nil)

type MetadataHandler struct {
	Service metadataService
}

func NewMetadataHandler(service metadataService) *MetadataHandler {
	return &MetadataHandler{Service: service}
}

// Movie resolves a movie id to display metadata with an absolute
// poster URL.
func (h *MetadataHandler) Movie(w http.ResponseWriter, r *http.Request) {
	if !h.requireConfigured(w) {
		return
	}
	movieID, ok := requireID(w, r, "movieID")
	if !ok {
		return
	}

	details, err := h.Service.MovieDetails(r.Context(), movieID)
	if err != nil {
		http.Error(w, err.Error(), metadataStatus(err))
		return
	}
	details.PosterPath = h.Service.ImageURL(details.PosterPath, "w342")

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(details)
}

// Series resolves a TV series id to display metadata.
func (h *MetadataHandler) Series(w http.ResponseWriter, r *http.Request) {
	if !h.requireConfigured(w) {
		return
	}
	seriesID, ok := requireID(w, r, "seriesID")
	if !ok {
		return
	}

	details, err := h.Service.SeriesDetails(r.Context(), seriesID)
	if err != nil {
		http.Error(w, err.Error(), metadataStatus(err))
		return
	}
	details.PosterPath = h.Service.ImageURL(details.PosterPath, "w342")

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(details)
}

// Genres lists the genre catalogue for the requested media type
// (defaults to movies).
func (h *MetadataHandler) Genres(w http.ResponseWriter, r *http.Request) {
	if !h.requireConfigured(w) {
		return
	}

	mediaType := models.MediaTypeMovie
	if raw := strings.TrimSpace(r.URL.Query().Get("media_type")); raw != "" {
		mediaType = models.MediaType(raw)
	}

	genres, err := h.Service.Genres(r.Context(), mediaType)
	if err != nil {
		http.Error(w, err.Error(), metadataStatus(err))
		return
	}
	if genres == nil {
		genres = []models.Genre{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(genres)
}

func (h *MetadataHandler) requireConfigured(w http.ResponseWriter) bool {
	if !h.Service.Configured() {
		http.Error(w, metadata.ErrNotConfigured.Error(), http.StatusServiceUnavailable)
		return false
	}
	return true
}

func metadataStatus(err error) int {
	switch {
	case errors.Is(err, metadata.ErrContentIDRequired),
		errors.Is(err, metadata.ErrUnknownMediaType):
		return http.StatusBadRequest
	case errors.Is(err, metadata.ErrNotConfigured):
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadGateway
	}
}
