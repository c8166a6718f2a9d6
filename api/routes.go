package api

import (
	"encoding/json"
	"net/http"

	"sydneymovies/handlers"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// corsMiddleware handles CORS for API routes
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "*")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// requestIDMiddleware tags every response with an id for log correlation.
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r)
	})
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// Register mounts API endpoints onto the provided router.
func Register(
	r *mux.Router,
	watchlistHandler *handlers.WatchlistHandler,
	notesHandler *handlers.NotesHandler,
	preferencesHandler *handlers.PreferencesHandler,
	recommendationsHandler *handlers.RecommendationsHandler,
	metadataHandler *handlers.MetadataHandler,
) {
	api := r.PathPrefix("/api").Subrouter()
	api.Use(corsMiddleware)
	api.Use(requestIDMiddleware)

	api.HandleFunc("/health", handleHealth).Methods(http.MethodGet)

	// Watchlist membership
	api.HandleFunc("/users/{userID}/watchlist", watchlistHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/users/{userID}/watchlist", watchlistHandler.Add).Methods(http.MethodPost)
	api.HandleFunc("/users/{userID}/watchlist/{movieID}", watchlistHandler.Status).Methods(http.MethodGet)
	api.HandleFunc("/users/{userID}/watchlist/{movieID}", watchlistHandler.Remove).Methods(http.MethodDelete)

	// Collections
	api.HandleFunc("/users/{userID}/collections", watchlistHandler.Collections).Methods(http.MethodGet)
	api.HandleFunc("/users/{userID}/collections", watchlistHandler.CreateCollection).Methods(http.MethodPost)
	api.HandleFunc("/users/{userID}/collections/{collectionID}", watchlistHandler.DeleteCollection).Methods(http.MethodDelete)

	// Device-local series buckets
	api.HandleFunc("/users/{userID}/series-buckets", watchlistHandler.SeriesBuckets).Methods(http.MethodGet)
	api.HandleFunc("/users/{userID}/series-buckets/{seriesID}", watchlistHandler.AssignSeries).Methods(http.MethodPut)

	// Notes
	api.HandleFunc("/users/{userID}/notes", notesHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/users/{userID}/notes/{movieID}", notesHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/users/{userID}/notes/{movieID}", notesHandler.Save).Methods(http.MethodPut)
	api.HandleFunc("/users/{userID}/notes/{movieID}", notesHandler.Delete).Methods(http.MethodDelete)

	// Discovery preferences and recommendations
	api.HandleFunc("/users/{userID}/preferences", preferencesHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/users/{userID}/preferences", preferencesHandler.Save).Methods(http.MethodPut)
	api.HandleFunc("/users/{userID}/recommendations", recommendationsHandler.Get).Methods(http.MethodGet)

	// Metadata gateway
	api.HandleFunc("/metadata/movies/{movieID}", metadataHandler.Movie).Methods(http.MethodGet)
	api.HandleFunc("/metadata/series/{seriesID}", metadataHandler.Series).Methods(http.MethodGet)
	api.HandleFunc("/metadata/genres", metadataHandler.Genres).Methods(http.MethodGet)
}
