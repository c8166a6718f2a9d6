package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"sydneymovies/api"
	"sydneymovies/config"
	"sydneymovies/handlers"
	"sydneymovies/internal/database"
	"sydneymovies/internal/localstore"
	"sydneymovies/services/discover"
	"sydneymovies/services/metadata"
	"sydneymovies/services/notes"
	"sydneymovies/services/preferences"
	"sydneymovies/services/watchlist"

	"github.com/gorilla/mux"
	"gopkg.in/natefinch/lumberjack.v2"
)

func main() {
	portOverride := flag.Int("port", 0, "override server port from config")
	flag.Parse()

	fmt.Println("sydneymovies backend starting...")

	// Determine config path (env or default)
	configPath := os.Getenv("SYDNEYMOVIES_CONFIG")
	if configPath == "" {
		configPath = filepath.Join("data", "settings.json")
	}

	// Init config manager and load settings (creates defaults if missing)
	cfgManager := config.NewManager(configPath)
	settings, err := cfgManager.Load()
	if err != nil {
		log.Fatalf("failed to load settings: %v", err)
	}

	// Set up file logging with rotation
	if settings.Log.File != "" {
		logDir := filepath.Dir(settings.Log.File)
		if err := os.MkdirAll(logDir, 0o755); err != nil {
			log.Printf("Warning: could not create log directory %s: %v", logDir, err)
		} else {
			fileWriter := &lumberjack.Logger{
				Filename:   settings.Log.File,
				MaxSize:    settings.Log.MaxSize,
				MaxBackups: settings.Log.MaxBackups,
				MaxAge:     settings.Log.MaxAge,
				Compress:   settings.Log.Compress,
			}
			log.SetOutput(io.MultiWriter(os.Stdout, fileWriter))
			log.SetFlags(log.LstdFlags | log.Lshortfile)
			log.Printf("Logging to file: %s", settings.Log.File)
		}
	}

	if *portOverride > 0 {
		settings.Server.Port = *portOverride
	}

	// Device-local cache (notes fallback, series buckets, preferences)
	cache, err := localstore.Open(settings.Cache.Directory)
	if err != nil {
		log.Fatalf("failed to open local cache: %v", err)
	}
	defer cache.Close()

	// Remote authoritative store. Without a database URL (or when the
	// connection fails at startup) the server runs local-only: notes
	// still work from the cache, membership is kept in memory.
	var (
		watchlistStore watchlist.Store
		notesStore     notes.RemoteStore
	)
	if settings.Database.URL != "" {
		pool, err := database.Open(context.Background(), settings.Database.URL)
		if err != nil {
			log.Printf("Warning: remote store unreachable, running local-only: %v", err)
		} else {
			defer pool.Close()
			watchlistStore = watchlist.NewPostgresStore(pool)
			notesStore = notes.NewPostgresStore(pool)
		}
	} else {
		log.Println("No database configured, running local-only")
	}
	if watchlistStore == nil {
		watchlistStore = watchlist.NewMemoryStore()
	}
	if notesStore == nil {
		notesStore = notes.NewMemoryStore()
	}

	// Services
	metadataService := metadata.NewService(settings.Metadata.TMDBAPIKey, settings.Metadata.Language, nil)
	if !metadataService.Configured() {
		log.Println("Warning: TMDB API key not configured, metadata lookups will fail")
	}
	watchlistService := watchlist.NewService(watchlistStore, metadataService)
	bucketsService := watchlist.NewBuckets(cache)
	notesService := notes.NewService(notesStore, cache, metadataService)
	preferencesService := preferences.NewService(cache)
	discoverService := discover.NewService(metadataService, preferencesService)

	// Router and handlers
	r := mux.NewRouter()
	api.Register(
		r,
		handlers.NewWatchlistHandler(watchlistService, bucketsService, metadataService),
		handlers.NewNotesHandler(notesService),
		handlers.NewPreferencesHandler(preferencesService),
		handlers.NewRecommendationsHandler(discoverService),
		handlers.NewMetadataHandler(metadataService),
	)

	addr := fmt.Sprintf("%s:%d", settings.Server.Host, settings.Server.Port)
	fmt.Printf("Server starting on %s\n", addr)

	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Setup graceful shutdown
	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-shutdownChan
	log.Println("Shutdown signal received, cleaning up...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Shutdown complete")
}
