package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"sydneymovies/models"
)

const (
	tmdbBaseURL      = "https://api.themoviedb.org/3"
	tmdbImageBaseURL = "https://image.tmdb.org/t/p"
	// w500 is plenty for poster cards; "original" wastes memory.
	tmdbPosterSize = "w500"
)

type tmdbClient struct {
	apiKey   string
	language string
	httpc    *http.Client

	// Rate limiting
	throttleMu  sync.Mutex
	lastRequest time.Time
	minInterval time.Duration
}

func newTMDBClient(apiKey, language string, httpc *http.Client) *tmdbClient {
	if httpc == nil {
		httpc = &http.Client{Timeout: 15 * time.Second}
	}
	return &tmdbClient{
		apiKey:      strings.TrimSpace(apiKey),
		language:    strings.TrimSpace(language),
		httpc:       httpc,
		minInterval: 20 * time.Millisecond, // TMDB has generous rate limits
	}
}

func (c *tmdbClient) isConfigured() bool {
	return c != nil && c.apiKey != ""
}

// doGET performs an HTTP GET with rate limiting and retry with exponential backoff.
func (c *tmdbClient) doGET(ctx context.Context, endpoint string, v any) error {
	var lastErr error
	backoff := 300 * time.Millisecond

	for attempt := 0; attempt < 3; attempt++ {
		c.throttleMu.Lock()
		since := time.Since(c.lastRequest)
		if since < c.minInterval {
			time.Sleep(c.minInterval - since)
		}
		c.lastRequest = time.Now()
		c.throttleMu.Unlock()

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return err
		}

		resp, err := c.httpc.Do(req)
		if err != nil {
			lastErr = err
			log.Printf("[tmdb] http error (attempt %d/3): %v", attempt+1, err)
			time.Sleep(backoff)
			backoff *= 2
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			resp.Body.Close()
			log.Printf("[tmdb] rate limited or server error (attempt %d/3): status %d", attempt+1, resp.StatusCode)
			lastErr = fmt.Errorf("tmdb request failed: %s", resp.Status)
			time.Sleep(backoff)
			backoff *= 2
			continue
		}

		if resp.StatusCode >= 400 {
			resp.Body.Close()
			return fmt.Errorf("tmdb request failed: %s", resp.Status)
		}

		err = json.NewDecoder(resp.Body).Decode(v)
		resp.Body.Close()
		if err != nil {
			return err
		}
		return nil
	}

	return lastErr
}

// endpoint builds a full request URL with api key, language and extra params.
func (c *tmdbClient) endpoint(apiPath string, extra url.Values) string {
	q := url.Values{}
	q.Set("api_key", c.apiKey)
	if c.language != "" {
		q.Set("language", c.language)
	} else {
		q.Set("language", "en-US")
	}
	for key, vals := range extra {
		for _, val := range vals {
			q.Add(key, val)
		}
	}
	return tmdbBaseURL + "/" + strings.TrimPrefix(apiPath, "/") + "?" + q.Encode()
}

type tmdbMovieResponse struct {
	ID               int64   `json:"id"`
	Title            string  `json:"title"`
	Overview         string  `json:"overview"`
	PosterPath       string  `json:"poster_path"`
	ReleaseDate      string  `json:"release_date"`
	Runtime          int     `json:"runtime"`
	Adult            bool    `json:"adult"`
	OriginalLanguage string  `json:"original_language"`
	VoteAverage      float64 `json:"vote_average"`
	Genres           []struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	} `json:"genres"`
	Credits struct {
		Cast []struct {
			Name string `json:"name"`
		} `json:"cast"`
	} `json:"credits"`
}

func (c *tmdbClient) movieDetails(ctx context.Context, tmdbID int64) (*models.MovieDetails, error) {
	if !c.isConfigured() {
		return nil, ErrNotConfigured
	}

	extra := url.Values{}
	extra.Set("append_to_response", "credits")
	endpoint := c.endpoint(fmt.Sprintf("movie/%d", tmdbID), extra)

	var movie tmdbMovieResponse
	if err := c.doGET(ctx, endpoint, &movie); err != nil {
		return nil, fmt.Errorf("tmdb movie details: %w", err)
	}

	details := &models.MovieDetails{
		ID:               movie.ID,
		Title:            movie.Title,
		Overview:         movie.Overview,
		ReleaseDate:      movie.ReleaseDate,
		RuntimeMinutes:   movie.Runtime,
		Adult:            movie.Adult,
		OriginalLanguage: movie.OriginalLanguage,
		VoteAverage:      movie.VoteAverage,
		PosterPath:       movie.PosterPath,
	}
	for _, g := range movie.Genres {
		details.Genres = append(details.Genres, models.Genre{ID: g.ID, Name: g.Name})
	}
	for i, member := range movie.Credits.Cast {
		if i >= 10 {
			break
		}
		details.Cast = append(details.Cast, member.Name)
	}
	return details, nil
}

type tmdbSeriesResponse struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	Overview     string  `json:"overview"`
	PosterPath   string  `json:"poster_path"`
	FirstAirDate string  `json:"first_air_date"`
	VoteAverage  float64 `json:"vote_average"`
	Genres       []struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	} `json:"genres"`
}

func (c *tmdbClient) seriesDetails(ctx context.Context, tmdbID int64) (*models.SeriesDetails, error) {
	if !c.isConfigured() {
		return nil, ErrNotConfigured
	}

	endpoint := c.endpoint(fmt.Sprintf("tv/%d", tmdbID), nil)

	var series tmdbSeriesResponse
	if err := c.doGET(ctx, endpoint, &series); err != nil {
		return nil, fmt.Errorf("tmdb series details: %w", err)
	}

	details := &models.SeriesDetails{
		ID:           series.ID,
		Name:         series.Name,
		Overview:     series.Overview,
		FirstAirDate: series.FirstAirDate,
		VoteAverage:  series.VoteAverage,
		PosterPath:   series.PosterPath,
	}
	for _, g := range series.Genres {
		details.Genres = append(details.Genres, models.Genre{ID: g.ID, Name: g.Name})
	}
	return details, nil
}

type tmdbGenreListResponse struct {
	Genres []struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	} `json:"genres"`
}

func (c *tmdbClient) genreList(ctx context.Context, mediaType string) ([]models.Genre, error) {
	if !c.isConfigured() {
		return nil, ErrNotConfigured
	}

	endpoint := c.endpoint("genre/"+mediaType+"/list", nil)

	var resp tmdbGenreListResponse
	if err := c.doGET(ctx, endpoint, &resp); err != nil {
		return nil, fmt.Errorf("tmdb genre list: %w", err)
	}

	genres := make([]models.Genre, 0, len(resp.Genres))
	for _, g := range resp.Genres {
		genres = append(genres, models.Genre{ID: g.ID, Name: g.Name})
	}
	return genres, nil
}

type tmdbDiscoverResponse struct {
	Results []struct {
		ID           int64   `json:"id"`
		Title        string  `json:"title"`
		Name         string  `json:"name"`
		PosterPath   string  `json:"poster_path"`
		ReleaseDate  string  `json:"release_date"`
		FirstAirDate string  `json:"first_air_date"`
		VoteAverage  float64 `json:"vote_average"`
		GenreIDs     []int   `json:"genre_ids"`
	} `json:"results"`
}

// discover runs a compiled discovery query. apiPath is "discover/movie" or
// "discover/tv"; tv rows are normalised to the movie-like card shape.
func (c *tmdbClient) discover(ctx context.Context, apiPath string, params url.Values) ([]models.DiscoverItem, error) {
	if !c.isConfigured() {
		return nil, ErrNotConfigured
	}

	endpoint := c.endpoint(apiPath, params)

	var resp tmdbDiscoverResponse
	if err := c.doGET(ctx, endpoint, &resp); err != nil {
		return nil, fmt.Errorf("tmdb discover: %w", err)
	}

	mediaType := "movie"
	if strings.HasSuffix(apiPath, "/tv") {
		mediaType = "tv"
	}

	items := make([]models.DiscoverItem, 0, len(resp.Results))
	for _, r := range resp.Results {
		item := models.DiscoverItem{
			ID:          r.ID,
			Title:       r.Title,
			PosterPath:  r.PosterPath,
			ReleaseDate: r.ReleaseDate,
			VoteAverage: r.VoteAverage,
			GenreIDs:    r.GenreIDs,
			MediaType:   mediaType,
		}
		if mediaType == "tv" {
			item.Title = r.Name
			item.ReleaseDate = r.FirstAirDate
		}
		items = append(items, item)
	}
	return items, nil
}

// imageURL builds a CDN URL for a poster reference, or "" when absent.
func imageURL(posterPath, size string) string {
	posterPath = strings.TrimSpace(posterPath)
	if posterPath == "" {
		return ""
	}
	if size == "" {
		size = tmdbPosterSize
	}
	if !strings.HasPrefix(posterPath, "/") {
		posterPath = "/" + posterPath
	}
	return tmdbImageBaseURL + "/" + size + posterPath
}
