package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"sydneymovies/models"
	"sydneymovies/services/preferences"
)

type preferencesService interface {
	Load(ownerID string) (models.DiscoveryPreferences, error)
	Save(ownerID string, prefs models.DiscoveryPreferences) (models.DiscoveryPreferences, error)
}

var _ preferencesService = (*preferences.Service)(nil)

type PreferencesHandler struct {
	Service preferencesService
}

func NewPreferencesHandler(service preferencesService) *PreferencesHandler {
	return &PreferencesHandler{Service: service}
}

// Get returns the stored discovery preferences, defaulted if nothing
// usable is stored.
func (h *PreferencesHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	prefs, err := h.Service.Load(userID)
	if err != nil {
		http.Error(w, err.Error(), preferencesStatus(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(prefs)
}

// Save replaces the stored preferences. Year bounds arrive as raw
// numbers and are clamped before storage.
func (h *PreferencesHandler) Save(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req struct {
		MediaType models.MediaType `json:"mediaType"`
		GenreIDs  []int            `json:"genreIds"`
		YearFrom  *float64         `json:"yearFrom"`
		YearTo    *float64         `json:"yearTo"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	prefs := models.DiscoveryPreferences{
		MediaType: req.MediaType,
		GenreIDs:  req.GenreIDs,
	}
	if req.YearFrom != nil {
		prefs.YearFrom = preferences.ClampYear(*req.YearFrom)
	}
	if req.YearTo != nil {
		prefs.YearTo = preferences.ClampYear(*req.YearTo)
	}

	saved, err := h.Service.Save(userID, prefs)
	if err != nil {
		http.Error(w, err.Error(), preferencesStatus(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(saved)
}

func preferencesStatus(err error) int {
	if errors.Is(err, preferences.ErrOwnerIDRequired) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
