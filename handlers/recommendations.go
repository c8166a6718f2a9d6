package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"sydneymovies/models"
	"sydneymovies/services/discover"
)

type discoverService interface {
	Recommendations(ctx context.Context, ownerID string) ([]models.DiscoverItem, models.DiscoveryPreferences, error)
}

var _ discoverService = (*discover.Service)(nil)

type RecommendationsHandler struct {
	Service discoverService
}

func NewRecommendationsHandler(service discoverService) *RecommendationsHandler {
	return &RecommendationsHandler{Service: service}
}

// Get returns discovery results filtered by the user's stored
// preferences, alongside the preferences that produced them.
func (h *RecommendationsHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	items, prefs, err := h.Service.Recommendations(r.Context(), userID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	if items == nil {
		items = []models.DiscoverItem{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"results":     items,
		"preferences": prefs,
	})
}
