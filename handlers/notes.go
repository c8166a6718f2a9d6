package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"sydneymovies/models"
	"sydneymovies/services/notes"
)

type notesService interface {
	Load(ctx context.Context, ownerID string, movieID int64) (models.Note, bool, error)
	Save(ctx context.Context, ownerID string, movieID int64, body string) (notes.Result, error)
	Delete(ctx context.Context, ownerID string, movieID int64) (notes.Result, error)
	ListAll(ctx context.Context, ownerID string) ([]models.NoteListItem, bool, error)
}

var _ notesService = (*notes.Service)(nil)

type NotesHandler struct {
	Service notesService
}

func NewNotesHandler(service notesService) *NotesHandler {
	return &NotesHandler{Service: service}
}

// Get returns the note for one movie. A degraded read (remote store
// unreachable, local copy served) reports synced=false so the client
// can show a "not synced across devices" advisory.
func (h *NotesHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	movieID, ok := requireID(w, r, "movieID")
	if !ok {
		return
	}

	note, synced, err := h.Service.Load(r.Context(), userID, movieID)
	if err != nil {
		http.Error(w, err.Error(), notesStatus(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"movie_id":   movieID,
		"body":       note.Body,
		"updated_at": note.UpdatedAt,
		"synced":     synced,
	})
}

// Save upserts the note. Remote failure is not an error here: the
// local copy is always written and the response carries synced=false.
func (h *NotesHandler) Save(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	movieID, ok := requireID(w, r, "movieID")
	if !ok {
		return
	}

	var req struct {
		Body string `json:"body"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	result, err := h.Service.Save(r.Context(), userID, movieID, req.Body)
	if err != nil {
		http.Error(w, err.Error(), notesStatus(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

// Delete removes the note from both stores.
func (h *NotesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	movieID, ok := requireID(w, r, "movieID")
	if !ok {
		return
	}

	result, err := h.Service.Delete(r.Context(), userID, movieID)
	if err != nil {
		http.Error(w, err.Error(), notesStatus(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

// List returns every annotated movie for the user, merged across
// stores, newest first.
func (h *NotesHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	items, synced, err := h.Service.ListAll(r.Context(), userID)
	if err != nil {
		http.Error(w, err.Error(), notesStatus(err))
		return
	}
	if items == nil {
		items = []models.NoteListItem{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"notes":  items,
		"synced": synced,
	})
}

func notesStatus(err error) int {
	switch {
	case errors.Is(err, notes.ErrOwnerIDRequired),
		errors.Is(err, notes.ErrMovieIDRequired),
		errors.Is(err, notes.ErrBodyRequired):
		return http.StatusBadRequest
	case errors.Is(err, notes.ErrNothingPersisted):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
