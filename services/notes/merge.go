package notes

import (
	"encoding/json"
	"sort"
	"strings"
	"time"

	"sydneymovies/models"
)

// localNote is the cache entry shape. Older builds stored the bare body
// string; both shapes must keep decoding.
type localNote struct {
	Body      string  `json:"body"`
	UpdatedAt *string `json:"updated_at"`
}

// encodeLocalNote renders the cache entry for a note.
func encodeLocalNote(body string, updatedAt *time.Time) (string, error) {
	entry := localNote{Body: body}
	if updatedAt != nil {
		formatted := updatedAt.UTC().Format(time.RFC3339Nano)
		entry.UpdatedAt = &formatted
	}
	encoded, err := json.Marshal(entry)
	if err != nil {
		return "", err
	}
	return string(encoded), nil
}

// decodeLocalNote parses a cache entry. A legacy bare string decodes with a
// nil timestamp, which sorts as oldest during merge.
func decodeLocalNote(raw string) (string, *time.Time) {
	var entry localNote
	if err := json.Unmarshal([]byte(raw), &entry); err == nil {
		var updatedAt *time.Time
		if entry.UpdatedAt != nil {
			if parsed, perr := time.Parse(time.RFC3339Nano, *entry.UpdatedAt); perr == nil {
				updatedAt = &parsed
			}
		}
		return entry.Body, updatedAt
	}
	return raw, nil
}

// mergeLastWriteWins merges local and remote candidates by movie id keeping
// the most recently updated body per movie. A nil timestamp counts as the
// epoch, so it loses ties; remote entries are applied after local ones, so
// on an exact timestamp tie the remote copy wins, matching what older
// builds did.
func mergeLastWriteWins(local, remote []models.Note) []models.Note {
	merged := make(map[int64]models.Note)
	apply := func(n models.Note) {
		existing, ok := merged[n.MovieID]
		if !ok || !updatedAtOf(n).Before(updatedAtOf(existing)) {
			merged[n.MovieID] = n
		}
	}
	for _, n := range local {
		apply(n)
	}
	for _, n := range remote {
		apply(n)
	}

	out := make([]models.Note, 0, len(merged))
	for _, n := range merged {
		if strings.TrimSpace(n.Body) == "" {
			continue
		}
		out = append(out, n)
	}

	sort.Slice(out, func(i, j int) bool {
		ti, tj := updatedAtOf(out[i]), updatedAtOf(out[j])
		if ti.Equal(tj) {
			return out[i].MovieID < out[j].MovieID
		}
		return ti.After(tj)
	})
	return out
}

func updatedAtOf(n models.Note) time.Time {
	if n.UpdatedAt == nil {
		return time.Time{}
	}
	return *n.UpdatedAt
}
