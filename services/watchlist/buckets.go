package watchlist

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"sydneymovies/models"
)

// Series buckets group TV shows under the user's collections. The remote
// store does not model TV membership, so the buckets live only in the local
// cache under a key shape older builds already use.

const seriesBucketsKeyPrefix = "tv_watchlist_by_list:"

var ErrSeriesIDRequired = errors.New("series id is required")

// LocalCache is the slice of the local store the bucket operations need.
type LocalCache interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
}

// Buckets manages the local series buckets for a cache.
type Buckets struct {
	cache LocalCache
}

// NewBuckets wraps the local cache with bucket operations.
func NewBuckets(cache LocalCache) *Buckets {
	return &Buckets{cache: cache}
}

func seriesBucketsKey(ownerID string) string {
	return seriesBucketsKeyPrefix + ownerID
}

// ByOwner returns all series buckets keyed by collection id. An absent or
// undecodable entry yields an empty map, never an error.
func (b *Buckets) ByOwner(ownerID string) (map[int64][]models.SeriesRef, error) {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return nil, ErrOwnerIDRequired
	}

	raw, ok, err := b.cache.Get(seriesBucketsKey(ownerID))
	if err != nil {
		return nil, fmt.Errorf("read series buckets: %w", err)
	}
	if !ok {
		return map[int64][]models.SeriesRef{}, nil
	}
	return decodeBuckets(raw), nil
}

// Assign puts the series into every listed bucket, skipping buckets that
// already contain it, and writes the whole structure back.
func (b *Buckets) Assign(ownerID string, ref models.SeriesRef, collectionIDs []int64) error {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return ErrOwnerIDRequired
	}
	if ref.ID <= 0 {
		return ErrSeriesIDRequired
	}
	if len(collectionIDs) == 0 {
		return nil
	}

	buckets, err := b.ByOwner(ownerID)
	if err != nil {
		return err
	}

	for _, collectionID := range collectionIDs {
		if collectionID <= 0 {
			return ErrCollectionIDRequired
		}
		existing := buckets[collectionID]
		present := false
		for _, item := range existing {
			if item.ID == ref.ID {
				present = true
				break
			}
		}
		if present {
			continue
		}
		buckets[collectionID] = append(existing, ref)
	}

	encoded, err := encodeBuckets(buckets)
	if err != nil {
		return fmt.Errorf("encode series buckets: %w", err)
	}
	if err := b.cache.Set(seriesBucketsKey(ownerID), encoded); err != nil {
		return fmt.Errorf("write series buckets: %w", err)
	}
	return nil
}

// Containing returns the ids of every bucket holding the series.
func (b *Buckets) Containing(ownerID string, seriesID int64) ([]int64, error) {
	buckets, err := b.ByOwner(ownerID)
	if err != nil {
		return nil, err
	}

	ids := make([]int64, 0)
	for collectionID, refs := range buckets {
		for _, ref := range refs {
			if ref.ID == seriesID {
				ids = append(ids, collectionID)
				break
			}
		}
	}
	return ids, nil
}

// The persisted shape keys buckets by the collection id's decimal string,
// matching what older builds wrote.
func decodeBuckets(raw string) map[int64][]models.SeriesRef {
	var byKey map[string][]models.SeriesRef
	if err := json.Unmarshal([]byte(raw), &byKey); err != nil {
		return map[int64][]models.SeriesRef{}
	}

	buckets := make(map[int64][]models.SeriesRef, len(byKey))
	for key, refs := range byKey {
		collectionID, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			continue
		}
		buckets[collectionID] = refs
	}
	return buckets
}

func encodeBuckets(buckets map[int64][]models.SeriesRef) (string, error) {
	byKey := make(map[string][]models.SeriesRef, len(buckets))
	for collectionID, refs := range buckets {
		byKey[strconv.FormatInt(collectionID, 10)] = refs
	}
	encoded, err := json.Marshal(byKey)
	if err != nil {
		return "", err
	}
	return string(encoded), nil
}
