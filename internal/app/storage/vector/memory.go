package vector

import (
	"context"
	"encoding/json"
	"sort"
	"sync"

	"transcript-rag/internal/app/embedding/similarity"
	apperrors "transcript-rag/internal/app/errors"
)

type memoryCollection struct {
	dimension int
	records   []Record
	byID      map[string]int
}

// MemoryStore is an in-process Store used for local runs and tests
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]*memoryCollection
	calc        similarity.Calculator
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		collections: make(map[string]*memoryCollection),
		calc:        similarity.NewCosineCalculator(),
	}
}

func (s *MemoryStore) CreateCollection(ctx context.Context, name string, dimension int) error {
	if dimension <= 0 {
		return apperrors.Store(apperrors.InvalidField("dimension", "must be positive"), "invalid collection %q", name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.collections[name]; ok {
		return nil
	}
	s.collections[name] = &memoryCollection{dimension: dimension, byID: make(map[string]int)}
	return nil
}

func (s *MemoryStore) DeleteCollection(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.collections[name]; !ok {
		return apperrors.Store(apperrors.ErrCollectionNotFound, "collection %q", name)
	}
	delete(s.collections, name)
	return nil
}

// Upsert validates the whole batch before writing any of it
func (s *MemoryStore) Upsert(ctx context.Context, name string, records []Record) error {
	if err := ctx.Err(); err != nil {
		return apperrors.Store(err, "upsert cancelled")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.collections[name]
	if !ok {
		return apperrors.Store(apperrors.ErrCollectionNotFound, "collection %q", name)
	}
	for _, rec := range records {
		if len(rec.Vector) != c.dimension {
			return apperrors.Store(nil, "vector %s has dimension %d, collection %q expects %d",
				rec.ID, len(rec.Vector), name, c.dimension)
		}
	}

	for _, rec := range records {
		stored := Record{
			ID:       rec.ID,
			Vector:   append([]float32(nil), rec.Vector...),
			Metadata: cloneMetadata(rec.Metadata),
		}
		if i, ok := c.byID[rec.ID]; ok {
			c.records[i] = stored
			continue
		}
		c.byID[rec.ID] = len(c.records)
		c.records = append(c.records, stored)
	}
	return nil
}

// Query scans the collection; a missing collection yields no matches
func (s *MemoryStore) Query(ctx context.Context, name string, vector []float32, topK int, filter *Filter) ([]Match, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.Store(err, "query cancelled")
	}
	if topK <= 0 {
		return nil, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.collections[name]
	if !ok {
		return nil, nil
	}
	if len(vector) != c.dimension {
		return nil, apperrors.Store(similarity.ErrDimensionMismatch, "query vector has dimension %d, collection %q expects %d",
			len(vector), name, c.dimension)
	}

	var matches []Match
	for _, rec := range c.records {
		if !matchesFilter(rec.Metadata, filter) {
			continue
		}
		score, err := s.calc.Calculate(vector, rec.Vector)
		if err != nil {
			return nil, apperrors.Store(err, "failed to score %s", rec.ID)
		}
		matches = append(matches, Match{ID: rec.ID, Score: score, Metadata: cloneMetadata(rec.Metadata)})
	}

	sort.SliceStable(matches, func(i, j int) bool { return matches[i].Score > matches[j].Score })
	if len(matches) > topK {
		matches = matches[:topK]
	}
	return matches, nil
}

// Count returns the number of vectors in name
func (s *MemoryStore) Count(name string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if c, ok := s.collections[name]; ok {
		return len(c.records)
	}
	return 0
}

func (s *MemoryStore) Close() error { return nil }

func matchesFilter(meta map[string]interface{}, f *Filter) bool {
	if f.IsEmpty() {
		return true
	}
	if f.EpisodeTitle != "" {
		if title, _ := meta["episode_title"].(string); title != f.EpisodeTitle {
			return false
		}
	}
	if f.Speaker != "" && !containsString(meta["speakers_in_chunk"], f.Speaker) {
		return false
	}
	if f.StartSeconds != nil {
		start, ok := asInt(meta["start_seconds"])
		if !ok || start < *f.StartSeconds {
			return false
		}
	}
	if f.EndSeconds != nil {
		end, ok := asInt(meta["end_seconds"])
		if !ok || end > *f.EndSeconds {
			return false
		}
	}
	return true
}

func containsString(v interface{}, want string) bool {
	switch list := v.(type) {
	case []string:
		for _, s := range list {
			if s == want {
				return true
			}
		}
	case []interface{}:
		for _, s := range list {
			if str, ok := s.(string); ok && str == want {
				return true
			}
		}
	}
	return false
}

func asInt(v interface{}) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	case json.Number:
		i, err := n.Int64()
		return int(i), err == nil
	}
	return 0, false
}

func cloneMetadata(m map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
