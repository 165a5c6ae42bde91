package vector

import "context"

// Record is one vector with its metadata
type Record struct {
	ID       string
	Vector   []float32
	Metadata map[string]interface{}
}

// Match is a query hit. Score is cosine similarity, higher is closer.
type Match struct {
	ID       string
	Score    float32
	Metadata map[string]interface{}
}

// Filter restricts a query by chunk metadata. Zero values do not filter.
type Filter struct {
	EpisodeTitle string
	// Speaker must appear in speakers_in_chunk (exact match)
	Speaker string
	// StartSeconds keeps chunks starting at or after this offset
	StartSeconds *int
	// EndSeconds keeps chunks ending at or before this offset
	EndSeconds *int
}

// IsEmpty reports whether f filters nothing
func (f *Filter) IsEmpty() bool {
	return f == nil || (f.EpisodeTitle == "" && f.Speaker == "" && f.StartSeconds == nil && f.EndSeconds == nil)
}

// Store is a named-collection vector store
type Store interface {
	// CreateCollection creates name; an existing collection is not an error
	CreateCollection(ctx context.Context, name string, dimension int) error
	DeleteCollection(ctx context.Context, name string) error
	Upsert(ctx context.Context, name string, records []Record) error
	Query(ctx context.Context, name string, vector []float32, topK int, filter *Filter) ([]Match, error)
	Close() error
}
