package repository

import (
	"context"

	"transcript-rag/internal/app/model"
)

// EpisodeDAO is the relational episode store. Episodes are keyed by title
// by convention; Insert does not enforce uniqueness.
type EpisodeDAO interface {
	Close() error

	// GetByTitle returns ErrEpisodeNotFound when no row has title
	GetByTitle(ctx context.Context, title string) (*model.Episode, error)

	Insert(ctx context.Context, episode *model.Episode) (int64, error)

	UpdateSummary(ctx context.Context, title, summary string) error

	// List returns episodes newest first
	List(ctx context.Context, limit int) ([]model.Episode, error)

	// Search ranks episodes by full-text relevance, title weighted above
	// summary above speaker names
	Search(ctx context.Context, query string, limit int) ([]model.EpisodeMatch, error)
}

// DefaultListLimit bounds List and Search when the caller passes no limit
const DefaultListLimit = 100

// NormalizeLimit applies DefaultListLimit to non-positive limits
func NormalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	return limit
}
