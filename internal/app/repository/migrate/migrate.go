// Package migrate copies episode rows between episode stores, typically from
// a local SQLite database into PostgreSQL.
package migrate

import (
	"context"
	"errors"

	apperrors "transcript-rag/internal/app/errors"
	"transcript-rag/internal/app/logging"
	"transcript-rag/internal/app/model"
	"transcript-rag/internal/app/repository"
)

// DefaultLimit caps how many episodes one run reads from the source
const DefaultLimit = 10000

// Stats reports what a migration run did
type Stats struct {
	Read    int `json:"read"`
	Copied  int `json:"copied"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

// Episodes copies up to limit episodes from src to dst, oldest first.
// Titles already present in dst are skipped, so reruns resume where a
// previous run stopped. Rows that fail validation or insertion are logged
// and counted; only read errors abort the run.
func Episodes(ctx context.Context, src, dst repository.EpisodeDAO, limit int, logger logging.Logger) (*Stats, error) {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	episodes, err := src.List(ctx, limit)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to read source episodes")
	}

	stats := &Stats{Read: len(episodes)}
	for i := len(episodes) - 1; i >= 0; i-- {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		ep := episodes[i]

		if ep.EpisodeTitle == "" {
			logger.Warn("skipping episode without title", "id", ep.ID)
			stats.Failed++
			continue
		}

		_, err := dst.GetByTitle(ctx, ep.EpisodeTitle)
		switch {
		case err == nil:
			stats.Skipped++
			continue
		case !errors.Is(err, apperrors.ErrEpisodeNotFound):
			logger.Error("failed to check destination", "title", ep.EpisodeTitle, "error", err)
			stats.Failed++
			continue
		}

		row := model.Episode{
			EpisodeTitle: ep.EpisodeTitle,
			Speakers:     ep.Speakers,
			Source:       ep.Source,
			Summary:      ep.Summary,
		}
		if _, err := dst.Insert(ctx, &row); err != nil {
			logger.Error("failed to copy episode", "title", ep.EpisodeTitle, "error", err)
			stats.Failed++
			continue
		}
		stats.Copied++
	}

	logger.Info("episode migration completed",
		"read", stats.Read, "copied", stats.Copied, "skipped", stats.Skipped, "failed", stats.Failed)
	return stats, nil
}
