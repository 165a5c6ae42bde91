package query

import (
	"context"

	apperrors "transcript-rag/internal/app/errors"
	"transcript-rag/internal/app/model"
)

// fakeEpisodeDAO satisfies repository.EpisodeDAO with empty results
type fakeEpisodeDAO struct{}

func (fakeEpisodeDAO) Close() error { return nil }

func (fakeEpisodeDAO) GetByTitle(context.Context, string) (*model.Episode, error) {
	return nil, apperrors.ErrEpisodeNotFound
}

func (fakeEpisodeDAO) Insert(context.Context, *model.Episode) (int64, error) { return 0, nil }

func (fakeEpisodeDAO) UpdateSummary(context.Context, string, string) error { return nil }

func (fakeEpisodeDAO) List(context.Context, int) ([]model.Episode, error) { return nil, nil }

func (fakeEpisodeDAO) Search(context.Context, string, int) ([]model.EpisodeMatch, error) {
	return nil, nil
}
