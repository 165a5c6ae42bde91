package ingest

import (
	"context"
	"errors"
	"sync"

	"github.com/stretchr/testify/mock"
	apperrors "transcript-rag/internal/app/errors"
	"transcript-rag/internal/app/model"
	"transcript-rag/internal/app/storage/vector"
	"transcript-rag/internal/app/summarizer"
)

// fakeSource serves canned transcripts; unknown refs fail to fetch
type fakeSource struct {
	mu          sync.Mutex
	transcripts map[string]*model.Transcript
	calls       []string
}

func (f *fakeSource) Fetch(_ context.Context, ref string) (*model.Transcript, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, ref)
	t, ok := f.transcripts[ref]
	if !ok {
		return nil, apperrors.Fetch(errors.New("connection refused"), "fetching %s", ref)
	}
	return t, nil
}

// fakeEpisodes is an in-memory EpisodeDAO
type fakeEpisodes struct {
	rows      []model.Episode
	inserts   int
	updates   int
	getErr    error
	insertErr error
	updateErr error
}

func (f *fakeEpisodes) Close() error { return nil }

func (f *fakeEpisodes) GetByTitle(_ context.Context, title string) (*model.Episode, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	for i := range f.rows {
		if f.rows[i].EpisodeTitle == title {
			ep := f.rows[i]
			return &ep, nil
		}
	}
	return nil, apperrors.Wrapf(apperrors.ErrEpisodeNotFound, "episode %q", title)
}

func (f *fakeEpisodes) Insert(_ context.Context, ep *model.Episode) (int64, error) {
	if f.insertErr != nil {
		return 0, f.insertErr
	}
	f.inserts++
	ep.ID = int64(len(f.rows) + 1)
	f.rows = append(f.rows, *ep)
	return ep.ID, nil
}

func (f *fakeEpisodes) UpdateSummary(_ context.Context, title, summary string) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	for i := range f.rows {
		if f.rows[i].EpisodeTitle == title {
			f.updates++
			f.rows[i].Summary = &summary
			return nil
		}
	}
	return apperrors.ErrEpisodeNotFound
}

func (f *fakeEpisodes) List(_ context.Context, _ int) ([]model.Episode, error) {
	return f.rows, nil
}

func (f *fakeEpisodes) Search(_ context.Context, _ string, _ int) ([]model.EpisodeMatch, error) {
	return nil, nil
}

type MockSummarizer struct {
	mock.Mock
}

func (m *MockSummarizer) Summarize(ctx context.Context, fullText string, mode summarizer.Mode) (string, error) {
	args := m.Called(ctx, fullText, mode)
	return args.String(0), args.Error(1)
}

// failingStore wraps a MemoryStore and fails upserts
type failingStore struct {
	*vector.MemoryStore
	upsertErr error
}

func (f *failingStore) Upsert(ctx context.Context, name string, records []vector.Record) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	return f.MemoryStore.Upsert(ctx, name, records)
}
