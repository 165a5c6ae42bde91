package services

import (
	"context"
	"io"

	"transcript-rag/internal/api/v1/dto"
	"transcript-rag/internal/app/model"
	"transcript-rag/internal/app/query"
)

// IngestService runs ingestion batches
type IngestService interface {
	Ingest(ctx context.Context, req *dto.IngestRequest) (*dto.IngestResponse, error)
}

// QueryService is the retrieval surface; *query.Service implements it
type QueryService interface {
	Search(ctx context.Context, q string, topK int) ([]query.Result, error)
	SearchBySpeaker(ctx context.Context, speaker, q string, topK int) ([]query.Result, error)
	SearchByTimeRange(ctx context.Context, tr query.TimeRange, topK int) ([]query.Result, error)
	Episodes(ctx context.Context, episodeTitle string) ([]query.EpisodeSummary, error)
	SearchEpisodes(ctx context.Context, q string, limit int) ([]model.EpisodeMatch, error)
}

// ExportService writes the episode catalogue as a spreadsheet
type ExportService interface {
	ExportEpisodes(ctx context.Context, w io.Writer) error
}

var _ QueryService = (*query.Service)(nil)
