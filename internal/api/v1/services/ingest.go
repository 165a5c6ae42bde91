package services

import (
	"context"

	"transcript-rag/internal/api/v1/dto"
	apperrors "transcript-rag/internal/app/errors"
	"transcript-rag/internal/app/ingest"
	"transcript-rag/internal/app/logging"
)

// BatchIngester is the coordinator entry point used by the API
type BatchIngester interface {
	IngestBatch(ctx context.Context, refs []string) (*ingest.Result, error)
}

// FeedResolver expands an RSS feed into transcript references
type FeedResolver interface {
	Resolve(ctx context.Context, feedURL string) ([]string, error)
}

var errFeedsDisabled = apperrors.InvalidField("feeds", "feed resolution is not configured")

type ingestService struct {
	coordinator BatchIngester
	feeds       FeedResolver
	logger      logging.Logger
}

// NewIngestService creates the ingest service. feeds may be nil, in which
// case requests naming feeds are rejected.
func NewIngestService(coordinator BatchIngester, feeds FeedResolver, logger logging.Logger) IngestService {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &ingestService{coordinator: coordinator, feeds: feeds, logger: logger}
}

// Ingest resolves feeds, then runs one batch over every reference. A feed
// that cannot be read fails the request before anything is ingested.
func (s *ingestService) Ingest(ctx context.Context, req *dto.IngestRequest) (*dto.IngestResponse, error) {
	refs := append([]string(nil), req.URLs...)

	for _, feed := range req.Feeds {
		if s.feeds == nil {
			return nil, errFeedsDisabled
		}
		items, err := s.feeds.Resolve(ctx, feed)
		if err != nil {
			return nil, err
		}
		s.logger.Info("Resolved feed", "feed", feed, "transcripts", len(items))
		refs = append(refs, items...)
	}

	return s.coordinator.IngestBatch(ctx, refs)
}
