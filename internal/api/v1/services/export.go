package services

import (
	"context"
	"io"

	"transcript-rag/internal/app/export"
	"transcript-rag/internal/app/repository"
)

// exportLimit caps the number of episodes in one workbook
const exportLimit = 10000

type exportService struct {
	episodes repository.EpisodeDAO
}

// NewExportService creates an export service over the episode store
func NewExportService(episodes repository.EpisodeDAO) ExportService {
	return &exportService{episodes: episodes}
}

func (s *exportService) ExportEpisodes(ctx context.Context, w io.Writer) error {
	episodes, err := s.episodes.List(ctx, exportLimit)
	if err != nil {
		return err
	}
	return export.WriteEpisodes(w, episodes)
}
