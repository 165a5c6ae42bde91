package provider

import (
	"strings"

	"github.com/samber/lo"
	apperrors "transcript-rag/internal/app/errors"
)

// validateTexts rejects batches containing blank entries
func validateTexts(texts []string) error {
	for i, text := range texts {
		if strings.TrimSpace(text) == "" {
			return apperrors.Embedding(apperrors.ErrEmptyText, "text at index %d", i)
		}
	}
	return nil
}

// batches splits texts into API-sized requests
func batches(texts []string, size int) [][]string {
	if len(texts) == 0 {
		return nil
	}
	if size <= 0 {
		size = len(texts)
	}
	return lo.Chunk(texts, size)
}
