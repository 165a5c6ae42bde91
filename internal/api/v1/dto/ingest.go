package dto

import (
	"errors"

	"transcript-rag/internal/app/ingest"
)

// IngestRequest lists transcript references and RSS feeds to ingest in one
// batch. Feed items are appended after the explicit references.
type IngestRequest struct {
	URLs  []string `json:"urls" binding:"omitempty,max=500,dive,required"`
	Feeds []string `json:"feeds" binding:"omitempty,max=20,dive,required,url"`
}

// Validate requires at least one reference or feed
func (r *IngestRequest) Validate() error {
	if len(r.URLs) == 0 && len(r.Feeds) == 0 {
		return errors.New("urls or feeds is required")
	}
	return nil
}

// IngestResponse is the batch outcome
type IngestResponse = ingest.Result
