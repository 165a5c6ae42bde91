package model

import (
	"strings"
	"time"
)

// Episode is the relational record summarizing one transcript
type Episode struct {
	ID           int64     `json:"id"`
	EpisodeTitle string    `json:"episode_title"`
	Speakers     []string  `json:"speakers"`
	Source       string    `json:"source"`
	Summary      *string   `json:"summary"`
	CreatedAt    time.Time `json:"created_at,omitempty"`
}

// HasSummary reports whether a non-blank summary is stored. Rows recorded
// while summarization was unavailable have none and are filled in later.
func (e Episode) HasSummary() bool {
	return e.Summary != nil && strings.TrimSpace(*e.Summary) != ""
}

// SummaryText returns the summary or "" when none is stored
func (e Episode) SummaryText() string {
	if e.Summary == nil {
		return ""
	}
	return *e.Summary
}

// EpisodeMatch is a full-text hit over episode metadata
type EpisodeMatch struct {
	Episode
	Rank float64 `json:"rank"`
}
