package dto

import (
	"transcript-rag/internal/app/model"
	"transcript-rag/internal/app/query"
)

// SearchQuery is GET /search
type SearchQuery struct {
	Q string `form:"q" binding:"required"`
	K int    `form:"k" binding:"omitempty,min=1,max=100"`
}

// SpeakerSearchQuery is GET /search/speaker. Q is optional; the speaker
// name is embedded when it is empty.
type SpeakerSearchQuery struct {
	Speaker string `form:"speaker" binding:"required"`
	Q       string `form:"q"`
	K       int    `form:"k" binding:"omitempty,min=1,max=100"`
}

// TimeRangeQuery is GET /search/time
type TimeRangeQuery struct {
	Start   string `form:"start" binding:"required"`
	End     string `form:"end" binding:"required"`
	Episode string `form:"episode"`
	K       int    `form:"k" binding:"omitempty,min=1,max=100"`
}

// EpisodesQuery is GET /episodes
type EpisodesQuery struct {
	Episode string `form:"episode"`
}

// EpisodeSearchQuery is GET /episodes/search
type EpisodeSearchQuery struct {
	Q     string `form:"q" binding:"required"`
	Limit int    `form:"limit" binding:"omitempty,min=1,max=1000"`
}

// SearchResponse wraps chunk results
type SearchResponse struct {
	Results []query.Result `json:"results"`
	Count   int            `json:"count"`
}

// EpisodesResponse wraps per-episode aggregates
type EpisodesResponse struct {
	Episodes []query.EpisodeSummary `json:"episodes"`
	Count    int                    `json:"count"`
}

// EpisodeMatchesResponse wraps full-text episode matches
type EpisodeMatchesResponse struct {
	Episodes []model.EpisodeMatch `json:"episodes"`
	Count    int                  `json:"count"`
}

// NewSearchResponse never returns a null results array
func NewSearchResponse(results []query.Result) SearchResponse {
	if results == nil {
		results = []query.Result{}
	}
	return SearchResponse{Results: results, Count: len(results)}
}

func NewEpisodesResponse(episodes []query.EpisodeSummary) EpisodesResponse {
	if episodes == nil {
		episodes = []query.EpisodeSummary{}
	}
	return EpisodesResponse{Episodes: episodes, Count: len(episodes)}
}

func NewEpisodeMatchesResponse(matches []model.EpisodeMatch) EpisodeMatchesResponse {
	if matches == nil {
		matches = []model.EpisodeMatch{}
	}
	return EpisodeMatchesResponse{Episodes: matches, Count: len(matches)}
}
