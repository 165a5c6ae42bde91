package model

// Chunk is a bounded text window over one transcript together with the
// provenance derived from the utterances it spans
type Chunk struct {
	Ordinal        int    `json:"chunk_index"`
	Text           string `json:"text"`
	SpannedIndices []int  `json:"spanned_indices,omitempty"`

	ChunkID         string   `json:"chunk_id"`
	EpisodeTitle    string   `json:"episode_title"`
	Source          string   `json:"source"`
	Speakers        []string `json:"speakers"`
	SpeakersInChunk []string `json:"speakers_in_chunk"`
	TimestampStart  string   `json:"timestamp_start"`
	TimestampEnd    string   `json:"timestamp_end"`
	EntriesCount    int      `json:"entries_count"`
}

// Metadata keys carried alongside every chunk vector
const (
	MetaChunkID         = "chunk_id"
	MetaChunkIndex      = "chunk_index"
	MetaText            = "text"
	MetaEpisodeTitle    = "episode_title"
	MetaSource          = "source"
	MetaSpeakers        = "speakers"
	MetaSpeakersInChunk = "speakers_in_chunk"
	MetaTimestampStart  = "timestamp_start"
	MetaTimestampEnd    = "timestamp_end"
	MetaStartSeconds    = "start_seconds"
	MetaEndSeconds      = "end_seconds"
	MetaEntriesCount    = "entries_count"
)

// Metadata renders the chunk as the metadata map persisted with its vector.
// Start/end seconds are present only when the timestamps parse.
func (c Chunk) Metadata() map[string]interface{} {
	speakers := c.Speakers
	if speakers == nil {
		speakers = []string{}
	}
	inChunk := c.SpeakersInChunk
	if inChunk == nil {
		inChunk = []string{}
	}

	meta := map[string]interface{}{
		MetaChunkID:         c.ChunkID,
		MetaChunkIndex:      c.Ordinal,
		MetaText:            c.Text,
		MetaEpisodeTitle:    c.EpisodeTitle,
		MetaSource:          c.Source,
		MetaSpeakers:        speakers,
		MetaSpeakersInChunk: inChunk,
		MetaTimestampStart:  c.TimestampStart,
		MetaTimestampEnd:    c.TimestampEnd,
		MetaEntriesCount:    c.EntriesCount,
	}
	if s, err := ParseTimestamp(c.TimestampStart); err == nil {
		meta[MetaStartSeconds] = s
	}
	if s, err := ParseTimestamp(c.TimestampEnd); err == nil {
		meta[MetaEndSeconds] = s
	}
	return meta
}
