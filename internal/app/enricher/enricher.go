// Package enricher derives chunk provenance from the utterances a chunk spans.
package enricher

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
	"transcript-rag/internal/app/model"
)

// ChunkID builds the stable identifier of a chunk
func ChunkID(episodeTitle string, ordinal int, start, end string) string {
	return fmt.Sprintf("%s_chunk_%d_%s-%s", episodeTitle, ordinal, start, end)
}

// Enrich returns c with episode metadata, timestamps, speakers and entry
// count filled in from t. Indices outside t's utterances are skipped.
// Speaker names are trimmed and blank names dropped, so callers may pass
// transcripts that never went through a source parser.
func Enrich(t *model.Transcript, c model.Chunk) model.Chunk {
	if t == nil {
		c.ChunkID = ChunkID("", c.Ordinal, "", "")
		c.SpeakersInChunk = []string{}
		return c
	}

	valid := lo.Filter(c.SpannedIndices, func(idx int, _ int) bool {
		return idx >= 0 && idx < len(t.Utterances)
	})

	c.EpisodeTitle = t.Metadata.EpisodeTitle
	c.Source = t.Metadata.Source
	c.Speakers = append([]string{}, t.Metadata.Speakers...)
	c.EntriesCount = len(valid)
	c.TimestampStart = ""
	c.TimestampEnd = ""

	if len(valid) > 0 {
		c.TimestampStart = t.Utterances[lo.Min(valid)].Timestamp
		c.TimestampEnd = t.Utterances[lo.Max(valid)].Timestamp
	}

	speakers := make([]string, 0, len(valid))
	for _, idx := range valid {
		if name := strings.TrimSpace(t.Utterances[idx].Speaker); name != "" {
			speakers = append(speakers, name)
		}
	}
	c.SpeakersInChunk = lo.Uniq(speakers)

	c.ChunkID = ChunkID(c.EpisodeTitle, c.Ordinal, c.TimestampStart, c.TimestampEnd)
	return c
}

// EnrichAll enriches every chunk of one transcript
func EnrichAll(t *model.Transcript, chunks []model.Chunk) []model.Chunk {
	out := make([]model.Chunk, len(chunks))
	for i, c := range chunks {
		out[i] = Enrich(t, c)
	}
	return out
}
