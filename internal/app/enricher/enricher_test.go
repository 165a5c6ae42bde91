package enricher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"transcript-rag/internal/app/chunker"
	"transcript-rag/internal/app/model"
)

func greetings() *model.Transcript {
	return &model.Transcript{
		Metadata: model.TranscriptMetadata{
			EpisodeTitle: "Greetings",
			Speakers:     []string{"A", "B"},
			Source:       "https://example.com/greetings.json",
		},
		Utterances: []model.Utterance{
			{Timestamp: "00:00", Speaker: "A", Text: "Hello there."},
			{Timestamp: "00:05", Speaker: "B", Text: "Hi Alice, how are you?"},
			{Timestamp: "00:10", Speaker: "A", Text: "I am fine thanks."},
		},
	}
}

func TestEnrichExampleScenario(t *testing.T) {
	tr := greetings()
	chunks := EnrichAll(tr, chunker.New(chunker.DefaultOptions()).Chunk(tr))

	require.Len(t, chunks, 1)
	c := chunks[0]
	assert.Equal(t, []int{0, 1, 2}, c.SpannedIndices)
	assert.Equal(t, []string{"A", "B"}, c.SpeakersInChunk)
	assert.Equal(t, "00:00", c.TimestampStart)
	assert.Equal(t, "00:10", c.TimestampEnd)
	assert.Equal(t, 3, c.EntriesCount)
	assert.Equal(t, "Greetings", c.EpisodeTitle)
	assert.Equal(t, "https://example.com/greetings.json", c.Source)
	assert.Equal(t, []string{"A", "B"}, c.Speakers)
	assert.Equal(t, "Greetings_chunk_0_00:00-00:10", c.ChunkID)
}

func TestEnrichTimestampsFollowPosition(t *testing.T) {
	tr := greetings()
	tr.Utterances[2].Timestamp = "00:01"

	c := Enrich(tr, model.Chunk{Ordinal: 4, SpannedIndices: []int{1, 2}})
	assert.Equal(t, "00:05", c.TimestampStart)
	assert.Equal(t, "00:01", c.TimestampEnd)
}

func TestEnrichSpeakersDeduplicated(t *testing.T) {
	tr := &model.Transcript{Utterances: []model.Utterance{
		{Timestamp: "00:00", Speaker: "Bob", Text: "one"},
		{Timestamp: "00:01", Speaker: "", Text: "two"},
		{Timestamp: "00:02", Speaker: "Alice", Text: "three"},
		{Timestamp: "00:03", Speaker: "Bob", Text: "four"},
		{Timestamp: "00:04", Speaker: " Alice ", Text: "five"},
	}}

	c := Enrich(tr, model.Chunk{SpannedIndices: []int{0, 1, 2, 3, 4}})
	assert.Equal(t, []string{"Bob", "Alice"}, c.SpeakersInChunk)
	assert.Equal(t, 5, c.EntriesCount)
}

func TestEnrichNormalizesUnparsedSpeakers(t *testing.T) {
	tr := &model.Transcript{
		Metadata: model.TranscriptMetadata{EpisodeTitle: "Upload", Speakers: []string{"Host"}},
		Utterances: []model.Utterance{
			{Timestamp: "00:00", Speaker: "\tHost\n", Text: "welcome"},
			{Timestamp: "00:02", Speaker: "   ", Text: "(applause)"},
			{Timestamp: "00:04", Speaker: "Host", Text: "let's begin"},
		},
	}

	c := Enrich(tr, model.Chunk{SpannedIndices: []int{0, 1, 2}})
	assert.Equal(t, []string{"Host"}, c.SpeakersInChunk)
	assert.Equal(t, 3, c.EntriesCount)
}

func TestEnrichSkipsOutOfRangeIndices(t *testing.T) {
	tr := greetings()

	c := Enrich(tr, model.Chunk{Ordinal: 1, SpannedIndices: []int{-1, 1, 7}})
	assert.Equal(t, 1, c.EntriesCount)
	assert.Equal(t, "00:05", c.TimestampStart)
	assert.Equal(t, "00:05", c.TimestampEnd)
	assert.Equal(t, []string{"B"}, c.SpeakersInChunk)

	none := Enrich(tr, model.Chunk{Ordinal: 2, SpannedIndices: []int{9}})
	assert.Equal(t, 0, none.EntriesCount)
	assert.Empty(t, none.TimestampStart)
	assert.Empty(t, none.TimestampEnd)
	assert.Empty(t, none.SpeakersInChunk)
	assert.Equal(t, "Greetings_chunk_2_-", none.ChunkID)
}

func TestEnrichSimpleChunk(t *testing.T) {
	tr := &model.Transcript{
		Metadata: model.TranscriptMetadata{EpisodeTitle: "Blob", Source: "s3://bucket/blob.json"},
		Text:     "Just text.",
	}

	c := Enrich(tr, model.Chunk{Text: "Just text."})
	assert.NotNil(t, c.SpeakersInChunk)
	assert.Empty(t, c.SpeakersInChunk)
	assert.Empty(t, c.TimestampStart)
	assert.Equal(t, 0, c.EntriesCount)
	assert.Equal(t, "Blob", c.EpisodeTitle)
}

func TestEnrichIsStable(t *testing.T) {
	tr := greetings()
	chunk := model.Chunk{Ordinal: 3, SpannedIndices: []int{0, 2}}

	first := Enrich(tr, chunk)
	second := Enrich(tr, chunk)
	assert.Equal(t, first.ChunkID, second.ChunkID)
	assert.Equal(t, first, second)
	assert.Equal(t, ChunkID("Greetings", 3, "00:00", "00:10"), first.ChunkID)
}

func TestEnrichDoesNotAliasRoster(t *testing.T) {
	tr := greetings()
	c := Enrich(tr, model.Chunk{SpannedIndices: []int{0}})

	c.Speakers[0] = "changed"
	assert.Equal(t, "A", tr.Metadata.Speakers[0])
}
