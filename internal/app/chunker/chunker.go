package chunker

import (
	"sort"
	"strings"

	"transcript-rag/internal/app/model"
)

const (
	DefaultChunkSize    = 600
	DefaultChunkOverlap = 60

	// utteranceSeparator is a paragraph break, which the splitter always
	// treats as a sentence boundary
	utteranceSeparator = "\n\n"
)

// Options configures window size and overlap, both in runes
type Options struct {
	ChunkSize    int
	ChunkOverlap int
}

// DefaultOptions returns the standard 600/60 windowing
func DefaultOptions() Options {
	return Options{ChunkSize: DefaultChunkSize, ChunkOverlap: DefaultChunkOverlap}
}

// Chunker splits transcripts into overlapping windows and records which
// utterances each window spans
type Chunker struct {
	splitter *Splitter
}

// New creates a chunker
func New(opts Options) *Chunker {
	return &Chunker{splitter: NewSplitter(opts.ChunkSize, opts.ChunkOverlap)}
}

// entry is the byte range one utterance occupies in the joined text
type entry struct {
	index int
	start int
	end   int
}

// Chunk splits t into windows. Only Ordinal, Text and SpannedIndices are
// set; provenance is filled in by the enricher.
func (c *Chunker) Chunk(t *model.Transcript) []model.Chunk {
	if t == nil {
		return nil
	}
	if t.IsSimple() {
		return c.chunkText(t.Text)
	}

	text, entries := join(t.Utterances)
	if len(entries) == 0 {
		return nil
	}

	windows := c.splitter.Split(text)
	chunks := make([]model.Chunk, 0, len(windows))
	for _, w := range windows {
		chunks = append(chunks, model.Chunk{
			Ordinal:        len(chunks),
			Text:           text[w.Start:w.End],
			SpannedIndices: spanned(entries, w),
		})
	}
	return chunks
}

func (c *Chunker) chunkText(text string) []model.Chunk {
	windows := c.splitter.Split(text)
	chunks := make([]model.Chunk, 0, len(windows))
	for _, w := range windows {
		chunks = append(chunks, model.Chunk{
			Ordinal: len(chunks),
			Text:    text[w.Start:w.End],
		})
	}
	return chunks
}

// join concatenates the non-empty utterances, remembering where each one
// landed so windows can be mapped back to original positions
func join(utterances []model.Utterance) (string, []entry) {
	var b strings.Builder
	entries := make([]entry, 0, len(utterances))

	for i, u := range utterances {
		text := strings.TrimSpace(u.Text)
		if text == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteString(utteranceSeparator)
		}
		start := b.Len()
		b.WriteString(text)
		entries = append(entries, entry{index: i, start: start, end: b.Len()})
	}

	return b.String(), entries
}

// spanned returns the original indices of entries intersecting w, ascending
func spanned(entries []entry, w Span) []int {
	first := sort.Search(len(entries), func(i int) bool {
		return entries[i].end > w.Start
	})

	var indices []int
	for _, e := range entries[first:] {
		if e.start >= w.End {
			break
		}
		indices = append(indices, e.index)
	}
	return indices
}
