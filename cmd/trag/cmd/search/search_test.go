package search

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"transcript-rag/internal/app/query"
)

func TestPrintResults(t *testing.T) {
	var buf bytes.Buffer
	printResults(&buf, []query.Result{{
		Text:            "Indexes make\n lookups   fast.",
		TimestampStart:  "00:06",
		TimestampEnd:    "00:12",
		SpeakersInChunk: []string{"Guest", "Host"},
		EpisodeTitle:    "Databases",
		Score:           0.91,
	}})

	out := buf.String()
	assert.Contains(t, out, "1. Databases [00:06-00:12] Guest, Host (score 0.910)")
	assert.Contains(t, out, "   Indexes make lookups fast.")

	buf.Reset()
	printResults(&buf, nil)
	assert.Equal(t, "No results\n", buf.String())
}

func TestPrintSummaries(t *testing.T) {
	var buf bytes.Buffer
	printSummaries(&buf, []query.EpisodeSummary{{
		EpisodeTitle:  "Databases",
		Speakers:      []string{"Host"},
		Source:        "test",
		MatchedChunks: 3,
	}})
	assert.Equal(t, "Databases  chunks=3  speakers=Host  source=test\n", buf.String())
}

func TestSnippet(t *testing.T) {
	assert.Equal(t, "short", snippet("short", 10))
	long := strings.Repeat("é", 20)
	assert.Equal(t, strings.Repeat("é", 5)+"...", snippet(long, 5))
}
