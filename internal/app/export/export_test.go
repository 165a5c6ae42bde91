package export

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx"
	"transcript-rag/internal/app/model"
	"transcript-rag/internal/app/query"
)

func TestEpisodesToExcel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "episodes.xlsx")
	episodes := []model.Episode{
		{ID: 1, EpisodeTitle: "Databases", Speakers: []string{"Host", "Guest"}, Source: "https://example.com/db",
			Summary: lo.ToPtr("Indexes."), CreatedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)},
		{ID: 2, EpisodeTitle: "Garden"},
	}

	require.NoError(t, EpisodesToExcel(episodes, path))

	file, err := xlsx.OpenFile(path)
	require.NoError(t, err)
	sheet := file.Sheet["Episodes"]
	require.NotNil(t, sheet)
	require.Len(t, sheet.Rows, 3)
	assert.Equal(t, "Episode Title", sheet.Rows[0].Cells[1].Value)
	assert.Equal(t, "Host, Guest", sheet.Rows[1].Cells[2].Value)
	assert.Equal(t, "2024-05-01T12:00:00Z", sheet.Rows[1].Cells[5].Value)
	assert.Equal(t, "Garden", sheet.Rows[2].Cells[1].Value)
}

func TestResultsToExcel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.xlsx")
	results := []query.Result{{
		Text: "Indexes make lookups fast.", TimestampStart: "01:00", TimestampEnd: "05:00",
		SpeakersInChunk: []string{"Guest"}, EpisodeTitle: "Databases", ChunkID: "DB_chunk_1", Score: 0.91234,
	}}

	require.NoError(t, ResultsToExcel(results, path))

	file, err := xlsx.OpenFile(path)
	require.NoError(t, err)
	sheet := file.Sheet["Results"]
	require.NotNil(t, sheet)
	require.Len(t, sheet.Rows, 2)
	assert.Equal(t, "0.9123", sheet.Rows[1].Cells[1].Value)
	assert.Equal(t, "Indexes make lookups fast.", sheet.Rows[1].Cells[6].Value)
}

func TestSaveToMissingDirectoryFails(t *testing.T) {
	err := EpisodesToExcel(nil, filepath.Join(t.TempDir(), "missing", "x.xlsx"))
	assert.Error(t, err)
}

func TestWriteEpisodes(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteEpisodes(&buf, []model.Episode{{ID: 7, EpisodeTitle: "Streams"}}))

	file, err := xlsx.OpenBinary(buf.Bytes())
	require.NoError(t, err)
	sheet := file.Sheet["Episodes"]
	require.NotNil(t, sheet)
	require.Len(t, sheet.Rows, 2)
	assert.Equal(t, "7", sheet.Rows[1].Cells[0].Value)
	assert.Equal(t, "Streams", sheet.Rows[1].Cells[1].Value)
}
