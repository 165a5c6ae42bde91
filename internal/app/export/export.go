// Package export writes episodes and query results to spreadsheets.
package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/tealeg/xlsx"
	apperrors "transcript-rag/internal/app/errors"
	"transcript-rag/internal/app/model"
	"transcript-rag/internal/app/query"
)

// ContentType is the MIME type of the generated workbooks
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func EpisodesToExcel(episodes []model.Episode, outputFilePath string) error {
	file, err := episodesFile(episodes)
	if err != nil {
		return err
	}
	return save(file, outputFilePath)
}

// WriteEpisodes streams the episodes workbook to w
func WriteEpisodes(w io.Writer, episodes []model.Episode) error {
	file, err := episodesFile(episodes)
	if err != nil {
		return err
	}
	if err := file.Write(w); err != nil {
		return apperrors.Wrap(err, "failed to write workbook")
	}
	return nil
}

func episodesFile(episodes []model.Episode) (*xlsx.File, error) {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Episodes")
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to add sheet")
	}

	addRow(sheet, "ID", "Episode Title", "Speakers", "Source", "Summary", "Created At")
	for _, e := range episodes {
		created := ""
		if !e.CreatedAt.IsZero() {
			created = e.CreatedAt.Format(time.RFC3339)
		}
		addRow(sheet,
			fmt.Sprint(e.ID),
			e.EpisodeTitle,
			strings.Join(e.Speakers, ", "),
			e.Source,
			e.SummaryText(),
			created,
		)
	}

	return file, nil
}

func ResultsToExcel(results []query.Result, outputFilePath string) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Results")
	if err != nil {
		return apperrors.Wrap(err, "failed to add sheet")
	}

	addRow(sheet, "Rank", "Score", "Episode Title", "Start", "End", "Speakers", "Text", "Chunk ID", "Source")
	for i, r := range results {
		addRow(sheet,
			fmt.Sprint(i+1),
			fmt.Sprintf("%.4f", r.Score),
			r.EpisodeTitle,
			r.TimestampStart,
			r.TimestampEnd,
			strings.Join(r.SpeakersInChunk, ", "),
			r.Text,
			r.ChunkID,
			r.Source,
		)
	}

	return save(file, outputFilePath)
}

func addRow(sheet *xlsx.Sheet, values ...string) {
	row := sheet.AddRow()
	for _, v := range values {
		row.AddCell().Value = v
	}
}

func save(file *xlsx.File, path string) error {
	if err := file.Save(path); err != nil {
		return apperrors.Wrapf(err, "failed to save %s", path)
	}
	return nil
}
