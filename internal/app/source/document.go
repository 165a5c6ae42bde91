package source

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/go-playground/validator/v10"
	apperrors "transcript-rag/internal/app/errors"
	"transcript-rag/internal/app/model"
)

var validate = validator.New()

type documentMetadata struct {
	EpisodeTitle  string   `json:"episode_title" validate:"required"`
	Speakers      []string `json:"speakers"`
	TotalSpeakers []string `json:"total_speakers"`
	Source        string   `json:"source" validate:"required"`
	Summary       *string  `json:"summary"`
}

type documentUtterance struct {
	Timestamp string `json:"timestamp"`
	Speaker   string `json:"speaker"`
	Text      string `json:"text"`
}

type document struct {
	Metadata   *documentMetadata `json:"metadata" validate:"required"`
	Transcript json.RawMessage   `json:"transcript" validate:"required"`
}

// ParseDocument decodes a transcript JSON document. "transcript" may be an
// utterance array or an object carrying a single "text" blob, and the roster
// may be named "speakers" or "total_speakers". Every failure is a ParseError.
func ParseDocument(data []byte) (*model.Transcript, error) {
	var doc document
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&doc); err != nil {
		return nil, apperrors.Parse(err, "malformed transcript document")
	}
	if err := validate.Struct(&doc); err != nil {
		return nil, apperrors.Parse(err, "invalid transcript document")
	}

	speakers := doc.Metadata.Speakers
	if len(speakers) == 0 {
		speakers = doc.Metadata.TotalSpeakers
	}

	t := &model.Transcript{
		Metadata: model.TranscriptMetadata{
			EpisodeTitle: strings.TrimSpace(doc.Metadata.EpisodeTitle),
			Speakers:     speakers,
			Source:       strings.TrimSpace(doc.Metadata.Source),
			Summary:      doc.Metadata.Summary,
		},
	}

	raw := bytes.TrimSpace(doc.Transcript)
	switch {
	case len(raw) > 0 && raw[0] == '[':
		var utterances []documentUtterance
		if err := json.Unmarshal(raw, &utterances); err != nil {
			return nil, apperrors.Parse(err, "malformed utterance list")
		}
		t.Utterances = make([]model.Utterance, 0, len(utterances))
		for i, u := range utterances {
			if strings.TrimSpace(u.Timestamp) == "" && strings.TrimSpace(u.Text) != "" {
				return nil, apperrors.Parse(nil, "utterance %d has no timestamp", i)
			}
			t.Utterances = append(t.Utterances, model.Utterance{
				Timestamp: strings.TrimSpace(u.Timestamp),
				Speaker:   strings.TrimSpace(u.Speaker),
				Text:      u.Text,
			})
		}
	case len(raw) > 0 && raw[0] == '{':
		var blob struct {
			Text *string `json:"text"`
		}
		if err := json.Unmarshal(raw, &blob); err != nil {
			return nil, apperrors.Parse(err, "malformed transcript text")
		}
		if blob.Text == nil {
			return nil, apperrors.Parse(nil, "transcript object has no text field")
		}
		t.Text = *blob.Text
	default:
		return nil, apperrors.Parse(nil, "transcript must be an array or an object")
	}

	return t, nil
}
