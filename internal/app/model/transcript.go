package model

import "strings"

// Utterance is one timestamped, speaker-attributed unit of speech
type Utterance struct {
	Timestamp string `json:"timestamp"`
	Speaker   string `json:"speaker"`
	Text      string `json:"text"`
}

// TranscriptMetadata describes the episode a transcript belongs to
type TranscriptMetadata struct {
	EpisodeTitle string   `json:"episode_title"`
	Speakers     []string `json:"speakers"`
	Source       string   `json:"source"`
	Summary      *string  `json:"summary,omitempty"`
}

// Transcript is a normalized transcript. Utterances is empty for the
// simple variant, whose content lives in Text.
type Transcript struct {
	Metadata   TranscriptMetadata `json:"metadata"`
	Utterances []Utterance        `json:"utterances,omitempty"`
	Text       string             `json:"text,omitempty"`
}

// IsSimple reports whether the transcript has no per-utterance structure
func (t *Transcript) IsSimple() bool {
	return len(t.Utterances) == 0
}

// FullText concatenates all non-empty utterance texts, or returns the blob
// for simple transcripts
func (t *Transcript) FullText() string {
	if t.IsSimple() {
		return strings.TrimSpace(t.Text)
	}

	parts := make([]string, 0, len(t.Utterances))
	for _, u := range t.Utterances {
		text := strings.TrimSpace(u.Text)
		if text == "" {
			continue
		}
		if u.Speaker != "" {
			text = u.Speaker + ": " + text
		}
		parts = append(parts, text)
	}
	return strings.Join(parts, "\n")
}
