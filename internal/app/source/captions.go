package source

import (
	"bufio"
	"regexp"
	"strings"

	"github.com/samber/lo"
	apperrors "transcript-rag/internal/app/errors"
	"transcript-rag/internal/app/model"
)

var (
	voiceTag      = regexp.MustCompile(`^<v(?:\.[^ >]*)?\s+([^>]+)>`)
	markupTag     = regexp.MustCompile(`<[^>]*>`)
	speakerPrefix = regexp.MustCompile(`^([\p{L}][\p{L}\p{N} .'_-]{0,39}):\s+(.+)$`)
)

// cue is one caption block
type cue struct {
	start string
	lines []string
}

// ParseVTT converts a WebVTT file into a transcript. Speakers come from
// <v Name> voice tags or a "Name: " prefix.
func ParseVTT(data []byte, meta model.TranscriptMetadata) (*model.Transcript, error) {
	text := normalizeNewlines(string(data))
	if !strings.HasPrefix(strings.TrimPrefix(text, "\ufeff"), "WEBVTT") {
		return nil, apperrors.Parse(nil, "missing WEBVTT header")
	}
	return fromCues(readCues(text), meta)
}

// ParseSRT converts a SubRip file into a transcript. Speakers come from a
// "Name: " prefix on the first caption line.
func ParseSRT(data []byte, meta model.TranscriptMetadata) (*model.Transcript, error) {
	return fromCues(readCues(normalizeNewlines(string(data))), meta)
}

// readCues collects blocks that contain a timing line; header, NOTE and
// STYLE blocks have none and are dropped
func readCues(text string) []cue {
	var (
		cues    []cue
		current *cue
	)

	sc := bufio.NewScanner(strings.NewReader(text))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		switch {
		case line == "":
			if current != nil {
				cues = append(cues, *current)
				current = nil
			}
		case strings.Contains(line, "-->"):
			start := strings.TrimSpace(strings.SplitN(line, "-->", 2)[0])
			current = &cue{start: start}
		case current != nil:
			current.lines = append(current.lines, line)
		}
	}
	if current != nil {
		cues = append(cues, *current)
	}
	return cues
}

func fromCues(cues []cue, meta model.TranscriptMetadata) (*model.Transcript, error) {
	if len(cues) == 0 {
		return nil, apperrors.Parse(nil, "no caption cues found")
	}

	t := &model.Transcript{Metadata: meta}
	for i, c := range cues {
		seconds, err := model.ParseTimestamp(c.start)
		if err != nil {
			return nil, apperrors.Parse(err, "cue %d", i+1)
		}
		speaker, text := splitSpeaker(strings.Join(c.lines, " "))
		if text == "" {
			continue
		}
		t.Utterances = append(t.Utterances, model.Utterance{
			Timestamp: model.FormatTimestamp(seconds),
			Speaker:   speaker,
			Text:      text,
		})
	}

	if len(t.Metadata.Speakers) == 0 {
		found := lo.Uniq(lo.FilterMap(t.Utterances, func(u model.Utterance, _ int) (string, bool) {
			return u.Speaker, u.Speaker != ""
		}))
		t.Metadata.Speakers = found
	}
	return t, nil
}

func splitSpeaker(line string) (string, string) {
	var speaker string
	if m := voiceTag.FindStringSubmatch(line); m != nil {
		speaker = strings.TrimSpace(m[1])
	}
	line = strings.Join(strings.Fields(markupTag.ReplaceAllString(line, "")), " ")

	if speaker == "" {
		if m := speakerPrefix.FindStringSubmatch(line); m != nil {
			return strings.TrimSpace(m[1]), strings.TrimSpace(m[2])
		}
	}
	return speaker, line
}

func normalizeNewlines(s string) string {
	return strings.ReplaceAll(s, "\r\n", "\n")
}
