package chunker

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Span is a half-open byte range [Start, End) into the split text
type Span struct {
	Start int
	End   int
}

// Splitter cuts text into overlapping windows that respect sentence
// boundaries. Sizes are measured in runes.
type Splitter struct {
	size    int
	overlap int
}

// NewSplitter creates a splitter producing windows of at most size runes
// with up to overlap runes carried into the following window
func NewSplitter(size, overlap int) *Splitter {
	if size <= 0 {
		size = DefaultChunkSize
	}
	if overlap < 0 || overlap >= size {
		overlap = 0
	}
	return &Splitter{size: size, overlap: overlap}
}

// document caches rune offsets so window lengths are O(1)
type document struct {
	text   string
	runeAt []int // runeAt[b] = number of runes in text[:b]
}

func newDocument(text string) *document {
	runeAt := make([]int, len(text)+1)
	count := 0
	for i := 0; i < len(text); {
		_, w := utf8.DecodeRuneInString(text[i:])
		for k := 0; k < w; k++ {
			runeAt[i+k] = count
		}
		count++
		i += w
	}
	runeAt[len(text)] = count
	return &document{text: text, runeAt: runeAt}
}

func (d *document) runes(start, end int) int {
	return d.runeAt[end] - d.runeAt[start]
}

// Split returns the windows of text in order
func (s *Splitter) Split(text string) []Span {
	doc := newDocument(text)

	var pieces []Span
	for _, sentence := range segment(text) {
		if doc.runes(sentence.Start, sentence.End) > s.size {
			pieces = append(pieces, s.cut(doc, sentence)...)
			continue
		}
		pieces = append(pieces, sentence)
	}

	return s.merge(doc, pieces)
}

// merge greedily packs pieces into windows, seeding each new window with the
// trailing pieces of the previous one that fit in the overlap budget
func (s *Splitter) merge(doc *document, pieces []Span) []Span {
	var windows []Span

	i := 0
	for i < len(pieces) {
		end := i + 1
		for end < len(pieces) && doc.runes(pieces[i].Start, pieces[end].End) <= s.size {
			end++
		}
		windows = append(windows, Span{Start: pieces[i].Start, End: pieces[end-1].End})
		if end == len(pieces) {
			break
		}

		next := end
		for k := end - 1; k > i; k-- {
			if doc.runes(pieces[k].Start, pieces[end-1].End) > s.overlap ||
				doc.runes(pieces[k].Start, pieces[end].End) > s.size {
				break
			}
			next = k
		}
		i = next
	}

	return windows
}

// cut splits a sentence longer than the window size, preferring the last
// whitespace inside each window and falling back to a hard cut
func (s *Splitter) cut(doc *document, sentence Span) []Span {
	text := doc.text
	var out []Span

	start := sentence.Start
	for doc.runes(start, sentence.End) > s.size {
		limit := start
		for k := 0; k < s.size; k++ {
			_, w := utf8.DecodeRuneInString(text[limit:])
			limit += w
		}

		cut := limit
		if ws := strings.LastIndexFunc(text[start:limit], unicode.IsSpace); ws > 0 {
			cut = start + ws
		}
		out = appendTrimmed(out, text, start, cut)

		start = cut
		for start < sentence.End {
			r, w := utf8.DecodeRuneInString(text[start:])
			if !unicode.IsSpace(r) {
				break
			}
			start += w
		}
	}

	return appendTrimmed(out, text, start, sentence.End)
}

// segment splits text into trimmed sentence spans. Sentences end after
// terminal punctuation followed by whitespace, after CJK terminals, and at
// blank lines.
func segment(text string) []Span {
	var spans []Span

	start := 0
	for i := 0; i < len(text); {
		r, w := utf8.DecodeRuneInString(text[i:])

		if r == '\n' && i+1 < len(text) && text[i+1] == '\n' {
			spans = appendTrimmed(spans, text, start, i)
			i += 2
			start = i
			continue
		}

		if isTerminal(r) {
			j := i + w
			for j < len(text) {
				r2, w2 := utf8.DecodeRuneInString(text[j:])
				if !isTerminal(r2) && !isCloser(r2) {
					break
				}
				j += w2
			}

			boundary := j >= len(text) || isCJKTerminal(r)
			if !boundary {
				next, _ := utf8.DecodeRuneInString(text[j:])
				boundary = unicode.IsSpace(next)
			}
			if boundary {
				spans = appendTrimmed(spans, text, start, j)
				start = j
			}
			i = j
			continue
		}

		i += w
	}

	return appendTrimmed(spans, text, start, len(text))
}

func appendTrimmed(spans []Span, text string, start, end int) []Span {
	for start < end {
		r, w := utf8.DecodeRuneInString(text[start:end])
		if !unicode.IsSpace(r) {
			break
		}
		start += w
	}
	for end > start {
		r, w := utf8.DecodeLastRuneInString(text[start:end])
		if !unicode.IsSpace(r) {
			break
		}
		end -= w
	}
	if start < end {
		spans = append(spans, Span{Start: start, End: end})
	}
	return spans
}

func isTerminal(r rune) bool {
	switch r {
	case '.', '!', '?', '…':
		return true
	}
	return isCJKTerminal(r)
}

func isCJKTerminal(r rune) bool {
	switch r {
	case '。', '！', '？':
		return true
	}
	return false
}

func isCloser(r rune) bool {
	switch r {
	case '"', '\'', ')', ']', '”', '’', '」', '』':
		return true
	}
	return false
}
