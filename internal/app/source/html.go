package source

import (
	"bytes"
	"context"
	"net/url"
	"path"
	"strings"

	"github.com/PuerkitoBio/goquery"
	apperrors "transcript-rag/internal/app/errors"
	"transcript-rag/internal/app/model"
)

// episodePage is what an episode web page tells us about its transcript
type episodePage struct {
	title         string
	transcriptURL string
}

// fromPage resolves the transcript linked from an HTML episode page. The
// page title and URL become the episode metadata unless the linked document
// is JSON carrying its own.
func (s *HTTPSource) fromPage(ctx context.Context, pageURL string, body []byte) (*model.Transcript, error) {
	page, err := parsePage(pageURL, body)
	if err != nil {
		return nil, err
	}

	data, contentType, err := s.get(ctx, page.transcriptURL)
	if err != nil {
		return nil, err
	}
	f := detectFormat(page.transcriptURL, contentType, data)
	if f == formatHTML {
		return nil, apperrors.Parse(nil, "transcript link %s on %s is another web page", page.transcriptURL, pageURL)
	}

	hint := metadataFor(page.transcriptURL)
	if page.title != "" {
		hint.EpisodeTitle = page.title
	}
	hint.Source = pageURL
	return decode(data, f, hint)
}

func parsePage(pageURL string, body []byte) (*episodePage, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, apperrors.Parse(err, "parsing page %s", pageURL)
	}

	title, _ := doc.Find(`meta[property="og:title"]`).First().Attr("content")
	title = strings.TrimSpace(title)
	if title == "" {
		title = strings.TrimSpace(doc.Find("title").First().Text())
	}

	href, ok := findTranscriptLink(doc)
	if !ok {
		return nil, apperrors.Parse(nil, "no transcript link found on %s", pageURL)
	}

	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, apperrors.Parse(err, "invalid page url %s", pageURL)
	}
	link, err := base.Parse(href)
	if err != nil {
		return nil, apperrors.Parse(err, "invalid transcript link %q", href)
	}

	return &episodePage{title: title, transcriptURL: link.String()}, nil
}

// findTranscriptLink ranks candidates: anchors whose text mentions a
// transcript and whose href is a transcript file, then caption tracks and
// transcript file hrefs, then any anchor mentioning a transcript
func findTranscriptLink(doc *goquery.Document) (string, bool) {
	var high, medium, low []string

	doc.Find(`track[src]`).Each(func(_ int, sel *goquery.Selection) {
		kind, _ := sel.Attr("kind")
		if kind == "" || kind == "captions" || kind == "subtitles" {
			src, _ := sel.Attr("src")
			if src = strings.TrimSpace(src); src != "" {
				medium = append(medium, src)
			}
		}
	})

	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href := strings.TrimSpace(sel.AttrOr("href", ""))
		if href == "" || strings.HasPrefix(href, "#") {
			return
		}
		fileLike := isTranscriptFile(href)
		mentions := strings.Contains(strings.ToLower(sel.Text()), "transcript")

		switch {
		case fileLike && mentions:
			high = append(high, href)
		case fileLike:
			medium = append(medium, href)
		case mentions:
			low = append(low, href)
		}
	})

	for _, group := range [][]string{high, medium, low} {
		if len(group) > 0 {
			return group[0], true
		}
	}
	return "", false
}

func isTranscriptFile(href string) bool {
	p := href
	if u, err := url.Parse(href); err == nil {
		p = u.Path
	}
	switch strings.ToLower(path.Ext(p)) {
	case ".json", ".vtt", ".srt", ".txt":
		return true
	}
	return false
}
