// Package summarizer produces episode summaries from full transcript text.
package summarizer

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/sashabaranov/go-openai"
	apperrors "transcript-rag/internal/app/errors"
)

// Mode selects summary length
type Mode string

const (
	ModeShort Mode = "short"
	ModeLong  Mode = "long"
)

const defaultMaxInputChars = 48000

// ParseMode validates a configured mode, defaulting to short
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeShort:
		return ModeShort, nil
	case ModeLong:
		return ModeLong, nil
	}
	return "", apperrors.InvalidField("summarizer mode", fmt.Sprintf("%q is not short or long", s))
}

// Summarizer condenses a transcript into a summary
type Summarizer interface {
	Summarize(ctx context.Context, fullText string, mode Mode) (string, error)
}

// OpenAIConfig configures the chat-completion summarizer
type OpenAIConfig struct {
	APIKey        string
	BaseURL       string
	Model         string
	MaxInputChars int
}

// OpenAISummarizer implements Summarizer with chat completions
type OpenAISummarizer struct {
	client        *openai.Client
	model         string
	maxInputChars int
}

// NewOpenAISummarizer creates a summarizer
func NewOpenAISummarizer(cfg OpenAIConfig) *OpenAISummarizer {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	if cfg.Model == "" {
		cfg.Model = openai.GPT4oMini
	}
	if cfg.MaxInputChars <= 0 {
		cfg.MaxInputChars = defaultMaxInputChars
	}

	return &OpenAISummarizer{
		client:        openai.NewClientWithConfig(clientConfig),
		model:         cfg.Model,
		maxInputChars: cfg.MaxInputChars,
	}
}

func systemPrompt(mode Mode) string {
	if mode == ModeLong {
		return "You summarize podcast episode transcripts. Write a detailed summary of several paragraphs " +
			"covering the main topics in order, the position each speaker takes, and any conclusions. " +
			"Use plain prose without headings."
	}
	return "You summarize podcast episode transcripts. Write two or three sentences naming the main " +
		"topics and who discussed them. Use plain prose."
}

// Summarize returns the model's summary of fullText
func (s *OpenAISummarizer) Summarize(ctx context.Context, fullText string, mode Mode) (string, error) {
	text := strings.TrimSpace(fullText)
	if text == "" {
		return "", apperrors.Summarization(apperrors.ErrEmptyText, "nothing to summarize")
	}
	text = truncateRunes(text, s.maxInputChars)

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt(mode)},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
	})
	if err != nil {
		return "", apperrors.Summarization(err, "chat completion failed")
	}
	if len(resp.Choices) == 0 {
		return "", apperrors.Summarization(nil, "chat completion returned no choices")
	}

	summary := strings.TrimSpace(resp.Choices[0].Message.Content)
	if summary == "" {
		return "", apperrors.Summarization(nil, "chat completion returned an empty summary")
	}
	return summary, nil
}

func truncateRunes(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	i := 0
	for pos := range s {
		if i == limit {
			return s[:pos]
		}
		i++
	}
	return s
}
