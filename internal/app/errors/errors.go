package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// Kind classifies where in the pipeline an error originated
type Kind string

const (
	KindUnknown       Kind = ""
	KindFetch         Kind = "fetch"
	KindParse         Kind = "parse"
	KindEmbedding     Kind = "embedding"
	KindStore         Kind = "store"
	KindSummarization Kind = "summarization"
)

// Sentinels for errors.Is checks against a whole kind
var (
	ErrFetch         = &Error{kind: KindFetch, message: "fetch failed"}
	ErrParse         = &Error{kind: KindParse, message: "parse failed"}
	ErrEmbedding     = &Error{kind: KindEmbedding, message: "embedding failed"}
	ErrStore         = &Error{kind: KindStore, message: "store operation failed"}
	ErrSummarization = &Error{kind: KindSummarization, message: "summarization failed"}
)

// Common error types
var (
	// Configuration errors
	ErrMissingAPIKey = New("API key is required")
	ErrInvalidConfig = New("invalid configuration")

	// Provider errors
	ErrProviderNotFound = New("provider not found")

	// Store errors
	ErrCollectionNotFound = New("collection not found")
	ErrEpisodeNotFound    = New("episode not found")

	// Input errors
	ErrEmptyText = New("empty text provided")
)

// Error represents a standardized error
type Error struct {
	kind    Kind
	message string
	cause   error
}

// New creates a new error
func New(message string) *Error {
	return &Error{message: message}
}

// Newf creates a new formatted error
func Newf(format string, args ...interface{}) *Error {
	return &Error{message: fmt.Sprintf(format, args...)}
}

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return &Error{
		kind:    KindOf(err),
		message: message,
		cause:   err,
	}
}

// Wrapf wraps an error with formatted context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return &Error{
		kind:    KindOf(err),
		message: fmt.Sprintf(format, args...),
		cause:   err,
	}
}

func withKind(kind Kind, err error, format string, args ...interface{}) error {
	return &Error{
		kind:    kind,
		message: fmt.Sprintf(format, args...),
		cause:   err,
	}
}

// Fetch marks err as a network/HTTP failure retrieving a transcript source
func Fetch(err error, format string, args ...interface{}) error {
	return withKind(KindFetch, err, format, args...)
}

// Parse marks err as malformed input or missing required metadata
func Parse(err error, format string, args ...interface{}) error {
	return withKind(KindParse, err, format, args...)
}

// Embedding marks err as an embedding capability failure
func Embedding(err error, format string, args ...interface{}) error {
	return withKind(KindEmbedding, err, format, args...)
}

// Store marks err as a vector or relational store failure
func Store(err error, format string, args ...interface{}) error {
	return withKind(KindStore, err, format, args...)
}

// Summarization marks err as a summarization capability failure
func Summarization(err error, format string, args ...interface{}) error {
	return withKind(KindSummarization, err, format, args...)
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.cause
}

// Kind returns the classification of the error
func (e *Error) Kind() Kind {
	return e.kind
}

// Is checks if the error matches target. A kind sentinel matches every
// error of that kind; otherwise messages are compared.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if isSentinel(t) {
		return e.kind == t.kind
	}
	return e.message == t.message
}

func isSentinel(e *Error) bool {
	return e == ErrFetch || e == ErrParse || e == ErrEmbedding || e == ErrStore || e == ErrSummarization
}

// KindOf returns the outermost non-empty kind found in err's chain
func KindOf(err error) Kind {
	for err != nil {
		var e *Error
		if !stderrors.As(err, &e) {
			return KindUnknown
		}
		if e.kind != KindUnknown {
			return e.kind
		}
		err = e.cause
	}
	return KindUnknown
}

// Helper functions for common patterns

// RequiredField returns an error for missing required fields
func RequiredField(field string) error {
	return Newf("%s is required", field)
}

// InvalidField returns an error for invalid field values
func InvalidField(field string, reason string) error {
	return Newf("%s is invalid: %s", field, reason)
}

// InvalidFormat returns an error for invalid format
func InvalidFormat(field string, expected string) error {
	return Newf("%s format invalid: expected %s", field, expected)
}

// OutOfRange returns an error for values outside acceptable range
func OutOfRange(field string, min, max interface{}) error {
	return Newf("%s out of range (must be between %v and %v)", field, min, max)
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "required") ||
		strings.Contains(msg, "invalid") ||
		strings.Contains(msg, "out of range")
}
