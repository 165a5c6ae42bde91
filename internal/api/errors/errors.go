package errors

import (
	stderrors "errors"
	"net/http"

	apperrors "transcript-rag/internal/app/errors"
)

// ErrorKind represents different types of API errors
type ErrorKind string

const (
	KindValidation         ErrorKind = "validation"
	KindParse              ErrorKind = "parse"
	KindNotFound           ErrorKind = "not_found"
	KindUpstream           ErrorKind = "upstream"
	KindInternal           ErrorKind = "internal"
	KindServiceUnavailable ErrorKind = "service_unavailable"
)

// APIError represents a structured API error response
type APIError struct {
	Kind      ErrorKind         `json:"kind"`
	Message   string            `json:"message"`
	Details   map[string]string `json:"details,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return e.Message
}

// HTTPStatus returns the appropriate HTTP status code for the error kind
func (e *APIError) HTTPStatus() int {
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindParse:
		return http.StatusUnprocessableEntity
	case KindNotFound:
		return http.StatusNotFound
	case KindUpstream:
		return http.StatusBadGateway
	case KindServiceUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// NewValidationError creates a validation error with field details
func NewValidationError(message string, fields map[string]string) *APIError {
	return &APIError{
		Kind:    KindValidation,
		Message: message,
		Details: fields,
	}
}

// NewInternalError creates an internal server error
func NewInternalError(message string) *APIError {
	return &APIError{
		Kind:    KindInternal,
		Message: message,
	}
}

// FromError classifies a domain error. Pipeline kinds take precedence over
// the message-based validation check.
func FromError(err error) *APIError {
	if err == nil {
		return nil
	}

	var apiErr *APIError
	if stderrors.As(err, &apiErr) {
		return apiErr
	}

	switch apperrors.KindOf(err) {
	case apperrors.KindParse:
		return &APIError{Kind: KindParse, Message: err.Error()}
	case apperrors.KindFetch:
		return &APIError{Kind: KindUpstream, Message: err.Error()}
	case apperrors.KindEmbedding, apperrors.KindStore, apperrors.KindSummarization:
		return &APIError{Kind: KindServiceUnavailable, Message: err.Error()}
	}

	switch {
	case stderrors.Is(err, apperrors.ErrEpisodeNotFound), stderrors.Is(err, apperrors.ErrCollectionNotFound):
		return &APIError{Kind: KindNotFound, Message: err.Error()}
	case stderrors.Is(err, apperrors.ErrInvalidConfig), stderrors.Is(err, apperrors.ErrMissingAPIKey):
		return &APIError{Kind: KindServiceUnavailable, Message: err.Error()}
	case apperrors.IsValidationError(err):
		return &APIError{Kind: KindValidation, Message: err.Error()}
	}

	return NewInternalError("Internal server error")
}
