package middleware

import (
	stderrors "errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"transcript-rag/internal/api/errors"
)

// Validator interface for domain validation
type Validator interface {
	Validate() error
}

// ValidateRequest binds a JSON body and validates both struct tags and
// domain rules
func ValidateRequest(c *gin.Context, req interface{}) error {
	if err := c.ShouldBindJSON(req); err != nil {
		return bindingError(err, "request", "invalid JSON format")
	}
	return validateDomain(req)
}

// ValidateQuery binds and validates query parameters
func ValidateQuery(c *gin.Context, req interface{}) error {
	if err := c.ShouldBindQuery(req); err != nil {
		return bindingError(err, "query", "invalid query parameters")
	}
	return validateDomain(req)
}

func validateDomain(req interface{}) error {
	if v, ok := req.(Validator); ok {
		if err := v.Validate(); err != nil {
			return errors.NewValidationError("Validation failed", map[string]string{"request": err.Error()})
		}
	}
	return nil
}

func bindingError(err error, fallbackField, fallbackMessage string) error {
	details := make(map[string]string)

	var validationErrs validator.ValidationErrors
	if stderrors.As(err, &validationErrs) {
		for _, fieldError := range validationErrs {
			field := strings.ToLower(fieldError.Field())

			switch fieldError.Tag() {
			case "required":
				details[field] = "is required"
			case "min":
				details[field] = "is too small"
			case "max":
				details[field] = "is too large"
			case "url":
				details[field] = "must be a valid URL"
			default:
				details[field] = "is invalid"
			}
		}
	} else {
		details[fallbackField] = fallbackMessage
	}

	return errors.NewValidationError("Validation failed", details)
}
