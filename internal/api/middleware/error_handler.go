package middleware

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"transcript-rag/internal/api/errors"
	"transcript-rag/internal/app/logging"
)

// ErrorHandler recovers panics into a generic internal error response
func ErrorHandler(logger logging.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		requestID := c.GetString(RequestIDKey)

		logger.Error("Recovered panic",
			"recovered", fmt.Sprint(recovered),
			"request_id", requestID,
			"path", c.Request.URL.Path,
			"method", c.Request.Method,
		)

		c.AbortWithStatusJSON(500, &errors.APIError{
			Kind:      errors.KindInternal,
			Message:   "Internal server error",
			RequestID: requestID,
		})
	})
}

// HandleError writes err as a JSON APIError and aborts the chain. Domain
// errors are classified by kind; the original error is attached to the gin
// context so the request logger records it.
func HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	_ = c.Error(err)
	apiErr := errors.FromError(err)
	resp := *apiErr
	resp.RequestID = c.GetString(RequestIDKey)
	c.AbortWithStatusJSON(resp.HTTPStatus(), &resp)
}
