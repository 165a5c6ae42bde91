package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"transcript-rag/internal/api/middleware"
	"transcript-rag/internal/api/v1/dto"
	"transcript-rag/internal/api/v1/services"
)

// IngestHandler handles ingestion requests
type IngestHandler struct {
	service services.IngestService
}

// NewIngestHandler creates a new ingest handler
func NewIngestHandler(service services.IngestService) *IngestHandler {
	return &IngestHandler{service: service}
}

// Ingest handles POST /api/v1/ingest. Per-reference fetch and parse
// failures are reported in the body with 200; only batch-level failures
// map to an error status.
func (h *IngestHandler) Ingest(c *gin.Context) {
	var req dto.IngestRequest
	if err := middleware.ValidateRequest(c, &req); err != nil {
		middleware.HandleError(c, err)
		return
	}

	result, err := h.service.Ingest(c.Request.Context(), &req)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
