package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"transcript-rag/internal/api/middleware"
	"transcript-rag/internal/api/v1/dto"
	"transcript-rag/internal/api/v1/services"
	"transcript-rag/internal/app/query"
)

// SearchHandler handles chunk and episode retrieval
type SearchHandler struct {
	service services.QueryService
}

// NewSearchHandler creates a new search handler
func NewSearchHandler(service services.QueryService) *SearchHandler {
	return &SearchHandler{service: service}
}

// Search handles GET /api/v1/search
func (h *SearchHandler) Search(c *gin.Context) {
	var req dto.SearchQuery
	if err := middleware.ValidateQuery(c, &req); err != nil {
		middleware.HandleError(c, err)
		return
	}

	results, err := h.service.Search(c.Request.Context(), req.Q, req.K)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSearchResponse(results))
}

// SearchBySpeaker handles GET /api/v1/search/speaker
func (h *SearchHandler) SearchBySpeaker(c *gin.Context) {
	var req dto.SpeakerSearchQuery
	if err := middleware.ValidateQuery(c, &req); err != nil {
		middleware.HandleError(c, err)
		return
	}

	results, err := h.service.SearchBySpeaker(c.Request.Context(), req.Speaker, req.Q, req.K)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSearchResponse(results))
}

// SearchByTimeRange handles GET /api/v1/search/time
func (h *SearchHandler) SearchByTimeRange(c *gin.Context) {
	var req dto.TimeRangeQuery
	if err := middleware.ValidateQuery(c, &req); err != nil {
		middleware.HandleError(c, err)
		return
	}

	results, err := h.service.SearchByTimeRange(c.Request.Context(), query.TimeRange{
		Start:        req.Start,
		End:          req.End,
		EpisodeTitle: req.Episode,
	}, req.K)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSearchResponse(results))
}
