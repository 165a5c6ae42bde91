package handlers

import (
	"bytes"
	"net/http"

	"github.com/gin-gonic/gin"
	"transcript-rag/internal/api/middleware"
	"transcript-rag/internal/api/v1/dto"
	"transcript-rag/internal/api/v1/services"
	"transcript-rag/internal/app/export"
)

// EpisodeHandler handles episode-level views
type EpisodeHandler struct {
	service services.QueryService
	export  services.ExportService
}

// NewEpisodeHandler creates a new episode handler. exporter may be nil.
func NewEpisodeHandler(service services.QueryService, exporter services.ExportService) *EpisodeHandler {
	return &EpisodeHandler{service: service, export: exporter}
}

// List handles GET /api/v1/episodes
func (h *EpisodeHandler) List(c *gin.Context) {
	var req dto.EpisodesQuery
	if err := middleware.ValidateQuery(c, &req); err != nil {
		middleware.HandleError(c, err)
		return
	}

	episodes, err := h.service.Episodes(c.Request.Context(), req.Episode)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewEpisodesResponse(episodes))
}

// Search handles GET /api/v1/episodes/search
func (h *EpisodeHandler) Search(c *gin.Context) {
	var req dto.EpisodeSearchQuery
	if err := middleware.ValidateQuery(c, &req); err != nil {
		middleware.HandleError(c, err)
		return
	}

	matches, err := h.service.SearchEpisodes(c.Request.Context(), req.Q, req.Limit)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewEpisodeMatchesResponse(matches))
}

// Export handles GET /api/v1/episodes/export. The workbook is built in
// memory so a failure can still be reported with a JSON error.
func (h *EpisodeHandler) Export(c *gin.Context) {
	var buf bytes.Buffer
	if err := h.export.ExportEpisodes(c.Request.Context(), &buf); err != nil {
		middleware.HandleError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="episodes.xlsx"`)
	c.Data(http.StatusOK, export.ContentType, buf.Bytes())
}
