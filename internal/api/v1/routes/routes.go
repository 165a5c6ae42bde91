package routes

import (
	"github.com/gin-gonic/gin"
	"transcript-rag/internal/api/v1/handlers"
	"transcript-rag/internal/api/v1/services"
)

// ServiceContainer holds all services needed by handlers. ExportService is
// optional.
type ServiceContainer struct {
	IngestService services.IngestService
	QueryService  services.QueryService
	ExportService services.ExportService
}

// RegisterRoutes registers all v1 API routes
func RegisterRoutes(router *gin.RouterGroup, container *ServiceContainer) {
	ingestHandler := handlers.NewIngestHandler(container.IngestService)
	router.POST("/ingest", ingestHandler.Ingest)

	searchHandler := handlers.NewSearchHandler(container.QueryService)
	search := router.Group("/search")
	{
		search.GET("", searchHandler.Search)
		search.GET("/speaker", searchHandler.SearchBySpeaker)
		search.GET("/time", searchHandler.SearchByTimeRange)
	}

	episodeHandler := handlers.NewEpisodeHandler(container.QueryService, container.ExportService)
	episodes := router.Group("/episodes")
	{
		episodes.GET("", episodeHandler.List)
		episodes.GET("/search", episodeHandler.Search)
		if container.ExportService != nil {
			episodes.GET("/export", episodeHandler.Export)
		}
	}
}
