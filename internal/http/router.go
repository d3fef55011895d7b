package http

import (
	"github.com/gin-gonic/gin"
)

// NewRouter creates and configures the HTTP router with all endpoints.
// Uses RouterConfig to receive all dependencies, improving testability
// and reducing parameter count.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	health := NewHealthController(cfg.Database, cfg.Version)
	parsers := NewParsersController(cfg.Jobs, cfg.Dispatcher)
	conflictsController := NewConflictsController(cfg.Conflicts, cfg.Catalog)
	schedulerController := NewSchedulerController(cfg.Schedules, cfg.Jobs, cfg.Dispatcher)
	settingsController := NewSettingsController(cfg.Settings)
	eventsController := NewEventsController(cfg.Hub, cfg.TokenIssuer, cfg.Jobs)
	searchController := NewSearchController(cfg.Catalog, cfg.Metadata, cfg.Delivery, cfg.Settings)

	// Health endpoints
	router.GET("/health", health.Status)
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	// Localized media
	if cfg.MediaRoot != "" {
		router.Static("/media", cfg.MediaRoot)
	}

	api := router.Group("/api/v1")

	// Sync job endpoints
	api.POST("/parsers/:provider/sync", parsers.TriggerSync)
	api.GET("/parsers/jobs", parsers.ListJobs)
	api.GET("/parsers/jobs/:id", parsers.GetJob)
	api.GET("/parsers/jobs/:id/logs", parsers.JobLogs)
	api.GET("/parsers/logs", parsers.GlobalLogs)

	// Live progress endpoints
	api.POST("/parsers/events/token", eventsController.IssueToken)
	api.GET("/parsers/jobs/:id/events", eventsController.Stream)

	// Conflict review endpoints
	api.GET("/conflicts", conflictsController.List)
	api.POST("/conflicts/:id/resolve", conflictsController.Resolve)

	// Parser settings endpoints
	api.GET("/settings/:category", settingsController.Get)
	api.PUT("/settings/:category", settingsController.Update)

	// Schedule endpoints
	api.GET("/scheduler/jobs", schedulerController.List)
	api.POST("/scheduler/jobs", schedulerController.Create)
	api.PUT("/scheduler/jobs/:id", schedulerController.Update)
	api.DELETE("/scheduler/jobs/:id", schedulerController.Delete)
	api.POST("/scheduler/jobs/:id/run-now", schedulerController.RunNow)

	// Search endpoints
	api.GET("/search-live", searchController.SearchLive)
	api.POST("/fetch-full", searchController.FetchFull)

	return router
}
