package http

import (
	"github.com/gin-gonic/gin"

	"github.com/mrlokans/readinglog/internal/demo"
)

// NewRouter creates and configures the HTTP router with all endpoints.
// Uses RouterConfig to receive all dependencies.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(securityHeaders())
	router.Use(demo.NewMiddleware(cfg.DemoMode, "/api/reading/reload").Handler())

	health := NewHealthController(cfg.Database, cfg.Store, cfg.Version)
	readingCtl := NewReadingController(cfg.Store, cfg.Journal, cfg.TaskClient, cfg.CoverCache != nil)
	statsCtl := NewStatsController(cfg.Store, cfg.ActivityDays)
	catalogCtl := NewCatalogController(cfg.Catalog)
	coversCtl := NewCoversController(cfg.CoverCache, cfg.Store)
	tasksCtl := NewTasksController(cfg.TaskClient)
	settingsCtl := NewSettingsController(cfg.ExportSettings, cfg.ExportScheduler, cfg.Journal)

	router.GET("/health", health.Status)
	router.GET("/covers/:workKey", coversCtl.GetCover)

	api := router.Group("/api")
	{
		readingAPI := api.Group("/reading")
		readingAPI.GET("", readingCtl.GetState)
		readingAPI.POST("/reload", readingCtl.Reload)
		readingAPI.GET("/shelves/:status", readingCtl.GetShelf)
		readingAPI.POST("/tbr", readingCtl.AddToTBR)
		readingAPI.DELETE("/tbr/:workKey", readingCtl.RemoveFromTBR)
		readingAPI.PUT("/current", readingCtl.SetCurrent)
		readingAPI.PATCH("/current/progress", readingCtl.UpdateProgress)
		readingAPI.POST("/current/finish", readingCtl.Finish)
		readingAPI.POST("/sessions", readingCtl.AddSession)

		statsAPI := api.Group("/stats")
		statsAPI.GET("/activity", statsCtl.Activity)
		statsAPI.GET("/books/:workKey", statsCtl.BookActivity)
		statsAPI.GET("/summary", statsCtl.Summary)

		catalogAPI := api.Group("/catalog")
		catalogAPI.GET("/search", catalogCtl.Search)
		catalogAPI.GET("/works/:workKey", catalogCtl.Details)

		tasksAPI := api.Group("/tasks")
		tasksAPI.POST("/enrich", tasksCtl.Enrich)
		tasksAPI.GET("/:id", tasksCtl.GetTaskStatus)

		settingsAPI := api.Group("/settings")
		settingsAPI.GET("/export", settingsCtl.GetExport)
		settingsAPI.PUT("/export", settingsCtl.UpdateExport)
		settingsAPI.DELETE("/export", settingsCtl.ClearExport)
		settingsAPI.POST("/export/run", settingsCtl.RunExport)
	}

	router.NoRoute(func(c *gin.Context) {
		respondNotFound(c, "route")
	})

	return router
}

// securityHeaders adds the response headers a JSON API needs.
func securityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Header("Content-Security-Policy", "default-src 'none'; img-src 'self' https:; frame-ancestors 'none'")
		c.Next()
	}
}
