package server

import (
	"docgraph/internal/server/routes"

	"github.com/labstack/echo/v4"
)

func RegisterRoutes(e *echo.Echo) {
	// Health check route
	e.GET("/health", func(c echo.Context) error {
		return c.String(200, "OK")
	})

	apiRoutes := e.Group("/api")

	// Document routes
	apiRoutes.POST("/upload", routes.UploadDocumentHandler)
	apiRoutes.GET("/documents/:id/stats", routes.GetDocumentStatsHandler)

	// Query routes
	apiRoutes.POST("/chat", routes.ChatHandler)
	apiRoutes.POST("/search", routes.SearchHandler)

	// Structured data routes
	apiRoutes.POST("/sql/load", routes.LoadSQLHandler)
}
