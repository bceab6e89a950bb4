package routes

import (
	"net/http"

	"docgraph/internal/server/middleware"
	"docgraph/pkg/common"
	"docgraph/pkg/logger"

	"github.com/labstack/echo/v4"
)

// GetDocumentStatsHandler returns the stored counts for one document.
func GetDocumentStatsHandler(c echo.Context) error {
	type statsRequest struct {
		DocID string `param:"id" validate:"required"`
	}

	type statsResponse struct {
		Message string              `json:"message"`
		Stats   *common.IngestStats `json:"stats,omitempty"`
	}

	data := new(statsRequest)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, statsResponse{
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, statsResponse{
			Message: "Invalid request body",
		})
	}

	ctx := c.Request().Context()
	app := c.(*middleware.AppContext).App

	stats, err := app.Storage.DocumentStats(ctx, data.DocID)
	if err != nil {
		logger.Error("[Documents] Failed to load stats", "doc_id", data.DocID, "err", err)
		return c.JSON(http.StatusNotFound, statsResponse{
			Message: "Document not found",
		})
	}

	return c.JSON(http.StatusOK, statsResponse{
		Message: "OK",
		Stats:   &stats,
	})
}
