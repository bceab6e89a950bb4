package routes

import (
	"net/http"

	"docgraph/internal/server/middleware"
	"docgraph/internal/util"
	"docgraph/pkg/common"
	"docgraph/pkg/logger"
	"docgraph/pkg/sqlmap"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
)

// LoadSQLHandler maps a relational source database into the graph. The
// source connection string comes from the request body or, when
// omitted, from SOURCE_DATABASE_URL. A client-provided mapping skips
// the model proposal step.
func LoadSQLHandler(c echo.Context) error {
	type loadRequest struct {
		SourceDatabaseURL string                     `json:"source_database_url"`
		BatchSize         int                        `json:"batch_size"`
		Mapping           *common.GraphSchemaMapping `json:"mapping"`
	}

	type loadResponse struct {
		Message string            `json:"message"`
		Stats   *sqlmap.LoadStats `json:"stats,omitempty"`
	}

	data := new(loadRequest)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, loadResponse{
			Message: "Invalid request body",
		})
	}

	sourceURL := data.SourceDatabaseURL
	if sourceURL == "" {
		sourceURL = util.GetEnv("SOURCE_DATABASE_URL")
	}
	if sourceURL == "" {
		return c.JSON(http.StatusBadRequest, loadResponse{
			Message: "No source database configured",
		})
	}

	ctx := c.Request().Context()
	app := c.(*middleware.AppContext).App

	source, err := pgxpool.New(ctx, sourceURL)
	if err != nil {
		logger.Error("[SQLLoad] Failed to connect to source database", "err", err)
		return c.JSON(http.StatusInternalServerError, loadResponse{
			Message: "Failed to connect to source database",
		})
	}
	defer source.Close()

	mapper := sqlmap.NewMapper(sqlmap.NewMapperParams{
		AIClient:  app.AiClient,
		Storage:   app.Storage,
		Source:    source,
		EmbedDim:  app.EmbedDim,
		BatchSize: data.BatchSize,
	})

	var stats sqlmap.LoadStats
	if data.Mapping != nil {
		stats, err = mapper.LoadWithMapping(ctx, *data.Mapping)
	} else {
		stats, err = mapper.Load(ctx)
	}
	if err != nil {
		logger.Error("[SQLLoad] Failed to load source database", "err", err)
		return c.JSON(http.StatusInternalServerError, loadResponse{
			Message: "Failed to load source database",
		})
	}

	logger.Info("[SQLLoad] Source database loaded",
		"tables", stats.TablesLoaded,
		"nodes", stats.NodesLoaded,
		"edges", stats.EdgesLinked,
	)

	return c.JSON(http.StatusOK, loadResponse{
		Message: "Source database loaded",
		Stats:   &stats,
	})
}
