package routes

import (
	"net/http"

	"docgraph/internal/server/middleware"
	"docgraph/pkg/common"
	"docgraph/pkg/logger"

	"github.com/labstack/echo/v4"
)

// ChatHandler answers a question grounded in the retrieved chunks and
// graph neighborhood.
func ChatHandler(c echo.Context) error {
	type chatRequest struct {
		Question string `json:"question" validate:"required"`
		TopK     int    `json:"top_k"`
	}

	type chatResponse struct {
		Message string                  `json:"message"`
		Answer  string                  `json:"answer,omitempty"`
		Context *common.GraphRAGContext `json:"context,omitempty"`
	}

	data := new(chatRequest)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, chatResponse{
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, chatResponse{
			Message: "Invalid request body",
		})
	}

	ctx := c.Request().Context()
	app := c.(*middleware.AppContext).App

	answer, ragContext, err := app.RAG.Answer(ctx, data.Question, data.TopK)
	if err != nil {
		logger.Error("[Chat] Failed to answer question", "err", err)
		return c.JSON(http.StatusInternalServerError, chatResponse{
			Message: "Internal server error",
		})
	}

	return c.JSON(http.StatusOK, chatResponse{
		Message: "OK",
		Answer:  answer,
		Context: &ragContext,
	})
}

// SearchHandler runs retrieval only and returns the context bundle
// without generating an answer.
func SearchHandler(c echo.Context) error {
	type searchRequest struct {
		Question string `json:"question" validate:"required"`
		TopK     int    `json:"top_k"`
	}

	type searchResponse struct {
		Message string                  `json:"message"`
		Context *common.GraphRAGContext `json:"context,omitempty"`
	}

	data := new(searchRequest)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, searchResponse{
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, searchResponse{
			Message: "Invalid request body",
		})
	}

	ctx := c.Request().Context()
	app := c.(*middleware.AppContext).App

	ragContext, err := app.RAG.Search(ctx, data.Question, data.TopK)
	if err != nil {
		logger.Error("[Search] Failed to search", "err", err)
		return c.JSON(http.StatusInternalServerError, searchResponse{
			Message: "Internal server error",
		})
	}

	return c.JSON(http.StatusOK, searchResponse{
		Message: "OK",
		Context: &ragContext,
	})
}
