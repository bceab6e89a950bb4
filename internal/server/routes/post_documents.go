package routes

import (
	"encoding/json"
	"net/http"
	"path/filepath"
	"strings"

	"docgraph/internal/queue"
	"docgraph/internal/server/middleware"
	"docgraph/internal/storage"
	"docgraph/internal/util"
	"docgraph/pkg/common"
	"docgraph/pkg/loader"
	"docgraph/pkg/loader/pdf"
	"docgraph/pkg/loader/s3"
	"docgraph/pkg/logger"

	"github.com/labstack/echo/v4"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// UploadDocumentHandler accepts a multipart file upload, parks it in
// object storage and runs the ingestion pipeline. With ?async=true the
// pipeline runs on the worker instead and the request returns 202.
func UploadDocumentHandler(c echo.Context) error {
	type uploadResponse struct {
		Success  bool                `json:"success"`
		Message  string              `json:"message"`
		DocID    string              `json:"doc_id,omitempty"`
		Filename string              `json:"filename,omitempty"`
		Stats    *common.IngestStats `json:"stats,omitempty"`
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, uploadResponse{
			Message: "Invalid request body",
		})
	}

	src, err := fileHeader.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, uploadResponse{
			Message: "Invalid request body",
		})
	}
	defer src.Close()

	docID, err := gonanoid.New()
	if err != nil {
		logger.Error("[Upload] Failed to generate document id", "err", err)
		return c.JSON(http.StatusInternalServerError, uploadResponse{
			Message: "Internal server error",
		})
	}

	ctx := c.Request().Context()
	app := c.(*middleware.AppContext).App

	objectKey, err := storage.PutFile(ctx, app.S3, fileHeader.Filename, docID, src)
	if err != nil {
		logger.Error("[Upload] Failed to store file", "err", err)
		return c.JSON(http.StatusInternalServerError, uploadResponse{
			Message: "Internal server error",
		})
	}

	if c.QueryParam("async") == "true" {
		job := queue.IngestJobMsg{
			DocID:     docID,
			ObjectKey: objectKey,
			Filename:  fileHeader.Filename,
		}
		body, err := json.Marshal(job)
		if err != nil {
			logger.Error("[Upload] Failed to encode ingest job", "err", err)
			return c.JSON(http.StatusInternalServerError, uploadResponse{
				Message: "Internal server error",
			})
		}
		if err := queue.PublishFIFO(app.Queue, queue.IngestQueue, body); err != nil {
			logger.Error("[Upload] Failed to publish ingest job", "err", err)
			return c.JSON(http.StatusInternalServerError, uploadResponse{
				Message: "Internal server error",
			})
		}
		return c.JSON(http.StatusAccepted, uploadResponse{
			Success:  true,
			Message:  "Document queued for ingestion",
			DocID:    docID,
			Filename: fileHeader.Filename,
		})
	}

	bucket := util.GetEnvString("AWS_BUCKET", "docgraph")
	s3Loader := s3.NewS3GraphFileLoaderWithClient(bucket, app.S3)

	var fileLoader loader.GraphFileLoader = s3Loader
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(fileHeader.Filename)), ".")
	if ext == "pdf" {
		fileLoader = pdf.NewPDFGraphLoader(s3Loader)
	}

	file := loader.NewGraphFile(loader.NewGraphFileParams{
		ID:       docID,
		FilePath: objectKey,
		Filename: fileHeader.Filename,
		Loader:   fileLoader,
	})

	result := app.GraphClient.IngestDocument(ctx, file, app.Storage)
	if !result.Success {
		logger.Error("[Upload] Ingestion failed", "doc_id", docID, "err", result.Error)
		return c.JSON(http.StatusInternalServerError, uploadResponse{
			Message:  "Ingestion failed",
			DocID:    docID,
			Filename: fileHeader.Filename,
		})
	}

	return c.JSON(http.StatusOK, uploadResponse{
		Success:  true,
		Message:  "Document ingested",
		DocID:    result.DocID,
		Filename: result.Filename,
		Stats:    result.Stats,
	})
}
