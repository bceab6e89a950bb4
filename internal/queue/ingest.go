package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"docgraph/internal/util"
	"docgraph/pkg/graph"
	"docgraph/pkg/loader"
	"docgraph/pkg/loader/pdf"
	"docgraph/pkg/loader/s3"
	"docgraph/pkg/logger"
	"docgraph/pkg/store"

	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
)

// IngestJobMsg is the payload of an asynchronous ingestion job. The
// document was parked in object storage by the upload route; the worker
// fetches it by key and runs the pipeline.
type IngestJobMsg struct {
	DocID     string `json:"doc_id"`
	ObjectKey string `json:"object_key"`
	Filename  string `json:"filename"`
}

// ProcessIngestMessage handles one ingestion job. A failed pipeline run
// returns an error so the delivery goes through the retry queue.
func ProcessIngestMessage(
	ctx context.Context,
	s3Client *awss3.Client,
	graphClient *graph.GraphClient,
	storage store.GraphStorage,
	msg string,
) error {
	data := new(IngestJobMsg)
	if err := json.Unmarshal([]byte(msg), data); err != nil {
		return fmt.Errorf("failed to decode ingest job: %w", err)
	}
	if data.ObjectKey == "" {
		return fmt.Errorf("ingest job has no object key")
	}

	bucket := util.GetEnvString("AWS_BUCKET", "docgraph")
	s3Loader := s3.NewS3GraphFileLoaderWithClient(bucket, s3Client)

	var fileLoader loader.GraphFileLoader = s3Loader
	if strings.EqualFold(fileExt(data.Filename), "pdf") || strings.EqualFold(fileExt(data.ObjectKey), "pdf") {
		fileLoader = pdf.NewPDFGraphLoader(s3Loader)
	}

	file := loader.NewGraphFile(loader.NewGraphFileParams{
		ID:       data.DocID,
		FilePath: data.ObjectKey,
		Filename: data.Filename,
		Loader:   fileLoader,
	})

	logger.Info("[Queue] Ingesting document", "doc_id", data.DocID, "key", data.ObjectKey)

	result := graphClient.IngestDocument(ctx, file, storage)
	if !result.Success {
		return fmt.Errorf("ingestion failed for %s: %s", data.Filename, result.Error)
	}

	logger.Info("[Queue] Document ingested",
		"doc_id", result.DocID,
		"chunks", result.Stats.ChunksCount,
		"entities", result.Stats.EntitiesCount,
		"relationships", result.Stats.RelationshipsCount,
	)
	return nil
}

func fileExt(name string) string {
	idx := strings.LastIndex(name, ".")
	if idx < 0 {
		return ""
	}
	return name[idx+1:]
}
