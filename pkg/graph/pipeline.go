package graph

import (
	"context"
	"fmt"
	"strings"
	"time"

	"docgraph/pkg/ai"
	"docgraph/pkg/common"
	"docgraph/pkg/loader"
	"docgraph/pkg/logger"
	"docgraph/pkg/store"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// IngestDocument runs the full pipeline for one document: load text,
// chunk, embed, extract per chunk, merge and persist. Failures of a
// single chunk's extraction are logged and skipped; only pipeline-wide
// preconditions (unreadable file, empty text, storage errors) fail the
// ingestion.
//
// Chunks are processed in order because each extraction sees a window of
// its neighbors. Separate documents can be ingested concurrently.
func (g *GraphClient) IngestDocument(
	ctx context.Context,
	file loader.GraphFile,
	storage store.GraphStorage,
) common.IngestResult {
	result := common.IngestResult{Filename: file.Filename}

	textBytes, err := file.GetText(ctx)
	if err != nil {
		result.Error = fmt.Sprintf("failed to load document: %v", err)
		return result
	}
	text := strings.TrimSpace(string(textBytes))
	if text == "" {
		result.Error = "no text could be extracted from document"
		return result
	}

	// Reuse the caller's document id so re-running the same file (sync
	// retries, queue redeliveries) upserts instead of storing a copy.
	docID := file.ID
	if docID == "" {
		docID, err = gonanoid.New()
		if err != nil {
			result.Error = fmt.Sprintf("failed to generate document id: %v", err)
			return result
		}
	}
	result.DocID = docID

	chunkTexts := g.chunker.Chunks(ctx, text)
	if len(chunkTexts) == 0 {
		result.Error = "chunking produced no chunks"
		return result
	}
	logger.Info("[Graph] Document chunked", "doc_id", docID, "chunks", len(chunkTexts))

	embeddings, err := ai.EmbedTexts(ctx, g.aiClient, chunkTexts, g.embedDim)
	if err != nil {
		result.Error = fmt.Sprintf("embedding failed: %v", err)
		return result
	}

	chunks := make([]common.Chunk, len(chunkTexts))
	for i, chunkText := range chunkTexts {
		chunkID, err := gonanoid.New()
		if err != nil {
			result.Error = fmt.Sprintf("failed to generate chunk id: %v", err)
			return result
		}
		chunks[i] = common.Chunk{
			ID:         chunkID,
			DocumentID: docID,
			Seq:        i,
			Text:       chunkText,
			Embedding:  embeddings[i],
		}
	}

	extractions := make([]common.ExtractionResult, 0, len(chunks))
	mentions := make(map[string][]string)
	for i := range chunkTexts {
		if ctx.Err() != nil {
			result.Error = ctx.Err().Error()
			return result
		}

		extraction, err := g.extractFromChunk(ctx, chunkTexts, i)
		if err != nil {
			logger.Warn("[Graph] Extraction failed for chunk, continuing", "doc_id", docID, "chunk", i, "err", err)
			extractions = append(extractions, common.ExtractionResult{ChunkIndex: i})
			continue
		}
		extractions = append(extractions, extraction)

		for _, e := range extraction.Entities {
			key := EntityKey(e.Name)
			mentions[key] = append(mentions[key], chunks[i].ID)
		}
	}

	entities, relationships := MergeExtractions(extractions)
	logger.Info("[Graph] Extraction merged",
		"doc_id", docID,
		"entities", len(entities),
		"relationships", len(relationships),
	)

	doc := common.Document{
		ID:        docID,
		Filename:  file.Filename,
		Content:   text,
		CreatedAt: time.Now().UTC(),
	}
	if err := storage.SaveDocument(ctx, doc); err != nil {
		result.Error = fmt.Sprintf("failed to save document: %v", err)
		return result
	}
	if err := storage.SaveChunks(ctx, chunks); err != nil {
		result.Error = fmt.Sprintf("failed to save chunks: %v", err)
		return result
	}
	if err := storage.SaveEntities(ctx, entities, mentions); err != nil {
		result.Error = fmt.Sprintf("failed to save entities: %v", err)
		return result
	}
	if err := storage.SaveRelationships(ctx, relationships); err != nil {
		result.Error = fmt.Sprintf("failed to save relationships: %v", err)
		return result
	}

	result.Success = true
	result.Stats = &common.IngestStats{
		TextLength:         len(text),
		ChunksCount:        len(chunks),
		EntitiesCount:      len(entities),
		RelationshipsCount: len(relationships),
	}
	return result
}
