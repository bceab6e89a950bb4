package query

import (
	"context"
	"fmt"
	"strings"

	"docgraph/pkg/ai"
	"docgraph/pkg/common"
	"docgraph/pkg/logger"
	"docgraph/pkg/store"
)

const (
	defaultTopK          = 5
	traversalMaxHops     = 2
	traversalTripleLimit = 50
)

// GraphRAGClient answers questions over the knowledge graph by combining
// vector similarity over chunks with graph traversal from the entities
// those chunks mention.
//
// A GraphRAGClient should be created using NewGraphRAGClient.
type GraphRAGClient struct {
	aiClient ai.GraphAIClient
	storage  store.GraphStorage
	embedDim int
}

// NewGraphRAGClientParams defines the configuration for creating a
// GraphRAGClient.
type NewGraphRAGClientParams struct {
	AIClient ai.GraphAIClient
	Storage  store.GraphStorage
	EmbedDim int
}

// NewGraphRAGClient creates a GraphRAGClient configured with the
// provided parameters.
func NewGraphRAGClient(params NewGraphRAGClientParams) *GraphRAGClient {
	embedDim := params.EmbedDim
	if embedDim <= 0 {
		embedDim = 1536
	}
	return &GraphRAGClient{
		aiClient: params.AIClient,
		storage:  params.Storage,
		embedDim: embedDim,
	}
}

// Search builds the retrieval bundle for a question: the topK most
// similar chunks, the entities they mention, and the relationship facts
// reachable from those entities within the hop bound. When vector search
// returns nothing, the bundle is fully empty; graph expansion never runs
// without chunk seeds.
func (c *GraphRAGClient) Search(ctx context.Context, question string, topK int) (common.GraphRAGContext, error) {
	if topK <= 0 {
		topK = defaultTopK
	}

	embedding, err := c.aiClient.GenerateEmbedding(ctx, question)
	if err != nil {
		return common.GraphRAGContext{}, fmt.Errorf("failed to embed question: %w", err)
	}

	chunks, err := c.storage.SearchChunks(ctx, embedding, topK)
	if err != nil {
		return common.GraphRAGContext{}, fmt.Errorf("chunk search failed: %w", err)
	}
	if len(chunks) == 0 {
		logger.Debug("[Query] No chunk hits, returning empty bundle")
		return common.GraphRAGContext{}, nil
	}

	chunkIDs := make([]string, len(chunks))
	for i, chunk := range chunks {
		chunkIDs[i] = chunk.ID
	}

	entities, err := c.storage.GetEntitiesForChunks(ctx, chunkIDs)
	if err != nil {
		return common.GraphRAGContext{}, fmt.Errorf("entity expansion failed: %w", err)
	}

	var triples []common.RelationTriple
	if len(entities) > 0 {
		names := make([]string, len(entities))
		for i, e := range entities {
			names[i] = e.Name
		}
		triples, err = c.storage.TraverseRelationships(ctx, names, traversalMaxHops, traversalTripleLimit)
		if err != nil {
			return common.GraphRAGContext{}, fmt.Errorf("graph traversal failed: %w", err)
		}
	}

	logger.Debug("[Query] Retrieval bundle built",
		"chunks", len(chunks),
		"entities", len(entities),
		"triples", len(triples),
	)

	return common.GraphRAGContext{
		Chunks:        chunks,
		Entities:      entities,
		Relationships: triples,
	}, nil
}

// Answer retrieves context for the question and generates a grounded
// answer from it. An empty bundle produces an explicit decline instead
// of a hallucinated answer. Returns the answer and the bundle it was
// grounded in.
func (c *GraphRAGClient) Answer(ctx context.Context, question string, topK int) (string, common.GraphRAGContext, error) {
	bundle, err := c.Search(ctx, question, topK)
	if err != nil {
		return "", common.GraphRAGContext{}, err
	}

	var prompt string
	if bundle.Empty() {
		prompt = fmt.Sprintf(ai.NoContextPrompt, question)
	} else {
		prompt = fmt.Sprintf(ai.AnswerPrompt,
			formatChunks(bundle.Chunks),
			formatEntities(bundle.Entities),
			formatTriples(bundle.Relationships),
			question,
		)
	}

	answer, err := c.aiClient.GenerateCompletion(ctx, prompt)
	if err != nil {
		return "", bundle, fmt.Errorf("answer generation failed: %w", err)
	}
	return answer, bundle, nil
}

func formatChunks(chunks []common.ScoredChunk) string {
	if len(chunks) == 0 {
		return "(none)"
	}
	var b strings.Builder
	for i, chunk := range chunks {
		fmt.Fprintf(&b, "[%d] (%s, score %.2f)\n%s\n\n", i+1, chunk.Document, chunk.Score, chunk.Text)
	}
	return strings.TrimSpace(b.String())
}

func formatEntities(entities []common.Entity) string {
	if len(entities) == 0 {
		return "(none)"
	}
	parts := make([]string, len(entities))
	for i, e := range entities {
		parts[i] = fmt.Sprintf("%s (%s)", e.Name, e.Type)
	}
	return strings.Join(parts, ", ")
}

func formatTriples(triples []common.RelationTriple) string {
	if len(triples) == 0 {
		return "(none)"
	}
	var b strings.Builder
	for _, triple := range triples {
		label := triple.Original
		if label == "" {
			label = triple.Type
		}
		fmt.Fprintf(&b, "%s -[%s]-> %s\n", triple.Source, label, triple.Target)
	}
	return strings.TrimSpace(b.String())
}
