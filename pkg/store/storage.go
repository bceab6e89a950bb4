package store

import (
	"context"

	"docgraph/pkg/common"
)

// GraphStorage defines the interface for persisting and querying the
// knowledge graph: documents with their embedded chunks, merged entities
// with chunk provenance, typed relationships, and the structured nodes
// loaded from relational sources. All write operations are idempotent
// merges so re-ingesting the same content never duplicates graph data.
type GraphStorage interface {
	SaveDocument(ctx context.Context, doc common.Document) error
	SaveChunks(ctx context.Context, chunks []common.Chunk) error

	// SaveEntities merges entities case-insensitively by name and records
	// a mention edge per chunk. mentions maps the lowercased trimmed
	// entity name to the public IDs of the chunks it appeared in.
	SaveEntities(ctx context.Context, entities []common.Entity, mentions map[string][]string) error

	// SaveRelationships merges directed edges keyed by normalized label.
	// Relationships whose endpoints are unknown entities are skipped.
	SaveRelationships(ctx context.Context, rels []common.Relationship) error

	// SearchChunks returns the topK chunks most similar to the embedding
	// by cosine distance, best first.
	SearchChunks(ctx context.Context, embedding []float32, topK int) ([]common.ScoredChunk, error)

	// GetEntitiesForChunks returns the entities mentioned in any of the
	// given chunks, deduplicated.
	GetEntitiesForChunks(ctx context.Context, chunkIDs []string) ([]common.Entity, error)

	// TraverseRelationships walks the relationship graph outward from the
	// named entities up to maxHops hops, returning at most limit distinct
	// triples. Empty seeds yield no triples.
	TraverseRelationships(ctx context.Context, entityNames []string, maxHops int, limit int) ([]common.RelationTriple, error)

	// UpsertStructuredNodes merges rows loaded from a relational source,
	// keyed by (label, key value).
	UpsertStructuredNodes(ctx context.Context, nodes []common.StructuredNode) error

	// LinkStructuredNodes creates relType edges between every pair of
	// structured nodes whose properties are equal, returning the number
	// of edges merged.
	LinkStructuredNodes(ctx context.Context, fromLabel string, fromProp string, toLabel string, toProp string, relType string) (int64, error)

	// DocumentStats counts the chunks, mentioned entities and
	// relationships stored for one document.
	DocumentStats(ctx context.Context, docID string) (common.IngestStats, error)
}
