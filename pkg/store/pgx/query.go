package pgx

import (
	"context"
	"fmt"

	"docgraph/pkg/common"

	"github.com/pgvector/pgvector-go"
)

// SearchChunks returns the topK chunks closest to the embedding by
// cosine distance, together with their similarity score and the filename
// of the owning document.
func (s *GraphDBStorage) SearchChunks(ctx context.Context, embedding []float32, topK int) ([]common.ScoredChunk, error) {
	if err := s.validateDim(embedding); err != nil {
		return nil, err
	}
	if topK <= 0 {
		topK = 5
	}

	vec := pgvector.NewVector(embedding)
	rows, err := s.conn.Query(ctx, `
		SELECT c.public_id, c.text, 1 - (c.embedding <=> $1) AS score, d.filename
		FROM chunks c
		JOIN documents d ON d.id = c.document_id
		ORDER BY c.embedding <=> $1
		LIMIT $2`,
		vec, topK,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to search chunks: %w", err)
	}
	defer rows.Close()

	var hits []common.ScoredChunk
	for rows.Next() {
		var hit common.ScoredChunk
		if err := rows.Scan(&hit.ID, &hit.Text, &hit.Score, &hit.Document); err != nil {
			return nil, err
		}
		hits = append(hits, hit)
	}
	return hits, rows.Err()
}

// TraverseRelationships walks the relationship graph outward from the
// named entities, bounded by hop depth and a triple cap. Seeds that name
// no stored entity contribute nothing; empty seeds return nothing.
func (s *GraphDBStorage) TraverseRelationships(ctx context.Context, entityNames []string, maxHops int, limit int) ([]common.RelationTriple, error) {
	if len(entityNames) == 0 {
		return nil, nil
	}
	if maxHops <= 0 {
		maxHops = 2
	}
	if limit <= 0 {
		limit = 50
	}

	keys := make([]string, 0, len(entityNames))
	for _, name := range entityNames {
		if key := entityNameKey(name); key != "" {
			keys = append(keys, key)
		}
	}
	if len(keys) == 0 {
		return nil, nil
	}

	rows, err := s.conn.Query(ctx, `
		WITH RECURSIVE seeds AS (
			SELECT id FROM entities WHERE name_key = ANY($1)
		),
		walk AS (
			SELECT r.id, r.from_entity_id, r.to_entity_id, 1 AS depth
			FROM entity_relationships r
			WHERE r.from_entity_id IN (SELECT id FROM seeds)
			   OR r.to_entity_id IN (SELECT id FROM seeds)
			UNION
			SELECT r.id, r.from_entity_id, r.to_entity_id, w.depth + 1
			FROM entity_relationships r
			JOIN walk w ON r.from_entity_id IN (w.from_entity_id, w.to_entity_id)
			            OR r.to_entity_id IN (w.from_entity_id, w.to_entity_id)
			WHERE w.depth < $2
		)
		SELECT DISTINCT f.name, t.name, r.rel_type, r.original_type
		FROM walk w
		JOIN entity_relationships r ON r.id = w.id
		JOIN entities f ON f.id = r.from_entity_id
		JOIN entities t ON t.id = r.to_entity_id
		LIMIT $3`,
		keys, maxHops, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to traverse relationships: %w", err)
	}
	defer rows.Close()

	var triples []common.RelationTriple
	for rows.Next() {
		var triple common.RelationTriple
		if err := rows.Scan(&triple.Source, &triple.Target, &triple.Type, &triple.Original); err != nil {
			return nil, err
		}
		triples = append(triples, triple)
	}
	return triples, rows.Err()
}
