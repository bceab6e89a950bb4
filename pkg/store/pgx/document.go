package pgx

import (
	"context"
	"fmt"

	"docgraph/pkg/common"
	"docgraph/pkg/logger"

	"github.com/pgvector/pgvector-go"
)

// SaveDocument upserts a document keyed by its public id. Re-ingesting
// the same document refreshes its content without duplicating it.
func (s *GraphDBStorage) SaveDocument(ctx context.Context, doc common.Document) error {
	_, err := s.conn.Exec(ctx, `
		INSERT INTO documents (public_id, filename, content, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (public_id) DO UPDATE
		SET filename = EXCLUDED.filename, content = EXCLUDED.content`,
		doc.ID, doc.Filename, doc.Content, doc.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save document: %w", err)
	}
	return nil
}

// SaveChunks upserts the chunks of a document in one transaction, keyed
// by (document, seq). Every chunk must carry an embedding of the
// configured dimension. Chunks past the new count are removed so a
// re-ingest that produces fewer chunks leaves no stale tail.
func (s *GraphDBStorage) SaveChunks(ctx context.Context, chunks []common.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}
	for _, c := range chunks {
		if err := s.validateDim(c.Embedding); err != nil {
			return fmt.Errorf("chunk %d: %w", c.Seq, err)
		}
	}

	tx, err := s.conn.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, c := range chunks {
		_, err := tx.Exec(ctx, `
			INSERT INTO chunks (public_id, document_id, seq, text, embedding)
			SELECT $1, d.id, $2, $3, $4
			FROM documents d
			WHERE d.public_id = $5
			ON CONFLICT (document_id, seq) DO UPDATE
			SET public_id = EXCLUDED.public_id, text = EXCLUDED.text,
				embedding = EXCLUDED.embedding`,
			c.ID, c.Seq, c.Text, pgvector.NewVector(c.Embedding), c.DocumentID,
		)
		if err != nil {
			return fmt.Errorf("failed to save chunk %d: %w", c.Seq, err)
		}
	}

	_, err = tx.Exec(ctx, `
		DELETE FROM chunks c
		USING documents d
		WHERE d.public_id = $1 AND c.document_id = d.id AND c.seq >= $2`,
		chunks[0].DocumentID, len(chunks),
	)
	if err != nil {
		return fmt.Errorf("failed to trim stale chunks: %w", err)
	}

	logger.Debug("[Graph] Chunks saved", "chunks", len(chunks))
	return tx.Commit(ctx)
}

// DocumentStats counts what the graph holds for one document: chunks,
// entities mentioned in them, and relationships whose endpoints are both
// mentioned in the document.
func (s *GraphDBStorage) DocumentStats(ctx context.Context, docID string) (common.IngestStats, error) {
	var stats common.IngestStats
	err := s.conn.QueryRow(ctx, `
		SELECT
			length(d.content),
			(SELECT count(*) FROM chunks c WHERE c.document_id = d.id),
			(SELECT count(DISTINCT m.entity_id)
				FROM entity_mentions m
				JOIN chunks c ON c.id = m.chunk_id
				WHERE c.document_id = d.id),
			(SELECT count(*) FROM entity_relationships r
				WHERE r.from_entity_id IN (
					SELECT m.entity_id FROM entity_mentions m
					JOIN chunks c ON c.id = m.chunk_id
					WHERE c.document_id = d.id)
				AND r.to_entity_id IN (
					SELECT m.entity_id FROM entity_mentions m
					JOIN chunks c ON c.id = m.chunk_id
					WHERE c.document_id = d.id))
		FROM documents d
		WHERE d.public_id = $1`,
		docID,
	).Scan(&stats.TextLength, &stats.ChunksCount, &stats.EntitiesCount, &stats.RelationshipsCount)
	if err != nil {
		return common.IngestStats{}, fmt.Errorf("failed to load document stats: %w", err)
	}
	return stats, nil
}
