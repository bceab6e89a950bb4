package pgx

import (
	"context"
	"encoding/json"
	"fmt"

	"docgraph/pkg/common"
	"docgraph/pkg/logger"

	"github.com/pgvector/pgvector-go"
)

// UpsertStructuredNodes merges rows loaded from a relational source,
// keyed by (label, key value). Re-running a load refreshes properties
// and keeps an existing embedding when the new row has none.
func (s *GraphDBStorage) UpsertStructuredNodes(ctx context.Context, nodes []common.StructuredNode) error {
	if len(nodes) == 0 {
		return nil
	}

	tx, err := s.conn.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, n := range nodes {
		props, err := json.Marshal(n.Props)
		if err != nil {
			return fmt.Errorf("failed to encode props for %s/%s: %w", n.Label, n.KeyValue, err)
		}

		var embedding any
		if len(n.Embedding) > 0 {
			if err := s.validateDim(n.Embedding); err != nil {
				return fmt.Errorf("node %s/%s: %w", n.Label, n.KeyValue, err)
			}
			embedding = pgvector.NewVector(n.Embedding)
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO structured_nodes (label, key_prop, key_value, props, embedding)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (label, key_value) DO UPDATE
			SET key_prop = EXCLUDED.key_prop,
			    props = EXCLUDED.props,
			    embedding = COALESCE(EXCLUDED.embedding, structured_nodes.embedding)`,
			n.Label, n.KeyProp, n.KeyValue, props, embedding,
		)
		if err != nil {
			return fmt.Errorf("failed to upsert node %s/%s: %w", n.Label, n.KeyValue, err)
		}
	}

	logger.Debug("[Graph] Structured nodes upserted", "nodes", len(nodes))
	return tx.Commit(ctx)
}

// LinkStructuredNodes creates relType edges between every pair of nodes
// of the two labels whose properties are equal, set-based in a single
// statement. Returns the number of edges created.
func (s *GraphDBStorage) LinkStructuredNodes(ctx context.Context, fromLabel string, fromProp string, toLabel string, toProp string, relType string) (int64, error) {
	tag, err := s.conn.Exec(ctx, `
		INSERT INTO structured_relationships (from_node_id, to_node_id, rel_type)
		SELECT f.id, t.id, $1
		FROM structured_nodes f
		JOIN structured_nodes t ON f.props->>$2 = t.props->>$3
		WHERE f.label = $4 AND t.label = $5
		  AND f.props->>$2 IS NOT NULL
		  AND f.id <> t.id
		ON CONFLICT (from_node_id, to_node_id, rel_type) DO NOTHING`,
		relType, fromProp, toProp, fromLabel, toLabel,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to link %s.%s to %s.%s: %w", fromLabel, fromProp, toLabel, toProp, err)
	}
	return tag.RowsAffected(), nil
}
