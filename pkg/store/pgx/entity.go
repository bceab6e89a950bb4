package pgx

import (
	"context"
	"fmt"
	"strings"

	"docgraph/pkg/common"
	"docgraph/pkg/logger"
	"docgraph/pkg/store"
)

func entityNameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// SaveEntities merges entities by their case-insensitive name and records
// one mention edge per (entity, chunk) pair. An entity that already
// exists keeps its stored casing and type.
func (s *GraphDBStorage) SaveEntities(ctx context.Context, entities []common.Entity, mentions map[string][]string) error {
	if len(entities) == 0 {
		return nil
	}

	tx, err := s.conn.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, e := range entities {
		key := entityNameKey(e.Name)
		if key == "" {
			continue
		}

		_, err := tx.Exec(ctx, `
			INSERT INTO entities (name, name_key, type)
			VALUES ($1, $2, $3)
			ON CONFLICT (name_key) DO NOTHING`,
			strings.TrimSpace(e.Name), key, e.Type,
		)
		if err != nil {
			return fmt.Errorf("failed to save entity %q: %w", e.Name, err)
		}

		for _, chunkID := range mentions[key] {
			_, err := tx.Exec(ctx, `
				INSERT INTO entity_mentions (entity_id, chunk_id)
				SELECT e.id, c.id
				FROM entities e, chunks c
				WHERE e.name_key = $1 AND c.public_id = $2
				ON CONFLICT (entity_id, chunk_id) DO NOTHING`,
				key, chunkID,
			)
			if err != nil {
				return fmt.Errorf("failed to save mention of %q: %w", e.Name, err)
			}
		}
	}

	logger.Debug("[Graph] Entities saved", "entities", len(entities))
	return tx.Commit(ctx)
}

// SaveRelationships merges directed edges keyed by the normalized label.
// Endpoints are resolved through the case-insensitive entity identity; a
// relationship naming an unknown entity is skipped with a warning.
func (s *GraphDBStorage) SaveRelationships(ctx context.Context, rels []common.Relationship) error {
	if len(rels) == 0 {
		return nil
	}

	tx, err := s.conn.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	skipped := 0
	for _, r := range rels {
		label := store.NormalizeRelationshipLabel(r.Type)

		tag, err := tx.Exec(ctx, `
			INSERT INTO entity_relationships (from_entity_id, to_entity_id, rel_type, original_type)
			SELECT f.id, t.id, $1, $2
			FROM entities f, entities t
			WHERE f.name_key = $3 AND t.name_key = $4
			ON CONFLICT (from_entity_id, to_entity_id, rel_type) DO NOTHING`,
			label, strings.TrimSpace(r.Type), entityNameKey(r.Source), entityNameKey(r.Target),
		)
		if err != nil {
			return fmt.Errorf("failed to save relationship %q-[%s]->%q: %w", r.Source, label, r.Target, err)
		}
		if tag.RowsAffected() == 0 {
			// Either the edge already exists or an endpoint is unknown;
			// both are fine for an idempotent merge, but an unknown
			// endpoint is worth surfacing.
			skipped++
		}
	}

	if skipped > 0 {
		logger.Debug("[Graph] Relationships already present or unresolved", "skipped", skipped, "total", len(rels))
	}
	return tx.Commit(ctx)
}

// GetEntitiesForChunks returns the distinct entities mentioned in any of
// the given chunks.
func (s *GraphDBStorage) GetEntitiesForChunks(ctx context.Context, chunkIDs []string) ([]common.Entity, error) {
	if len(chunkIDs) == 0 {
		return nil, nil
	}

	rows, err := s.conn.Query(ctx, `
		SELECT DISTINCT e.name, e.type
		FROM entities e
		JOIN entity_mentions m ON m.entity_id = e.id
		JOIN chunks c ON c.id = m.chunk_id
		WHERE c.public_id = ANY($1)
		ORDER BY e.name`,
		chunkIDs,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load entities for chunks: %w", err)
	}
	defer rows.Close()

	var entities []common.Entity
	for rows.Next() {
		var e common.Entity
		if err := rows.Scan(&e.Name, &e.Type); err != nil {
			return nil, err
		}
		entities = append(entities, e)
	}
	return entities, rows.Err()
}
