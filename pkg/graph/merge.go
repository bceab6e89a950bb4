package graph

import (
	"strings"

	"docgraph/pkg/common"
)

// EntityKey is the case-insensitive identity of an entity name.
func EntityKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// relationshipKey identifies a directed edge regardless of verb casing.
func relationshipKey(r common.Relationship) string {
	return strings.TrimSpace(r.Source) + "\x00" +
		strings.TrimSpace(r.Target) + "\x00" +
		strings.ToLower(strings.TrimSpace(r.Type))
}

// MergeExtractions combines per-chunk extraction results into one entity
// and relationship set. Entities merge case-insensitively by name with
// the first occurrence keeping its casing and type; relationships
// deduplicate on (source, target, type). Insertion order is preserved in
// both outputs.
func MergeExtractions(results []common.ExtractionResult) ([]common.Entity, []common.Relationship) {
	var entities []common.Entity
	seenEntities := make(map[string]struct{})

	var relationships []common.Relationship
	seenRelationships := make(map[string]struct{})

	for _, res := range results {
		for _, e := range res.Entities {
			key := EntityKey(e.Name)
			if key == "" {
				continue
			}
			if _, ok := seenEntities[key]; ok {
				continue
			}
			seenEntities[key] = struct{}{}
			entities = append(entities, e)
		}

		for _, r := range res.Relationships {
			key := relationshipKey(r)
			if _, ok := seenRelationships[key]; ok {
				continue
			}
			seenRelationships[key] = struct{}{}
			relationships = append(relationships, r)
		}
	}

	return entities, relationships
}
