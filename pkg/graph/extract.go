package graph

import (
	"context"
	"fmt"
	"strings"

	"docgraph/pkg/ai"
	"docgraph/pkg/common"
)

type extractEntity struct {
	Name string `json:"name" jsonschema_description:"Proper name of the entity, at least 3 characters"`
	Type string `json:"type" jsonschema_description:"One of the provided entity types"`
}

type extractRelationship struct {
	FromEntity string `json:"from_entity" jsonschema_description:"Name of the source entity, present in the entity list"`
	ToEntity   string `json:"to_entity" jsonschema_description:"Name of the target entity, present in the entity list"`
	Type       string `json:"type" jsonschema_description:"Specific verb phrase describing the directed connection"`
}

type extractResponse struct {
	Entities      []extractEntity       `json:"entities" jsonschema_description:"Entities identified in the current chunk"`
	Relationships []extractRelationship `json:"relationships" jsonschema_description:"Directed relationships between the extracted entities"`
}

// extractFromChunk extracts entities and relationships from chunks[idx],
// giving the model a bounded window of the neighboring chunks so it can
// resolve references that cross chunk boundaries. Any failure yields an
// empty result for this chunk; the caller logs and continues.
func (g *GraphClient) extractFromChunk(
	ctx context.Context,
	chunks []string,
	idx int,
) (common.ExtractionResult, error) {
	result := common.ExtractionResult{ChunkIndex: idx}

	var prompt strings.Builder
	if idx > 0 {
		prompt.WriteString("[PREVIOUS CONTEXT]\n")
		prompt.WriteString(tailRunes(chunks[idx-1], g.contextWindow))
		prompt.WriteString("\n\n")
	}
	prompt.WriteString("[CURRENT CHUNK TO ANALYZE]\n")
	prompt.WriteString(chunks[idx])
	if idx+1 < len(chunks) {
		prompt.WriteString("\n\n[NEXT CONTEXT]\n")
		prompt.WriteString(headRunes(chunks[idx+1], g.contextWindow))
	}

	types := strings.Join(g.entityTypes, ",")
	systemPrompt := fmt.Sprintf(ai.ExtractPrompt, types, types)

	var res extractResponse
	err := g.aiClient.GenerateCompletionWithFormat(
		ctx,
		"extract_entities_and_relationships",
		"Extract entities and relationships from a document chunk.",
		prompt.String(),
		&res,
		ai.WithSystemPrompts(systemPrompt),
	)
	if err != nil {
		return result, err
	}

	result.Entities, result.Relationships = filterExtraction(res)
	return result, nil
}

// tailRunes returns the last n runes of s.
func tailRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[len(runes)-n:])
}

// headRunes returns the first n runes of s.
func headRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
