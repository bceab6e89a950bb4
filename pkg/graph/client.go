package graph

import (
	"docgraph/pkg/ai"
	"docgraph/pkg/chunk"
)

const defaultContextWindow = 500

var defaultEntityTypes = []string{
	"ORGANIZATION", "PERSON", "LOCATION", "CONCEPT", "TECHNOLOGY", "DATE", "PRODUCT", "EVENT",
}

// GraphClient runs the document ingestion pipeline: text extraction,
// chunking, embedding, per-chunk entity extraction and cross-chunk
// merging, persisting the result through a GraphStorage.
//
// A GraphClient should be created using NewGraphClient.
type GraphClient struct {
	aiClient      ai.GraphAIClient
	chunker       *chunk.Chunker
	embedDim      int
	entityTypes   []string
	contextWindow int
}

// NewGraphClientParams defines the configuration parameters for creating
// a new GraphClient.
//
// EmbedDim is the vector dimensionality every stored embedding must
// have. EntityTypes constrains extraction; empty selects the defaults.
// ContextWindow is the number of characters of neighboring chunk text
// shown to the extraction model.
type NewGraphClientParams struct {
	AIClient      ai.GraphAIClient
	Chunker       *chunk.Chunker
	EmbedDim      int
	EntityTypes   []string
	ContextWindow int
}

// NewGraphClient creates and returns a new GraphClient configured with
// the provided parameters.
func NewGraphClient(params NewGraphClientParams) *GraphClient {
	entityTypes := params.EntityTypes
	if len(entityTypes) == 0 {
		entityTypes = defaultEntityTypes
	}
	contextWindow := params.ContextWindow
	if contextWindow <= 0 {
		contextWindow = defaultContextWindow
	}
	embedDim := params.EmbedDim
	if embedDim <= 0 {
		embedDim = 1536
	}
	return &GraphClient{
		aiClient:      params.AIClient,
		chunker:       params.Chunker,
		embedDim:      embedDim,
		entityTypes:   entityTypes,
		contextWindow: contextWindow,
	}
}
