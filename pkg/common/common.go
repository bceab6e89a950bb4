package common

import "time"

// Document is the root of ownership for the chunks produced from one
// ingested source. Documents are created once and never mutated.
type Document struct {
	ID        string    `json:"id"`
	Filename  string    `json:"filename"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Chunk is a bounded slice of a document's text, the unit of embedding
// and extraction. Seq is the explicit position within the document;
// consecutive sequence numbers are adjacent in the source text.
type Chunk struct {
	ID         string    `json:"id"`
	DocumentID string    `json:"document_id"`
	Seq        int       `json:"seq"`
	Text       string    `json:"text"`
	Embedding  []float32 `json:"-"`
}

// Entity is a node in the knowledge graph. Identity is the
// case-insensitive trimmed name; Name keeps the casing of the first
// occurrence.
type Entity struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Relationship is a directed, typed edge between two entities. Type is
// the free-form phrase produced by the extraction model; the storage
// layer normalizes it into a label and retains the phrase.
type Relationship struct {
	Source string `json:"from_entity"`
	Target string `json:"to_entity"`
	Type   string `json:"type"`
}

// ExtractionResult holds the filtered entities and relationships
// extracted from a single chunk. ChunkIndex binds the result to its
// chunk explicitly rather than by list position.
type ExtractionResult struct {
	ChunkIndex    int            `json:"chunk_index"`
	Entities      []Entity       `json:"entities"`
	Relationships []Relationship `json:"relationships"`
}

// IngestStats summarizes a completed document ingestion.
type IngestStats struct {
	TextLength         int `json:"text_length"`
	ChunksCount        int `json:"chunks_count"`
	EntitiesCount      int `json:"entities_count"`
	RelationshipsCount int `json:"relationships_count"`
}

// IngestResult is the typed outcome of one pipeline invocation. Unit-local
// failures (a page, a chunk) never surface here; only pipeline-wide
// preconditions produce Success=false.
type IngestResult struct {
	Success  bool         `json:"success"`
	DocID    string       `json:"doc_id"`
	Filename string       `json:"filename"`
	Stats    *IngestStats `json:"stats,omitempty"`
	Error    string       `json:"error,omitempty"`
}

// ScoredChunk is a vector-search hit: chunk text, cosine similarity and
// the filename of the owning document.
type ScoredChunk struct {
	ID       string  `json:"id"`
	Text     string  `json:"text"`
	Score    float64 `json:"score"`
	Document string  `json:"document"`
}

// RelationTriple is one (from, type, to) fact gathered by graph
// traversal. Type is the normalized label; Original the phrase the
// extraction model produced.
type RelationTriple struct {
	Source   string `json:"from_entity"`
	Target   string `json:"to_entity"`
	Type     string `json:"type"`
	Original string `json:"original_type,omitempty"`
}

// GraphRAGContext is the retrieval bundle handed to answer generation:
// top-k chunks by vector similarity, the entities mentioned in them, and
// the relationship facts reachable within the hop bound.
type GraphRAGContext struct {
	Chunks        []ScoredChunk    `json:"chunks"`
	Entities      []Entity         `json:"entities"`
	Relationships []RelationTriple `json:"relationships"`
}

// Empty reports whether the bundle contains nothing usable.
func (c GraphRAGContext) Empty() bool {
	return len(c.Chunks) == 0 && len(c.Entities) == 0 && len(c.Relationships) == 0
}

// ColumnMapping maps one relational column onto a node property.
type ColumnMapping struct {
	ColumnName         string `json:"column_name"`
	TargetProperty     string `json:"target_property"`
	EmbeddingCandidate bool   `json:"is_embedding_candidate"`
	PrimaryKey         bool   `json:"is_primary_key"`
}

// NodeMapping maps one source table onto a node label.
type NodeMapping struct {
	SourceTable string          `json:"source_table"`
	TargetLabel string          `json:"target_label"`
	Properties  []ColumnMapping `json:"properties"`
}

// RelationshipMapping describes an edge between two mapped tables joined
// on a shared key column pair.
type RelationshipMapping struct {
	SourceTable      string `json:"source_table"`
	SourceColumn     string `json:"source_column"`
	TargetTable      string `json:"target_table"`
	TargetColumn     string `json:"target_column"`
	RelationshipType string `json:"relationship_type"`
}

// GraphSchemaMapping is the model-proposed plan for loading a relational
// schema into the graph. It only drives the loader and is not persisted.
type GraphSchemaMapping struct {
	Nodes         []NodeMapping         `json:"nodes"`
	Relationships []RelationshipMapping `json:"relationships"`
}

// StructuredNode is a row loaded from a mapped relational table.
type StructuredNode struct {
	Label     string         `json:"label"`
	KeyProp   string         `json:"key_prop"`
	KeyValue  string         `json:"key_value"`
	Props     map[string]any `json:"props"`
	Embedding []float32      `json:"-"`
}
