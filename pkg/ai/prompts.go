package ai

// ExtractPrompt instructs the model to extract entities and relationships
// from one chunk. Format arguments: entity type list, entity type list.
const ExtractPrompt = `
# Task Context
You are tasked with extracting structured entity and relationship information from a text chunk. You are given the chunk to analyze plus optional surrounding context from the neighboring chunks.

# Detailed Task Description & Rules
- Extract entities and relationships ONLY from the section marked [CURRENT CHUNK TO ANALYZE].
- Use the [PREVIOUS CONTEXT] and [NEXT CONTEXT] sections only to resolve references, pronouns, and implicit connections. If the current chunk refers to something named in context (e.g. "this mechanism"), use the full proper name.

## Entity Extraction
1. Identify all entities of the types [%s].
2. For each entity provide:
   - name: the entity's proper name. Must be at least 3 characters. Never emit generic terms ("system", "method", "process"), standalone numbers, or acronyms that the text does not explain.
   - type: one of the provided types [%s].

## Relationship Extraction
1. Identify directed relationships between the extracted entities.
2. For each relationship provide:
   - from_entity and to_entity: names that BOTH appear in your extracted entity list.
   - type: a specific verb phrase describing the connection (e.g. "prevents", "issued by", "settles on"). Never use vague verbs like "related", "connected", "uses" or "has".

# Examples
[PREVIOUS CONTEXT]: "Bitcoin uses Proof-of-Work consensus..."
[CURRENT CHUNK TO ANALYZE]: "This mechanism prevents double-spending by requiring computational work."
[NEXT CONTEXT]: "The network validates each transaction..."

Extract:
- "Proof-of-Work" (named in context, referenced as "This mechanism")
- "Double-Spending"
- Relationship: "Proof-of-Work" -[prevents]-> "Double-Spending"

# Output Formatting
Return JSON only:
{
  "entities": [{"name": "...", "type": "..."}],
  "relationships": [{"from_entity": "...", "to_entity": "...", "type": "..."}]
}
`

// ChunkPrompt asks the model to group numbered sentences into topically
// coherent chunks. Format arguments: maximum tokens per chunk, numbered
// sentence list.
const ChunkPrompt = `
# Task Context
You split a document into semantically coherent chunks for retrieval. You are given the document as a numbered list of sentences.

# Detailed Task Description & Rules
- Group consecutive sentences by topic: a chunk should cover one coherent topic or narrative step.
- Keep every chunk under roughly %d tokens; prefer splitting at clear topic boundaries.
- Every sentence index must appear in exactly one chunk, in the original order, with no gaps and no overlaps.
- "end" is exclusive: the chunk covers sentences [start, end).

# Background Data
Sentences:
%s

# Output Formatting
Return JSON only:
{
  "chunks": [{"start": 0, "end": 4}, {"start": 4, "end": 9}]
}
`

// AnswerPrompt grounds answer generation in the retrieval bundle. Format
// arguments: chunk context, entity list, relationship facts, question.
const AnswerPrompt = `
# Task Context
You answer questions about documents stored in a knowledge graph. You are given retrieved text passages, the entities mentioned in them, and relationship facts connecting those entities.

# Detailed Task Description & Rules
- Answer ONLY from the provided context. Do not use outside knowledge and do not invent facts.
- If the context does not contain enough information to answer, say so explicitly instead of guessing.
- Prefer the text passages for detail; use the relationship facts to connect information across passages.

# Background Data
## Text passages
%s

## Entities
%s

## Relationship facts
%s

# Immediate Task
Question: %s
`

// SchemaMappingPrompt asks the model to propose a graph mapping for a
// relational schema. Format argument: schema summary with sample rows.
const SchemaMappingPrompt = `
# Task Context
You design a property-graph mapping for a relational database schema. You are given every table with its columns, types and a few sample rows.

# Detailed Task Description & Rules
- Map each table that represents a real-world entity to a node label (singular, PascalCase).
- Map columns to node properties (snake_case); mark the primary key column with is_primary_key.
- Mark free-text columns that would benefit from semantic search (names, titles, descriptions) with is_embedding_candidate. Never flag numeric, date or id columns.
- Propose relationships for foreign-key columns and for column pairs that clearly share values across tables (soft links). Use a specific UPPER_SNAKE_CASE relationship_type (e.g. PLACED_ORDER, LOCATED_IN).
- Only reference tables and columns that exist in the schema.

# Background Data
%s

# Output Formatting
Return JSON only, matching:
{
  "nodes": [{"source_table": "...", "target_label": "...", "properties": [{"column_name": "...", "target_property": "...", "is_embedding_candidate": false, "is_primary_key": false}]}],
  "relationships": [{"source_table": "...", "source_column": "...", "target_table": "...", "target_column": "...", "relationship_type": "..."}]
}
`

// NoContextPrompt is used when retrieval produced an empty bundle.
// Format argument: the user question.
const NoContextPrompt = `
The knowledge graph contains no information relevant to the following question. Reply briefly, in the language of the question, that you cannot answer it from the stored documents. Do not attempt an answer.

Question: %s
`
