package sqlmap

import (
	"context"
	"fmt"
	"strings"

	"docgraph/pkg/ai"
	"docgraph/pkg/common"
	"docgraph/pkg/logger"
	"docgraph/pkg/store"
)

const loadBatchSize = 100

// Mapper loads a relational source database into structured graph nodes
// and edges, following a model-proposed schema mapping.
//
// A Mapper should be created using NewMapper.
type Mapper struct {
	aiClient  ai.GraphAIClient
	storage   store.GraphStorage
	source    sourceQuerier
	embedDim  int
	batchSize int
}

// NewMapperParams defines the configuration for creating a Mapper.
// Source is the relational database to load from; Storage receives the
// resulting graph.
type NewMapperParams struct {
	AIClient  ai.GraphAIClient
	Storage   store.GraphStorage
	Source    sourceQuerier
	EmbedDim  int
	BatchSize int
}

// NewMapper creates a Mapper configured with the provided parameters.
func NewMapper(params NewMapperParams) *Mapper {
	embedDim := params.EmbedDim
	if embedDim <= 0 {
		embedDim = 1536
	}
	batchSize := params.BatchSize
	if batchSize <= 0 {
		batchSize = loadBatchSize
	}
	return &Mapper{
		aiClient:  params.AIClient,
		storage:   params.Storage,
		source:    params.Source,
		embedDim:  embedDim,
		batchSize: batchSize,
	}
}

// LoadStats summarizes one structured load run.
type LoadStats struct {
	TablesLoaded int   `json:"tables_loaded"`
	NodesLoaded  int   `json:"nodes_loaded"`
	EdgesLinked  int64 `json:"edges_linked"`
}

// Load introspects the source schema, obtains a mapping proposal and
// loads every mapped table in row batches, then links nodes through the
// proposed equality joins.
func (m *Mapper) Load(ctx context.Context) (LoadStats, error) {
	tables, err := DescribeSchema(ctx, m.source)
	if err != nil {
		return LoadStats{}, err
	}

	mapping, err := ProposeMapping(ctx, m.aiClient, tables)
	if err != nil {
		return LoadStats{}, err
	}
	if len(mapping.Nodes) == 0 {
		return LoadStats{}, fmt.Errorf("mapping proposal contains no usable node mappings")
	}

	return m.LoadWithMapping(ctx, mapping)
}

// LoadWithMapping runs the load for a given mapping. Mappings can come
// from outside the proposal path, so node mappings without a table,
// label or any properties are skipped rather than trusted.
func (m *Mapper) LoadWithMapping(ctx context.Context, mapping common.GraphSchemaMapping) (LoadStats, error) {
	var stats LoadStats

	for _, node := range mapping.Nodes {
		if node.SourceTable == "" || node.TargetLabel == "" || len(node.Properties) == 0 {
			logger.Warn("[SQLMap] Skipping incomplete node mapping",
				"table", node.SourceTable, "label", node.TargetLabel)
			continue
		}
		loaded, err := m.loadTable(ctx, node)
		if err != nil {
			return stats, fmt.Errorf("failed to load table %s: %w", node.SourceTable, err)
		}
		stats.TablesLoaded++
		stats.NodesLoaded += loaded
	}

	for _, rel := range mapping.Relationships {
		fromNode := nodeMappingFor(mapping, rel.SourceTable)
		toNode := nodeMappingFor(mapping, rel.TargetTable)
		if fromNode == nil || toNode == nil {
			logger.Warn("[SQLMap] Skipping relationship between unmapped tables",
				"from", rel.SourceTable, "to", rel.TargetTable)
			continue
		}
		fromProp := propertyFor(fromNode, rel.SourceColumn)
		toProp := propertyFor(toNode, rel.TargetColumn)
		if fromProp == "" || toProp == "" {
			logger.Warn("[SQLMap] Skipping relationship with unmapped join column",
				"from", rel.SourceTable, "from_column", rel.SourceColumn,
				"to", rel.TargetTable, "to_column", rel.TargetColumn)
			continue
		}

		relType := store.NormalizeRelationshipLabel(rel.RelationshipType)
		edges, err := m.storage.LinkStructuredNodes(ctx, fromNode.TargetLabel, fromProp, toNode.TargetLabel, toProp, relType)
		if err != nil {
			return stats, fmt.Errorf("failed to link %s to %s: %w", rel.SourceTable, rel.TargetTable, err)
		}
		stats.EdgesLinked += edges
	}

	logger.Info("[SQLMap] Structured load completed",
		"tables", stats.TablesLoaded,
		"nodes", stats.NodesLoaded,
		"edges", stats.EdgesLinked,
	)
	return stats, nil
}

// loadTable streams one table and upserts its rows as structured nodes
// in batches.
func (m *Mapper) loadTable(ctx context.Context, node common.NodeMapping) (int, error) {
	keyProp := resolveKeyProperty(node)

	columns := make([]string, len(node.Properties))
	for i, prop := range node.Properties {
		columns[i] = quoteIdent(prop.ColumnName)
	}

	rows, err := m.source.Query(ctx, fmt.Sprintf(
		`SELECT %s FROM %s`,
		strings.Join(columns, ", "), quoteIdent(node.SourceTable),
	))
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	loaded := 0
	batch := make([]common.StructuredNode, 0, m.batchSize)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := m.embedBatch(ctx, node, batch); err != nil {
			return err
		}
		if err := m.storage.UpsertStructuredNodes(ctx, batch); err != nil {
			return err
		}
		loaded += len(batch)
		batch = batch[:0]
		return nil
	}

	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return loaded, err
		}

		props := make(map[string]any, len(node.Properties))
		for i, prop := range node.Properties {
			props[prop.TargetProperty] = values[i]
		}

		keyValue := fmt.Sprint(props[keyProp])
		if keyValue == "" || keyValue == "<nil>" {
			logger.Warn("[SQLMap] Skipping row without key value",
				"table", node.SourceTable, "key", keyProp)
			continue
		}

		batch = append(batch, common.StructuredNode{
			Label:    node.TargetLabel,
			KeyProp:  keyProp,
			KeyValue: keyValue,
			Props:    props,
		})
		if len(batch) >= m.batchSize {
			if err := flush(); err != nil {
				return loaded, err
			}
		}
	}
	if err := rows.Err(); err != nil {
		return loaded, err
	}
	if err := flush(); err != nil {
		return loaded, err
	}

	return loaded, nil
}

// embedBatch computes embeddings for the nodes of one batch from their
// embedding-flagged properties. Nodes with no flagged text keep a nil
// embedding.
func (m *Mapper) embedBatch(ctx context.Context, node common.NodeMapping, batch []common.StructuredNode) error {
	var flagged []common.ColumnMapping
	for _, prop := range node.Properties {
		if prop.EmbeddingCandidate {
			flagged = append(flagged, prop)
		}
	}
	if len(flagged) == 0 {
		return nil
	}

	texts := make([]string, len(batch))
	for i, n := range batch {
		parts := make([]string, 0, len(flagged))
		for _, prop := range flagged {
			value := n.Props[prop.TargetProperty]
			if value == nil {
				continue
			}
			text := strings.TrimSpace(fmt.Sprint(value))
			if text == "" {
				continue
			}
			parts = append(parts, fmt.Sprintf("%s: %s", prop.TargetProperty, text))
		}
		texts[i] = strings.Join(parts, "\n")
	}

	vectors, err := ai.EmbedTexts(ctx, m.aiClient, texts, m.embedDim)
	if err != nil {
		return err
	}
	for i := range batch {
		if texts[i] == "" {
			continue
		}
		batch[i].Embedding = vectors[i]
	}
	return nil
}

// resolveKeyProperty picks the node key: the flagged primary key column,
// else a column named id, else the first mapped column.
func resolveKeyProperty(node common.NodeMapping) string {
	for _, prop := range node.Properties {
		if prop.PrimaryKey {
			return prop.TargetProperty
		}
	}
	for _, prop := range node.Properties {
		if strings.EqualFold(prop.ColumnName, "id") {
			return prop.TargetProperty
		}
	}
	return node.Properties[0].TargetProperty
}

func nodeMappingFor(mapping common.GraphSchemaMapping, table string) *common.NodeMapping {
	for i := range mapping.Nodes {
		if mapping.Nodes[i].SourceTable == table {
			return &mapping.Nodes[i]
		}
	}
	return nil
}

func propertyFor(node *common.NodeMapping, column string) string {
	for _, prop := range node.Properties {
		if prop.ColumnName == column {
			return prop.TargetProperty
		}
	}
	return ""
}
