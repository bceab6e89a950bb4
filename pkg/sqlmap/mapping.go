package sqlmap

import (
	"context"
	"fmt"
	"strings"

	"docgraph/pkg/ai"
	"docgraph/pkg/common"
	"docgraph/pkg/logger"
)

// ProposeMapping asks the model for a graph mapping of the introspected
// schema and drops any part of the proposal that references tables or
// columns the schema does not contain.
func ProposeMapping(ctx context.Context, aiClient ai.GraphAIClient, tables []TableSchema) (common.GraphSchemaMapping, error) {
	if len(tables) == 0 {
		return common.GraphSchemaMapping{}, fmt.Errorf("source schema has no tables")
	}

	var mapping common.GraphSchemaMapping
	err := aiClient.GenerateCompletionWithFormat(
		ctx,
		"graph_schema_mapping",
		"Property-graph mapping for a relational schema.",
		fmt.Sprintf(ai.SchemaMappingPrompt, FormatSchema(tables)),
		&mapping,
	)
	if err != nil {
		return common.GraphSchemaMapping{}, fmt.Errorf("mapping proposal failed: %w", err)
	}

	return sanitizeMapping(mapping, tables), nil
}

// sanitizeMapping removes node mappings for unknown tables, property
// mappings for unknown columns, and relationships whose endpoints are
// not mapped. The model proposal is advisory; the schema is the truth.
func sanitizeMapping(mapping common.GraphSchemaMapping, tables []TableSchema) common.GraphSchemaMapping {
	columnsByTable := make(map[string]map[string]struct{}, len(tables))
	for _, table := range tables {
		cols := make(map[string]struct{}, len(table.Columns))
		for _, col := range table.Columns {
			cols[col.Name] = struct{}{}
		}
		columnsByTable[table.Name] = cols
	}

	var out common.GraphSchemaMapping
	mappedTables := make(map[string]struct{})

	for _, node := range mapping.Nodes {
		cols, ok := columnsByTable[node.SourceTable]
		if !ok {
			logger.Warn("[SQLMap] Dropping node mapping for unknown table", "table", node.SourceTable)
			continue
		}
		if strings.TrimSpace(node.TargetLabel) == "" {
			logger.Warn("[SQLMap] Dropping node mapping without label", "table", node.SourceTable)
			continue
		}

		var props []common.ColumnMapping
		for _, prop := range node.Properties {
			if _, ok := cols[prop.ColumnName]; !ok {
				logger.Warn("[SQLMap] Dropping property for unknown column",
					"table", node.SourceTable, "column", prop.ColumnName)
				continue
			}
			if strings.TrimSpace(prop.TargetProperty) == "" {
				prop.TargetProperty = prop.ColumnName
			}
			props = append(props, prop)
		}
		if len(props) == 0 {
			logger.Warn("[SQLMap] Dropping node mapping with no usable columns", "table", node.SourceTable)
			continue
		}
		node.Properties = props
		out.Nodes = append(out.Nodes, node)
		mappedTables[node.SourceTable] = struct{}{}
	}

	for _, rel := range mapping.Relationships {
		if _, ok := mappedTables[rel.SourceTable]; !ok {
			logger.Warn("[SQLMap] Skipping relationship from unmapped table", "table", rel.SourceTable)
			continue
		}
		if _, ok := mappedTables[rel.TargetTable]; !ok {
			logger.Warn("[SQLMap] Skipping relationship to unmapped table", "table", rel.TargetTable)
			continue
		}
		if _, ok := columnsByTable[rel.SourceTable][rel.SourceColumn]; !ok {
			logger.Warn("[SQLMap] Skipping relationship with unknown source column",
				"table", rel.SourceTable, "column", rel.SourceColumn)
			continue
		}
		if _, ok := columnsByTable[rel.TargetTable][rel.TargetColumn]; !ok {
			logger.Warn("[SQLMap] Skipping relationship with unknown target column",
				"table", rel.TargetTable, "column", rel.TargetColumn)
			continue
		}
		if strings.TrimSpace(rel.RelationshipType) == "" {
			logger.Warn("[SQLMap] Skipping relationship without type",
				"table", rel.SourceTable, "target", rel.TargetTable)
			continue
		}
		out.Relationships = append(out.Relationships, rel)
	}

	return out
}
