package sqlmap

import (
	"context"
	"fmt"
	"strings"

	pgxv5 "github.com/jackc/pgx/v5"
)

// sourceQuerier is the read surface needed on the relational source
// database. pgxpool.Pool and pgxmock both satisfy it.
type sourceQuerier interface {
	Query(ctx context.Context, sql string, args ...any) (pgxv5.Rows, error)
}

// ColumnSchema describes one column of a source table.
type ColumnSchema struct {
	Name     string
	DataType string
}

// TableSchema describes one source table with a few sample rows so the
// mapping model can see real values.
type TableSchema struct {
	Name       string
	Columns    []ColumnSchema
	SampleRows []map[string]any
}

const sampleRowCount = 3

// DescribeSchema introspects every base table in the public schema of
// the source database, including column types and up to three sample
// rows per table.
func DescribeSchema(ctx context.Context, conn sourceQuerier) ([]TableSchema, error) {
	rows, err := conn.Query(ctx, `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = 'public' AND table_type = 'BASE TABLE'
		ORDER BY table_name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}

	var tableNames []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			rows.Close()
			return nil, err
		}
		tableNames = append(tableNames, name)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	tables := make([]TableSchema, 0, len(tableNames))
	for _, name := range tableNames {
		table := TableSchema{Name: name}

		colRows, err := conn.Query(ctx, `
			SELECT column_name, data_type
			FROM information_schema.columns
			WHERE table_schema = 'public' AND table_name = $1
			ORDER BY ordinal_position`,
			name,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to describe table %s: %w", name, err)
		}
		for colRows.Next() {
			var col ColumnSchema
			if err := colRows.Scan(&col.Name, &col.DataType); err != nil {
				colRows.Close()
				return nil, err
			}
			table.Columns = append(table.Columns, col)
		}
		colRows.Close()
		if err := colRows.Err(); err != nil {
			return nil, err
		}

		samples, err := sampleRows(ctx, conn, name)
		if err != nil {
			return nil, err
		}
		table.SampleRows = samples

		tables = append(tables, table)
	}

	return tables, nil
}

func sampleRows(ctx context.Context, conn sourceQuerier, table string) ([]map[string]any, error) {
	rows, err := conn.Query(ctx, fmt.Sprintf(`SELECT * FROM %s LIMIT %d`, quoteIdent(table), sampleRowCount))
	if err != nil {
		return nil, fmt.Errorf("failed to sample table %s: %w", table, err)
	}
	defer rows.Close()

	var samples []map[string]any
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, err
		}
		sample := make(map[string]any, len(values))
		for i, fd := range rows.FieldDescriptions() {
			sample[fd.Name] = values[i]
		}
		samples = append(samples, sample)
	}
	return samples, rows.Err()
}

// quoteIdent quotes a Postgres identifier; table names come from
// information_schema but are still interpolated into SQL.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// FormatSchema renders the introspected schema as prompt text.
func FormatSchema(tables []TableSchema) string {
	var b strings.Builder
	for _, table := range tables {
		fmt.Fprintf(&b, "Table: %s\n", table.Name)
		for _, col := range table.Columns {
			fmt.Fprintf(&b, "  - %s (%s)\n", col.Name, col.DataType)
		}
		if len(table.SampleRows) > 0 {
			b.WriteString("  Sample rows:\n")
			for _, row := range table.SampleRows {
				parts := make([]string, 0, len(table.Columns))
				for _, col := range table.Columns {
					parts = append(parts, fmt.Sprintf("%s=%v", col.Name, row[col.Name]))
				}
				fmt.Fprintf(&b, "    %s\n", strings.Join(parts, ", "))
			}
		}
		b.WriteString("\n")
	}
	return strings.TrimSpace(b.String())
}
