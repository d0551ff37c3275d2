package postgres

import (
	"context"
	"fmt"
	"strings"
)

const (
	maxSchemaTables  = 5
	maxSchemaColumns = 40
	maxSchemaBytes   = 2000
)

const columnsQuery = `
SELECT column_name, data_type
FROM information_schema.columns
WHERE table_schema = 'public' AND table_name = $1
ORDER BY ordinal_position
LIMIT $2`

const tablesQuery = `
SELECT table_name
FROM information_schema.tables
WHERE table_schema = 'public'
ORDER BY table_name
LIMIT $1`

// Schema describes table, or the first tables of the public schema when table
// is empty.
func (d *DB) Schema(ctx context.Context, table string) (string, error) {
	if table != "" {
		cols, err := d.columns(ctx, table, 0)
		if err != nil {
			return "", err
		}
		if len(cols) == 0 {
			return "", fmt.Errorf("table %q not found in public schema", table)
		}
		return FormatTable(table, cols), nil
	}

	rows, err := d.queryArgs(ctx, tablesQuery, maxSchemaTables)
	if err != nil {
		return "", err
	}
	lines := make([]string, 0, len(rows))
	for _, r := range rows {
		name := fmt.Sprint(r["table_name"])
		cols, err := d.columns(ctx, name, maxSchemaColumns)
		if err != nil {
			return "", err
		}
		lines = append(lines, FormatCompact(name, cols))
	}
	out := strings.Join(lines, "\n")
	if len(out) > maxSchemaBytes {
		out = out[:maxSchemaBytes]
	}
	return out, nil
}

// Column is one column of a table description.
type Column struct {
	Name string
	Type string
}

func (d *DB) columns(ctx context.Context, table string, limit int) ([]Column, error) {
	if limit <= 0 {
		limit = 1000
	}
	rows, err := d.queryArgs(ctx, columnsQuery, table, limit)
	if err != nil {
		return nil, err
	}
	cols := make([]Column, len(rows))
	for i, r := range rows {
		cols[i] = Column{Name: fmt.Sprint(r["column_name"]), Type: fmt.Sprint(r["data_type"])}
	}
	return cols, nil
}

// FormatTable renders a table as a bulleted column list.
func FormatTable(table string, cols []Column) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Table '%s' columns:", table)
	for _, c := range cols {
		fmt.Fprintf(&sb, "\n- %s (%s)", c.Name, c.Type)
	}
	return sb.String()
}

// FormatCompact renders a table on one line.
func FormatCompact(table string, cols []Column) string {
	parts := make([]string, len(cols))
	for i, c := range cols {
		parts[i] = c.Name + " " + c.Type
	}
	return fmt.Sprintf("TABLE %s(%s)", table, strings.Join(parts, ", "))
}
