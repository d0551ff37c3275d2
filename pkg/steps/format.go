package steps

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/civicflow/pkg/domain"
)

const previewRows = 10

// FormatResults renders the outcome of RunQuery as text under FormattedOutput.
func FormatResults() domain.Step {
	return domain.StepFunc(func(ctx context.Context, c *domain.Context) (domain.Outcome, error) {
		if msg, failed := QueryError.Get(c); failed {
			FormattedOutput.Set(c, "Error: "+msg)
			return domain.OutcomeDefault, nil
		}
		rows, ok := Rows.Get(c)
		if !ok {
			FormattedOutput.Set(c, "Error: Unknown error")
			return domain.OutcomeDefault, nil
		}
		FormattedOutput.Set(c, FormatRows(rows))
		return domain.OutcomeDefault, nil
	})
}

// FormatRows lists the first ten rows, one per line.
func FormatRows(rows []domain.Row) string {
	if len(rows) == 0 {
		return "Query executed successfully but returned no results."
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "Query returned %d rows:", len(rows))
	for i, row := range rows {
		if i == previewRows {
			break
		}
		fmt.Fprintf(&sb, "\nRow %d: %s", i+1, formatRow(row))
	}
	if len(rows) > previewRows {
		fmt.Fprintf(&sb, "\n... and %d more rows", len(rows)-previewRows)
	}
	return sb.String()
}

func formatRow(row domain.Row) string {
	cols := columns([]domain.Row{row})
	parts := make([]string, len(cols))
	for i, col := range cols {
		parts[i] = fmt.Sprintf("%s: %v", col, row[col])
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// MarkdownTable renders rows as a markdown table. Columns are the sorted union of keys.
func MarkdownTable(rows []domain.Row) string {
	if len(rows) == 0 {
		return ""
	}
	cols := columns(rows)
	var sb strings.Builder
	sb.WriteString("| " + strings.Join(cols, " | ") + " |\n")
	sb.WriteString("|" + strings.Repeat(" --- |", len(cols)) + "\n")
	for _, row := range rows {
		cells := make([]string, len(cols))
		for i, col := range cols {
			if v, ok := row[col]; ok && v != nil {
				cells[i] = strings.ReplaceAll(fmt.Sprint(v), "|", `\|`)
			}
		}
		sb.WriteString("| " + strings.Join(cells, " | ") + " |\n")
	}
	return sb.String()
}

func columns(rows []domain.Row) []string {
	seen := make(map[string]struct{})
	var cols []string
	for _, row := range rows {
		for k := range row {
			if _, ok := seen[k]; !ok {
				seen[k] = struct{}{}
				cols = append(cols, k)
			}
		}
	}
	sort.Strings(cols)
	return cols
}
