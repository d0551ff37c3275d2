package ports

import (
	"context"

	"github.com/aretw0/civicflow/pkg/domain"
)

// QueryRunner executes SQL and returns every row.
// Failures are reported as *domain.QueryError.
type QueryRunner interface {
	Query(ctx context.Context, sql string) ([]domain.Row, error)
}

// SchemaInspector describes database structure for prompt building.
type SchemaInspector interface {
	// Schema returns a textual description of table, or of every table in the
	// public schema when table is empty.
	Schema(ctx context.Context, table string) (string, error)
}
