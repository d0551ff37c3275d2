package steps

import (
	"context"
	"fmt"

	"github.com/aretw0/civicflow/pkg/domain"
	"github.com/aretw0/civicflow/pkg/ports"
)

// FetchSchema describes the table named under Table (or the whole public schema
// when none is set) and stores the description under Schema.
func FetchSchema(inspector ports.SchemaInspector) domain.Step {
	return domain.StepFunc(func(ctx context.Context, c *domain.Context) (domain.Outcome, error) {
		if inspector == nil {
			return "", fmt.Errorf("fetch schema: no schema inspector configured")
		}
		table := Table.Or(c, "")
		schema, err := inspector.Schema(ctx, table)
		if err != nil {
			return "", fmt.Errorf("fetch schema for %q: %w", table, err)
		}
		Schema.Set(c, schema)
		return domain.OutcomeDefault, nil
	})
}
