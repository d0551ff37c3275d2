package ports

import (
	"context"

	"github.com/aretw0/civicflow/pkg/domain"
)

// MapRenderer writes a map of rows that carry coordinates.
type MapRenderer interface {
	// Render returns the location of the produced artifact, or "" when the rows
	// hold no usable coordinates.
	Render(ctx context.Context, title string, rows []domain.Row) (string, error)
}
