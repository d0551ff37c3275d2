package steps

import (
	"context"
	"fmt"

	"github.com/aretw0/civicflow/pkg/domain"
	"github.com/aretw0/civicflow/pkg/ports"
)

// PlotMap hands the Rows to renderer and stores the artifact location under
// MapFile. Nothing is rendered for an empty result, when no renderer is set or
// when SkipMap is true.
func PlotMap(renderer ports.MapRenderer) domain.Step {
	return domain.StepFunc(func(ctx context.Context, c *domain.Context) (domain.Outcome, error) {
		rows := Rows.Or(c, nil)
		if renderer == nil || len(rows) == 0 || SkipMap.Or(c, false) {
			return domain.OutcomeDefault, nil
		}
		file, err := renderer.Render(ctx, Question.Or(c, "Query results"), rows)
		if err != nil {
			return "", fmt.Errorf("plot map: %w", err)
		}
		if file != "" {
			MapFile.Set(c, file)
		}
		return domain.OutcomeDefault, nil
	})
}
