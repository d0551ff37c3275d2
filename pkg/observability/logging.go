package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/civicflow/pkg/domain"
)

// LoggingHooks logs every step and flow completion at info level.
func LoggingHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStepLeave: func(ctx context.Context, e *domain.StepEvent) {
			attrs := []any{"run_id", e.RunID, "step", e.Step, "outcome", e.Outcome, "duration", e.Duration}
			if e.Err != nil {
				logger.WarnContext(ctx, "step_leave", append(attrs, "error", e.Err)...)
				return
			}
			logger.InfoContext(ctx, "step_leave", attrs...)
		},
		OnFlowEnd: func(ctx context.Context, e *domain.FlowEvent) {
			logger.InfoContext(ctx, "flow_end",
				"run_id", e.RunID,
				"start", e.Start,
				"steps", len(e.Path),
				"duration", e.Duration,
				"result", Result(e.Err),
			)
		},
	}
}
