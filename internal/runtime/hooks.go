package runtime

import (
	"context"
	"time"

	"github.com/aretw0/civicflow/pkg/domain"
)

func (e *Engine) emitStepEnter(ctx context.Context, runID, step string) {
	if e.hooks.OnStepEnter == nil {
		return
	}
	e.hooks.OnStepEnter(ctx, &domain.StepEvent{
		EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventStepEnter, RunID: runID},
		Step:      step,
	})
}

func (e *Engine) emitStepLeave(ctx context.Context, runID, step string, outcome domain.Outcome, elapsed time.Duration, err error) {
	if e.hooks.OnStepLeave == nil {
		return
	}
	e.hooks.OnStepLeave(ctx, &domain.StepEvent{
		EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventStepLeave, RunID: runID},
		Step:      step,
		Outcome:   outcome,
		Duration:  elapsed,
		Err:       err,
	})
}

func (e *Engine) emitFlowEnd(ctx context.Context, runID, start string, path []string, elapsed time.Duration, err error) {
	if e.hooks.OnFlowEnd == nil {
		return
	}
	e.hooks.OnFlowEnd(ctx, &domain.FlowEvent{
		EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventFlowEnd, RunID: runID},
		Start:     start,
		Path:      copyPath(path),
		Duration:  elapsed,
		Err:       err,
	})
}
