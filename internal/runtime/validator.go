package runtime

import (
	"errors"

	"github.com/aretw0/civicflow/pkg/domain"
)

// Validate reports every transition whose target is not a registered step.
// Execute detects the same problem lazily when the edge is followed; Validate
// lets tooling surface it before any run.
func (e *Engine) Validate() error {
	e.mu.RLock()
	defer e.mu.RUnlock()

	var errs []error
	for _, t := range e.edges {
		if _, ok := e.steps[t.To]; !ok {
			errs = append(errs, &domain.ConfigurationError{
				Step:   t.From,
				Target: t.To,
				Label:  t.Label,
				Err:    domain.ErrDanglingTransition,
			})
		}
	}
	return errors.Join(errs...)
}

// Inspect returns the registered steps, in registration order, and transitions.
func (e *Engine) Inspect() domain.FlowDescription {
	e.mu.RLock()
	defer e.mu.RUnlock()

	desc := domain.FlowDescription{
		Steps:       make([]string, len(e.order)),
		Transitions: make([]domain.Transition, len(e.edges)),
	}
	copy(desc.Steps, e.order)
	copy(desc.Transitions, e.edges)
	return desc
}
