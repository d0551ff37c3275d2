package runtime

import (
	"log/slog"
	"time"

	"github.com/aretw0/civicflow/pkg/domain"
)

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithMaxSteps caps the number of step invocations in one walk.
// Values below 1 keep the default.
func WithMaxSteps(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.maxSteps = n
		}
	}
}

// WithStepTimeout bounds each step invocation. Zero disables the per-step timeout.
func WithStepTimeout(d time.Duration) EngineOption {
	return func(e *Engine) {
		e.stepTimeout = d
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) EngineOption {
	return func(e *Engine) {
		e.hooks = e.hooks.Merge(hooks)
	}
}

// WithLogger sets the structured logger. A nil logger keeps the silent default.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}
