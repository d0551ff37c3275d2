package civicflow

import (
	"context"
	"log/slog"
	"time"

	"github.com/aretw0/civicflow/internal/runtime"
	"github.com/aretw0/civicflow/pkg/domain"
)

// Version is the release of the module, reported by the CLI and the HTTP/MCP servers.
const Version = "0.4.0"

// Engine is the high-level entry point for the civicflow library.
// It wraps the internal runtime and provides a simplified API for consumers.
type Engine struct {
	runtime *runtime.Engine
	Name    string
}

// Option defines a functional option for configuring the Engine.
type Option func(*config)

type config struct {
	name    string
	runtime []runtime.EngineOption
}

// WithName labels the flow for rendering and logs.
func WithName(name string) Option {
	return func(c *config) {
		c.name = name
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(c *config) {
		c.runtime = append(c.runtime, runtime.WithLifecycleHooks(hooks))
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.runtime = append(c.runtime, runtime.WithLogger(logger))
	}
}

// WithMaxSteps caps the number of step invocations per execution (default 1000).
func WithMaxSteps(n int) Option {
	return func(c *config) {
		c.runtime = append(c.runtime, runtime.WithMaxSteps(n))
	}
}

// WithStepTimeout bounds every individual step invocation.
func WithStepTimeout(d time.Duration) Option {
	return func(c *config) {
		c.runtime = append(c.runtime, runtime.WithStepTimeout(d))
	}
}

// New creates an empty flow engine.
func New(opts ...Option) *Engine {
	cfg := &config{}
	for _, opt := range opts {
		opt(cfg)
	}
	return &Engine{
		runtime: runtime.NewEngine(cfg.runtime...),
		Name:    cfg.name,
	}
}

// RegisterStep adds a named step.
func (e *Engine) RegisterStep(name string, step domain.Step) error {
	return e.runtime.RegisterStep(name, step)
}

// RegisterTransition adds an edge from one step to another, selected by label.
func (e *Engine) RegisterTransition(from, to string, label domain.Outcome) error {
	return e.runtime.RegisterTransition(from, to, label)
}

// Execute runs the flow from start. See runtime.Engine.Execute.
func (e *Engine) Execute(ctx context.Context, c *domain.Context, start string) (*domain.Context, error) {
	return e.runtime.Execute(ctx, c, start)
}

// Validate reports transitions that point at unregistered steps.
func (e *Engine) Validate() error {
	return e.runtime.Validate()
}

// Inspect describes the registered flow.
func (e *Engine) Inspect() domain.FlowDescription {
	desc := e.runtime.Inspect()
	desc.Name = e.Name
	return desc
}
