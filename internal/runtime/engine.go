package runtime

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aretw0/civicflow/pkg/domain"
	"github.com/google/uuid"
)

// DefaultMaxSteps bounds a single walk when WithMaxSteps is not given.
const DefaultMaxSteps = 1000

type edgeKey struct {
	from  string
	label domain.Outcome
}

// Engine is the flow runner. Steps and transitions are registered once at setup;
// the first Execute closes registration so separate executions never observe a
// registry that changes underneath them.
type Engine struct {
	mu          sync.RWMutex
	steps       map[string]domain.Step
	order       []string
	transitions map[edgeKey]string
	edges       []domain.Transition
	sealed      atomic.Bool

	maxSteps    int
	stepTimeout time.Duration
	hooks       domain.LifecycleHooks
	logger      *slog.Logger
}

// NewEngine creates an empty engine.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{
		steps:       make(map[string]domain.Step),
		transitions: make(map[edgeKey]string),
		maxSteps:    DefaultMaxSteps,
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// RegisterStep adds a named step. Names are unique.
func (e *Engine) RegisterStep(name string, step domain.Step) error {
	if name == "" {
		return &domain.ConfigurationError{Err: fmt.Errorf("step name is empty")}
	}
	if step == nil {
		return &domain.ConfigurationError{Step: name, Err: fmt.Errorf("step behavior is nil")}
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.sealed.Load() {
		return &domain.ConfigurationError{Step: name, Err: domain.ErrRegistrationClosed}
	}
	if _, exists := e.steps[name]; exists {
		return &domain.ConfigurationError{Step: name, Err: domain.ErrDuplicateStep}
	}
	e.steps[name] = step
	e.order = append(e.order, name)
	return nil
}

// RegisterTransition adds a directed edge selected by label. An empty label means
// OutcomeDefault. The source step must already be registered; the target is only
// resolved when the edge is followed.
func (e *Engine) RegisterTransition(from, to string, label domain.Outcome) error {
	label = label.Normalize()
	if label == domain.OutcomeStop {
		return &domain.ConfigurationError{Step: from, Target: to, Label: label, Err: fmt.Errorf("outcome %q is reserved", domain.OutcomeStop)}
	}
	if to == "" {
		return &domain.ConfigurationError{Step: from, Label: label, Err: fmt.Errorf("transition target is empty")}
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.sealed.Load() {
		return &domain.ConfigurationError{Step: from, Target: to, Label: label, Err: domain.ErrRegistrationClosed}
	}
	if _, ok := e.steps[from]; !ok {
		return &domain.ConfigurationError{Step: from, Target: to, Label: label, Err: fmt.Errorf("source step is not registered")}
	}
	key := edgeKey{from: from, label: label}
	if existing, ok := e.transitions[key]; ok {
		return &domain.ConfigurationError{
			Step:   from,
			Target: to,
			Label:  label,
			Err:    fmt.Errorf("%w: already leads to %q", domain.ErrDuplicateTransition, existing),
		}
	}
	e.transitions[key] = to
	e.edges = append(e.edges, domain.Transition{From: from, To: to, Label: label})
	return nil
}

func (e *Engine) lookupStep(name string) (domain.Step, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	s, ok := e.steps[name]
	return s, ok
}

// seal closes registration once start is known to exist. It holds the write
// lock so no registration can complete after the first execution begins.
func (e *Engine) seal(start string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.steps[start]; !ok {
		return false
	}
	e.sealed.Store(true)
	return true
}

func (e *Engine) lookupTransition(from string, label domain.Outcome) (string, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	to, ok := e.transitions[edgeKey{from: from, label: label}]
	return to, ok
}

// Execute walks the flow from start, passing c to every step in turn. A nil c
// creates a fresh context. The returned context is c, holding every step's writes
// and the execution path under domain.ExecutionPathKey, also when an error is returned.
func (e *Engine) Execute(ctx context.Context, c *domain.Context, start string) (*domain.Context, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if c == nil {
		c = domain.NewContext(nil)
	}
	if !e.seal(start) {
		return c, &domain.UnknownStepError{Name: start}
	}

	runID := uuid.NewString()
	logger := e.logger.With("run_id", runID)
	began := time.Now()

	path, err := e.walk(ctx, logger, runID, c, start)
	c.SetPath(path)

	e.emitFlowEnd(ctx, runID, start, path, time.Since(began), err)
	if err != nil {
		logger.WarnContext(ctx, "flow halted", "start", start, "path", path, "error", err)
		return c, err
	}
	logger.DebugContext(ctx, "flow completed", "start", start, "path", path)
	return c, nil
}

func (e *Engine) walk(ctx context.Context, logger *slog.Logger, runID string, c *domain.Context, start string) ([]string, error) {
	path := make([]string, 0, 8)
	current := start

	for {
		step, ok := e.lookupStep(current)
		if !ok {
			// Only reachable through an edge; the start step is checked by Execute.
			prev := path[len(path)-1]
			return path, &domain.ConfigurationError{Step: prev, Target: current, Err: domain.ErrDanglingTransition}
		}

		if len(path) >= e.maxSteps {
			return path, &domain.LoopLimitError{Limit: e.maxSteps, Next: current, Path: copyPath(path)}
		}

		if err := ctx.Err(); err != nil {
			return path, &domain.TimeoutError{Step: current, Path: copyPath(path), Err: err}
		}

		outcome, err := e.runStep(ctx, logger, runID, current, step, c, path)
		if err != nil {
			return path, err
		}
		path = append(path, current)

		if outcome == domain.OutcomeStop {
			logger.DebugContext(ctx, "step requested stop", "step", current)
			return path, nil
		}

		next, ok := e.lookupTransition(current, outcome)
		if !ok {
			return path, nil
		}
		current = next
	}
}

func (e *Engine) runStep(ctx context.Context, logger *slog.Logger, runID, name string, step domain.Step, c *domain.Context, path []string) (domain.Outcome, error) {
	stepCtx := ctx
	if e.stepTimeout > 0 {
		var cancel context.CancelFunc
		stepCtx, cancel = context.WithTimeout(ctx, e.stepTimeout)
		defer cancel()
	}

	e.emitStepEnter(ctx, runID, name)
	logger.DebugContext(ctx, "step enter", "step", name)
	began := time.Now()

	outcome, err := step.Run(stepCtx, c)
	outcome = outcome.Normalize()
	elapsed := time.Since(began)

	// Cancellation is cooperative: a step that ignores ctx runs to completion,
	// and its overrun is then reported as a timeout.
	if ctxErr := stepCtx.Err(); ctxErr != nil {
		e.emitStepLeave(ctx, runID, name, "", elapsed, ctxErr)
		return "", &domain.TimeoutError{Step: name, Path: copyPath(path), Err: ctxErr}
	}

	e.emitStepLeave(ctx, runID, name, outcome, elapsed, err)
	logger.DebugContext(ctx, "step leave", "step", name, "outcome", outcome, "duration", elapsed, "error", err)

	if err != nil {
		return "", &domain.StepExecutionError{Step: name, Err: err, Snapshot: c.Snapshot(), Path: copyPath(path)}
	}
	return outcome, nil
}

func copyPath(path []string) []string {
	out := make([]string, len(path))
	copy(out, path)
	return out
}
