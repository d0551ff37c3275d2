package domain

import "context"

// Outcome is the label a step returns to select its outgoing transition.
type Outcome string

const (
	// OutcomeDefault is used when a step returns an empty outcome.
	OutcomeDefault Outcome = "default"
	// OutcomeStop ends the execution regardless of registered transitions.
	OutcomeStop Outcome = "stop"
)

// Normalize maps the empty outcome to OutcomeDefault.
func (o Outcome) Normalize() Outcome {
	if o == "" {
		return OutcomeDefault
	}
	return o
}

// Step is a named unit of work. It reads what it needs from the context, performs
// its side-effects and writes its results back before returning an outcome.
type Step interface {
	Run(ctx context.Context, c *Context) (Outcome, error)
}

// StepFunc adapts an ordinary function to the Step interface.
type StepFunc func(ctx context.Context, c *Context) (Outcome, error)

// Run calls f(ctx, c).
func (f StepFunc) Run(ctx context.Context, c *Context) (Outcome, error) {
	return f(ctx, c)
}
