package dsl

import (
	"context"

	"github.com/aretw0/civicflow/pkg/domain"
)

// StepBuilder provides a fluent API for configuring a step.
type StepBuilder struct {
	name  string
	step  domain.Step
	edges []domain.Transition
}

// Do sets the behavior of the step.
func (s *StepBuilder) Do(step domain.Step) *StepBuilder {
	s.step = step
	return s
}

// Func sets the behavior of the step from a plain function.
func (s *StepBuilder) Func(fn func(ctx context.Context, c *domain.Context) (domain.Outcome, error)) *StepBuilder {
	s.step = domain.StepFunc(fn)
	return s
}

// Go adds a transition taken on the default outcome.
func (s *StepBuilder) Go(target string) *StepBuilder {
	return s.On(domain.OutcomeDefault, target)
}

// On adds a transition taken when the step returns label.
func (s *StepBuilder) On(label domain.Outcome, target string) *StepBuilder {
	s.edges = append(s.edges, domain.Transition{From: s.name, To: target, Label: label.Normalize()})
	return s
}

// Name returns the step name.
func (s *StepBuilder) Name() string {
	return s.name
}
