package dsl

import (
	"errors"
	"fmt"

	"github.com/aretw0/civicflow/pkg/domain"
)

// Registrar is anything steps and transitions can be registered on.
// Both civicflow.Engine and the internal runtime engine satisfy it.
type Registrar interface {
	RegisterStep(name string, step domain.Step) error
	RegisterTransition(from, to string, label domain.Outcome) error
}

// Builder manages the flow construction.
type Builder struct {
	steps map[string]*StepBuilder
	order []string
}

// New creates a new flow builder.
func New() *Builder {
	return &Builder{
		steps: make(map[string]*StepBuilder),
	}
}

// Add declares a step in the flow.
// If the step already exists, it returns the existing builder.
func (b *Builder) Add(name string) *StepBuilder {
	if sb, ok := b.steps[name]; ok {
		return sb
	}
	sb := &StepBuilder{name: name}
	b.steps[name] = sb
	b.order = append(b.order, name)
	return sb
}

// Build registers every declared step, in declaration order, and then every
// transition on r. All failures are reported together.
func (b *Builder) Build(r Registrar) error {
	var errs []error
	for _, name := range b.order {
		sb := b.steps[name]
		if sb.step == nil {
			errs = append(errs, fmt.Errorf("step %q has no behavior: call Do", name))
			continue
		}
		if err := r.RegisterStep(name, sb.step); err != nil {
			errs = append(errs, err)
		}
	}
	for _, name := range b.order {
		for _, edge := range b.steps[name].edges {
			if err := r.RegisterTransition(name, edge.To, edge.Label); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// Chain declares a linear flow where each step moves to the next on the default
// outcome, in the order given.
func Chain(pairs ...Pair) *Builder {
	b := New()
	for i, p := range pairs {
		sb := b.Add(p.Name).Do(p.Step)
		if i+1 < len(pairs) {
			sb.Go(pairs[i+1].Name)
		}
	}
	return b
}

// Pair names a step for Chain.
type Pair struct {
	Name string
	Step domain.Step
}
