package dsl

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/civicflow/internal/runtime"
	"github.com/aretw0/civicflow/pkg/domain"
)

func pass(ctx context.Context, c *domain.Context) (domain.Outcome, error) {
	return domain.OutcomeDefault, nil
}

func TestBuilder_SimpleFlow(t *testing.T) {
	b := New()
	b.Add("start").Func(pass).Go("middle")
	b.Add("middle").Func(func(ctx context.Context, c *domain.Context) (domain.Outcome, error) {
		return "done", nil
	}).On("done", "end")
	b.Add("end").Func(pass)

	eng := runtime.NewEngine()
	if err := b.Build(eng); err != nil {
		t.Fatalf("Build() failed: %v", err)
	}

	desc := eng.Inspect()
	if len(desc.Steps) != 3 || desc.Steps[0] != "start" || desc.Steps[2] != "end" {
		t.Errorf("Unexpected steps: %v", desc.Steps)
	}
	if len(desc.Transitions) != 2 {
		t.Fatalf("Expected 2 transitions, got %d", len(desc.Transitions))
	}
	if desc.Transitions[1].Label != "done" {
		t.Errorf("Expected label 'done', got '%s'", desc.Transitions[1].Label)
	}

	c, err := eng.Execute(context.Background(), nil, "start")
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if got := c.Path(); len(got) != 3 {
		t.Errorf("Expected path of 3 steps, got %v", got)
	}
}

func TestBuilder_AddIsIdempotent(t *testing.T) {
	b := New()
	first := b.Add("a")
	second := b.Add("a")
	if first != second {
		t.Error("Expected Add to return the existing builder")
	}
}

func TestBuilder_MissingBehavior(t *testing.T) {
	b := New()
	b.Add("a").Go("b")
	b.Add("b").Func(pass)

	err := b.Build(runtime.NewEngine())
	if err == nil {
		t.Fatal("Expected error for step without behavior")
	}
}

func TestBuilder_ReportsRegistrarErrors(t *testing.T) {
	b := New()
	b.Add("a").Func(pass).Go("b").Go("c")
	b.Add("b").Func(pass)
	b.Add("c").Func(pass)

	err := b.Build(runtime.NewEngine())
	if err == nil {
		t.Fatal("Expected duplicate transition error")
	}
	if !errors.Is(err, domain.ErrDuplicateTransition) {
		t.Errorf("Expected ErrDuplicateTransition, got %v", err)
	}
}

func TestChain(t *testing.T) {
	var seen []string
	mk := func(name string) domain.Step {
		return domain.StepFunc(func(ctx context.Context, c *domain.Context) (domain.Outcome, error) {
			seen = append(seen, name)
			return "", nil
		})
	}
	eng := runtime.NewEngine()
	if err := Chain(Pair{"x", mk("x")}, Pair{"y", mk("y")}, Pair{"z", mk("z")}).Build(eng); err != nil {
		t.Fatal(err)
	}
	if _, err := eng.Execute(context.Background(), nil, "x"); err != nil {
		t.Fatal(err)
	}
	if len(seen) != 3 || seen[2] != "z" {
		t.Errorf("Unexpected order: %v", seen)
	}
}
