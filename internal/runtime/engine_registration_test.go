package runtime_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/civicflow/internal/runtime"
	"github.com/aretw0/civicflow/pkg/domain"
)

func noop() domain.Step {
	return domain.StepFunc(func(ctx context.Context, c *domain.Context) (domain.Outcome, error) {
		return domain.OutcomeDefault, nil
	})
}

func TestRegisterStep_Errors(t *testing.T) {
	e := runtime.NewEngine()
	require.NoError(t, e.RegisterStep("A", noop()))

	tests := []struct {
		name    string
		step    string
		impl    domain.Step
		wantErr error
	}{
		{name: "duplicate", step: "A", impl: noop(), wantErr: domain.ErrDuplicateStep},
		{name: "empty name", step: "", impl: noop(), wantErr: domain.ErrConfiguration},
		{name: "nil step", step: "B", impl: nil, wantErr: domain.ErrConfiguration},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := e.RegisterStep(tt.step, tt.impl)
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrConfiguration)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestRegisterTransition_Errors(t *testing.T) {
	e := runtime.NewEngine()
	require.NoError(t, e.RegisterStep("A", noop()))
	require.NoError(t, e.RegisterStep("B", noop()))
	require.NoError(t, e.RegisterStep("C", noop()))
	require.NoError(t, e.RegisterTransition("A", "B", ""))

	t.Run("duplicate default label", func(t *testing.T) {
		err := e.RegisterTransition("A", "C", domain.OutcomeDefault)
		assert.ErrorIs(t, err, domain.ErrConfiguration)
		assert.ErrorIs(t, err, domain.ErrDuplicateTransition)
		assert.Contains(t, err.Error(), `"B"`)
	})

	t.Run("distinct label is accepted", func(t *testing.T) {
		assert.NoError(t, e.RegisterTransition("A", "C", "retry"))
	})

	t.Run("unregistered source", func(t *testing.T) {
		err := e.RegisterTransition("X", "B", "")
		assert.ErrorIs(t, err, domain.ErrConfiguration)
	})

	t.Run("stop is reserved", func(t *testing.T) {
		err := e.RegisterTransition("B", "C", domain.OutcomeStop)
		assert.ErrorIs(t, err, domain.ErrConfiguration)
	})

	t.Run("empty target", func(t *testing.T) {
		err := e.RegisterTransition("B", "", "")
		assert.ErrorIs(t, err, domain.ErrConfiguration)
	})
}

func TestExecute_DanglingTransition(t *testing.T) {
	e := runtime.NewEngine()
	require.NoError(t, e.RegisterStep("A", noop()))
	require.NoError(t, e.RegisterTransition("A", "missing", ""))

	c, err := e.Execute(context.Background(), nil, "A")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConfiguration)
	assert.ErrorIs(t, err, domain.ErrDanglingTransition)

	var cfgErr *domain.ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "A", cfgErr.Step)
	assert.Equal(t, "missing", cfgErr.Target)
	assert.Contains(t, err.Error(), "missing")
	assert.Equal(t, []string{"A"}, c.Path())
}

func TestValidate(t *testing.T) {
	e := runtime.NewEngine()
	require.NoError(t, e.RegisterStep("A", noop()))
	require.NoError(t, e.RegisterStep("B", noop()))
	require.NoError(t, e.RegisterTransition("A", "B", ""))
	assert.NoError(t, e.Validate())

	require.NoError(t, e.RegisterTransition("B", "ghost", ""))
	require.NoError(t, e.RegisterTransition("A", "phantom", "other"))

	err := e.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrDanglingTransition)
	assert.Contains(t, err.Error(), "ghost")
	assert.Contains(t, err.Error(), "phantom")
}

func TestInspect(t *testing.T) {
	e := runtime.NewEngine()
	require.NoError(t, e.RegisterStep("first", noop()))
	require.NoError(t, e.RegisterStep("second", noop()))
	require.NoError(t, e.RegisterTransition("first", "second", ""))

	desc := e.Inspect()
	assert.Equal(t, []string{"first", "second"}, desc.Steps)
	assert.Equal(t, []domain.Transition{{From: "first", To: "second", Label: domain.OutcomeDefault}}, desc.Transitions)
}

func TestRegistrationClosedAfterExecute(t *testing.T) {
	e := runtime.NewEngine()
	require.NoError(t, e.RegisterStep("A", noop()))

	_, err := e.Execute(context.Background(), nil, "A")
	require.NoError(t, err)

	err = e.RegisterStep("B", noop())
	assert.ErrorIs(t, err, domain.ErrRegistrationClosed)

	err = e.RegisterTransition("A", "A", "")
	assert.ErrorIs(t, err, domain.ErrRegistrationClosed)
}

func TestRegistrationRacingFirstExecute(t *testing.T) {
	for i := 0; i < 50; i++ {
		e := runtime.NewEngine()
		require.NoError(t, e.RegisterStep("A", noop()))

		var wg sync.WaitGroup
		errs := make(chan error, 1)
		wg.Add(1)
		go func() {
			defer wg.Done()
			for n := 0; ; n++ {
				err := e.RegisterStep(fmt.Sprintf("s%d", n), noop())
				if err != nil {
					errs <- err
					return
				}
			}
		}()

		_, err := e.Execute(context.Background(), nil, "A")
		require.NoError(t, err)
		sealed := len(e.Inspect().Steps)

		wg.Wait()
		assert.ErrorIs(t, <-errs, domain.ErrRegistrationClosed)
		assert.Equal(t, sealed, len(e.Inspect().Steps), "no step may be added once execution began")
	}
}

func TestUnknownStartDoesNotSeal(t *testing.T) {
	e := runtime.NewEngine()
	require.NoError(t, e.RegisterStep("A", noop()))

	_, err := e.Execute(context.Background(), nil, "nope")
	require.ErrorIs(t, err, domain.ErrUnknownStep)
	assert.NoError(t, e.RegisterStep("B", noop()))
}
