package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrConfiguration classifies every registration or wiring mistake.
	ErrConfiguration = errors.New("flow configuration error")
	// ErrDuplicateStep is returned when a step name is registered twice.
	ErrDuplicateStep = errors.New("duplicate step")
	// ErrDuplicateTransition is returned when (from, label) already has an edge.
	ErrDuplicateTransition = errors.New("duplicate transition")
	// ErrDanglingTransition is returned when an edge targets an unregistered step.
	ErrDanglingTransition = errors.New("transition targets unregistered step")
	// ErrRegistrationClosed is returned when registering after the first execution.
	ErrRegistrationClosed = errors.New("registration closed after first execution")

	// ErrUnknownStep is returned when execution starts at an unregistered step.
	ErrUnknownStep = errors.New("unknown step")
	// ErrStepFailed is returned when a step's behavior fails.
	ErrStepFailed = errors.New("step failed")
	// ErrLoopLimit is returned when an execution exceeds its step cap.
	ErrLoopLimit = errors.New("flow step limit exceeded")
	// ErrTimeout is returned when a deadline or cancellation interrupts an execution.
	ErrTimeout = errors.New("flow interrupted")

	// ErrGeneration classifies text-generation failures.
	ErrGeneration = errors.New("text generation failed")
	// ErrQuery classifies relational query failures.
	ErrQuery = errors.New("query failed")
)

// ConfigurationError reports a bad registration or an edge pointing nowhere.
type ConfigurationError struct {
	Step   string
	Target string
	Label  Outcome
	Err    error // one of the ErrDuplicate*/ErrDangling*/ErrRegistrationClosed sentinels, or a plain reason
}

func (e *ConfigurationError) Error() string {
	var sb strings.Builder
	sb.WriteString("configuration error")
	if e.Step != "" {
		fmt.Fprintf(&sb, " at step %q", e.Step)
	}
	if e.Target != "" {
		fmt.Fprintf(&sb, " -[%s]-> %q", e.Label.Normalize(), e.Target)
	}
	if e.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Err.Error())
	}
	return sb.String()
}

// Unwrap exposes both ErrConfiguration and the specific cause to errors.Is.
func (e *ConfigurationError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrConfiguration}
	}
	return []error{ErrConfiguration, e.Err}
}

// UnknownStepError is returned when execution is asked to start at a missing step.
type UnknownStepError struct {
	Name string
}

func (e *UnknownStepError) Error() string {
	return fmt.Sprintf("unknown step %q", e.Name)
}

func (e *UnknownStepError) Unwrap() error { return ErrUnknownStep }

// StepExecutionError wraps the failure of a step together with the context state
// at the point of failure.
type StepExecutionError struct {
	Step     string
	Err      error
	Snapshot map[string]any
	Path     []string
}

func (e *StepExecutionError) Error() string {
	return fmt.Sprintf("step %q failed: %v (path: %s)", e.Step, e.Err, strings.Join(e.Path, " -> "))
}

func (e *StepExecutionError) Unwrap() []error {
	return []error{ErrStepFailed, e.Err}
}

// LoopLimitError is returned when a walk would exceed its configured step cap.
type LoopLimitError struct {
	Limit int
	Next  string
	Path  []string
}

func (e *LoopLimitError) Error() string {
	return fmt.Sprintf("flow exceeded %d steps before running %q", e.Limit, e.Next)
}

func (e *LoopLimitError) Unwrap() error { return ErrLoopLimit }

// TimeoutError is returned when the overall deadline, a per-step timeout or a
// cancellation interrupts a walk. Path holds the steps completed so far.
type TimeoutError struct {
	Step string
	Path []string
	Err  error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("flow interrupted at step %q after %d steps: %v", e.Step, len(e.Path), e.Err)
}

func (e *TimeoutError) Unwrap() []error {
	return []error{ErrTimeout, e.Err}
}

// GenerationError is returned by text-generation collaborators.
type GenerationError struct {
	Model string
	Err   error
}

func (e *GenerationError) Error() string {
	if e.Model == "" {
		return fmt.Sprintf("generation failed: %v", e.Err)
	}
	return fmt.Sprintf("generation with %s failed: %v", e.Model, e.Err)
}

func (e *GenerationError) Unwrap() []error {
	return []error{ErrGeneration, e.Err}
}

// QueryError is returned by relational query collaborators.
type QueryError struct {
	Query string
	Err   error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("query failed: %v", e.Err)
}

func (e *QueryError) Unwrap() []error {
	return []error{ErrQuery, e.Err}
}
