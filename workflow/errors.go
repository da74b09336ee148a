package workflow

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

var (
	// ErrWorkflowTimeout indicates the workflow exceeded its timeout.
	ErrWorkflowTimeout = errors.New("workflow: timeout exceeded")

	// ErrWorkflowCancelled indicates the workflow was cancelled.
	ErrWorkflowCancelled = errors.New("workflow: cancelled")
)

// StepError wraps errors from step execution.
type StepError struct {
	StepName string
	Err      error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("workflow: step %q failed: %v", e.StepName, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// ParallelError collects the failures of concurrent branches.
type ParallelError struct {
	Errors map[string]error
}

func (e *ParallelError) names() []string {
	names := make([]string, 0, len(e.Errors))
	for name := range e.Errors {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func (e *ParallelError) Error() string {
	names := e.names()
	switch len(names) {
	case 0:
		return "workflow: parallel execution failed"
	case 1:
		return fmt.Sprintf("workflow: parallel step %q failed: %v", names[0], e.Errors[names[0]])
	}
	return fmt.Sprintf("workflow: parallel execution failed with %d errors in steps: %s",
		len(names), strings.Join(names, ", "))
}

// Unwrap exposes every branch error to errors.Is and errors.As, in step
// name order.
func (e *ParallelError) Unwrap() []error {
	errs := make([]error, 0, len(e.Errors))
	for _, name := range e.names() {
		errs = append(errs, e.Errors[name])
	}
	return errs
}
