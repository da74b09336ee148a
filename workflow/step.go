package workflow

import (
	"context"

	ai "github.com/spetersoncode/citydesk"
	"github.com/spetersoncode/citydesk/session"
)

// Step represents a single unit of work in a workflow.
type Step interface {
	// Name returns a unique identifier for the step.
	Name() string

	// Run executes the step against the shared session state.
	Run(ctx context.Context, s *session.Store, opts ...Option) (*StepResult, error)
}

// StepResult is what a step reports back to its parent.
type StepResult struct {
	StepName string
	// Output is the text the step produced, if any.
	Output   string
	Usage    ai.Usage
	Metadata map[string]any
}

// StepFunc is a function signature for simple step implementations.
type StepFunc func(ctx context.Context, s *session.Store) error

// FuncStep wraps a function as a Step.
type FuncStep struct {
	name string
	fn   StepFunc
}

// NewFuncStep creates a step from a function.
func NewFuncStep(name string, fn StepFunc) *FuncStep {
	return &FuncStep{name: name, fn: fn}
}

// Name returns the step name.
func (f *FuncStep) Name() string { return f.name }

// Run executes the function.
func (f *FuncStep) Run(ctx context.Context, s *session.Store, _ ...Option) (*StepResult, error) {
	if err := f.fn(ctx, s); err != nil {
		return nil, err
	}
	return &StepResult{StepName: f.name}, nil
}

// OutputFunc computes a value and stores it under a fixed key.
type OutputFunc func(ctx context.Context, s *session.Store) (string, error)

// OutputStep runs an OutputFunc and writes its result to the session under
// key. The result is also returned as the step output.
type OutputStep struct {
	name string
	key  string
	fn   OutputFunc
}

// NewOutputStep creates a step that stores its output under key.
func NewOutputStep(name, key string, fn OutputFunc) *OutputStep {
	return &OutputStep{name: name, key: key, fn: fn}
}

// Name returns the step name.
func (o *OutputStep) Name() string { return o.name }

// Key returns the session key the step writes.
func (o *OutputStep) Key() string { return o.key }

// Run executes the function and stores its output.
func (o *OutputStep) Run(ctx context.Context, s *session.Store, _ ...Option) (*StepResult, error) {
	out, err := o.fn(ctx, s)
	if err != nil {
		return nil, err
	}
	s.Set(o.key, out)
	return &StepResult{StepName: o.name, Output: out}, nil
}
