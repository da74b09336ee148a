package workflow

import (
	"context"
	"errors"

	ai "github.com/spetersoncode/citydesk"
	"github.com/spetersoncode/citydesk/session"
)

// Termination describes why a workflow run ended.
type Termination string

const (
	TerminationComplete  Termination = "complete"
	TerminationError     Termination = "error"
	TerminationCancelled Termination = "cancelled"
	TerminationTimeout   Termination = "timeout"
)

// Result is the outcome of a workflow run.
type Result struct {
	WorkflowName string
	Session      *session.Store
	Output       string
	Usage        ai.Usage
	Error        error
	Termination  Termination
}

// Workflow is the top-level orchestrator that wraps a root step.
type Workflow struct {
	name string
	root Step
}

// New creates a new workflow with a root step.
func New(name string, root Step) *Workflow {
	return &Workflow{name: name, root: root}
}

// Name returns the workflow name.
func (w *Workflow) Name() string { return w.name }

// Run executes the workflow synchronously. A nil store runs against a fresh
// in-memory session.
func (w *Workflow) Run(ctx context.Context, s *session.Store, opts ...Option) (*Result, error) {
	if s == nil {
		s = session.New(nil)
	}
	session.Init(s)

	stepResult, err := w.root.Run(ctx, s, opts...)
	if err != nil {
		termination := TerminationError
		switch {
		case errors.Is(err, context.Canceled) || errors.Is(ctx.Err(), context.Canceled):
			termination = TerminationCancelled
			err = errors.Join(ErrWorkflowCancelled, err)
		case errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded):
			termination = TerminationTimeout
			err = errors.Join(ErrWorkflowTimeout, err)
		}
		return &Result{
			WorkflowName: w.name,
			Session:      s,
			Error:        err,
			Termination:  termination,
		}, err
	}

	return &Result{
		WorkflowName: w.name,
		Session:      s,
		Output:       stepResult.Output,
		Usage:        stepResult.Usage,
		Termination:  TerminationComplete,
	}, nil
}
