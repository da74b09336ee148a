package workflow

import (
	"context"

	ai "github.com/spetersoncode/citydesk"
	"github.com/spetersoncode/citydesk/session"
)

// Chain executes steps sequentially over the same session.
type Chain struct {
	name  string
	steps []Step
}

// NewChain creates a sequential workflow.
func NewChain(name string, steps ...Step) *Chain {
	return &Chain{name: name, steps: steps}
}

// Name returns the chain name.
func (c *Chain) Name() string { return c.name }

// Steps returns the chain's steps in execution order.
func (c *Chain) Steps() []Step { return c.steps }

// Run executes steps sequentially. The chain output is the output of the
// last step that produced one.
func (c *Chain) Run(ctx context.Context, s *session.Store, opts ...Option) (*StepResult, error) {
	options := ApplyOptions(opts...)

	if options.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, options.Timeout)
		defer cancel()
	}

	var (
		totalUsage ai.Usage
		output     string
	)
	for _, step := range c.steps {
		if err := ctx.Err(); err != nil {
			return nil, &StepError{StepName: step.Name(), Err: err}
		}

		result, err := runStep(ctx, step, s, options, opts)
		if err != nil {
			if options.ErrorHandler != nil {
				if handlerErr := options.ErrorHandler(ctx, step.Name(), err); handlerErr != nil {
					return nil, &StepError{StepName: step.Name(), Err: handlerErr}
				}
				if options.ContinueOnError {
					continue
				}
			}
			return nil, &StepError{StepName: step.Name(), Err: err}
		}

		if options.OnStepComplete != nil {
			options.OnStepComplete(ctx, result)
		}
		totalUsage = totalUsage.Add(result.Usage)
		if result.Output != "" {
			output = result.Output
		}
	}

	return &StepResult{
		StepName: c.name,
		Output:   output,
		Usage:    totalUsage,
	}, nil
}

// runStep applies the per-step timeout and normalizes a nil result.
func runStep(ctx context.Context, step Step, s *session.Store, options *Options, opts []Option) (*StepResult, error) {
	if options.StepTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, options.StepTimeout)
		defer cancel()
	}
	result, err := step.Run(ctx, s, opts...)
	if err != nil {
		return nil, err
	}
	if result == nil {
		result = &StepResult{StepName: step.Name()}
	}
	return result, nil
}
