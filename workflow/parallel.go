package workflow

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	ai "github.com/spetersoncode/citydesk"
	"github.com/spetersoncode/citydesk/session"
)

// Parallel runs steps concurrently against one shared session. Branches
// must write disjoint keys or go through Store.Update.
type Parallel struct {
	name  string
	steps []Step
}

// NewParallel creates a parallel workflow.
func NewParallel(name string, steps ...Step) *Parallel {
	return &Parallel{name: name, steps: steps}
}

// Name returns the parallel step name.
func (p *Parallel) Name() string { return p.name }

// Run executes all branches and waits for them. Without ContinueOnError
// the first failure cancels the remaining branches.
func (p *Parallel) Run(ctx context.Context, s *session.Store, opts ...Option) (*StepResult, error) {
	options := ApplyOptions(opts...)

	if options.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, options.Timeout)
		defer cancel()
	}

	g, gctx := errgroup.WithContext(ctx)
	if options.MaxConcurrency > 0 {
		g.SetLimit(options.MaxConcurrency)
	}

	var (
		mu      sync.Mutex
		usage   ai.Usage
		errs    = make(map[string]error)
		outputs = make(map[string]any)
	)

	for _, step := range p.steps {
		g.Go(func() error {
			result, err := runStep(gctx, step, s, options, opts)
			if err != nil && options.ErrorHandler != nil {
				err = options.ErrorHandler(gctx, step.Name(), err)
				if err == nil {
					return nil
				}
			}
			if err != nil {
				mu.Lock()
				errs[step.Name()] = err
				mu.Unlock()
				if options.ContinueOnError {
					return nil
				}
				return err
			}

			if options.OnStepComplete != nil {
				options.OnStepComplete(gctx, result)
			}
			mu.Lock()
			usage = usage.Add(result.Usage)
			if result.Output != "" {
				outputs[step.Name()] = result.Output
			}
			mu.Unlock()
			return nil
		})
	}

	waitErr := g.Wait()
	if len(errs) > 0 && !options.ContinueOnError {
		return nil, &ParallelError{Errors: errs}
	}
	if waitErr != nil {
		return nil, waitErr
	}

	result := &StepResult{StepName: p.name, Usage: usage, Metadata: outputs}
	if len(errs) > 0 {
		result.Metadata["errors"] = &ParallelError{Errors: errs}
	}
	return result, nil
}
