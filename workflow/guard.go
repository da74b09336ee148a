package workflow

import (
	"context"
	"strings"

	"github.com/spetersoncode/citydesk/safety"
	"github.com/spetersoncode/citydesk/session"
)

// GuardedStep runs a filter chain over the session's user input before its
// inner step. An intercepted input short-circuits the step: the filter's
// user-facing reply is stored as the last response and returned as output.
// Filters that give no reply fall back to their replacement fragments.
type GuardedStep struct {
	filters safety.Chain
	inner   Step
}

// Guarded wraps step with the given filters.
func Guarded(filters safety.Chain, step Step) *GuardedStep {
	return &GuardedStep{filters: filters, inner: step}
}

// Name returns the inner step's name.
func (g *GuardedStep) Name() string { return g.inner.Name() }

// Run filters the pending user input, then delegates on Pass.
func (g *GuardedStep) Run(ctx context.Context, s *session.Store, opts ...Option) (*StepResult, error) {
	out := g.filters.Run(ctx, s, []string{session.UserInput(s)})
	if out.Verdict == safety.Intercept {
		reply := out.Reply
		if reply == "" {
			reply = strings.Join(out.Fragments, "\n")
		}
		session.SetLastResponse(s, reply)
		return &StepResult{
			StepName: g.Name(),
			Output:   reply,
			Metadata: map[string]any{"intercepted": true, "terms": out.Terms},
		}, nil
	}
	if len(out.Fragments) == 1 {
		session.SetUserInput(s, out.Fragments[0])
	}
	return g.inner.Run(ctx, s, opts...)
}
