package safety

import (
	"context"

	"github.com/spetersoncode/citydesk/session"
)

// Verdict is the decision of a pre-invocation filter.
type Verdict int

const (
	// Pass lets the (possibly rewritten) fragments through.
	Pass Verdict = iota
	// Intercept replaces the pending input with the outcome's fragments.
	Intercept
)

func (v Verdict) String() string {
	if v == Intercept {
		return "intercept"
	}
	return "pass"
}

// Outcome is the result of running a filter over pending input.
type Outcome struct {
	Verdict Verdict
	// Fragments is the input to forward: the original or normalized text
	// on Pass, the replacement prompt on Intercept.
	Fragments []string
	// Terms lists the blocked terms that caused an intercept.
	Terms []string
	// Reply is the user-facing answer to an intercepted request, for
	// callers that respond without a model.
	Reply string
}

// Filter inspects pending input before a model invocation.
type Filter interface {
	Name() string
	Filter(ctx context.Context, s *session.Store, pending []string) Outcome
}

// Chain runs filters in order. Each filter sees the fragments forwarded by
// the previous one, and the first Intercept ends the chain.
type Chain []Filter

// DefaultChain returns the gate followed by the empty-fragment normalizer.
func DefaultChain(g *Gate) Chain {
	return Chain{g, Normalizer{}}
}

// Run applies the chain.
func (c Chain) Run(ctx context.Context, s *session.Store, pending []string) Outcome {
	out := Outcome{Verdict: Pass, Fragments: pending}
	for _, f := range c {
		out = f.Filter(ctx, s, out.Fragments)
		if out.Verdict == Intercept {
			return out
		}
	}
	return out
}

// Normalizer rewrites empty fragments to a single space so providers that
// reject empty content accept the request. It never intercepts.
type Normalizer struct{}

func (Normalizer) Name() string { return "normalize_empty" }

func (Normalizer) Filter(_ context.Context, _ *session.Store, pending []string) Outcome {
	out := make([]string, len(pending))
	for i, f := range pending {
		if f == "" {
			f = " "
		}
		out[i] = f
	}
	return Outcome{Verdict: Pass, Fragments: out}
}
