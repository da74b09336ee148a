// Package safety screens pending input before each model invocation.
//
// A [Gate] blocks requests that mention any term of its [Policy] as a whole
// word. On a block it records the attempt in the session's safety metrics
// and substitutes the policy's refusal prompt for the original input.
// Filters compose into a [Chain] that runs in a fixed order.
package safety

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spetersoncode/citydesk/session"
)

// Gate is the safety filter.
type Gate struct {
	policy *Policy
	now    func() time.Time
	logger *zap.Logger
}

// GateOption configures a Gate.
type GateOption func(*Gate)

// WithClock replaces time.Now for blocked-time stamps.
func WithClock(now func() time.Time) GateOption {
	return func(g *Gate) {
		g.now = now
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) GateOption {
	return func(g *Gate) {
		if l != nil {
			g.logger = l
		}
	}
}

// NewGate creates a Gate. A nil policy uses DefaultPolicy.
func NewGate(p *Policy, opts ...GateOption) *Gate {
	if p == nil {
		p = DefaultPolicy()
	}
	g := &Gate{policy: p, now: time.Now, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *Gate) Name() string { return "safety_gate" }

// Filter checks the concatenated fragments against the policy. Every
// decision is made fresh; only the metrics persist in the session.
func (g *Gate) Filter(_ context.Context, s *session.Store, pending []string) Outcome {
	terms := g.policy.Match(strings.Join(pending, " "))
	if len(terms) == 0 {
		return Outcome{Verdict: Pass, Fragments: pending}
	}

	at := g.now()
	m := session.UpdateMetrics(s, func(m session.SafetyMetrics) session.SafetyMetrics {
		m.BlockedAttempts++
		m.LastBlockedTime = &at
		m.BlockedTermsDetected = append(m.BlockedTermsDetected, terms...)
		return m
	})

	g.logger.Warn("request blocked",
		zap.Strings("terms", terms),
		zap.Int("blocked_attempts", m.BlockedAttempts))

	return Outcome{
		Verdict:   Intercept,
		Fragments: []string{g.policy.Refusal()},
		Terms:     terms,
		Reply:     g.policy.RefusalReply(),
	}
}

// MetricsReport summarizes a session's safety metrics.
type MetricsReport struct {
	Metrics session.SafetyMetrics `json:"metrics"`
	Message string                `json:"message"`
}

// Report summarizes the session's safety metrics. It never fails.
func Report(s *session.Store) MetricsReport {
	m := session.Metrics(s)
	if m.BlockedAttempts == 0 {
		return MetricsReport{
			Metrics: m,
			Message: "No safety violations have been detected in this session.",
		}
	}

	last := "unknown"
	if m.LastBlockedTime != nil {
		last = m.LastBlockedTime.Format(time.RFC3339)
	}
	return MetricsReport{
		Metrics: m,
		Message: fmt.Sprintf("Safety system has blocked %d request(s). Last blocked: %s. Terms detected: %s.",
			m.BlockedAttempts, last, strings.Join(m.BlockedTermsDetected, ", ")),
	}
}
