package agent

import "errors"

var (
	// ErrMaxStepsReached indicates the agent hit the step limit.
	ErrMaxStepsReached = errors.New("agent: maximum steps reached")

	// ErrNoProvider is returned when an agent has no ChatProvider.
	ErrNoProvider = errors.New("agent: no chat provider")
)
