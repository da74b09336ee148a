package agent

import ai "github.com/spetersoncode/citydesk"

// TerminationReason describes why a run ended.
type TerminationReason string

const (
	TerminationComplete  TerminationReason = "complete"
	TerminationMaxSteps  TerminationReason = "max_steps"
	TerminationTimeout   TerminationReason = "timeout"
	TerminationCancelled TerminationReason = "cancelled"
	TerminationCustom    TerminationReason = "custom"
	TerminationError     TerminationReason = "error"
)

// Result is the outcome of an agent run.
type Result struct {
	// Response is the last model response, nil if no call succeeded.
	Response *ai.Response

	// Messages is the conversation including tool traffic, without the
	// filter rewrites sent to the model.
	Messages []ai.Message

	// Steps is the number of model calls made.
	Steps int
	Usage ai.Usage

	// Intercepted reports whether any model call was replaced by a filter.
	Intercepted bool

	Termination TerminationReason
	Error       error
}

// Text returns the final response text.
func (r *Result) Text() string {
	if r == nil || r.Response == nil {
		return ""
	}
	return r.Response.Content
}
