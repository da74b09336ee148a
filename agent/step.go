package agent

import (
	"context"

	ai "github.com/spetersoncode/citydesk"
	"github.com/spetersoncode/citydesk/session"
	"github.com/spetersoncode/citydesk/workflow"
)

// Step adapts an agent to a workflow step. The step sends the session's
// pending user input as a single user message.
func (a *Agent) Step() workflow.Step {
	return agentStep{a}
}

type agentStep struct{ a *Agent }

func (st agentStep) Name() string { return st.a.name }

func (st agentStep) Run(ctx context.Context, s *session.Store, opts ...workflow.Option) (*workflow.StepResult, error) {
	wopts := workflow.ApplyOptions(opts...)
	msgs := []ai.Message{ai.NewUserMessage(session.UserInput(s))}

	result, err := st.a.Run(ctx, s, msgs, WithChatOptions(wopts.ChatOptions...))
	if err != nil {
		return nil, err
	}
	return &workflow.StepResult{
		StepName: st.a.name,
		Output:   result.Text(),
		Usage:    result.Usage,
		Metadata: map[string]any{
			"steps":       result.Steps,
			"termination": string(result.Termination),
			"intercepted": result.Intercepted,
		},
	}, nil
}
