package agent

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"slices"

	"go.uber.org/zap"

	ai "github.com/spetersoncode/citydesk"
	"github.com/spetersoncode/citydesk/safety"
	"github.com/spetersoncode/citydesk/session"
	"github.com/spetersoncode/citydesk/tool"
)

// Agent orchestrates tool-calling conversations over a shared session.
type Agent struct {
	name     string
	provider ai.ChatProvider
	opts     []Option
}

// New creates an agent. The options become the agent's defaults.
func New(name string, provider ai.ChatProvider, opts ...Option) *Agent {
	return &Agent{name: name, provider: provider, opts: opts}
}

// Name returns the agent name.
func (a *Agent) Name() string { return a.name }

// Run executes the agent loop against s and returns the final result.
func (a *Agent) Run(ctx context.Context, s *session.Store, messages []ai.Message, opts ...Option) (*Result, error) {
	if a.provider == nil {
		return nil, ErrNoProvider
	}
	options := ApplyOptions(append(slices.Clone(a.opts), opts...)...)
	log := options.Logger.With(zap.String("agent", a.name))

	if options.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, options.Timeout)
		defer cancel()
	}

	session.Init(s)

	registry := tool.NewRegistry()
	if options.Tools != nil {
		registry = options.Tools(s)
	}
	chatOpts := []ai.Option{
		ai.WithSystem(renderInstructions(options.Instructions, s)),
		ai.WithTools(registry.Tools()),
	}
	chatOpts = append(chatOpts, options.ChatOptions...)

	result := &Result{Messages: slices.Clone(messages)}

	for step := 1; ; step++ {
		if reason := checkTermination(ctx, step, options); reason != "" {
			result.Termination = reason
			if reason == TerminationMaxSteps {
				result.Error = ErrMaxStepsReached
			} else {
				result.Error = ctx.Err()
			}
			return result, result.Error
		}

		request, callOpts := result.Messages, chatOpts
		if len(options.Filters) > 0 {
			var intercepted bool
			request, intercepted = applyFilters(ctx, options.Filters, s, result.Messages)
			if intercepted {
				result.Intercepted = true
				callOpts = append(slices.Clone(chatOpts), ai.WithTools(nil))
				log.Info("request intercepted", zap.Int("step", step))
			}
		}

		resp, err := a.provider.Chat(ctx, request, callOpts...)
		result.Steps = step
		if err != nil {
			result.Termination = TerminationError
			result.Error = fmt.Errorf("agent %s: step %d: %w", a.name, step, err)
			return result, result.Error
		}
		result.Response = resp
		result.Usage = result.Usage.Add(resp.Usage)

		if options.StopPredicate != nil && options.StopPredicate(step, resp) {
			result.Termination = TerminationCustom
			break
		}
		if !resp.HasToolCalls() {
			result.Messages = append(result.Messages, ai.Message{
				ID:      ai.GenerateMessageID(),
				Role:    ai.RoleAssistant,
				Content: resp.Content,
			})
			result.Termination = TerminationComplete
			break
		}

		result.Messages = append(result.Messages, ai.Message{
			ID:        ai.GenerateMessageID(),
			Role:      ai.RoleAssistant,
			Content:   resp.Content,
			ToolCalls: resp.ToolCalls,
		})
		results := make([]ai.ToolResult, 0, len(resp.ToolCalls))
		for _, call := range resp.ToolCalls {
			results = append(results, executeToolCall(ctx, registry, call, options, log))
		}
		result.Messages = append(result.Messages, ai.NewToolResultMessage(results...))
	}

	if options.OutputKey != "" {
		s.Set(options.OutputKey, result.Text())
	}
	log.Debug("run complete",
		zap.Int("steps", result.Steps),
		zap.String("termination", string(result.Termination)))
	return result, nil
}

// applyFilters runs the chain over the prose of messages and returns the
// request to send. The input slice is never modified.
func applyFilters(ctx context.Context, chain safety.Chain, s *session.Store, messages []ai.Message) ([]ai.Message, bool) {
	var (
		idx     []int
		pending []string
	)
	for i, m := range messages {
		if m.IsProse() {
			idx = append(idx, i)
			pending = append(pending, m.Content)
		}
	}

	out := chain.Run(ctx, s, pending)
	if out.Verdict == safety.Intercept {
		request := make([]ai.Message, 0, len(out.Fragments))
		for _, f := range out.Fragments {
			request = append(request, ai.NewUserMessage(f))
		}
		return request, true
	}

	request := slices.Clone(messages)
	if len(out.Fragments) == len(idx) {
		for j, i := range idx {
			request[i].Content = out.Fragments[j]
		}
	}
	return request, false
}

func executeToolCall(ctx context.Context, registry *tool.Registry, call ai.ToolCall, options *Options, log *zap.Logger) ai.ToolResult {
	if options.HandlerTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, options.HandlerTimeout)
		defer cancel()
	}

	result, err := registry.Execute(ctx, call)
	if err != nil {
		result = ai.ToolResult{
			ToolCallID: call.ID,
			Name:       call.Name,
			Content:    err.Error(),
			IsError:    true,
		}
	}
	log.Debug("tool executed",
		zap.String("tool", call.Name),
		zap.Bool("is_error", result.IsError))
	return result
}

func checkTermination(ctx context.Context, step int, options *Options) TerminationReason {
	if err := ctx.Err(); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return TerminationTimeout
		}
		return TerminationCancelled
	}
	if options.MaxSteps > 0 && step > options.MaxSteps {
		return TerminationMaxSteps
	}
	return ""
}

var placeholder = regexp.MustCompile(`\{([a-z_][a-z0-9_]*)\}`)

// renderInstructions substitutes {key} with the session's value for key.
func renderInstructions(tmpl string, s *session.Store) string {
	if tmpl == "" {
		return ""
	}
	return placeholder.ReplaceAllStringFunc(tmpl, func(m string) string {
		v, ok := s.Get(m[1 : len(m)-1])
		if !ok {
			return m
		}
		if str, ok := v.(string); ok {
			return str
		}
		return fmt.Sprint(v)
	})
}
