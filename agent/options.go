package agent

import (
	"time"

	"go.uber.org/zap"

	ai "github.com/spetersoncode/citydesk"
	"github.com/spetersoncode/citydesk/safety"
	"github.com/spetersoncode/citydesk/session"
	"github.com/spetersoncode/citydesk/tool"
)

// ToolsFactory builds the tool registry bound to one session.
type ToolsFactory func(s *session.Store) *tool.Registry

// StopFunc is a custom predicate to determine if the agent should stop.
// It receives the current step number and the latest response.
type StopFunc func(step int, response *ai.Response) bool

// Options contains configuration for an agent. Options given to New are the
// agent's defaults; options given to Run override them for that run.
type Options struct {
	// Instructions is the system prompt. {key} placeholders are replaced
	// with session values before each run.
	Instructions string

	Tools   ToolsFactory
	Filters safety.Chain

	// OutputKey names the session key that receives the final text.
	OutputKey string

	// MaxSteps limits the number of model calls. Default is 10.
	MaxSteps int

	// Timeout sets a deadline for the entire run.
	Timeout time.Duration

	// HandlerTimeout bounds each tool handler. Default is 30 seconds.
	HandlerTimeout time.Duration

	StopPredicate StopFunc

	// ChatOptions are passed through to the ChatProvider.
	ChatOptions []ai.Option

	Logger *zap.Logger
}

// Option is a functional option for configuring an agent.
type Option func(*Options)

// WithInstructions sets the system prompt template.
func WithInstructions(text string) Option {
	return func(o *Options) {
		o.Instructions = text
	}
}

// WithTools sets the session-bound tool factory.
func WithTools(f ToolsFactory) Option {
	return func(o *Options) {
		o.Tools = f
	}
}

// WithFilters sets the pre-invocation filter chain.
func WithFilters(c safety.Chain) Option {
	return func(o *Options) {
		o.Filters = c
	}
}

// WithOutputKey stores the final text under key.
func WithOutputKey(key string) Option {
	return func(o *Options) {
		o.OutputKey = key
	}
}

// WithMaxSteps sets the maximum number of model calls.
func WithMaxSteps(n int) Option {
	return func(o *Options) {
		o.MaxSteps = n
	}
}

// WithTimeout sets a deadline for the entire run.
func WithTimeout(d time.Duration) Option {
	return func(o *Options) {
		o.Timeout = d
	}
}

// WithHandlerTimeout sets the timeout for each individual tool handler.
// Set to 0 for no per-handler timeout.
func WithHandlerTimeout(d time.Duration) Option {
	return func(o *Options) {
		o.HandlerTimeout = d
	}
}

// WithStopPredicate sets a custom termination condition.
func WithStopPredicate(fn StopFunc) Option {
	return func(o *Options) {
		o.StopPredicate = fn
	}
}

// WithChatOptions passes options through to the ChatProvider.
func WithChatOptions(opts ...ai.Option) Option {
	return func(o *Options) {
		o.ChatOptions = append(o.ChatOptions, opts...)
	}
}

// WithModel is a convenience option to set the model for chat calls.
func WithModel(model string) Option {
	return func(o *Options) {
		o.ChatOptions = append(o.ChatOptions, ai.WithModel(model))
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *Options) {
		o.Logger = l
	}
}

// ApplyOptions applies functional options to an Options struct with defaults.
func ApplyOptions(opts ...Option) *Options {
	o := &Options{
		MaxSteps:       10,
		HandlerTimeout: 30 * time.Second,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return o
}
