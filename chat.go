package citydesk

import "context"

// ChatProvider defines the interface for model providers.
//
// The model runtime is opaque to this module: a function from
// (instructions, conversation, available tools) to tool invocations or
// final text. Retry and timeout policy belong to the caller.
type ChatProvider interface {
	// Chat sends a conversation and returns a complete response.
	Chat(ctx context.Context, messages []Message, opts ...Option) (*Response, error)
}

// ChatFunc adapts a plain function to ChatProvider.
type ChatFunc func(ctx context.Context, messages []Message, opts ...Option) (*Response, error)

// Chat calls f.
func (f ChatFunc) Chat(ctx context.Context, messages []Message, opts ...Option) (*Response, error) {
	return f(ctx, messages, opts...)
}
