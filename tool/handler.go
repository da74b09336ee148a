package tool

import (
	"context"

	ai "github.com/spetersoncode/citydesk"
)

// Handler executes a tool call and returns the result content.
// The call contains the tool name, ID, and arguments as a JSON string.
type Handler func(ctx context.Context, call ai.ToolCall) (string, error)

// TypedHandler executes a tool call with arguments decoded into T.
type TypedHandler[T any] func(ctx context.Context, args T) (string, error)
