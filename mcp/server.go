package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	ai "github.com/spetersoncode/citydesk"
	"github.com/spetersoncode/citydesk/tool"
)

// ServerOption configures a server.
type ServerOption func(*serverConfig)

// CallHook observes every completed tool call.
type CallHook func(ctx context.Context, result ai.ToolResult)

type serverConfig struct {
	name    string
	version string
	onCall  CallHook
}

// WithName sets the server name reported to MCP clients.
func WithName(name string) ServerOption {
	return func(c *serverConfig) {
		c.name = name
	}
}

// WithVersion sets the server version reported to MCP clients.
func WithVersion(version string) ServerOption {
	return func(c *serverConfig) {
		c.version = version
	}
}

// WithCallHook registers a hook run after each tool call, for example to
// persist the session the registry is bound to.
func WithCallHook(h CallHook) ServerOption {
	return func(c *serverConfig) {
		c.onCall = h
	}
}

// NewServer creates an MCP server publishing every tool in registry.
func NewServer(registry *tool.Registry, opts ...ServerOption) *server.MCPServer {
	cfg := &serverConfig{name: "citydesk", version: "1.0.0"}
	for _, opt := range opts {
		opt(cfg)
	}

	s := server.NewMCPServer(cfg.name, cfg.version, server.WithToolCapabilities(true))
	for _, t := range registry.Tools() {
		s.AddTool(ToMCPTool(t), handlerFor(registry, t.Name, cfg.onCall))
	}
	return s
}

func handlerFor(registry *tool.Registry, name string, onCall CallHook) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := "{}"
		if req.Params.Arguments != nil {
			data, err := json.Marshal(req.Params.Arguments)
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
			}
			args = string(data)
		}

		result, err := registry.Execute(ctx, ai.ToolCall{Name: name, Arguments: args})
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if onCall != nil {
			onCall(ctx, result)
		}
		return toCallResult(result), nil
	}
}

// ServeStdio serves registry over stdin and stdout until the client
// disconnects.
func ServeStdio(registry *tool.Registry, opts ...ServerOption) error {
	return server.ServeStdio(NewServer(registry, opts...))
}
