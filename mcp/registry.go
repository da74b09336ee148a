package mcp

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"

	ai "github.com/spetersoncode/citydesk"
	"github.com/spetersoncode/citydesk/tool"
)

// RemoteRegistry proxies tool calls to an MCP server. The tool list is
// cached and can be refreshed with [RemoteRegistry.Refresh].
type RemoteRegistry struct {
	client *client.Client
	mu     sync.RWMutex
	tools  map[string]ai.Tool
}

// NewRemoteRegistry starts command as a stdio MCP server and connects to it.
func NewRemoteRegistry(ctx context.Context, command string, env []string, args ...string) (*RemoteRegistry, error) {
	c, err := client.NewStdioMCPClient(command, env, args...)
	if err != nil {
		return nil, fmt.Errorf("create MCP client: %w", err)
	}
	return NewRemoteRegistryFromClient(ctx, c)
}

// NewRemoteRegistryFromClient initializes c and fetches its tools.
func NewRemoteRegistryFromClient(ctx context.Context, c *client.Client) (*RemoteRegistry, error) {
	if err := c.Start(ctx); err != nil {
		return nil, fmt.Errorf("start MCP client: %w", err)
	}

	_, err := c.Initialize(ctx, mcp.InitializeRequest{
		Params: mcp.InitializeParams{
			ProtocolVersion: mcp.LATEST_PROTOCOL_VERSION,
			ClientInfo:      mcp.Implementation{Name: "citydesk-client", Version: "1.0.0"},
		},
	})
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("initialize MCP session: %w", err)
	}

	r := &RemoteRegistry{client: c}
	if err := r.Refresh(ctx); err != nil {
		c.Close()
		return nil, fmt.Errorf("list tools: %w", err)
	}
	return r, nil
}

// Close closes the connection.
func (r *RemoteRegistry) Close() error {
	return r.client.Close()
}

// Refresh reloads the tool list from the server.
func (r *RemoteRegistry) Refresh(ctx context.Context) error {
	result, err := r.client.ListTools(ctx, mcp.ListToolsRequest{})
	if err != nil {
		return err
	}

	tools := make(map[string]ai.Tool, len(result.Tools))
	for _, t := range result.Tools {
		tools[t.Name] = FromMCPTool(t)
	}

	r.mu.Lock()
	r.tools = tools
	r.mu.Unlock()
	return nil
}

// Tools returns the cached tool definitions sorted by name.
func (r *RemoteRegistry) Tools() []ai.Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tools := make([]ai.Tool, 0, len(r.tools))
	for _, t := range r.tools {
		tools = append(tools, t)
	}
	sort.Slice(tools, func(i, j int) bool { return tools[i].Name < tools[j].Name })
	return tools
}

// Has reports whether the server offers a tool called name.
func (r *RemoteRegistry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.tools[name]
	return ok
}

// Execute calls a tool on the server. Transport failures are reported as
// an error result rather than an error.
func (r *RemoteRegistry) Execute(ctx context.Context, call ai.ToolCall) (ai.ToolResult, error) {
	result, err := r.client.CallTool(ctx, toCallRequest(call))
	if err != nil {
		return ai.ToolResult{ToolCallID: call.ID, Name: call.Name, Content: err.Error(), IsError: true}, nil
	}
	return fromCallResult(call, result), nil
}

// Registrations adapts the cached remote tools for a local [tool.Registry].
// Error results reach the model verbatim through [tool.ResultError].
func (r *RemoteRegistry) Registrations() []tool.Registration {
	tools := r.Tools()
	regs := make([]tool.Registration, len(tools))
	for i, t := range tools {
		regs[i] = tool.WithHandler(t.Name, t.Description, t.Parameters,
			func(ctx context.Context, call ai.ToolCall) (string, error) {
				res, err := r.Execute(ctx, call)
				if err != nil {
					return "", err
				}
				if res.IsError {
					return "", &tool.ResultError{Content: res.Content, Err: fmt.Errorf("mcp: tool %s failed", call.Name)}
				}
				return res.Content, nil
			})
	}
	return regs
}
