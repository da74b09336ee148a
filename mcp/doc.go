// Package mcp exposes citydesk tools over the Model Context Protocol.
//
// [NewServer] publishes a session-bound [tool.Registry] so MCP clients such
// as desktop assistants can resolve cities and look up weather and time.
// [RemoteRegistry] is the other direction: it lists and calls the tools of
// a running MCP server.
//
//	store := session.NewStore(nil)
//	registry := toolset.New(toolset.DefaultDeps(), store)
//	if err := mcp.ServeStdio(registry); err != nil {
//	    log.Fatal(err)
//	}
package mcp
