// Package toolserver implements the builtin MCP tool server: a small set
// of self-contained tools served over the streamable HTTP transport, plus
// a runnable wrapper for process supervision.
package toolserver

import (
	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	ServerName    = "aurite-builtin"
	ServerVersion = "0.1.0"

	// MCPPath is the HTTP path the streamable MCP endpoint is mounted on.
	MCPPath = "/mcp"
)

// BuildServer assembles the builtin MCP server with all its tools.
func BuildServer() *mcpsdk.Server {
	impl := &mcpsdk.Implementation{
		Name:    ServerName,
		Version: ServerVersion,
	}
	server := mcpsdk.NewServer(impl, nil)
	for _, def := range builtinTools() {
		server.AddTool(def.tool, def.handler)
	}
	return server
}
