// Package router maintains the tool routing tables for the MCP host: which
// server owns which tool, and which capability tags each tool carries.
package router

import (
	"log/slog"
	"sync"
)

// Route maps one exposed tool name to its owning server.
type Route struct {
	// Name is the namespaced tool name exposed to agents
	// ("<server>-<tool>").
	Name string

	// Server is the registered name of the owning MCP server.
	Server string

	// RemoteName is the tool's name on the remote server.
	RemoteName string

	// Capabilities are discovery tags inherited from the server's roots.
	Capabilities []string
}

// Router is a pure in-memory index. Duplicate registration overwrites the
// existing route with a warning (intentional idempotent re-registration).
type Router struct {
	mu          sync.RWMutex
	logger      *slog.Logger
	routes      map[string]Route
	serverTools map[string][]string
}

// New creates an empty Router.
func New(handler slog.Handler) *Router {
	logger := slog.Default()
	if handler != nil {
		logger = slog.New(handler)
	}
	return &Router{
		logger:      logger.WithGroup("router"),
		routes:      make(map[string]Route),
		serverTools: make(map[string][]string),
	}
}

// Register adds a route. An existing route for the same tool name is
// overwritten; last write wins.
func (r *Router) Register(route Route) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.routes[route.Name]; ok {
		r.logger.Warn("overwriting existing tool route",
			"tool", route.Name,
			"previous_server", existing.Server,
			"new_server", route.Server)
		r.removeFromServerIndex(existing.Server, route.Name)
	}

	r.routes[route.Name] = route
	r.serverTools[route.Server] = append(r.serverTools[route.Server], route.Name)
}

// Lookup resolves a namespaced tool name to its route.
func (r *Router) Lookup(toolName string) (Route, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	route, ok := r.routes[toolName]
	return route, ok
}

// ToolsFor returns the namespaced tool names owned by a server.
func (r *Router) ToolsFor(server string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tools := r.serverTools[server]
	out := make([]string, len(tools))
	copy(out, tools)
	return out
}

// FindByCapability returns every route carrying the capability tag.
func (r *Router) FindByCapability(capability string) []Route {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matches []Route
	for _, route := range r.routes {
		for _, tag := range route.Capabilities {
			if tag == capability {
				matches = append(matches, route)
				break
			}
		}
	}
	return matches
}

// RemoveServer drops every route owned by the server. Removing an unknown
// server is a no-op.
func (r *Router) RemoveServer(server string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, tool := range r.serverTools[server] {
		delete(r.routes, tool)
	}
	delete(r.serverTools, server)
}

// Routes returns a snapshot of every registered route.
func (r *Router) Routes() []Route {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Route, 0, len(r.routes))
	for _, route := range r.routes {
		out = append(out, route)
	}
	return out
}

// caller holds r.mu
func (r *Router) removeFromServerIndex(server, tool string) {
	tools := r.serverTools[server]
	for i, name := range tools {
		if name == tool {
			r.serverTools[server] = append(tools[:i], tools[i+1:]...)
			return
		}
	}
}
