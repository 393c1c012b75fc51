// Package host aggregates registered MCP tool servers behind a unified
// call-tool surface with per-agent access scoping.
package host

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"sort"
	"sync"

	"github.com/aurite-ai/aurite-go/internal/config"
	"github.com/aurite-ai/aurite-go/internal/host/roots"
	"github.com/aurite-ai/aurite-go/internal/host/router"
	"github.com/aurite-ai/aurite-go/internal/mcp"
)

// ToolSeparator joins a server name and a remote tool name into the
// namespaced tool name exposed to agents.
const ToolSeparator = "-"

// serverConn tracks one registered MCP server and its live session.
type serverConn struct {
	cfg     *config.ServerConfig
	session mcp.Session
	tools   []mcp.Tool
}

// Host owns the set of registered MCP server connections.
type Host struct {
	mu      sync.RWMutex
	logger  *slog.Logger
	client  mcp.Client
	router  *router.Router
	roots   *roots.Manager
	servers map[string]*serverConn
}

// Option configures a Host.
type Option func(*Host)

// WithLogHandler sets the slog handler used by the host and its indexes.
func WithLogHandler(handler slog.Handler) Option {
	return func(h *Host) {
		if handler != nil {
			h.logger = slog.New(handler).WithGroup("host")
			h.router = router.New(handler)
			h.roots = roots.New(handler)
		}
	}
}

// WithClient overrides the MCP client used to open sessions. Tests inject
// fakes through this.
func WithClient(client mcp.Client) Option {
	return func(h *Host) {
		if client != nil {
			h.client = client
		}
	}
}

// New creates a Host with no registered servers.
func New(opts ...Option) *Host {
	h := &Host{
		logger: slog.Default().WithGroup("host"),
		client: mcp.NewClient(&mcp.Implementation{
			Name:    "aurite",
			Version: "0.1.0",
		}),
		router:  router.New(nil),
		roots:   roots.New(nil),
		servers: make(map[string]*serverConn),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// RegisterServer connects to an MCP server and indexes its tools and roots.
// Registration is bounded by the server's configured registration timeout;
// expiry surfaces as a *ServerTimeoutError. Stdio commands are resolved
// before any connection attempt; a missing command is a
// *ServerFileNotFoundError.
func (h *Host) RegisterServer(ctx context.Context, cfg *config.ServerConfig) error {
	transport, err := h.buildTransport(cfg)
	if err != nil {
		return err
	}

	regCtx, cancel := context.WithTimeout(ctx, cfg.RegistrationTimeout())
	defer cancel()

	session, err := h.client.Connect(regCtx, transport)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(regCtx.Err(), context.DeadlineExceeded) {
			return &ServerTimeoutError{
				Name:      cfg.Name,
				Timeout:   cfg.RegistrationTimeout(),
				Operation: OperationRegistration,
			}
		}
		return fmt.Errorf("server %q: connect: %w", cfg.Name, err)
	}

	tools, err := session.ListTools(regCtx)
	if err != nil {
		_ = session.Close()
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(regCtx.Err(), context.DeadlineExceeded) {
			return &ServerTimeoutError{
				Name:      cfg.Name,
				Timeout:   cfg.RegistrationTimeout(),
				Operation: OperationRegistration,
			}
		}
		return fmt.Errorf("server %q: list tools: %w", cfg.Name, err)
	}

	rootSet := make([]roots.Root, 0, len(cfg.Roots))
	capabilities := make([]string, 0)
	for _, rc := range cfg.Roots {
		rootSet = append(rootSet, roots.Root{
			URI:          rc.URI,
			Name:         rc.Name,
			Capabilities: rc.Capabilities,
		})
		capabilities = append(capabilities, rc.Capabilities...)
	}
	if err := h.roots.RegisterRoots(cfg.Name, rootSet); err != nil {
		_ = session.Close()
		return err
	}
	for tool, uris := range cfg.ToolRoots {
		h.roots.RequireRoots(cfg.Name, tool, uris)
	}

	h.mu.Lock()
	if existing, ok := h.servers[cfg.Name]; ok {
		h.logger.Warn("re-registering server", "server", cfg.Name)
		_ = existing.session.Close()
		h.router.RemoveServer(cfg.Name)
	}
	h.servers[cfg.Name] = &serverConn{cfg: cfg, session: session, tools: tools}
	for _, tool := range tools {
		h.router.Register(router.Route{
			Name:         cfg.Name + ToolSeparator + tool.Name,
			Server:       cfg.Name,
			RemoteName:   tool.Name,
			Capabilities: capabilities,
		})
	}
	h.mu.Unlock()

	h.logger.Info("registered MCP server",
		"server", cfg.Name,
		"transport", cfg.Transport,
		"tools", len(tools))
	return nil
}

// UnregisterServer tears down a server's connection and removes its index
// entries. Unregistering an absent server is a no-op.
func (h *Host) UnregisterServer(name string) {
	h.mu.Lock()
	conn, ok := h.servers[name]
	if ok {
		delete(h.servers, name)
	}
	h.mu.Unlock()

	if !ok {
		return
	}

	if err := conn.session.Close(); err != nil {
		h.logger.Warn("closing server session", "server", name, "error", err)
	}
	h.router.RemoveServer(name)
	h.roots.RemoveServer(name)
	h.logger.Info("unregistered MCP server", "server", name)
}

// Close unregisters every server.
func (h *Host) Close() {
	h.mu.RLock()
	names := make([]string, 0, len(h.servers))
	for name := range h.servers {
		names = append(names, name)
	}
	h.mu.RUnlock()

	for _, name := range names {
		h.UnregisterServer(name)
	}
}

// FormattedTools returns the namespaced tool schemas the agent may use.
// Only tools owned by servers in the agent's permitted list are included;
// an empty permitted list yields no tools.
func (h *Host) FormattedTools(agentCfg *config.AgentConfig) []mcp.Tool {
	if agentCfg == nil || len(agentCfg.MCPServers) == 0 {
		return nil
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	var out []mcp.Tool
	for _, serverName := range agentCfg.MCPServers {
		conn, ok := h.servers[serverName]
		if !ok {
			continue
		}
		for _, tool := range conn.tools {
			out = append(out, mcp.Tool{
				Name:        serverName + ToolSeparator + tool.Name,
				Description: tool.Description,
				InputSchema: tool.InputSchema,
			})
		}
	}
	return out
}

// Tools returns the namespaced tool schemas of every registered server,
// sorted by name. Unlike FormattedTools this is unscoped; it backs
// inspection surfaces, never an agent's tool list.
func (h *Host) Tools() []mcp.Tool {
	routes := h.router.Routes()

	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]mcp.Tool, 0, len(routes))
	for _, route := range routes {
		conn, ok := h.servers[route.Server]
		if !ok {
			continue
		}
		for _, tool := range conn.tools {
			if tool.Name == route.RemoteName {
				out = append(out, mcp.Tool{
					Name:        route.Name,
					Description: tool.Description,
					InputSchema: tool.InputSchema,
				})
				break
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// CallTool dispatches a namespaced tool call to its owning server. When an
// agent config is supplied the owning server must be in the agent's
// permitted list. The call is bounded by the server's tool timeout; expiry
// surfaces as a *ServerTimeoutError tagged "tool_call". Protocol-level tool
// faults come back as a result with IsError set, not as a Go error.
func (h *Host) CallTool(
	ctx context.Context,
	toolName string,
	args map[string]any,
	agentCfg *config.AgentConfig,
) (*mcp.CallToolResult, error) {
	route, ok := h.router.Lookup(toolName)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrToolNotFound, toolName)
	}

	if agentCfg != nil && !agentCfg.Permits(route.Server) {
		return nil, &PermissionError{
			Agent:  agentCfg.Name,
			Tool:   toolName,
			Server: route.Server,
		}
	}

	if err := h.roots.ValidateAccess(route.Server, route.RemoteName); err != nil {
		return nil, err
	}

	h.mu.RLock()
	conn, ok := h.servers[route.Server]
	h.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrServerNotRegistered, route.Server)
	}

	callCtx, cancel := context.WithTimeout(ctx, conn.cfg.ToolTimeout())
	defer cancel()

	result, err := conn.session.CallTool(callCtx, &mcp.CallToolParams{
		Name:      route.RemoteName,
		Arguments: args,
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			return nil, &ServerTimeoutError{
				Name:      toolName,
				Timeout:   conn.cfg.ToolTimeout(),
				Operation: OperationToolCall,
			}
		}
		return nil, fmt.Errorf("tool %q: %w", toolName, err)
	}
	return result, nil
}

// FindToolByCapability returns the namespaced names of tools tagged with
// the capability.
func (h *Host) FindToolByCapability(capability string) []string {
	routes := h.router.FindByCapability(capability)
	names := make([]string, len(routes))
	for i, route := range routes {
		names[i] = route.Name
	}
	return names
}

// RegisteredServers lists the names of currently registered servers.
func (h *Host) RegisteredServers() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	names := make([]string, 0, len(h.servers))
	for name := range h.servers {
		names = append(names, name)
	}
	return names
}

func (h *Host) buildTransport(cfg *config.ServerConfig) (mcp.Transport, error) {
	switch cfg.Transport {
	case config.TransportStdio:
		if _, err := exec.LookPath(cfg.Command); err != nil {
			return nil, &ServerFileNotFoundError{Server: cfg.Name, Command: cfg.Command}
		}
		cmd := exec.Command(cfg.Command, cfg.Args...)
		return mcp.NewCommandTransport(cmd), nil
	case config.TransportHTTP:
		return mcp.NewStreamableTransport(cfg.URL, nil), nil
	default:
		return nil, fmt.Errorf("%w: %q", config.ErrInvalidTransport, cfg.Transport)
	}
}
