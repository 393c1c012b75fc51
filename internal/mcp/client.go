// Package mcp provides a thin abstraction layer around the MCP SDK client.
// This isolates the host from breaking changes in the unstable MCP SDK.
package mcp

import (
	"context"
	"net/http"
	"os/exec"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

// Client establishes MCP sessions over a transport.
type Client interface {
	// Connect establishes a new MCP session with the given transport.
	Connect(ctx context.Context, transport Transport) (Session, error)
}

// Session is an active MCP session for calling tools and listing capabilities.
type Session interface {
	// CallTool invokes a tool with the given parameters.
	CallTool(ctx context.Context, params *CallToolParams) (*CallToolResult, error)

	// ListTools returns all tools exposed by the server.
	ListTools(ctx context.Context) ([]Tool, error)

	// Close terminates the MCP session.
	Close() error
}

// Transport is an MCP transport layer (stdio subprocess or streamable HTTP).
type Transport interface {
	// Underlying returns the SDK transport. Kept as any so alternative
	// transports do not force SDK dependencies on callers.
	Underlying() any
}

// CallToolParams names a tool and carries its decoded JSON arguments.
type CallToolParams struct {
	Name      string
	Arguments map[string]any
}

// CallToolResult carries content blocks plus the protocol-level error flag.
// IsError marks a fault reported by the remote tool itself (for example
// malformed arguments), distinct from transport or host failures.
type CallToolResult struct {
	Content []Content
	IsError bool
}

// Tool describes one remote operation exposed by an MCP server.
type Tool struct {
	Name        string
	Description string

	// InputSchema is the tool's JSON schema as reported by the server,
	// passed through to LLM clients untouched.
	InputSchema any
}

// Content is one block of tool result content.
type Content interface {
	// Type returns the content type ("text", "json", ...).
	Type() string
}

// TextContent is plain text returned by a tool.
type TextContent struct {
	Text string
}

func (t *TextContent) Type() string {
	return "text"
}

// Implementation identifies this client to MCP servers.
type Implementation struct {
	Name    string
	Version string
}

type client struct {
	mcpClient *mcpsdk.Client
}

type session struct {
	mcpSession *mcpsdk.ClientSession
}

type transport struct {
	underlying any
}

// NewClient creates a new MCP client with the given implementation details.
func NewClient(impl *Implementation) Client {
	return &client{
		mcpClient: mcpsdk.NewClient(&mcpsdk.Implementation{
			Name:    impl.Name,
			Version: impl.Version,
		}, nil),
	}
}

// NewStreamableTransport creates a streamable HTTP transport for the URL.
func NewStreamableTransport(url string, httpClient *http.Client) Transport {
	return &transport{
		underlying: mcpsdk.NewStreamableClientTransport(url, &mcpsdk.StreamableClientTransportOptions{
			HTTPClient: httpClient,
		}),
	}
}

// NewCommandTransport creates a stdio transport that launches the command
// and speaks MCP over its pipes.
func NewCommandTransport(cmd *exec.Cmd) Transport {
	return &transport{
		underlying: &mcpsdk.CommandTransport{Command: cmd},
	}
}

func (t *transport) Underlying() any {
	return t.underlying
}

// Connect establishes a new MCP session.
func (c *client) Connect(ctx context.Context, t Transport) (Session, error) {
	sdkTransport, ok := t.Underlying().(mcpsdk.Transport)
	if !ok {
		return nil, ErrInvalidTransport
	}

	mcpSession, err := c.mcpClient.Connect(ctx, sdkTransport)
	if err != nil {
		return nil, err
	}

	return &session{mcpSession: mcpSession}, nil
}

// CallTool invokes a tool with the given parameters.
func (s *session) CallTool(ctx context.Context, params *CallToolParams) (*CallToolResult, error) {
	result, err := s.mcpSession.CallTool(ctx, &mcpsdk.CallToolParams{
		Name:      params.Name,
		Arguments: params.Arguments,
	})
	if err != nil {
		return nil, err
	}

	content := make([]Content, len(result.Content))
	for i, block := range result.Content {
		switch v := block.(type) {
		case *mcpsdk.TextContent:
			content[i] = &TextContent{Text: v.Text}
		default:
			content[i] = &TextContent{Text: ErrUnsupportedContent.Error()}
		}
	}

	return &CallToolResult{
		Content: content,
		IsError: result.IsError,
	}, nil
}

// ListTools returns all tools exposed by the server.
func (s *session) ListTools(ctx context.Context) ([]Tool, error) {
	result, err := s.mcpSession.ListTools(ctx, &mcpsdk.ListToolsParams{})
	if err != nil {
		return nil, err
	}

	tools := make([]Tool, len(result.Tools))
	for i, sdkTool := range result.Tools {
		tools[i] = Tool{
			Name:        sdkTool.Name,
			Description: sdkTool.Description,
			InputSchema: sdkTool.InputSchema,
		}
	}
	return tools, nil
}

// Close terminates the MCP session.
func (s *session) Close() error {
	return s.mcpSession.Close()
}
