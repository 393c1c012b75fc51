package host

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aurite-ai/aurite-go/internal/config"
	"github.com/aurite-ai/aurite-go/internal/host/roots"
	"github.com/aurite-ai/aurite-go/internal/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSession struct {
	tools     []mcp.Tool
	callFn    func(ctx context.Context, params *mcp.CallToolParams) (*mcp.CallToolResult, error)
	listErr   error
	closed    bool
	lastCall  *mcp.CallToolParams
}

func (s *fakeSession) CallTool(ctx context.Context, params *mcp.CallToolParams) (*mcp.CallToolResult, error) {
	s.lastCall = params
	if s.callFn != nil {
		return s.callFn(ctx, params)
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: "ok"}},
	}, nil
}

func (s *fakeSession) ListTools(ctx context.Context) ([]mcp.Tool, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.tools, nil
}

func (s *fakeSession) Close() error {
	s.closed = true
	return nil
}

type fakeClient struct {
	session        *fakeSession
	connectErr     error
	blockOnConnect bool
	connectCalls   int
}

func (c *fakeClient) Connect(ctx context.Context, _ mcp.Transport) (mcp.Session, error) {
	c.connectCalls++
	if c.blockOnConnect {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if c.connectErr != nil {
		return nil, c.connectErr
	}
	return c.session, nil
}

func weatherServerConfig() *config.ServerConfig {
	return &config.ServerConfig{
		Name:      "weather_server",
		Transport: config.TransportHTTP,
		URL:       "http://127.0.0.1:8854/mcp",
		Roots: []*config.RootConfig{
			{URI: "weather://data", Name: "weather data", Capabilities: []string{"weather"}},
		},
		RegistrationTimeoutSeconds: 1.0,
		ToolTimeoutSeconds:         1.0,
	}
}

func weatherTools() []mcp.Tool {
	return []mcp.Tool{
		{Name: "weather_lookup", Description: "Look up current weather"},
		{Name: "forecast", Description: "Multi-day forecast"},
	}
}

func newTestHost(t *testing.T, client *fakeClient) *Host {
	t.Helper()
	return New(WithClient(client))
}

func TestRegisterServer(t *testing.T) {
	t.Parallel()

	t.Run("indexes tools under namespaced names", func(t *testing.T) {
		client := &fakeClient{session: &fakeSession{tools: weatherTools()}}
		h := newTestHost(t, client)

		require.NoError(t, h.RegisterServer(t.Context(), weatherServerConfig()))
		assert.ElementsMatch(t, []string{"weather_server"}, h.RegisteredServers())
		assert.ElementsMatch(t,
			[]string{"weather_server-weather_lookup", "weather_server-forecast"},
			h.FindToolByCapability("weather"))
	})

	t.Run("missing stdio command fails before connecting", func(t *testing.T) {
		client := &fakeClient{session: &fakeSession{}}
		h := newTestHost(t, client)

		cfg := &config.ServerConfig{
			Name:                       "local_server",
			Transport:                  config.TransportStdio,
			Command:                    "aurite-definitely-missing-binary",
			RegistrationTimeoutSeconds: 1.0,
			ToolTimeoutSeconds:         1.0,
		}

		err := h.RegisterServer(t.Context(), cfg)
		var notFound *ServerFileNotFoundError
		require.ErrorAs(t, err, &notFound)
		assert.Equal(t, "local_server", notFound.Server)
		assert.Zero(t, client.connectCalls, "must fail before any connection attempt")
	})

	t.Run("registration timeout is typed and carries the configured value", func(t *testing.T) {
		client := &fakeClient{blockOnConnect: true}
		h := newTestHost(t, client)

		cfg := weatherServerConfig()
		cfg.RegistrationTimeoutSeconds = 0.1

		start := time.Now()
		err := h.RegisterServer(t.Context(), cfg)
		elapsed := time.Since(start)

		var timeout *ServerTimeoutError
		require.ErrorAs(t, err, &timeout)
		assert.Equal(t, "weather_server", timeout.Name)
		assert.Equal(t, OperationRegistration, timeout.Operation)
		assert.InDelta(t, 0.1, timeout.TimeoutSeconds(), 0.001)
		assert.Less(t, elapsed, 5*time.Second)
	})

	t.Run("invalid root URI aborts registration", func(t *testing.T) {
		client := &fakeClient{session: &fakeSession{tools: weatherTools()}}
		h := newTestHost(t, client)

		cfg := weatherServerConfig()
		cfg.Roots = []*config.RootConfig{{URI: "no-scheme"}}

		err := h.RegisterServer(t.Context(), cfg)
		require.Error(t, err)
		assert.ErrorIs(t, err, roots.ErrInvalidRootURI)
		assert.True(t, client.session.closed, "session is closed on abort")
	})

	t.Run("parent cancellation is not reported as a timeout", func(t *testing.T) {
		client := &fakeClient{blockOnConnect: true}
		h := newTestHost(t, client)

		ctx, cancel := context.WithCancel(t.Context())
		cancel()

		err := h.RegisterServer(ctx, weatherServerConfig())
		require.Error(t, err)
		var timeout *ServerTimeoutError
		assert.NotErrorAs(t, err, &timeout)
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("re-registration closes the old session", func(t *testing.T) {
		first := &fakeSession{tools: weatherTools()}
		client := &fakeClient{session: first}
		h := newTestHost(t, client)

		require.NoError(t, h.RegisterServer(t.Context(), weatherServerConfig()))

		second := &fakeSession{tools: weatherTools()}
		client.session = second
		require.NoError(t, h.RegisterServer(t.Context(), weatherServerConfig()))

		assert.True(t, first.closed)
		assert.False(t, second.closed)
	})
}

func TestUnregisterServer(t *testing.T) {
	t.Parallel()

	session := &fakeSession{tools: weatherTools()}
	h := newTestHost(t, &fakeClient{session: session})
	require.NoError(t, h.RegisterServer(t.Context(), weatherServerConfig()))

	h.UnregisterServer("weather_server")
	assert.True(t, session.closed)
	assert.Empty(t, h.RegisteredServers())

	// idempotent when already absent
	h.UnregisterServer("weather_server")
	h.UnregisterServer("never_registered")
}

func TestFormattedTools(t *testing.T) {
	t.Parallel()

	h := newTestHost(t, &fakeClient{session: &fakeSession{tools: weatherTools()}})
	require.NoError(t, h.RegisterServer(t.Context(), weatherServerConfig()))

	t.Run("scoped to permitted servers", func(t *testing.T) {
		agent := &config.AgentConfig{Name: "forecaster", MCPServers: []string{"weather_server"}}
		tools := h.FormattedTools(agent)
		require.Len(t, tools, 2)
		names := []string{tools[0].Name, tools[1].Name}
		assert.ElementsMatch(t,
			[]string{"weather_server-weather_lookup", "weather_server-forecast"}, names)
	})

	t.Run("empty server list yields no tools", func(t *testing.T) {
		agent := &config.AgentConfig{Name: "isolated", MCPServers: []string{}}
		assert.Empty(t, h.FormattedTools(agent))
	})

	t.Run("nil agent config yields no tools", func(t *testing.T) {
		assert.Empty(t, h.FormattedTools(nil))
	})

	t.Run("unregistered permitted server is skipped", func(t *testing.T) {
		agent := &config.AgentConfig{Name: "a", MCPServers: []string{"ghost_server"}}
		assert.Empty(t, h.FormattedTools(agent))
	})
}

func TestTools(t *testing.T) {
	t.Parallel()

	h := newTestHost(t, &fakeClient{session: &fakeSession{tools: weatherTools()}})
	assert.Empty(t, h.Tools())

	require.NoError(t, h.RegisterServer(t.Context(), weatherServerConfig()))

	tools := h.Tools()
	require.Len(t, tools, 2)
	assert.Equal(t, "weather_server-forecast", tools[0].Name)
	assert.Equal(t, "weather_server-weather_lookup", tools[1].Name)
	assert.Equal(t, "Multi-day forecast", tools[0].Description)
}

func TestCallTool(t *testing.T) {
	t.Parallel()

	t.Run("routes to the remote tool name", func(t *testing.T) {
		session := &fakeSession{tools: weatherTools()}
		h := newTestHost(t, &fakeClient{session: session})
		require.NoError(t, h.RegisterServer(t.Context(), weatherServerConfig()))

		agent := &config.AgentConfig{Name: "forecaster", MCPServers: []string{"weather_server"}}
		result, err := h.CallTool(t.Context(), "weather_server-weather_lookup",
			map[string]any{"location": "London"}, agent)

		require.NoError(t, err)
		assert.False(t, result.IsError)
		require.NotNil(t, session.lastCall)
		assert.Equal(t, "weather_lookup", session.lastCall.Name)
		assert.Equal(t, "London", session.lastCall.Arguments["location"])
	})

	t.Run("unknown tool", func(t *testing.T) {
		h := newTestHost(t, &fakeClient{session: &fakeSession{}})
		_, err := h.CallTool(t.Context(), "nothing-here", nil, nil)
		assert.ErrorIs(t, err, ErrToolNotFound)
	})

	t.Run("empty permitted list denies every tool", func(t *testing.T) {
		h := newTestHost(t, &fakeClient{session: &fakeSession{tools: weatherTools()}})
		require.NoError(t, h.RegisterServer(t.Context(), weatherServerConfig()))

		agent := &config.AgentConfig{Name: "isolated", MCPServers: []string{}}
		_, err := h.CallTool(t.Context(), "weather_server-weather_lookup",
			map[string]any{"location": "London"}, agent)

		var perm *PermissionError
		require.ErrorAs(t, err, &perm)
		assert.Equal(t, "isolated", perm.Agent)
		assert.Equal(t, "weather_server", perm.Server)
	})

	t.Run("nil agent config bypasses the permission check", func(t *testing.T) {
		h := newTestHost(t, &fakeClient{session: &fakeSession{tools: weatherTools()}})
		require.NoError(t, h.RegisterServer(t.Context(), weatherServerConfig()))

		_, err := h.CallTool(t.Context(), "weather_server-weather_lookup",
			map[string]any{"location": "London"}, nil)
		assert.NoError(t, err)
	})

	t.Run("tool call timeout is typed and tagged", func(t *testing.T) {
		session := &fakeSession{
			tools: weatherTools(),
			callFn: func(ctx context.Context, _ *mcp.CallToolParams) (*mcp.CallToolResult, error) {
				<-ctx.Done()
				return nil, ctx.Err()
			},
		}
		h := newTestHost(t, &fakeClient{session: session})

		cfg := weatherServerConfig()
		cfg.ToolTimeoutSeconds = 0.05
		require.NoError(t, h.RegisterServer(t.Context(), cfg))

		_, err := h.CallTool(t.Context(), "weather_server-weather_lookup", nil, nil)
		var timeout *ServerTimeoutError
		require.ErrorAs(t, err, &timeout)
		assert.Equal(t, "weather_server-weather_lookup", timeout.Name)
		assert.Equal(t, OperationToolCall, timeout.Operation)
	})

	t.Run("unsatisfied tool root requirement is rejected", func(t *testing.T) {
		session := &fakeSession{tools: weatherTools()}
		h := newTestHost(t, &fakeClient{session: session})

		cfg := weatherServerConfig()
		cfg.ToolRoots = map[string][]string{
			"forecast": {"archive://history"},
		}
		require.NoError(t, h.RegisterServer(t.Context(), cfg))

		_, err := h.CallTool(t.Context(), "weather_server-forecast", nil, nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, roots.ErrRootAccessDenied)
		assert.Nil(t, session.lastCall, "call must be rejected before dispatch")

		// Tools without requirements on the same server stay callable.
		_, err = h.CallTool(t.Context(), "weather_server-weather_lookup", nil, nil)
		assert.NoError(t, err)
	})

	t.Run("satisfied tool root requirement is dispatched", func(t *testing.T) {
		session := &fakeSession{tools: weatherTools()}
		h := newTestHost(t, &fakeClient{session: session})

		cfg := weatherServerConfig()
		cfg.ToolRoots = map[string][]string{
			"weather_lookup": {"weather://data"},
		}
		require.NoError(t, h.RegisterServer(t.Context(), cfg))

		_, err := h.CallTool(t.Context(), "weather_server-weather_lookup", nil, nil)
		assert.NoError(t, err)
	})

	t.Run("parent cancellation is not reported as a timeout", func(t *testing.T) {
		session := &fakeSession{
			tools: weatherTools(),
			callFn: func(ctx context.Context, _ *mcp.CallToolParams) (*mcp.CallToolResult, error) {
				<-ctx.Done()
				return nil, ctx.Err()
			},
		}
		h := newTestHost(t, &fakeClient{session: session})
		require.NoError(t, h.RegisterServer(t.Context(), weatherServerConfig()))

		ctx, cancel := context.WithCancel(t.Context())
		cancel()

		_, err := h.CallTool(ctx, "weather_server-weather_lookup", nil, nil)
		require.Error(t, err)
		var timeout *ServerTimeoutError
		assert.NotErrorAs(t, err, &timeout)
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("protocol-level tool fault is a result, not an error", func(t *testing.T) {
		session := &fakeSession{
			tools: weatherTools(),
			callFn: func(_ context.Context, _ *mcp.CallToolParams) (*mcp.CallToolResult, error) {
				return &mcp.CallToolResult{
					Content: []mcp.Content{&mcp.TextContent{Text: "bad arguments"}},
					IsError: true,
				}, nil
			},
		}
		h := newTestHost(t, &fakeClient{session: session})
		require.NoError(t, h.RegisterServer(t.Context(), weatherServerConfig()))

		result, err := h.CallTool(t.Context(), "weather_server-weather_lookup", nil, nil)
		require.NoError(t, err)
		assert.True(t, result.IsError)
	})

	t.Run("transport error is wrapped", func(t *testing.T) {
		sentinel := errors.New("pipe broke")
		session := &fakeSession{
			tools: weatherTools(),
			callFn: func(_ context.Context, _ *mcp.CallToolParams) (*mcp.CallToolResult, error) {
				return nil, sentinel
			},
		}
		h := newTestHost(t, &fakeClient{session: session})
		require.NoError(t, h.RegisterServer(t.Context(), weatherServerConfig()))

		_, err := h.CallTool(t.Context(), "weather_server-weather_lookup", nil, nil)
		assert.ErrorIs(t, err, sentinel)
	})
}
