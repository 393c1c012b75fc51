package config

import (
	"errors"
	"fmt"
	"slices"

	"github.com/aurite-ai/aurite-go/internal/interpolation"
)

// Validate checks the whole document, applies defaults, and expands
// environment references. Errors are aggregated so a single pass reports
// every problem.
func (c *Config) Validate() error {
	var errs []error

	if err := interpolation.InterpolateStruct(c); err != nil {
		errs = append(errs, fmt.Errorf("interpolation failed: %w", err))
	}

	llmNames := make(map[string]struct{}, len(c.LLMs))
	for i, llm := range c.LLMs {
		if err := llm.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("llm %d: %w", i, err))
			continue
		}
		if _, ok := llmNames[llm.Name]; ok {
			errs = append(errs, fmt.Errorf("%w: llm %q", ErrDuplicateName, llm.Name))
		}
		llmNames[llm.Name] = struct{}{}
	}

	serverNames := make(map[string]struct{}, len(c.MCPServers))
	for i, srv := range c.MCPServers {
		if err := srv.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("mcp_server %d: %w", i, err))
			continue
		}
		if _, ok := serverNames[srv.Name]; ok {
			errs = append(errs, fmt.Errorf("%w: mcp_server %q", ErrDuplicateName, srv.Name))
		}
		serverNames[srv.Name] = struct{}{}
	}

	agentNames := make(map[string]struct{}, len(c.Agents))
	for i, agent := range c.Agents {
		if err := agent.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("agent %d: %w", i, err))
			continue
		}
		if _, ok := agentNames[agent.Name]; ok {
			errs = append(errs, fmt.Errorf("%w: agent %q", ErrDuplicateName, agent.Name))
		}
		agentNames[agent.Name] = struct{}{}

		// Cross-references resolve against this document.
		if _, ok := llmNames[agent.LLM]; !ok {
			errs = append(errs, fmt.Errorf("%w: agent %q references unknown llm %q",
				ErrInvalidReference, agent.Name, agent.LLM))
		}
		for _, srv := range agent.MCPServers {
			if _, ok := serverNames[srv]; !ok {
				errs = append(errs, fmt.Errorf("%w: agent %q references unknown mcp_server %q",
					ErrInvalidReference, agent.Name, srv))
			}
		}
	}

	return errors.Join(errs...)
}

// Validate checks one agent definition and applies loop defaults.
func (a *AgentConfig) Validate() error {
	var errs []error

	if err := interpolation.InterpolateStruct(a); err != nil {
		errs = append(errs, fmt.Errorf("interpolation failed: %w", err))
	}

	if a.Name == "" {
		errs = append(errs, fmt.Errorf("%w: agent name", ErrMissingRequiredField))
	}
	if a.LLM == "" {
		errs = append(errs, fmt.Errorf("%w: agent llm", ErrMissingRequiredField))
	}
	if a.MaxIterations < 0 {
		errs = append(errs, fmt.Errorf("%w: max_iterations must not be negative", ErrInvalidValue))
	}
	if a.MaxIterations == 0 {
		a.MaxIterations = DefaultMaxIterations
	}
	if a.MaxParallelTools < 0 {
		errs = append(errs, fmt.Errorf("%w: max_parallel_tools must not be negative", ErrInvalidValue))
	}
	if a.MaxParallelTools == 0 {
		a.MaxParallelTools = DefaultMaxParallelTools
	}

	return errors.Join(errs...)
}

// Validate checks one LLM reference.
func (l *LLMConfig) Validate() error {
	var errs []error

	if err := interpolation.InterpolateStruct(l); err != nil {
		errs = append(errs, fmt.Errorf("interpolation failed: %w", err))
	}

	if l.Name == "" {
		errs = append(errs, fmt.Errorf("%w: llm name", ErrMissingRequiredField))
	}
	if l.Provider == "" {
		errs = append(errs, fmt.Errorf("%w: llm provider", ErrMissingRequiredField))
	}
	if l.Model == "" {
		errs = append(errs, fmt.Errorf("%w: llm model", ErrMissingRequiredField))
	}
	if l.Temperature < 0 || l.Temperature > 2 {
		errs = append(errs, fmt.Errorf("%w: temperature %v out of range [0, 2]", ErrInvalidValue, l.Temperature))
	}
	if l.MaxTokens < 0 {
		errs = append(errs, fmt.Errorf("%w: max_tokens must not be negative", ErrInvalidValue))
	}

	return errors.Join(errs...)
}

// Validate checks one MCP server definition and applies timeout defaults.
func (s *ServerConfig) Validate() error {
	var errs []error

	if err := interpolation.InterpolateStruct(s); err != nil {
		errs = append(errs, fmt.Errorf("interpolation failed: %w", err))
	}

	if s.Name == "" {
		errs = append(errs, fmt.Errorf("%w: server name", ErrMissingRequiredField))
	}

	switch s.Transport {
	case TransportStdio:
		if s.Command == "" {
			errs = append(errs, fmt.Errorf("%w: stdio server %q requires a command", ErrMissingRequiredField, s.Name))
		}
	case TransportHTTP:
		if s.URL == "" {
			errs = append(errs, fmt.Errorf("%w: http server %q requires a url", ErrMissingRequiredField, s.Name))
		}
	default:
		errs = append(errs, fmt.Errorf("%w: %q (expected %q or %q)",
			ErrInvalidTransport, s.Transport, TransportStdio, TransportHTTP))
	}

	if s.RegistrationTimeoutSeconds < 0 || s.ToolTimeoutSeconds < 0 {
		errs = append(errs, fmt.Errorf("%w: timeouts must not be negative", ErrInvalidValue))
	}
	if s.RegistrationTimeoutSeconds == 0 {
		s.RegistrationTimeoutSeconds = DefaultRegistrationTimeoutSeconds
	}
	if s.ToolTimeoutSeconds == 0 {
		s.ToolTimeoutSeconds = DefaultToolTimeoutSeconds
	}

	rootURIs := make(map[string]struct{}, len(s.Roots))
	for i, root := range s.Roots {
		if err := interpolation.InterpolateStruct(root); err != nil {
			errs = append(errs, fmt.Errorf("root %d: interpolation failed: %w", i, err))
		}
		if root.URI == "" {
			errs = append(errs, fmt.Errorf("%w: root %d uri", ErrMissingRequiredField, i))
		}
		rootURIs[root.URI] = struct{}{}
	}

	for tool, uris := range s.ToolRoots {
		for _, uri := range uris {
			if _, ok := rootURIs[uri]; !ok {
				errs = append(errs, fmt.Errorf("%w: tool_roots for %q references undeclared root %q",
					ErrInvalidReference, tool, uri))
			}
		}
	}

	return errors.Join(errs...)
}

// Permits reports whether the agent may reach the named MCP server.
func (a *AgentConfig) Permits(serverName string) bool {
	return slices.Contains(a.MCPServers, serverName)
}
