// Package config defines the aurite configuration model: agents, LLM
// references, and MCP server definitions loaded from TOML.
package config

import (
	"time"
)

// Transport names accepted for MCP server definitions.
const (
	TransportStdio = "stdio"
	TransportHTTP  = "http"
)

// Defaults applied during validation.
const (
	DefaultMaxIterations              = 50
	DefaultRegistrationTimeoutSeconds = 10.0
	DefaultToolTimeoutSeconds         = 30.0
	DefaultMaxParallelTools           = 3
)

// Config is the root configuration document.
type Config struct {
	LogLevel   string          `toml:"log_level"  env_interpolation:"yes"`
	LLMs       []*LLMConfig    `toml:"llms"`
	MCPServers []*ServerConfig `toml:"mcp_servers"`
	Agents     []*AgentConfig  `toml:"agents"`
}

// AgentConfig declares an agent: which LLM it uses, which MCP servers it may
// reach, and its loop limits. Immutable once a run starts.
type AgentConfig struct {
	Name         string `toml:"name"          env_interpolation:"no"`
	LLM          string `toml:"llm"           env_interpolation:"no"`
	SystemPrompt string `toml:"system_prompt" env_interpolation:"yes"`

	// MCPServers lists the servers whose tools the agent may call. An empty
	// list grants zero tool access.
	MCPServers []string `toml:"mcp_servers" env_interpolation:"no"`

	// MaxIterations bounds the turn loop. Zero means "use the default",
	// never "unbounded".
	MaxIterations int `toml:"max_iterations"`

	// ParallelTools enables bounded concurrent dispatch of independent tool
	// calls within one turn. Sequential when false.
	ParallelTools    bool `toml:"parallel_tools"`
	MaxParallelTools int  `toml:"max_parallel_tools"`
}

// LLMConfig is immutable reference data describing one model endpoint.
type LLMConfig struct {
	Name        string  `toml:"name"        env_interpolation:"no"`
	Provider    string  `toml:"provider"    env_interpolation:"no"`
	Model       string  `toml:"model"       env_interpolation:"yes"`
	Temperature float64 `toml:"temperature"`
	MaxTokens   int     `toml:"max_tokens"`
	BaseURL     string  `toml:"base_url"    env_interpolation:"yes"`

	// APIKeyEnv names the environment variable holding the API key. The key
	// itself never appears in config files.
	APIKeyEnv string `toml:"api_key_env" env_interpolation:"no"`
}

// ServerConfig describes how to reach one MCP tool server.
type ServerConfig struct {
	Name      string `toml:"name"      env_interpolation:"no"`
	Transport string `toml:"transport" env_interpolation:"no"`

	// Command and Args apply to stdio transports.
	Command string   `toml:"command" env_interpolation:"yes"`
	Args    []string `toml:"args"    env_interpolation:"yes"`

	// URL applies to http transports.
	URL string `toml:"url" env_interpolation:"yes"`

	Roots []*RootConfig `toml:"roots"`

	// ToolRoots maps a remote tool name to the root URIs it must have access
	// to before it may be called. Every listed URI must also appear in Roots.
	ToolRoots map[string][]string `toml:"tool_roots"`

	// Timeouts are expressed in seconds so sub-second values round-trip
	// through TOML without a duration syntax.
	RegistrationTimeoutSeconds float64 `toml:"registration_timeout"`
	ToolTimeoutSeconds         float64 `toml:"tool_timeout"`
}

// RootConfig is a URI-scoped capability boundary registered for a server.
type RootConfig struct {
	URI          string   `toml:"uri"          env_interpolation:"yes"`
	Name         string   `toml:"name"         env_interpolation:"yes"`
	Capabilities []string `toml:"capabilities" env_interpolation:"no"`
}

// RegistrationTimeout returns the configured registration timeout.
func (s *ServerConfig) RegistrationTimeout() time.Duration {
	return secondsToDuration(s.RegistrationTimeoutSeconds)
}

// ToolTimeout returns the configured per-call tool timeout.
func (s *ServerConfig) ToolTimeout() time.Duration {
	return secondsToDuration(s.ToolTimeoutSeconds)
}

func secondsToDuration(seconds float64) time.Duration {
	return time.Duration(seconds * float64(time.Second))
}
