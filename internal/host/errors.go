package host

import (
	"errors"
	"fmt"
	"time"
)

// Operation tags attached to timeout errors so callers can distinguish
// registration timeouts from tool-call timeouts.
const (
	OperationRegistration = "registration"
	OperationToolCall     = "tool_call"
)

var (
	ErrToolNotFound        = errors.New("tool not found")
	ErrServerNotRegistered = errors.New("server not registered")
)

// ServerTimeoutError reports that an external MCP operation exceeded its
// configured timeout. Name is a server name for registration timeouts and a
// tool name for tool-call timeouts.
type ServerTimeoutError struct {
	Name      string
	Timeout   time.Duration
	Operation string
}

func (e *ServerTimeoutError) Error() string {
	return fmt.Sprintf("%s %q timed out after %s", e.Operation, e.Name, e.Timeout)
}

// TimeoutSeconds returns the configured timeout in seconds, matching how
// timeouts are expressed in configuration files.
func (e *ServerTimeoutError) TimeoutSeconds() float64 {
	return e.Timeout.Seconds()
}

// ServerFileNotFoundError reports that a stdio server's command does not
// exist. Fatal at registration time.
type ServerFileNotFoundError struct {
	Server  string
	Command string
}

func (e *ServerFileNotFoundError) Error() string {
	return fmt.Sprintf("server %q: command not found: %s", e.Server, e.Command)
}

// PermissionError reports that an agent attempted a tool outside its
// permitted MCP servers.
type PermissionError struct {
	Agent  string
	Tool   string
	Server string
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("agent %q is not permitted to call tool %q on server %q",
		e.Agent, e.Tool, e.Server)
}
