// Package llm defines the conversation message model and the client
// interface the agent loop drives. Providers are external services; this
// package only specifies the boundary and ships an OpenAI-compatible
// implementation.
package llm

import (
	"context"
	"encoding/json"
)

// Role identifies the author of a conversation message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Message is one entry in a conversation history. Histories are append-only
// during a run.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`

	// ToolCalls is set on assistant messages that request tool execution.
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`

	// ToolCallID and ToolName are set on tool-role messages carrying results.
	ToolCallID string `json:"tool_call_id,omitempty"`
	ToolName   string `json:"tool_name,omitempty"`
}

// ToolCall is a tool invocation requested by the model. Arguments are kept
// as raw JSON; parsing failures are handled by the turn processor, not here.
type ToolCall struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

// ToolSchema advertises one callable tool to the model.
type ToolSchema struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	InputSchema any    `json:"input_schema,omitempty"`
}

// Request is one model invocation: the full history, the tools the agent may
// use (nil for none), and an optional system prompt override.
type Request struct {
	Messages     []Message
	Tools        []ToolSchema
	SystemPrompt string
}

// Client is the boundary to an LLM provider. Implementations must report
// rate-limit and bad-request failures as distinguishable error kinds
// (ErrRateLimited, ErrBadRequest).
type Client interface {
	CreateMessage(ctx context.Context, req *Request) (*Message, error)
}

// NewUserMessage builds a user-role text message.
func NewUserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// NewToolResultMessage builds a tool-role message carrying a tool result or
// a tool error description.
func NewToolResultMessage(toolCallID, toolName, content string) Message {
	return Message{
		Role:       RoleTool,
		Content:    content,
		ToolCallID: toolCallID,
		ToolName:   toolName,
	}
}
