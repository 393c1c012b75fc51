package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/aurite-ai/aurite-go/internal/config"
	"github.com/aurite-ai/aurite-go/internal/llm"
	"github.com/aurite-ai/aurite-go/internal/mcp"
)

// ToolDispatcher is the surface of the MCP host the turn processor needs:
// tool discovery scoped to an agent's permitted servers, and namespaced
// tool dispatch.
type ToolDispatcher interface {
	FormattedTools(agentCfg *config.AgentConfig) []mcp.Tool
	CallTool(ctx context.Context, toolName string, args map[string]any, agentCfg *config.AgentConfig) (*mcp.CallToolResult, error)
}

// TurnResult is the outcome of one conversation turn. When Final is true
// the assistant message is the run's final response and ToolResults is
// empty; otherwise ToolResults holds one tool message per requested call,
// in request order.
type TurnResult struct {
	Assistant   llm.Message
	ToolResults []llm.Message
	Final       bool
}

// TurnProcessor executes single conversation turns: one model call, then
// any tool calls the model requested. Tool failures never abort a turn;
// they are folded into the history as error-text tool messages so the
// model can react on the next turn.
type TurnProcessor struct {
	llm    llm.Client
	tools  ToolDispatcher
	cfg    *config.AgentConfig
	logger *slog.Logger
}

// NewTurnProcessor builds a turn processor for one agent configuration.
func NewTurnProcessor(
	llmClient llm.Client,
	tools ToolDispatcher,
	cfg *config.AgentConfig,
	logger *slog.Logger,
) *TurnProcessor {
	if logger == nil {
		logger = slog.Default()
	}
	return &TurnProcessor{
		llm:    llmClient,
		tools:  tools,
		cfg:    cfg,
		logger: logger.WithGroup("turn"),
	}
}

// ProcessTurn runs one turn against the given history. Only LLM failures
// are returned as errors; tool failures come back as tool messages.
func (tp *TurnProcessor) ProcessTurn(ctx context.Context, history []llm.Message) (*TurnResult, error) {
	req := &llm.Request{
		Messages:     history,
		Tools:        tp.toolSchemas(),
		SystemPrompt: tp.cfg.SystemPrompt,
	}

	msg, err := tp.llm.CreateMessage(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("model call: %w", err)
	}

	if len(msg.ToolCalls) == 0 {
		return &TurnResult{Assistant: *msg, Final: true}, nil
	}

	tp.logger.Debug("model requested tools", "count", len(msg.ToolCalls))
	return &TurnResult{
		Assistant:   *msg,
		ToolResults: tp.executeCalls(ctx, msg.ToolCalls),
	}, nil
}

// toolSchemas converts the host's namespaced tool list into the model's
// schema format. A nil dispatcher or an agent with no permitted servers
// yields no tools.
func (tp *TurnProcessor) toolSchemas() []llm.ToolSchema {
	if tp.tools == nil {
		return nil
	}
	hostTools := tp.tools.FormattedTools(tp.cfg)
	if len(hostTools) == 0 {
		return nil
	}
	schemas := make([]llm.ToolSchema, len(hostTools))
	for i, tool := range hostTools {
		schemas[i] = llm.ToolSchema{
			Name:        tool.Name,
			Description: tool.Description,
			InputSchema: tool.InputSchema,
		}
	}
	return schemas
}

// executeCalls runs the requested tool calls and returns one tool message
// per call, in request order regardless of completion order.
func (tp *TurnProcessor) executeCalls(ctx context.Context, calls []llm.ToolCall) []llm.Message {
	results := make([]llm.Message, len(calls))

	if !tp.cfg.ParallelTools || len(calls) < 2 {
		for i, call := range calls {
			results[i] = tp.executeCall(ctx, call)
		}
		return results
	}

	limit := tp.cfg.MaxParallelTools
	if limit < 1 {
		limit = config.DefaultMaxParallelTools
	}
	sem := make(chan struct{}, limit)
	var wg sync.WaitGroup
	for i, call := range calls {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			results[i] = tp.executeCall(ctx, call)
		}()
	}
	wg.Wait()
	return results
}

// executeCall dispatches one tool call. Every failure mode (malformed
// arguments, dispatch error, protocol-level tool fault) becomes a tool
// message so the run continues.
func (tp *TurnProcessor) executeCall(ctx context.Context, call llm.ToolCall) llm.Message {
	var args map[string]any
	if len(call.Arguments) > 0 {
		if err := json.Unmarshal(call.Arguments, &args); err != nil {
			tp.logger.Warn("malformed tool arguments", "tool", call.Name, "error", err)
			return toolErrorMessage(call, fmt.Sprintf("invalid arguments: %v", err))
		}
	}

	result, err := tp.tools.CallTool(ctx, call.Name, args, tp.cfg)
	if err != nil {
		tp.logger.Warn("tool call failed", "tool", call.Name, "error", err)
		return toolErrorMessage(call, err.Error())
	}
	if result.IsError {
		return toolErrorMessage(call, contentText(result))
	}
	return llm.NewToolResultMessage(call.ID, call.Name, contentText(result))
}

// toolErrorMessage formats a recoverable tool failure for the model.
func toolErrorMessage(call llm.ToolCall, message string) llm.Message {
	content := fmt.Sprintf("Error executing tool '%s': %s", call.Name, message)
	return llm.NewToolResultMessage(call.ID, call.Name, content)
}

// contentText flattens a tool result's text blocks into one string.
func contentText(result *mcp.CallToolResult) string {
	var parts []string
	for _, block := range result.Content {
		if text, ok := block.(*mcp.TextContent); ok {
			parts = append(parts, text.Text)
		}
	}
	return strings.Join(parts, "\n")
}
