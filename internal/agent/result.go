package agent

import (
	"log/slog"

	"github.com/robbyt/go-loglater"

	"github.com/aurite-ai/aurite-go/internal/llm"
)

// Status is the terminal outcome of an agent run.
type Status string

const (
	// StatusSuccess means the model produced a final text response.
	StatusSuccess Status = "success"
	// StatusError means an LLM or infrastructure failure ended the run.
	StatusError Status = "error"
	// StatusMaxIterations means the iteration limit was reached while the
	// model was still requesting tools.
	StatusMaxIterations Status = "max_iterations_reached"
)

// RunResult is the complete record of one agent run. History holds every
// message exchanged, in order, including tool calls and tool results.
type RunResult struct {
	RunID         string        `json:"run_id"`
	AgentName     string        `json:"agent_name"`
	Status        Status        `json:"status"`
	FinalResponse string        `json:"final_response,omitempty"`
	ErrorMessage  string        `json:"error_message,omitempty"`
	History       []llm.Message `json:"history"`
	Iterations    int           `json:"iterations"`

	logs *loglater.LogCollector
}

// PlaybackLogs replays every log record captured during the run to the
// given handler.
func (r *RunResult) PlaybackLogs(handler slog.Handler) error {
	if r.logs == nil {
		return nil
	}
	return r.logs.PlayLogs(handler)
}

// Succeeded reports whether the run reached a final response.
func (r *RunResult) Succeeded() bool {
	return r.Status == StatusSuccess
}
