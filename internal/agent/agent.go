// Package agent implements the conversation loop that drives an LLM until
// it produces a final response, dispatching the tool calls it requests in
// between. Each run gets its own ID, state machine, and log history.
package agent

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gofrs/uuid/v5"
	"github.com/robbyt/go-loglater"

	"github.com/aurite-ai/aurite-go/internal/agent/runstate"
	"github.com/aurite-ai/aurite-go/internal/config"
	"github.com/aurite-ai/aurite-go/internal/llm"
)

// Agent binds an agent configuration to an LLM client and a tool
// dispatcher. A nil dispatcher means the agent runs without tool access,
// the same as an empty permitted-server list.
type Agent struct {
	cfg     *config.AgentConfig
	llm     llm.Client
	tools   ToolDispatcher
	handler slog.Handler
}

// Option configures an Agent.
type Option func(*Agent)

// WithLogHandler sets the slog handler run loggers are built from.
func WithLogHandler(handler slog.Handler) Option {
	return func(a *Agent) {
		if handler != nil {
			a.handler = handler
		}
	}
}

// New builds an agent. The config must already be validated; the LLM
// client is required, the tool dispatcher is not.
func New(cfg *config.AgentConfig, llmClient llm.Client, tools ToolDispatcher, opts ...Option) (*Agent, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}
	if llmClient == nil {
		return nil, ErrNilLLMClient
	}
	a := &Agent{
		cfg:     cfg,
		llm:     llmClient,
		tools:   tools,
		handler: slog.Default().Handler(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Name returns the agent's configured name.
func (a *Agent) Name() string {
	return a.cfg.Name
}

// Run executes the turn loop for one user message. The returned result is
// always non-nil on a nil error: LLM failures and iteration exhaustion are
// reported through RunResult.Status, not the error return.
func (a *Agent) Run(ctx context.Context, userMessage string) (*RunResult, error) {
	return a.RunWithHistory(ctx, nil, userMessage)
}

// RunWithHistory executes the turn loop with prior conversation messages
// prepended, so a persisted session can continue where it left off. The
// result's History contains the prior messages followed by everything this
// run added.
func (a *Agent) RunWithHistory(ctx context.Context, prior []llm.Message, userMessage string) (*RunResult, error) {
	if userMessage == "" {
		return nil, ErrEmptyMessage
	}

	runID := uuid.Must(uuid.NewV6())

	machine, err := runstate.New(a.handler)
	if err != nil {
		return nil, fmt.Errorf("creating run state machine: %w", err)
	}

	// Every log line from this run is both forwarded and retained, so a
	// failed run's history can be replayed for diagnosis.
	collector := loglater.NewLogCollector(a.handler)
	logger := slog.New(collector).With(
		"run_id", runID,
		"agent", a.cfg.Name)

	processor := NewTurnProcessor(a.llm, a.tools, a.cfg, logger)

	maxIterations := a.cfg.MaxIterations
	if maxIterations < 1 {
		maxIterations = config.DefaultMaxIterations
	}

	history := make([]llm.Message, 0, len(prior)+1)
	history = append(history, prior...)
	history = append(history, llm.NewUserMessage(userMessage))

	result := &RunResult{
		RunID:     runID.String(),
		AgentName: a.cfg.Name,
		History:   history,
		logs:      collector,
	}

	if err := machine.Transition(runstate.StateRunning); err != nil {
		return nil, fmt.Errorf("starting run: %w", err)
	}
	logger.Info("run started", "max_iterations", maxIterations)

	for iteration := 1; iteration <= maxIterations; iteration++ {
		result.Iterations = iteration

		turn, err := processor.ProcessTurn(ctx, result.History)
		if err != nil {
			logger.Error("run failed", "iteration", iteration, "error", err)
			_ = machine.Transition(runstate.StateFailed)
			result.Status = StatusError
			result.ErrorMessage = err.Error()
			return result, nil
		}

		result.History = append(result.History, turn.Assistant)
		if turn.Final {
			_ = machine.Transition(runstate.StateCompleted)
			result.Status = StatusSuccess
			result.FinalResponse = turn.Assistant.Content
			logger.Info("run completed", "iterations", iteration)
			return result, nil
		}
		result.History = append(result.History, turn.ToolResults...)
	}

	_ = machine.Transition(runstate.StateExhausted)
	result.Status = StatusMaxIterations
	result.ErrorMessage = fmt.Sprintf(
		"agent %q reached the maximum of %d iterations without a final response",
		a.cfg.Name, maxIterations)
	logger.Warn("run exhausted", "max_iterations", maxIterations)
	return result, nil
}
