package toolserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/robbyt/go-supervisor/supervisor"

	"github.com/aurite-ai/aurite-go/internal/finitestate"
)

// Interface guards
var (
	_ supervisor.Runnable  = (*Runner)(nil)
	_ supervisor.Stateable = (*Runner)(nil)
)

const shutdownTimeout = 5 * time.Second

// Runner serves the builtin MCP server over HTTP as a supervised runnable.
type Runner struct {
	listenAddr string
	server     *mcpsdk.Server
	logger     *slog.Logger
	fsm        finitestate.Machine

	parentCtx context.Context
	runCtx    context.Context
	runCancel context.CancelFunc

	mu        sync.Mutex
	boundAddr string
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogHandler sets the slog handler for the runner and its state machine.
func WithLogHandler(handler slog.Handler) Option {
	return func(r *Runner) {
		if handler != nil {
			r.logger = slog.New(handler).WithGroup("toolserver.Runner")
		}
	}
}

// WithContext sets the parent context; cancelling it stops the runner.
func WithContext(ctx context.Context) Option {
	return func(r *Runner) {
		if ctx != nil {
			r.parentCtx = ctx
		}
	}
}

// NewRunner creates a runner serving the builtin tool server on listenAddr.
func NewRunner(listenAddr string, opts ...Option) (*Runner, error) {
	runner := &Runner{
		listenAddr: listenAddr,
		server:     BuildServer(),
		logger:     slog.Default().WithGroup("toolserver.Runner"),
		parentCtx:  context.Background(),
	}
	for _, opt := range opts {
		opt(runner)
	}

	machine, err := finitestate.New(runner.logger.WithGroup("fsm").Handler())
	if err != nil {
		return nil, fmt.Errorf("failed to create state machine: %w", err)
	}
	runner.fsm = machine

	return runner, nil
}

// String implements the supervisor.Runnable interface.
func (r *Runner) String() string {
	return "toolserver.Runner"
}

// Run binds the listener, serves the MCP endpoint, and blocks until the
// context is cancelled or the HTTP server fails.
func (r *Runner) Run(ctx context.Context) error {
	if err := r.fsm.Transition(finitestate.StatusBooting); err != nil {
		return fmt.Errorf("failed to transition to booting state: %w", err)
	}

	r.runCtx, r.runCancel = context.WithCancel(ctx)
	defer r.runCancel()

	listener, err := net.Listen("tcp", r.listenAddr)
	if err != nil {
		r.fsm.TransitionBool(finitestate.StatusError)
		return fmt.Errorf("failed to listen on %s: %w", r.listenAddr, err)
	}

	r.mu.Lock()
	r.boundAddr = listener.Addr().String()
	r.mu.Unlock()

	mux := http.NewServeMux()
	mux.Handle(MCPPath, mcpsdk.NewStreamableHTTPHandler(func(*http.Request) *mcpsdk.Server {
		return r.server
	}, nil))

	httpServer := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- httpServer.Serve(listener)
	}()

	if err := r.fsm.Transition(finitestate.StatusRunning); err != nil {
		return fmt.Errorf("failed to transition to running state: %w", err)
	}
	r.logger.Info("Builtin tool server listening", "addr", r.boundAddr, "path", MCPPath)

	select {
	case <-r.parentCtx.Done():
		r.logger.Debug("Parent context canceled")
	case <-r.runCtx.Done():
		r.logger.Debug("Run context canceled")
	case err := <-serveErr:
		r.fsm.TransitionBool(finitestate.StatusError)
		return fmt.Errorf("tool server failed: %w", err)
	}

	if r.fsm.GetState() != finitestate.StatusStopping {
		if err := r.fsm.Transition(finitestate.StatusStopping); err != nil {
			r.logger.Error("Failed to transition to stopping state", "error", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		r.logger.Error("HTTP shutdown failed", "error", err)
	}

	if err := r.fsm.Transition(finitestate.StatusStopped); err != nil {
		return fmt.Errorf("failed to transition to stopped state: %w", err)
	}
	r.logger.Info("Builtin tool server stopped")
	return nil
}

// Stop implements the supervisor.Runnable interface.
func (r *Runner) Stop() {
	r.logger.Debug("Stopping Runner")
	if err := r.fsm.Transition(finitestate.StatusStopping); err != nil {
		r.logger.Error("Failed to transition to stopping state", "error", err)
	}
	if r.runCancel != nil {
		r.runCancel()
	}
}

// Addr returns the bound listen address, empty until Run has bound it.
func (r *Runner) Addr() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.boundAddr
}

// URL returns the full MCP endpoint URL, empty until Run has bound it.
func (r *Runner) URL() string {
	addr := r.Addr()
	if addr == "" {
		return ""
	}
	return "http://" + addr + MCPPath
}

// GetState implements the supervisor.Stateable interface.
func (r *Runner) GetState() string {
	return r.fsm.GetState()
}

// GetStateChan implements the supervisor.Stateable interface.
func (r *Runner) GetStateChan(ctx context.Context) <-chan string {
	return r.fsm.GetStateChan(ctx)
}

// IsRunning reports whether the runner is serving requests.
func (r *Runner) IsRunning() bool {
	return r.fsm.GetState() == finitestate.StatusRunning
}
