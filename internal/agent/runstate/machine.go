// Package runstate provides the finite state machine that tracks an agent
// run through its lifecycle.
//
// Run lifecycle:
//  1. Created - Run object built, history seeded with the user message
//  2. Running - Turn loop in progress
//  3. Completed - Model produced a final response (terminal)
//  4. Exhausted - Iteration limit reached without a final response (terminal)
//  5. Failed - LLM or infrastructure error ended the run (terminal)
package runstate

import (
	"context"
	"log/slog"

	"github.com/robbyt/go-fsm"
)

// State constants for the run lifecycle.
const (
	StateCreated   = "created"
	StateRunning   = "running"
	StateCompleted = "completed"
	StateExhausted = "exhausted"
	StateFailed    = "failed"
)

// RunTransitions defines the valid state transitions for an agent run.
var RunTransitions = map[string][]string{
	StateCreated:   {StateRunning, StateFailed},
	StateRunning:   {StateCompleted, StateExhausted, StateFailed},
	StateCompleted: {},
	StateExhausted: {},
	StateFailed:    {},
}

// Machine is the subset of the state machine surface the agent uses.
type Machine interface {
	Transition(state string) error
	GetState() string
	GetStateChan(ctx context.Context) <-chan string
}

// New creates a run state machine starting in the created state.
func New(handler slog.Handler) (Machine, error) {
	return fsm.New(handler, StateCreated, RunTransitions)
}
