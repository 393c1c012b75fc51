// Package finitestate provides the finite state machine used by runnable
// components (the builtin tool server) to track their lifecycle.
package finitestate

import (
	"context"
	"log/slog"
	"time"

	"github.com/robbyt/go-fsm"
)

const (
	StatusNew      = fsm.StatusNew
	StatusBooting  = fsm.StatusBooting
	StatusRunning  = fsm.StatusRunning
	StatusStopping = fsm.StatusStopping
	StatusStopped  = fsm.StatusStopped
	StatusError    = fsm.StatusError
)

// TypicalTransitions is the standard runnable lifecycle transition set.
var TypicalTransitions = fsm.TypicalTransitions

// Machine tracks a runnable component's lifecycle states.
type Machine interface {
	Transition(state string) error
	TransitionBool(state string) bool
	GetState() string
	GetStateChan(ctx context.Context) <-chan string
}

// runnerFSM wraps fsm.Machine with a sync broadcast channel so state
// updates are delivered during shutdown.
type runnerFSM struct {
	*fsm.Machine
}

func (m *runnerFSM) GetStateChan(ctx context.Context) <-chan string {
	return m.GetStateChanWithOptions(ctx, fsm.WithSyncTimeout(5*time.Second))
}

// New creates a lifecycle state machine using the standard transitions.
func New(handler slog.Handler) (Machine, error) {
	machine, err := fsm.New(handler, StatusNew, TypicalTransitions)
	if err != nil {
		return nil, err
	}
	return &runnerFSM{Machine: machine}, nil
}
