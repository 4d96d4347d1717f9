// Package state defines the host runtime's loop state machine.
package state

import "fmt"

// LoopState represents the state of the host's main loop.
type LoopState int

const (
	// StateIdle is the initial state before the loop starts.
	StateIdle LoopState = iota
	// StateRunning indicates the loop is ticking and dispatching events.
	StateRunning
	// StatePaused indicates the loop is ticking but skipping simulation work.
	StatePaused
	// StateStopping indicates a shutdown has been requested.
	StateStopping
	// StateStopped indicates the loop has exited.
	StateStopped
)

// String returns the string representation of the state.
func (s LoopState) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateRunning:
		return "Running"
	case StatePaused:
		return "Paused"
	case StateStopping:
		return "Stopping"
	case StateStopped:
		return "Stopped"
	default:
		return fmt.Sprintf("Unknown(%d)", s)
	}
}

// validTransitions defines the allowed state transitions.
// Key is the current state, value is a list of valid target states.
var validTransitions = map[LoopState][]LoopState{
	StateIdle:     {StateRunning},
	StateRunning:  {StatePaused, StateStopping, StateStopped},
	StatePaused:   {StateRunning, StateStopping, StateStopped},
	StateStopping: {StateStopped},
	StateStopped:  {}, // Terminal state, no transitions allowed
}

// CanTransitionTo checks if transitioning from the current state to the target state is valid.
func (s LoopState) CanTransitionTo(target LoopState) bool {
	allowed, ok := validTransitions[s]
	if !ok {
		return false
	}
	for _, t := range allowed {
		if t == target {
			return true
		}
	}
	return false
}

// ValidTransitions returns the list of valid target states from the current state.
func (s LoopState) ValidTransitions() []LoopState {
	return validTransitions[s]
}

// IsTerminal returns true if the state is a terminal state (no further transitions).
func (s LoopState) IsTerminal() bool {
	return s == StateStopped
}

// IsTicking returns true if the loop is actively ticking.
func (s LoopState) IsTicking() bool {
	return s == StateRunning || s == StatePaused
}

// TransitionError represents an invalid state transition attempt.
type TransitionError struct {
	From   LoopState
	To     LoopState
	Reason string
}

func (e *TransitionError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("invalid state transition from %s to %s: %s", e.From, e.To, e.Reason)
	}
	return fmt.Sprintf("invalid state transition from %s to %s", e.From, e.To)
}

// NewTransitionError creates a new TransitionError.
func NewTransitionError(from, to LoopState, reason string) *TransitionError {
	return &TransitionError{From: from, To: to, Reason: reason}
}
