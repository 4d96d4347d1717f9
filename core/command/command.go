// Package command defines the commands listener subsystems hand back to the
// host runtime. Commands represent intent distilled from events (a key press
// becomes a movement, a window close becomes a quit) and are applied by the
// main loop between dispatch passes.
package command

// Command is the base interface for all commands.
type Command interface {
	// CommandName returns the name of the command for logging/debugging
	CommandName() string
}

// Move shifts the observer position by a delta per axis.
type Move struct {
	DX float64
	DY float64
	DZ float64
}

func (c *Move) CommandName() string {
	return "Move"
}

// TogglePause flips the loop between Running and Paused.
type TogglePause struct{}

func (c *TogglePause) CommandName() string {
	return "TogglePause"
}

// Quit asks the runtime to shut down cleanly.
type Quit struct {
	Reason string
}

func (c *Quit) CommandName() string {
	return "Quit"
}
