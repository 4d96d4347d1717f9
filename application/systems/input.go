package systems

import (
	"log/slog"

	"lumina-go/core/command"
	"lumina-go/core/event"
)

// moveStep is the distance one key press moves the observer.
const moveStep = 1.0

// Input translates input events into commands for the runtime. Commands
// accumulate on an internal list the runtime drains between dispatch passes.
type Input struct {
	logger  *slog.Logger
	pending []command.Command
}

// NewInput creates the input system.
func NewInput(logger *slog.Logger) *Input {
	if logger == nil {
		logger = slog.Default()
	}
	return &Input{logger: logger}
}

// CanHandle accepts key presses with a known binding and window close events.
func (i *Input) CanHandle(e event.Event) bool {
	switch ev := e.(type) {
	case *event.KeyPressed:
		if ev.Action != event.KeyActionPress {
			return false
		}
		return bindingFor(ev.Key) != nil
	case *event.WindowClosed:
		return true
	default:
		return false
	}
}

// OnEvent queues the command bound to the event.
func (i *Input) OnEvent(e event.Event) bool {
	switch ev := e.(type) {
	case *event.KeyPressed:
		cmd := bindingFor(ev.Key)
		if cmd == nil {
			return false
		}
		i.pending = append(i.pending, cmd)
		i.logger.Debug("key bound to command", "key", ev.Key, "command", cmd.CommandName())
		return true
	case *event.WindowClosed:
		i.pending = append(i.pending, &command.Quit{Reason: "window closed"})
		return true
	default:
		return false
	}
}

// Drain returns the queued commands and resets the list.
func (i *Input) Drain() []command.Command {
	out := i.pending
	i.pending = nil
	return out
}

// bindingFor maps a key code to its command. Returns nil for unbound keys.
func bindingFor(key string) command.Command {
	switch key {
	case "W":
		return &command.Move{DY: moveStep}
	case "S":
		return &command.Move{DY: -moveStep}
	case "A":
		return &command.Move{DX: -moveStep}
	case "D":
		return &command.Move{DX: moveStep}
	case "Space":
		return &command.TogglePause{}
	case "Escape":
		return &command.Quit{Reason: "escape pressed"}
	default:
		return nil
	}
}
