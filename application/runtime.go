// Package application provides the host runtime: the main loop that owns
// the listener subsystems and drives the event core, one dispatch pass per
// tick.
package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"lumina-go/application/systems"
	"lumina-go/core/command"
	"lumina-go/core/event"
	"lumina-go/core/eventbus"
	"lumina-go/core/state"
	"lumina-go/domain/scenario"
	"lumina-go/infrastructure/logging"
)

// graceTicks is how many ticks the loop keeps running after the scenario's
// last step, so follow-up events (defeats published between passes) still
// get dispatched.
const graceTicks = 2

// Position is the observer position moved by input commands.
type Position struct {
	X float64
	Y float64
	Z float64
}

// Config holds configuration for the Runtime.
type Config struct {
	Bus       *eventbus.Bus
	Scenarios *scenario.Registry
	Logger    *slog.Logger

	// TickEvery is the loop tick interval. Defaults to ~60 Hz.
	TickEvery time.Duration
	// MaxTicks caps the loop length; 0 means no cap.
	MaxTicks int
	// InitialHealth seeds the combat system's health table.
	InitialHealth map[string]int
}

// Runtime owns the listener subsystems and the main loop. It holds the only
// strong references to the systems; the event core references them weakly.
type Runtime struct {
	bus       *eventbus.Bus
	scenarios *scenario.Registry
	logger    *slog.Logger
	tickEvery time.Duration
	maxTicks  int

	combat *systems.Combat
	input  *systems.Input
	audit  *systems.Audit

	loopState state.LoopState
	pos       Position
	ticks     int
}

// New creates a runtime. Bus and Scenarios are required.
func New(cfg *Config) (*Runtime, error) {
	if cfg == nil || cfg.Bus == nil {
		return nil, fmt.Errorf("runtime requires an event bus")
	}
	if cfg.Scenarios == nil {
		return nil, fmt.Errorf("runtime requires a scenario registry")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logging.L()
	}
	tickEvery := cfg.TickEvery
	if tickEvery <= 0 {
		tickEvery = time.Second / 60
	}

	r := &Runtime{
		bus:       cfg.Bus,
		scenarios: cfg.Scenarios,
		logger:    logger,
		tickEvery: tickEvery,
		maxTicks:  cfg.MaxTicks,
		combat:    systems.NewCombat(logger, cfg.InitialHealth),
		input:     systems.NewInput(logger),
		audit:     systems.NewAudit(logger),
		loopState: state.StateIdle,
	}
	r.registerListeners()
	return r, nil
}

// registerListeners wires the subsystems into the event core. The audit
// observer registers first under each kind so it sees events before the
// consuming systems do.
func (r *Runtime) registerListeners() {
	combatKinds := []eventbus.Kind{
		eventbus.KindOf[event.Damage](),
		eventbus.KindOf[event.Heal](),
		eventbus.KindOf[event.EntityDefeated](),
	}
	inputKinds := []eventbus.Kind{
		eventbus.KindOf[event.KeyPressed](),
		eventbus.KindOf[event.WindowClosed](),
	}

	for _, kind := range combatKinds {
		eventbus.AddListener(r.bus, kind, r.audit)
	}
	for _, kind := range inputKinds {
		eventbus.AddListener(r.bus, kind, r.audit)
	}
	for _, kind := range combatKinds {
		eventbus.AddListener(r.bus, kind, r.combat)
	}
	for _, kind := range inputKinds {
		eventbus.AddListener(r.bus, kind, r.input)
	}
}

// Run replays the named scenario through the main loop and returns when the
// loop reaches Stopped. It is a setup error to name an unknown scenario or
// to reuse a runtime whose loop already ran.
func (r *Runtime) Run(ctx context.Context, scenarioName string) error {
	scn := r.scenarios.Get(scenarioName)
	if scn == nil {
		return fmt.Errorf("unknown scenario %q", scenarioName)
	}
	if err := r.setState(state.StateRunning); err != nil {
		return err
	}

	logger := r.logger.With("run_id", uuid.NewString(), "scenario", scn.Name)
	logger.Info("loop starting", "steps", len(scn.Steps), "producers", scn.Producers())

	pl := newPlayer(scn, r.bus, logger)
	pl.start()
	defer pl.stop()

	ticker := time.NewTicker(r.tickEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logging.From(ctx).Info("run cancelled", "scenario", scn.Name)
			r.mustStop(logger, "context cancelled")
		case <-ticker.C:
		}
		if r.loopState == state.StateStopping {
			break
		}

		r.ticks++
		if r.ticks <= scn.LastTick() {
			pl.feed(r.ticks)
		} else if r.ticks == scn.LastTick()+1 {
			pl.stop()
		}

		r.bus.Dispatch()

		// Kills recorded during the pass become events for the next one.
		for _, entity := range r.combat.TakeDefeated() {
			r.bus.Push(event.NewEntityDefeated(event.PriorityHigh, entity, ""))
		}

		r.applyCommands(logger)

		if r.loopState == state.StateStopping {
			break
		}
		if r.ticks > scn.LastTick()+graceTicks {
			r.mustStop(logger, "scenario finished")
			break
		}
		if r.maxTicks > 0 && r.ticks >= r.maxTicks {
			r.mustStop(logger, "tick cap reached")
			break
		}
	}

	if err := r.setState(state.StateStopped); err != nil {
		return err
	}
	logger.Info("loop finished", "ticks", r.ticks, "position", r.pos, "observed", r.audit.Count())
	return nil
}

// applyCommands drains the input system and applies its commands.
func (r *Runtime) applyCommands(logger *slog.Logger) {
	for _, cmd := range r.input.Drain() {
		switch c := cmd.(type) {
		case *command.Move:
			if r.loopState == state.StatePaused {
				logger.Debug("movement ignored while paused")
				continue
			}
			r.pos.X += c.DX
			r.pos.Y += c.DY
			r.pos.Z += c.DZ
			logger.Debug("observer moved", "x", r.pos.X, "y", r.pos.Y, "z", r.pos.Z)
		case *command.TogglePause:
			switch r.loopState {
			case state.StateRunning:
				r.transition(logger, state.StatePaused)
			case state.StatePaused:
				r.transition(logger, state.StateRunning)
			}
		case *command.Quit:
			logger.Info("quit requested", "reason", c.Reason)
			r.mustStop(logger, c.Reason)
		default:
			logger.Warn("unknown command dropped", "command", cmd.CommandName())
		}
	}
}

// mustStop moves the loop toward Stopping if it is not there already.
func (r *Runtime) mustStop(logger *slog.Logger, reason string) {
	if r.loopState == state.StateStopping || r.loopState.IsTerminal() {
		return
	}
	logger.Debug("loop stopping", "reason", reason)
	r.transition(logger, state.StateStopping)
}

func (r *Runtime) transition(logger *slog.Logger, to state.LoopState) {
	if err := r.setState(to); err != nil {
		logger.Warn("state transition rejected", "error", err)
	}
}

func (r *Runtime) setState(to state.LoopState) error {
	if !r.loopState.CanTransitionTo(to) {
		return state.NewTransitionError(r.loopState, to, "")
	}
	r.loopState = to
	return nil
}

// State returns the loop state. Valid to read when Run is not executing.
func (r *Runtime) State() state.LoopState {
	return r.loopState
}

// ObserverPosition returns the position accumulated from movement commands.
func (r *Runtime) ObserverPosition() Position {
	return r.pos
}

// Combat exposes the combat system for inspection.
func (r *Runtime) Combat() *systems.Combat {
	return r.combat
}

// Ticks returns how many loop ticks ran.
func (r *Runtime) Ticks() int {
	return r.ticks
}
