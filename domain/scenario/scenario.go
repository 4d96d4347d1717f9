// Package scenario defines scripted event feeds: named sequences of timed
// steps that the host replays through the event core. Scenarios are data
// only; each step names a producer, an event kind, a priority, and the
// event's payload parameters.
package scenario

import (
	"fmt"

	"lumina-go/core/event"
)

// Step is one scripted event push.
type Step struct {
	// AtTick is the loop tick (1-based) at which the step fires.
	AtTick int
	// Producer names the producer queue the event is pushed on.
	Producer string
	// Event is the event kind name (matches the event's EventName).
	Event string
	// Priority is the dispatch priority of the produced event.
	Priority event.Priority
	// Params holds the kind-specific payload fields.
	Params map[string]any
}

// Scenario is a named, ordered sequence of steps.
type Scenario struct {
	Name        string
	Description string
	Steps       []Step
}

// Validate checks the scenario for structural problems: missing name,
// unordered or non-positive ticks, unknown event kinds, missing producers.
func (s *Scenario) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("scenario has no name")
	}
	lastTick := 0
	for i, step := range s.Steps {
		if step.AtTick <= 0 {
			return fmt.Errorf("scenario %s: step %d has non-positive tick %d", s.Name, i, step.AtTick)
		}
		if step.AtTick < lastTick {
			return fmt.Errorf("scenario %s: step %d tick %d precedes tick %d", s.Name, i, step.AtTick, lastTick)
		}
		lastTick = step.AtTick
		if step.Producer == "" {
			return fmt.Errorf("scenario %s: step %d has no producer", s.Name, i)
		}
		if _, ok := builders[step.Event]; !ok {
			return fmt.Errorf("scenario %s: step %d has unknown event kind %q", s.Name, i, step.Event)
		}
	}
	return nil
}

// LastTick returns the tick of the final step, or 0 for an empty scenario.
func (s *Scenario) LastTick() int {
	if len(s.Steps) == 0 {
		return 0
	}
	return s.Steps[len(s.Steps)-1].AtTick
}

// Producers returns the distinct producer names used by the scenario, in
// first-use order.
func (s *Scenario) Producers() []string {
	seen := make(map[string]bool)
	var names []string
	for _, step := range s.Steps {
		if !seen[step.Producer] {
			seen[step.Producer] = true
			names = append(names, step.Producer)
		}
	}
	return names
}

// StepsAt returns the steps scheduled for the given tick, preserving file order.
func (s *Scenario) StepsAt(tick int) []Step {
	var due []Step
	for _, step := range s.Steps {
		if step.AtTick == tick {
			due = append(due, step)
		}
	}
	return due
}
