// Package systems holds the host-owned listener subsystems. The runtime
// keeps the only strong references to these objects; the event core sees
// them through weak registrations only.
package systems

import (
	"log/slog"

	"lumina-go/core/event"
)

// Combat tracks entity health and consumes combat events.
// It never calls back into the event core from its callbacks; entities that
// die during a dispatch pass are recorded and collected by the runtime via
// TakeDefeated afterwards.
type Combat struct {
	logger   *slog.Logger
	health   map[string]int
	defeated []string
}

// NewCombat creates the combat system with the given starting health table.
func NewCombat(logger *slog.Logger, initial map[string]int) *Combat {
	if logger == nil {
		logger = slog.Default()
	}
	health := make(map[string]int, len(initial))
	for entity, hp := range initial {
		health[entity] = hp
	}
	return &Combat{logger: logger, health: health}
}

// CanHandle accepts combat events whose target the system tracks.
func (c *Combat) CanHandle(e event.Event) bool {
	switch ev := e.(type) {
	case *event.Damage:
		_, ok := c.health[ev.Target]
		return ok
	case *event.Heal:
		_, ok := c.health[ev.Target]
		return ok
	case *event.EntityDefeated:
		return true
	default:
		return false
	}
}

// OnEvent applies the combat event to the health table.
func (c *Combat) OnEvent(e event.Event) bool {
	switch ev := e.(type) {
	case *event.Damage:
		hp := c.health[ev.Target] - ev.Amount
		c.health[ev.Target] = hp
		c.logger.Debug("damage applied", "target", ev.Target, "amount", ev.Amount, "hp", hp)
		if hp <= 0 {
			c.defeated = append(c.defeated, ev.Target)
		}
		return true
	case *event.Heal:
		c.health[ev.Target] += ev.Amount
		c.logger.Debug("heal applied", "target", ev.Target, "amount", ev.Amount, "hp", c.health[ev.Target])
		return true
	case *event.EntityDefeated:
		delete(c.health, ev.Entity)
		c.logger.Info("entity defeated", "entity", ev.Entity, "killer", ev.Killer)
		return true
	default:
		return false
	}
}

// Health returns the current health of an entity and whether it is tracked.
func (c *Combat) Health(entity string) (int, bool) {
	hp, ok := c.health[entity]
	return hp, ok
}

// Spawn starts tracking an entity at the given health.
func (c *Combat) Spawn(entity string, hp int) {
	c.health[entity] = hp
}

// TakeDefeated returns the entities that dropped to zero or below since the
// last call and resets the list. The runtime turns these into
// EntityDefeated events between dispatch passes.
func (c *Combat) TakeDefeated() []string {
	out := c.defeated
	c.defeated = nil
	return out
}
