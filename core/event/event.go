// Package event defines the events that flow through the event core.
// Events are immutable after construction and carry a priority that the
// dispatcher uses to order delivery within a single producer queue.
package event

// Priority controls dispatch order within one producer queue.
// Higher values are dispatched first.
type Priority int

const (
	// PriorityLow is for background events (telemetry, bookkeeping).
	PriorityLow Priority = -10
	// PriorityNormal is the default priority.
	PriorityNormal Priority = 0
	// PriorityHigh is for gameplay-relevant events.
	PriorityHigh Priority = 10
	// PriorityCritical is for events that must preempt everything else
	// in their queue (window close, fatal signals).
	PriorityCritical Priority = 100
)

// String returns a human-readable priority name.
func (p Priority) String() string {
	switch {
	case p >= PriorityCritical:
		return "critical"
	case p >= PriorityHigh:
		return "high"
	case p >= PriorityNormal:
		return "normal"
	default:
		return "low"
	}
}

// Event is the base interface for all events.
// The concrete type of an event is its routing kind; it never changes.
type Event interface {
	// EventName returns the name of the event for logging/debugging
	EventName() string
	// Priority returns the dispatch priority, fixed at construction.
	Priority() Priority
}

// Base provides the priority carried by every event.
// Embed it by value; the priority cannot change after construction.
type Base struct {
	priority Priority
}

// MakeBase creates the embeddable base for a concrete event.
func MakeBase(p Priority) Base {
	return Base{priority: p}
}

// Priority returns the event's dispatch priority.
func (b Base) Priority() Priority {
	return b.priority
}
