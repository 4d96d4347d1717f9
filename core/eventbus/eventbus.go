// Package eventbus implements the in-process event core: a type-routed,
// priority-ordered dispatcher. Producers push events into per-producer
// queues; a dispatch pass drains every queue and delivers each event to the
// registered listeners for its kind, stopping at the first listener that
// reports the event handled.
//
// Listeners are held by weak reference only. The bus never extends a
// listener's lifetime; once its owner drops the last strong reference, the
// registration silently expires.
//
// One mutex guards the registry, all queues, and the dispatch loop. Every
// operation runs to completion under that lock, so listener callbacks must
// not call back into the same Bus; doing so deadlocks.
package eventbus

import (
	"log/slog"
	"reflect"

	"lumina-go/core/event"
)

// Kind is the routing key for an event: the concrete value type of the
// event, with pointer indirection stripped.
type Kind = reflect.Type

// KindOf returns the routing kind for the event type T.
// KindOf[Damage]() and KindOf[*Damage]() yield the same kind.
func KindOf[T any]() Kind {
	return normalizeKind(reflect.TypeFor[T]())
}

// kindOf resolves the routing kind of a concrete event value.
func kindOf(e event.Event) Kind {
	return normalizeKind(reflect.TypeOf(e))
}

func normalizeKind(t reflect.Type) Kind {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t
}

// Listener is the capability interface implemented by event consumers.
// Both methods are invoked synchronously on the dispatching goroutine.
type Listener interface {
	// CanHandle reports whether the listener wants this event.
	CanHandle(e event.Event) bool
	// OnEvent processes the event. Returning true marks the event handled
	// and stops delivery to later registrations.
	OnEvent(e event.Event) bool
}

// PanicHandler is invoked, outside the bus lock, when a listener callback
// panics during dispatch. The pass that was running has been aborted.
type PanicHandler func(e event.Event, recovered any)

// Config holds configuration for the Bus.
type Config struct {
	// Logger receives dispatch diagnostics. Defaults to slog.Default().
	Logger *slog.Logger
	// OnPanic is called when a listener panics. Defaults to logging the
	// panic at error level.
	OnPanic PanicHandler
}

// Stats is a snapshot of the bus counters.
type Stats struct {
	// Pushed is the number of events accepted into a queue.
	Pushed uint64
	// Dropped is the number of pushes refused because the producer was closed.
	Dropped uint64
	// Dispatched is the number of events popped during dispatch passes.
	Dispatched uint64
	// Handled is the number of dispatched events some listener handled.
	Handled uint64
	// Unhandled is the number of dispatched events no listener handled.
	Unhandled uint64
	// ExpiredSkipped counts registrations skipped because the listener was gone.
	ExpiredSkipped uint64
	// Purged counts expired registrations removed by RemoveListener passes.
	Purged uint64
	// ListenerPanics counts dispatch passes aborted by a listener panic.
	ListenerPanics uint64
}
