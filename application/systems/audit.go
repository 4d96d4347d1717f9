package systems

import (
	"log/slog"

	"lumina-go/core/event"
)

// Audit is a non-consuming observer: it logs every event offered to it and
// always reports the event unhandled, so delivery continues to the
// listeners registered after it.
type Audit struct {
	logger *slog.Logger
	count  int
}

// NewAudit creates the audit observer.
func NewAudit(logger *slog.Logger) *Audit {
	if logger == nil {
		logger = slog.Default()
	}
	return &Audit{logger: logger}
}

// CanHandle accepts everything.
func (a *Audit) CanHandle(event.Event) bool {
	return true
}

// OnEvent logs the event and declines to consume it.
func (a *Audit) OnEvent(e event.Event) bool {
	a.count++
	a.logger.Debug("event observed", "event", e.EventName(), "priority", e.Priority())
	return false
}

// Count returns the number of events observed.
func (a *Audit) Count() int {
	return a.count
}
