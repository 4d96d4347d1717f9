package eventbus

import (
	"log/slog"
	"sync"
	"weak"

	"github.com/google/uuid"

	"lumina-go/core/event"
)

// defaultProducerKey names the queue behind Bus.Push.
const defaultProducerKey = "main"

// Bus is the event core. It composes the listener registry and the
// per-producer queue store behind a single mutex.
type Bus struct {
	mu       sync.Mutex
	registry *listenerRegistry
	queues   *queueStore
	main     *producerQueue
	logger   *slog.Logger
	onPanic  PanicHandler
	stats    Stats
}

// New creates a Bus. A nil config selects defaults.
func New(cfg *Config) *Bus {
	if cfg == nil {
		cfg = &Config{}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	b := &Bus{
		registry: newListenerRegistry(),
		queues:   newQueueStore(),
		logger:   logger,
		onPanic:  cfg.OnPanic,
	}
	b.main = b.queues.get(defaultProducerKey)

	if b.onPanic == nil {
		b.onPanic = func(e event.Event, recovered any) {
			name := "<nil>"
			if e != nil {
				name = e.EventName()
			}
			logger.Error("listener panic aborted dispatch pass", "event", name, "panic", recovered)
		}
	}

	return b
}

// AddListener registers l under kind, holding it weakly: the bus never keeps
// the listener alive, and an expired registration is skipped at dispatch
// time. The same listener may be registered under several kinds, or several
// times under one kind, and is then invoked once per matching registration.
func AddListener[L any, PL interface {
	*L
	Listener
}](b *Bus, kind Kind, l PL) {
	if l == nil {
		return
	}
	wp := weak.Make((*L)(l))
	resolve := func() Listener {
		if p := wp.Value(); p != nil {
			return PL(p)
		}
		return nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.registry.add(kind, resolve)
}

// RemoveListener removes every registration of l across all kinds. The same
// sweep purges registrations whose listeners have already expired, so stale
// entries left behind by dispatch get collected here. Removing a listener
// that was never registered, or that has already expired, is a no-op.
func (b *Bus) RemoveListener(l Listener) {
	if l == nil {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	removed, purged := b.registry.remove(l)
	b.stats.Purged += uint64(purged)
	if removed > 0 || purged > 0 {
		b.logger.Debug("listener registrations removed", "removed", removed, "purged", purged)
	}
}

// Push enqueues an event on the shared default producer queue.
func (b *Bus) Push(e event.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.main.push(e)
	b.stats.Pushed++
}

// Producer returns the push handle for the named producer queue, creating
// the queue on first use. Handles with the same name share one queue. An
// empty name allocates a fresh anonymous producer.
//
// Queues are keyed by these explicit handles rather than by goroutine
// identity; a producer that is done should Close its handle so the queue can
// be reclaimed once drained.
func (b *Bus) Producer(name string) *Producer {
	if name == "" {
		name = "anon-" + uuid.NewString()
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	q := b.queues.get(name)
	q.closed = false
	return &Producer{bus: b, queue: q}
}

// Producer is a push handle bound to one producer queue.
type Producer struct {
	bus   *Bus
	queue *producerQueue
}

// Push enqueues an event on this producer's queue, ordered by priority with
// FIFO among equal priorities. Pushing on a closed producer drops the event.
func (p *Producer) Push(e event.Event) {
	b := p.bus
	b.mu.Lock()
	defer b.mu.Unlock()
	if p.queue.closed {
		b.stats.Dropped++
		b.logger.Debug("push on closed producer dropped", "producer", p.queue.key, "event", e.EventName())
		return
	}
	p.queue.push(e)
	b.stats.Pushed++
}

// Close marks the producer finished. Events already queued are still
// dispatched; the queue itself is removed at the end of the pass that
// drains it.
func (p *Producer) Close() {
	b := p.bus
	b.mu.Lock()
	defer b.mu.Unlock()
	p.queue.closed = true
}

// Dispatch drains every producer queue and routes each event to the
// listeners registered for its kind: registration order, first listener
// whose CanHandle accepts and whose OnEvent returns true wins; later
// registrations are not invoked. Events are dropped after delivery whether
// or not anyone handled them.
//
// Dispatch holds the bus lock for the whole pass, so concurrent pushes and
// registry changes wait for it to finish. If several goroutines call
// Dispatch concurrently, whichever takes the lock first drains everything
// and the others find empty queues.
//
// A panicking listener aborts the pass: the lock is released, remaining
// events stay queued for the next pass, and the panic is reported through
// the configured PanicHandler.
func (b *Bus) Dispatch() {
	if failed, recovered, panicked := b.dispatchLocked(); panicked {
		b.onPanic(failed, recovered)
	}
}

func (b *Bus) dispatchLocked() (failed event.Event, recovered any, panicked bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	defer func() {
		if r := recover(); r != nil {
			recovered = r
			panicked = true
			b.stats.ListenerPanics++
		}
	}()

	for _, q := range b.queues.all() {
		for {
			ev, ok := q.pop()
			if !ok {
				break
			}
			// Popped before delivery so an aborted pass does not replay it.
			failed = ev
			b.route(ev)
		}
	}
	failed = nil

	b.queues.compact()
	return nil, nil, false
}

// route delivers one event to the registrations for its kind.
func (b *Bus) route(ev event.Event) {
	b.stats.Dispatched++

	for _, ent := range b.registry.lookup(kindOf(ev)) {
		l := ent.resolve()
		if l == nil {
			// Expired; left in place for RemoveListener to purge.
			b.stats.ExpiredSkipped++
			continue
		}
		if !l.CanHandle(ev) {
			continue
		}
		if l.OnEvent(ev) {
			b.stats.Handled++
			return
		}
	}

	b.stats.Unhandled++
	b.logger.Debug("event dispatched without a handler", "event", ev.EventName(), "priority", ev.Priority())
}

// Stats returns a snapshot of the bus counters.
func (b *Bus) Stats() Stats {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.stats
}

// PendingQueues returns the number of producer queues currently held,
// including the default queue.
func (b *Bus) PendingQueues() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.queues.size()
}

// Registrations returns the number of listener registrations, including
// expired entries not yet purged.
func (b *Bus) Registrations() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.registry.size()
}
