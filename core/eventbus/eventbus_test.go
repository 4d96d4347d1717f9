package eventbus

import (
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"testing"
	"time"

	"lumina-go/core/event"
)

// recordingListener records every event it is offered.
type recordingListener struct {
	name    string
	accept  func(event.Event) bool // nil accepts everything
	consume bool                   // OnEvent return value
	calls   int
	seen    []event.Event
}

func (l *recordingListener) CanHandle(e event.Event) bool {
	if l.accept != nil {
		return l.accept(e)
	}
	return true
}

func (l *recordingListener) OnEvent(e event.Event) bool {
	l.calls++
	l.seen = append(l.seen, e)
	return l.consume
}

func quietBus() *Bus {
	return New(&Config{Logger: slog.New(slog.DiscardHandler)})
}

func TestDispatch_PriorityOrderingWithinQueue(t *testing.T) {
	bus := quietBus()
	l := &recordingListener{name: "sink", consume: true}
	AddListener(bus, KindOf[event.Damage](), l)

	bus.Push(event.NewDamage(1, "low", 1))
	bus.Push(event.NewDamage(9, "high", 1))
	bus.Push(event.NewDamage(5, "mid", 1))
	bus.Dispatch()

	want := []string{"high", "mid", "low"}
	if len(l.seen) != len(want) {
		t.Fatalf("listener saw %d events, want %d", len(l.seen), len(want))
	}
	for i, target := range want {
		if got := l.seen[i].(*event.Damage).Target; got != target {
			t.Errorf("delivery %d: target %q, want %q", i, got, target)
		}
	}
}

func TestDispatch_AtMostOneHandler(t *testing.T) {
	bus := quietBus()
	first := &recordingListener{name: "first", consume: true}
	second := &recordingListener{name: "second", consume: true}
	AddListener(bus, KindOf[event.Damage](), first)
	AddListener(bus, KindOf[event.Damage](), second)

	bus.Push(event.NewDamage(event.PriorityNormal, "hero", 10))
	bus.Dispatch()

	if first.calls != 1 {
		t.Errorf("first listener called %d times, want 1", first.calls)
	}
	if second.calls != 0 {
		t.Errorf("second listener called %d times, want 0", second.calls)
	}
}

func TestDispatch_NonConsumingListenerPassesEventOn(t *testing.T) {
	bus := quietBus()
	observer := &recordingListener{name: "observer", consume: false}
	handler := &recordingListener{name: "handler", consume: true}
	AddListener(bus, KindOf[event.Damage](), observer)
	AddListener(bus, KindOf[event.Damage](), handler)

	bus.Push(event.NewDamage(event.PriorityNormal, "hero", 10))
	bus.Dispatch()

	if observer.calls != 1 || handler.calls != 1 {
		t.Errorf("calls = (%d, %d), want (1, 1)", observer.calls, handler.calls)
	}
	if got := bus.Stats().Handled; got != 1 {
		t.Errorf("Stats().Handled = %d, want 1", got)
	}
}

func TestDispatch_DeclinedByCanHandle(t *testing.T) {
	bus := quietBus()
	picky := &recordingListener{
		name:    "picky",
		consume: true,
		accept:  func(e event.Event) bool { return e.(*event.Damage).Amount > 5 },
	}
	AddListener(bus, KindOf[event.Damage](), picky)

	bus.Push(event.NewDamage(event.PriorityNormal, "hero", 3))
	bus.Dispatch()

	if picky.calls != 0 {
		t.Errorf("OnEvent called %d times after CanHandle declined, want 0", picky.calls)
	}
	if got := bus.Stats().Unhandled; got != 1 {
		t.Errorf("Stats().Unhandled = %d, want 1", got)
	}
}

func TestDispatch_DuplicateRegistrationInvokedPerEntry(t *testing.T) {
	bus := quietBus()
	l := &recordingListener{name: "dup", consume: false}
	AddListener(bus, KindOf[event.Heal](), l)
	AddListener(bus, KindOf[event.Heal](), l)

	bus.Push(event.NewHeal(event.PriorityNormal, "hero", 3))
	bus.Dispatch()

	if l.calls != 2 {
		t.Errorf("duplicate registration invoked %d times, want 2", l.calls)
	}
}

func TestDispatch_UnmatchedKindSilentlyDropped(t *testing.T) {
	bus := quietBus()
	l := &recordingListener{name: "damage-only", consume: true}
	AddListener(bus, KindOf[event.Damage](), l)

	bus.Push(event.NewHeal(event.PriorityNormal, "hero", 3))
	bus.Dispatch()

	if l.calls != 0 {
		t.Errorf("listener called %d times for unmatched kind, want 0", l.calls)
	}
	stats := bus.Stats()
	if stats.Dispatched != 1 || stats.Unhandled != 1 {
		t.Errorf("stats = %+v, want Dispatched=1 Unhandled=1", stats)
	}
}

func TestDispatch_ExpiredListenerSkipped(t *testing.T) {
	bus := quietBus()
	var outside int

	// Register inside a helper so no strong reference survives it.
	func() {
		l := &recordingListener{name: "short-lived", consume: true}
		l.accept = func(event.Event) bool { outside++; return true }
		AddListener(bus, KindOf[event.Damage](), l)
	}()

	runtime.GC()
	runtime.GC()

	bus.Push(event.NewDamage(event.PriorityHigh, "hero", 10))
	bus.Dispatch()

	if outside != 0 {
		t.Errorf("expired listener was invoked %d times", outside)
	}
	if got := bus.Stats().ExpiredSkipped; got == 0 {
		t.Error("Stats().ExpiredSkipped = 0, want at least 1")
	}
	// Skipping does not purge; the entry waits for a RemoveListener sweep.
	if got := bus.Registrations(); got != 1 {
		t.Errorf("Registrations() = %d, want 1", got)
	}
}

func TestRemoveListener_AcrossKindsAndIdempotent(t *testing.T) {
	bus := quietBus()
	target := &recordingListener{name: "target", consume: true}
	other := &recordingListener{name: "other", consume: true}
	AddListener(bus, KindOf[event.Damage](), target)
	AddListener(bus, KindOf[event.Heal](), target)
	AddListener(bus, KindOf[event.Heal](), other)

	bus.RemoveListener(target)
	if got := bus.Registrations(); got != 1 {
		t.Fatalf("Registrations() = %d after removal, want 1", got)
	}

	// Removing again, or removing a listener that was never registered,
	// is a no-op and leaves other registrations alone.
	bus.RemoveListener(target)
	bus.RemoveListener(&recordingListener{name: "stranger"})
	if got := bus.Registrations(); got != 1 {
		t.Fatalf("Registrations() = %d after no-op removals, want 1", got)
	}

	bus.Push(event.NewHeal(event.PriorityNormal, "hero", 3))
	bus.Dispatch()
	if other.calls != 1 {
		t.Errorf("surviving listener called %d times, want 1", other.calls)
	}
	if target.calls != 0 {
		t.Errorf("removed listener called %d times, want 0", target.calls)
	}
}

func TestRemoveListener_PurgesExpiredEntries(t *testing.T) {
	bus := quietBus()
	keeper := &recordingListener{name: "keeper", consume: true}
	AddListener(bus, KindOf[event.Damage](), keeper)

	func() {
		gone := &recordingListener{name: "gone", consume: true}
		AddListener(bus, KindOf[event.Heal](), gone)
	}()
	runtime.GC()
	runtime.GC()

	if got := bus.Registrations(); got != 2 {
		t.Fatalf("Registrations() = %d before sweep, want 2", got)
	}

	// The sweep targets keeper but also collects the expired entry.
	bus.RemoveListener(keeper)
	if got := bus.Registrations(); got != 0 {
		t.Errorf("Registrations() = %d after sweep, want 0", got)
	}
	if got := bus.Stats().Purged; got != 1 {
		t.Errorf("Stats().Purged = %d, want 1", got)
	}
}

func TestDispatch_DrainsAllProducersFromOneGoroutine(t *testing.T) {
	bus := quietBus()
	sink := &recordingListener{name: "sink", consume: true}
	AddListener(bus, KindOf[event.Damage](), sink)

	net := bus.Producer("net")
	input := bus.Producer("input")

	var pushers sync.WaitGroup
	pushers.Add(2)
	go func() {
		defer pushers.Done()
		net.Push(event.NewDamage(2, "from-net", 1))
		net.Push(event.NewDamage(7, "from-net", 2))
	}()
	go func() {
		defer pushers.Done()
		input.Push(event.NewDamage(4, "from-input", 1))
	}()
	pushers.Wait()

	// Dispatch runs on a third goroutine and must drain both queues.
	done := make(chan struct{})
	go func() {
		defer close(done)
		bus.Dispatch()
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for dispatch")
	}

	if sink.calls != 3 {
		t.Errorf("listener saw %d events, want 3", sink.calls)
	}
}

// Damage and Heal pushed from one producer,
// each kind with its own listener, one dispatch pass delivers both exactly
// once and leaves the queue empty.
func TestDispatch_DamageHealScenario(t *testing.T) {
	bus := quietBus()
	la := &recordingListener{name: "LA", consume: true}
	lb := &recordingListener{name: "LB", consume: true}
	AddListener(bus, KindOf[event.Damage](), la)
	AddListener(bus, KindOf[event.Heal](), lb)

	bus.Push(event.NewDamage(5, "hero", 10))
	bus.Push(event.NewHeal(9, "hero", 3))
	bus.Dispatch()

	if la.calls != 1 {
		t.Errorf("Damage listener called %d times, want 1", la.calls)
	}
	if lb.calls != 1 {
		t.Errorf("Heal listener called %d times, want 1", lb.calls)
	}

	stats := bus.Stats()
	if stats.Dispatched != 2 || stats.Handled != 2 {
		t.Errorf("stats = %+v, want Dispatched=2 Handled=2", stats)
	}
	bus.Dispatch()
	if got := bus.Stats().Dispatched; got != 2 {
		t.Errorf("second pass dispatched %d extra events, want 0", got-2)
	}
}

func TestDispatch_ListenerPanicAbortsPass(t *testing.T) {
	bus := New(&Config{Logger: slog.New(slog.DiscardHandler)})
	var reported struct {
		event     event.Event
		recovered any
	}
	bus.onPanic = func(e event.Event, r any) {
		reported.event = e
		reported.recovered = r
	}

	bomb := &recordingListener{name: "bomb", consume: true}
	bomb.accept = func(event.Event) bool { panic("listener exploded") }
	AddListener(bus, KindOf[event.Damage](), bomb)
	sink := &recordingListener{name: "sink", consume: true}
	AddListener(bus, KindOf[event.Heal](), sink)

	bus.Push(event.NewDamage(9, "hero", 10))
	bus.Push(event.NewHeal(1, "hero", 3))
	bus.Dispatch()

	if reported.recovered != "listener exploded" {
		t.Fatalf("panic handler got %v, want listener exploded", reported.recovered)
	}
	if _, ok := reported.event.(*event.Damage); !ok {
		t.Errorf("panic handler got event %T, want *event.Damage", reported.event)
	}
	if got := bus.Stats().ListenerPanics; got != 1 {
		t.Errorf("Stats().ListenerPanics = %d, want 1", got)
	}

	// The offending event was popped; the rest of the pass was aborted but
	// the bus stays usable and the next pass delivers what is left.
	bus.Dispatch()
	if sink.calls != 1 {
		t.Errorf("remaining event delivered %d times after recovery, want 1", sink.calls)
	}
}

func TestProducer_CloseReclaimsQueueAfterDrain(t *testing.T) {
	bus := quietBus()
	sink := &recordingListener{name: "sink", consume: true}
	AddListener(bus, KindOf[event.Damage](), sink)

	temp := bus.Producer("temp")
	temp.Push(event.NewDamage(event.PriorityNormal, "hero", 1))
	temp.Close()

	if got := bus.PendingQueues(); got != 2 {
		t.Fatalf("PendingQueues() = %d before drain, want 2", got)
	}
	bus.Dispatch()
	if sink.calls != 1 {
		t.Errorf("queued event on closed producer delivered %d times, want 1", sink.calls)
	}
	if got := bus.PendingQueues(); got != 1 {
		t.Errorf("PendingQueues() = %d after drain, want 1", got)
	}
}

func TestProducer_PushAfterCloseIsDropped(t *testing.T) {
	bus := quietBus()
	p := bus.Producer("temp")
	p.Close()
	p.Push(event.NewDamage(event.PriorityNormal, "hero", 1))

	stats := bus.Stats()
	if stats.Dropped != 1 || stats.Pushed != 0 {
		t.Errorf("stats = %+v, want Dropped=1 Pushed=0", stats)
	}
}

func TestBus_ConcurrentProducers(t *testing.T) {
	bus := quietBus()
	sink := &recordingListener{name: "sink", consume: true}
	AddListener(bus, KindOf[event.Damage](), sink)

	const producers = 4
	const perProducer = 100

	var pushers sync.WaitGroup
	for i := 0; i < producers; i++ {
		p := bus.Producer(fmt.Sprintf("producer-%d", i))
		pushers.Add(1)
		go func(p *Producer) {
			defer pushers.Done()
			for j := 0; j < perProducer; j++ {
				p.Push(event.NewDamage(event.Priority(j%7), "hero", j))
			}
			p.Close()
		}(p)
	}

	// Dispatch concurrently with the pushes; the shared lock keeps every
	// pass consistent, and a final pass after the producers stop catches
	// anything still queued.
	deadline := time.After(5 * time.Second)
	finished := make(chan struct{})
	go func() {
		pushers.Wait()
		close(finished)
	}()
loop:
	for {
		select {
		case <-finished:
			break loop
		case <-deadline:
			t.Fatal("timeout waiting for producers")
		default:
			bus.Dispatch()
		}
	}
	bus.Dispatch()

	stats := bus.Stats()
	if stats.Pushed != producers*perProducer {
		t.Errorf("Stats().Pushed = %d, want %d", stats.Pushed, producers*perProducer)
	}
	if stats.Dispatched != producers*perProducer {
		t.Errorf("Stats().Dispatched = %d, want %d", stats.Dispatched, producers*perProducer)
	}
	if sink.calls != producers*perProducer {
		t.Errorf("listener saw %d events, want %d", sink.calls, producers*perProducer)
	}
	// All per-producer queues were closed and drained; only the default
	// queue remains.
	if got := bus.PendingQueues(); got != 1 {
		t.Errorf("PendingQueues() = %d after drain, want 1", got)
	}
}

func TestKindOf_NormalizesPointers(t *testing.T) {
	if KindOf[event.Damage]() != KindOf[*event.Damage]() {
		t.Error("KindOf[Damage] != KindOf[*Damage]")
	}
	if kindOf(event.NewDamage(0, "x", 1)) != KindOf[event.Damage]() {
		t.Error("kindOf(*Damage) != KindOf[Damage]")
	}
}
