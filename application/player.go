package application

import (
	"log/slog"
	"sync"

	"lumina-go/core/eventbus"
	"lumina-go/domain/scenario"
)

// player replays a scenario through the event core. Each distinct producer
// named by the scenario gets its own goroutine and its own producer handle,
// so the bus sees genuinely concurrent multi-queue traffic. The runtime
// drives the player tick by tick: feed blocks until every producer has
// pushed its due steps, which keeps replay deterministic.
type player struct {
	scenario *scenario.Scenario
	bus      *eventbus.Bus
	logger   *slog.Logger

	feeds map[string]chan int
	acks  chan struct{}
	wg    sync.WaitGroup
}

func newPlayer(scn *scenario.Scenario, bus *eventbus.Bus, logger *slog.Logger) *player {
	return &player{
		scenario: scn,
		bus:      bus,
		logger:   logger,
		feeds:    make(map[string]chan int),
		acks:     make(chan struct{}),
	}
}

// start launches one producer goroutine per scenario producer.
func (p *player) start() {
	for _, name := range p.scenario.Producers() {
		feed := make(chan int)
		p.feeds[name] = feed
		p.wg.Add(1)
		go p.produce(name, feed)
	}
}

// feed announces a tick to every producer and waits until each one has
// pushed the steps due at that tick.
func (p *player) feed(tick int) {
	for _, feed := range p.feeds {
		feed <- tick
	}
	for range p.feeds {
		<-p.acks
	}
}

// stop ends the replay: producer goroutines close their handles (so the bus
// reclaims the queues once drained) and exit. Safe to call more than once.
func (p *player) stop() {
	for name, feed := range p.feeds {
		close(feed)
		delete(p.feeds, name)
	}
	p.wg.Wait()
}

// produce is the goroutine body for one scenario producer.
func (p *player) produce(name string, feed <-chan int) {
	defer p.wg.Done()

	producer := p.bus.Producer(name)
	defer producer.Close()

	for tick := range feed {
		for _, step := range p.scenario.StepsAt(tick) {
			if step.Producer != name {
				continue
			}
			ev, err := scenario.BuildEvent(step)
			if err != nil {
				// Validated at load time; a failure here is a scenario bug.
				p.logger.Warn("skipping unbuildable step", "producer", name, "tick", tick, "error", err)
				continue
			}
			producer.Push(ev)
		}
		p.acks <- struct{}{}
	}
}
