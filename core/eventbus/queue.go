package eventbus

import (
	"container/heap"

	"lumina-go/core/event"
)

// pending wraps a queued event with its insertion sequence so that equal
// priorities pop in FIFO order.
type pending struct {
	ev  event.Event
	seq uint64
}

// eventHeap is a max-heap over pending events: higher priority first,
// insertion order among equals.
type eventHeap []pending

func (h eventHeap) Len() int { return len(h) }

func (h eventHeap) Less(i, j int) bool {
	if h[i].ev.Priority() != h[j].ev.Priority() {
		return h[i].ev.Priority() > h[j].ev.Priority()
	}
	return h[i].seq < h[j].seq
}

func (h eventHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *eventHeap) Push(x any) { *h = append(*h, x.(pending)) }

func (h *eventHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = pending{}
	*h = old[:n-1]
	return item
}

// producerQueue is the pending-event queue of a single producer.
// All access happens under the bus lock.
type producerQueue struct {
	key    string
	events eventHeap
	seq    uint64
	closed bool
}

func (q *producerQueue) push(e event.Event) {
	q.seq++
	heap.Push(&q.events, pending{ev: e, seq: q.seq})
}

func (q *producerQueue) pop() (event.Event, bool) {
	if len(q.events) == 0 {
		return nil, false
	}
	item := heap.Pop(&q.events).(pending)
	return item.ev, true
}

func (q *producerQueue) empty() bool {
	return len(q.events) == 0
}

// queueStore holds one queue per producer key. Queues are enumerated in
// creation order so dispatch visits them in a fixed order.
type queueStore struct {
	order []*producerQueue
	byKey map[string]*producerQueue
}

func newQueueStore() *queueStore {
	return &queueStore{byKey: make(map[string]*producerQueue)}
}

// get returns the queue for key, creating it on first use.
func (s *queueStore) get(key string) *producerQueue {
	if q, ok := s.byKey[key]; ok {
		return q
	}
	q := &producerQueue{key: key}
	s.byKey[key] = q
	s.order = append(s.order, q)
	return q
}

// all returns the queues in creation order.
func (s *queueStore) all() []*producerQueue {
	return s.order
}

// compact removes queues whose producer closed and whose events are drained.
func (s *queueStore) compact() {
	kept := s.order[:0]
	for _, q := range s.order {
		if q.closed && q.empty() {
			delete(s.byKey, q.key)
			continue
		}
		kept = append(kept, q)
	}
	for i := len(kept); i < len(s.order); i++ {
		s.order[i] = nil
	}
	s.order = kept
}

// size returns the number of live queues.
func (s *queueStore) size() int {
	return len(s.order)
}
