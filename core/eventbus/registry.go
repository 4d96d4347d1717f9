package eventbus

// listenerEntry is one registration: a resolver over the weak reference.
// resolve returns nil once the listener's owner has dropped it.
type listenerEntry struct {
	resolve func() Listener
}

// listenerRegistry maps event kinds to listener registrations. It is a
// multimap: the same listener may appear several times under one kind, and
// registration order per kind is preserved because it is the delivery order.
// All access happens under the bus lock.
type listenerRegistry struct {
	entries map[Kind][]listenerEntry
}

func newListenerRegistry() *listenerRegistry {
	return &listenerRegistry{entries: make(map[Kind][]listenerEntry)}
}

// add appends a registration under kind. No uniqueness check: a listener
// registered twice is invoked once per registration.
func (r *listenerRegistry) add(kind Kind, resolve func() Listener) {
	r.entries[kind] = append(r.entries[kind], listenerEntry{resolve: resolve})
}

// lookup returns the registrations for kind in registration order.
// A missing kind yields nil, which is routine, not an error.
func (r *listenerRegistry) lookup(kind Kind) []listenerEntry {
	return r.entries[kind]
}

// remove deletes every registration across all kinds that resolves to the
// same listener as target. The same sweep also purges any registration whose
// weak reference no longer resolves, whether or not it matched target, so
// remove doubles as the registry's garbage-collection pass.
// Removing a listener that was never registered is a no-op.
func (r *listenerRegistry) remove(target Listener) (removed, purged int) {
	for kind, entries := range r.entries {
		kept := entries[:0]
		for _, ent := range entries {
			live := ent.resolve()
			switch {
			case live == nil:
				purged++
			case live == target:
				removed++
			default:
				kept = append(kept, ent)
			}
		}
		if len(kept) == 0 {
			delete(r.entries, kind)
			continue
		}
		for i := len(kept); i < len(entries); i++ {
			entries[i] = listenerEntry{}
		}
		r.entries[kind] = kept
	}
	return removed, purged
}

// size returns the total number of registrations, including expired ones
// that have not been purged yet.
func (r *listenerRegistry) size() int {
	n := 0
	for _, entries := range r.entries {
		n += len(entries)
	}
	return n
}
