package scenario

import "sync"

// Registry manages scenario definitions and provides lookup functionality.
type Registry struct {
	scenarios map[string]*Scenario
	mu        sync.RWMutex
}

// NewRegistry creates a new empty scenario registry.
func NewRegistry() *Registry {
	return &Registry{
		scenarios: make(map[string]*Scenario),
	}
}

// Register adds a scenario to the registry.
// If a scenario with the same name exists, it will be replaced.
func (r *Registry) Register(s *Scenario) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.scenarios[s.Name] = s
}

// Get retrieves a scenario by name.
// Returns nil if not found.
func (r *Registry) Get(name string) *Scenario {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.scenarios[name]
}

// List returns all registered scenario names.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.scenarios))
	for name := range r.scenarios {
		names = append(names, name)
	}
	return names
}

// Count returns the number of registered scenarios.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.scenarios)
}
