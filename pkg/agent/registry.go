package agent

import "sync"

// Registry is the in-memory set of live agents, keyed by id. It is an owned
// value passed to whoever needs live agents, with explicit teardown, rather
// than process-global state. Safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	agents map[string]*Agent
}

// NewRegistry creates an empty agent registry.
func NewRegistry() *Registry {
	return &Registry{
		agents: make(map[string]*Agent),
	}
}

// Add inserts or replaces the registry entry for the agent's id.
func (r *Registry) Add(a *Agent) {
	if a == nil {
		return
	}
	r.mu.Lock()
	r.agents[a.ID()] = a
	r.mu.Unlock()
}

// Get returns the live agent for the id, if present.
func (r *Registry) Get(id string) (*Agent, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.agents[id]
	return a, ok
}

// Remove drops the agent from the registry, reporting whether it was present.
func (r *Registry) Remove(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.agents[id]
	delete(r.agents, id)
	return ok
}

// List returns a snapshot of all live agents. Order is not guaranteed.
func (r *Registry) List() []*Agent {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := make([]*Agent, 0, len(r.agents))
	for _, a := range r.agents {
		list = append(list, a)
	}
	return list
}

// Len returns the number of live agents.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.agents)
}

// Clear drops every live agent; used at service teardown.
func (r *Registry) Clear() {
	r.mu.Lock()
	r.agents = make(map[string]*Agent)
	r.mu.Unlock()
}
