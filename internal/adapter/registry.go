package adapter

import (
	"fmt"
	"sort"
	"sync"

	"github.com/ProjectAI00/relay/internal/domain"
)

// Registry is a lookup table of backend adapters by id. It is constructed
// once at process start and passed into the turn-handling entry point; there
// is no package-level instance.
type Registry struct {
	adapters map[string]domain.BackendAdapter
	mu       sync.RWMutex
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{adapters: make(map[string]domain.BackendAdapter)}
}

// Register adds an adapter. Registering the same id twice replaces the
// earlier adapter.
func (r *Registry) Register(a domain.BackendAdapter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.adapters[a.ID()] = a
}

// Resolve returns the adapter for a backend id.
func (r *Registry) Resolve(id string) (domain.BackendAdapter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.adapters[id]
	if !ok {
		return nil, fmt.Errorf("backend %q: %w", id, domain.ErrBackendNotFound)
	}
	return a, nil
}

// Available probes whether a backend is registered and runnable on this
// machine. Unknown backends are simply unavailable.
func (r *Registry) Available(id string) bool {
	r.mu.RLock()
	a, ok := r.adapters[id]
	r.mu.RUnlock()
	if !ok {
		return false
	}
	return a.IsAvailable()
}

// IDs returns all registered backend ids, sorted.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.adapters))
	for id := range r.adapters {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
