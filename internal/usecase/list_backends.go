package usecase

import (
	"context"
	"sort"

	"github.com/ProjectAI00/relay/internal/adapter"
	"github.com/ProjectAI00/relay/internal/infra/config"
)

// BackendInfo describes one configured backend and whether it can run.
// Fields are ordered to minimize memory padding.
type BackendInfo struct {
	Name      string
	Kind      string
	Command   string
	Available bool
	Disabled  bool
}

// ListBackends is the use case for listing configured backends with
// availability probes.
type ListBackends struct {
	registry *adapter.Registry
	backends map[string]config.Backend
}

// NewListBackends creates a new ListBackends use case.
func NewListBackends(registry *adapter.Registry, backends map[string]config.Backend) *ListBackends {
	return &ListBackends{registry: registry, backends: backends}
}

// Execute returns all configured backends sorted by name. Disabled
// backends are included but never available.
func (uc *ListBackends) Execute(context.Context) []BackendInfo {
	out := make([]BackendInfo, 0, len(uc.backends))
	for name, b := range uc.backends {
		out = append(out, BackendInfo{
			Name:      name,
			Kind:      string(b.Kind),
			Command:   b.Command,
			Available: !b.Disabled && uc.registry.Available(name),
			Disabled:  b.Disabled,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
