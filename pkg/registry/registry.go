package registry

import (
	"sort"

	"github.com/pluqqy/crux-terminal/pkg/models"
)

// Registry is a read-only snapshot of the components loaded on the daemon,
// keyed by the address the daemon issued for each of them.
type Registry struct {
	components map[string]models.Descriptor
}

// New creates a registry snapshot. The mapping is copied.
func New(components map[string]models.Descriptor) *Registry {
	copied := make(map[string]models.Descriptor, len(components))
	for addr, desc := range components {
		copied[addr] = desc
	}
	return &Registry{components: copied}
}

// Empty returns a registry with no components
func Empty() *Registry {
	return New(nil)
}

// Len returns the number of loaded components
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.components)
}

// Lookup returns the descriptor loaded at an address
func (r *Registry) Lookup(address string) (models.Descriptor, bool) {
	if r == nil {
		return models.Descriptor{}, false
	}
	desc, ok := r.components[address]
	return desc, ok
}

// Addresses returns every loaded address, sorted
func (r *Registry) Addresses() []string {
	if r == nil {
		return nil
	}
	addrs := make([]string, 0, len(r.components))
	for addr := range r.components {
		addrs = append(addrs, addr)
	}
	sort.Strings(addrs)
	return addrs
}

// Names returns the unique component names present in the registry, sorted.
// Several addresses may run components with the same name.
func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}
	seen := make(map[string]struct{}, len(r.components))
	names := make([]string, 0, len(r.components))
	for _, desc := range r.components {
		if _, ok := seen[desc.Name]; ok {
			continue
		}
		seen[desc.Name] = struct{}{}
		names = append(names, desc.Name)
	}
	sort.Strings(names)
	return names
}

// Resolve finds a loaded component by name. When several addresses run a
// component with that name the smallest address wins, so resolution is
// stable across calls.
func (r *Registry) Resolve(name string) (string, models.Descriptor, bool) {
	for _, addr := range r.Addresses() {
		desc := r.components[addr]
		if desc.Name == name {
			return addr, desc, true
		}
	}
	return "", models.Descriptor{}, false
}

// Components returns a copy of the address to descriptor mapping
func (r *Registry) Components() map[string]models.Descriptor {
	out := make(map[string]models.Descriptor, r.Len())
	if r == nil {
		return out
	}
	for addr, desc := range r.components {
		out[addr] = desc
	}
	return out
}
