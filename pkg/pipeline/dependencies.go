package pipeline

import (
	"github.com/pluqqy/crux-terminal/pkg/models"
)

// DependencyCandidates returns the unique names of the components currently
// loaded, i.e. the names a dependency can be declared for.
func (s *Store) DependencyCandidates() []string {
	return s.components.Names()
}

// AddDependency declares (or redeclares) the component name the pipeline
// uses. Empty src or version mean "not given"; whether they are filled in
// from the loaded component depends on the store's defaulting policy.
func (s *Store) AddDependency(name, src, version string) {
	entry := models.DependencyEntry{Src: src, Version: version}

	addr, desc, resolved := s.components.Resolve(name)
	switch s.defaults {
	case models.DependencyDefaultsLiteral:
		// Defaults are only attempted for names that do not resolve, which
		// leaves nothing to inherit from.
	default:
		if resolved {
			if entry.Version == "" {
				entry.Version = desc.Version
			}
			if entry.Src == "" {
				entry.Src = addr
			}
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.Snapshot()
	next := models.Pipeline{
		Components: copyDependencies(cur.Components),
		Pipeline:   cur.Pipeline,
	}
	next.Components[name] = entry
	s.commit(next)
}

// RemoveDependency drops a declared dependency together with every step that
// uses it. Unknown names are ignored.
func (s *Store) RemoveDependency(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.Snapshot()
	if _, ok := cur.Components[name]; !ok {
		return
	}

	keep := make([]int, 0, cur.Len())
	for i, step := range cur.Pipeline {
		if step.Component != name {
			keep = append(keep, i)
		}
	}
	steps, err := permute(cur.Pipeline, keep)
	if err != nil {
		// keep is built from valid, distinct indices
		panic(err)
	}

	next := models.Pipeline{
		Components: copyDependencies(cur.Components),
		Pipeline:   steps,
	}
	delete(next.Components, name)
	s.commit(next)
}

func copyDependencies(deps map[string]models.DependencyEntry) map[string]models.DependencyEntry {
	out := make(map[string]models.DependencyEntry, len(deps)+1)
	for name, dep := range deps {
		out[name] = dep
	}
	return out
}
