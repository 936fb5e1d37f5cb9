// Package pipeline holds the pipeline construction state: the dependency set
// and ordered step list a user assembles in the dashboard, plus the
// operations that edit them.
//
// Every mutation builds a new snapshot copy-on-write, swaps it in and then
// publishes the whole snapshot to every observer, synchronously and in
// subscription order. Snapshots are never modified after publication.
package pipeline

import (
	"sync"
	"sync/atomic"

	"github.com/pluqqy/crux-terminal/pkg/models"
	"github.com/pluqqy/crux-terminal/pkg/registry"
)

// Components resolves component names against the components currently
// loaded on the daemon.
type Components interface {
	Resolve(name string) (address string, desc models.Descriptor, ok bool)
	Names() []string
}

// Observer receives the whole pipeline after every change. It runs on the
// goroutine that made the change and must not mutate the store or the
// snapshot it is given.
type Observer func(p models.Pipeline)

// Option configures a Store
type Option func(*Store)

// WithComponents sets the component source used for name resolution
func WithComponents(c Components) Option {
	return func(s *Store) {
		if c != nil {
			s.components = c
		}
	}
}

// WithDependencyDefaults selects the dependency defaulting policy
// (models.DependencyDefaultsResolved or models.DependencyDefaultsLiteral).
func WithDependencyDefaults(policy string) Option {
	return func(s *Store) {
		s.defaults = policy
	}
}

// Store owns the pipeline being edited
type Store struct {
	// mu serializes compute, assign and notify so observers always see
	// snapshots in commit order.
	mu      sync.Mutex
	current atomic.Pointer[models.Pipeline]

	components Components
	defaults   string

	observersMu sync.RWMutex
	observers   []Observer
}

// NewStore creates a store holding the empty pipeline
func NewStore(opts ...Option) *Store {
	s := &Store{
		components: registry.Empty(),
		defaults:   models.DependencyDefaultsResolved,
	}
	for _, opt := range opts {
		opt(s)
	}
	empty := models.NewPipeline()
	s.current.Store(&empty)
	return s
}

// Snapshot returns the current pipeline. The value is shared with observers;
// clone it before editing.
func (s *Store) Snapshot() models.Pipeline {
	return *s.current.Load()
}

// Subscribe registers an observer. Observers cannot be removed.
func (s *Store) Subscribe(o Observer) {
	s.observersMu.Lock()
	defer s.observersMu.Unlock()
	s.observers = append(s.observers, o)
}

// Reset replaces the pipeline with the empty one
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commit(models.NewPipeline())
}

// Replace swaps in a whole pipeline, as when one is loaded. Nil mappings are
// normalized to empty ones.
func (s *Store) Replace(p models.Pipeline) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commit(normalize(p.Clone()))
}

// commit must be called with mu held
func (s *Store) commit(next models.Pipeline) {
	s.current.Store(&next)

	s.observersMu.RLock()
	observers := make([]Observer, len(s.observers))
	copy(observers, s.observers)
	s.observersMu.RUnlock()

	for _, o := range observers {
		o(next)
	}
}

func normalize(p models.Pipeline) models.Pipeline {
	if p.Components == nil {
		p.Components = map[string]models.DependencyEntry{}
	}
	if p.Pipeline == nil {
		p.Pipeline = []models.Step{}
	}
	for i := range p.Pipeline {
		if p.Pipeline[i].Parameters == nil {
			p.Pipeline[i].Parameters = map[string]models.Parameter{}
		}
		if p.Pipeline[i].Remap == nil {
			p.Pipeline[i].Remap = map[string]string{}
		}
	}
	return p
}
