package tui

import (
	"sync"

	"github.com/pluqqy/crux-terminal/pkg/models"
	"github.com/pluqqy/crux-terminal/pkg/session"
)

// stateMirror keeps the latest value of every session state key for
// rendering. Session handlers may fire on command goroutines, so reads and
// writes go through a lock and nothing here talks back to the program.
type stateMirror struct {
	mu         sync.RWMutex
	components map[string]models.Descriptor
	daemon     string
	pipeline   models.Pipeline
	changes    int
}

func newStateMirror() *stateMirror {
	return &stateMirror{
		components: map[string]models.Descriptor{},
		pipeline:   models.NewPipeline(),
	}
}

// handle is registered with session.OnStateChange
func (m *stateMirror) handle(key string, value any) {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch key {
	case session.KeyComponents:
		if c, ok := value.(map[string]models.Descriptor); ok {
			m.components = c
		}
	case session.KeyDaemon:
		if addr, ok := value.(string); ok {
			m.daemon = addr
		}
	case session.KeyPipeline:
		if p, ok := value.(models.Pipeline); ok {
			m.pipeline = p
		}
	default:
		return
	}
	m.changes++
}

func (m *stateMirror) Components() map[string]models.Descriptor {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.components
}

func (m *stateMirror) Daemon() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.daemon
}

func (m *stateMirror) Pipeline() models.Pipeline {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pipeline
}

// Changes counts the state changes seen so far
func (m *stateMirror) Changes() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.changes
}
