// Package session ties the dashboard together: the API client, the mirror of
// the daemon's loaded components, the connected daemon address and the
// pipeline being edited. Every state change is broadcast to registered
// handlers as a (key, whole new value) pair.
package session

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/pluqqy/crux-terminal/pkg/models"
	"github.com/pluqqy/crux-terminal/pkg/pipeline"
	"github.com/pluqqy/crux-terminal/pkg/registry"
)

// State keys passed to handlers
const (
	KeyComponents = "components"
	KeyDaemon     = "daemon_addr"
	KeyPipeline   = "pipeline"
)

// API is the subset of the daemon client a session drives
type API interface {
	ConnectDaemon(ctx context.Context, addr string) error
	GetDaemon(ctx context.Context) (string, error)
	ListComponents(ctx context.Context) (map[string]models.Descriptor, error)
	GetComponent(ctx context.Context, address string) (models.Descriptor, error)
	LoadComponent(ctx context.Context, path string) (string, error)
	SendToComponent(ctx context.Context, address string, message map[string]any) (any, error)
}

// StateHandler is called with the key that changed and its new value:
// map[string]models.Descriptor for KeyComponents, string for KeyDaemon and
// models.Pipeline for KeyPipeline.
type StateHandler func(key string, value any)

// Config configures a Session
type Config struct {
	API API

	// DependencyDefaults is the pipeline dependency defaulting policy.
	// Defaults to models.DependencyDefaultsResolved.
	DependencyDefaults string

	Logger *slog.Logger
}

// Session is one dashboard session
type Session struct {
	api    API
	logger *slog.Logger

	registry   atomic.Pointer[registry.Registry]
	daemonAddr atomic.Pointer[string]
	store      *pipeline.Store

	handlersMu sync.RWMutex
	handlers   []StateHandler
}

// New creates a session with an empty registry and an empty pipeline
func New(cfg Config) *Session {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	policy := cfg.DependencyDefaults
	if policy == "" {
		policy = models.DependencyDefaultsResolved
	}

	s := &Session{
		api:    cfg.API,
		logger: logger,
	}
	s.registry.Store(registry.Empty())
	none := ""
	s.daemonAddr.Store(&none)

	s.store = pipeline.NewStore(
		pipeline.WithComponents(s),
		pipeline.WithDependencyDefaults(policy),
	)
	s.store.Subscribe(func(p models.Pipeline) {
		s.setState(KeyPipeline, p)
	})
	return s
}

// OnStateChange registers a handler. Handlers run synchronously, in
// registration order, on the goroutine that changed the state.
func (s *Session) OnStateChange(h StateHandler) {
	s.handlersMu.Lock()
	defer s.handlersMu.Unlock()
	s.handlers = append(s.handlers, h)
}

func (s *Session) setState(key string, value any) {
	s.handlersMu.RLock()
	handlers := make([]StateHandler, len(s.handlers))
	copy(handlers, s.handlers)
	s.handlersMu.RUnlock()

	for _, h := range handlers {
		h(key, value)
	}
}

// Pipeline returns the pipeline store of this session
func (s *Session) Pipeline() *pipeline.Store {
	return s.store
}

// Registry returns the last fetched component registry
func (s *Session) Registry() *registry.Registry {
	return s.registry.Load()
}

// DaemonAddress returns the last fetched daemon address, "" if none
func (s *Session) DaemonAddress() string {
	return *s.daemonAddr.Load()
}

// Resolve looks a component name up in the last fetched registry
func (s *Session) Resolve(name string) (string, models.Descriptor, bool) {
	return s.Registry().Resolve(name)
}

// Names returns the unique component names of the last fetched registry
func (s *Session) Names() []string {
	return s.Registry().Names()
}

// ComponentAddress returns the address of a loaded component by name
func (s *Session) ComponentAddress(name string) (string, bool) {
	addr, _, ok := s.Resolve(name)
	return addr, ok
}

func (s *Session) setRegistry(components map[string]models.Descriptor) {
	reg := registry.New(components)
	s.registry.Store(reg)
	s.setState(KeyComponents, reg.Components())
}

func (s *Session) setDaemon(addr string) {
	s.daemonAddr.Store(&addr)
	s.setState(KeyDaemon, addr)
}

// ConnectDaemon asks the API server to connect to the daemon at addr
func (s *Session) ConnectDaemon(ctx context.Context, addr string) error {
	s.logger.Debug("connecting daemon", "daemon", addr)
	if err := s.api.ConnectDaemon(ctx, addr); err != nil {
		s.logger.Warn("connect daemon failed", "daemon", addr, "error", err)
		return err
	}
	s.logger.Info("daemon connected", "daemon", addr)
	return nil
}

// GetDaemon fetches the connected daemon address and publishes it
func (s *Session) GetDaemon(ctx context.Context) (string, error) {
	addr, err := s.api.GetDaemon(ctx)
	if err != nil {
		s.logger.Warn("get daemon failed", "error", err)
		return "", err
	}
	s.setDaemon(addr)
	return addr, nil
}

// GetComponents refetches the loaded components and publishes them
func (s *Session) GetComponents(ctx context.Context) (map[string]models.Descriptor, error) {
	components, err := s.api.ListComponents(ctx)
	if err != nil {
		s.logger.Warn("list components failed", "error", err)
		return nil, err
	}
	s.logger.Debug("components listed", "count", len(components))
	s.setRegistry(components)
	return components, nil
}

// Refresh fetches the daemon address and the component list concurrently,
// then publishes both from the calling goroutine.
func (s *Session) Refresh(ctx context.Context) error {
	var (
		addr       string
		components map[string]models.Descriptor
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		addr, err = s.api.GetDaemon(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		components, err = s.api.ListComponents(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.Warn("refresh failed", "error", err)
		return err
	}

	s.setDaemon(addr)
	s.setRegistry(components)
	return nil
}

// GetComponent fetches one component descriptor by address
func (s *Session) GetComponent(ctx context.Context, address string) (models.Descriptor, error) {
	desc, err := s.api.GetComponent(ctx, address)
	if err != nil {
		s.logger.Warn("get component failed", "address", address, "error", err)
	}
	return desc, err
}

// LoadComponent starts a component from path and returns its address
func (s *Session) LoadComponent(ctx context.Context, path string) (string, error) {
	addr, err := s.api.LoadComponent(ctx, path)
	if err != nil {
		s.logger.Warn("load component failed", "path", path, "error", err)
		return "", err
	}
	s.logger.Info("component loaded", "path", path, "address", addr)
	return addr, nil
}

// SendToComponent sends a named message to a component
func (s *Session) SendToComponent(ctx context.Context, address string, message map[string]any) (any, error) {
	if _, ok := message["name"]; !ok {
		return nil, models.ErrMissingMessageName
	}
	resp, err := s.api.SendToComponent(ctx, address, message)
	if err != nil {
		s.logger.Warn("send to component failed", "address", address, "message", message["name"], "error", err)
	}
	return resp, err
}
