package session

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

// AdapterFactory returns the persistence adapter for a session.
type AdapterFactory func(id string) Adapter

// Manager owns the stores of open sessions. Each session's store is created
// on first access, reloaded from its adapter and given field defaults.
//
// The manager does not serialize requests within a session; callers must not
// run two requests for the same session concurrently.
type Manager struct {
	mu      sync.Mutex
	stores  map[string]*Store
	factory AdapterFactory
	logger  *zap.Logger
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithLogger sets the logger used for session lifecycle events.
func WithLogger(l *zap.Logger) ManagerOption {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// NewManager creates a Manager. A nil factory keeps sessions in memory.
func NewManager(factory AdapterFactory, opts ...ManagerOption) *Manager {
	if factory == nil {
		factory = func(string) Adapter { return NewMemoryAdapter() }
	}
	m := &Manager{
		stores:  make(map[string]*Store),
		factory: factory,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// NewID mints a session identifier.
func NewID() string {
	return ulid.Make().String()
}

// New starts a fresh session and returns its identifier and store.
func (m *Manager) New(ctx context.Context) (string, *Store, error) {
	id := NewID()
	s, err := m.Open(ctx, id)
	if err != nil {
		return "", nil, err
	}
	return id, s, nil
}

// Open returns the store for id, loading it from the adapter on first access.
func (m *Manager) Open(ctx context.Context, id string) (*Store, error) {
	if id == "" {
		return nil, ErrInvalidID
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.stores[id]; ok {
		return s, nil
	}

	s := New(m.factory(id))
	if err := s.Reload(ctx); err != nil {
		return nil, fmt.Errorf("open session %s: %w", id, err)
	}
	restored := s.Len() > 0
	Init(s)
	m.stores[id] = s

	m.logger.Debug("session opened", zap.String("session_id", id), zap.Bool("restored", restored))
	return s, nil
}

// Save persists the store for id.
func (m *Manager) Save(ctx context.Context, id string) error {
	m.mu.Lock()
	s, ok := m.stores[id]
	m.mu.Unlock()
	if !ok {
		return fmt.Errorf("save session %s: %w", id, ErrKeyNotFound)
	}
	if err := s.Sync(ctx); err != nil {
		return fmt.Errorf("save session %s: %w", id, err)
	}
	m.logger.Debug("session saved", zap.String("session_id", id), zap.Int("keys", s.Len()))
	return nil
}

// Close drops id from the open set without touching persisted data.
func (m *Manager) Close(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.stores, id)
}

// IDs returns the identifiers of open sessions in sorted order.
func (m *Manager) IDs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Sorted(maps.Keys(m.stores))
}
