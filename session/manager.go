package session

import (
	"context"
	"sync"

	"github.com/tailored-agentic-units/querymind/core/protocol"
)

// Manager owns the SessionKey to history mapping. It wraps a Store and
// hands out one lock per key so turns on the same session are applied one
// at a time while different sessions proceed independently.
type Manager struct {
	store Store

	mu    sync.Mutex
	locks map[string]*keyLock
}

type keyLock struct {
	mu   sync.Mutex
	refs int
}

// NewManager creates a Manager over store.
func NewManager(store Store) *Manager {
	return &Manager{
		store: store,
		locks: make(map[string]*keyLock),
	}
}

// Store returns the underlying history store.
func (m *Manager) Store() Store {
	return m.store
}

// Lock blocks until the caller holds key exclusively and returns the
// release function. Lock entries are dropped once no caller holds or waits
// on them.
func (m *Manager) Lock(key string) (unlock func()) {
	m.mu.Lock()
	l, ok := m.locks[key]
	if !ok {
		l = &keyLock{}
		m.locks[key] = l
	}
	l.refs++
	m.mu.Unlock()

	l.mu.Lock()

	return func() {
		l.mu.Unlock()

		m.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(m.locks, key)
		}
		m.mu.Unlock()
	}
}

// History returns key's history, creating an empty one if absent.
func (m *Manager) History(ctx context.Context, key string) ([]protocol.Message, error) {
	if key == "" {
		return nil, ErrEmptyKey
	}
	return m.store.Load(ctx, key)
}

// AppendTurn records the user text then the assistant reply.
func (m *Manager) AppendTurn(ctx context.Context, key string, turn protocol.Turn) error {
	return m.store.Append(ctx, key, turn.Messages()...)
}

// Reset drops key's history while holding its lock.
func (m *Manager) Reset(ctx context.Context, key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	unlock := m.Lock(key)
	defer unlock()
	return m.store.Delete(ctx, key)
}

// Keys lists the sessions with stored history.
func (m *Manager) Keys(ctx context.Context) ([]string, error) {
	return m.store.Keys(ctx)
}

// Close closes the underlying store.
func (m *Manager) Close() error {
	return m.store.Close()
}

// active reports how many keys currently have a lock entry. Used by tests.
func (m *Manager) active() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.locks)
}
