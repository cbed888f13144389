package session

import (
	"context"
	"slices"
	"sort"
	"sync"

	"github.com/tailored-agentic-units/querymind/core/protocol"
)

type memoryStore struct {
	histories map[string][]protocol.Message
	mu        sync.RWMutex
}

// NewMemoryStore creates a Store backed by in-process maps. Histories live
// for the lifetime of the process.
func NewMemoryStore() Store {
	return &memoryStore{
		histories: make(map[string][]protocol.Message),
	}
}

func (s *memoryStore) Load(_ context.Context, key string) ([]protocol.Message, error) {
	if key == "" {
		return nil, ErrEmptyKey
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.histories[key]), nil
}

func (s *memoryStore) Append(_ context.Context, key string, msgs ...protocol.Message) error {
	if key == "" {
		return ErrEmptyKey
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.histories[key] = append(s.histories[key], msgs...)
	return nil
}

func (s *memoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.histories, key)
	return nil
}

func (s *memoryStore) Keys(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.histories))
	for key := range s.histories {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *memoryStore) Close() error {
	return nil
}
