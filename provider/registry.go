package provider

import (
	"fmt"
	"sort"
	"sync"
)

// Factory builds a Provider from its configuration and resolved credential.
type Factory func(cfg *Config, apiKey string) (Provider, error)

// Registry maps provider names to factories. Thread-safe for concurrent access.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
	}
}

// Register adds a named factory.
func (r *Registry) Register(name string, f Factory) error {
	if name == "" {
		return ErrEmptyProvider
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[name]; exists {
		return fmt.Errorf("%w: %s", ErrProviderExists, name)
	}

	r.factories[name] = f
	return nil
}

// Replace swaps the factory of an already registered name.
func (r *Registry) Replace(name string, f Factory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[name]; !exists {
		return fmt.Errorf("%w: %s", ErrUnknownProvider, name)
	}

	r.factories[name] = f
	return nil
}

// Unregister removes a named factory.
func (r *Registry) Unregister(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[name]; !exists {
		return fmt.Errorf("%w: %s", ErrUnknownProvider, name)
	}

	delete(r.factories, name)
	return nil
}

// Names returns the registered provider names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New instantiates the provider named by cfg.Name.
func (r *Registry) New(cfg *Config, apiKey string) (Provider, error) {
	r.mu.RLock()
	f, exists := r.factories[cfg.Name]
	r.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, cfg.Name)
	}

	p, err := f(cfg, apiKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create provider %q: %w", cfg.Name, err)
	}
	return p, nil
}
