package observability

import (
	"context"
	"maps"
	"sync"
)

// Counter tallies events by type. It backs the health endpoint's turn
// statistics.
type Counter struct {
	mu     sync.Mutex
	counts map[EventType]int64
}

// NewCounter creates an empty Counter.
func NewCounter() *Counter {
	return &Counter{counts: make(map[EventType]int64)}
}

func (c *Counter) OnEvent(_ context.Context, event Event) {
	c.mu.Lock()
	c.counts[event.Type]++
	c.mu.Unlock()
}

// Count returns the number of events seen of type t.
func (c *Counter) Count(t EventType) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counts[t]
}

// Snapshot returns a copy of all counts.
func (c *Counter) Snapshot() map[EventType]int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return maps.Clone(c.counts)
}
