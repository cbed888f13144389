package session

// ActiveLocks exposes the number of live per-key lock entries.
func (m *Manager) ActiveLocks() int {
	return m.active()
}
