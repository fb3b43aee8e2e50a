package mode

import (
	"sync"
)

// Manager holds the current binding mode. Modes are plain names; any valid
// name may be switched to, since bindings can create modes by referring to
// them.
type Manager struct {
	mu sync.RWMutex

	// current is the active mode.
	current string

	// previous is the mode before the current one.
	previous string

	// callbacks are notified on mode changes.
	callbacks []ChangeCallback
}

// ChangeCallback is called when the mode changes.
type ChangeCallback func(Change)

// NewManager creates a manager starting in initial, or in Default when
// initial is empty.
func NewManager(initial string) *Manager {
	if initial == "" {
		initial = Default
	}
	return &Manager{current: initial}
}

// Current returns the current mode.
func (m *Manager) Current() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Previous returns the mode before the last switch, or "".
func (m *Manager) Previous() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.previous
}

// Switch changes the current mode and returns the mode it replaced.
// Switching to the current mode is a no-op and notifies no one.
func (m *Manager) Switch(name string) (string, error) {
	if err := Validate(name); err != nil {
		return "", err
	}

	m.mu.Lock()
	old := m.current
	if old == name {
		m.mu.Unlock()
		return old, nil
	}
	m.previous = old
	m.current = name

	// Copy callbacks to call outside of lock
	callbacks := make([]ChangeCallback, len(m.callbacks))
	copy(callbacks, m.callbacks)
	m.mu.Unlock()

	change := Change{From: old, To: name}
	for _, cb := range callbacks {
		if cb != nil {
			cb(change)
		}
	}
	return old, nil
}

// OnChange registers a callback for mode changes.
// Returns a function to unregister the callback.
func (m *Manager) OnChange(callback ChangeCallback) func() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.callbacks = append(m.callbacks, callback)
	index := len(m.callbacks) - 1

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		// Remove callback by setting to nil (preserves indices)
		if index < len(m.callbacks) {
			m.callbacks[index] = nil
		}
	}
}

// IsMode returns true if the current mode matches the given name.
func (m *Manager) IsMode(name string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current == name
}

// IsAnyMode returns true if the current mode matches any of the given names.
func (m *Manager) IsAnyMode(names ...string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, name := range names {
		if m.current == name {
			return true
		}
	}
	return false
}
