package input

import (
	"sort"
	"sync"

	"go.uber.org/zap"
)

// Hook observes resolutions around dispatch.
type Hook interface {
	// BeforeDispatch is called before a resolution is dispatched.
	// Return true to consume it (it is not dispatched).
	BeforeDispatch(res *Resolution) bool

	// AfterDispatch is called after dispatch with its error.
	AfterDispatch(res *Resolution, err error)
}

// HookPriority defines the execution order for hooks.
// Lower values execute first.
type HookPriority int

const (
	// HookPriorityHighest runs before all other hooks.
	HookPriorityHighest HookPriority = -1000
	// HookPriorityHigh runs early in the hook chain.
	HookPriorityHigh HookPriority = -100
	// HookPriorityNormal is the default priority.
	HookPriorityNormal HookPriority = 0
	// HookPriorityLow runs late in the hook chain.
	HookPriorityLow HookPriority = 100
	// HookPriorityLowest runs after all other hooks.
	HookPriorityLowest HookPriority = 1000
)

// HookID uniquely identifies a registered hook.
type HookID uint64

// HookRegistration holds metadata about a registered hook.
type HookRegistration struct {
	ID       HookID
	Name     string
	Priority HookPriority
	Hook     Hook
}

// HookManager manages hooks with priorities and named registration.
type HookManager struct {
	mu     sync.RWMutex
	hooks  []HookRegistration
	nextID HookID
	sorted bool
}

// NewHookManager creates a new hook manager.
func NewHookManager() *HookManager {
	return &HookManager{sorted: true}
}

// Register adds a hook with default priority.
func (m *HookManager) Register(hook Hook) HookID {
	return m.RegisterWithOptions(hook, "", HookPriorityNormal)
}

// RegisterWithOptions adds a hook with a name and priority. A named hook
// replaces an earlier hook with the same name.
func (m *HookManager) RegisterWithOptions(hook Hook, name string, priority HookPriority) HookID {
	m.mu.Lock()
	defer m.mu.Unlock()

	if name != "" {
		m.removeLocked(func(r HookRegistration) bool { return r.Name == name })
	}

	m.nextID++
	m.hooks = append(m.hooks, HookRegistration{
		ID:       m.nextID,
		Name:     name,
		Priority: priority,
		Hook:     hook,
	})
	m.sorted = false
	return m.nextID
}

// Unregister removes a hook by ID.
func (m *HookManager) Unregister(id HookID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.removeLocked(func(r HookRegistration) bool { return r.ID == id })
}

// UnregisterByName removes a hook by name.
func (m *HookManager) UnregisterByName(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.removeLocked(func(r HookRegistration) bool { return r.Name == name })
}

func (m *HookManager) removeLocked(match func(HookRegistration) bool) bool {
	for i := range m.hooks {
		if match(m.hooks[i]) {
			m.hooks = append(m.hooks[:i], m.hooks[i+1:]...)
			return true
		}
	}
	return false
}

// Count returns the number of registered hooks.
func (m *HookManager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.hooks)
}

// snapshot returns the hooks in priority order.
func (m *HookManager) snapshot() []Hook {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.sorted {
		sort.SliceStable(m.hooks, func(i, j int) bool {
			return m.hooks[i].Priority < m.hooks[j].Priority
		})
		m.sorted = true
	}

	hooks := make([]Hook, len(m.hooks))
	for i := range m.hooks {
		hooks[i] = m.hooks[i].Hook
	}
	return hooks
}

// RunBeforeDispatch runs BeforeDispatch hooks in priority order.
// Returns true if any hook consumed the resolution.
func (m *HookManager) RunBeforeDispatch(res *Resolution) bool {
	for _, hook := range m.snapshot() {
		if hook.BeforeDispatch(res) {
			return true
		}
	}
	return false
}

// RunAfterDispatch runs AfterDispatch hooks in priority order.
func (m *HookManager) RunAfterDispatch(res *Resolution, err error) {
	for _, hook := range m.snapshot() {
		hook.AfterDispatch(res, err)
	}
}

// BaseHook provides a default implementation of the Hook interface.
// Embed this in custom hooks to only implement the methods you need.
type BaseHook struct{}

// BeforeDispatch is a no-op that does not consume resolutions.
func (BaseHook) BeforeDispatch(*Resolution) bool {
	return false
}

// AfterDispatch is a no-op.
func (BaseHook) AfterDispatch(*Resolution, error) {}

// FuncHook wraps functions into a Hook interface implementation.
type FuncHook struct {
	BeforeFunc func(*Resolution) bool
	AfterFunc  func(*Resolution, error)
}

// BeforeDispatch calls BeforeFunc if set.
func (h FuncHook) BeforeDispatch(res *Resolution) bool {
	if h.BeforeFunc != nil {
		return h.BeforeFunc(res)
	}
	return false
}

// AfterDispatch calls AfterFunc if set.
func (h FuncHook) AfterDispatch(res *Resolution, err error) {
	if h.AfterFunc != nil {
		h.AfterFunc(res, err)
	}
}

// LoggingHook logs every resolution at debug level.
type LoggingHook struct {
	BaseHook
	Logger *zap.Logger
}

// BeforeDispatch logs the resolution.
func (h LoggingHook) BeforeDispatch(res *Resolution) bool {
	if h.Logger != nil {
		h.Logger.Debug("resolved",
			zap.Stringer("kind", res.Kind),
			zap.Stringer("keys", res.Keys),
			zap.String("mode", res.Mode),
			zap.Strings("commands", res.Commands))
	}
	return false
}
