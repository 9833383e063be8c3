// Package mode tracks the active profile mode and the paused state.
package mode

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

var (
	ErrUnknownMode = errors.New("mode: unknown mode")
	ErrModeCycle   = errors.New("mode: inheritance cycle")
)

// Listener is told about mode and pause changes
type Listener func(previous, current string, paused bool)

// Manager implements action.Controller
type Manager struct {
	mu        sync.RWMutex
	parents   map[string]string
	current   string
	previous  string
	paused    bool
	listeners []Listener
}

// NewManager registers the modes (name -> parent, "" for none) and starts in startup
func NewManager(modes map[string]string, startup string) (*Manager, error) {
	parents := make(map[string]string, len(modes))
	for name, parent := range modes {
		parents[name] = parent
	}

	for name, parent := range parents {
		if parent != "" {
			if _, ok := parents[parent]; !ok {
				return nil, fmt.Errorf("%w: %q inherits from %q", ErrUnknownMode, name, parent)
			}
		}
		seen := map[string]bool{name: true}
		for p := parent; p != ""; p = parents[p] {
			if seen[p] {
				return nil, fmt.Errorf("%w: through %q", ErrModeCycle, name)
			}
			seen[p] = true
		}
	}

	if _, ok := parents[startup]; !ok {
		return nil, fmt.Errorf("%w: startup mode %q", ErrUnknownMode, startup)
	}

	return &Manager{
		parents:  parents,
		current:  startup,
		previous: startup,
	}, nil
}

// OnChange registers a listener, listeners run after the change outside the lock
func (m *Manager) OnChange(l Listener) {
	m.mu.Lock()
	m.listeners = append(m.listeners, l)
	m.mu.Unlock()
}

func (m *Manager) Current() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

func (m *Manager) Previous() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.previous
}

func (m *Manager) IsPaused() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.paused
}

// Modes returns the registered mode names and their parents
func (m *Manager) Modes() map[string]string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]string, len(m.parents))
	for k, v := range m.parents {
		out[k] = v
	}
	return out
}

// Lineage returns the current mode followed by its ancestors
func (m *Manager) Lineage() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var lineage []string
	for name := m.current; name != ""; name = m.parents[name] {
		lineage = append(lineage, name)
	}
	return lineage
}

func (m *Manager) SwitchMode(name string) error {
	m.mu.Lock()
	if _, ok := m.parents[name]; !ok {
		m.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrUnknownMode, name)
	}
	if name == m.current {
		m.mu.Unlock()
		return nil
	}
	m.previous, m.current = m.current, name
	m.mu.Unlock()

	slog.Info("Mode switched", "mode", name)
	m.notify()
	return nil
}

func (m *Manager) PreviousMode() error {
	return m.SwitchMode(m.Previous())
}

// CycleModes moves to the mode following the current one in names, or to the
// first one when the current mode is not part of the list
func (m *Manager) CycleModes(names []string) error {
	if len(names) == 0 {
		return nil
	}

	current := m.Current()
	next := names[0]
	for i, name := range names {
		if name == current {
			next = names[(i+1)%len(names)]
			break
		}
	}
	return m.SwitchMode(next)
}

func (m *Manager) Pause() {
	m.setPaused(true)
}

func (m *Manager) Resume() {
	m.setPaused(false)
}

func (m *Manager) TogglePauseResume() {
	m.mu.RLock()
	paused := m.paused
	m.mu.RUnlock()
	m.setPaused(!paused)
}

func (m *Manager) setPaused(paused bool) {
	m.mu.Lock()
	if m.paused == paused {
		m.mu.Unlock()
		return
	}
	m.paused = paused
	m.mu.Unlock()

	slog.Info("Processing state changed", "paused", paused)
	m.notify()
}

func (m *Manager) notify() {
	m.mu.RLock()
	previous, current, paused := m.previous, m.current, m.paused
	listeners := append([]Listener(nil), m.listeners...)
	m.mu.RUnlock()

	for _, l := range listeners {
		l(previous, current, paused)
	}
}
