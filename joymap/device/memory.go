// Package device holds the virtual output devices remapped input is written to.
package device

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/valerio/go-joymap/joymap/input/event"
)

var ErrUnsupported = errors.New("device: output not supported on this platform")

// State is the output state of one virtual joystick
type State struct {
	Axes    map[int]float64
	Buttons map[int]bool
	Hats    map[int]event.Direction
}

func newState() *State {
	return &State{
		Axes:    make(map[int]float64),
		Buttons: make(map[int]bool),
		Hats:    make(map[int]event.Direction),
	}
}

func (s *State) clone() State {
	c := newState()
	for k, v := range s.Axes {
		c.Axes[k] = v
	}
	for k, v := range s.Buttons {
		c.Buttons[k] = v
	}
	for k, v := range s.Hats {
		c.Hats[k] = v
	}
	return *c
}

// PressedButtons returns the pressed button ids in ascending order
func (s State) PressedButtons() []int {
	var ids []int
	for id, pressed := range s.Buttons {
		if pressed {
			ids = append(ids, id)
		}
	}
	sort.Ints(ids)
	return ids
}

// Memory keeps the output of any number of virtual joysticks in memory.
// It is safe for concurrent use.
type Memory struct {
	mu      sync.RWMutex
	devices map[int]*State
	writes  uint64
}

func NewMemory() *Memory {
	return &Memory{devices: make(map[int]*State)}
}

func (m *Memory) state(device int) *State {
	s, ok := m.devices[device]
	if !ok {
		s = newState()
		m.devices[device] = s
	}
	return s
}

func (m *Memory) SetAxis(device, axis int, value float64) error {
	if value < -1 || value > 1 {
		return fmt.Errorf("axis value %v out of range [-1, 1]", value)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state(device).Axes[axis] = value
	m.writes++
	return nil
}

func (m *Memory) SetButton(device, button int, pressed bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state(device).Buttons[button] = pressed
	m.writes++
	return nil
}

func (m *Memory) SetHat(device, hat int, direction event.Direction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state(device).Hats[hat] = direction
	m.writes++
	return nil
}

// Device returns a copy of one device's state
func (m *Memory) Device(device int) State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if s, ok := m.devices[device]; ok {
		return s.clone()
	}
	return newState().clone()
}

// Snapshot copies the state of every device written so far
func (m *Memory) Snapshot() map[int]State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[int]State, len(m.devices))
	for id, s := range m.devices {
		out[id] = s.clone()
	}
	return out
}

// Writes counts the successful writes
func (m *Memory) Writes() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.writes
}
