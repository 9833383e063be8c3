// Package button turns continuous or multi-state inputs into discrete
// press/release signals.
package button

import (
	"fmt"

	"github.com/valerio/go-joymap/joymap/fsm"
	"github.com/valerio/go-joymap/joymap/input/event"
)

// State of a virtual button
type State int

const (
	Up State = iota
	Down
)

func (s State) String() string {
	if s == Down {
		return "down"
	}
	return "up"
}

// Signal fed into the button state machine
type Signal int

const (
	Press Signal = iota
	Release
)

func (s Signal) String() string {
	if s == Press {
		return "press"
	}
	return "release"
}

// Callback receives true on press and false on release
type Callback func(pressed bool) error

// VirtualButton absorbs redundant signals: the callback only runs when the
// button actually changes state. The callback is supplied with every signal,
// so whoever processes the button last decides where the change goes.
type VirtualButton struct {
	machine *fsm.Machine[State, Signal, Callback]
}

func NewVirtualButton() *VirtualButton {
	table := fsm.Table[State, Signal, Callback]{
		{State: Up, Action: Press}:     {Effect: pressEffect, Next: Down},
		{State: Up, Action: Release}:   {Next: Up},
		{State: Down, Action: Press}:   {Next: Down},
		{State: Down, Action: Release}: {Effect: releaseEffect, Next: Up},
	}

	machine, err := fsm.New(Up, []State{Up, Down}, []Signal{Press, Release}, table)
	if err != nil {
		// the table above is total
		panic(fmt.Sprintf("button: invalid state machine: %v", err))
	}
	return &VirtualButton{machine: machine}
}

func pressEffect(cb Callback) error {
	if cb == nil {
		return nil
	}
	return cb(true)
}

func releaseEffect(cb Callback) error {
	if cb == nil {
		return nil
	}
	return cb(false)
}

// Perform feeds a signal into the button
func (b *VirtualButton) Perform(signal Signal, cb Callback) error {
	return b.machine.Perform(signal, cb)
}

// Set presses the button when pressed is true and releases it otherwise
func (b *VirtualButton) Set(pressed bool, cb Callback) error {
	if pressed {
		return b.Perform(Press, cb)
	}
	return b.Perform(Release, cb)
}

func (b *VirtualButton) IsPressed() bool {
	return b.machine.Current() == Down
}

// AxisButton is pressed while an axis sits inside [lower, upper]
type AxisButton struct {
	*VirtualButton
	lower, upper float64
}

// NewAxisButton accepts the limits in either order
func NewAxisButton(lower, upper float64) *AxisButton {
	if lower > upper {
		lower, upper = upper, lower
	}
	return &AxisButton{
		VirtualButton: NewVirtualButton(),
		lower:         lower,
		upper:         upper,
	}
}

func (a *AxisButton) Limits() (lower, upper float64) {
	return a.lower, a.upper
}

// Process evaluates an axis position, both limits are inclusive
func (a *AxisButton) Process(value float64, cb Callback) error {
	return a.Set(a.lower <= value && value <= a.upper, cb)
}

// HatButton is pressed while a hat points in one of its directions
type HatButton struct {
	*VirtualButton
	directions map[event.Direction]struct{}
}

func NewHatButton(directions ...event.Direction) *HatButton {
	set := make(map[event.Direction]struct{}, len(directions))
	for _, d := range directions {
		set[d] = struct{}{}
	}
	return &HatButton{
		VirtualButton: NewVirtualButton(),
		directions:    set,
	}
}

// Process evaluates a hat direction
func (h *HatButton) Process(value event.Direction, cb Callback) error {
	_, ok := h.directions[value]
	return h.Set(ok, cb)
}
