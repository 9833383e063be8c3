// Package action defines the leaf actions wrapped by containers and the
// collaborators they drive.
package action

import (
	"errors"

	"github.com/valerio/go-joymap/joymap/input/event"
)

// Action is invoked by the event driven containers (basic, tempo, chain)
type Action func(evt event.Event, value *Value) error

// PressAction is invoked by the press driven containers (smart toggle, double tap)
type PressAction func(pressed bool) error

// Device is the virtual output device the remapping actions write to
type Device interface {
	SetAxis(device, axis int, value float64) error
	SetButton(device, button int, pressed bool) error
	SetHat(device, hat int, direction event.Direction) error
}

// Controller switches modes and pauses or resumes processing
type Controller interface {
	SwitchMode(name string) error
	PreviousMode() error
	CycleModes(names []string) error
	Pause()
	Resume()
	TogglePauseResume()
}

// ButtonTarget identifies an output button
type ButtonTarget struct {
	Device int
	Button int
}

// Releaser releases output buttons once the physical input that pressed them goes up
type Releaser interface {
	Register(target ButtonTarget, source event.Event)
}

// Sequence runs the actions in order and stops at the first failure
func Sequence(actions ...Action) Action {
	return func(evt event.Event, value *Value) error {
		for _, a := range actions {
			if err := a(evt, value); err != nil {
				return err
			}
		}
		return nil
	}
}

// PressSequence is Sequence for press actions
func PressSequence(actions ...PressAction) PressAction {
	return func(pressed bool) error {
		for _, a := range actions {
			if err := a(pressed); err != nil {
				return err
			}
		}
		return nil
	}
}

// RunOnPress only forwards presses
func RunOnPress(fn PressAction) PressAction {
	return func(pressed bool) error {
		if pressed {
			return fn(pressed)
		}
		return nil
	}
}

// RunOnRelease only forwards releases
func RunOnRelease(fn PressAction) PressAction {
	return func(pressed bool) error {
		if !pressed {
			return fn(pressed)
		}
		return nil
	}
}

// OnPress adapts an event action into a press action that fires on presses only.
// The event it receives is a synthetic button event.
func OnPress(a Action) PressAction {
	return RunOnPress(func(pressed bool) error {
		return a(event.Event{Type: event.JoystickButton, IsPressed: pressed, Virtual: true}, NewButtonValue(pressed))
	})
}

var ErrUnsupportedRemap = errors.New("unsupported remap")
