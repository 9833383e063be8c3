package action

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/valerio/go-joymap/joymap/input/event"
)

// DefaultTapDelay is how long TapButton holds the output button down
const DefaultTapDelay = 100 * time.Millisecond

// Factory builds leaf actions bound to the output device and the mode controller
type Factory struct {
	Device     Device
	Controller Controller
	Releaser   Releaser // optional
	// Timers holds pending tap releases, nil leaves them untracked
	Timers *Timers
}

func (f *Factory) AxisToAxis(device, axis int) Action {
	return func(evt event.Event, value *Value) error {
		return f.Device.SetAxis(device, axis, value.Current.Axis)
	}
}

// ButtonToButton mirrors the current button state onto an output button.
// Physical presses are registered with the releaser so the output cannot get
// stuck down when the release is routed elsewhere. Virtual button presses
// share their key with a physical button and are not registered.
func (f *Factory) ButtonToButton(device, button int) Action {
	return func(evt event.Event, value *Value) error {
		if evt.IsPressed && !evt.Virtual && f.Releaser != nil {
			f.Releaser.Register(ButtonTarget{Device: device, Button: button}, evt)
		}
		return f.Device.SetButton(device, button, value.Current.Pressed)
	}
}

func (f *Factory) HatToHat(device, hat int) Action {
	return func(evt event.Event, value *Value) error {
		return f.Device.SetHat(device, hat, value.Current.Hat)
	}
}

// RemapInput picks the remap action for a pair of input types.
// Only like for like remaps are supported.
func (f *Factory) RemapInput(from, to event.InputType, device, id int) (Action, error) {
	switch {
	case from == event.JoystickAxis && to == event.JoystickAxis:
		return f.AxisToAxis(device, id), nil
	case from.IsButtonLike() && to == event.JoystickButton:
		return f.ButtonToButton(device, id), nil
	case from == event.JoystickHat && to == event.JoystickHat:
		return f.HatToHat(device, id), nil
	}
	return nil, fmt.Errorf("%w: %s to %s", ErrUnsupportedRemap, from, to)
}

// ResponseCurve rewrites the current axis value, the deadzone runs first
func (f *Factory) ResponseCurve(curve, deadzone func(float64) float64) Action {
	return func(evt event.Event, value *Value) error {
		value.Current.Axis = curve(deadzone(value.Current.Axis))
		return nil
	}
}

// SplitAxis hands the current axis value to fn
func (f *Factory) SplitAxis(fn func(float64) error) Action {
	return func(evt event.Event, value *Value) error {
		return fn(value.Current.Axis)
	}
}

func (f *Factory) SwitchMode(mode string) Action {
	return func(evt event.Event, value *Value) error {
		return f.Controller.SwitchMode(mode)
	}
}

func (f *Factory) PreviousMode() Action {
	return func(evt event.Event, value *Value) error {
		return f.Controller.PreviousMode()
	}
}

func (f *Factory) CycleModes(modes []string) Action {
	list := append([]string(nil), modes...)
	return func(evt event.Event, value *Value) error {
		return f.Controller.CycleModes(list)
	}
}

func (f *Factory) Pause() Action {
	return func(evt event.Event, value *Value) error {
		f.Controller.Pause()
		return nil
	}
}

func (f *Factory) Resume() Action {
	return func(evt event.Event, value *Value) error {
		f.Controller.Resume()
		return nil
	}
}

func (f *Factory) TogglePauseResume() Action {
	return func(evt event.Event, value *Value) error {
		f.Controller.TogglePauseResume()
		return nil
	}
}

// MapButton writes the press state straight to an output button
func (f *Factory) MapButton(device, button int) PressAction {
	return func(pressed bool) error {
		return f.Device.SetButton(device, button, pressed)
	}
}

func (f *Factory) PressButton(device, button int) PressAction {
	return func(bool) error {
		return f.Device.SetButton(device, button, true)
	}
}

func (f *Factory) ReleaseButton(device, button int) PressAction {
	return func(bool) error {
		return f.Device.SetButton(device, button, false)
	}
}

// TapButton presses an output button on press and releases it after delay.
// The release runs on a timer goroutine, the device must tolerate that.
// Releases still pending when Timers is flushed happen at the flush.
func (f *Factory) TapButton(device, button int, delay time.Duration) PressAction {
	if delay <= 0 {
		delay = DefaultTapDelay
	}
	return RunOnPress(func(bool) error {
		if err := f.Device.SetButton(device, button, true); err != nil {
			return err
		}
		release := func() {
			if err := f.Device.SetButton(device, button, false); err != nil {
				slog.Warn("Tap release failed", "device", device, "button", button, "error", err)
			}
		}
		if f.Timers != nil {
			f.Timers.AfterFunc(delay, release)
		} else {
			time.AfterFunc(delay, release)
		}
		return nil
	})
}
