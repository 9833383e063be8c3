// Package dispatch routes input events to the bindings of the active mode.
package dispatch

import (
	"errors"

	"github.com/valerio/go-joymap/joymap/action"
	"github.com/valerio/go-joymap/joymap/button"
	"github.com/valerio/go-joymap/joymap/container"
	"github.com/valerio/go-joymap/joymap/input/event"
)

// Handler receives the events routed to a binding
type Handler interface {
	Handle(evt event.Event, value *action.Value) error
}

type HandlerFunc func(evt event.Event, value *action.Value) error

func (f HandlerFunc) Handle(evt event.Event, value *action.Value) error {
	return f(evt, value)
}

// Events adapts a container that consumes the whole event
func Events(c container.Container) Handler {
	return HandlerFunc(c.Call)
}

// Presses adapts a container that only consumes the press state
func Presses(c container.PressContainer) Handler {
	return HandlerFunc(func(_ event.Event, value *action.Value) error {
		return c.Call(value.Current.Pressed)
	})
}

// Binding attaches handlers to one physical input.
// With AxisButton or HatButton set, the handlers see the virtual button
// edges instead of the raw axis or hat events.
type Binding struct {
	Input      event.Key
	Handlers   []Handler
	AxisButton *button.AxisButton
	HatButton  *button.HatButton
	// AlwaysExecute bindings keep running while processing is paused
	AlwaysExecute bool
}

func (b *Binding) handle(evt event.Event, value *action.Value) error {
	switch {
	case b.AxisButton != nil && evt.Type == event.JoystickAxis:
		return b.AxisButton.Process(evt.Axis, b.virtual(evt))
	case b.HatButton != nil && evt.Type == event.JoystickHat:
		return b.HatButton.Process(evt.Hat, b.virtual(evt))
	}
	return b.run(evt, value)
}

// virtual returns the callback fired on virtual button edges
func (b *Binding) virtual(src event.Event) button.Callback {
	return func(pressed bool) error {
		evt := event.Event{
			Type:      event.JoystickButton,
			Device:    src.Device,
			ID:        src.ID,
			IsPressed: pressed,
			Virtual:   true,
			Time:      src.Time,
		}
		return b.run(evt, action.NewButtonValue(pressed))
	}
}

func (b *Binding) run(evt event.Event, value *action.Value) error {
	var errs []error
	for _, h := range b.Handlers {
		if err := h.Handle(evt, value); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
