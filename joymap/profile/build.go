package profile

import (
	"fmt"

	"github.com/valerio/go-joymap/joymap/action"
	"github.com/valerio/go-joymap/joymap/button"
	"github.com/valerio/go-joymap/joymap/container"
	"github.com/valerio/go-joymap/joymap/dispatch"
	"github.com/valerio/go-joymap/joymap/input/event"
	"github.com/valerio/go-joymap/joymap/mode"
	"github.com/valerio/go-joymap/joymap/timing"
)

// Deps are the runtime collaborators the built actions drive
type Deps struct {
	Device   action.Device
	Releaser action.Releaser // optional
	// Controller receives mode and pause actions, it defaults to the
	// mode manager returned by Build
	Controller action.Controller
	Clock      timing.Clock   // optional
	Timers     *action.Timers // optional, tracks tap releases
}

// Build turns a validated profile into a binding table and a mode manager
func Build(p *Profile, deps Deps) (*dispatch.Table, *mode.Manager, error) {
	modes, err := mode.NewManager(p.ModeMap(), p.StartupMode)
	if err != nil {
		return nil, nil, err
	}

	b := builder{
		factory: &action.Factory{
			Device:     deps.Device,
			Controller: deps.Controller,
			Releaser:   deps.Releaser,
			Timers:     deps.Timers,
		},
	}
	if b.factory.Controller == nil {
		b.factory.Controller = modes
	}
	if deps.Clock != nil {
		b.opts = append(b.opts, container.WithClock(deps.Clock))
	}

	table := dispatch.NewTable()
	for i, pb := range p.Bindings {
		binding, err := b.binding(pb)
		if err != nil {
			return nil, nil, fmt.Errorf("binding %d (%s %s %d): %w", i, pb.Device, pb.Input, pb.ID, err)
		}
		table.Add(pb.Mode, binding)
	}
	return table, modes, nil
}

type builder struct {
	factory *action.Factory
	opts    []container.Option
}

func (b *builder) binding(pb Binding) (*dispatch.Binding, error) {
	key, err := pb.Key()
	if err != nil {
		return nil, err
	}
	input, err := pb.HandlerType()
	if err != nil {
		return nil, err
	}

	out := &dispatch.Binding{Input: key, AlwaysExecute: pb.AlwaysExecute()}
	if vb := pb.VirtualButton; vb != nil {
		switch key.Type {
		case event.JoystickAxis:
			out.AxisButton = button.NewAxisButton(vb.Lower, vb.Upper)
		case event.JoystickHat:
			dirs := make([]event.Direction, 0, len(vb.Directions))
			for _, s := range vb.Directions {
				d, err := event.ParseDirection(s)
				if err != nil {
					return nil, err
				}
				dirs = append(dirs, d)
			}
			out.HatButton = button.NewHatButton(dirs...)
		}
	}

	handler, err := b.container(pb, input)
	if err != nil {
		return nil, err
	}
	out.Handlers = []dispatch.Handler{handler}
	return out, nil
}

func (b *builder) container(pb Binding, input event.InputType) (dispatch.Handler, error) {
	switch pb.Container {
	case SmartToggle, DoubleTap:
		sets := make([]action.PressAction, 0, len(pb.Sets))
		for _, set := range pb.Sets {
			a, err := b.pressSet(set, input)
			if err != nil {
				return nil, err
			}
			sets = append(sets, a)
		}
		if pb.Container == SmartToggle {
			c, err := container.NewSmartToggle(sets, pb.Duration, b.opts...)
			if err != nil {
				return nil, err
			}
			return dispatch.Presses(c), nil
		}
		c, err := container.NewDoubleTap(sets, pb.Timeout, b.opts...)
		if err != nil {
			return nil, err
		}
		return dispatch.Presses(c), nil
	}

	sets := make([]action.Action, 0, len(pb.Sets))
	for _, set := range pb.Sets {
		a, err := b.eventSet(set, input)
		if err != nil {
			return nil, err
		}
		sets = append(sets, a)
	}

	var (
		c   container.Container
		err error
	)
	switch pb.Container {
	case Basic:
		c, err = container.NewBasic(sets, b.opts...)
	case Tempo:
		d := pb.Duration
		if d <= 0 {
			d = DefaultTempoDuration
		}
		c, err = container.NewTempo(sets, d, b.opts...)
	case Chain:
		c, err = container.NewChain(sets, pb.Timeout, b.opts...)
	default:
		return nil, fmt.Errorf("unknown container %q", pb.Container)
	}
	if err != nil {
		return nil, err
	}
	return dispatch.Events(c), nil
}

func (b *builder) eventSet(set []Action, input event.InputType) (action.Action, error) {
	actions := make([]action.Action, 0, len(set))
	for _, a := range set {
		built, err := b.eventAction(a, input)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", a.Type, err)
		}
		actions = append(actions, built)
	}
	return action.Sequence(actions...), nil
}

func (b *builder) pressSet(set []Action, input event.InputType) (action.PressAction, error) {
	actions := make([]action.PressAction, 0, len(set))
	for _, a := range set {
		built, err := b.pressAction(a, input)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", a.Type, err)
		}
		actions = append(actions, built)
	}
	return action.PressSequence(actions...), nil
}

func (b *builder) eventAction(a Action, input event.InputType) (action.Action, error) {
	f := b.factory
	switch a.Type {
	case Remap:
		to, err := remapTarget(a, input)
		if err != nil {
			return nil, err
		}
		return f.RemapInput(input, to, outputDevice(a.Device), a.ID)
	case Tap:
		tap := f.TapButton(outputDevice(a.Device), a.ID, a.Delay)
		return func(_ event.Event, value *action.Value) error {
			return tap(value.Current.Pressed)
		}, nil
	case ResponseCurve:
		c, dz, err := buildCurve(a)
		if err != nil {
			return nil, err
		}
		return f.ResponseCurve(c.Apply, dz.Apply), nil
	case SplitAxis:
		if len(a.Outputs) != 2 {
			return nil, fmt.Errorf("split axis needs two outputs, got %d", len(a.Outputs))
		}
		return f.SplitAxis(splitAxis(f.Device, a.Center, a.Outputs[0], a.Outputs[1])), nil
	case SwitchMode:
		return onButtonPress(f.SwitchMode(a.Mode)), nil
	case PreviousMode:
		return onButtonPress(f.PreviousMode()), nil
	case CycleModes:
		return onButtonPress(f.CycleModes(a.Modes)), nil
	case Pause:
		return onButtonPress(f.Pause()), nil
	case Resume:
		return onButtonPress(f.Resume()), nil
	case TogglePause:
		return onButtonPress(f.TogglePauseResume()), nil
	}
	return nil, fmt.Errorf("unknown action type %q", a.Type)
}

func (b *builder) pressAction(a Action, input event.InputType) (action.PressAction, error) {
	f := b.factory
	switch a.Type {
	case Remap:
		to, err := remapTarget(a, input)
		if err != nil {
			return nil, err
		}
		if to != event.JoystickButton {
			return nil, fmt.Errorf("%w: %s to %s", action.ErrUnsupportedRemap, input, to)
		}
		return f.MapButton(outputDevice(a.Device), a.ID), nil
	case Tap:
		return f.TapButton(outputDevice(a.Device), a.ID, a.Delay), nil
	}

	ea, err := b.eventAction(a, event.JoystickButton)
	if err != nil {
		return nil, err
	}
	return action.OnPress(ea), nil
}

// onButtonPress keeps one-shot actions from firing again on the release
func onButtonPress(a action.Action) action.Action {
	return func(evt event.Event, value *action.Value) error {
		if evt.Type.IsButtonLike() && !value.Current.Pressed {
			return nil
		}
		return a(evt, value)
	}
}

// splitAxis drives low with the part of the axis below center and high with
// the part above it, each rescaled to the full [-1, 1] range. The idle half rests at -1.
func splitAxis(dev action.Device, center float64, low, high Target) func(float64) error {
	return func(v float64) error {
		lowValue, highValue := -1.0, -1.0
		if v < center {
			lowValue = 2*(center-v)/(center+1) - 1
		} else {
			highValue = 2*(v-center)/(1-center) - 1
		}
		if err := dev.SetAxis(outputDevice(low.Device), low.ID, clamp(lowValue)); err != nil {
			return err
		}
		return dev.SetAxis(outputDevice(high.Device), high.ID, clamp(highValue))
	}
}

func clamp(v float64) float64 {
	switch {
	case v < -1:
		return -1
	case v > 1:
		return 1
	}
	return v
}

// outputDevice maps an unset device id to the first virtual device
func outputDevice(id int) int {
	if id == 0 {
		return 1
	}
	return id
}
