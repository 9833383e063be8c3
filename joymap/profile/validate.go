package profile

import (
	"errors"
	"fmt"

	"github.com/valerio/go-joymap/joymap/curve"
	"github.com/valerio/go-joymap/joymap/input/event"
	"github.com/valerio/go-joymap/joymap/mode"
)

// Validate checks the profile for mistakes the runtime would only trip over later
func (p *Profile) Validate() error {
	var errs []error
	fail := func(format string, args ...interface{}) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]interface{}{ErrInvalidProfile}, args...)...))
	}

	modes := make(map[string]bool, len(p.Modes))
	for _, m := range p.Modes {
		if m.Name == "" {
			fail("mode without a name")
			continue
		}
		if modes[m.Name] {
			fail("duplicate mode %q", m.Name)
		}
		modes[m.Name] = true
	}
	if _, err := mode.NewManager(p.ModeMap(), p.StartupMode); err != nil {
		errs = append(errs, fmt.Errorf("%w: %w", ErrInvalidProfile, err))
	}

	for i, b := range p.Bindings {
		where := fmt.Sprintf("binding %d (%s %s %d)", i, b.Device, b.Input, b.ID)
		if err := validateBinding(b, modes); err != nil {
			fail("%s: %v", where, err)
		}
	}

	return errors.Join(errs...)
}

func validateBinding(b Binding, modes map[string]bool) error {
	var errs []error

	if !modes[b.Mode] {
		errs = append(errs, fmt.Errorf("unknown mode %q", b.Mode))
	}
	if b.Device == "" {
		errs = append(errs, errors.New("missing device"))
	}
	input, err := b.InputType()
	if err != nil {
		return errors.Join(append(errs, err)...)
	}

	if vb := b.VirtualButton; vb != nil {
		switch input {
		case event.JoystickAxis:
			if vb.Lower < -1 || vb.Lower > 1 || vb.Upper < -1 || vb.Upper > 1 {
				errs = append(errs, fmt.Errorf("virtual button range [%v, %v] invalid", vb.Lower, vb.Upper))
			}
		case event.JoystickHat:
			if len(vb.Directions) == 0 {
				errs = append(errs, errors.New("virtual hat button needs directions"))
			}
			for _, d := range vb.Directions {
				if _, err := event.ParseDirection(d); err != nil {
					errs = append(errs, err)
				}
			}
		default:
			errs = append(errs, fmt.Errorf("virtual button on %s input", input))
		}
	}

	handler, _ := b.HandlerType()
	switch b.Container {
	case Basic, Tempo, Chain:
	case SmartToggle, DoubleTap:
		if !handler.IsButtonLike() {
			errs = append(errs, fmt.Errorf("%s needs a button-like input", b.Container))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown container %q", b.Container))
	}
	if b.Container == Tempo && !handler.IsButtonLike() {
		errs = append(errs, errors.New("tempo needs a button-like input"))
	}

	if len(b.Sets) == 0 {
		errs = append(errs, errors.New("no actions"))
	}
	for _, set := range b.Sets {
		if len(set) == 0 {
			errs = append(errs, errors.New("empty action set"))
		}
		for _, a := range set {
			if err := validateAction(a, handler, modes); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", a.Type, err))
			}
		}
	}
	return errors.Join(errs...)
}

func validateAction(a Action, input event.InputType, modes map[string]bool) error {
	switch a.Type {
	case Remap:
		if _, err := remapTarget(a, input); err != nil {
			return err
		}
	case Tap:
		if !input.IsButtonLike() {
			return fmt.Errorf("needs a button-like input, got %s", input)
		}
	case ResponseCurve:
		if input != event.JoystickAxis {
			return fmt.Errorf("needs an axis input, got %s", input)
		}
		if _, _, err := buildCurve(a); err != nil {
			return err
		}
	case SplitAxis:
		if input != event.JoystickAxis {
			return fmt.Errorf("needs an axis input, got %s", input)
		}
		if len(a.Outputs) != 2 {
			return errors.New("needs exactly two outputs")
		}
		if a.Center <= -1 || a.Center >= 1 {
			return fmt.Errorf("center %v outside (-1, 1)", a.Center)
		}
	case SwitchMode:
		if !modes[a.Mode] {
			return fmt.Errorf("unknown mode %q", a.Mode)
		}
	case CycleModes:
		if len(a.Modes) == 0 {
			return errors.New("no modes to cycle")
		}
		for _, m := range a.Modes {
			if !modes[m] {
				return fmt.Errorf("unknown mode %q", m)
			}
		}
	case PreviousMode, Pause, Resume, TogglePause:
	default:
		return fmt.Errorf("unknown action type %q", a.Type)
	}
	return nil
}

// remapTarget resolves the output type, it defaults to the input's own kind
func remapTarget(a Action, input event.InputType) (event.InputType, error) {
	if a.To == "" {
		if input.IsButtonLike() {
			return event.JoystickButton, nil
		}
		return input, nil
	}
	return event.ParseInputType(a.To)
}

func buildCurve(a Action) (*curve.Piecewise, curve.Deadzone, error) {
	c := curve.Linear()
	if len(a.Points) > 0 {
		points := make([]curve.Point, len(a.Points))
		for i, p := range a.Points {
			points[i] = curve.Point{X: p.X, Y: p.Y}
		}
		var err error
		if c, err = curve.NewPiecewise(points); err != nil {
			return nil, curve.Deadzone{}, err
		}
	}

	dz := curve.NoDeadzone
	switch len(a.Deadzone) {
	case 0:
	case 4:
		dz = curve.Deadzone{Low: a.Deadzone[0], CenterLow: a.Deadzone[1], CenterHigh: a.Deadzone[2], High: a.Deadzone[3]}
		if err := dz.Validate(); err != nil {
			return nil, curve.Deadzone{}, err
		}
	default:
		return nil, curve.Deadzone{}, fmt.Errorf("%w: deadzone needs four values", curve.ErrInvalidCurve)
	}
	return c, dz, nil
}
