package device

import (
	"errors"

	"github.com/valerio/go-joymap/joymap/action"
	"github.com/valerio/go-joymap/joymap/input/event"
)

// Tee writes to every device in order, failures are joined
type Tee []action.Device

func (t Tee) SetAxis(device, axis int, value float64) error {
	var errs []error
	for _, d := range t {
		errs = append(errs, d.SetAxis(device, axis, value))
	}
	return errors.Join(errs...)
}

func (t Tee) SetButton(device, button int, pressed bool) error {
	var errs []error
	for _, d := range t {
		errs = append(errs, d.SetButton(device, button, pressed))
	}
	return errors.Join(errs...)
}

func (t Tee) SetHat(device, hat int, direction event.Direction) error {
	var errs []error
	for _, d := range t {
		errs = append(errs, d.SetHat(device, hat, direction))
	}
	return errors.Join(errs...)
}
