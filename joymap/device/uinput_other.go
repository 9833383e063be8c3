//go:build !linux

package device

import "github.com/valerio/go-joymap/joymap/input/event"

// Uinput stub for platforms without uinput
type Uinput struct{}

func NewUinput(name string) (*Uinput, error) {
	return nil, ErrUnsupported
}

func (u *Uinput) SetAxis(device, axis int, value float64) error           { return ErrUnsupported }
func (u *Uinput) SetButton(device, button int, pressed bool) error        { return ErrUnsupported }
func (u *Uinput) SetHat(device, hat int, direction event.Direction) error { return ErrUnsupported }
func (u *Uinput) Close() error                                            { return nil }
