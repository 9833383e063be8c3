//go:build !linux

package source

import (
	"context"
	"path/filepath"

	"github.com/valerio/go-joymap/joymap/input/event"
)

// Joystick stub for platforms without the Linux joystick API
type Joystick struct {
	path string
}

func NewJoystick(path string) *Joystick {
	return &Joystick{path: path}
}

func (j *Joystick) Name() string {
	return "joystick:" + filepath.Base(j.path)
}

func (j *Joystick) Run(ctx context.Context, out chan<- event.Event) error {
	return ErrUnavailable
}

// Device describes an input device node
type Device struct {
	Path string
	Name string
}

func ListJoysticks() ([]Device, error) {
	return nil, ErrUnavailable
}
