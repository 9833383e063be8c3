//go:build !linux

package source

import (
	"context"

	"github.com/valerio/go-joymap/joymap/input/event"
)

// Evdev stub for platforms without event devices
type Evdev struct {
	path string
	Grab bool
}

func NewEvdev(path string) *Evdev {
	return &Evdev{path: path}
}

func (e *Evdev) Name() string {
	return "evdev:" + e.path
}

func (e *Evdev) Run(ctx context.Context, out chan<- event.Event) error {
	return ErrUnavailable
}

func ListEvdev() ([]Device, error) {
	return nil, ErrUnavailable
}
