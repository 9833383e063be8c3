//go:build linux

package source

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	evdev "github.com/holoplot/go-evdev"

	"github.com/valerio/go-joymap/joymap/input/event"
)

const (
	evKeyRelease = 0
	evKeyPress   = 1
)

// Evdev reads an event device. Keys below BTN_MISC become keyboard events,
// every other key code is a joystick button. Hat axes become hat events and
// the remaining absolute axes are normalised with the device's axis ranges.
type Evdev struct {
	path   string
	device string
	// Grab takes the device away from other readers while running
	Grab bool
}

// NewEvdev reads path, events carry the device file name (event3, ...) as device
func NewEvdev(path string) *Evdev {
	return &Evdev{path: path, device: filepath.Base(path)}
}

func (e *Evdev) Name() string {
	return "evdev:" + e.path
}

func (e *Evdev) Run(ctx context.Context, out chan<- event.Event) error {
	dev, err := evdev.Open(e.path)
	if err != nil {
		return fmt.Errorf("open %s: %w", e.path, err)
	}
	defer dev.Close()

	name, _ := dev.Name()
	abs, err := dev.AbsInfos()
	if err != nil {
		slog.Debug("No absolute axes", "path", e.path, "error", err)
	}
	slog.Info("Opened event device", "path", e.path, "name", name, "axes", len(abs))

	if e.Grab {
		if err := dev.Grab(); err != nil {
			return fmt.Errorf("grab %s: %w", e.path, err)
		}
		defer dev.Ungrab()
	}

	stop := context.AfterFunc(ctx, func() { dev.Close() })
	defer stop()

	tr := newEvdevTranslator(e.device, abs)
	for {
		ie, err := dev.ReadOne()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, os.ErrClosed) {
				return ctx.Err()
			}
			return fmt.Errorf("read %s: %w", e.path, err)
		}

		evt, ok := tr.translate(ie, time.Now())
		if !ok {
			continue
		}
		if !send(ctx, out, evt) {
			return ctx.Err()
		}
	}
}

type evdevTranslator struct {
	device string
	abs    map[evdev.EvCode]evdev.AbsInfo
	hats   map[int]event.Direction
}

func newEvdevTranslator(device string, abs map[evdev.EvCode]evdev.AbsInfo) *evdevTranslator {
	return &evdevTranslator{device: device, abs: abs, hats: make(map[int]event.Direction)}
}

func (t *evdevTranslator) translate(ie *evdev.InputEvent, now time.Time) (event.Event, bool) {
	evt := event.Event{Device: t.device, ID: int(ie.Code), Time: now}

	switch ie.Type {
	case evdev.EV_KEY:
		// autorepeat carries no new state
		if ie.Value != evKeyPress && ie.Value != evKeyRelease {
			return evt, false
		}
		evt.Type = event.Keyboard
		if ie.Code >= evdev.BTN_MISC {
			evt.Type = event.JoystickButton
		}
		evt.IsPressed = ie.Value == evKeyPress
		return evt, true

	case evdev.EV_ABS:
		if ie.Code >= evdev.ABS_HAT0X && ie.Code <= evdev.ABS_HAT3Y {
			offset := int(ie.Code - evdev.ABS_HAT0X)
			id := offset / 2
			d := t.hats[id]
			if offset%2 == 0 {
				d.X = event.DirectionFromAxes(int(ie.Value), 0).X
			} else {
				d.Y = event.DirectionFromAxes(0, -int(ie.Value)).Y
			}
			t.hats[id] = d

			evt.Type = event.JoystickHat
			evt.ID = id
			evt.Hat = d
			return evt, true
		}

		evt.Type = event.JoystickAxis
		if info, ok := t.abs[ie.Code]; ok {
			evt.Axis = normalize(ie.Value, info.Minimum, info.Maximum)
		} else {
			evt.Axis = normalize(ie.Value, -jsAxisMax, jsAxisMax)
		}
		return evt, true
	}
	return evt, false
}

// ListEvdev returns the event device nodes and their names
func ListEvdev() ([]Device, error) {
	paths, err := evdev.ListDevicePaths()
	if err != nil {
		return nil, err
	}
	devices := make([]Device, 0, len(paths))
	for _, p := range paths {
		devices = append(devices, Device{Path: p.Path, Name: p.Name})
	}
	return devices, nil
}
