//go:build sdl2

package source

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"github.com/veandco/go-sdl2/sdl"

	"github.com/valerio/go-joymap/joymap/input/event"
	"github.com/valerio/go-joymap/joymap/timing"
)

// SDL reads every joystick SDL can see. Events carry "sdl<instance id>" as device.
// Note: building this requires SDL2 development libraries installed.
type SDL struct {
	interval time.Duration
}

func NewSDL() *SDL {
	return &SDL{interval: timing.DefaultPollInterval}
}

func (s *SDL) Name() string {
	return "sdl"
}

func (s *SDL) Run(ctx context.Context, out chan<- event.Event) error {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	if err := sdl.Init(sdl.INIT_JOYSTICK | sdl.INIT_EVENTS); err != nil {
		return fmt.Errorf("failed to initialize SDL2: %v", err)
	}
	defer sdl.Quit()

	sdl.JoystickEventState(sdl.ENABLE)
	var opened []*sdl.Joystick
	for i := 0; i < sdl.NumJoysticks(); i++ {
		js := sdl.JoystickOpen(i)
		if js == nil {
			slog.Warn("Failed to open SDL joystick", "index", i, "error", sdl.GetError())
			continue
		}
		slog.Info("Opened SDL joystick", "index", i, "name", js.Name(), "axes", js.NumAxes(), "buttons", js.NumButtons(), "hats", js.NumHats())
		opened = append(opened, js)
	}
	defer func() {
		for _, js := range opened {
			js.Close()
		}
	}()

	ticker := timing.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		for e := sdl.PollEvent(); e != nil; e = sdl.PollEvent() {
			evt, ok := translateSDL(e, time.Now())
			if !ok {
				continue
			}
			if !send(ctx, out, evt) {
				return ctx.Err()
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func translateSDL(e sdl.Event, now time.Time) (event.Event, bool) {
	switch e := e.(type) {
	case *sdl.JoyAxisEvent:
		return event.Event{
			Type:   event.JoystickAxis,
			Device: fmt.Sprintf("sdl%d", e.Which),
			ID:     int(e.Axis),
			Axis:   normalize(int32(e.Value), -jsAxisMax, jsAxisMax),
			Time:   now,
		}, true
	case *sdl.JoyButtonEvent:
		return event.Event{
			Type:      event.JoystickButton,
			Device:    fmt.Sprintf("sdl%d", e.Which),
			ID:        int(e.Button),
			IsPressed: e.State == sdl.PRESSED,
			Time:      now,
		}, true
	case *sdl.JoyHatEvent:
		var d event.Direction
		if e.Value&sdl.HAT_UP != 0 {
			d.Y = 1
		}
		if e.Value&sdl.HAT_DOWN != 0 {
			d.Y = -1
		}
		if e.Value&sdl.HAT_RIGHT != 0 {
			d.X = 1
		}
		if e.Value&sdl.HAT_LEFT != 0 {
			d.X = -1
		}
		return event.Event{
			Type:   event.JoystickHat,
			Device: fmt.Sprintf("sdl%d", e.Which),
			ID:     int(e.Hat),
			Hat:    d,
			Time:   now,
		}, true
	}
	return event.Event{}, false
}
