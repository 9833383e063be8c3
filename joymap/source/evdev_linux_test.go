//go:build linux

package source

import (
	"testing"

	evdev "github.com/holoplot/go-evdev"
	"github.com/stretchr/testify/assert"

	"github.com/valerio/go-joymap/joymap/input/event"
)

func TestEvdevTranslator(t *testing.T) {
	tr := newEvdevTranslator("event5", map[evdev.EvCode]evdev.AbsInfo{
		evdev.ABS_THROTTLE: {Minimum: 0, Maximum: 255},
	})

	tests := []struct {
		name string
		in   evdev.InputEvent
		want event.Event
		ok   bool
	}{
		{
			name: "keyboard key",
			in:   evdev.InputEvent{Type: evdev.EV_KEY, Code: evdev.KEY_A, Value: 1},
			want: event.Event{Type: event.Keyboard, Device: "event5", ID: int(evdev.KEY_A), IsPressed: true, Time: epoch},
			ok:   true,
		},
		{
			name: "joystick button",
			in:   evdev.InputEvent{Type: evdev.EV_KEY, Code: evdev.BTN_TRIGGER, Value: 0},
			want: event.Event{Type: event.JoystickButton, Device: "event5", ID: int(evdev.BTN_TRIGGER), Time: epoch},
			ok:   true,
		},
		{
			name: "autorepeat",
			in:   evdev.InputEvent{Type: evdev.EV_KEY, Code: evdev.KEY_A, Value: 2},
		},
		{
			name: "throttle uses its range",
			in:   evdev.InputEvent{Type: evdev.EV_ABS, Code: evdev.ABS_THROTTLE, Value: 255},
			want: event.Event{Type: event.JoystickAxis, Device: "event5", ID: int(evdev.ABS_THROTTLE), Axis: 1, Time: epoch},
			ok:   true,
		},
		{
			name: "hat x",
			in:   evdev.InputEvent{Type: evdev.EV_ABS, Code: evdev.ABS_HAT0X, Value: -1},
			want: event.Event{Type: event.JoystickHat, Device: "event5", ID: 0, Hat: event.West, Time: epoch},
			ok:   true,
		},
		{
			name: "hat y keeps x",
			in:   evdev.InputEvent{Type: evdev.EV_ABS, Code: evdev.ABS_HAT0Y, Value: 1},
			want: event.Event{Type: event.JoystickHat, Device: "event5", ID: 0, Hat: event.SouthWest, Time: epoch},
			ok:   true,
		},
		{
			name: "sync",
			in:   evdev.InputEvent{Type: evdev.EV_SYN, Code: evdev.SYN_REPORT},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := tt.in
			got, ok := tr.translate(&in, epoch)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}
