//go:build linux

package device

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	evdev "github.com/holoplot/go-evdev"
	"github.com/valerio/go-joymap/joymap/input/event"
)

const (
	uinputAxisScale = 32767
	maxButtons      = 56 // 16 classic joystick buttons + 40 trigger happy
)

// axis ids are 1 based, in the order virtual joystick drivers expose them
var uinputAxes = []evdev.EvCode{
	evdev.ABS_X, evdev.ABS_Y, evdev.ABS_Z,
	evdev.ABS_RX, evdev.ABS_RY, evdev.ABS_RZ,
	evdev.ABS_THROTTLE, evdev.ABS_RUDDER,
}

const uinputHats = 4

// Uinput exposes every virtual joystick id as its own uinput device.
// Devices are created on first write, which needs write access to /dev/uinput.
type Uinput struct {
	mu      sync.Mutex
	name    string
	devices map[int]*evdev.InputDevice
}

func NewUinput(name string) (*Uinput, error) {
	if name == "" {
		name = "joymap"
	}
	return &Uinput{
		name:    name,
		devices: make(map[int]*evdev.InputDevice),
	}, nil
}

func uinputCapabilities() map[evdev.EvType][]evdev.EvCode {
	var keys []evdev.EvCode
	for i := 1; i <= maxButtons; i++ {
		code, _ := buttonCode(i)
		keys = append(keys, code)
	}

	abs := append([]evdev.EvCode(nil), uinputAxes...)
	for h := 0; h < uinputHats; h++ {
		abs = append(abs,
			evdev.EvCode(evdev.ABS_HAT0X)+evdev.EvCode(2*h),
			evdev.EvCode(evdev.ABS_HAT0Y)+evdev.EvCode(2*h),
		)
	}

	return map[evdev.EvType][]evdev.EvCode{
		evdev.EV_KEY: keys,
		evdev.EV_ABS: abs,
	}
}

func buttonCode(button int) (evdev.EvCode, error) {
	switch {
	case button >= 1 && button <= 16:
		return evdev.EvCode(evdev.BTN_TRIGGER) + evdev.EvCode(button-1), nil
	case button > 16 && button <= maxButtons:
		return evdev.EvCode(evdev.BTN_TRIGGER_HAPPY1) + evdev.EvCode(button-17), nil
	}
	return 0, fmt.Errorf("button %d out of range [1, %d]", button, maxButtons)
}

func (u *Uinput) device(id int) (*evdev.InputDevice, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	if dev, ok := u.devices[id]; ok {
		return dev, nil
	}

	dev, err := evdev.CreateDevice(fmt.Sprintf("%s virtual joystick %d", u.name, id), evdev.InputID{
		BusType: 0x06, // BUS_VIRTUAL
		Vendor:  0x1209,
		Product: 0x4a4d,
		Version: uint16(id),
	}, uinputCapabilities())
	if err != nil {
		return nil, fmt.Errorf("failed to create uinput device %d: %w", id, err)
	}

	slog.Info("Created uinput device", "id", id)
	u.devices[id] = dev
	return dev, nil
}

func (u *Uinput) write(id int, events ...evdev.InputEvent) error {
	dev, err := u.device(id)
	if err != nil {
		return err
	}

	for i := range events {
		if err := dev.WriteOne(&events[i]); err != nil {
			return err
		}
	}
	return dev.WriteOne(&evdev.InputEvent{Type: evdev.EV_SYN, Code: evdev.SYN_REPORT})
}

func (u *Uinput) SetAxis(device, axis int, value float64) error {
	if axis < 1 || axis > len(uinputAxes) {
		return fmt.Errorf("axis %d out of range [1, %d]", axis, len(uinputAxes))
	}
	return u.write(device, evdev.InputEvent{
		Type:  evdev.EV_ABS,
		Code:  uinputAxes[axis-1],
		Value: int32(value * uinputAxisScale),
	})
}

func (u *Uinput) SetButton(device, button int, pressed bool) error {
	code, err := buttonCode(button)
	if err != nil {
		return err
	}
	var v int32
	if pressed {
		v = 1
	}
	return u.write(device, evdev.InputEvent{Type: evdev.EV_KEY, Code: code, Value: v})
}

func (u *Uinput) SetHat(device, hat int, direction event.Direction) error {
	if hat < 1 || hat > uinputHats {
		return fmt.Errorf("hat %d out of range [1, %d]", hat, uinputHats)
	}
	offset := evdev.EvCode(2 * (hat - 1))
	// evdev hats grow downwards
	return u.write(device,
		evdev.InputEvent{Type: evdev.EV_ABS, Code: evdev.EvCode(evdev.ABS_HAT0X) + offset, Value: int32(direction.X)},
		evdev.InputEvent{Type: evdev.EV_ABS, Code: evdev.EvCode(evdev.ABS_HAT0Y) + offset, Value: int32(-direction.Y)},
	)
}

// Close destroys the uinput devices
func (u *Uinput) Close() error {
	u.mu.Lock()
	defer u.mu.Unlock()

	var errs []error
	for id, dev := range u.devices {
		errs = append(errs, dev.Close())
		delete(u.devices, id)
	}
	return errors.Join(errs...)
}
