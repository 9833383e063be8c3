package event

import (
	"fmt"
	"strings"
	"time"
)

// InputType classifies the physical input an event came from
type InputType int

const (
	JoystickAxis InputType = iota
	JoystickButton
	JoystickHat
	Keyboard
)

var inputTypeNames = map[InputType]string{
	JoystickAxis:   "axis",
	JoystickButton: "button",
	JoystickHat:    "hat",
	Keyboard:       "key",
}

func (t InputType) String() string {
	if name, ok := inputTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("InputType(%d)", int(t))
}

// IsButtonLike reports whether inputs of this type have press/release semantics
func (t InputType) IsButtonLike() bool {
	return t == JoystickButton || t == Keyboard
}

// ParseInputType accepts the names produced by String, plus a few aliases
func ParseInputType(s string) (InputType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "axis":
		return JoystickAxis, nil
	case "button":
		return JoystickButton, nil
	case "hat":
		return JoystickHat, nil
	case "key", "keyboard":
		return Keyboard, nil
	}
	return 0, fmt.Errorf("unknown input type %q", s)
}

// Event describes a single input change as delivered by a source
type Event struct {
	Type      InputType
	Device    string // source specific device identifier, e.g. "js0"
	ID        int    // axis, button, hat index or key code
	IsPressed bool
	Axis      float64   // normalized to [-1, 1] for axis events
	Hat       Direction // hat events only
	Virtual   bool      // synthesized by a virtual button
	Time      time.Time // arrival time, stamped by the dispatcher when zero
}

// Key identifies the physical input an event belongs to
type Key struct {
	Device string
	Type   InputType
	ID     int
}

func (e Event) Key() Key {
	return Key{Device: e.Device, Type: e.Type, ID: e.ID}
}

func (k Key) String() string {
	return fmt.Sprintf("%s/%s/%d", k.Device, k.Type, k.ID)
}
