package source

import (
	"encoding/binary"
	"time"

	"github.com/valerio/go-joymap/joymap/input/event"
)

// Linux joystick API, see linux/joystick.h
const (
	jsEventSize = 8

	jsEventButton = 0x01
	jsEventAxis   = 0x02
	jsEventInit   = 0x80

	jsAxisMax = 32767

	// absHat0X is the first hat code in the axis map, hats come in X/Y pairs up to ABS_HAT3Y
	absHat0X = 0x10
	absHat3Y = 0x17
)

// jsEvent mirrors struct js_event
type jsEvent struct {
	Timestamp uint32
	Value     int16
	Type      uint8
	Index     uint8
}

func decodeJSEvent(b []byte) jsEvent {
	return jsEvent{
		Timestamp: binary.LittleEndian.Uint32(b[0:4]),
		Value:     int16(binary.LittleEndian.Uint16(b[4:6])),
		Type:      b[6],
		Index:     b[7],
	}
}

// jsTranslator turns joystick API records into events. Axes the driver
// reports as hat axes are folded into hat events.
type jsTranslator struct {
	device string
	axmap  []uint8
	hats   map[int]event.Direction
}

func newJSTranslator(device string, axmap []uint8) *jsTranslator {
	return &jsTranslator{
		device: device,
		axmap:  axmap,
		hats:   make(map[int]event.Direction),
	}
}

func (t *jsTranslator) translate(e jsEvent, now time.Time) (event.Event, bool) {
	if e.Type&jsEventInit != 0 {
		return event.Event{}, false
	}

	evt := event.Event{Device: t.device, ID: int(e.Index), Time: now}
	switch e.Type {
	case jsEventButton:
		evt.Type = event.JoystickButton
		evt.IsPressed = e.Value != 0
	case jsEventAxis:
		if int(e.Index) < len(t.axmap) {
			if code := t.axmap[e.Index]; code >= absHat0X && code <= absHat3Y {
				return t.hat(int(code-absHat0X), e.Value, evt), true
			}
		}
		evt.Type = event.JoystickAxis
		evt.Axis = normalize(int32(e.Value), -jsAxisMax, jsAxisMax)
	default:
		return event.Event{}, false
	}
	return evt, true
}

// hat updates one half of a hat, offset is the distance from ABS_HAT0X.
// The kernel's hat Y axis grows downwards.
func (t *jsTranslator) hat(offset int, value int16, evt event.Event) event.Event {
	id := offset / 2
	d := t.hats[id]
	if offset%2 == 0 {
		d.X = event.DirectionFromAxes(int(value), 0).X
	} else {
		d.Y = event.DirectionFromAxes(0, -int(value)).Y
	}
	t.hats[id] = d

	evt.Type = event.JoystickHat
	evt.ID = id
	evt.Hat = d
	return evt
}
