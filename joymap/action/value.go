package action

import "github.com/valerio/go-joymap/joymap/input/event"

// Sample is one reading of an input: a button state, an axis position or a hat direction
type Sample struct {
	Pressed bool
	Axis    float64
	Hat     event.Direction
}

// SampleOf extracts the reading carried by an event
func SampleOf(evt event.Event) Sample {
	return Sample{
		Pressed: evt.IsPressed,
		Axis:    evt.Axis,
		Hat:     evt.Hat,
	}
}

// Value travels through an action set. Raw is fixed at construction,
// Current is the working copy that transforms such as response curves rewrite.
type Value struct {
	raw     Sample
	Current Sample
}

func NewValue(raw Sample) *Value {
	return &Value{raw: raw, Current: raw}
}

func NewButtonValue(pressed bool) *Value {
	return NewValue(Sample{Pressed: pressed})
}

func NewAxisValue(axis float64) *Value {
	return NewValue(Sample{Axis: axis})
}

func NewHatValue(d event.Direction) *Value {
	return NewValue(Sample{Hat: d})
}

// Raw returns the sample the value was created with
func (v *Value) Raw() Sample {
	return v.raw
}
