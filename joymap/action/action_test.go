package action

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valerio/go-joymap/joymap/input/event"
)

type write struct {
	kind   string
	device int
	id     int
	value  interface{}
}

type fakeDevice struct {
	mu     sync.Mutex
	writes []write
	err    error
}

func (d *fakeDevice) record(w write) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.writes = append(d.writes, w)
	return d.err
}

func (d *fakeDevice) SetAxis(device, axis int, value float64) error {
	return d.record(write{"axis", device, axis, value})
}

func (d *fakeDevice) SetButton(device, button int, pressed bool) error {
	return d.record(write{"button", device, button, pressed})
}

func (d *fakeDevice) SetHat(device, hat int, direction event.Direction) error {
	return d.record(write{"hat", device, hat, direction})
}

func (d *fakeDevice) snapshot() []write {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]write(nil), d.writes...)
}

type fakeController struct {
	calls []string
	err   error
}

func (c *fakeController) SwitchMode(name string) error {
	c.calls = append(c.calls, "switch:"+name)
	return c.err
}
func (c *fakeController) PreviousMode() error {
	c.calls = append(c.calls, "previous")
	return c.err
}
func (c *fakeController) CycleModes(names []string) error {
	c.calls = append(c.calls, "cycle")
	return c.err
}
func (c *fakeController) Pause()             { c.calls = append(c.calls, "pause") }
func (c *fakeController) Resume()            { c.calls = append(c.calls, "resume") }
func (c *fakeController) TogglePauseResume() { c.calls = append(c.calls, "toggle") }

type fakeReleaser struct {
	targets []ButtonTarget
}

func (r *fakeReleaser) Register(target ButtonTarget, source event.Event) {
	r.targets = append(r.targets, target)
}

func TestValue_RawIsFixed(t *testing.T) {
	v := NewAxisValue(0.5)
	v.Current.Axis = 0.25
	v.Current.Axis = -1

	assert.Equal(t, 0.5, v.Raw().Axis)
	assert.Equal(t, -1.0, v.Current.Axis)
}

func TestSampleOf(t *testing.T) {
	evt := event.Event{Type: event.JoystickHat, Hat: event.West, IsPressed: true, Axis: 0.1}
	assert.Equal(t, Sample{Pressed: true, Axis: 0.1, Hat: event.West}, SampleOf(evt))
}

func TestFactory_Remaps(t *testing.T) {
	dev := &fakeDevice{}
	rel := &fakeReleaser{}
	f := &Factory{Device: dev, Releaser: rel}

	press := event.Event{Type: event.JoystickButton, IsPressed: true}
	require.NoError(t, f.ButtonToButton(1, 4)(press, NewButtonValue(true)))
	require.NoError(t, f.ButtonToButton(1, 4)(event.Event{Type: event.JoystickButton}, NewButtonValue(false)))
	virtual := event.Event{Type: event.JoystickButton, IsPressed: true, Virtual: true}
	require.NoError(t, f.ButtonToButton(1, 5)(virtual, NewButtonValue(true)))
	require.NoError(t, f.AxisToAxis(2, 0)(event.Event{Type: event.JoystickAxis}, NewAxisValue(-0.5)))
	require.NoError(t, f.HatToHat(1, 0)(event.Event{Type: event.JoystickHat}, NewHatValue(event.South)))

	assert.Equal(t, []write{
		{"button", 1, 4, true},
		{"button", 1, 4, false},
		{"button", 1, 5, true},
		{"axis", 2, 0, -0.5},
		{"hat", 1, 0, event.South},
	}, dev.snapshot())
	assert.Equal(t, []ButtonTarget{{Device: 1, Button: 4}}, rel.targets, "only physical presses are registered")
}

func TestFactory_RemapInput(t *testing.T) {
	f := &Factory{Device: &fakeDevice{}}

	tests := []struct {
		name    string
		from    event.InputType
		to      event.InputType
		wantErr bool
	}{
		{"axis to axis", event.JoystickAxis, event.JoystickAxis, false},
		{"button to button", event.JoystickButton, event.JoystickButton, false},
		{"key to button", event.Keyboard, event.JoystickButton, false},
		{"hat to hat", event.JoystickHat, event.JoystickHat, false},
		{"axis to button", event.JoystickAxis, event.JoystickButton, true},
		{"hat to axis", event.JoystickHat, event.JoystickAxis, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := f.RemapInput(tt.from, tt.to, 1, 1)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnsupportedRemap)
				assert.Nil(t, a)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, a)
			}
		})
	}
}

func TestFactory_ResponseCurveFeedsRemap(t *testing.T) {
	dev := &fakeDevice{}
	f := &Factory{Device: dev}

	double := func(v float64) float64 { return v * 2 }
	clampLow := func(v float64) float64 {
		if v < 0.1 {
			return 0
		}
		return v
	}

	set := Sequence(f.ResponseCurve(double, clampLow), f.AxisToAxis(1, 2))
	value := NewAxisValue(0.25)
	require.NoError(t, set(event.Event{Type: event.JoystickAxis}, value))

	assert.Equal(t, 0.25, value.Raw().Axis)
	assert.Equal(t, 0.5, value.Current.Axis)
	assert.Equal(t, []write{{"axis", 1, 2, 0.5}}, dev.snapshot())

	value = NewAxisValue(0.05)
	require.NoError(t, set(event.Event{Type: event.JoystickAxis}, value))
	assert.Equal(t, 0.0, value.Current.Axis)
}

func TestFactory_Control(t *testing.T) {
	ctrl := &fakeController{}
	f := &Factory{Controller: ctrl}
	evt := event.Event{Type: event.JoystickButton, IsPressed: true}
	v := NewButtonValue(true)

	for _, a := range []Action{
		f.SwitchMode("combat"),
		f.PreviousMode(),
		f.CycleModes([]string{"a", "b"}),
		f.Pause(),
		f.Resume(),
		f.TogglePauseResume(),
	} {
		require.NoError(t, a(evt, v))
	}

	assert.Equal(t, []string{"switch:combat", "previous", "cycle", "pause", "resume", "toggle"}, ctrl.calls)
}

func TestSequence_StopsOnError(t *testing.T) {
	boom := errors.New("boom")
	var ran []int

	seq := Sequence(
		func(event.Event, *Value) error { ran = append(ran, 1); return nil },
		func(event.Event, *Value) error { ran = append(ran, 2); return boom },
		func(event.Event, *Value) error { ran = append(ran, 3); return nil },
	)

	assert.ErrorIs(t, seq(event.Event{}, NewButtonValue(true)), boom)
	assert.Equal(t, []int{1, 2}, ran)
}

func TestRunOnPressAndRelease(t *testing.T) {
	var got []bool
	record := func(p bool) error { got = append(got, p); return nil }

	onPress := RunOnPress(record)
	onRelease := RunOnRelease(record)

	require.NoError(t, onPress(true))
	require.NoError(t, onPress(false))
	require.NoError(t, onRelease(true))
	require.NoError(t, onRelease(false))

	assert.Equal(t, []bool{true, false}, got)
}

func TestFactory_PressActions(t *testing.T) {
	dev := &fakeDevice{}
	f := &Factory{Device: dev}

	set := PressSequence(f.MapButton(1, 1), f.PressButton(1, 2), f.ReleaseButton(1, 3))
	require.NoError(t, set(false))

	assert.Equal(t, []write{
		{"button", 1, 1, false},
		{"button", 1, 2, true},
		{"button", 1, 3, false},
	}, dev.snapshot())
}

func TestFactory_TapButton(t *testing.T) {
	dev := &fakeDevice{}
	f := &Factory{Device: dev}

	tap := f.TapButton(1, 7, 10*time.Millisecond)
	require.NoError(t, tap(false))
	assert.Empty(t, dev.snapshot(), "release edge does nothing")

	require.NoError(t, tap(true))
	assert.Equal(t, []write{{"button", 1, 7, true}}, dev.snapshot())

	assert.Eventually(t, func() bool {
		return len(dev.snapshot()) == 2
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, write{"button", 1, 7, false}, dev.snapshot()[1])
}

func TestFactory_TapButtonFlushed(t *testing.T) {
	dev := &fakeDevice{}
	timers := NewTimers()
	f := &Factory{Device: dev, Timers: timers}

	tap := f.TapButton(1, 7, time.Hour)
	require.NoError(t, tap(true))
	assert.Equal(t, 1, timers.Len())

	timers.Flush()
	assert.Equal(t, []write{{"button", 1, 7, true}, {"button", 1, 7, false}}, dev.snapshot())
	assert.Zero(t, timers.Len())

	timers.Flush()
	assert.Len(t, dev.snapshot(), 2, "a flushed release does not run again")
}

func TestTimers(t *testing.T) {
	t.Run("fires once after the delay", func(t *testing.T) {
		timers := NewTimers()
		var mu sync.Mutex
		calls := 0
		timers.AfterFunc(5*time.Millisecond, func() {
			mu.Lock()
			calls++
			mu.Unlock()
		})

		count := func() int {
			mu.Lock()
			defer mu.Unlock()
			return calls
		}

		assert.Eventually(t, func() bool { return count() == 1 }, time.Second, time.Millisecond)
		timers.Flush()
		assert.Equal(t, 1, count())
		assert.Zero(t, timers.Len())
	})

	t.Run("flush runs pending work early", func(t *testing.T) {
		timers := NewTimers()
		var order []int
		timers.AfterFunc(time.Hour, func() { order = append(order, 1) })
		timers.AfterFunc(time.Hour, func() { order = append(order, 2) })

		timers.Flush()
		assert.ElementsMatch(t, []int{1, 2}, order)
		assert.Zero(t, timers.Len())
	})
}

func TestOnPress(t *testing.T) {
	ctrl := &fakeController{}
	f := &Factory{Controller: ctrl}

	press := OnPress(f.SwitchMode("combat"))
	require.NoError(t, press(true))
	require.NoError(t, press(false))

	assert.Equal(t, []string{"switch:combat"}, ctrl.calls)
}
