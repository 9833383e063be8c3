package dispatch

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valerio/go-joymap/joymap/action"
	"github.com/valerio/go-joymap/joymap/button"
	"github.com/valerio/go-joymap/joymap/container"
	"github.com/valerio/go-joymap/joymap/device"
	"github.com/valerio/go-joymap/joymap/input/event"
	"github.com/valerio/go-joymap/joymap/mode"
	"github.com/valerio/go-joymap/joymap/timing"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

type recorder struct {
	mu     sync.Mutex
	events []event.Event
	values []action.Sample
}

func (r *recorder) Handle(evt event.Event, value *action.Value) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, evt)
	r.values = append(r.values, value.Current)
	return nil
}

func (r *recorder) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

func newModes(t *testing.T) *mode.Manager {
	t.Helper()
	m, err := mode.NewManager(map[string]string{"Default": "", "Landing": "Default"}, "Default")
	require.NoError(t, err)
	return m
}

func buttonEvent(id int, pressed bool) event.Event {
	return event.Event{Type: event.JoystickButton, Device: "js0", ID: id, IsPressed: pressed}
}

func TestDispatch_RoutesToActiveMode(t *testing.T) {
	modes := newModes(t)
	def, landing := &recorder{}, &recorder{}

	table := NewTable()
	table.Add("Default", &Binding{Input: buttonEvent(1, true).Key(), Handlers: []Handler{def}})
	table.Add("Landing", &Binding{Input: buttonEvent(1, true).Key(), Handlers: []Handler{landing}})

	d := New(table, modes)
	require.NoError(t, d.Dispatch(buttonEvent(1, true)))
	require.NoError(t, modes.SwitchMode("Landing"))
	require.NoError(t, d.Dispatch(buttonEvent(1, false)))

	assert.Equal(t, 1, def.len())
	assert.Equal(t, 1, landing.len())
	assert.False(t, landing.events[0].IsPressed)
}

func TestDispatch_InheritsParentBindings(t *testing.T) {
	modes := newModes(t)
	rec := &recorder{}

	table := NewTable()
	table.Add("Default", &Binding{Input: buttonEvent(2, true).Key(), Handlers: []Handler{rec}})

	require.NoError(t, modes.SwitchMode("Landing"))
	d := New(table, modes)
	require.NoError(t, d.Dispatch(buttonEvent(2, true)))
	require.NoError(t, d.Dispatch(buttonEvent(3, true)))

	assert.Equal(t, 1, rec.len())
	assert.Equal(t, Stats{Processed: 2, Unbound: 1}, d.Stats())
}

func TestDispatch_Pause(t *testing.T) {
	modes := newModes(t)
	normal, always := &recorder{}, &recorder{}

	table := NewTable()
	key := buttonEvent(1, true).Key()
	table.Add("Default", &Binding{Input: key, Handlers: []Handler{normal}})
	table.Add("Default", &Binding{Input: key, Handlers: []Handler{always}, AlwaysExecute: true})

	d := New(table, modes)
	modes.Pause()
	require.NoError(t, d.Dispatch(buttonEvent(1, true)))
	modes.Resume()
	require.NoError(t, d.Dispatch(buttonEvent(1, false)))

	assert.Equal(t, 1, normal.len())
	assert.Equal(t, 2, always.len())
	assert.Equal(t, uint64(1), d.Stats().Skipped)
}

func TestDispatch_AxisVirtualButton(t *testing.T) {
	modes := newModes(t)
	rec := &recorder{}

	axis := event.Event{Type: event.JoystickAxis, Device: "js0", ID: 1}
	table := NewTable()
	table.Add("Default", &Binding{
		Input:      axis.Key(),
		Handlers:   []Handler{rec},
		AxisButton: button.NewAxisButton(0.5, 1),
	})
	d := New(table, modes)

	for _, v := range []float64{0, 0.6, 0.7, 1, 0.2, 0.1} {
		axis.Axis = v
		require.NoError(t, d.Dispatch(axis))
	}

	require.Equal(t, 2, rec.len())
	assert.True(t, rec.events[0].IsPressed)
	assert.True(t, rec.events[0].Virtual)
	assert.Equal(t, event.JoystickButton, rec.events[0].Type)
	assert.True(t, rec.values[0].Pressed)
	assert.False(t, rec.events[1].IsPressed)
}

func TestDispatch_HatVirtualButton(t *testing.T) {
	modes := newModes(t)
	rec := &recorder{}

	hat := event.Event{Type: event.JoystickHat, Device: "js0", ID: 1}
	table := NewTable()
	table.Add("Default", &Binding{
		Input:     hat.Key(),
		Handlers:  []Handler{rec},
		HatButton: button.NewHatButton(event.North, event.NorthEast, event.NorthWest),
	})
	d := New(table, modes)

	for _, dir := range []event.Direction{event.North, event.NorthEast, event.East, event.Center} {
		hat.Hat = dir
		require.NoError(t, d.Dispatch(hat))
	}

	require.Equal(t, 2, rec.len())
	assert.True(t, rec.events[0].IsPressed)
	assert.False(t, rec.events[1].IsPressed)
}

func TestDispatch_StampsClock(t *testing.T) {
	modes := newModes(t)
	clock := timing.NewManualClock(epoch)
	out := &recorder{}

	tempo, err := container.NewTempo([]action.Action{
		func(evt event.Event, v *action.Value) error { return out.Handle(evt, v) },
		func(evt event.Event, v *action.Value) error { return nil },
	}, 500*time.Millisecond, container.WithClock(clock))
	require.NoError(t, err)

	table := NewTable()
	table.Add("Default", &Binding{Input: buttonEvent(1, true).Key(), Handlers: []Handler{Events(tempo)}})
	d := New(table, modes, WithClock(clock))

	press := buttonEvent(1, true)
	press.Time = epoch.Add(time.Second)
	release := buttonEvent(1, false)
	release.Time = press.Time.Add(200 * time.Millisecond)

	require.NoError(t, d.Dispatch(press))
	require.NoError(t, d.Dispatch(release))

	assert.Equal(t, release.Time, clock.Now())
	require.Equal(t, 1, out.len(), "short action fires on the release")
	assert.False(t, out.events[0].IsPressed)
}

func TestDispatch_StampsArrivalTime(t *testing.T) {
	clock := timing.NewManualClock(epoch)
	rec := &recorder{}
	table := NewTable()
	table.Add("Default", &Binding{Input: buttonEvent(1, true).Key(), Handlers: []Handler{rec}})
	d := New(table, newModes(t), WithClock(clock))

	before := time.Now()
	require.NoError(t, d.Dispatch(buttonEvent(1, true)))

	require.Equal(t, 1, rec.len())
	stamped := rec.events[0].Time
	assert.False(t, stamped.Before(before), "events without a time get the wall clock")
	assert.Equal(t, stamped, clock.Now())

	time.Sleep(20 * time.Millisecond)
	require.NoError(t, d.Dispatch(buttonEvent(1, false)))
	assert.GreaterOrEqual(t, clock.Now().Sub(stamped), 20*time.Millisecond)
}

func TestDispatch_PressesAdapter(t *testing.T) {
	modes := newModes(t)
	var got []bool

	toggle, err := container.NewSmartToggle([]action.PressAction{
		func(pressed bool) error { got = append(got, pressed); return nil },
	}, 0, container.WithClock(timing.NewManualClock(epoch)))
	require.NoError(t, err)

	table := NewTable()
	table.Add("Default", &Binding{Input: buttonEvent(4, true).Key(), Handlers: []Handler{Presses(toggle)}})
	d := New(table, modes)

	require.NoError(t, d.Dispatch(buttonEvent(4, true)))
	require.NoError(t, d.Dispatch(buttonEvent(4, false)))

	assert.Equal(t, []bool{true}, got, "quick tap latches the toggle")
	assert.True(t, toggle.IsToggled())
}

func TestDispatch_JoinsErrors(t *testing.T) {
	modes := newModes(t)
	boom := errors.New("boom")
	ok := &recorder{}

	table := NewTable()
	key := buttonEvent(1, true).Key()
	table.Add("Default", &Binding{Input: key, Handlers: []Handler{
		HandlerFunc(func(event.Event, *action.Value) error { return boom }),
		ok,
	}})
	d := New(table, modes)

	err := d.Dispatch(buttonEvent(1, true))
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, ok.len(), "a failing handler does not starve the others")
	assert.Equal(t, uint64(1), d.Stats().Failed)
}

func TestDispatch_SharedValue(t *testing.T) {
	modes := newModes(t)
	rec := &recorder{}

	axis := event.Event{Type: event.JoystickAxis, Device: "js0", ID: 2, Axis: 0.4}
	table := NewTable()
	table.Add("Default", &Binding{Input: axis.Key(), Handlers: []Handler{
		HandlerFunc(func(_ event.Event, v *action.Value) error {
			v.Current.Axis = -v.Current.Axis
			return nil
		}),
		rec,
	}})
	d := New(table, modes)

	require.NoError(t, d.Dispatch(axis))
	assert.Equal(t, -0.4, rec.values[0].Axis)
}

func TestDispatch_AutoReleaseObserver(t *testing.T) {
	modes := newModes(t)
	out := device.NewMemory()
	release := device.NewAutoRelease(out)
	f := &action.Factory{Device: out, Controller: modes, Releaser: release}

	table := NewTable()
	key := buttonEvent(1, true).Key()
	table.Add("Default", &Binding{Input: key, Handlers: []Handler{Events(mustBasic(t, f.ButtonToButton(1, 1)))}})
	table.Add("Landing", &Binding{Input: key, Handlers: []Handler{Events(mustBasic(t, f.ButtonToButton(1, 2)))}})
	d := New(table, modes, WithObserver(release))

	require.NoError(t, d.Dispatch(buttonEvent(1, true)))
	require.NoError(t, modes.SwitchMode("Landing"))
	require.NoError(t, d.Dispatch(buttonEvent(1, false)))

	assert.Empty(t, out.Device(1).PressedButtons(), "button 1 released although Landing handled the release")
}

func TestDispatch_LoadSwapsTable(t *testing.T) {
	modes := newModes(t)
	first, second := &recorder{}, &recorder{}
	key := buttonEvent(1, true).Key()

	a := NewTable()
	a.Add("Default", &Binding{Input: key, Handlers: []Handler{first}})
	b := NewTable()
	b.Add("Default", &Binding{Input: key, Handlers: []Handler{second}})

	d := New(a, modes)
	require.NoError(t, d.Dispatch(buttonEvent(1, true)))
	d.Load(b)
	require.NoError(t, d.Dispatch(buttonEvent(1, false)))

	assert.Equal(t, 1, first.len())
	assert.Equal(t, 1, second.len())
	assert.Same(t, b, d.Table())
}

func TestRun(t *testing.T) {
	modes := newModes(t)
	rec := &recorder{}
	table := NewTable()
	table.Add("Default", &Binding{Input: buttonEvent(1, true).Key(), Handlers: []Handler{rec}})
	d := New(table, modes)

	t.Run("stops when the channel closes", func(t *testing.T) {
		events := make(chan event.Event, 2)
		events <- buttonEvent(1, true)
		events <- buttonEvent(1, false)
		close(events)

		require.NoError(t, d.Run(context.Background(), events))
		assert.Equal(t, 2, rec.len())
	})

	t.Run("stops when the context is cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := d.Run(ctx, make(chan event.Event))
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestTable(t *testing.T) {
	table := NewTable()
	k1 := event.Key{Device: "js0", Type: event.JoystickButton, ID: 1}
	k2 := event.Key{Device: "js0", Type: event.JoystickAxis, ID: 1}
	table.Add("A", &Binding{Input: k1})
	table.Add("A", &Binding{Input: k1})
	table.Add("B", &Binding{Input: k2})

	assert.Equal(t, 3, table.Len())
	assert.Equal(t, []string{"A", "B"}, table.Modes())
	assert.Len(t, table.Lookup([]string{"B", "A"}, k1), 2)
	assert.Nil(t, table.Lookup([]string{"B"}, k1))
	assert.Len(t, table.Bindings("A"), 2)
}

func mustBasic(t *testing.T, a action.Action) *container.Basic {
	t.Helper()
	c, err := container.NewBasic([]action.Action{a})
	require.NoError(t, err)
	return c
}
