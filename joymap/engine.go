// Package joymap wires profiles, input sources and virtual output devices
// into a running remapper.
package joymap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/valerio/go-joymap/joymap/action"
	"github.com/valerio/go-joymap/joymap/device"
	"github.com/valerio/go-joymap/joymap/dispatch"
	"github.com/valerio/go-joymap/joymap/input/event"
	"github.com/valerio/go-joymap/joymap/mode"
	"github.com/valerio/go-joymap/joymap/profile"
	"github.com/valerio/go-joymap/joymap/source"
	"github.com/valerio/go-joymap/joymap/timing"
)

// Engine routes events from the input sources through the active profile to
// the output device
type Engine struct {
	mu         sync.Mutex
	output     action.Device
	release    *device.AutoRelease
	taps       *action.Timers
	clock      *timing.ManualClock
	modes      *modes
	dispatcher *dispatch.Dispatcher
	reloads    atomic.Uint64
	changes    atomic.Uint64
}

type Stats struct {
	dispatch.Stats
	Mode    string
	Paused  bool
	Reloads uint64
	// ModeChanges counts mode switches and pause toggles across reloads
	ModeChanges uint64
}

// New builds an engine running p and writing to output
func New(p *profile.Profile, output action.Device) (*Engine, error) {
	e := &Engine{
		output:  output,
		release: device.NewAutoRelease(output),
		taps:    action.NewTimers(),
		clock:   timing.NewManualClock(time.Now()),
		modes:   &modes{},
	}

	table, manager, err := e.build(p)
	if err != nil {
		return nil, err
	}
	e.track(manager)
	e.dispatcher = dispatch.New(table, e.modes,
		dispatch.WithClock(e.clock),
		dispatch.WithObserver(e.release),
	)
	return e, nil
}

func (e *Engine) build(p *profile.Profile) (*dispatch.Table, *mode.Manager, error) {
	return profile.Build(p, profile.Deps{
		Device:     e.output,
		Releaser:   e.release,
		Controller: e.modes,
		Clock:      e.clock,
		Timers:     e.taps,
	})
}

// track makes manager the live one and counts its mode changes
func (e *Engine) track(manager *mode.Manager) {
	manager.OnChange(func(previous, current string, paused bool) {
		e.changes.Add(1)
	})
	e.modes.current.Store(manager)
}

// Run feeds the merged sources to the dispatcher until ctx is done, all
// sources finish or one of them fails. Pending taps and held output buttons
// are released on the way out.
func (e *Engine) Run(ctx context.Context, sources ...source.Source) error {
	events, errc := source.Merge(ctx, sources...)
	err := e.dispatcher.Run(ctx, events)
	srcErr := <-errc

	e.taps.Flush()
	if rerr := e.release.ReleaseAll(); rerr != nil {
		slog.Warn("Failed to release output buttons", "error", rerr)
	}
	slog.Info("Engine stopped", "processed", e.Stats().Processed)

	if srcErr != nil {
		return srcErr
	}
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// Dispatch handles a single event outside of Run
func (e *Engine) Dispatch(evt event.Event) error {
	return e.dispatcher.Dispatch(evt)
}

// Reload switches to a new profile. The current mode is kept when the new
// profile still has it, and every output button held by the old bindings is released.
func (e *Engine) Reload(p *profile.Profile) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	table, manager, err := e.build(p)
	if err != nil {
		return fmt.Errorf("reload profile: %w", err)
	}

	old := e.modes.manager()
	if _, ok := manager.Modes()[old.Current()]; ok {
		if err := manager.SwitchMode(old.Current()); err != nil {
			return err
		}
	}
	if old.IsPaused() {
		manager.Pause()
	}

	e.track(manager)
	e.dispatcher.Load(table)
	e.reloads.Add(1)

	e.taps.Flush()
	if err := e.release.ReleaseAll(); err != nil {
		slog.Warn("Failed to release output buttons", "error", err)
	}
	slog.Info("Profile reloaded", "mode", manager.Current())
	return nil
}

// ModeStatus reports the active mode and pause state
type ModeStatus interface {
	Current() string
	IsPaused() bool
}

func (e *Engine) Modes() ModeStatus {
	return e.modes
}

func (e *Engine) Stats() Stats {
	m := e.modes.manager()
	return Stats{
		Stats:       e.dispatcher.Stats(),
		Mode:        m.Current(),
		Paused:      m.IsPaused(),
		Reloads:     e.reloads.Load(),
		ModeChanges: e.changes.Load(),
	}
}

// modes forwards to the mode manager of the current profile, so that actions
// built for one profile keep working after a reload
type modes struct {
	current atomic.Pointer[mode.Manager]
}

func (m *modes) manager() *mode.Manager       { return m.current.Load() }
func (m *modes) Lineage() []string            { return m.manager().Lineage() }
func (m *modes) Current() string              { return m.manager().Current() }
func (m *modes) IsPaused() bool               { return m.manager().IsPaused() }
func (m *modes) SwitchMode(name string) error { return m.manager().SwitchMode(name) }
func (m *modes) PreviousMode() error          { return m.manager().PreviousMode() }
func (m *modes) CycleModes(names []string) error {
	return m.manager().CycleModes(names)
}
func (m *modes) Pause()             { m.manager().Pause() }
func (m *modes) Resume()            { m.manager().Resume() }
func (m *modes) TogglePauseResume() { m.manager().TogglePauseResume() }

var (
	_ action.Controller = (*modes)(nil)
	_ dispatch.Modes    = (*modes)(nil)
)
