package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/valerio/go-joymap/joymap/action"
	"github.com/valerio/go-joymap/joymap/input/event"
	"github.com/valerio/go-joymap/joymap/timing"
)

// Modes reports the active mode lineage and pause state
type Modes interface {
	Lineage() []string
	IsPaused() bool
}

// Observer sees every event after its bindings ran
type Observer interface {
	Observe(evt event.Event) error
}

type Stats struct {
	Processed uint64
	Unbound   uint64
	Skipped   uint64
	Failed    uint64
}

type Option func(*Dispatcher)

// WithClock stamps clock with the arrival time of every event before routing it,
// so that timing containers sharing clock see the event time as "now"
func WithClock(clock *timing.ManualClock) Option {
	return func(d *Dispatcher) {
		d.clock = clock
	}
}

func WithObserver(o Observer) Option {
	return func(d *Dispatcher) {
		d.observers = append(d.observers, o)
	}
}

// Dispatcher feeds events, one at a time, to the bindings of the active mode
type Dispatcher struct {
	mu        sync.Mutex
	table     atomic.Pointer[Table]
	modes     Modes
	clock     *timing.ManualClock
	observers []Observer

	processed atomic.Uint64
	unbound   atomic.Uint64
	skipped   atomic.Uint64
	failed    atomic.Uint64
}

func New(table *Table, modes Modes, opts ...Option) *Dispatcher {
	d := &Dispatcher{modes: modes}
	for _, opt := range opts {
		opt(d)
	}
	if table == nil {
		table = NewTable()
	}
	d.table.Store(table)
	return d
}

// Load replaces the binding table. Events already being dispatched finish on the old one.
func (d *Dispatcher) Load(table *Table) {
	if table == nil {
		table = NewTable()
	}
	d.table.Store(table)
	slog.Info("Loaded binding table", "bindings", table.Len())
}

func (d *Dispatcher) Table() *Table {
	return d.table.Load()
}

// Dispatch routes evt to its bindings and returns the joined handler errors
func (d *Dispatcher) Dispatch(evt event.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	// events without a timestamp arrive now
	if evt.Time.IsZero() {
		evt.Time = time.Now()
	}
	if d.clock != nil {
		d.clock.Set(evt.Time)
	}
	d.processed.Add(1)

	var errs []error
	bindings := d.table.Load().Lookup(d.modes.Lineage(), evt.Key())
	if len(bindings) == 0 {
		d.unbound.Add(1)
	}

	paused := d.modes.IsPaused()
	value := action.NewValue(action.SampleOf(evt))
	for _, b := range bindings {
		if paused && !b.AlwaysExecute {
			d.skipped.Add(1)
			continue
		}
		if err := b.handle(evt, value); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", b.Input, err))
		}
	}

	for _, o := range d.observers {
		if err := o.Observe(evt); err != nil {
			errs = append(errs, err)
		}
	}

	err := errors.Join(errs...)
	if err != nil {
		d.failed.Add(1)
	}
	return err
}

// Run dispatches events until ctx is done or events is closed.
// Handler failures are logged and do not stop the loop.
func (d *Dispatcher) Run(ctx context.Context, events <-chan event.Event) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case evt, ok := <-events:
			if !ok {
				return nil
			}
			if err := d.Dispatch(evt); err != nil {
				slog.Warn("Failed to handle event", "input", evt.Key().String(), "error", err)
			}
		}
	}
}

func (d *Dispatcher) Stats() Stats {
	return Stats{
		Processed: d.processed.Load(),
		Unbound:   d.unbound.Load(),
		Skipped:   d.skipped.Load(),
		Failed:    d.failed.Load(),
	}
}
