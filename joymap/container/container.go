// Package container holds the policies that decide when, and with which of
// their wrapped actions, an input event is handled.
package container

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/valerio/go-joymap/joymap/action"
	"github.com/valerio/go-joymap/joymap/input/event"
	"github.com/valerio/go-joymap/joymap/timing"
)

var (
	// ErrNotImplemented is returned when the bare base container is invoked,
	// which only happens when a container was wired incorrectly.
	ErrNotImplemented = errors.New("container: missing call implementation")

	// ErrActionCount is returned when a container is built with the wrong number of actions
	ErrActionCount = errors.New("container: wrong number of actions")
)

// Container is implemented by the containers that receive the full event
type Container interface {
	Call(evt event.Event, value *action.Value) error
}

// PressContainer is implemented by the containers that only see the press state
type PressContainer interface {
	Call(pressed bool) error
}

// Option configures a container
type Option func(*options)

type options struct {
	clock timing.Clock
}

// WithClock replaces the wall clock used for timing decisions
func WithClock(c timing.Clock) Option {
	return func(o *options) {
		o.clock = c
	}
}

// Base is shared by every container: the ordered actions, the clock and the
// lock serialising calls on one instance.
type Base[A any] struct {
	mu      sync.Mutex
	actions []A
	clock   timing.Clock
}

func newBase[A any](actions []A, opts []Option) Base[A] {
	o := options{clock: timing.SystemClock{}}
	for _, opt := range opts {
		opt(&o)
	}
	return Base[A]{
		actions: append([]A(nil), actions...),
		clock:   o.clock,
	}
}

// Actions returns a copy of the wrapped actions in order
func (b *Base[A]) Actions() []A {
	return append([]A(nil), b.actions...)
}

// Call must be provided by the concrete container
func (b *Base[A]) Call(evt event.Event, value *action.Value) error {
	return ErrNotImplemented
}

func (b *Base[A]) currentTime() time.Time {
	return b.clock.Now()
}

func isButtonEvent(evt event.Event) bool {
	return evt.Type.IsButtonLike()
}

func requireCount(kind string, got, want int) error {
	if got != want {
		return fmt.Errorf("%w: %s needs %d, got %d", ErrActionCount, kind, want, got)
	}
	return nil
}

var (
	_ Container      = (*Basic)(nil)
	_ Container      = (*Tempo)(nil)
	_ Container      = (*Chain)(nil)
	_ PressContainer = (*SmartToggle)(nil)
	_ PressContainer = (*DoubleTap)(nil)
)
