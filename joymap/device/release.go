package device

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/valerio/go-joymap/joymap/action"
	"github.com/valerio/go-joymap/joymap/input/event"
)

// AutoRelease remembers which physical input pressed which output button.
// When that input is released the output button is released as well, even if
// the release itself was routed to a different binding after a mode switch.
type AutoRelease struct {
	mu      sync.Mutex
	device  action.Device
	pending map[event.Key]map[action.ButtonTarget]struct{}
}

func NewAutoRelease(device action.Device) *AutoRelease {
	return &AutoRelease{
		device:  device,
		pending: make(map[event.Key]map[action.ButtonTarget]struct{}),
	}
}

func (r *AutoRelease) Register(target action.ButtonTarget, source event.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := source.Key()
	if r.pending[key] == nil {
		r.pending[key] = make(map[action.ButtonTarget]struct{})
	}
	r.pending[key][target] = struct{}{}
}

// Observe releases the outputs registered for evt's input when evt is a release
func (r *AutoRelease) Observe(evt event.Event) error {
	if !evt.Type.IsButtonLike() || evt.IsPressed {
		return nil
	}

	r.mu.Lock()
	targets := r.pending[evt.Key()]
	delete(r.pending, evt.Key())
	r.mu.Unlock()

	return r.release(targets)
}

// ReleaseAll releases every registered output
func (r *AutoRelease) ReleaseAll() error {
	r.mu.Lock()
	all := make(map[action.ButtonTarget]struct{})
	for _, targets := range r.pending {
		for t := range targets {
			all[t] = struct{}{}
		}
	}
	r.pending = make(map[event.Key]map[action.ButtonTarget]struct{})
	r.mu.Unlock()

	if len(all) > 0 {
		slog.Debug("Releasing held output buttons", "count", len(all))
	}
	return r.release(all)
}

// Pending counts the inputs with outstanding registrations
func (r *AutoRelease) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pending)
}

func (r *AutoRelease) release(targets map[action.ButtonTarget]struct{}) error {
	var errs []error
	for t := range targets {
		errs = append(errs, r.device.SetButton(t.Device, t.Button, false))
	}
	return errors.Join(errs...)
}
