package container

import (
	"time"

	"github.com/valerio/go-joymap/joymap/action"
)

// DefaultDoubleTapTimeout is the window in which a second press counts as a double tap
const DefaultDoubleTapTimeout = 500 * time.Millisecond

// DoubleTap only runs its action for the second of two presses inside the timeout
type DoubleTap struct {
	Base[action.PressAction]
	timeout   time.Duration
	initTime  time.Time
	triggered bool
}

// NewDoubleTap builds the container, a zero timeout selects DefaultDoubleTapTimeout
func NewDoubleTap(actions []action.PressAction, timeout time.Duration, opts ...Option) (*DoubleTap, error) {
	if err := requireCount("double tap", len(actions), 1); err != nil {
		return nil, err
	}
	if timeout <= 0 {
		timeout = DefaultDoubleTapTimeout
	}
	return &DoubleTap{
		Base:    newBase(actions, opts),
		timeout: timeout,
	}, nil
}

func (d *DoubleTap) Call(pressed bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if pressed {
		now := d.currentTime()
		if now.After(d.initTime.Add(d.timeout)) {
			d.initTime = now
			return nil
		}
		if err := d.actions[0](pressed); err != nil {
			return err
		}
		d.triggered = true
		return nil
	}

	if d.triggered {
		d.triggered = false
		return d.actions[0](pressed)
	}
	return nil
}
