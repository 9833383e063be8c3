package container

import (
	"log/slog"
	"time"

	"github.com/valerio/go-joymap/joymap/action"
	"github.com/valerio/go-joymap/joymap/input/event"
)

// Tempo picks between a short and a long press action when the button is released.
// Non-button inputs are not handled and are ignored.
type Tempo struct {
	Base[action.Action]
	duration  time.Duration
	startTime time.Time
}

// NewTempo expects the short press action first and the long press action second
func NewTempo(actions []action.Action, duration time.Duration, opts ...Option) (*Tempo, error) {
	if err := requireCount("tempo", len(actions), 2); err != nil {
		return nil, err
	}
	return &Tempo{
		Base:     newBase(actions, opts),
		duration: duration,
	}, nil
}

func (t *Tempo) Duration() time.Duration {
	return t.duration
}

func (t *Tempo) Call(evt event.Event, value *action.Value) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !isButtonEvent(evt) {
		slog.Debug("Tempo container ignores non-button input", "input", evt.Key())
		return nil
	}

	now := t.currentTime()
	if value.Current.Pressed {
		t.startTime = now
		return nil
	}

	if !now.After(t.startTime.Add(t.duration)) {
		return t.actions[0](evt, value)
	}
	return t.actions[1](evt, value)
}
