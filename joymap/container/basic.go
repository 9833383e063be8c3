package container

import (
	"github.com/valerio/go-joymap/joymap/action"
	"github.com/valerio/go-joymap/joymap/input/event"
)

// Basic forwards every call to its single action
type Basic struct {
	Base[action.Action]
}

func NewBasic(actions []action.Action, opts ...Option) (*Basic, error) {
	if err := requireCount("basic", len(actions), 1); err != nil {
		return nil, err
	}
	return &Basic{Base: newBase(actions, opts)}, nil
}

func (b *Basic) Call(evt event.Event, value *action.Value) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.actions[0](evt, value)
}
