package container

import (
	"time"

	"github.com/valerio/go-joymap/joymap/action"
	"github.com/valerio/go-joymap/joymap/input/event"
)

// Chain runs its actions one after the other, moving on when a button is released.
//
// With a timeout the chain starts over from the first action once more than
// timeout has passed since the last reset. The reset instant, not the last
// step, opens the window.
type Chain struct {
	Base[action.Action]
	timeout       time.Duration
	index         int
	lastExecution time.Time
}

// NewChain builds a chain, a zero timeout never resets
func NewChain(actions []action.Action, timeout time.Duration, opts ...Option) (*Chain, error) {
	if len(actions) == 0 {
		return nil, requireCount("chain", 0, 1)
	}
	return &Chain{
		Base:    newBase(actions, opts),
		timeout: timeout,
	}, nil
}

// Index is the position of the action the next call runs
func (c *Chain) Index() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.index
}

func (c *Chain) Call(evt event.Event, value *action.Value) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.timeout > 0 {
		now := c.currentTime()
		if now.After(c.lastExecution.Add(c.timeout)) {
			c.index = 0
			c.lastExecution = now
		}
	}

	if err := c.actions[c.index](evt, value); err != nil {
		return err
	}
	if isButtonEvent(evt) && !evt.IsPressed {
		c.index = (c.index + 1) % len(c.actions)
	}
	return nil
}
