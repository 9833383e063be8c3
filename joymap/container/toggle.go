package container

import (
	"time"

	"github.com/valerio/go-joymap/joymap/action"
)

// DefaultToggleDuration is the longest press still treated as a toggle tap
const DefaultToggleDuration = 250 * time.Millisecond

// SmartToggle turns a quick tap into a latched press and a long hold into a
// plain press and release.
//
// Known limitation: holding the button past the duration while the toggle is
// latched releases the action on let go but leaves the latch set, so the next
// tap releases nothing and unlatches.
type SmartToggle struct {
	Base[action.PressAction]
	duration  time.Duration
	initTime  time.Time
	isToggled bool
}

// NewSmartToggle builds the container, a zero duration selects DefaultToggleDuration
func NewSmartToggle(actions []action.PressAction, duration time.Duration, opts ...Option) (*SmartToggle, error) {
	if err := requireCount("smart toggle", len(actions), 1); err != nil {
		return nil, err
	}
	if duration <= 0 {
		duration = DefaultToggleDuration
	}
	return &SmartToggle{
		Base:     newBase(actions, opts),
		duration: duration,
	}, nil
}

// IsToggled reports whether the action is latched
func (s *SmartToggle) IsToggled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isToggled
}

func (s *SmartToggle) Call(pressed bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.currentTime()
	if pressed {
		s.initTime = now
		if !s.isToggled {
			return s.actions[0](pressed)
		}
		return nil
	}

	if now.Before(s.initTime.Add(s.duration)) {
		// quick tap flips the latch
		if s.isToggled {
			if err := s.actions[0](pressed); err != nil {
				return err
			}
		}
		s.isToggled = !s.isToggled
		return nil
	}

	// held past the window
	return s.actions[0](pressed)
}
