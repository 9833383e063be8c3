// Package fsm implements a small table driven finite state machine.
//
// The transition table must be total over states x actions, which is checked
// once at construction so that Perform can never hit an undefined transition.
package fsm

import (
	"errors"
	"fmt"
	"sync"
)

var (
	ErrUnknownState    = errors.New("fsm: unknown state")
	ErrUnknownAction   = errors.New("fsm: unknown action")
	ErrIncompleteTable = errors.New("fsm: transition table is not total")
)

// Key selects a transition
type Key[S, A comparable] struct {
	State  S
	Action A
}

// Transition is the effect executed for a (state, action) pair and the state
// the machine moves to afterwards. A nil Effect is a no-op.
type Transition[S comparable, P any] struct {
	Effect func(payload P) error
	Next   S
}

// Table maps every (state, action) pair to its transition
type Table[S, A comparable, P any] map[Key[S, A]]Transition[S, P]

// Machine is a finite state machine whose effects receive a per-call payload P.
//
// Transitions are serialised, so an effect must not call Perform on its own
// machine. Current may be called from an effect and reports the state the
// transition started from.
type Machine[S, A comparable, P any] struct {
	perform sync.Mutex // held for a whole transition, effect included
	mu      sync.RWMutex
	current S
	actions map[A]struct{}
	table   Table[S, A, P]
}

// New validates the table and returns a machine positioned on initial
func New[S, A comparable, P any](initial S, states []S, actions []A, table Table[S, A, P]) (*Machine[S, A, P], error) {
	known := make(map[S]struct{}, len(states))
	for _, s := range states {
		known[s] = struct{}{}
	}
	if _, ok := known[initial]; !ok {
		return nil, fmt.Errorf("%w: initial state %v", ErrUnknownState, initial)
	}

	actionSet := make(map[A]struct{}, len(actions))
	for _, a := range actions {
		actionSet[a] = struct{}{}
	}

	for _, s := range states {
		for _, a := range actions {
			tr, ok := table[Key[S, A]{s, a}]
			if !ok {
				return nil, fmt.Errorf("%w: missing (%v, %v)", ErrIncompleteTable, s, a)
			}
			if _, ok := known[tr.Next]; !ok {
				return nil, fmt.Errorf("%w: (%v, %v) leads to %v", ErrUnknownState, s, a, tr.Next)
			}
		}
	}

	copied := make(Table[S, A, P], len(table))
	for k, v := range table {
		copied[k] = v
	}

	return &Machine[S, A, P]{
		current: initial,
		actions: actionSet,
		table:   copied,
	}, nil
}

// Perform executes the transition for action from the current state.
// When the effect fails the machine stays where it was and the error is returned.
func (m *Machine[S, A, P]) Perform(action A, payload P) error {
	if _, ok := m.actions[action]; !ok {
		return fmt.Errorf("%w: %v", ErrUnknownAction, action)
	}

	m.perform.Lock()
	defer m.perform.Unlock()

	tr := m.table[Key[S, A]{m.Current(), action}]
	if tr.Effect != nil {
		if err := tr.Effect(payload); err != nil {
			return err
		}
	}

	m.mu.Lock()
	m.current = tr.Next
	m.mu.Unlock()
	return nil
}

// Current returns the state the machine is in
func (m *Machine[S, A, P]) Current() S {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}
