package fsm

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type light string
type toggle string

const (
	off light  = "off"
	on  light  = "on"
	dim light  = "dim"
	tap toggle = "tap"
	hld toggle = "hold"
)

func newLightTable(log *[]string) Table[light, toggle, string] {
	record := func(name string) func(string) error {
		return func(p string) error {
			*log = append(*log, name+":"+p)
			return nil
		}
	}
	return Table[light, toggle, string]{
		{off, tap}: {Effect: record("on"), Next: on},
		{off, hld}: {Effect: record("dim"), Next: dim},
		{on, tap}:  {Effect: record("off"), Next: off},
		{on, hld}:  {Effect: record("dim"), Next: dim},
		{dim, tap}: {Effect: record("off"), Next: off},
		{dim, hld}: {Next: dim},
	}
}

func TestMachine_Perform(t *testing.T) {
	var log []string
	m, err := New(off, []light{off, on, dim}, []toggle{tap, hld}, newLightTable(&log))
	require.NoError(t, err)

	steps := []struct {
		action   toggle
		expected light
	}{
		{tap, on},
		{hld, dim},
		{hld, dim},
		{tap, off},
	}

	for _, step := range steps {
		require.NoError(t, m.Perform(step.action, "x"))
		assert.Equal(t, step.expected, m.Current())
	}

	assert.Equal(t, []string{"on:x", "dim:x", "off:x"}, log, "nil effect must be a no-op")
}

func TestNew_Validation(t *testing.T) {
	var log []string

	t.Run("incomplete table", func(t *testing.T) {
		table := newLightTable(&log)
		delete(table, Key[light, toggle]{dim, hld})

		_, err := New(off, []light{off, on, dim}, []toggle{tap, hld}, table)
		assert.ErrorIs(t, err, ErrIncompleteTable)
	})

	t.Run("unknown initial state", func(t *testing.T) {
		_, err := New(light("broken"), []light{off, on, dim}, []toggle{tap, hld}, newLightTable(&log))
		assert.ErrorIs(t, err, ErrUnknownState)
	})

	t.Run("unknown target state", func(t *testing.T) {
		table := newLightTable(&log)
		table[Key[light, toggle]{on, tap}] = Transition[light, string]{Next: light("nowhere")}

		_, err := New(off, []light{off, on, dim}, []toggle{tap, hld}, table)
		assert.ErrorIs(t, err, ErrUnknownState)
	})
}

func TestMachine_UnknownAction(t *testing.T) {
	var log []string
	m, err := New(off, []light{off, on, dim}, []toggle{tap, hld}, newLightTable(&log))
	require.NoError(t, err)

	err = m.Perform(toggle("double"), "")
	assert.ErrorIs(t, err, ErrUnknownAction)
	assert.Equal(t, off, m.Current())
}

func TestMachine_FailedEffectKeepsState(t *testing.T) {
	boom := errors.New("boom")
	table := Table[light, toggle, int]{
		{off, tap}: {Effect: func(int) error { return boom }, Next: on},
		{on, tap}:  {Next: off},
	}
	m, err := New(off, []light{off, on}, []toggle{tap}, table)
	require.NoError(t, err)

	assert.ErrorIs(t, m.Perform(tap, 0), boom)
	assert.Equal(t, off, m.Current())
}

func TestMachine_EffectReadsCurrent(t *testing.T) {
	var m *Machine[light, toggle, int]
	var seen light
	table := Table[light, toggle, int]{
		{off, tap}: {Effect: func(int) error { seen = m.Current(); return nil }, Next: on},
		{on, tap}:  {Next: off},
	}
	m, err := New(off, []light{off, on}, []toggle{tap}, table)
	require.NoError(t, err)

	require.NoError(t, m.Perform(tap, 0))
	assert.Equal(t, off, seen, "the effect sees the state the transition started from")
	assert.Equal(t, on, m.Current())
}
