package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInputType_IsButtonLike(t *testing.T) {
	tests := []struct {
		input    InputType
		expected bool
	}{
		{JoystickAxis, false},
		{JoystickButton, true},
		{JoystickHat, false},
		{Keyboard, true},
	}

	for _, tt := range tests {
		t.Run(tt.input.String(), func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.input.IsButtonLike())
		})
	}
}

func TestParseInputType(t *testing.T) {
	for _, typ := range []InputType{JoystickAxis, JoystickButton, JoystickHat, Keyboard} {
		parsed, err := ParseInputType(typ.String())
		require.NoError(t, err)
		assert.Equal(t, typ, parsed)
	}

	parsed, err := ParseInputType(" Keyboard ")
	require.NoError(t, err)
	assert.Equal(t, Keyboard, parsed)

	_, err = ParseInputType("trackball")
	assert.Error(t, err)
}

func TestParseDirection(t *testing.T) {
	tests := []struct {
		input    string
		expected Direction
	}{
		{"north", North},
		{"North-East", NorthEast},
		{"north_west", NorthWest},
		{"southeast", SouthEast},
		{"sw", SouthWest},
		{"center", Center},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			d, err := ParseDirection(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, d)
		})
	}

	_, err := ParseDirection("up")
	assert.Error(t, err)
}

func TestDirectionFromAxes(t *testing.T) {
	assert.Equal(t, NorthEast, DirectionFromAxes(32767, 1))
	assert.Equal(t, South, DirectionFromAxes(0, -5))
	assert.Equal(t, Center, DirectionFromAxes(0, 0))
}

func TestEvent_Key(t *testing.T) {
	evt := Event{Type: JoystickButton, Device: "js0", ID: 3, IsPressed: true}
	assert.Equal(t, Key{Device: "js0", Type: JoystickButton, ID: 3}, evt.Key())
	assert.Equal(t, "js0/button/3", evt.Key().String())
}
