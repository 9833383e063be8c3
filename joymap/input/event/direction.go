package event

import (
	"fmt"
	"strings"
)

// Direction is a hat position, X grows to the east and Y to the north
type Direction struct {
	X, Y int
}

var (
	Center    = Direction{0, 0}
	North     = Direction{0, 1}
	NorthEast = Direction{1, 1}
	East      = Direction{1, 0}
	SouthEast = Direction{1, -1}
	South     = Direction{0, -1}
	SouthWest = Direction{-1, -1}
	West      = Direction{-1, 0}
	NorthWest = Direction{-1, 1}
)

var directionNames = map[Direction]string{
	Center:    "center",
	North:     "north",
	NorthEast: "north-east",
	East:      "east",
	SouthEast: "south-east",
	South:     "south",
	SouthWest: "south-west",
	West:      "west",
	NorthWest: "north-west",
}

func (d Direction) String() string {
	if name, ok := directionNames[d]; ok {
		return name
	}
	return fmt.Sprintf("(%d,%d)", d.X, d.Y)
}

// ParseDirection accepts names such as "north-east", "northeast" or "ne"
func ParseDirection(s string) (Direction, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	name = strings.ReplaceAll(name, "_", "-")

	short := map[string]Direction{
		"c": Center, "n": North, "ne": NorthEast, "e": East, "se": SouthEast,
		"s": South, "sw": SouthWest, "w": West, "nw": NorthWest,
	}
	if d, ok := short[name]; ok {
		return d, nil
	}
	for d, full := range directionNames {
		if name == full || name == strings.ReplaceAll(full, "-", "") {
			return d, nil
		}
	}
	return Center, fmt.Errorf("unknown hat direction %q", s)
}

// DirectionFromAxes builds a direction from raw hat axis readings, only the sign is used
func DirectionFromAxes(x, y int) Direction {
	return Direction{X: sign(x), Y: sign(y)}
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}
