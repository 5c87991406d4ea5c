package types

import "fmt"

// Direction is one of the eight compass facings. East is +x and South is +y
// in grid space.
type Direction uint8

const (
	DirectionS Direction = iota
	DirectionSW
	DirectionW
	DirectionNW
	DirectionN
	DirectionNE
	DirectionE
	DirectionSE
)

// DefaultDirection is the facing given to newly observed entities.
const DefaultDirection = DirectionS

var directionNames = [...]string{
	DirectionS:  "S",
	DirectionSW: "SW",
	DirectionW:  "W",
	DirectionNW: "NW",
	DirectionN:  "N",
	DirectionNE: "NE",
	DirectionE:  "E",
	DirectionSE: "SE",
}

// AllDirections lists every facing in declaration order.
var AllDirections = []Direction{
	DirectionS, DirectionSW, DirectionW, DirectionNW,
	DirectionN, DirectionNE, DirectionE, DirectionSE,
}

// String returns the name used in sprite frame file names.
func (d Direction) String() string {
	if int(d) < len(directionNames) {
		return directionNames[d]
	}
	return "unknown"
}

// ParseDirection parses a frame-name direction token.
func ParseDirection(s string) (Direction, error) {
	for i, name := range directionNames {
		if name == s {
			return Direction(i), nil
		}
	}
	return DefaultDirection, fmt.Errorf("unknown direction: %s", s)
}

func (d Direction) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Direction) UnmarshalText(b []byte) error {
	parsed, err := ParseDirection(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// DirectionBetween returns the facing from one cell toward another. A zero
// delta keeps the given fallback.
func DirectionBetween(from, to Cell, fallback Direction) Direction {
	return DirectionOf(float64(to.X-from.X), float64(to.Y-from.Y), fallback)
}

// DirectionOf classifies a continuous grid-space delta.
func DirectionOf(dx, dy float64, fallback Direction) Direction {
	sx := sign(dx)
	sy := sign(dy)
	switch {
	case sx == 0 && sy == 0:
		return fallback
	case sx == 1 && sy == 0:
		return DirectionE
	case sx == -1 && sy == 0:
		return DirectionW
	case sx == 0 && sy == 1:
		return DirectionS
	case sx == 0 && sy == -1:
		return DirectionN
	case sx == 1 && sy == 1:
		return DirectionSE
	case sx == 1 && sy == -1:
		return DirectionNE
	case sx == -1 && sy == 1:
		return DirectionSW
	default:
		return DirectionNW
	}
}

func sign(v float64) int {
	const epsilon = 1e-9
	if v > epsilon {
		return 1
	}
	if v < -epsilon {
		return -1
	}
	return 0
}
