package geometry

import (
	"fmt"
	"math"
	"strings"
)

// Direction is the side of the screen a card leaves through.
type Direction string

// Supported directions.
const (
	Left  Direction = "left"
	Right Direction = "right"
	Up    Direction = "up"
	Down  Direction = "down"
)

// Directions lists every valid direction in a stable order.
var Directions = []Direction{Left, Right, Up, Down} //nolint:gochecknoglobals // read-only table

// String implements fmt.Stringer.
func (d Direction) String() string { return string(d) }

// Valid reports whether d is one of the four supported directions.
func (d Direction) Valid() bool {
	switch d {
	case Left, Right, Up, Down:
		return true
	default:
		return false
	}
}

// Horizontal reports whether d lies on the x axis.
func (d Direction) Horizontal() bool { return d == Left || d == Right }

// ParseDirection validates a direction coming from outside the package.
// Matching is case-insensitive and ignores surrounding spaces.
func ParseDirection(s string) (Direction, error) {
	d := Direction(strings.ToLower(strings.TrimSpace(s)))
	if !d.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidDirection, s)
	}
	return d, nil
}

// DirectionOf resolves the dominant direction of a velocity. The horizontal
// axis wins when both components have the same magnitude.
func DirectionOf(v Velocity) Direction {
	if math.Abs(v.X) >= math.Abs(v.Y) {
		if v.X > 0 {
			return Right
		}
		return Left
	}
	if v.Y > 0 {
		return Up
	}
	return Down
}

// Fling builds a velocity of the given power along d, with jitter applied to
// the orthogonal axis. It panics on an invalid direction; validate first.
func (d Direction) Fling(power, jitter float64) Velocity {
	switch d {
	case Right:
		return Velocity{X: power, Y: jitter}
	case Left:
		return Velocity{X: -power, Y: jitter}
	case Up:
		return Velocity{X: jitter, Y: power}
	case Down:
		return Velocity{X: jitter, Y: -power}
	default:
		panic(fmt.Sprintf("geometry: fling in invalid direction %q", string(d)))
	}
}
