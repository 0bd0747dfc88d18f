package transform

import (
	"math"
	"strconv"
)

// State is the semantic view of an element transform: a translation in pixels
// followed by a rotation in degrees.
type State struct {
	X        float64
	Y        float64
	Rotation float64
}

// Neutral is the rest state.
var Neutral = State{} //nolint:gochecknoglobals // zero value alias

// Matrix composes the translation before the rotation so the element pivots
// around its own origin after being moved.
func (s State) Matrix() Matrix {
	return Translate(s.X, s.Y).Multiply(Rotate(s.Rotation))
}

// FromMatrix decodes a state out of a rendered matrix.
func FromMatrix(m Matrix) State {
	x, y := m.Translation()
	return State{X: x, Y: y, Rotation: m.RotationDeg()}
}

// Scale multiplies every component by k.
func (s State) Scale(k float64) State {
	return State{X: s.X * k, Y: s.Y * k, Rotation: s.Rotation * k}
}

// Lerp interpolates between s and to; p = 0 yields s, p = 1 yields to.
func (s State) Lerp(to State, p float64) State {
	return State{
		X:        s.X + (to.X-s.X)*p,
		Y:        s.Y + (to.Y-s.Y)*p,
		Rotation: s.Rotation + (to.Rotation-s.Rotation)*p,
	}
}

// ApproxEqual compares two states component-wise within eps.
func (s State) ApproxEqual(o State, eps float64) bool {
	return math.Abs(s.X-o.X) <= eps && math.Abs(s.Y-o.Y) <= eps && math.Abs(s.Rotation-o.Rotation) <= eps
}

// String renders the state as a CSS transform value, translate before rotate.
func (s State) String() string {
	return "translate(" + fmtFloat(s.X) + "px, " + fmtFloat(s.Y) + "px)rotate(" + fmtFloat(s.Rotation) + "deg)"
}

func fmtFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
