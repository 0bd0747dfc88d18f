package transform

import "math"

// Tint is an RGBA overlay color; A is in [0, 1].
type Tint struct {
	R, G, B uint8
	A       float64
}

// Clear is the fully transparent tint.
var Clear = Tint{} //nolint:gochecknoglobals // zero value alias

// IsClear reports whether the tint is invisible.
func (t Tint) IsClear() bool { return t.A <= 0 }

// TintFor returns the swipe feedback color for a horizontal offset: green to
// the right, red to the left, growing opaque as x approaches the viewport width.
func TintFor(x, viewportWidth float64) Tint {
	if x == 0 || viewportWidth <= 0 {
		return Clear
	}
	alpha := math.Min(1, math.Abs(x)/viewportWidth)
	if x > 0 {
		return Tint{G: 255, A: alpha}
	}
	return Tint{R: 255, A: alpha}
}
