// Package transform translates between an element's rendered transform and
// the semantic {x, y, rotation} triple that gesture code works with.
package transform

import "math"

// Matrix is a 2D affine transform laid out like a CSS matrix(a, b, c, d, e, f):
//
//	| A  C  E |
//	| B  D  F |
//
// which maps a point as
//
//	x' = A*x + C*y + E
//	y' = B*x + D*y + F
//
// In 4x4 terms A is m11, B m12, C m21, D m22, E m41 and F m42.
type Matrix struct {
	A, B, C, D, E, F float64
}

// Identity returns the matrix that leaves points unchanged.
func Identity() Matrix {
	return Matrix{A: 1, D: 1}
}

// Translate returns a translation matrix.
func Translate(x, y float64) Matrix {
	return Matrix{A: 1, D: 1, E: x, F: y}
}

// Rotate returns a clockwise rotation (screen coordinates) by deg degrees.
func Rotate(deg float64) Matrix {
	rad := deg * math.Pi / 180
	sin, cos := math.Sincos(rad)
	return Matrix{A: cos, B: sin, C: -sin, D: cos}
}

// Multiply returns m*n: n is applied first, then m.
func (m Matrix) Multiply(n Matrix) Matrix {
	return Matrix{
		A: m.A*n.A + m.C*n.B,
		B: m.B*n.A + m.D*n.B,
		C: m.A*n.C + m.C*n.D,
		D: m.B*n.C + m.D*n.D,
		E: m.A*n.E + m.C*n.F + m.E,
		F: m.B*n.E + m.D*n.F + m.F,
	}
}

// Apply maps a point through the matrix.
func (m Matrix) Apply(x, y float64) (float64, float64) {
	return m.A*x + m.C*y + m.E, m.B*x + m.D*y + m.F
}

// Invert returns the inverse matrix. ok is false for singular matrices.
func (m Matrix) Invert() (inv Matrix, ok bool) {
	det := m.A*m.D - m.B*m.C
	if det == 0 {
		return Matrix{}, false
	}
	return Matrix{
		A: m.D / det,
		B: -m.B / det,
		C: -m.C / det,
		D: m.A / det,
		E: (m.C*m.F - m.D*m.E) / det,
		F: (m.B*m.E - m.A*m.F) / det,
	}, true
}

// Translation returns the m41/m42 components.
func (m Matrix) Translation() (x, y float64) { return m.E, m.F }

// RotationDeg recovers the rotation angle from m21, which holds -sin(angle).
// The result lies in [-90, 90].
func (m Matrix) RotationDeg() float64 {
	s := math.Max(-1, math.Min(1, m.C))
	return -math.Asin(s) * 360 / (2 * math.Pi)
}
