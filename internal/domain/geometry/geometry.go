// Package geometry holds the pure math behind pointer tracking: distances,
// velocities between timestamped samples and swipe directions.
package geometry

import (
	"math"
	"time"
)

// Point is a 2D position in pixels.
type Point struct {
	X float64
	Y float64
}

// Add returns p translated by o.
func (p Point) Add(o Point) Point { return Point{X: p.X + o.X, Y: p.Y + o.Y} }

// Sub returns p - o.
func (p Point) Sub(o Point) Point { return Point{X: p.X - o.X, Y: p.Y - o.Y} }

// Sample is a pointer position recorded at a given time. Samples are values
// and are never mutated after they are recorded.
type Sample struct {
	X    float64
	Y    float64
	Time time.Time
}

// At builds a sample from a point.
func At(p Point, t time.Time) Sample { return Sample{X: p.X, Y: p.Y, Time: t} }

// Point drops the timestamp.
func (s Sample) Point() Point { return Point{X: s.X, Y: s.Y} }

// Velocity is expressed in pixels per second. Y grows upwards, the opposite
// of screen coordinates, so a gesture towards the top of the screen is positive.
type Velocity struct {
	X float64
	Y float64
}

// Speed is the magnitude of the velocity vector.
func (v Velocity) Speed() float64 { return Distance(v.X, v.Y) }

// IsZero reports whether both components are zero.
func (v Velocity) IsZero() bool { return v.X == 0 && v.Y == 0 }

// Distance returns the euclidean norm of (dx, dy).
func Distance(dx, dy float64) float64 {
	return math.Sqrt(dx*dx + dy*dy)
}

// VelocityBetween derives the velocity travelled from a to b. The second
// return value is false when b is not strictly later than a; the velocity is
// zero in that case and callers must treat the sample as a no-op.
func VelocityBetween(a, b Sample) (Velocity, bool) {
	dt := b.Time.Sub(a.Time).Seconds()
	if dt <= 0 {
		return Velocity{}, false
	}
	return Velocity{
		X: (b.X - a.X) / dt,
		Y: (a.Y - b.Y) / dt,
	}, true
}

// Finite reports whether f is neither NaN nor infinite.
func Finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
