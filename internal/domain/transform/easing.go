package transform

// Curve is a CSS-style cubic-bezier timing function anchored at (0,0) and (1,1).
type Curve struct {
	Name           string
	X1, Y1, X2, Y2 float64
}

// Standard timing functions.
//
//nolint:gochecknoglobals // constant curves
var (
	Linear  = Curve{Name: "linear", X1: 0, Y1: 0, X2: 1, Y2: 1}
	Ease    = Curve{Name: "ease", X1: 0.25, Y1: 0.1, X2: 0.25, Y2: 1}
	EaseIn  = Curve{Name: "ease-in", X1: 0.42, Y1: 0, X2: 1, Y2: 1}
	EaseOut = Curve{Name: "ease-out", X1: 0, Y1: 0, X2: 0.58, Y2: 1}
)

const (
	newtonIterations = 8
	bisectIterations = 32
	solveEpsilon     = 1e-7
)

// At returns the eased progress for linear time t in [0, 1].
func (c Curve) At(t float64) float64 {
	switch {
	case t <= 0:
		return 0
	case t >= 1:
		return 1
	case c.X1 == c.Y1 && c.X2 == c.Y2:
		return t
	}
	return bezier(c.solveX(t), c.Y1, c.Y2)
}

// solveX finds the curve parameter whose x coordinate equals x.
func (c Curve) solveX(x float64) float64 {
	s := x
	for range newtonIterations {
		dx := bezier(s, c.X1, c.X2) - x
		if dx < solveEpsilon && dx > -solveEpsilon {
			return s
		}
		d := bezierSlope(s, c.X1, c.X2)
		if d < 1e-6 && d > -1e-6 {
			break
		}
		s -= dx / d
	}

	lo, hi := 0.0, 1.0
	s = x
	for range bisectIterations {
		v := bezier(s, c.X1, c.X2)
		if v-x < solveEpsilon && x-v < solveEpsilon {
			break
		}
		if v < x {
			lo = s
		} else {
			hi = s
		}
		s = (lo + hi) / 2
	}
	return s
}

// bezier evaluates one coordinate of a cubic bezier with endpoints 0 and 1.
func bezier(s, p1, p2 float64) float64 {
	inv := 1 - s
	return 3*inv*inv*s*p1 + 3*inv*s*s*p2 + s*s*s
}

func bezierSlope(s, p1, p2 float64) float64 {
	inv := 1 - s
	return 3*inv*inv*p1 + 6*inv*s*(p2-p1) + 3*s*s*(1-p2)
}
