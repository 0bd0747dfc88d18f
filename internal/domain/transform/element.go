package transform

import "time"

// Codec reads and writes an element's transform.
type Codec interface {
	// Translation returns the element's current offset from its rest position.
	Translation() (x, y float64)
	// Rotation returns the element's current tilt in degrees.
	Rotation() float64
	// Write applies a translate+rotate transform.
	Write(s State)
}

// Element is a renderable card surface.
type Element interface {
	Codec
	// SetTransition sets the easing applied to subsequent writes.
	SetTransition(t Transition)
	// SetVisible shows or hides the element.
	SetVisible(visible bool)
	// Visible reports whether the element is displayed.
	Visible() bool
}

// Overlay is the tinted layer drawn on top of a card.
type Overlay interface {
	SetTint(t Tint)
	SetTransition(t Transition)
}

// Viewport reports the size of the area a card can leave.
type Viewport interface {
	Size() (width, height float64)
}

// FixedViewport is a Viewport of constant size.
type FixedViewport struct {
	Width  float64
	Height float64
}

// Size implements Viewport.
func (v FixedViewport) Size() (float64, float64) { return v.Width, v.Height }

// Transition describes how the renderer eases towards a newly written state.
type Transition struct {
	Curve    Curve
	Duration time.Duration
}

// Progress maps elapsed time to eased progress in [0, 1].
func (t Transition) Progress(elapsed time.Duration) float64 {
	if t.Duration <= 0 || elapsed >= t.Duration {
		return 1
	}
	if elapsed <= 0 {
		return 0
	}
	return t.Curve.At(float64(elapsed) / float64(t.Duration))
}
