package gesture

import (
	"math"

	"github.com/okian/flick/internal/domain/geometry"
	"github.com/okian/flick/internal/domain/transform"
)

// Default classifier configuration.
const (
	DefaultMaxTilt = 5.0
	// tiltScale converts px/s into the unit the tilt factor multiplies.
	tiltScale = 1000.0
)

// Option applies a configuration option to the Classifier.
type Option func(*Classifier)

// WithMaxTilt sets how strongly horizontal velocity tilts the card.
func WithMaxTilt(tilt float64) Option {
	return func(c *Classifier) {
		if tilt >= 0 {
			c.maxTilt = tilt
		}
	}
}

// WithViewport sets the viewport the overlay tint is scaled against.
func WithViewport(v transform.Viewport) Option {
	return func(c *Classifier) {
		if v != nil {
			c.viewport = v
		}
	}
}

// Classifier decides, sample by sample, whether an interaction is a swipe the
// card should follow or a scroll the surrounding container owns.
type Classifier struct {
	maxTilt  float64
	viewport transform.Viewport
}

// NewClassifier creates a classifier with configuration options.
func NewClassifier(opts ...Option) *Classifier {
	c := &Classifier{
		maxTilt:  DefaultMaxTilt,
		viewport: transform.FixedViewport{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetMaxTilt updates the tilt factor for later samples.
func (c *Classifier) SetMaxTilt(tilt float64) {
	if tilt >= 0 {
		c.maxTilt = tilt
	}
}

// SetViewport replaces the viewport the overlay tint is scaled against.
func (c *Classifier) SetViewport(v transform.Viewport) {
	if v != nil {
		c.viewport = v
	}
}

// Classify processes one raw pointer sample. It returns the new last location
// and phase; the element and overlay are written only when the sample is
// classified as part of a swipe.
//
// Only horizontal drag moves the card: the vertical position stays pinned at
// the last location. Once the phase is Scroll the card never moves again in
// this interaction, and once it is Swipe it never becomes a scroll.
func (c *Classifier) Classify(el transform.Codec, ov transform.Overlay, raw geometry.Sample, offset geometry.Point, last geometry.Sample, phase Phase) (geometry.Sample, Phase) {
	next, phase, _ := c.classify(el, ov, raw, offset, last, phase)
	return next, phase
}

func (c *Classifier) classify(el transform.Codec, ov transform.Overlay, raw geometry.Sample, offset geometry.Point, last geometry.Sample, phase Phase) (geometry.Sample, Phase, bool) {
	if !raw.Time.After(last.Time) {
		return last, phase, false
	}

	pos := geometry.Point{X: raw.X + offset.X, Y: last.Y}
	next := geometry.At(pos, raw.Time)

	dx := next.X - last.X
	dy := raw.Y + offset.Y - last.Y

	if (phase == Swipe || math.Abs(dx) > math.Abs(dy)) && phase != Scroll {
		v, ok := geometry.VelocityBetween(last, next)
		if !ok {
			return last, phase, false
		}
		rotation := v.X / tiltScale * c.maxTilt
		if !geometry.Finite(rotation) || !geometry.Finite(pos.X) {
			return last, phase, false
		}
		el.Write(transform.State{X: pos.X, Y: pos.Y, Rotation: rotation})
		if ov != nil {
			w, _ := c.viewport.Size()
			ov.SetTint(transform.TintFor(pos.X, w))
		}
		return next, Swipe, true
	}

	if dy != 0 && phase != Swipe {
		return last, Scroll, false
	}

	return last, phase, false
}

// Move runs Classify against a session and returns the advanced session.
func (c *Classifier) Move(el transform.Codec, ov transform.Overlay, raw geometry.Sample, s Session) Session {
	next, phase, moved := c.classify(el, ov, raw, s.Offset, s.Last, s.Phase)
	if !moved {
		s.Velocity = geometry.Velocity{}
		s.Phase = phase
		return s
	}
	return s.Advance(next, phase)
}
