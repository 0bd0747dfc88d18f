package app

import (
	"math/rand"

	"github.com/okian/flick/internal/domain/animation"
	"github.com/okian/flick/internal/domain/geometry"
	"github.com/okian/flick/internal/domain/gesture"
	"github.com/okian/flick/internal/domain/transform"
	"github.com/okian/flick/pkg/logger"
)

// Option applies a configuration option to the Card. Options are also
// accepted by Card.Tune on a live card.
type Option func(*Card)

// WithFlickOnSwipe controls whether a recognized swipe throws the card off
// screen. When false the swipe is still reported and the card returns.
func WithFlickOnSwipe(flick bool) Option {
	return func(c *Card) {
		c.flickOnSwipe = flick
	}
}

// WithOnSwipe sets the callback fired when a swipe is recognized.
func WithOnSwipe(fn func(geometry.Direction)) Option {
	return func(c *Card) {
		c.onSwipe = fn
	}
}

// WithOnCardLeftScreen sets the callback fired after the exit animation has
// finished and the card is hidden.
func WithOnCardLeftScreen(fn func(geometry.Direction)) Option {
	return func(c *Card) {
		c.onCardLeftScreen = fn
	}
}

// WithPreventSwipe lists directions a pointer swipe may not throw the card.
// It replaces any previously set list.
func WithPreventSwipe(dirs ...geometry.Direction) Option {
	return func(c *Card) {
		c.prevent = make(map[geometry.Direction]struct{}, len(dirs))
		for _, d := range dirs {
			c.prevent[d] = struct{}{}
		}
	}
}

// WithSwipeThreshold sets the release speed, in px/s on either axis, above
// which a release counts as a swipe.
func WithSwipeThreshold(pxPerSecond float64) Option {
	return func(c *Card) {
		if pxPerSecond >= 0 {
			c.threshold = pxPerSecond
		}
	}
}

// WithSwipePower sets the speed of programmatic swipes in px/s.
func WithSwipePower(pxPerSecond float64) Option {
	return func(c *Card) {
		if pxPerSecond > 0 {
			c.power = pxPerSecond
		}
	}
}

// WithClassifier sets the gesture classifier.
func WithClassifier(cl *gesture.Classifier) Option {
	return func(c *Card) {
		if cl != nil {
			c.classifier = cl
		}
	}
}

// WithAnimator sets the exit and return animator.
func WithAnimator(a *animation.Animator) Option {
	return func(c *Card) {
		if a != nil {
			c.animator = a
		}
	}
}

// WithViewport sets the area the card leaves and scales its tint against. It
// applies to the classifier and animator set so far, so it belongs after
// WithClassifier and WithAnimator.
func WithViewport(v transform.Viewport) Option {
	return func(c *Card) {
		if v == nil {
			return
		}
		c.classifier.SetViewport(v)
		c.animator.Tune(animation.WithViewport(v))
	}
}

// WithRand sets the random source for programmatic swipe jitter.
func WithRand(r *rand.Rand) Option {
	return func(c *Card) {
		if r != nil {
			c.rng = r
		}
	}
}

// WithLogger sets a custom logger for the card.
func WithLogger(l logger.Logger) Option {
	return func(c *Card) {
		if l != nil {
			c.logger = l
		}
	}
}
