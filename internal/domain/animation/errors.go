package animation

import "errors"

// Sentinel errors for this package.
var (
	ErrZeroVelocity = errors.New("zero release velocity")
	ErrNoViewport   = errors.New("viewport has no area")
)
