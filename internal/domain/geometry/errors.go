package geometry

import "errors"

// Sentinel errors for this package.
var (
	ErrInvalidDirection = errors.New("invalid direction")
)
