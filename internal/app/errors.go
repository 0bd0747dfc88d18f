package app

import "errors"

// Sentinel errors.
var (
	// ErrNoElement is returned when a card is built without an element.
	ErrNoElement = errors.New("card has no element")
	// ErrCardGone is returned when a swipe is requested for a card that is
	// leaving or has left the screen.
	ErrCardGone = errors.New("card is off screen")
	// ErrUnknownEvent is returned by Handle for an event kind it cannot route.
	ErrUnknownEvent = errors.New("unknown event kind")
	// ErrNotStarted is returned when events are submitted to a stopped service.
	ErrNotStarted = errors.New("service not started")
	// ErrDuplicateEvent is returned when an event id was submitted recently.
	ErrDuplicateEvent = errors.New("duplicate event")
)
