// Package model contains domain models passed between layers.
package model

import (
	"time"

	"github.com/okian/flick/internal/domain/geometry"
	"github.com/okian/flick/internal/domain/gesture"
)

// Kind is the type of an input event.
type Kind uint8

// Input event kinds.
const (
	Press Kind = iota
	Move
	Release
	// Leave is the pointer leaving the card area. For the mouse it releases
	// the card like a button release does.
	Leave
	// Swipe is a programmatic swipe request carrying a Direction.
	Swipe
	// Reset puts a swiped card back on screen at rest.
	Reset
)

func (k Kind) String() string {
	switch k {
	case Press:
		return "press"
	case Move:
		return "move"
	case Release:
		return "release"
	case Leave:
		return "leave"
	case Swipe:
		return "swipe"
	case Reset:
		return "reset"
	default:
		return "unknown"
	}
}

// Event is one input event submitted by a host: a pointer sample or a
// command. Events are dispatched to the card strictly in order.
type Event struct {
	EventID   string         // correlation id for logs
	Kind      Kind           // what happened
	Source    gesture.Source // mouse or touch; ignored for commands
	X, Y      float64        // pointer position in pixels
	TS        time.Time      // event timestamp
	Direction string         // requested direction for Swipe; may be empty
}

// Sample returns the pointer position of the event as a timestamped sample.
func (e Event) Sample() geometry.Sample {
	return geometry.Sample{X: e.X, Y: e.Y, Time: e.TS}
}
