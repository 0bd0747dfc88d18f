// Package gesture classifies an ongoing pointer interaction as a scroll or a
// swipe and drags the card while it is a swipe.
package gesture

// Phase is the classification of the current interaction.
type Phase uint8

// Phases advance one way per interaction: Idle -> Scroll or Idle -> Swipe.
const (
	Idle Phase = iota
	Scroll
	Swipe
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Scroll:
		return "scroll"
	case Swipe:
		return "swipe"
	default:
		return "unknown"
	}
}

// Source is the kind of pointer driving an interaction.
type Source uint8

// Pointer sources.
const (
	Mouse Source = iota
	Touch
)

func (s Source) String() string {
	if s == Touch {
		return "touch"
	}
	return "mouse"
}
