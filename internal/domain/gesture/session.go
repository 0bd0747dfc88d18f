package gesture

import (
	"github.com/google/uuid"
	"github.com/okian/flick/internal/domain/geometry"
)

// Session is the mutable state of one interaction, from press to release.
// It is a value: the classifier takes one and returns the next.
type Session struct {
	// ID correlates log lines and metrics of a single interaction.
	ID string
	// Source is the pointer kind that started the interaction.
	Source Source
	// Offset is added to raw pointer coordinates so that the drag position
	// starts at the element's rest translation.
	Offset geometry.Point
	// Last is the most recent location the element was moved to.
	Last geometry.Sample
	// Velocity is the latest estimate, zero until the element moves.
	Velocity geometry.Velocity
	Phase    Phase
}

// NewSession starts an interaction at press, with the element resting at rest.
func NewSession(src Source, press geometry.Sample, rest geometry.Point) Session {
	return Session{
		ID:     uuid.NewString(),
		Source: src,
		Offset: rest.Sub(press.Point()),
		Last:   geometry.At(rest, press.Time),
		Phase:  Idle,
	}
}

// Advance records the classifier output and refreshes the velocity estimate.
// When the classifier kept the previous location the element did not move,
// so the velocity drops to zero.
func (s Session) Advance(next geometry.Sample, phase Phase) Session {
	if v, ok := geometry.VelocityBetween(s.Last, next); ok {
		s.Velocity = v
	} else {
		s.Velocity = geometry.Velocity{}
	}
	s.Last = next
	s.Phase = phase
	return s
}
