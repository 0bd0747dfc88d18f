// Package terminal renders a card on a tcell screen and turns terminal mouse
// and key input into card events.
package terminal

import (
	"sync"
	"time"

	"github.com/okian/flick/internal/domain/animation"
	"github.com/okian/flick/internal/domain/transform"
)

// Element is a transform.Element whose reads return the rendered state:
// while a transition runs, Translation and Rotation report the eased
// in-between value, the way a browser reports the computed transform.
type Element struct {
	mu         sync.Mutex
	clock      animation.Clock
	from, to   transform.State
	start      time.Time
	transition transform.Transition
	hidden     bool
}

// NewElement returns a visible element at rest.
func NewElement(clock animation.Clock) *Element {
	return &Element{clock: clock, start: clock.Now()}
}

func (e *Element) currentLocked(now time.Time) transform.State {
	return e.from.Lerp(e.to, e.transition.Progress(now.Sub(e.start)))
}

// Current returns the rendered state and visibility.
func (e *Element) Current() (transform.State, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.currentLocked(e.clock.Now()), !e.hidden
}

// Translation implements transform.Codec.
func (e *Element) Translation() (float64, float64) {
	s, _ := e.Current()
	return s.X, s.Y
}

// Rotation implements transform.Codec.
func (e *Element) Rotation() float64 {
	s, _ := e.Current()
	return s.Rotation
}

// Write implements transform.Codec. The element eases from wherever it is
// now to s using the current transition.
func (e *Element) Write(s transform.State) {
	e.mu.Lock()
	defer e.mu.Unlock()
	now := e.clock.Now()
	e.from = e.currentLocked(now)
	e.to = s
	e.start = now
}

// SetTransition implements transform.Element. A running transition is
// restarted from its current point with the new timing.
func (e *Element) SetTransition(t transform.Transition) {
	e.mu.Lock()
	defer e.mu.Unlock()
	now := e.clock.Now()
	e.from = e.currentLocked(now)
	e.start = now
	e.transition = t
}

// SetVisible implements transform.Element.
func (e *Element) SetVisible(visible bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.hidden = !visible
}

// Visible implements transform.Element.
func (e *Element) Visible() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return !e.hidden
}

// Overlay is a transform.Overlay that fades between tints.
type Overlay struct {
	mu         sync.Mutex
	clock      animation.Clock
	from, to   transform.Tint
	start      time.Time
	transition transform.Transition
}

// NewOverlay returns a clear overlay.
func NewOverlay(clock animation.Clock) *Overlay {
	return &Overlay{clock: clock, start: clock.Now()}
}

func (o *Overlay) currentLocked(now time.Time) transform.Tint {
	p := o.transition.Progress(now.Sub(o.start))
	t := o.to
	if t.IsClear() {
		t.R, t.G, t.B = o.from.R, o.from.G, o.from.B
	}
	t.A = o.from.A + (o.to.A-o.from.A)*p
	return t
}

// Current returns the rendered tint.
func (o *Overlay) Current() transform.Tint {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.currentLocked(o.clock.Now())
}

// SetTint implements transform.Overlay.
func (o *Overlay) SetTint(t transform.Tint) {
	o.mu.Lock()
	defer o.mu.Unlock()
	now := o.clock.Now()
	o.from = o.currentLocked(now)
	o.to = t
	o.start = now
}

// SetTransition implements transform.Overlay.
func (o *Overlay) SetTransition(t transform.Transition) {
	o.mu.Lock()
	defer o.mu.Unlock()
	now := o.clock.Now()
	o.from = o.currentLocked(now)
	o.start = now
	o.transition = t
}
