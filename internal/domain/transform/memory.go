package transform

import "sync"

// MemoryElement is an in-memory Element. It stores the composed matrix, so
// reads go through the same decoding a rendered element would, and keeps a
// history of writes for inspection.
type MemoryElement struct {
	mu          sync.Mutex
	matrix      Matrix
	transition  Transition
	hidden      bool
	writes      []State
	transitions []Transition
}

// NewMemoryElement returns a visible element at rest.
func NewMemoryElement() *MemoryElement {
	return &MemoryElement{matrix: Identity()}
}

// Translation implements Codec.
func (e *MemoryElement) Translation() (float64, float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.matrix.Translation()
}

// Rotation implements Codec.
func (e *MemoryElement) Rotation() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.matrix.RotationDeg()
}

// Write implements Codec.
func (e *MemoryElement) Write(s State) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.matrix = s.Matrix()
	e.writes = append(e.writes, s)
}

// SetTransition implements Element.
func (e *MemoryElement) SetTransition(t Transition) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.transition = t
	e.transitions = append(e.transitions, t)
}

// SetVisible implements Element.
func (e *MemoryElement) SetVisible(visible bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.hidden = !visible
}

// Visible implements Element.
func (e *MemoryElement) Visible() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return !e.hidden
}

// State decodes the current matrix.
func (e *MemoryElement) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return FromMatrix(e.matrix)
}

// Transition returns the transition currently in effect.
func (e *MemoryElement) Transition() Transition {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.transition
}

// Writes returns a copy of every state written so far.
func (e *MemoryElement) Writes() []State {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]State, len(e.writes))
	copy(out, e.writes)
	return out
}

// Transitions returns a copy of every transition set so far.
func (e *MemoryElement) Transitions() []Transition {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Transition, len(e.transitions))
	copy(out, e.transitions)
	return out
}

// MemoryOverlay is an in-memory Overlay.
type MemoryOverlay struct {
	mu         sync.Mutex
	tint       Tint
	transition Transition
	tints      []Tint
}

// NewMemoryOverlay returns a clear overlay.
func NewMemoryOverlay() *MemoryOverlay {
	return &MemoryOverlay{}
}

// SetTint implements Overlay.
func (o *MemoryOverlay) SetTint(t Tint) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.tint = t
	o.tints = append(o.tints, t)
}

// SetTransition implements Overlay.
func (o *MemoryOverlay) SetTransition(t Transition) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.transition = t
}

// Tint returns the current tint.
func (o *MemoryOverlay) Tint() Tint {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.tint
}

// Transition returns the transition currently in effect.
func (o *MemoryOverlay) Transition() Transition {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.transition
}

// Tints returns every tint set so far.
func (o *MemoryOverlay) Tints() []Tint {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]Tint, len(o.tints))
	copy(out, o.tints)
	return out
}
