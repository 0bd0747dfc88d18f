// Package dedupe remembers recently submitted event IDs so a replayed input
// event is handled once.
package dedupe

import (
	"context"
	"sync"
)

// DefaultWindow is how many recent IDs are remembered.
const DefaultWindow = 1024

// Deduper records seen event IDs.
type Deduper interface {
	// SeenAndRecord reports whether id is already in the window and records
	// it if not. The check and the record are one atomic step.
	SeenAndRecord(ctx context.Context, id string) bool

	// Unrecord forgets id, so an event that was never queued can be
	// submitted again.
	Unrecord(ctx context.Context, id string)

	Size() int
}

// Window is a Deduper over the last N recorded IDs. Recording past
// capacity evicts the oldest ID first.
type Window struct {
	mu   sync.Mutex
	ring []string
	next int
	seen map[string]int // id -> ring slot
}

// NewWindow creates a deduper with the configured capacity.
func NewWindow(opts ...Option) *Window {
	w := &Window{ring: make([]string, DefaultWindow)}
	for _, opt := range opts {
		opt(w)
	}
	w.seen = make(map[string]int, len(w.ring))
	return w
}

// SeenAndRecord implements Deduper.
func (w *Window) SeenAndRecord(_ context.Context, id string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.seen[id]; ok {
		return true
	}

	// A slot may still hold an ID that was unrecorded; it only evicts the
	// map entry that still points at this slot.
	if old := w.ring[w.next]; old != "" {
		if slot, ok := w.seen[old]; ok && slot == w.next {
			delete(w.seen, old)
		}
	}
	w.ring[w.next] = id
	w.seen[id] = w.next
	w.next = (w.next + 1) % len(w.ring)
	return false
}

// Unrecord implements Deduper.
func (w *Window) Unrecord(_ context.Context, id string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if slot, ok := w.seen[id]; ok {
		delete(w.seen, id)
		w.ring[slot] = ""
	}
}

// Size returns how many IDs are remembered.
func (w *Window) Size() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.seen)
}
