package terminal

import (
	"github.com/gdamore/tcell/v2"
	"github.com/okian/flick/internal/domain/geometry"
	"github.com/okian/flick/internal/domain/gesture"
	"github.com/okian/flick/internal/domain/model"
)

// Input turns tcell mouse events into pointer events for the card. The
// terminal only reports a mouse, so every event has the Mouse source.
//
// Input is not safe for concurrent use; it belongs to the poll loop.
type Input struct {
	renderer *Renderer
	down     bool
	onCard   bool
}

// NewInput creates a translator hit-testing against r.
func NewInput(r *Renderer) *Input {
	return &Input{renderer: r}
}

// Mouse translates one mouse event. A press only counts on the card; a drag
// that leaves the card produces Leave, which releases it.
func (in *Input) Mouse(ev *tcell.EventMouse) []model.Event {
	x, y := ev.Position()
	px, py := in.renderer.Pixel(x, y)
	pressed := ev.Buttons()&tcell.Button1 != 0
	pointer := func(k model.Kind) model.Event {
		return model.Event{Kind: k, Source: gesture.Mouse, X: px, Y: py, TS: ev.When()}
	}

	switch {
	case pressed && !in.down:
		in.down = true
		if in.renderer.Contains(x, y) {
			in.onCard = true
			return []model.Event{pointer(model.Press)}
		}
	case pressed && in.onCard:
		if !in.renderer.Contains(x, y) {
			in.onCard = false
			return []model.Event{pointer(model.Move), pointer(model.Leave)}
		}
		return []model.Event{pointer(model.Move)}
	case !pressed && in.down:
		in.down = false
		if in.onCard {
			in.onCard = false
			return []model.Event{pointer(model.Release)}
		}
	}
	return nil
}

// Command maps demo keys to card commands: h, j, k and l swipe left, down,
// up and right; r resets the card.
func Command(ev *tcell.EventKey) (model.Event, bool) {
	if ev.Key() != tcell.KeyRune {
		return model.Event{}, false
	}
	swipe := func(d geometry.Direction) (model.Event, bool) {
		return model.Event{Kind: model.Swipe, Direction: d.String(), TS: ev.When()}, true
	}
	switch ev.Rune() {
	case 'h':
		return swipe(geometry.Left)
	case 'j':
		return swipe(geometry.Down)
	case 'k':
		return swipe(geometry.Up)
	case 'l':
		return swipe(geometry.Right)
	case 'r':
		return model.Event{Kind: model.Reset, TS: ev.When()}, true
	}
	return model.Event{}, false
}

// IsQuit reports whether the key ends the demo.
func IsQuit(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return true
	case tcell.KeyRune:
		return ev.Rune() == 'q'
	}
	return false
}
