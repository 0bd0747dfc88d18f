package terminal_test

import (
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/okian/flick/internal/adapters/terminal"
	"github.com/okian/flick/internal/domain/animation"
	"github.com/okian/flick/internal/domain/model"
	"github.com/okian/flick/internal/domain/transform"
	. "github.com/smartystreets/goconvey/convey"
)

var epoch = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

func newScreen() tcell.SimulationScreen {
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		panic(err)
	}
	screen.SetSize(80, 24)
	return screen
}

func TestElement(t *testing.T) {
	Convey("Given a terminal element on a fake clock", t, func() {
		clock := animation.NewFakeClock(epoch)
		el := terminal.NewElement(clock)

		Convey("When written without a transition", func() {
			el.Write(transform.State{X: 40, Y: -8, Rotation: 3})

			Convey("Then reads return the new state at once", func() {
				x, y := el.Translation()
				So(x, ShouldEqual, 40)
				So(y, ShouldEqual, -8)
				So(el.Rotation(), ShouldEqual, 3)
			})
		})

		Convey("When written with a linear 100ms transition", func() {
			el.SetTransition(transform.Transition{Curve: transform.Linear, Duration: 100 * time.Millisecond})
			el.Write(transform.State{X: 100})

			Convey("Then reads follow the rendered value", func() {
				x, _ := el.Translation()
				So(x, ShouldEqual, 0)
				clock.Advance(50 * time.Millisecond)
				x, _ = el.Translation()
				So(x, ShouldAlmostEqual, 50, 1e-6)
				clock.Advance(50 * time.Millisecond)
				x, _ = el.Translation()
				So(x, ShouldEqual, 100)
			})

			Convey("Then a new write starts from the in-between value", func() {
				clock.Advance(50 * time.Millisecond)
				el.Write(transform.State{X: 0})
				x, _ := el.Translation()
				So(x, ShouldAlmostEqual, 50, 1e-6)
			})
		})

		Convey("When hidden", func() {
			el.SetVisible(false)
			_, visible := el.Current()
			So(visible, ShouldBeFalse)
			So(el.Visible(), ShouldBeFalse)
		})
	})
}

func TestOverlay(t *testing.T) {
	Convey("Given a terminal overlay", t, func() {
		clock := animation.NewFakeClock(epoch)
		ov := terminal.NewOverlay(clock)
		ov.SetTint(transform.Tint{G: 255, A: 0.5})

		Convey("When it fades out over 100ms", func() {
			ov.SetTransition(transform.Transition{Curve: transform.Linear, Duration: 100 * time.Millisecond})
			ov.SetTint(transform.Clear)
			clock.Advance(50 * time.Millisecond)

			Convey("Then the colour stays while the alpha drops", func() {
				cur := ov.Current()
				So(cur.G, ShouldEqual, 255)
				So(cur.A, ShouldAlmostEqual, 0.25, 1e-6)
				clock.Advance(time.Second)
				So(ov.Current().IsClear(), ShouldBeTrue)
			})
		})
	})
}

func TestRenderer(t *testing.T) {
	Convey("Given a card rendered on an 80x24 screen", t, func() {
		clock := animation.NewFakeClock(epoch)
		screen := newScreen()
		defer screen.Fini()
		el := terminal.NewElement(clock)
		ov := terminal.NewOverlay(clock)
		r := terminal.NewRenderer(screen, el, ov, terminal.WithCardSize(20, 8), terminal.WithTitle("hi"))

		Convey("Then the viewport is the screen in pixels", func() {
			w, h := r.Size()
			So(w, ShouldEqual, 80*terminal.DefaultCellWidth)
			So(h, ShouldEqual, 24*terminal.DefaultCellHeight)
		})

		Convey("Then the centre is on the card and the corner is not", func() {
			So(r.Contains(40, 12), ShouldBeTrue)
			So(r.Contains(0, 0), ShouldBeFalse)
		})

		Convey("When the card is moved right by 240px", func() {
			el.Write(transform.State{X: 240})

			Convey("Then the hit area moves 30 cells", func() {
				So(r.Contains(40, 12), ShouldBeFalse)
				So(r.Contains(70, 12), ShouldBeTrue)
			})
		})

		Convey("When the card is hidden", func() {
			el.SetVisible(false)
			So(r.Contains(40, 12), ShouldBeFalse)
		})

		Convey("When a frame is drawn", func() {
			r.SetStatus("ready")
			r.Draw()

			Convey("Then the card, its title and the status line are on screen", func() {
				_, _, cardStyle, _ := screen.GetContent(40, 11)
				_, _, emptyStyle, _ := screen.GetContent(2, 2)
				So(cardStyle, ShouldNotEqual, emptyStyle)

				title, _, _, _ := screen.GetContent(39, 12)
				So(title, ShouldEqual, 'h')

				status, _, _, _ := screen.GetContent(0, 23)
				So(status, ShouldEqual, 'r')
			})
		})

		Convey("When the card is tinted", func() {
			r.Draw()
			_, _, plain, _ := screen.GetContent(40, 11)
			ov.SetTint(transform.Tint{R: 255, A: 0.8})
			r.Draw()
			_, _, tinted, _ := screen.GetContent(40, 11)

			Convey("Then its fill changes", func() {
				So(tinted, ShouldNotEqual, plain)
			})
		})
	})
}

func TestInput(t *testing.T) {
	Convey("Given mouse input over a card", t, func() {
		clock := animation.NewFakeClock(epoch)
		screen := newScreen()
		defer screen.Fini()
		el := terminal.NewElement(clock)
		r := terminal.NewRenderer(screen, el, terminal.NewOverlay(clock), terminal.WithCardSize(20, 8))
		in := terminal.NewInput(r)

		kinds := func(evs []model.Event) []model.Kind {
			out := make([]model.Kind, 0, len(evs))
			for _, ev := range evs {
				out = append(out, ev.Kind)
			}
			return out
		}

		Convey("When the card is pressed, dragged and released", func() {
			press := in.Mouse(tcell.NewEventMouse(40, 12, tcell.Button1, tcell.ModNone))
			move := in.Mouse(tcell.NewEventMouse(42, 12, tcell.Button1, tcell.ModNone))
			release := in.Mouse(tcell.NewEventMouse(42, 12, tcell.ButtonNone, tcell.ModNone))

			Convey("Then press, move and release are produced in pixels", func() {
				So(kinds(press), ShouldResemble, []model.Kind{model.Press})
				So(kinds(move), ShouldResemble, []model.Kind{model.Move})
				So(kinds(release), ShouldResemble, []model.Kind{model.Release})
				So(move[0].X-press[0].X, ShouldEqual, 2*terminal.DefaultCellWidth)
			})
		})

		Convey("When the drag leaves the card", func() {
			in.Mouse(tcell.NewEventMouse(40, 12, tcell.Button1, tcell.ModNone))
			leave := in.Mouse(tcell.NewEventMouse(40, 1, tcell.Button1, tcell.ModNone))
			after := in.Mouse(tcell.NewEventMouse(40, 1, tcell.ButtonNone, tcell.ModNone))

			Convey("Then it ends with leave and nothing after", func() {
				So(kinds(leave), ShouldResemble, []model.Kind{model.Move, model.Leave})
				So(after, ShouldBeEmpty)
			})
		})

		Convey("When the press is off the card", func() {
			evs := in.Mouse(tcell.NewEventMouse(1, 1, tcell.Button1, tcell.ModNone))
			evs = append(evs, in.Mouse(tcell.NewEventMouse(40, 12, tcell.Button1, tcell.ModNone))...)

			Convey("Then nothing is produced", func() {
				So(evs, ShouldBeEmpty)
			})
		})
	})
}

func TestKeys(t *testing.T) {
	Convey("Given demo keys", t, func() {
		key := func(r rune) *tcell.EventKey { return tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone) }

		Convey("Then h, j, k and l swipe", func() {
			for r, dir := range map[rune]string{'h': "left", 'j': "down", 'k': "up", 'l': "right"} {
				ev, ok := terminal.Command(key(r))
				So(ok, ShouldBeTrue)
				So(ev.Kind, ShouldEqual, model.Swipe)
				So(ev.Direction, ShouldEqual, dir)
			}
		})

		Convey("Then r resets", func() {
			ev, ok := terminal.Command(key('r'))
			So(ok, ShouldBeTrue)
			So(ev.Kind, ShouldEqual, model.Reset)
		})

		Convey("Then other keys are ignored", func() {
			_, ok := terminal.Command(key('x'))
			So(ok, ShouldBeFalse)
			_, ok = terminal.Command(tcell.NewEventKey(tcell.KeyEnter, 0, tcell.ModNone))
			So(ok, ShouldBeFalse)
		})

		Convey("Then q and Esc quit", func() {
			So(terminal.IsQuit(key('q')), ShouldBeTrue)
			So(terminal.IsQuit(tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone)), ShouldBeTrue)
			So(terminal.IsQuit(key('h')), ShouldBeFalse)
		})
	})
}
