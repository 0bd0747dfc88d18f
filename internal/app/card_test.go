package app_test

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/okian/flick/internal/adapters/terminal"
	"github.com/okian/flick/internal/app"
	"github.com/okian/flick/internal/domain/animation"
	"github.com/okian/flick/internal/domain/geometry"
	"github.com/okian/flick/internal/domain/gesture"
	"github.com/okian/flick/internal/domain/model"
	"github.com/okian/flick/internal/domain/transform"
	. "github.com/smartystreets/goconvey/convey"
)

var epoch = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

type recorder struct {
	mu    sync.Mutex
	calls []string
}

func (r *recorder) add(s string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, s)
}

func (r *recorder) onSwipe(d geometry.Direction) { r.add("swipe:" + d.String()) }
func (r *recorder) onLeft(d geometry.Direction)  { r.add("left:" + d.String()) }

func (r *recorder) list() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.calls))
	copy(out, r.calls)
	return out
}

type harness struct {
	clock *animation.FakeClock
	el    *transform.MemoryElement
	ov    *transform.MemoryOverlay
	rec   *recorder
	card  *app.Card
}

func newHarness(opts ...app.Option) *harness {
	h := &harness{
		clock: animation.NewFakeClock(epoch),
		el:    transform.NewMemoryElement(),
		ov:    transform.NewMemoryOverlay(),
		rec:   &recorder{},
	}
	viewport := transform.FixedViewport{Width: 400, Height: 800}
	base := []app.Option{
		app.WithClassifier(gesture.NewClassifier(gesture.WithViewport(viewport))),
		app.WithAnimator(animation.NewAnimator(
			animation.WithClock(h.clock),
			animation.WithViewport(viewport),
			animation.WithRand(rand.New(rand.NewSource(7))),
		)),
		app.WithRand(rand.New(rand.NewSource(11))),
		app.WithOnSwipe(h.rec.onSwipe),
		app.WithOnCardLeftScreen(h.rec.onLeft),
	}
	card, err := app.NewCard(h.el, h.ov, append(base, opts...)...)
	if err != nil {
		panic(err)
	}
	h.card = card
	return h
}

func at(x, y float64, d time.Duration) geometry.Sample {
	return geometry.Sample{X: x, Y: y, Time: epoch.Add(d)}
}

// drag presses at (100, 100) and moves horizontally by dx over dt.
func (h *harness) drag(dx float64, dt time.Duration) {
	ctx := context.Background()
	h.card.Start(ctx, gesture.Mouse, at(100, 100, 0))
	h.card.Move(ctx, at(100+dx, 100, dt))
}

// releaseAsync runs Release in the background and returns its result channel.
func (h *harness) releaseAsync() <-chan error {
	done := make(chan error, 1)
	go func() { done <- h.card.Release(context.Background()) }()
	return done
}

func TestNewCard(t *testing.T) {
	Convey("Given no element", t, func() {
		card, err := app.NewCard(nil, nil)

		Convey("Then construction fails", func() {
			So(card, ShouldBeNil)
			So(errors.Is(err, app.ErrNoElement), ShouldBeTrue)
		})
	})

	Convey("Given an element without a viewport", t, func() {
		card, err := app.NewCard(transform.NewMemoryElement(), nil)

		Convey("Then construction fails since no exit could clear the screen", func() {
			So(card, ShouldBeNil)
			So(errors.Is(err, animation.ErrNoViewport), ShouldBeTrue)
		})
	})

	Convey("Given an element with a viewport and no overlay", t, func() {
		card, err := app.NewCard(transform.NewMemoryElement(), nil,
			app.WithViewport(transform.FixedViewport{Width: 400, Height: 800}))
		So(err, ShouldBeNil)

		Convey("Then the card is usable", func() {
			So(card.Gone(), ShouldBeFalse)
			So(func() { _ = card.Release(context.Background()) }, ShouldNotPanic)
		})

		Convey("Then the default animator can throw it off screen", func() {
			So(card.Swipe(context.Background(), "left"), ShouldBeNil)
			So(card.Gone(), ShouldBeTrue)
		})
	})
}

func TestReleaseBelowThreshold(t *testing.T) {
	Convey("Given a card dragged 10px right over 100ms", t, func() {
		h := newHarness()
		h.drag(10, 100*time.Millisecond)

		Convey("Then it follows the pointer with a small tilt", func() {
			st := h.el.State()
			So(st.X, ShouldAlmostEqual, 10, 1e-9)
			So(st.Rotation, ShouldAlmostEqual, 0.5, 1e-9)
			So(h.card.Session().Velocity.X, ShouldAlmostEqual, 100, 1e-9)
			So(h.ov.Tint().A, ShouldAlmostEqual, 10.0/400, 1e-9)
		})

		Convey("When it is released", func() {
			err := h.card.Release(context.Background())

			Convey("Then it springs back without any callback", func() {
				So(err, ShouldBeNil)
				So(h.rec.list(), ShouldBeEmpty)
				So(h.el.Visible(), ShouldBeTrue)
				So(h.el.State().X, ShouldAlmostEqual, -2, 1e-9)
				So(h.clock.Pending(), ShouldEqual, 2)
			})

			Convey("Then it rests after the snap-back", func() {
				h.clock.Advance(animation.DefaultSnapBack)
				So(h.el.State().ApproxEqual(transform.Neutral, 1e-9), ShouldBeTrue)
				So(h.clock.Pending(), ShouldEqual, 0)
			})
		})
	})
}

func TestReleaseAboveThreshold(t *testing.T) {
	Convey("Given a card flung left at 1000 px/s", t, func() {
		h := newHarness()
		h.drag(-50, 50*time.Millisecond)

		Convey("When it is released", func() {
			done := h.releaseAsync()
			h.clock.BlockUntilSleepers(1)

			Convey("Then onSwipe fires before the exit completes", func() {
				So(h.rec.list(), ShouldResemble, []string{"swipe:left"})
				So(h.el.Visible(), ShouldBeTrue)
				So(h.card.Gone(), ShouldBeTrue)
				So(h.ov.Tint().IsClear(), ShouldBeTrue)

				h.clock.Advance(time.Second)
				So(<-done, ShouldBeNil)
			})

			Convey("Then the card leaves after about 0.894s", func() {
				h.clock.Advance(893 * time.Millisecond)
				So(h.rec.list(), ShouldHaveLength, 1)

				h.clock.Advance(2 * time.Millisecond)
				So(<-done, ShouldBeNil)
				So(h.rec.list(), ShouldResemble, []string{"swipe:left", "left:left"})
				So(h.el.Visible(), ShouldBeFalse)
				So(h.el.Transition().Duration.Seconds(), ShouldAlmostEqual, 0.8944, 0.009)
			})
		})
	})
}

func TestPreventSwipe(t *testing.T) {
	Convey("Given a card that may not be swiped left", t, func() {
		h := newHarness(app.WithPreventSwipe(geometry.Left, geometry.Up))
		h.drag(-50, 50*time.Millisecond)

		Convey("When a left swipe is released", func() {
			err := h.card.Release(context.Background())

			Convey("Then the swipe is reported but the card returns", func() {
				So(err, ShouldBeNil)
				So(h.rec.list(), ShouldResemble, []string{"swipe:left"})
				So(h.el.Visible(), ShouldBeTrue)
				So(h.card.Gone(), ShouldBeFalse)
				So(h.clock.Pending(), ShouldEqual, 2)
			})
		})

		Convey("When a right swipe is released", func() {
			h.card.Start(context.Background(), gesture.Mouse, at(100, 100, time.Second))
			h.card.Move(context.Background(), at(150, 100, time.Second+50*time.Millisecond))
			done := h.releaseAsync()
			h.clock.BlockUntilSleepers(1)
			h.clock.Advance(time.Second)

			Convey("Then it leaves", func() {
				So(<-done, ShouldBeNil)
				So(h.rec.list(), ShouldResemble, []string{"swipe:right", "left:right"})
			})
		})
	})

	Convey("Given a card with flicking turned off", t, func() {
		h := newHarness(app.WithFlickOnSwipe(false))
		h.drag(80, 40*time.Millisecond)
		err := h.card.Release(context.Background())

		Convey("Then the swipe is reported and the card returns", func() {
			So(err, ShouldBeNil)
			So(h.rec.list(), ShouldResemble, []string{"swipe:right"})
			So(h.el.Visible(), ShouldBeTrue)
		})
	})
}

func TestScrollBlocksDrag(t *testing.T) {
	Convey("Given an interaction that starts vertically", t, func() {
		h := newHarness()
		ctx := context.Background()
		h.card.Start(ctx, gesture.Mouse, at(100, 100, 0))
		h.card.Move(ctx, at(100, 110, 10*time.Millisecond))

		Convey("When the pointer later moves far horizontally", func() {
			h.card.Move(ctx, at(300, 112, 20*time.Millisecond))
			h.card.Move(ctx, at(-200, 112, 30*time.Millisecond))

			Convey("Then the card never moved", func() {
				So(h.card.Session().Phase, ShouldEqual, gesture.Scroll)
				So(h.el.Writes(), ShouldBeEmpty)
				So(h.card.Session().Velocity.IsZero(), ShouldBeTrue)
			})

			Convey("Then release returns the card", func() {
				So(h.card.Release(ctx), ShouldBeNil)
				So(h.rec.list(), ShouldBeEmpty)
				So(h.el.Visible(), ShouldBeTrue)
			})
		})
	})
}

func TestProgrammaticSwipe(t *testing.T) {
	Convey("Given a card at rest", t, func() {
		h := newHarness()
		ctx := context.Background()

		Convey("When it is swiped left programmatically", func() {
			done := make(chan error, 1)
			go func() { done <- h.card.Swipe(ctx, "left") }()
			h.clock.BlockUntilSleepers(1)

			So(h.rec.list(), ShouldResemble, []string{"swipe:left"})
			So(h.el.Transition().Curve, ShouldResemble, transform.Ease)
			h.clock.Advance(time.Second)

			Convey("Then it leaves with the pointer swipe's callback sequence", func() {
				So(<-done, ShouldBeNil)
				So(h.el.Visible(), ShouldBeFalse)

				pointer := newHarness()
				pointer.drag(-50, 50*time.Millisecond)
				pdone := pointer.releaseAsync()
				pointer.clock.BlockUntilSleepers(1)
				pointer.clock.Advance(time.Second)
				So(<-pdone, ShouldBeNil)

				So(h.rec.list(), ShouldResemble, pointer.rec.list())
				So(pointer.el.Visible(), ShouldEqual, h.el.Visible())
			})
		})

		Convey("When no direction is given", func() {
			done := make(chan error, 1)
			go func() { done <- h.card.Swipe(ctx, "") }()
			h.clock.BlockUntilSleepers(1)
			h.clock.Advance(time.Second)

			Convey("Then it goes right", func() {
				So(<-done, ShouldBeNil)
				So(h.rec.list(), ShouldResemble, []string{"swipe:right", "left:right"})
				So(h.el.State().X, ShouldBeGreaterThan, 800)
			})
		})

		Convey("When the direction is invalid", func() {
			err := h.card.Swipe(ctx, "sideways")

			Convey("Then it is rejected before anything happens", func() {
				So(errors.Is(err, geometry.ErrInvalidDirection), ShouldBeTrue)
				So(h.rec.list(), ShouldBeEmpty)
				So(h.el.Writes(), ShouldBeEmpty)
			})
		})

		Convey("When prevented directions are set", func() {
			h.card.Tune(app.WithPreventSwipe(geometry.Up))
			done := make(chan error, 1)
			go func() { done <- h.card.Swipe(ctx, "UP") }()
			h.clock.BlockUntilSleepers(1)
			h.clock.Advance(time.Second)

			Convey("Then a programmatic swipe still leaves", func() {
				So(<-done, ShouldBeNil)
				So(h.rec.list(), ShouldResemble, []string{"swipe:up", "left:up"})
			})
		})

		Convey("When it is swiped twice", func() {
			done := make(chan error, 1)
			go func() { done <- h.card.Swipe(ctx, "down") }()
			h.clock.BlockUntilSleepers(1)
			err := h.card.Swipe(ctx, "down")
			h.clock.Advance(time.Second)

			Convey("Then the second swipe is refused", func() {
				So(errors.Is(err, app.ErrCardGone), ShouldBeTrue)
				So(<-done, ShouldBeNil)
				So(h.rec.list(), ShouldResemble, []string{"swipe:down", "left:down"})
			})
		})
	})
}

func TestDoubleRelease(t *testing.T) {
	Convey("Given a slow drag", t, func() {
		h := newHarness()
		h.drag(10, 100*time.Millisecond)

		Convey("When release is handled twice", func() {
			ctx := context.Background()
			So(h.card.Release(ctx), ShouldBeNil)
			writes := len(h.el.Writes())
			So(h.card.Release(ctx), ShouldBeNil)

			Convey("Then the return runs once", func() {
				So(len(h.el.Writes()), ShouldEqual, writes)
				So(h.clock.Pending(), ShouldEqual, 2)
			})
		})
	})

	Convey("Given a fast drag", t, func() {
		h := newHarness()
		h.drag(60, 50*time.Millisecond)

		Convey("When release is handled twice", func() {
			done := h.releaseAsync()
			h.clock.BlockUntilSleepers(1)
			So(h.card.Release(context.Background()), ShouldBeNil)
			h.clock.Advance(time.Second)

			Convey("Then the exit runs once", func() {
				So(<-done, ShouldBeNil)
				So(h.rec.list(), ShouldResemble, []string{"swipe:right", "left:right"})
			})
		})
	})
}

func TestStartSettlesReturn(t *testing.T) {
	Convey("Given a card springing back", t, func() {
		h := newHarness()
		h.drag(10, 100*time.Millisecond)
		So(h.card.Release(context.Background()), ShouldBeNil)

		Convey("When a new interaction starts", func() {
			So(h.card.Start(context.Background(), gesture.Touch, at(0, 0, time.Second)), ShouldBeTrue)

			Convey("Then the card is at rest and the stale timers are gone", func() {
				So(h.el.State().ApproxEqual(transform.Neutral, 1e-9), ShouldBeTrue)
				So(h.clock.Pending(), ShouldEqual, 0)
				So(h.card.Session().Phase, ShouldEqual, gesture.Idle)
				So(h.card.Session().Source, ShouldEqual, gesture.Touch)
			})
		})
	})
}

func TestRegrabWhileEasing(t *testing.T) {
	Convey("Given a rendered card partway through its spring back", t, func() {
		clock := animation.NewFakeClock(epoch)
		el := terminal.NewElement(clock)
		viewport := transform.FixedViewport{Width: 400, Height: 800}
		card, err := app.NewCard(el, terminal.NewOverlay(clock),
			app.WithAnimator(animation.NewAnimator(animation.WithClock(clock))),
			app.WithViewport(viewport),
		)
		So(err, ShouldBeNil)

		ctx := context.Background()
		card.Start(ctx, gesture.Mouse, at(100, 100, 0))
		card.Move(ctx, at(200, 100, time.Second))
		So(card.Release(ctx), ShouldBeNil)
		clock.Advance(100 * time.Millisecond)
		x, _ := el.Translation()
		So(x, ShouldBeBetween, 0, 100)

		Convey("When it is grabbed again and dragged 5px right", func() {
			So(card.Start(ctx, gesture.Mouse, at(300, 100, 2*time.Second)), ShouldBeTrue)
			card.Move(ctx, at(305, 100, 2100*time.Millisecond))

			Convey("Then the drag starts from rest", func() {
				last := card.Session().Last
				So(last.X, ShouldAlmostEqual, 5, 1e-9)
				So(last.Y, ShouldAlmostEqual, 0, 1e-9)

				clock.Advance(time.Second)
				x, y := el.Translation()
				So(x, ShouldAlmostEqual, 5, 1e-9)
				So(y, ShouldAlmostEqual, 0, 1e-9)
			})
		})
	})
}

func TestReset(t *testing.T) {
	Convey("Given a card that left the screen", t, func() {
		h := newHarness()
		ctx := context.Background()
		done := make(chan error, 1)
		go func() { done <- h.card.Swipe(ctx, "right") }()
		h.clock.BlockUntilSleepers(1)
		h.clock.Advance(time.Second)
		So(<-done, ShouldBeNil)
		So(h.card.Start(ctx, gesture.Mouse, at(0, 0, 0)), ShouldBeFalse)

		Convey("When it is reset", func() {
			h.card.Reset(ctx)

			Convey("Then it is visible at rest and accepts interactions", func() {
				So(h.el.Visible(), ShouldBeTrue)
				So(h.el.State().ApproxEqual(transform.Neutral, 1e-9), ShouldBeTrue)
				So(h.card.Gone(), ShouldBeFalse)
				So(h.card.Start(ctx, gesture.Mouse, at(0, 0, 2*time.Second)), ShouldBeTrue)
			})
		})
	})

	Convey("Given a card reset while its exit is in flight", t, func() {
		h := newHarness()
		ctx := context.Background()
		done := make(chan error, 1)
		go func() { done <- h.card.Swipe(ctx, "left") }()
		h.clock.BlockUntilSleepers(1)
		h.card.Reset(ctx)
		h.clock.Advance(time.Second)

		Convey("Then the stale exit neither hides nor reports", func() {
			So(<-done, ShouldBeNil)
			So(h.el.Visible(), ShouldBeTrue)
			So(h.rec.list(), ShouldResemble, []string{"swipe:left"})
		})
	})
}

func TestTune(t *testing.T) {
	Convey("Given a card with a raised threshold", t, func() {
		h := newHarness()
		h.card.Tune(app.WithSwipeThreshold(2000))
		h.card.SetMaxTilt(0)
		h.drag(-50, 50*time.Millisecond)

		Convey("Then a 1000 px/s release returns", func() {
			So(h.el.State().Rotation, ShouldAlmostEqual, 0, 1e-9)
			So(h.card.Release(context.Background()), ShouldBeNil)
			So(h.rec.list(), ShouldBeEmpty)
		})
	})
}

func TestHandleMouse(t *testing.T) {
	Convey("Given a card driven by mouse events", t, func() {
		h := newHarness()
		ctx := context.Background()
		ev := func(k model.Kind, x float64, d time.Duration) model.Event {
			return model.Event{Kind: k, Source: gesture.Mouse, X: x, Y: 50, TS: epoch.Add(d)}
		}

		Convey("When the mouse moves without a press", func() {
			So(h.card.Handle(ctx, ev(model.Move, 300, 10*time.Millisecond)), ShouldBeNil)

			Convey("Then nothing moves", func() {
				So(h.el.Writes(), ShouldBeEmpty)
			})
		})

		Convey("When a fast drag leaves the card", func() {
			So(h.card.Handle(ctx, ev(model.Press, 100, 0)), ShouldBeNil)
			So(h.card.Handle(ctx, ev(model.Move, 50, 50*time.Millisecond)), ShouldBeNil)
			So(h.card.Handle(ctx, ev(model.Leave, 50, 60*time.Millisecond)), ShouldBeNil)
			So(h.card.Handle(ctx, ev(model.Release, 50, 70*time.Millisecond)), ShouldBeNil)
			h.clock.BlockUntilSleepers(1)
			h.clock.Advance(time.Second)
			h.card.Wait()

			Convey("Then leaving released it once", func() {
				So(h.rec.list(), ShouldResemble, []string{"swipe:left", "left:left"})
				So(h.el.Visible(), ShouldBeFalse)
			})
		})

		Convey("When a swipe command arrives", func() {
			So(h.card.Handle(ctx, model.Event{Kind: model.Swipe, Direction: "up"}), ShouldBeNil)
			h.clock.BlockUntilSleepers(1)
			h.clock.Advance(time.Second)
			h.card.Wait()

			Convey("Then the card leaves upwards", func() {
				So(h.rec.list(), ShouldResemble, []string{"swipe:up", "left:up"})
			})
		})

		Convey("When an invalid swipe command arrives", func() {
			err := h.card.Handle(ctx, model.Event{Kind: model.Swipe, Direction: "diagonal"})

			Convey("Then the error is returned", func() {
				So(errors.Is(err, geometry.ErrInvalidDirection), ShouldBeTrue)
			})
		})

		Convey("When an unknown kind arrives", func() {
			err := h.card.Handle(ctx, model.Event{Kind: model.Kind(99)})
			So(errors.Is(err, app.ErrUnknownEvent), ShouldBeTrue)
		})
	})
}

func TestHandleTouch(t *testing.T) {
	Convey("Given a card driven by touch events", t, func() {
		h := newHarness()
		ctx := context.Background()
		ev := func(k model.Kind, x, y float64, d time.Duration) model.Event {
			return model.Event{Kind: k, Source: gesture.Touch, X: x, Y: y, TS: epoch.Add(d)}
		}

		Convey("When a scroll ends", func() {
			So(h.card.Handle(ctx, ev(model.Press, 100, 100, 0)), ShouldBeNil)
			So(h.card.Handle(ctx, ev(model.Move, 100, 140, 10*time.Millisecond)), ShouldBeNil)
			So(h.card.Handle(ctx, ev(model.Move, 400, 150, 20*time.Millisecond)), ShouldBeNil)
			So(h.card.Handle(ctx, ev(model.Release, 400, 150, 30*time.Millisecond)), ShouldBeNil)

			Convey("Then no release animation runs and the phase is reset", func() {
				So(h.el.Writes(), ShouldBeEmpty)
				So(h.clock.Pending(), ShouldEqual, 0)
				So(h.card.Session().Phase, ShouldEqual, gesture.Idle)
				So(h.card.Session().Velocity.IsZero(), ShouldBeTrue)
			})
		})

		Convey("When a touch swipe ends", func() {
			So(h.card.Handle(ctx, ev(model.Press, 100, 100, 0)), ShouldBeNil)
			So(h.card.Handle(ctx, ev(model.Move, 160, 100, 50*time.Millisecond)), ShouldBeNil)
			So(h.card.Handle(ctx, ev(model.Leave, 160, 100, 55*time.Millisecond)), ShouldBeNil)
			So(h.card.Handle(ctx, ev(model.Release, 160, 100, 60*time.Millisecond)), ShouldBeNil)
			h.clock.BlockUntilSleepers(1)
			h.clock.Advance(time.Second)
			h.card.Wait()

			Convey("Then the card leaves with the overlay cleared", func() {
				So(h.rec.list(), ShouldResemble, []string{"swipe:right", "left:right"})
				So(h.ov.Tint().IsClear(), ShouldBeTrue)
				So(h.el.Visible(), ShouldBeFalse)
			})
		})
	})
}
