// Package app drives a swipeable card: it owns the per-interaction gesture
// state, decides on release whether the card leaves the screen or returns to
// rest, and serializes input through a queue and a single dispatcher.
package app

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/okian/flick/internal/domain/animation"
	"github.com/okian/flick/internal/domain/geometry"
	"github.com/okian/flick/internal/domain/gesture"
	"github.com/okian/flick/internal/domain/model"
	"github.com/okian/flick/internal/domain/transform"
	"github.com/okian/flick/pkg/logger"
	"github.com/okian/flick/pkg/metrics"
)

// Default card configuration constants.
const (
	DefaultSwipeThreshold = 300.0  // px/s on either axis
	DefaultSwipePower     = 1000.0 // px/s of a programmatic swipe
	// jitterRange is the spread of the off-axis speed of a programmatic swipe.
	jitterRange = 100.0

	triggerPointer      = "pointer"
	triggerProgrammatic = "programmatic"
)

// Card is the gesture session controller for one card element.
//
// All methods are safe for concurrent use. The mutex is never held while an
// exit animation is waited on or while callbacks run, so a callback may call
// back into the card.
type Card struct {
	mu sync.Mutex

	el         transform.Element
	ov         transform.Overlay
	classifier *gesture.Classifier
	animator   *animation.Animator
	rng        *rand.Rand
	logger     logger.Logger

	flickOnSwipe     bool
	onSwipe          func(geometry.Direction)
	onCardLeftScreen func(geometry.Direction)
	prevent          map[geometry.Direction]struct{}
	threshold        float64
	power            float64

	session   gesture.Session
	rest      geometry.Point
	active    bool
	mouseDown bool
	// released is the one-shot guard: set by the first release of an
	// interaction, cleared by the next Start.
	released bool
	exiting  bool
	gone     bool
	// gen invalidates exits that were in flight when the card was reset.
	gen     uint64
	pending *animation.Return

	inflight sync.WaitGroup
}

// NewCard creates a controller for el. The overlay may be nil. The card needs
// a viewport with an area to throw itself out of, given with WithViewport or
// through the animator passed to WithAnimator.
func NewCard(el transform.Element, ov transform.Overlay, opts ...Option) (*Card, error) {
	if el == nil {
		return nil, ErrNoElement
	}
	c := &Card{
		el:           el,
		ov:           ov,
		classifier:   gesture.NewClassifier(),
		animator:     animation.NewAnimator(),
		rng:          rand.New(rand.NewSource(time.Now().UnixNano())), //nolint:gosec // visual jitter only
		logger:       logger.Nop(),
		flickOnSwipe: true,
		prevent:      map[geometry.Direction]struct{}{},
		threshold:    DefaultSwipeThreshold,
		power:        DefaultSwipePower,
	}
	for _, opt := range opts {
		opt(c)
	}
	if w, h := c.animator.Viewport().Size(); w <= 0 || h <= 0 {
		return nil, fmt.Errorf("new card: %w", animation.ErrNoViewport)
	}
	return c, nil
}

// Tune applies options to a live card. It takes effect from the next event.
func (c *Card) Tune(opts ...Option) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, opt := range opts {
		opt(c)
	}
}

// SetMaxTilt changes how far the card tilts while dragged.
func (c *Card) SetMaxTilt(tilt float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.classifier.SetMaxTilt(tilt)
}

// Session returns a copy of the current interaction state.
func (c *Card) Session() gesture.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

// Gone reports whether the card is leaving or has left the screen.
func (c *Card) Gone() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.exiting || c.gone
}

// Start begins an interaction at the press sample. A pending return is
// settled first so the new drag starts from rest. Start reports false, and
// does nothing, while the card is off screen.
func (c *Card) Start(ctx context.Context, src gesture.Source, press geometry.Sample) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.startLocked(ctx, src, press)
}

func (c *Card) startLocked(ctx context.Context, src gesture.Source, press geometry.Sample) bool {
	if c.exiting || c.gone {
		return false
	}
	if c.pending != nil {
		// Settle writes neutral, but a rendering element may still be
		// easing towards it and would report an in-between position.
		c.pending.Settle()
		c.pending = nil
		c.rest = geometry.Point{X: transform.Neutral.X, Y: transform.Neutral.Y}
	} else {
		x, y := c.el.Translation()
		c.rest = geometry.Point{X: x, Y: y}
	}
	c.session = gesture.NewSession(src, press, c.rest)
	c.active = true
	c.released = false

	metrics.RecordInteractionStarted(src.String())
	c.logger.Debug(ctx, "interaction started",
		logger.String("session", c.session.ID),
		logger.String("source", src.String()),
	)
	return true
}

// Move feeds one pointer sample of the active interaction to the classifier.
func (c *Card) Move(ctx context.Context, s geometry.Sample) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.active {
		return
	}
	c.moveLocked(ctx, s)
}

func (c *Card) moveLocked(ctx context.Context, s geometry.Sample) {
	prev := c.session.Phase
	c.session = c.classifier.Move(c.el, c.ov, s, c.session)
	if c.session.Phase == prev {
		return
	}
	switch c.session.Phase {
	case gesture.Scroll:
		metrics.RecordScrollDetected()
		c.logger.Debug(ctx, "scroll detected", logger.String("session", c.session.ID))
	case gesture.Swipe:
		c.logger.Debug(ctx, "drag detected", logger.String("session", c.session.ID))
	}
}

// outcome is what a release or swipe decided, carried out of the lock.
type outcome struct {
	session    string
	trigger    string
	dir        geometry.Direction
	recognized bool
	exiting    bool
	exit       animation.Exit
	gen        uint64
	err        error

	onSwipe          func(geometry.Direction)
	onCardLeftScreen func(geometry.Direction)
}

// Release ends the interaction. If the last velocity exceeds the swipe
// threshold on either axis the swipe is reported and, unless flicking is off
// or the direction is prevented, the card is thrown off screen. Release then
// blocks until the exit has finished, hides the card and reports that it
// left. Otherwise the card springs back and Release returns at once.
//
// Only the first release of an interaction acts; later calls return nil.
func (c *Card) Release(ctx context.Context) error {
	o := c.release(ctx)
	c.announce(ctx, o)
	return c.complete(ctx, o)
}

func (c *Card) release(ctx context.Context) outcome {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.released {
		metrics.RecordDuplicateRelease()
		return outcome{}
	}
	c.released = true
	c.active = false
	c.mouseDown = false

	v := c.session.Velocity
	c.session.Phase = gesture.Idle
	metrics.ObserveReleaseSpeed(v.Speed())

	o := c.outcomeLocked(triggerPointer)
	if math.Abs(v.X) > c.threshold || math.Abs(v.Y) > c.threshold {
		o.recognized = true
		o.dir = geometry.DirectionOf(v)
		metrics.RecordSwipe(o.dir.String(), triggerPointer)

		_, prevented := c.prevent[o.dir]
		switch {
		case !c.flickOnSwipe:
		case prevented:
			metrics.RecordPreventedSwipe(o.dir.String())
		default:
			if err := c.launchLocked(&o, v, false); err == nil {
				return o
			}
		}
	}

	c.pending = c.animator.AnimateBack(c.el, c.ov)
	metrics.RecordReturn()
	c.logger.Debug(ctx, "card returning",
		logger.String("session", o.session),
		logger.Float64("vx", v.X),
		logger.Float64("vy", v.Y),
	)
	return o
}

func (c *Card) outcomeLocked(trigger string) outcome {
	return outcome{
		session:          c.session.ID,
		trigger:          trigger,
		gen:              c.gen,
		onSwipe:          c.onSwipe,
		onCardLeftScreen: c.onCardLeftScreen,
	}
}

func (c *Card) launchLocked(o *outcome, v geometry.Velocity, easeIn bool) error {
	exit, err := c.animator.Launch(c.el, c.ov, v, easeIn)
	if err != nil {
		o.err = fmt.Errorf("launch %s exit: %w", o.dir, err)
		return o.err
	}
	c.exiting = true
	o.exiting = true
	o.exit = exit
	return nil
}

// Swipe throws the card off screen without any pointer input, with the same
// callback sequence as a swiped release. An empty direction means right.
// preventSwipe and flickOnSwipe only govern pointer swipes.
func (c *Card) Swipe(ctx context.Context, dir string) error {
	o, err := c.swipe(ctx, dir)
	if err != nil {
		return err
	}
	c.announce(ctx, o)
	return c.complete(ctx, o)
}

func (c *Card) swipe(ctx context.Context, raw string) (outcome, error) {
	d := geometry.Right
	if raw != "" {
		var err error
		if d, err = geometry.ParseDirection(raw); err != nil {
			return outcome{}, fmt.Errorf("swipe: %w", err)
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.exiting || c.gone {
		return outcome{}, fmt.Errorf("swipe %s: %w", d, ErrCardGone)
	}
	if c.pending != nil {
		c.pending.Cancel()
		c.pending = nil
	}

	jitter := (c.rng.Float64() - 0.5) * jitterRange
	o := c.outcomeLocked(triggerProgrammatic)
	o.recognized = true
	o.dir = d
	if err := c.launchLocked(&o, d.Fling(c.power, jitter), true); err != nil {
		return outcome{}, err
	}

	// a pointer release still pending for this interaction must not act
	c.released = true
	c.active = false
	c.mouseDown = false
	c.session.Phase = gesture.Idle

	metrics.RecordSwipe(d.String(), triggerProgrammatic)
	c.logger.Debug(ctx, "programmatic swipe", logger.String("direction", d.String()))
	return o, nil
}

// announce fires onSwipe for a recognized swipe.
func (c *Card) announce(ctx context.Context, o outcome) {
	if !o.recognized {
		return
	}
	c.logger.Info(ctx, "swipe recognized",
		logger.String("session", o.session),
		logger.String("direction", o.dir.String()),
		logger.String("trigger", o.trigger),
		logger.Bool("exit", o.exiting),
	)
	if o.onSwipe != nil {
		o.onSwipe(o.dir)
	}
}

// complete waits out a launched exit, hides the card and fires
// onCardLeftScreen. The card is hidden even when ctx ends the wait early,
// since it has already been sent off screen.
func (c *Card) complete(ctx context.Context, o outcome) error {
	if !o.exiting {
		return o.err
	}

	err := c.animator.Wait(ctx, o.exit)

	c.mu.Lock()
	current := o.gen == c.gen
	if current {
		c.exiting = false
		c.gone = true
		c.el.SetVisible(false)
	}
	c.mu.Unlock()

	if err != nil {
		return fmt.Errorf("swipe %s: %w", o.dir, err)
	}
	if !current {
		return nil
	}

	metrics.RecordCardLeftScreen(o.dir.String())
	metrics.ObserveExitDuration(o.exit.Duration())
	c.logger.Info(ctx, "card left screen",
		logger.String("direction", o.dir.String()),
		logger.Duration("duration", o.exit.Duration()),
	)
	if o.onCardLeftScreen != nil {
		o.onCardLeftScreen(o.dir)
	}
	return nil
}

// Reset puts the card back on screen at rest and forgets any interaction.
// An exit still in flight finishes silently without hiding the card.
func (c *Card) Reset(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.gen++
	if c.pending != nil {
		c.pending.Cancel()
		c.pending = nil
	}
	c.session = gesture.Session{}
	c.active = false
	c.mouseDown = false
	c.released = false
	c.exiting = false
	c.gone = false

	c.el.SetTransition(transform.Transition{})
	c.el.Write(transform.Neutral)
	c.el.SetVisible(true)
	if c.ov != nil {
		c.ov.SetTint(transform.Clear)
	}
	c.logger.Debug(ctx, "card reset")
}

// Handle routes one input event. It never blocks on an exit animation: the
// wait runs in the background and Wait joins it.
//
// Mouse moves only count while the button is down, and both button release
// and leaving the card release it. A touch release only acts when the
// interaction is a swipe, and always ends the interaction.
func (c *Card) Handle(ctx context.Context, ev model.Event) error { //nolint:gocritic // hugeParam: events are passed by value through the queue
	switch ev.Kind {
	case model.Press:
		c.mu.Lock()
		if c.startLocked(ctx, ev.Source, ev.Sample()) && ev.Source == gesture.Mouse {
			c.mouseDown = true
		}
		c.mu.Unlock()
		return nil

	case model.Move:
		c.handleMove(ctx, ev)
		return nil

	case model.Release, model.Leave:
		if !c.takeRelease(ev) {
			return nil
		}
		o := c.release(ctx)
		c.announce(ctx, o)
		return c.background(ctx, o)

	case model.Swipe:
		o, err := c.swipe(ctx, ev.Direction)
		if err != nil {
			return err
		}
		c.announce(ctx, o)
		return c.background(ctx, o)

	case model.Reset:
		c.Reset(ctx)
		return nil

	default:
		return fmt.Errorf("%w: %d", ErrUnknownEvent, ev.Kind)
	}
}

func (c *Card) handleMove(ctx context.Context, ev model.Event) { //nolint:gocritic // hugeParam: see Handle
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.active {
		return
	}
	switch ev.Source {
	case gesture.Mouse:
		if !c.mouseDown {
			return
		}
	case gesture.Touch:
		if c.session.Phase == gesture.Scroll {
			c.session.Velocity = geometry.Velocity{}
			c.session.Last = geometry.At(c.rest, ev.TS)
			return
		}
	}
	c.moveLocked(ctx, ev.Sample())
}

// takeRelease applies the per-source release rules and reports whether the
// release logic should run.
func (c *Card) takeRelease(ev model.Event) bool { //nolint:gocritic // hugeParam: see Handle
	c.mu.Lock()
	defer c.mu.Unlock()

	if ev.Source == gesture.Mouse {
		if !c.mouseDown {
			return false
		}
		c.mouseDown = false
		return true
	}

	if ev.Kind != model.Release {
		return false
	}
	swiping := c.active && c.session.Phase == gesture.Swipe
	c.session.Phase = gesture.Idle
	if !swiping {
		c.active = false
	}
	return swiping
}

func (c *Card) background(ctx context.Context, o outcome) error {
	if !o.exiting {
		return o.err
	}
	c.inflight.Add(1)
	go func() {
		defer c.inflight.Done()
		if err := c.complete(ctx, o); err != nil {
			c.logger.Warn(ctx, "exit interrupted", logger.Error(err))
		}
	}()
	return nil
}

// Wait blocks until every exit started by Handle has completed.
func (c *Card) Wait() {
	c.inflight.Wait()
}
