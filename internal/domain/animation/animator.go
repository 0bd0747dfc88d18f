package animation

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/okian/flick/internal/domain/geometry"
	"github.com/okian/flick/internal/domain/transform"
)

// Default animation configuration constants.
const (
	DefaultSnapBack      = 300 * time.Millisecond
	DefaultBouncePower   = 0.2
	DefaultRotationPower = 200.0

	// settleFraction of the snap-back elapses before the card is forced to rest.
	settleFraction = 0.75
	// settleTransition is the near-zero transition left behind after a return.
	settleTransition = 10 * time.Millisecond
	// restEpsilon treats decoded rotations this close to zero as no rotation.
	restEpsilon = 1e-9
)

// Option applies a configuration option to the Animator.
type Option func(*Animator)

// WithClock sets the clock animations wait on.
func WithClock(c Clock) Option {
	return func(a *Animator) {
		if c != nil {
			a.clock = c
		}
	}
}

// WithRand sets the random source used for exit spin.
func WithRand(r *rand.Rand) Option {
	return func(a *Animator) {
		if r != nil {
			a.rng = r
		}
	}
}

// WithViewport sets the area an exit has to clear.
func WithViewport(v transform.Viewport) Option {
	return func(a *Animator) {
		if v != nil {
			a.viewport = v
		}
	}
}

// WithSnapBack sets the duration of the return animation.
func WithSnapBack(d time.Duration) Option {
	return func(a *Animator) {
		if d > 0 {
			a.snapBack = d
		}
	}
}

// WithBouncePower sets the overshoot fraction of the return animation.
func WithBouncePower(p float64) Option {
	return func(a *Animator) {
		if p >= 0 {
			a.bouncePower = p
		}
	}
}

// WithRotationPower sets the maximum random spin added on exit, in degrees.
func WithRotationPower(p float64) Option {
	return func(a *Animator) {
		if p >= 0 {
			a.rotationPower = p
		}
	}
}

// Animator computes and runs exit and return animations.
type Animator struct {
	mu            sync.Mutex
	clock         Clock
	rng           *rand.Rand
	viewport      transform.Viewport
	snapBack      time.Duration
	bouncePower   float64
	rotationPower float64
}

// NewAnimator creates an animator with configuration options.
func NewAnimator(opts ...Option) *Animator {
	a := &Animator{
		clock:         NewRealClock(),
		rng:           rand.New(rand.NewSource(time.Now().UnixNano())), //nolint:gosec // visual jitter only
		viewport:      transform.FixedViewport{},
		snapBack:      DefaultSnapBack,
		bouncePower:   DefaultBouncePower,
		rotationPower: DefaultRotationPower,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Tune applies options to a live animator.
func (a *Animator) Tune(opts ...Option) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, opt := range opts {
		opt(a)
	}
}

// Viewport returns the area exits have to clear.
func (a *Animator) Viewport() transform.Viewport {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.viewport
}

// Clock returns the clock the animator waits on.
func (a *Animator) Clock() Clock {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.clock
}

// Exit describes a launched exit animation.
type Exit struct {
	From       transform.State
	To         transform.State
	Velocity   geometry.Velocity
	Transition transform.Transition
}

// Duration is how long the card takes to clear the viewport.
func (e Exit) Duration() time.Duration { return e.Transition.Duration }

// ExitDuration is the time a card released at v needs to travel the viewport
// diagonal, which clears the screen whatever the direction.
func ExitDuration(viewport transform.Viewport, v geometry.Velocity) (time.Duration, error) {
	w, h := viewport.Size()
	diagonal := geometry.Distance(w, h)
	if diagonal <= 0 {
		return 0, ErrNoViewport
	}
	speed := v.Speed()
	if speed <= 0 || !geometry.Finite(speed) {
		return 0, fmt.Errorf("%w: %+v", ErrZeroVelocity, v)
	}
	return seconds(diagonal / speed), nil
}

// Launch starts an exit: it writes the off-screen target with an eased
// transition and clears the overlay, then returns without waiting.
func (a *Animator) Launch(el transform.Element, ov transform.Overlay, v geometry.Velocity, easeIn bool) (Exit, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	d, err := ExitDuration(a.viewport, v)
	if err != nil {
		return Exit{}, err
	}
	secs := d.Seconds()

	x, y := el.Translation()
	from := transform.State{X: x, Y: y, Rotation: el.Rotation()}
	to := transform.State{
		X:        v.X*secs + from.X,
		Y:        -v.Y*secs + from.Y,
		Rotation: a.spinLocked(from.Rotation),
	}

	curve := transform.EaseOut
	if easeIn {
		curve = transform.Ease
	}
	tr := transform.Transition{Curve: curve, Duration: d}

	el.SetTransition(tr)
	el.Write(to)
	if ov != nil {
		ov.SetTint(transform.Clear)
	}

	return Exit{From: from, To: to, Velocity: v, Transition: tr}, nil
}

// Wait blocks until a launched exit has run for its full duration.
func (a *Animator) Wait(ctx context.Context, e Exit) error {
	return a.Clock().Sleep(ctx, e.Duration())
}

// AnimateOut launches an exit and blocks until it has visually completed.
func (a *Animator) AnimateOut(ctx context.Context, el transform.Element, ov transform.Overlay, v geometry.Velocity, easeIn bool) (Exit, error) {
	e, err := a.Launch(el, ov, v, easeIn)
	if err != nil {
		return Exit{}, err
	}
	if err := a.Wait(ctx, e); err != nil {
		return e, fmt.Errorf("wait for exit: %w", err)
	}
	return e, nil
}

// spinLocked keeps the card turning the way it already leans. A card at rest
// picks a random side.
func (a *Animator) spinLocked(current float64) float64 {
	r := a.rng.Float64()
	switch {
	case math.Abs(current) < restEpsilon:
		return (r - 0.5) * a.rotationPower
	case current > 0:
		return r*a.rotationPower/2 + current
	default:
		return (r-1)*a.rotationPower/2 + current
	}
}

// Return is a pending return animation.
type Return struct {
	mu        sync.Mutex
	timers    []Timer
	cancelled bool
	settled   bool
	rest      func()
	finish    func()
	// Overshoot is the state the card bounced to before settling.
	Overshoot transform.State
}

// Cancel stops the settle callbacks that have not fired yet.
func (r *Return) Cancel() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cancelled = true
	for _, t := range r.timers {
		t.Stop()
	}
}

// Settle cancels the pending callbacks and applies what they had left to do
// at once, leaving the card at rest.
func (r *Return) Settle() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancelled || r.settled {
		return
	}
	r.cancelled = true
	for _, t := range r.timers {
		t.Stop()
	}
	r.rest()
	r.finish()
}

func (r *Return) run(f func()) func() {
	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		if r.cancelled {
			return
		}
		f()
	}
}

// AnimateBack springs the card back towards rest. It first overshoots to
// -bouncePower times the current offset and tilt, snaps to neutral after most
// of the snap-back has elapsed, then leaves a near-zero transition in place
// for the next interaction.
func (a *Animator) AnimateBack(el transform.Element, ov transform.Overlay) *Return {
	a.mu.Lock()
	snap := a.snapBack
	bounce := a.bouncePower
	clock := a.clock
	a.mu.Unlock()

	el.SetTransition(transform.Transition{Curve: transform.Ease, Duration: snap})
	x, y := el.Translation()
	overshoot := transform.State{X: x, Y: y, Rotation: el.Rotation()}.Scale(-bounce)
	el.Write(overshoot)
	if ov != nil {
		ov.SetTint(transform.Clear)
	}

	settle := transform.Transition{Curve: transform.Ease, Duration: settleTransition}
	r := &Return{
		Overshoot: overshoot,
		rest:      func() { el.Write(transform.Neutral) },
		finish: func() {
			el.SetTransition(settle)
			if ov != nil {
				ov.SetTransition(settle)
			}
		},
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.timers = append(r.timers,
		clock.AfterFunc(time.Duration(float64(snap)*settleFraction), r.run(r.rest)),
		clock.AfterFunc(snap, r.run(func() {
			r.finish()
			r.settled = true
		})),
	)
	return r
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
