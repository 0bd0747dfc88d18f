package animation

import (
	"context"
	"sort"
	"sync"
	"time"
)

// FakeClock is a manually advanced Clock for tests. Callbacks and sleepers
// fire from Advance, in deadline order.
type FakeClock struct {
	mu     sync.Mutex
	cond   *sync.Cond
	now    time.Time
	timers []*fakeTimer
}

type fakeTimer struct {
	clock *FakeClock
	at    time.Time
	fn    func()
	wake  chan struct{}
	done  bool
}

// NewFakeClock creates a fake clock starting at start.
func NewFakeClock(start time.Time) *FakeClock {
	c := &FakeClock{now: start}
	c.cond = sync.NewCond(&c.mu)
	return c
}

// Now implements Clock.
func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// AfterFunc implements Clock.
func (c *FakeClock) AfterFunc(d time.Duration, f func()) Timer {
	return c.add(d, f, nil)
}

// Sleep implements Clock.
func (c *FakeClock) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	wake := make(chan struct{})
	t := c.add(d, nil, wake)
	select {
	case <-wake:
		return nil
	case <-ctx.Done():
		t.Stop()
		return ctx.Err()
	}
}

func (c *FakeClock) add(d time.Duration, f func(), wake chan struct{}) *fakeTimer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{clock: c, at: c.now.Add(d), fn: f, wake: wake}
	c.timers = append(c.timers, t)
	c.cond.Broadcast()
	return t
}

// Stop implements Timer.
func (t *fakeTimer) Stop() bool {
	c := t.clock
	c.mu.Lock()
	defer c.mu.Unlock()
	if t.done {
		return false
	}
	t.done = true
	c.removeLocked(t)
	c.cond.Broadcast()
	return true
}

func (c *FakeClock) removeLocked(t *fakeTimer) {
	for i, p := range c.timers {
		if p == t {
			c.timers = append(c.timers[:i], c.timers[i+1:]...)
			return
		}
	}
}

// Advance moves the clock forward and fires everything that became due.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	var due []*fakeTimer
	kept := c.timers[:0]
	for _, t := range c.timers {
		if !t.at.After(c.now) {
			t.done = true
			due = append(due, t)
			continue
		}
		kept = append(kept, t)
	}
	c.timers = kept
	c.cond.Broadcast()
	c.mu.Unlock()

	sort.SliceStable(due, func(i, j int) bool { return due[i].at.Before(due[j].at) })
	for _, t := range due {
		if t.wake != nil {
			close(t.wake)
		}
		if t.fn != nil {
			t.fn()
		}
	}
}

// Pending returns the number of timers and sleepers not yet fired.
func (c *FakeClock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.timers)
}

// BlockUntilSleepers waits until at least n goroutines are blocked in Sleep.
func (c *FakeClock) BlockUntilSleepers(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for c.sleepersLocked() < n {
		c.cond.Wait()
	}
}

func (c *FakeClock) sleepersLocked() int {
	n := 0
	for _, t := range c.timers {
		if t.wake != nil {
			n++
		}
	}
	return n
}
