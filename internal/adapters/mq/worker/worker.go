// Package worker dispatches queued input events to a handler, one at a time.
//
// A card is a single-owner state machine: events must reach it in the order
// they were produced, so there is exactly one dispatcher per card rather than
// a pool.
package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/flick/internal/domain/model"
	"github.com/okian/flick/pkg/logger"
	"github.com/okian/flick/pkg/metrics"
)

// Event abstracts what the dispatcher reads off the queue.
type Event = model.Event

// Handler consumes dispatched events.
type Handler interface {
	Handle(ctx context.Context, ev Event) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, ev Event) error

// Handle implements Handler.
func (f HandlerFunc) Handle(ctx context.Context, ev Event) error { return f(ctx, ev) } //nolint:gocritic // hugeParam: Event is passed by value like the queue does

// Queue defines how the dispatcher receives events.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Event
}

// Worker processes events from a queue.
type Worker interface {
	// Run starts the worker loop until ctx is canceled.
	Run(ctx context.Context)

	// Shutdown gracefully stops the worker.
	Shutdown(ctx context.Context) error

	// Done is closed when Run has returned.
	Done() <-chan struct{}
}

// InMemoryWorker implements Worker with a single dispatch loop.
type InMemoryWorker struct {
	queue   Queue
	handler Handler
	name    string

	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a new dispatcher with configuration options.
func NewInMemoryWorker(queue Queue, handler Handler, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:    queue,
		handler:  handler,
		name:     "dispatcher",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger.Nop(),
	}

	for _, opt := range opts {
		opt(w)
	}

	w.logger = w.logger.Named(w.name)
	return w
}

// Run starts the worker loop. It returns when ctx is done, Shutdown is
// called, or the queue is closed and drained.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	eventChan := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case event, ok := <-eventChan:
			if !ok {
				return
			}
			if err := w.processEvent(ctx, event); err != nil {
				w.logger.Warn(ctx, "event rejected",
					logger.String("eventID", event.EventID),
					logger.String("kind", event.Kind.String()),
					logger.Error(err),
				)
			}
		}
	}
}

// Done is closed when Run has returned.
func (w *InMemoryWorker) Done() <-chan struct{} { return w.done }

// Shutdown gracefully stops the worker. A worker that has already returned
// shuts down cleanly even when ctx is done.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	select {
	case <-w.shutdown:
	default:
		close(w.shutdown)
	}

	select {
	case <-w.done:
		return nil
	default:
	}

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

func (w *InMemoryWorker) processEvent(ctx context.Context, event Event) error { //nolint:gocritic // hugeParam: Event must be passed by value for channel semantics
	start := time.Now()
	defer func() {
		metrics.ObserveDispatchLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	if err := w.handler.Handle(ctx, event); err != nil {
		metrics.RecordDispatchError(event.Kind.String())
		return fmt.Errorf("dispatch %s: %w", event.Kind, err)
	}
	return nil
}
