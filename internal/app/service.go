package app

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	eventqueue "github.com/okian/flick/internal/adapters/mq/queue"
	"github.com/okian/flick/internal/adapters/mq/worker"
	"github.com/okian/flick/internal/domain/dedupe"
	"github.com/okian/flick/internal/domain/model"
	"github.com/okian/flick/pkg/logger"
)

// Default service configuration constants.
const (
	defaultQueueSize = 256
)

// Service feeds input events to a card through a bounded queue and a single
// dispatcher, so the card sees them strictly in submission order.
type Service struct {
	mu sync.RWMutex

	card       *Card
	eventQueue *eventqueue.InMemoryQueue
	dispatcher worker.Worker
	deduper    dedupe.Deduper
	dispatched atomic.Uint64

	queueSize  int
	dedupeSize int
	now        func() time.Time

	started bool
	cancel  context.CancelFunc

	logger logger.Logger
}

// ServiceOption applies a configuration option to the Service.
type ServiceOption func(*Service)

// WithQueueSize sets the maximum number of pending input events.
func WithQueueSize(size int) ServiceOption {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets how many recent event IDs are remembered to drop
// replayed events.
func WithDedupeSize(size int) ServiceOption {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithServiceLogger sets a custom logger for the service.
func WithServiceLogger(l logger.Logger) ServiceOption {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithNow sets the clock used to stamp events submitted without a time.
func WithNow(now func() time.Time) ServiceOption {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService constructs a service for card.
func NewService(card *Card, opts ...ServiceOption) *Service {
	s := &Service{
		card:       card,
		queueSize:  defaultQueueSize,
		dedupeSize: dedupe.DefaultWindow,
		now:        time.Now,
		logger:     logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.deduper = dedupe.NewWindow(dedupe.WithCapacity(s.dedupeSize))
	return s
}

// Card returns the card the service drives.
func (s *Service) Card() *Card { return s.card }

// Start creates the queue and runs the dispatcher until ctx ends or Stop is
// called.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	s.logger.Info(ctx, "starting card service...")

	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.eventQueue = eventqueue.NewInMemoryQueue(eventqueue.WithCapacity(s.queueSize))
	s.dispatcher = worker.NewInMemoryWorker(s.eventQueue, worker.HandlerFunc(s.dispatch),
		worker.WithName("dispatcher"),
		worker.WithLogger(s.logger),
	)
	go s.dispatcher.Run(runCtx)

	s.started = true
	s.logger.Info(ctx, "card service started", logger.Int("queueSize", s.queueSize))
	return nil
}

// Submit queues an input event. Events without an id or timestamp get one;
// an id seen recently is rejected with ErrDuplicateEvent.
func (s *Service) Submit(ctx context.Context, ev model.Event) error { //nolint:gocritic // hugeParam: events are values on the queue
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.started {
		return ErrNotStarted
	}
	if ev.EventID == "" {
		ev.EventID = uuid.NewString()
	}
	if ev.TS.IsZero() {
		ev.TS = s.now()
	}
	if s.deduper.SeenAndRecord(ctx, ev.EventID) {
		return fmt.Errorf("submit %s %s: %w", ev.Kind, ev.EventID, ErrDuplicateEvent)
	}
	if err := s.eventQueue.Enqueue(ctx, ev); err != nil {
		// Not queued, so a retry with the same id must be accepted.
		s.deduper.Unrecord(ctx, ev.EventID)
		return fmt.Errorf("submit %s: %w", ev.Kind, err)
	}
	return nil
}

func (s *Service) dispatch(ctx context.Context, ev model.Event) error { //nolint:gocritic // hugeParam: events are values on the queue
	s.dispatched.Add(1)
	return s.card.Handle(ctx, ev)
}

// Stop drains queued events, lets in-flight exits finish until ctx ends,
// then shuts the dispatcher down. Whatever is still running when ctx ends is
// cancelled.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}

	s.logger.Info(ctx, "stopping card service...")
	_ = s.eventQueue.Close()

	var err error
	select {
	case <-s.dispatcher.Done():
	case <-ctx.Done():
		err = fmt.Errorf("drain queue: %w", ctx.Err())
	}

	exits := make(chan struct{})
	go func() {
		s.card.Wait()
		close(exits)
	}()
	select {
	case <-exits:
	case <-ctx.Done():
		if err == nil {
			err = fmt.Errorf("wait for exits: %w", ctx.Err())
		}
	}

	if serr := s.dispatcher.Shutdown(ctx); serr != nil && err == nil {
		err = fmt.Errorf("stop dispatcher: %w", serr)
	}
	s.cancel()
	<-s.dispatcher.Done()
	<-exits

	s.started = false
	s.logger.Info(ctx, "card service stopped")
	return err
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":    s.started,
		"queueSize":  s.queueSize,
		"dispatched": s.dispatched.Load(),
		"dedupeSize": s.deduper.Size(),
		"cardGone":   s.card.Gone(),
	}
	if s.started {
		stats["queueLength"] = s.eventQueue.Len(context.Background())
		stats["phase"] = s.card.Session().Phase.String()
	}
	return stats
}
