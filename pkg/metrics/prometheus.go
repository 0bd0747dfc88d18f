// Package metrics provides Prometheus metrics for the flick card engine.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics server timeouts.
const (
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 5 * time.Second
)

// Buckets for exit durations (seconds) and release speeds (px/s).
var (
	exitDurationBuckets = []float64{0.1, 0.25, 0.5, 0.75, 1, 1.5, 2, 3, 5}               //nolint:gochecknoglobals // bucket layout
	releaseSpeedBuckets = []float64{50, 100, 200, 300, 500, 750, 1000, 1500, 2500, 5000} //nolint:gochecknoglobals // bucket layout
)

// Manager manages all Prometheus metrics for the card engine.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          atomic.Bool
	customLabels     map[string]string
	registry         prometheus.Registerer

	// Gesture metrics
	interactionsStarted *prometheus.CounterVec
	scrollsDetected     prometheus.Counter
	duplicateReleases   prometheus.Counter
	releaseSpeed        prometheus.Histogram

	// Outcome metrics
	swipes          *prometheus.CounterVec
	preventedSwipes *prometheus.CounterVec
	returns         prometheus.Counter
	cardsLeft       *prometheus.CounterVec
	exitDuration    prometheus.Histogram

	// Queue metrics
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueUtilization   prometheus.Gauge
	queueEnqueued      prometheus.Counter
	queueDequeued      prometheus.Counter
	queueEnqueueErrors *prometheus.CounterVec

	// Dispatcher metrics
	dispatchLatency prometheus.Histogram
	dispatchErrors  *prometheus.CounterVec

	// HTTP metrics
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// Init replaces the global manager with one built from opts on a fresh
// registry. Call it at startup, before anything is recorded or served.
func Init(opts ...Option) {
	registry := prometheus.NewRegistry()
	customRegistry = registry
	globalManager = NewManager(append([]Option{WithPrometheusRegistry(registry)}, opts...)...)
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "flick",
		subsystem:        "card",
		histogramBuckets: prometheus.DefBuckets,
		customLabels:     make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}
	m.enabled.Store(true)

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every metric definition
	auto := promauto.With(m.registry)
	labels := prometheus.Labels(m.customLabels)

	m.interactionsStarted = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "interactions_started_total",
		Help:        "Pointer interactions started, by source",
		ConstLabels: labels,
	}, []string{"source"})

	m.scrollsDetected = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "scrolls_detected_total",
		Help:        "Interactions handed to the scroll container",
		ConstLabels: labels,
	})

	m.duplicateReleases = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "duplicate_releases_total",
		Help:        "Release events ignored by the one-shot guard",
		ConstLabels: labels,
	})

	m.releaseSpeed = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "release_speed_pixels_per_second",
		Help:        "Pointer speed at release",
		Buckets:     releaseSpeedBuckets,
		ConstLabels: labels,
	})

	m.swipes = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "swipes_total",
		Help:        "Recognized swipes, by direction and trigger",
		ConstLabels: labels,
	}, []string{"direction", "trigger"})

	m.preventedSwipes = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "prevented_swipes_total",
		Help:        "Swipes recognized but not flicked away, by direction",
		ConstLabels: labels,
	}, []string{"direction"})

	m.returns = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "returns_total",
		Help:        "Cards animated back to rest",
		ConstLabels: labels,
	})

	m.cardsLeft = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "cards_left_screen_total",
		Help:        "Cards that completed an exit animation, by direction",
		ConstLabels: labels,
	}, []string{"direction"})

	m.exitDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "exit_duration_seconds",
		Help:        "Computed exit animation durations",
		Buckets:     exitDurationBuckets,
		ConstLabels: labels,
	})

	m.queueSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "queue_size",
		Help:        "Pointer events waiting for the dispatcher",
		ConstLabels: labels,
	})

	m.queueCapacity = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "queue_capacity",
		Help:        "Maximum pointer events the queue holds",
		ConstLabels: labels,
	})

	m.queueUtilization = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "queue_utilization_ratio",
		Help:        "Queue size over capacity",
		ConstLabels: labels,
	})

	m.queueEnqueued = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "queue_enqueued_total",
		Help:        "Pointer events accepted by the queue",
		ConstLabels: labels,
	})

	m.queueDequeued = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "queue_dequeued_total",
		Help:        "Pointer events handed to the dispatcher",
		ConstLabels: labels,
	})

	m.queueEnqueueErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "queue_enqueue_errors_total",
		Help:        "Pointer events rejected by the queue, by reason",
		ConstLabels: labels,
	}, []string{"reason"})

	m.dispatchLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "dispatch_latency_milliseconds",
		Help:        "Time spent handling one pointer event",
		Buckets:     m.histogramBuckets,
		ConstLabels: labels,
	})

	m.dispatchErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "dispatch_errors_total",
		Help:        "Pointer events the card failed to handle, by event kind",
		ConstLabels: labels,
	}, []string{"kind"})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   "http",
		Name:        "requests_total",
		Help:        "Status endpoint requests",
		ConstLabels: labels,
	}, []string{"endpoint", "method", "status_code"})

	m.httpDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   "http",
		Name:        "request_duration_milliseconds",
		Help:        "Status endpoint latency",
		Buckets:     m.histogramBuckets,
		ConstLabels: labels,
	}, []string{"endpoint", "method"})
}

// Gesture Metrics Functions.

// RecordInteractionStarted counts a press or touch start.
func RecordInteractionStarted(source string) {
	if !globalManager.enabled.Load() {
		return
	}
	globalManager.interactionsStarted.WithLabelValues(source).Inc()
}

// RecordScrollDetected counts an interaction classified as a scroll.
func RecordScrollDetected() {
	if !globalManager.enabled.Load() {
		return
	}
	globalManager.scrollsDetected.Inc()
}

// RecordDuplicateRelease counts a release swallowed by the one-shot guard.
func RecordDuplicateRelease() {
	if !globalManager.enabled.Load() {
		return
	}
	globalManager.duplicateReleases.Inc()
}

// ObserveReleaseSpeed records the pointer speed at release.
func ObserveReleaseSpeed(pxPerSecond float64) {
	if !globalManager.enabled.Load() {
		return
	}
	globalManager.releaseSpeed.Observe(pxPerSecond)
}

// Outcome Metrics Functions.

// RecordSwipe counts a recognized swipe. trigger is "pointer" or "programmatic".
func RecordSwipe(direction, trigger string) {
	if !globalManager.enabled.Load() {
		return
	}
	globalManager.swipes.WithLabelValues(direction, trigger).Inc()
}

// RecordPreventedSwipe counts a swipe that was recognized but not flicked.
func RecordPreventedSwipe(direction string) {
	if !globalManager.enabled.Load() {
		return
	}
	globalManager.preventedSwipes.WithLabelValues(direction).Inc()
}

// RecordReturn counts a return animation.
func RecordReturn() {
	if !globalManager.enabled.Load() {
		return
	}
	globalManager.returns.Inc()
}

// RecordCardLeftScreen counts a completed exit.
func RecordCardLeftScreen(direction string) {
	if !globalManager.enabled.Load() {
		return
	}
	globalManager.cardsLeft.WithLabelValues(direction).Inc()
}

// ObserveExitDuration records a computed exit duration.
func ObserveExitDuration(d time.Duration) {
	if !globalManager.enabled.Load() {
		return
	}
	globalManager.exitDuration.Observe(d.Seconds())
}

// Queue Metrics Functions.

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// UpdateQueueUtilization sets the queue utilization ratio.
func UpdateQueueUtilization(utilization float64) {
	globalManager.queueUtilization.Set(utilization)
}

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() {
	globalManager.queueEnqueued.Inc()
}

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() {
	globalManager.queueDequeued.Inc()
}

// RecordQueueEnqueueError counts a rejected event.
func RecordQueueEnqueueError(reason string) {
	globalManager.queueEnqueueErrors.WithLabelValues(reason).Inc()
}

// Dispatcher Metrics Functions.

// ObserveDispatchLatency records how long one event took to handle.
func ObserveDispatchLatency(latencyMs float64) {
	globalManager.dispatchLatency.Observe(latencyMs)
}

// RecordDispatchError counts a failed event.
func RecordDispatchError(kind string) {
	globalManager.dispatchErrors.WithLabelValues(kind).Inc()
}

// HTTP Metrics Functions.

// RecordHTTPRequest counts one request to a status endpoint.
func RecordHTTPRequest(endpoint, method, statusCode string, durationMs float64) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
	globalManager.httpDuration.WithLabelValues(endpoint, method).Observe(durationMs)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// Handler serves the custom registry in the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.HandlerFor(customRegistry, promhttp.HandlerOpts{})
}

// SetEnabled turns recording of gesture and outcome metrics on or off.
func SetEnabled(enabled bool) {
	globalManager.enabled.Store(enabled)
}

// Serve serves h on addr until ctx is done. A nil h exposes only Handler
// under /metrics.
func Serve(ctx context.Context, addr string, h http.Handler) error {
	if h == nil {
		mux := http.NewServeMux()
		mux.Handle("/metrics", Handler())
		h = mux
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("%w: %w", ErrServeFailed, err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("%w: %w", ErrServeFailed, err)
		}
		return nil
	}
}
