// Package config defines process configuration and its loading hooks.
//
// Conventions:
// - Provide New(ctx) to build a Config with defaults.
// - Loading functions accept context.Context as the first parameter.
// - External errors are wrapped with this package's sentinel errors.
package config

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/okian/flick/internal/domain/geometry"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFile receives log output; the terminal demo owns stdout.
	LogFile string `koanf:"log_file"`

	// LogJSON switches log lines to JSON.
	LogJSON bool `koanf:"log_json"`

	// SnapBackMS is the duration of the return animation.
	SnapBackMS int `koanf:"snap_back_ms"`

	// MaxTilt scales how far horizontal drag speed tilts the card.
	MaxTilt float64 `koanf:"max_tilt"`

	// BouncePower is the overshoot fraction of the return animation.
	BouncePower float64 `koanf:"bounce_power"`

	// SwipeThreshold is the release speed in px/s above which a release is a swipe.
	SwipeThreshold float64 `koanf:"swipe_threshold"`

	// SwipePower is the speed of programmatic swipes in px/s.
	SwipePower float64 `koanf:"swipe_power"`

	// RotationPower bounds the random spin added on exit, in degrees.
	RotationPower float64 `koanf:"rotation_power"`

	// FlickOnSwipe throws swiped cards off screen.
	FlickOnSwipe bool `koanf:"flick_on_swipe"`

	// PreventSwipe is a comma separated list of blocked directions, e.g. "up,down".
	PreventSwipe string `koanf:"prevent_swipe"`

	// QueueSize bounds the input event queue.
	QueueSize int `koanf:"queue_size"`

	// DedupeSize is how many recent event ids are remembered to drop replays.
	DedupeSize int `koanf:"dedupe_size"`

	// FrameMS is the render interval of the terminal demo.
	FrameMS int `koanf:"frame_ms"`

	// MetricsAddr serves /metrics, /healthz and /stats when set, e.g. ":9090".
	MetricsAddr string `koanf:"metrics_addr"`

	// MetricsNamespace prefixes every exported metric name.
	MetricsNamespace string `koanf:"metrics_namespace"`

	// MetricsLabels are constant labels added to every metric, e.g. "host=a,env=dev".
	MetricsLabels string `koanf:"metrics_labels"`

	// Sound enables audio cues.
	Sound bool `koanf:"sound"`
}

// New creates a Config with defaults. Context is accepted first to satisfy
// the project-wide convention and is currently unused.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:         "info",
		LogFile:          "flick.log",
		SnapBackMS:       300,
		MaxTilt:          5,
		BouncePower:      0.2,
		SwipeThreshold:   300,
		SwipePower:       1000,
		RotationPower:    200,
		FlickOnSwipe:     true,
		QueueSize:        256,
		DedupeSize:       1024,
		FrameMS:          16,
		MetricsNamespace: "flick",
	}
}

// SnapBack returns the return animation duration.
func (c *Config) SnapBack() time.Duration {
	return time.Duration(c.SnapBackMS) * time.Millisecond
}

// FrameInterval returns the render interval.
func (c *Config) FrameInterval() time.Duration {
	return time.Duration(c.FrameMS) * time.Millisecond
}

// metricName matches names Prometheus accepts for namespaces and labels.
var metricName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`) //nolint:gochecknoglobals // compiled once

// MetricLabels parses MetricsLabels into constant label pairs.
func (c *Config) MetricLabels() (map[string]string, error) {
	labels := map[string]string{}
	for _, part := range strings.Split(c.MetricsLabels, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, value, ok := strings.Cut(part, "=")
		name = strings.TrimSpace(name)
		if !ok || !metricName.MatchString(name) || strings.HasPrefix(name, "__") {
			return nil, fmt.Errorf("%w: metrics_labels: bad pair %q", ErrInvalidConfig, part)
		}
		labels[name] = strings.TrimSpace(value)
	}
	return labels, nil
}

// PreventedDirections parses PreventSwipe.
func (c *Config) PreventedDirections() ([]geometry.Direction, error) {
	var dirs []geometry.Direction
	for _, part := range strings.Split(c.PreventSwipe, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		d, err := geometry.ParseDirection(part)
		if err != nil {
			return nil, fmt.Errorf("%w: prevent_swipe: %w", ErrInvalidConfig, err)
		}
		dirs = append(dirs, d)
	}
	return dirs, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	switch {
	case c.SnapBackMS <= 0:
		return fmt.Errorf("%w: snap_back_ms must be positive, got %d", ErrInvalidConfig, c.SnapBackMS)
	case c.MaxTilt < 0:
		return fmt.Errorf("%w: max_tilt must not be negative, got %g", ErrInvalidConfig, c.MaxTilt)
	case c.BouncePower < 0:
		return fmt.Errorf("%w: bounce_power must not be negative, got %g", ErrInvalidConfig, c.BouncePower)
	case c.SwipeThreshold < 0:
		return fmt.Errorf("%w: swipe_threshold must not be negative, got %g", ErrInvalidConfig, c.SwipeThreshold)
	case c.SwipePower <= 0:
		return fmt.Errorf("%w: swipe_power must be positive, got %g", ErrInvalidConfig, c.SwipePower)
	case c.RotationPower < 0:
		return fmt.Errorf("%w: rotation_power must not be negative, got %g", ErrInvalidConfig, c.RotationPower)
	case c.QueueSize <= 0:
		return fmt.Errorf("%w: queue_size must be positive, got %d", ErrInvalidConfig, c.QueueSize)
	case c.DedupeSize <= 0:
		return fmt.Errorf("%w: dedupe_size must be positive, got %d", ErrInvalidConfig, c.DedupeSize)
	case c.FrameMS <= 0:
		return fmt.Errorf("%w: frame_ms must be positive, got %d", ErrInvalidConfig, c.FrameMS)
	case !metricName.MatchString(c.MetricsNamespace):
		return fmt.Errorf("%w: metrics_namespace %q is not a metric name", ErrInvalidConfig, c.MetricsNamespace)
	}
	if _, err := c.MetricLabels(); err != nil {
		return err
	}
	_, err := c.PreventedDirections()
	return err
}
