package config_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/okian/flick/internal/config"
	"github.com/okian/flick/internal/domain/geometry"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New(context.Background())

		convey.Convey("Then it should carry the card defaults", func() {
			convey.So(cfg.SnapBack(), convey.ShouldEqual, 300*time.Millisecond)
			convey.So(cfg.MaxTilt, convey.ShouldEqual, 5)
			convey.So(cfg.BouncePower, convey.ShouldEqual, 0.2)
			convey.So(cfg.SwipeThreshold, convey.ShouldEqual, 300)
			convey.So(cfg.SwipePower, convey.ShouldEqual, 1000)
			convey.So(cfg.RotationPower, convey.ShouldEqual, 200)
			convey.So(cfg.FlickOnSwipe, convey.ShouldBeTrue)
			convey.So(cfg.FrameInterval(), convey.ShouldEqual, 16*time.Millisecond)
			convey.So(cfg.MetricsAddr, convey.ShouldBeEmpty)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfig_PreventedDirections(t *testing.T) {
	convey.Convey("Given a prevent_swipe list", t, func() {
		cfg := config.New(context.Background())

		convey.Convey("When it is empty", func() {
			dirs, err := cfg.PreventedDirections()
			convey.So(err, convey.ShouldBeNil)
			convey.So(dirs, convey.ShouldBeEmpty)
		})

		convey.Convey("When it lists directions with spaces and case", func() {
			cfg.PreventSwipe = " Up, down ,"
			dirs, err := cfg.PreventedDirections()

			convey.Convey("Then they are parsed in order", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(dirs, convey.ShouldResemble, []geometry.Direction{geometry.Up, geometry.Down})
			})
		})

		convey.Convey("When it holds an unknown direction", func() {
			cfg.PreventSwipe = "up,backwards"
			_, err := cfg.PreventedDirections()

			convey.Convey("Then it is an invalid config", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(errors.Is(err, geometry.ErrInvalidDirection), convey.ShouldBeTrue)
			})
		})
	})
}

func TestConfig_MetricLabels(t *testing.T) {
	convey.Convey("Given a metrics_labels list", t, func() {
		cfg := config.New(context.Background())

		convey.Convey("When it holds pairs with spaces", func() {
			cfg.MetricsLabels = " host = a, env=dev ,"
			labels, err := cfg.MetricLabels()

			convey.Convey("Then they become constant labels", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(labels, convey.ShouldResemble, map[string]string{"host": "a", "env": "dev"})
			})
		})

		convey.Convey("When a label name is reserved", func() {
			cfg.MetricsLabels = "__name__=x"
			_, err := cfg.MetricLabels()

			convey.Convey("Then it is an invalid config", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given out of range values", t, func() {
		cases := map[string]func(*config.Config){
			"snap_back_ms":    func(c *config.Config) { c.SnapBackMS = 0 },
			"max_tilt":        func(c *config.Config) { c.MaxTilt = -1 },
			"bounce_power":    func(c *config.Config) { c.BouncePower = -0.1 },
			"swipe_threshold": func(c *config.Config) { c.SwipeThreshold = -5 },
			"swipe_power":     func(c *config.Config) { c.SwipePower = 0 },
			"rotation_power":  func(c *config.Config) { c.RotationPower = -200 },
			"queue_size":      func(c *config.Config) { c.QueueSize = 0 },
			"dedupe_size":     func(c *config.Config) { c.DedupeSize = -1 },
			"frame_ms":        func(c *config.Config) { c.FrameMS = -16 },
			"metrics_ns":      func(c *config.Config) { c.MetricsNamespace = "my-app" },
			"metrics_labels":  func(c *config.Config) { c.MetricsLabels = "env" },
		}

		for key, mutate := range cases {
			cfg := config.New(context.Background())
			mutate(cfg)
			err := cfg.Validate()
			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			convey.So(err.Error(), convey.ShouldContainSubstring, key)
		}
	})
}
