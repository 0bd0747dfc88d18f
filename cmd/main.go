package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"
	"golang.org/x/sync/errgroup"

	"github.com/okian/flick/internal/adapters/http/api"
	"github.com/okian/flick/internal/adapters/sound"
	"github.com/okian/flick/internal/adapters/terminal"
	app "github.com/okian/flick/internal/app"
	"github.com/okian/flick/internal/config"
	"github.com/okian/flick/internal/domain/animation"
	"github.com/okian/flick/internal/domain/geometry"
	"github.com/okian/flick/internal/domain/gesture"
	"github.com/okian/flick/internal/domain/model"
	"github.com/okian/flick/internal/domain/transform"
	"github.com/okian/flick/pkg/logger"
	"github.com/okian/flick/pkg/metrics"
)

const (
	shutdownTimeout = 5 * time.Second
	eventBuffer     = 100
	logFileMode     = 0o600
	helpLine        = "drag the card or press h/j/k/l, r resets, q quits"
)

func main() {
	if err := run(); err != nil {
		// The logger may point at a file nobody is watching.
		fmt.Fprintln(os.Stderr, "flick:", err)
		os.Exit(1)
	}
}

func run() error {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	logFile, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFileMode)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer logFile.Close()
	if err := logger.Init(logOptions(cfg, logFile)...); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()
	log := logger.Get()

	labels, err := cfg.MetricLabels()
	if err != nil {
		return err
	}
	// Nothing scrapes the registry without an address.
	metrics.Init(
		metrics.WithNamespace(cfg.MetricsNamespace),
		metrics.WithCustomLabels(labels),
		metrics.WithMetricsEnabled(cfg.MetricsAddr != ""),
	)

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("init screen: %w", err)
	}
	defer screen.Fini()
	screen.EnableMouse()
	screen.HideCursor()

	player := sound.NewPlayer()
	if cfg.Sound {
		if err := player.Initialize(); err != nil {
			// Non-fatal, the demo runs without sound.
			log.Warn(ctx, "audio unavailable", logger.Error(err))
		}
	}
	defer player.Close()

	clock := animation.NewRealClock()
	el := terminal.NewElement(clock)
	ov := terminal.NewOverlay(clock)
	renderer := terminal.NewRenderer(screen, el, ov)
	renderer.SetStatus(helpLine)

	card, animator, err := newCard(cfg, el, ov, renderer, clock,
		app.WithLogger(log.Named("card")),
		app.WithOnSwipe(func(dir geometry.Direction) {
			player.Swipe(dir)
			renderer.SetStatus("swiped " + dir.String())
		}),
		app.WithOnCardLeftScreen(func(dir geometry.Direction) {
			player.Gone()
			renderer.SetStatus("card left " + dir.String() + ", press r for another")
		}),
	)
	if err != nil {
		return err
	}

	svc := app.NewService(card,
		app.WithQueueSize(cfg.QueueSize),
		app.WithDedupeSize(cfg.DedupeSize),
		app.WithServiceLogger(log.Named("service")),
	)
	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("start service: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := svc.Stop(shutdownCtx); err != nil {
			log.Error(ctx, "service stop failed", logger.Error(err))
		}
	}()

	g, gctx := errgroup.WithContext(ctx)
	loopCtx, quit := context.WithCancel(gctx)
	defer quit()

	if cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		api.NewServer(svc).Register(ctx, mux)
		g.Go(func() error {
			log.Info(ctx, "serving status and metrics", logger.String("addr", cfg.MetricsAddr))
			return metrics.Serve(loopCtx, cfg.MetricsAddr, mux)
		})
	}

	if path := os.Getenv(config.EnvConfigPath); path != "" {
		err := config.Watch(loopCtx, path, func(next *config.Config, err error) {
			if err != nil {
				log.Warn(ctx, "config reload rejected", logger.Error(err))
				return
			}
			if err := tune(card, animator, next); err != nil {
				log.Warn(ctx, "config reload rejected", logger.Error(err))
				return
			}
			log.Info(ctx, "config reloaded", logger.String("path", path))
		})
		if err != nil {
			log.Warn(ctx, "config watch unavailable", logger.Error(err))
		}
	}

	events := make(chan tcell.Event, eventBuffer)
	go func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-loopCtx.Done():
				return
			}
		}
	}()

	g.Go(func() error {
		defer quit()
		return loop(loopCtx, screen, renderer, svc, events, cfg.FrameInterval())
	})

	log.Info(ctx, "flick started")
	err = g.Wait()
	log.Info(ctx, "flick stopped")
	return err
}

// loop feeds input to the service and redraws the card every frame until
// the user quits or ctx ends.
func loop(ctx context.Context, screen tcell.Screen, r *terminal.Renderer, svc *app.Service, events <-chan tcell.Event, frame time.Duration) error {
	ticker := time.NewTicker(frame)
	defer ticker.Stop()

	in := terminal.NewInput(r)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			r.Draw()
		case ev := <-events:
			switch ev := ev.(type) {
			case *tcell.EventKey:
				if terminal.IsQuit(ev) {
					return nil
				}
				if cmd, ok := terminal.Command(ev); ok {
					submit(ctx, svc, cmd)
				}
			case *tcell.EventMouse:
				for _, pe := range in.Mouse(ev) {
					submit(ctx, svc, pe)
				}
			case *tcell.EventResize:
				screen.Sync()
			}
		}
	}
}

func submit(ctx context.Context, svc *app.Service, ev model.Event) { //nolint:gocritic // hugeParam: events are values
	if err := svc.Submit(ctx, ev); err != nil && !errors.Is(err, context.Canceled) {
		logger.Get().Warn(ctx, "input dropped", logger.String("kind", ev.Kind.String()), logger.Error(err))
	}
}

func logOptions(cfg *config.Config, w *os.File) []logger.Option {
	opts := []logger.Option{logger.WithWriter(w), logger.WithLevel(cfg.LogLevel)}
	if cfg.LogJSON {
		opts = append(opts, logger.WithJSON())
	}
	return opts
}

// newCard wires a card and its animator from cfg. hooks are applied after
// the configured tunables.
func newCard(cfg *config.Config, el transform.Element, ov transform.Overlay, vp transform.Viewport, clock animation.Clock, hooks ...app.Option) (*app.Card, *animation.Animator, error) {
	animator := animation.NewAnimator(append(animatorOptions(cfg),
		animation.WithClock(clock),
		animation.WithViewport(vp),
	)...)
	classifier := gesture.NewClassifier(
		gesture.WithMaxTilt(cfg.MaxTilt),
		gesture.WithViewport(vp),
	)

	opts, err := cardOptions(cfg)
	if err != nil {
		return nil, nil, err
	}
	opts = append(opts, app.WithAnimator(animator), app.WithClassifier(classifier))
	opts = append(opts, hooks...)

	card, err := app.NewCard(el, ov, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("create card: %w", err)
	}
	return card, animator, nil
}

func cardOptions(cfg *config.Config) ([]app.Option, error) {
	prevent, err := cfg.PreventedDirections()
	if err != nil {
		return nil, err
	}
	return []app.Option{
		app.WithFlickOnSwipe(cfg.FlickOnSwipe),
		app.WithPreventSwipe(prevent...),
		app.WithSwipeThreshold(cfg.SwipeThreshold),
		app.WithSwipePower(cfg.SwipePower),
	}, nil
}

func animatorOptions(cfg *config.Config) []animation.Option {
	return []animation.Option{
		animation.WithSnapBack(cfg.SnapBack()),
		animation.WithBouncePower(cfg.BouncePower),
		animation.WithRotationPower(cfg.RotationPower),
	}
}

// tune applies reloaded tunables to a running card.
func tune(card *app.Card, animator *animation.Animator, cfg *config.Config) error {
	opts, err := cardOptions(cfg)
	if err != nil {
		return err
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	card.Tune(opts...)
	card.SetMaxTilt(cfg.MaxTilt)
	animator.Tune(animatorOptions(cfg)...)
	return nil
}
