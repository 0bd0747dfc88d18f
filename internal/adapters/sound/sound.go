// Package sound plays short tones for card events through the system
// speaker.
package sound

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"
	"github.com/okian/flick/internal/domain/geometry"
)

// Default audio configuration.
const (
	DefaultSampleRate = beep.SampleRate(44100)
	DefaultVolume     = 0.3

	swipeTone = 90 * time.Millisecond
	goneTone  = 60 * time.Millisecond
	bufferLen = 100 * time.Millisecond
)

//nolint:gochecknoglobals // tone table
var swipeFreq = map[geometry.Direction]float64{
	geometry.Right: 880,
	geometry.Up:    660,
	geometry.Left:  440,
	geometry.Down:  330,
}

// Output is the device tones are mixed into.
type Output interface {
	Init(rate beep.SampleRate, bufferSize int) error
	Play(s ...beep.Streamer)
	Close()
}

type speakerOutput struct{}

func (speakerOutput) Init(rate beep.SampleRate, bufferSize int) error {
	return speaker.Init(rate, bufferSize)
}
func (speakerOutput) Play(s ...beep.Streamer) { speaker.Play(s...) }
func (speakerOutput) Close()                  { speaker.Close() }

// Option applies a configuration option to the Player.
type Option func(*Player)

// WithSampleRate sets the output sample rate.
func WithSampleRate(rate beep.SampleRate) Option {
	return func(p *Player) {
		if rate > 0 {
			p.rate = rate
		}
	}
}

// WithVolume sets the tone volume in [0, 1]; 0 mutes.
func WithVolume(v float64) Option {
	return func(p *Player) {
		p.volume = math.Max(0, math.Min(1, v))
	}
}

// WithOutput replaces the system speaker.
func WithOutput(out Output) Option {
	return func(p *Player) {
		if out != nil {
			p.out = out
		}
	}
}

// Player mixes card cues into a single speaker stream. Until Initialize
// succeeds every cue is a no-op, so a machine without audio still runs.
type Player struct {
	mu          sync.Mutex
	mixer       *beep.Mixer
	out         Output
	rate        beep.SampleRate
	volume      float64
	initialized bool
}

// NewPlayer creates a player. Call Initialize before cues are heard.
func NewPlayer(opts ...Option) *Player {
	p := &Player{
		mixer:  &beep.Mixer{},
		out:    speakerOutput{},
		rate:   DefaultSampleRate,
		volume: DefaultVolume,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Initialize opens the output and starts the mixer.
func (p *Player) Initialize() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.initialized {
		return nil
	}
	if err := p.out.Init(p.rate, p.rate.N(bufferLen)); err != nil {
		return fmt.Errorf("init speaker: %w", err)
	}
	p.out.Play(p.mixer)
	p.initialized = true
	return nil
}

// Swipe plays the tone of a recognized swipe direction.
func (p *Player) Swipe(dir geometry.Direction) {
	freq, ok := swipeFreq[dir]
	if !ok {
		return
	}
	p.play(func() (beep.Streamer, error) {
		return p.tone(freq, swipeTone)
	})
}

// Gone plays the falling two-note cue of a card leaving the screen.
func (p *Player) Gone() {
	p.play(func() (beep.Streamer, error) {
		hi, err := p.tone(523, goneTone)
		if err != nil {
			return nil, err
		}
		lo, err := p.tone(262, goneTone)
		if err != nil {
			return nil, err
		}
		return beep.Seq(hi, lo), nil
	})
}

// Playing returns how many cues are still sounding.
func (p *Player) Playing() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.initialized {
		return 0
	}
	speaker.Lock()
	defer speaker.Unlock()
	return p.mixer.Len()
}

// Close stops all cues and releases the output.
func (p *Player) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.initialized {
		return
	}
	p.mixer.Clear()
	p.out.Close()
	p.initialized = false
}

func (p *Player) play(build func() (beep.Streamer, error)) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.initialized || p.volume == 0 {
		return
	}
	s, err := build()
	if err != nil {
		return
	}
	speaker.Lock()
	p.mixer.Add(s)
	speaker.Unlock()
}

func (p *Player) tone(freq float64, d time.Duration) (beep.Streamer, error) {
	sine, err := generators.SineTone(p.rate, freq)
	if err != nil {
		return nil, fmt.Errorf("tone %.0fHz: %w", freq, err)
	}
	return &effects.Volume{
		Streamer: beep.Take(p.rate.N(d), sine),
		Base:     2,
		Volume:   math.Log2(p.volume),
	}, nil
}
