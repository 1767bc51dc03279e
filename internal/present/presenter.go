package present

import (
	"context"
	"fmt"
	"time"

	"github.com/junsooki/ArisLoop/internal/frames"
	"github.com/junsooki/ArisLoop/internal/input"
	"github.com/junsooki/ArisLoop/internal/lifecycle"
	"github.com/junsooki/ArisLoop/internal/logger"
	"github.com/junsooki/ArisLoop/internal/metrics"
)

// Surface is the display the frames are written to.
type Surface interface {
	// Target is the raw back buffer, exactly one frame long.
	Target() []byte
	// Flush pushes the back buffer to the hardware.
	Flush()
	// WaitForVBlank blocks until the next vertical blank.
	WaitForVBlank()
	// Swap makes the flushed buffer the visible one.
	Swap()
}

// Joiner waits for a background task to finish.
type Joiner interface {
	Wait() error
}

// Config holds everything a Presenter needs.
type Config struct {
	Frames   *frames.Store
	Surface  Surface
	Input    input.Device
	Exit     input.Buttons
	Cadence  time.Duration
	Pacing   bool
	Shutdown *lifecycle.Signal
	Audio    Joiner
	Metrics  *metrics.Metrics

	// Clock hooks, replaced in tests.
	Now   func() time.Time
	Sleep func(time.Duration)
}

// Presenter shows the frame store in order at a fixed cadence.
type Presenter struct {
	cfg    Config
	cursor int
}

// New checks that frames fit the surface and returns a Presenter.
func New(cfg Config) (*Presenter, error) {
	if cfg.Frames == nil || cfg.Surface == nil || cfg.Input == nil {
		return nil, fmt.Errorf("present: frames, surface and input are required")
	}
	if got, want := len(cfg.Surface.Target()), cfg.Frames.FrameSize(); got != want {
		return nil, fmt.Errorf("present: surface holds %d bytes, frames are %d: %w", got, want, frames.ErrSizeMismatch)
	}
	if cfg.Cadence <= 0 {
		return nil, fmt.Errorf("present: cadence must be positive, got %v", cfg.Cadence)
	}
	if cfg.Shutdown == nil {
		cfg.Shutdown = lifecycle.NewSignal()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.New()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Sleep == nil {
		cfg.Sleep = time.Sleep
	}
	return &Presenter{cfg: cfg}, nil
}

// Cursor returns the index of the frame on screen.
func (p *Presenter) Cursor() int { return p.cursor }

// Run presents frames until the exit button is pressed or ctx is done, then
// raises the shutdown signal and waits for the audio task. It returns how
// many frames were presented and the audio task's error.
func (p *Presenter) Run(ctx context.Context) (int, error) {
	ticks := 0
	for ctx.Err() == nil {
		start := p.cfg.Now()
		p.present()
		ticks++

		p.cfg.Input.Scan()
		exit := p.cfg.Input.KeysDown().Contains(p.cfg.Exit)

		elapsed := p.cfg.Now().Sub(start)
		p.cfg.Metrics.ObserveTick(elapsed, p.cfg.Cadence)
		if exit {
			logger.Info("present", "exit pressed after %d frames", ticks)
			break
		}
		if p.cfg.Pacing && elapsed < p.cfg.Cadence {
			p.cfg.Sleep(p.cfg.Cadence - elapsed)
		}
	}

	p.cfg.Shutdown.Raise()
	if p.cfg.Audio == nil {
		return ticks, nil
	}
	return ticks, p.cfg.Audio.Wait()
}

func (p *Presenter) present() {
	p.cursor = (p.cursor + 1) % p.cfg.Frames.Len()
	copy(p.cfg.Surface.Target(), p.cfg.Frames.At(p.cursor))

	p.cfg.Surface.Flush()
	p.cfg.Surface.WaitForVBlank()
	p.cfg.Surface.Swap()
}
