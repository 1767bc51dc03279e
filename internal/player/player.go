// Package player wires the frame store, the audio streamer and the presenter
// together and runs the startup and shutdown protocol between them.
package player

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/junsooki/ArisLoop/internal/audio"
	"github.com/junsooki/ArisLoop/internal/config"
	"github.com/junsooki/ArisLoop/internal/decoder"
	"github.com/junsooki/ArisLoop/internal/display"
	"github.com/junsooki/ArisLoop/internal/frames"
	"github.com/junsooki/ArisLoop/internal/lifecycle"
	"github.com/junsooki/ArisLoop/internal/logger"
	"github.com/junsooki/ArisLoop/internal/metrics"
	"github.com/junsooki/ArisLoop/internal/present"
)

const (
	Title   = "ArisLoop"
	Credits = "Animation by BlueSechi, song is Usagi Flap"
)

// Deps are the collaborators Run uses. Only Display is required.
type Deps struct {
	Display display.Display
	Assets  fs.FS           // defaults to os.DirFS(cfg.AssetDir)
	Decoder decoder.Decoder // defaults to decoder.NewImageDecoder()
	// OpenAudio acquires the playback channel; defaults to oto.
	OpenAudio audio.OpenFunc
	Metrics   *metrics.Metrics

	// Presenter clock hooks, nil for the real clock.
	Now   func() time.Time
	Sleep func(time.Duration)
}

// Run plays the animation until the exit button is pressed, ctx is cancelled
// or the display goes away. It returns once the audio task has been joined.
func Run(ctx context.Context, cfg *config.Config, deps Deps) error {
	if deps.Display == nil {
		return fmt.Errorf("player: no display")
	}
	if deps.Assets == nil {
		deps.Assets = os.DirFS(cfg.AssetDir)
	}
	if deps.Decoder == nil {
		deps.Decoder = decoder.NewImageDecoder()
	}
	if deps.Metrics == nil {
		deps.Metrics = metrics.New()
	}

	if got, want := len(deps.Display.Target()), cfg.FrameBytes(); got != want {
		return fmt.Errorf("player: display holds %d bytes, frames are %d: %w", got, want, frames.ErrSizeMismatch)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-deps.Display.Done():
			cancel()
		case <-ctx.Done():
		}
	}()

	shutdown := lifecycle.NewSignal()
	ready := lifecycle.NewBarrier(2)
	var g errgroup.Group

	streamer, closeAudio, err := newStreamer(cfg, deps)
	if err != nil {
		return err
	}
	if streamer != nil {
		g.Go(func() error {
			defer closeAudio()
			return streamer.Run(shutdown, ready)
		})
	} else {
		g.Go(func() error {
			ready.Arrive()
			return nil
		})
	}

	start := time.Now()
	store, err := frames.Load(ctx, deps.Assets, deps.Decoder, frames.Spec{
		Pattern: cfg.Frames.Pattern,
		Count:   cfg.Frames.Count,
		Width:   cfg.Frames.Width,
		Height:  cfg.Frames.Height,
		Workers: cfg.DecodeWorkers,
	})
	if err != nil {
		if errors.Is(err, context.Canceled) && ctx.Err() != nil {
			logger.Info("player", "stopped while decoding")
			return abort(shutdown, ready, &g, nil)
		}
		return abort(shutdown, ready, &g, fmt.Errorf("load frames: %w", err))
	}

	ready.Arrive()
	logger.Info("player", "Decoding done! Took %.3f secs.", time.Since(start).Seconds())

	p, err := present.New(present.Config{
		Frames:   store,
		Surface:  deps.Display,
		Input:    deps.Display,
		Exit:     cfg.ExitButton,
		Cadence:  cfg.FrameDuration(),
		Pacing:   cfg.Display.Pacing,
		Shutdown: shutdown,
		Audio:    &g,
		Metrics:  deps.Metrics,
		Now:      deps.Now,
		Sleep:    deps.Sleep,
	})
	if err != nil {
		shutdown.Raise()
		if werr := g.Wait(); werr != nil {
			logger.Warn("player", "audio task: %v", werr)
		}
		return err
	}

	banner(deps.Display.Console(), cfg, streamer != nil && streamer.Degraded())

	ticks, err := p.Run(ctx)
	s := deps.Metrics.Snapshot()
	logger.Info("player", "presented %d frames (stopped on frame %d), %d overruns, %d buffers refilled, %d source wraps, %d underruns",
		ticks, p.Cursor(), s.TickOverruns, s.BuffersRefilled, s.SourceWraps, s.AudioUnderruns)
	if lines, derr := deps.Metrics.Dump(); derr == nil {
		for _, l := range lines {
			logger.Debug("metrics", "%s", l)
		}
	}
	if err != nil {
		return fmt.Errorf("audio: %w", err)
	}
	return nil
}

// abort tears down a startup that failed before presentation began.
func abort(shutdown *lifecycle.Signal, ready *lifecycle.Barrier, g *errgroup.Group, err error) error {
	shutdown.Raise()
	ready.Arrive()
	if werr := g.Wait(); werr != nil {
		logger.Warn("player", "audio task: %v", werr)
	}
	return err
}

func banner(c *display.Console, cfg *config.Config, degraded bool) {
	c.Print(Title)
	c.Print(Credits)
	if degraded {
		c.Warn("No audio device found, playing without sound")
	}
	name := cfg.ExitButton.String()
	c.Footer(fmt.Sprintf("Press %s to exit", strings.ToUpper(name[:1])+name[1:]))
}

// newStreamer opens the audio asset and builds the streamer. It returns a nil
// streamer when audio is disabled.
func newStreamer(cfg *config.Config, deps Deps) (*audio.Streamer, func() error, error) {
	if !cfg.Audio.Enabled {
		return nil, nil, nil
	}
	f, err := deps.Assets.Open(cfg.Audio.File)
	if err != nil {
		return nil, nil, fmt.Errorf("open audio: %w", err)
	}
	rs, ok := f.(io.ReadSeeker)
	closeFile := f.Close
	if !ok {
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return nil, nil, fmt.Errorf("read audio %s: %w", cfg.Audio.File, err)
		}
		rs, closeFile = bytes.NewReader(data), func() error { return nil }
	}

	format := audio.Format{
		Encoding:      audio.PCM16Stereo,
		SampleRate:    cfg.Audio.SampleRate,
		Interpolation: audio.InterpolationNone,
		Mix:           audio.DefaultMix,
	}
	open := deps.OpenAudio
	if open == nil {
		open = audio.OpenOto(format, deps.Metrics)
	}
	s := audio.NewStreamer(open, audio.NewSource(rs), audio.Options{
		Format:     format,
		ChunkBytes: cfg.Audio.ChunkBytes,
		Depth:      cfg.Audio.RingDepth,
		Poll:       cfg.Audio.Poll,
		Metrics:    deps.Metrics,
	})
	return s, closeFile, nil
}
