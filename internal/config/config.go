package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/junsooki/ArisLoop/internal/audio"
	"github.com/junsooki/ArisLoop/internal/input"
	"github.com/junsooki/ArisLoop/internal/logger"
)

// ErrInvalid is wrapped by every configuration error.
var ErrInvalid = errors.New("invalid configuration")

// Config holds all runtime configuration.
type Config struct {
	AssetDir string
	Frames   FrameConfig
	Display  DisplayConfig
	Audio    AudioConfig

	ExitButton    input.Buttons
	DecodeWorkers int
	LogLevel      logger.LogLevel
}

// FrameConfig describes the animation assets.
type FrameConfig struct {
	Pattern string // fmt pattern taking the zero-based frame index
	Count   int
	Width   int
	Height  int
}

// DisplayConfig controls presentation.
type DisplayConfig struct {
	FPS       int
	Pacing    bool
	Headless  bool
	ExitAfter int // headless only: press the exit button after this many scans (0 = never)
	Scale     int
}

// AudioConfig controls the streaming audio path.
type AudioConfig struct {
	Enabled    bool
	File       string
	SampleRate int
	ChunkBytes int
	RingDepth  int
	Poll       time.Duration // 0 yields with runtime.Gosched instead of sleeping
}

// Default returns the configuration the player ships with.
func Default() *Config {
	return &Config{
		AssetDir: "romfs",
		Frames: FrameConfig{
			Pattern: "aris/aris%02d.qoi",
			Count:   17,
			Width:   320,
			Height:  240,
		},
		Display: DisplayConfig{
			FPS:    24,
			Pacing: true,
			Scale:  2,
		},
		Audio: AudioConfig{
			Enabled:    true,
			File:       "usagi-flap.pcm",
			SampleRate: 48000,
			ChunkBytes: 48000, // a quarter second of 16-bit stereo
			RingDepth:  2,
			Poll:       2 * time.Millisecond,
		},
		ExitButton:    input.ButtonStart,
		DecodeWorkers: 4,
		LogLevel:      logger.INFO,
	}
}

// FromEnv returns the defaults overridden by ARIS_* environment variables.
func FromEnv() (*Config, error) {
	return Load(os.LookupEnv)
}

// Load returns the defaults overridden by whatever lookup reports.
func Load(lookup func(string) (string, bool)) (*Config, error) {
	cfg := Default()
	p := parser{lookup: lookup}

	p.stringVar("ARIS_ASSET_DIR", &cfg.AssetDir)
	p.stringVar("ARIS_FRAME_PATTERN", &cfg.Frames.Pattern)
	p.intVar("ARIS_FRAME_COUNT", &cfg.Frames.Count)
	p.intVar("ARIS_FPS", &cfg.Display.FPS)
	p.boolVar("ARIS_PACING", &cfg.Display.Pacing)
	p.boolVar("ARIS_HEADLESS", &cfg.Display.Headless)
	p.intVar("ARIS_HEADLESS_EXIT_AFTER", &cfg.Display.ExitAfter)
	p.intVar("ARIS_SCALE", &cfg.Display.Scale)
	p.boolVar("ARIS_AUDIO", &cfg.Audio.Enabled)
	p.stringVar("ARIS_AUDIO_FILE", &cfg.Audio.File)
	p.intVar("ARIS_SAMPLE_RATE", &cfg.Audio.SampleRate)
	p.intVar("ARIS_CHUNK_BYTES", &cfg.Audio.ChunkBytes)
	p.intVar("ARIS_RING_DEPTH", &cfg.Audio.RingDepth)
	p.durationVar("ARIS_AUDIO_POLL", &cfg.Audio.Poll)
	p.intVar("ARIS_DECODE_WORKERS", &cfg.DecodeWorkers)

	if v, ok := lookup("ARIS_EXIT_BUTTON"); ok {
		b, err := input.ParseButton(v)
		if err != nil {
			p.fail("ARIS_EXIT_BUTTON", err)
		} else {
			cfg.ExitButton = b
		}
	}
	if v, ok := lookup("ARIS_LOG_LEVEL"); ok {
		lvl, err := logger.ParseLevel(v)
		if err != nil {
			p.fail("ARIS_LOG_LEVEL", err)
		} else {
			cfg.LogLevel = lvl
		}
	}

	if p.err != nil {
		return nil, p.err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the values the player depends on.
func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
		}
	}

	check(c.AssetDir != "", "asset dir is empty")
	check(strings.Contains(c.Frames.Pattern, "%"), "frame pattern %q has no index verb", c.Frames.Pattern)
	check(c.Frames.Count >= 1, "frame count must be at least 1, got %d", c.Frames.Count)
	check(c.Frames.Width > 0 && c.Frames.Height > 0, "frame size must be positive, got %dx%d", c.Frames.Width, c.Frames.Height)
	check(c.Display.FPS > 0, "fps must be positive, got %d", c.Display.FPS)
	check(c.Display.Scale >= 1, "scale must be at least 1, got %d", c.Display.Scale)
	check(c.Display.ExitAfter >= 0, "headless exit-after must not be negative, got %d", c.Display.ExitAfter)
	check(c.ExitButton != 0, "exit button is not set")
	check(c.DecodeWorkers >= 1, "decode workers must be at least 1, got %d", c.DecodeWorkers)

	if c.Audio.Enabled {
		check(c.Audio.File != "", "audio file is empty")
		check(c.Audio.SampleRate > 0, "sample rate must be positive, got %d", c.Audio.SampleRate)
		check(c.Audio.ChunkBytes > 0 && c.Audio.ChunkBytes%4 == 0,
			"chunk size must be a positive multiple of 4 (16-bit stereo frames), got %d", c.Audio.ChunkBytes)
		check(c.Audio.RingDepth >= 2 && c.Audio.RingDepth <= audio.MaxDepth,
			"ring depth must be between 2 and %d, got %d", audio.MaxDepth, c.Audio.RingDepth)
		check(c.Audio.Poll >= 0, "audio poll interval must not be negative, got %v", c.Audio.Poll)
	}
	return errors.Join(errs...)
}

// FrameDuration is the nominal time one frame stays on screen.
func (c *Config) FrameDuration() time.Duration {
	return time.Second / time.Duration(c.Display.FPS)
}

// FrameBytes is the size of one decoded frame and of the display back buffer.
func (c *Config) FrameBytes() int {
	return c.Frames.Width * c.Frames.Height * 4
}

type parser struct {
	lookup func(string) (string, bool)
	err    error
}

func (p *parser) fail(key string, err error) {
	p.err = errors.Join(p.err, fmt.Errorf("%w: %s: %v", ErrInvalid, key, err))
}

func (p *parser) stringVar(key string, dst *string) {
	if v, ok := p.lookup(key); ok {
		*dst = v
	}
}

func (p *parser) intVar(key string, dst *int) {
	v, ok := p.lookup(key)
	if !ok {
		return
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		p.fail(key, err)
		return
	}
	*dst = n
}

func (p *parser) boolVar(key string, dst *bool) {
	v, ok := p.lookup(key)
	if !ok {
		return
	}
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "on", "yes":
		*dst = true
	case "0", "false", "off", "no":
		*dst = false
	default:
		p.fail(key, fmt.Errorf("not a boolean: %q", v))
	}
}

func (p *parser) durationVar(key string, dst *time.Duration) {
	v, ok := p.lookup(key)
	if !ok {
		return
	}
	d, err := time.ParseDuration(strings.TrimSpace(v))
	if err != nil {
		p.fail(key, err)
		return
	}
	*dst = d
}
