package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/junsooki/ArisLoop/internal/config"
	"github.com/junsooki/ArisLoop/internal/decoder"
	"github.com/junsooki/ArisLoop/internal/display"
	"github.com/junsooki/ArisLoop/internal/logger"
	"github.com/junsooki/ArisLoop/internal/player"
)

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		logger.Init(logger.INFO, os.Stderr, logger.IsTerminal(os.Stderr))
		logger.Fatal("main", "config: %v", err)
	}
	logger.Init(cfg.LogLevel, os.Stderr, logger.IsTerminal(os.Stderr))

	logger.Info("main", "%s starting", player.Title)
	logger.Info("main", "  Assets:  %s", cfg.AssetDir)
	logger.Info("main", "  Frames:  %d x %dx%d @ %d fps (%s)", cfg.Frames.Count, cfg.Frames.Width, cfg.Frames.Height,
		cfg.Display.FPS, strings.Join(decoder.Formats, "/"))
	if cfg.Audio.Enabled {
		logger.Info("main", "  Audio:   %s, %d Hz, %d x %d bytes", cfg.Audio.File, cfg.Audio.SampleRate, cfg.Audio.RingDepth, cfg.Audio.ChunkBytes)
	} else {
		logger.Info("main", "  Audio:   disabled")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var disp display.Display
	if cfg.Display.Headless {
		disp = display.NewHeadless(display.HeadlessOptions{
			Width:      cfg.Frames.Width,
			Height:     cfg.Frames.Height,
			ExitAfter:  cfg.Display.ExitAfter,
			ExitButton: cfg.ExitButton,
		})
	} else {
		disp = display.NewWindow(display.Options{
			Title:       player.Title,
			Width:       cfg.Frames.Width,
			Height:      cfg.Frames.Height,
			Scale:       cfg.Display.Scale,
			CloseButton: cfg.ExitButton,
		})
	}

	result := make(chan error, 1)
	go func() {
		err := player.Run(ctx, cfg, player.Deps{Display: disp})
		disp.Close()
		result <- err
	}()

	// Ebitengine RunGame must be on the main goroutine (macOS requirement).
	if err := disp.Run(); err != nil {
		logger.Fatal("main", "display: %v", err)
	}
	if err := <-result; err != nil {
		logger.Fatal("main", "%v", err)
	}
	logger.Info("main", "bye")
}
