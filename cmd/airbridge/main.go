package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/junsooki/airbridge/internal/audio"
	"github.com/junsooki/airbridge/internal/bridge"
	"github.com/junsooki/airbridge/internal/capture"
	"github.com/junsooki/airbridge/internal/config"
	"github.com/junsooki/airbridge/internal/input"
	"github.com/junsooki/airbridge/internal/permissions"
	"github.com/junsooki/airbridge/internal/supervisor"
)

func main() {
	cfg, err := config.ParseFlags(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		fmt.Fprintf(os.Stderr, "\ncapture sources: %v\naudio sources: %v\ninput sinks: %v\n",
			capture.Sources(), audio.Sources(), input.Sinks())
		return
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "airbridge:", err)
		os.Exit(2)
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)

	logger.Info("airbridge: starting",
		"resolution", fmt.Sprintf("%dx%d", cfg.Width, cfg.Height),
		"fps", cfg.FPS,
		"quality", cfg.Quality,
		"capture", cfg.CaptureSource,
		"audio", cfg.AudioSource,
		"input", cfg.InputSink,
		"tls", cfg.TLSEnabled(),
	)

	if cfg.CheckPermissions {
		need := permissions.Need{ScreenRecording: true, Accessibility: cfg.InputSink == "cgevent"}
		if err := permissions.Check(need); err != nil {
			logger.Error("airbridge: missing permission", "error", err)
			os.Exit(1)
		}
	}

	b := bridge.New(cfg, bridge.FromConfig(cfg, logger), logger)
	if err := b.Preflight(); err != nil {
		logger.Error("airbridge: preflight failed", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sup := supervisor.New(b.Build, supervisor.Policy{
		InitialDelay: cfg.Restart.InitialDelay,
		MaxDelay:     cfg.Restart.MaxDelay,
		MaxRestarts:  cfg.Restart.MaxRestarts,
		HealthyAfter: cfg.Restart.HealthyAfter,
	}, logger)
	if err := sup.Run(ctx); err != nil {
		logger.Error("airbridge: giving up", "error", err)
		os.Exit(1)
	}
	logger.Info("airbridge: shut down", "cycles", sup.Cycle(), "restarts", sup.Restarts())
}

func newLogger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}
