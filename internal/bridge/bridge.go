package bridge

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"

	"github.com/junsooki/airbridge/internal/audio"
	"github.com/junsooki/airbridge/internal/capture"
	"github.com/junsooki/airbridge/internal/config"
	"github.com/junsooki/airbridge/internal/control"
	"github.com/junsooki/airbridge/internal/encoder"
	"github.com/junsooki/airbridge/internal/input"
	"github.com/junsooki/airbridge/internal/mjpeg"
	"github.com/junsooki/airbridge/internal/server"
	"github.com/junsooki/airbridge/internal/static"
	"github.com/junsooki/airbridge/internal/supervisor"
)

// Options supplies the platform pieces of a bridge. Each factory is called
// once per cycle.
type Options struct {
	FrameSource func() (capture.Source, error)
	AudioSource func() (audio.Source, error)
	InputSink   func() (input.Sink, error)

	// OnListen, if set, is told about every listener a cycle binds.
	OnListen func(cycle int, service string, addr net.Addr, secure bool)
}

// FromConfig resolves the configured sources and sink through their
// registries.
func FromConfig(cfg *config.Config, logger *slog.Logger) Options {
	return Options{
		FrameSource: func() (capture.Source, error) {
			return capture.NewSource(cfg.CaptureSource, capture.Options{
				DisplayIndex: cfg.DisplayIndex,
				Width:        cfg.Width,
				Height:       cfg.Height,
			})
		},
		AudioSource: func() (audio.Source, error) {
			return audio.NewSource(cfg.AudioSource, audio.Options{ToneHz: cfg.ToneHz})
		},
		InputSink: func() (input.Sink, error) {
			return input.NewSink(cfg.InputSink, logger)
		},
	}
}

// Bridge builds the tasks of one supervisor cycle: a frame producer, an
// audio producer and the video, audio, control and static services.
type Bridge struct {
	cfg  *config.Config
	opts Options
	log  *slog.Logger
}

func New(cfg *config.Config, opts Options, logger *slog.Logger) *Bridge {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bridge{cfg: cfg, opts: opts, log: logger}
}

// Preflight checks settings that no restart can fix: the static root and
// the source and sink names.
func (b *Bridge) Preflight() error {
	fi, err := os.Stat(b.cfg.StaticRoot)
	if err != nil {
		return fmt.Errorf("static root: %w", err)
	}
	if !fi.IsDir() {
		return fmt.Errorf("static root %s is not a directory", b.cfg.StaticRoot)
	}
	if b.opts.FrameSource != nil {
		if _, err := b.opts.FrameSource(); err != nil {
			return err
		}
	}
	if b.opts.AudioSource != nil {
		if _, err := b.opts.AudioSource(); err != nil {
			return err
		}
	}
	if b.opts.InputSink != nil {
		if _, err := b.opts.InputSink(); err != nil {
			return err
		}
	}
	return nil
}

// Build creates fresh state and tasks for a cycle.
func (b *Bridge) Build(cycle int) ([]supervisor.Task, error) {
	cfg := b.cfg
	log := b.log.With("cycle", cycle)

	var tlsConfig *tls.Config
	if cfg.TLSEnabled() {
		var err error
		if tlsConfig, err = server.LoadTLS(cfg.TLSCert, cfg.TLSKey); err != nil {
			return nil, err
		}
	}

	frameSrc, err := b.opts.FrameSource()
	if err != nil {
		return nil, fmt.Errorf("frame source: %w", err)
	}
	audioSrc, err := b.opts.AudioSource()
	if err != nil {
		return nil, fmt.Errorf("audio source: %w", err)
	}
	sink, err := b.opts.InputSink()
	if err != nil {
		return nil, fmt.Errorf("input sink: %w", err)
	}

	slot := capture.NewSlot()
	queue := audio.NewQueue(cfg.AudioQueue)
	enc := encoder.NewJPEGEncoder(cfg.Quality)
	dispatcher := input.NewDispatcher(sink, cfg.Width, cfg.Height)

	onListen := func(service string, addr net.Addr, secure bool) {
		if b.opts.OnListen != nil {
			b.opts.OnListen(cycle, service, addr, secure)
		}
	}
	service := func(name string, ports config.PortPair, h func() (handler, error)) supervisor.Task {
		return supervisor.Task{Name: name, Run: func(ctx context.Context) error {
			hd, err := h()
			if err != nil {
				return err
			}
			defer hd.close()
			svc := server.Service{
				Name:      name,
				Handler:   hd.Handler,
				Host:      cfg.BindHost,
				Port:      ports.Plain,
				TLSPort:   ports.TLS,
				TLSConfig: tlsConfig,
				MaxConns:  cfg.MaxConns,
			}
			return svc.Run(ctx, log, onListen)
		}}
	}

	return []supervisor.Task{
		{Name: "capture", Run: capture.NewProducer(frameSrc, slot, cfg.FPS, cfg.Width, cfg.Height, log).Run},
		{Name: "audio-capture", Run: func(ctx context.Context) error {
			defer queue.Close()
			return audio.NewProducer(audioSrc, queue, log).Run(ctx)
		}},
		service("video", cfg.Video, func() (handler, error) {
			return handler{Handler: mjpeg.NewHandler(slot, enc, cfg.FPS, log)}, nil
		}),
		service("audio", cfg.Audio, func() (handler, error) {
			return handler{Handler: audio.NewHandler(queue, log)}, nil
		}),
		service("control", cfg.Control, func() (handler, error) {
			if err := sink.Open(); err != nil {
				return handler{}, fmt.Errorf("open input sink: %w", err)
			}
			return handler{Handler: control.NewHandler(dispatcher, log), closer: sink.Close}, nil
		}),
		service("static", cfg.Static, func() (handler, error) {
			h, err := static.NewHandler(cfg.StaticRoot, staticPorts(cfg), log)
			if err != nil {
				return handler{}, fmt.Errorf("static root: %w", err)
			}
			return handler{Handler: h, closer: h.Close}, nil
		}),
	}, nil
}

type handler struct {
	http.Handler
	closer func() error
}

func (h handler) close() {
	if h.closer != nil {
		h.closer()
	}
}

func staticPorts(cfg *config.Config) []static.PortPair {
	pairs := make([]static.PortPair, 0, 4)
	for _, p := range []config.PortPair{cfg.Video, cfg.Control, cfg.Audio, cfg.Static} {
		pairs = append(pairs, static.PortPair{Plain: p.Plain, TLS: p.TLS})
	}
	return pairs
}
