package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// PortPair is a service's plain and TLS port.
type PortPair struct {
	Plain int `yaml:"plain"`
	TLS   int `yaml:"tls"`
}

// RestartConfig controls how the supervisor restarts failed cycles.
type RestartConfig struct {
	InitialDelay time.Duration `yaml:"initial_delay"`
	MaxDelay     time.Duration `yaml:"max_delay"`
	MaxRestarts  int           `yaml:"max_restarts"` // 0 = unlimited
	HealthyAfter time.Duration `yaml:"healthy_after"`
}

// Config holds all runtime configuration.
type Config struct {
	// Host resolution; captured frames are scaled to this size and remote
	// pointer positions are mapped into it.
	Width   int `yaml:"width"`
	Height  int `yaml:"height"`
	FPS     int `yaml:"fps"`
	Quality int `yaml:"quality"`

	CaptureSource string  `yaml:"capture_source"`
	DisplayIndex  int     `yaml:"display"`
	AudioSource   string  `yaml:"audio_source"`
	ToneHz        float64 `yaml:"tone_hz"`
	InputSink     string  `yaml:"input_sink"`

	BindHost string   `yaml:"bind_host"`
	Video    PortPair `yaml:"video"`
	Control  PortPair `yaml:"control"`
	Audio    PortPair `yaml:"audio"`
	Static   PortPair `yaml:"static"`
	TLSCert  string   `yaml:"tls_cert"`
	TLSKey   string   `yaml:"tls_key"`

	MaxConns         int    `yaml:"max_conns"`
	AudioQueue       int    `yaml:"audio_queue"`
	StaticRoot       string `yaml:"static_root"`
	CheckPermissions bool   `yaml:"check_permissions"`

	Restart RestartConfig `yaml:"restart"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Width:         1280,
		Height:        720,
		FPS:           30,
		Quality:       60,
		CaptureSource: "screenshot",
		AudioSource:   "tone",
		ToneHz:        440,
		InputSink:     "log",
		Video:         PortPair{Plain: 9000, TLS: 9443},
		Control:       PortPair{Plain: 8081, TLS: 8444},
		Audio:         PortPair{Plain: 8082, TLS: 8445},
		Static:        PortPair{Plain: 8080, TLS: 8443},
		MaxConns:      32,
		AudioQueue:    64,
		StaticRoot:    "www",
		Restart: RestartConfig{
			InitialDelay: 1 * time.Second,
			MaxDelay:     30 * time.Second,
			HealthyAfter: 30 * time.Second,
		},
		LogLevel:  "info",
		LogFormat: "text",
	}
}

// Load reads a YAML file on top of the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// ParseFlags builds the configuration from command-line arguments. When
// -config is given the file is loaded first; flags set explicitly on the
// command line override it.
func ParseFlags(args []string) (*Config, error) {
	fs := flag.NewFlagSet("airbridge", flag.ContinueOnError)
	configPath := fs.String("config", "", "YAML configuration file")

	cfg := Default()
	bind(fs, cfg)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if *configPath != "" {
		loaded, err := Load(*configPath)
		if err != nil {
			return nil, err
		}
		// Re-apply the flags the user actually set.
		over := flag.NewFlagSet("airbridge", flag.ContinueOnError)
		bind(over, loaded)
		var reapply []string
		fs.Visit(func(f *flag.Flag) {
			if f.Name != "config" {
				reapply = append(reapply, "-"+f.Name+"="+f.Value.String())
			}
		})
		if err := over.Parse(reapply); err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func bind(fs *flag.FlagSet, cfg *Config) {
	fs.IntVar(&cfg.Width, "width", cfg.Width, "Host width in pixels")
	fs.IntVar(&cfg.Height, "height", cfg.Height, "Host height in pixels")
	fs.IntVar(&cfg.FPS, "fps", cfg.FPS, "Target frames per second")
	fs.IntVar(&cfg.Quality, "quality", cfg.Quality, "JPEG quality (1-100)")
	fs.StringVar(&cfg.CaptureSource, "capture", cfg.CaptureSource, "Screen capture source")
	fs.IntVar(&cfg.DisplayIndex, "display", cfg.DisplayIndex, "Display index to capture (0 = primary)")
	fs.StringVar(&cfg.AudioSource, "audio", cfg.AudioSource, "Audio capture source")
	fs.Float64Var(&cfg.ToneHz, "tone-hz", cfg.ToneHz, "Frequency of the tone audio source")
	fs.StringVar(&cfg.InputSink, "input", cfg.InputSink, "Input injection backend")
	fs.StringVar(&cfg.BindHost, "bind", cfg.BindHost, "Address to bind listeners to (empty = all)")
	fs.IntVar(&cfg.Video.Plain, "video-port", cfg.Video.Plain, "MJPEG port")
	fs.IntVar(&cfg.Video.TLS, "video-tls-port", cfg.Video.TLS, "MJPEG TLS port")
	fs.IntVar(&cfg.Control.Plain, "control-port", cfg.Control.Plain, "Control WebSocket port")
	fs.IntVar(&cfg.Control.TLS, "control-tls-port", cfg.Control.TLS, "Control WebSocket TLS port")
	fs.IntVar(&cfg.Audio.Plain, "audio-port", cfg.Audio.Plain, "Audio WebSocket port")
	fs.IntVar(&cfg.Audio.TLS, "audio-tls-port", cfg.Audio.TLS, "Audio WebSocket TLS port")
	fs.IntVar(&cfg.Static.Plain, "static-port", cfg.Static.Plain, "Web client port")
	fs.IntVar(&cfg.Static.TLS, "static-tls-port", cfg.Static.TLS, "Web client TLS port")
	fs.StringVar(&cfg.TLSCert, "tls-cert", cfg.TLSCert, "TLS certificate file (enables TLS listeners)")
	fs.StringVar(&cfg.TLSKey, "tls-key", cfg.TLSKey, "TLS private key file")
	fs.IntVar(&cfg.MaxConns, "max-conns", cfg.MaxConns, "Max concurrent connections per listener (0 = unlimited)")
	fs.IntVar(&cfg.AudioQueue, "audio-queue", cfg.AudioQueue, "Audio queue capacity in chunks")
	fs.StringVar(&cfg.StaticRoot, "www", cfg.StaticRoot, "Web client directory")
	fs.BoolVar(&cfg.CheckPermissions, "check-permissions", cfg.CheckPermissions, "Require macOS screen recording and accessibility permissions")
	fs.IntVar(&cfg.Restart.MaxRestarts, "max-restarts", cfg.Restart.MaxRestarts, "Consecutive restarts before giving up (0 = unlimited)")
	fs.DurationVar(&cfg.Restart.HealthyAfter, "healthy-after", cfg.Restart.HealthyAfter, "Uptime after which a cycle counts as healthy")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "Log format (text, json)")
}

// Validate checks the configuration for values the bridge cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.Width <= 0 || c.Height <= 0 {
		errs = append(errs, fmt.Errorf("resolution must be positive, got %dx%d", c.Width, c.Height))
	}
	if c.FPS <= 0 || c.FPS > 1000 {
		errs = append(errs, fmt.Errorf("fps must be in 1..1000, got %d", c.FPS))
	}
	if c.Quality < 1 || c.Quality > 100 {
		errs = append(errs, fmt.Errorf("quality must be in 1..100, got %d", c.Quality))
	}
	if c.MaxConns < 0 {
		errs = append(errs, fmt.Errorf("max_conns must not be negative"))
	}
	if c.AudioQueue <= 0 {
		errs = append(errs, fmt.Errorf("audio_queue must be positive, got %d", c.AudioQueue))
	}
	if (c.TLSCert == "") != (c.TLSKey == "") {
		errs = append(errs, errors.New("tls_cert and tls_key must be set together"))
	}

	seen := map[int]string{}
	for _, p := range []struct {
		name string
		port int
		tls  bool
	}{
		{"video", c.Video.Plain, false},
		{"control", c.Control.Plain, false},
		{"audio", c.Audio.Plain, false},
		{"static", c.Static.Plain, false},
		{"video tls", c.Video.TLS, true},
		{"control tls", c.Control.TLS, true},
		{"audio tls", c.Audio.TLS, true},
		{"static tls", c.Static.TLS, true},
	} {
		if p.tls && !c.TLSEnabled() {
			continue
		}
		if p.port <= 0 || p.port > 65535 {
			errs = append(errs, fmt.Errorf("%s port out of range: %d", p.name, p.port))
			continue
		}
		if other, ok := seen[p.port]; ok {
			errs = append(errs, fmt.Errorf("%s port %d already used by %s", p.name, p.port, other))
		}
		seen[p.port] = p.name
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("unknown log level %q", c.LogLevel))
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("unknown log format %q", c.LogFormat))
	}
	return errors.Join(errs...)
}

// TLSEnabled reports whether TLS listeners should be started.
func (c *Config) TLSEnabled() bool {
	return c.TLSCert != "" && c.TLSKey != ""
}
