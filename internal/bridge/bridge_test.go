package bridge

import (
	"bufio"
	"context"
	"errors"
	"image"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/junsooki/airbridge/internal/audio"
	"github.com/junsooki/airbridge/internal/capture"
	"github.com/junsooki/airbridge/internal/config"
	"github.com/junsooki/airbridge/internal/input"
	"github.com/junsooki/airbridge/internal/supervisor"
)

// flakySource fails after failAfter grabs when failAfter > 0.
type flakySource struct {
	failAfter int
	grabs     int
}

func (s *flakySource) Open() error  { return nil }
func (s *flakySource) Close() error { return nil }
func (s *flakySource) Grab() (*image.RGBA, error) {
	if s.failAfter > 0 && s.grabs >= s.failAfter {
		return nil, errors.New("display disconnected")
	}
	s.grabs++
	return image.NewRGBA(image.Rect(0, 0, 64, 48)), nil
}

type listenEvent struct {
	cycle   int
	service string
	addr    string
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "index.html"), []byte("<html>//LOCALHOST</html>"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg := config.Default()
	cfg.Width, cfg.Height = 64, 48
	cfg.FPS = 50
	cfg.BindHost = "127.0.0.1"
	cfg.Video = config.PortPair{}
	cfg.Control = config.PortPair{}
	cfg.Audio = config.PortPair{}
	cfg.Static = config.PortPair{}
	cfg.StaticRoot = root
	return cfg
}

func TestCaptureFaultRestartsAllServices(t *testing.T) {
	cfg := testConfig(t)

	var builds atomic.Int32
	events := make(chan listenEvent, 64)
	opts := Options{
		FrameSource: func() (capture.Source, error) {
			if builds.Add(1) == 1 {
				return &flakySource{failAfter: 3}, nil
			}
			return &flakySource{}, nil
		},
		AudioSource: func() (audio.Source, error) { return audio.NewToneSource(440), nil },
		InputSink:   func() (input.Sink, error) { return input.NewLogSink(nil), nil },
		OnListen: func(cycle int, service string, addr net.Addr, _ bool) {
			events <- listenEvent{cycle: cycle, service: service, addr: addr.String()}
		},
	}
	b := New(cfg, opts, nil)

	ctx, cancel := context.WithCancel(context.Background())
	sup := supervisor.New(b.Build, supervisor.Policy{InitialDelay: 10 * time.Millisecond, MaxDelay: 50 * time.Millisecond, HealthyAfter: time.Hour}, nil)
	done := make(chan error, 1)
	go func() { done <- sup.Run(ctx) }()

	addrs := map[string]string{}
	deadline := time.After(5 * time.Second)
	for len(addrs) < 4 {
		select {
		case ev := <-events:
			if ev.cycle >= 2 {
				addrs[ev.service] = ev.addr
			}
		case <-deadline:
			t.Fatalf("services did not come back after the capture fault; got %v", addrs)
		}
	}

	resp, err := http.Get("http://" + addrs["video"])
	if err != nil {
		t.Fatalf("video GET: %v", err)
	}
	line, err := bufio.NewReader(resp.Body).ReadString('\n')
	resp.Body.Close()
	if err != nil || line != "\r\n" {
		t.Fatalf("video stream start = %q, %v", line, err)
	}

	ctrl, _, err := websocket.DefaultDialer.Dial("ws://"+addrs["control"], nil)
	if err != nil {
		t.Fatalf("control dial: %v", err)
	}
	if err := ctrl.WriteMessage(websocket.TextMessage, []byte(`{"Type":"move","X":1,"Y":1}`)); err != nil {
		t.Fatalf("control write: %v", err)
	}
	ctrl.Close()

	au, _, err := websocket.DefaultDialer.Dial("ws://"+addrs["audio"], nil)
	if err != nil {
		t.Fatalf("audio dial: %v", err)
	}
	au.SetReadDeadline(time.Now().Add(2 * time.Second))
	if typ, _, err := au.ReadMessage(); err != nil || typ != websocket.BinaryMessage {
		t.Fatalf("audio read = %d, %v", typ, err)
	}
	au.Close()

	resp, err = http.Get("http://" + addrs["static"] + "/")
	if err != nil {
		t.Fatalf("static GET: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("static status = %d", resp.StatusCode)
	}

	if sup.Restarts() < 1 {
		t.Errorf("Restarts = %d, want at least 1", sup.Restarts())
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("supervisor did not stop")
	}
}

func TestBadCertificateIsListenerFault(t *testing.T) {
	cfg := testConfig(t)
	cfg.TLSCert = filepath.Join(t.TempDir(), "missing.pem")
	cfg.TLSKey = cfg.TLSCert
	b := New(cfg, FromConfig(cfg, nil), nil)
	if _, err := b.Build(1); err == nil {
		t.Fatal("Build succeeded with an unloadable certificate")
	}
}

func TestPreflightMissingStaticRoot(t *testing.T) {
	cfg := testConfig(t)
	cfg.StaticRoot = filepath.Join(cfg.StaticRoot, "nope")
	if err := New(cfg, Options{}, nil).Preflight(); err == nil {
		t.Fatal("Preflight accepted a missing static root")
	}

	cfg = testConfig(t)
	cfg.CaptureSource = "webcam"
	if err := New(cfg, FromConfig(cfg, nil), nil).Preflight(); err == nil {
		t.Fatal("Preflight accepted an unknown capture source")
	}
}

func TestFromConfigUsesRegistries(t *testing.T) {
	cfg := testConfig(t)
	cfg.CaptureSource = "pattern"
	opts := FromConfig(cfg, nil)
	if err := New(cfg, opts, nil).Preflight(); err != nil {
		t.Fatalf("Preflight: %v", err)
	}

	if _, err := opts.FrameSource(); err != nil {
		t.Errorf("frame source: %v", err)
	}
	if _, err := opts.AudioSource(); err != nil {
		t.Errorf("audio source: %v", err)
	}
	if _, err := opts.InputSink(); err != nil {
		t.Errorf("input sink: %v", err)
	}
}
