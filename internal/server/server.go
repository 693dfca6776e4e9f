package server

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/net/netutil"
	"golang.org/x/sync/errgroup"
)

// ErrListen reports that a service could not bind or keep serving a port.
var ErrListen = errors.New("server: listener failed")

const (
	readHeaderTimeout  = 10 * time.Second
	shutdownTimeout    = 2 * time.Second
	defaultIdleTimeout = 30 * time.Second
)

// Service is one HTTP service exposed on a plain port and, when TLSConfig
// is set, a TLS port.
type Service struct {
	Name    string
	Handler http.Handler

	Host      string
	Port      int
	TLSPort   int
	TLSConfig *tls.Config

	// MaxConns caps concurrent connections per listener; 0 means no limit.
	MaxConns int
	// IdleTimeout closes keep-alive connections that sit idle, freeing
	// their MaxConns slot. Defaults to 30s.
	IdleTimeout time.Duration
}

// ListenFunc is told about every bound listener.
type ListenFunc func(service string, addr net.Addr, secure bool)

// Run binds the service's listeners and serves until ctx is done or a
// listener fails. Requests observe ctx through their context. Run returns
// only after every handler, hijacked ones included, has finished or the
// shutdown timeout has passed.
func (s Service) Run(ctx context.Context, logger *slog.Logger, onListen ListenFunc) error {
	if logger == nil {
		logger = slog.Default()
	}

	type bound struct {
		ln     net.Listener
		secure bool
	}
	var listeners []bound
	closeAll := func() {
		for _, b := range listeners {
			b.ln.Close()
		}
	}

	ln, err := s.listen(ctx, s.Port)
	if err != nil {
		return err
	}
	listeners = append(listeners, bound{ln: ln})
	if s.TLSConfig != nil {
		tln, err := s.listen(ctx, s.TLSPort)
		if err != nil {
			closeAll()
			return err
		}
		listeners = append(listeners, bound{ln: tls.NewListener(tln, s.TLSConfig), secure: true})
	}

	idleTimeout := s.IdleTimeout
	if idleTimeout <= 0 {
		idleTimeout = defaultIdleTimeout
	}

	g, gctx := errgroup.WithContext(ctx)
	var handlers inflight
	srv := &http.Server{
		Handler:           handlers.wrap(s.Handler),
		ReadHeaderTimeout: readHeaderTimeout,
		IdleTimeout:       idleTimeout,
		BaseContext:       func(net.Listener) context.Context { return gctx },
		ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelWarn),
	}

	for _, b := range listeners {
		logger.Info("server: listening", "service", s.Name, "addr", b.ln.Addr().String(), "tls", b.secure)
		if onListen != nil {
			onListen(s.Name, b.ln.Addr(), b.secure)
		}
		g.Go(func() error {
			if err := srv.Serve(b.ln); !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("%w: %s on %s: %w", ErrListen, s.Name, b.ln.Addr(), err)
			}
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Debug("server: forced close", "service", s.Name, "error", err)
			srv.Close()
		}
		return nil
	})

	err = g.Wait()
	// Shutdown does not track hijacked connections.
	if n := handlers.wait(shutdownTimeout); n > 0 {
		logger.Warn("server: handlers still running after shutdown", "service", s.Name, "handlers", n)
	}
	logger.Info("server: stopped", "service", s.Name)
	return err
}

func (s Service) listen(ctx context.Context, port int) (net.Listener, error) {
	addr := net.JoinHostPort(s.Host, strconv.Itoa(port))
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrListen, s.Name, err)
	}
	if s.MaxConns > 0 {
		ln = netutil.LimitListener(ln, s.MaxConns)
	}
	return ln, nil
}
