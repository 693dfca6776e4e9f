package transport

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// ErrClosed is returned when writing to a connection that has been closed.
var ErrClosed = errors.New("transport: connection closed")

// Message types, mirrored from gorilla/websocket.
const (
	TextMessage   = websocket.TextMessage
	BinaryMessage = websocket.BinaryMessage
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
)

// Clients are served from other origins (the static UI runs on its own
// port), so the origin check is disabled.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  4 * 1024,
	WriteBufferSize: 64 * 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// IsWebSocket reports whether r asks for a WebSocket upgrade.
func IsWebSocket(r *http.Request) bool {
	return websocket.IsWebSocketUpgrade(r)
}

// IsNormalClose reports whether err is the peer closing the socket cleanly.
func IsNormalClose(err error) bool {
	return websocket.IsCloseError(err,
		websocket.CloseNormalClosure,
		websocket.CloseGoingAway,
		websocket.CloseNoStatusReceived,
	)
}

// WSConn is a WebSocket client connection. Writes are serialized; the
// connection pings the peer until closed.
type WSConn struct {
	*Conn

	ws  *websocket.Conn
	log *slog.Logger

	mu        sync.Mutex
	done      chan struct{}
	closeOnce sync.Once
}

// Upgrade completes the WebSocket handshake for r. On failure the upgrader
// has already written an HTTP error response.
func Upgrade(w http.ResponseWriter, r *http.Request, kind Kind, logger *slog.Logger) (*WSConn, error) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return nil, fmt.Errorf("websocket upgrade: %w", err)
	}
	return newWSConn(ws, NewConn(kind, r.RemoteAddr), logger), nil
}

func newWSConn(ws *websocket.Conn, conn *Conn, logger *slog.Logger) *WSConn {
	if logger == nil {
		logger = slog.Default()
	}
	c := &WSConn{
		Conn: conn,
		ws:   ws,
		log:  logger,
		done: make(chan struct{}),
	}
	ws.SetReadLimit(maxMessageSize)
	_ = ws.SetReadDeadline(time.Now().Add(pongWait))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(pongWait))
	})
	go c.pingLoop()
	return c
}

// SendBinary writes data as one binary message.
func (c *WSConn) SendBinary(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Status() != StatusOpen {
		return ErrClosed
	}
	_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
	return c.ws.WriteMessage(websocket.BinaryMessage, data)
}

// Receive blocks for the next data message.
func (c *WSConn) Receive() (int, []byte, error) {
	return c.ws.ReadMessage()
}

// DrainReads discards incoming messages until the peer goes away, so that
// send-only endpoints still process pong and close frames.
func (c *WSConn) DrainReads() error {
	for {
		if _, _, err := c.ws.NextReader(); err != nil {
			return err
		}
	}
}

// Done is closed once Close has been called.
func (c *WSConn) Done() <-chan struct{} {
	return c.done
}

// Close sends a normal close frame and releases the socket. It is safe to
// call more than once.
func (c *WSConn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.MarkClosing()
		close(c.done)
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		_ = c.ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
		err = c.ws.Close()
		c.MarkClosed()
	})
	return err
}

func (c *WSConn) pingLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			if err := c.ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				c.log.Debug("transport: ping failed", append(c.LogAttrs(), "error", err)...)
				return
			}
		}
	}
}
