package transport

import (
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Kind identifies the service a connection belongs to.
type Kind string

const (
	KindVideo   Kind = "video"
	KindAudio   Kind = "audio"
	KindControl Kind = "control"
)

// Status is the lifecycle state of a connection.
type Status int32

const (
	StatusOpen Status = iota
	StatusClosing
	StatusClosed
)

func (s Status) String() string {
	switch s {
	case StatusOpen:
		return "open"
	case StatusClosing:
		return "closing"
	case StatusClosed:
		return "closed"
	}
	return "unknown"
}

// Conn is the bookkeeping kept for every accepted client connection.
type Conn struct {
	ID     string
	Kind   Kind
	Remote string
	Opened time.Time

	status atomic.Int32
}

// NewConn registers a new open connection.
func NewConn(kind Kind, remote string) *Conn {
	return &Conn{
		ID:     uuid.NewString(),
		Kind:   kind,
		Remote: remote,
		Opened: time.Now(),
	}
}

// Status returns the current lifecycle state.
func (c *Conn) Status() Status {
	return Status(c.status.Load())
}

// MarkClosing moves an open connection to closing. It reports whether the
// caller won the transition.
func (c *Conn) MarkClosing() bool {
	return c.status.CompareAndSwap(int32(StatusOpen), int32(StatusClosing))
}

// MarkClosed marks the connection closed.
func (c *Conn) MarkClosed() {
	c.status.Store(int32(StatusClosed))
}

// LogAttrs returns the slog key/value pairs identifying the connection.
func (c *Conn) LogAttrs() []any {
	return []any{"conn", c.ID, "kind", string(c.Kind), "remote", c.Remote}
}

// BinarySender sends binary messages to one client.
type BinarySender interface {
	SendBinary(data []byte) error
}

// MessageReceiver receives messages from one client.
type MessageReceiver interface {
	Receive() (messageType int, data []byte, err error)
}
