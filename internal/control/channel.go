package control

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/junsooki/airbridge/internal/input"
	"github.com/junsooki/airbridge/internal/transport"
)

// Dispatcher replays a parsed command on the host.
type Dispatcher interface {
	Dispatch(c *input.Command) error
}

// Channel reads control messages from one client and dispatches them.
// Bad messages are logged and skipped; only transport errors end the
// channel.
type Channel struct {
	in       transport.MessageReceiver
	conn     *transport.Conn
	dispatch Dispatcher
	log      *slog.Logger

	handled uint64
	faults  uint64
}

func NewChannel(in transport.MessageReceiver, conn *transport.Conn, d Dispatcher, logger *slog.Logger) *Channel {
	if logger == nil {
		logger = slog.Default()
	}
	return &Channel{in: in, conn: conn, dispatch: d, log: logger}
}

// Run receives until the peer disconnects or ctx is done. A clean close
// returns nil.
func (c *Channel) Run(ctx context.Context) error {
	for {
		typ, data, err := c.in.Receive()
		if err != nil {
			if ctx.Err() != nil || transport.IsNormalClose(err) {
				return nil
			}
			return fmt.Errorf("receive: %w", err)
		}
		if typ != transport.TextMessage {
			c.log.Debug("control: ignoring non-text message", append(c.conn.LogAttrs(), "type", typ, "bytes", len(data))...)
			continue
		}

		cmd, err := input.ParseCommand(data)
		if err != nil {
			c.faults++
			c.log.Warn("control: bad message", append(c.conn.LogAttrs(), "error", err)...)
			continue
		}
		if err := c.dispatch.Dispatch(cmd); err != nil {
			c.faults++
			c.log.Warn("control: dispatch failed", append(c.conn.LogAttrs(), "type", string(cmd.Type), "error", err)...)
			continue
		}
		c.handled++
	}
}

// Handled returns the number of commands dispatched.
func (c *Channel) Handled() uint64 { return c.handled }

// Faults returns the number of rejected messages.
func (c *Channel) Faults() uint64 { return c.faults }
