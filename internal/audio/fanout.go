package audio

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/junsooki/airbridge/internal/transport"
)

// Fanout forwards queued chunks to one client, one binary message per
// chunk. Fanouts sharing a queue compete for chunks.
type Fanout struct {
	queue *Queue
	out   transport.BinarySender
	conn  *transport.Conn
	log   *slog.Logger
	sent  uint64
}

// NewFanout creates a fanout from queue to out.
func NewFanout(queue *Queue, out transport.BinarySender, conn *transport.Conn, logger *slog.Logger) *Fanout {
	if logger == nil {
		logger = slog.Default()
	}
	return &Fanout{queue: queue, out: out, conn: conn, log: logger}
}

// Run sends chunks until ctx is done, the queue closes or a send fails.
func (f *Fanout) Run(ctx context.Context) error {
	for {
		c, err := f.queue.Pop(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, ErrQueueClosed) {
				return nil
			}
			return err
		}
		if err := f.out.SendBinary(c.Data); err != nil {
			return fmt.Errorf("send chunk %d: %w", c.Seq, err)
		}
		f.sent++
	}
}

// Sent returns the number of chunks delivered.
func (f *Fanout) Sent() uint64 {
	return f.sent
}
