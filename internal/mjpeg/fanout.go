package mjpeg

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/junsooki/airbridge/internal/capture"
	"github.com/junsooki/airbridge/internal/encoder"
	"github.com/junsooki/airbridge/internal/pacing"
	"github.com/junsooki/airbridge/internal/transport"
)

// Fanout delivers the shared frame slot to a single client. On every tick
// it snapshots the slot, encodes the frame and writes one chunk, then
// sleeps whatever is left of the interval.
type Fanout struct {
	slot     *capture.Slot
	enc      encoder.Encoder
	w        *Writer
	interval time.Duration
	conn     *transport.Conn
	log      *slog.Logger

	sent uint64
}

// NewFanout creates a fanout writing to w.
func NewFanout(slot *capture.Slot, enc encoder.Encoder, w *Writer, interval time.Duration, conn *transport.Conn, logger *slog.Logger) *Fanout {
	if logger == nil {
		logger = slog.Default()
	}
	return &Fanout{
		slot:     slot,
		enc:      enc,
		w:        w,
		interval: interval,
		conn:     conn,
		log:      logger,
	}
}

// Run streams until ctx is done (returns nil) or a write fails.
func (f *Fanout) Run(ctx context.Context) error {
	pacer := pacing.New(f.interval)
	for {
		pacer.Start()
		if err := f.tick(); err != nil {
			return err
		}
		if !pacer.Wait(ctx) {
			return nil
		}
	}
}

// Sent returns the number of chunks written so far.
func (f *Fanout) Sent() uint64 {
	return f.sent
}

func (f *Fanout) tick() error {
	frame := f.slot.Load()
	if frame == nil {
		return nil
	}
	chunk, err := f.enc.Encode(frame.Image)
	if err != nil {
		f.log.Warn("video: encode frame", append(f.conn.LogAttrs(), "seq", frame.Seq, "error", err)...)
		return nil
	}
	err = f.w.WriteChunk(chunk.Bytes())
	chunk.Release()
	if err != nil {
		return fmt.Errorf("write chunk: %w", err)
	}
	f.sent++
	return nil
}
