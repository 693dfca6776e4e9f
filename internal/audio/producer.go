package audio

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Producer reads PCM blocks from a Source and pushes them into a Queue.
type Producer struct {
	src   Source
	queue *Queue
	log   *slog.Logger
	seq   uint64
}

// NewProducer creates a producer feeding queue from src.
func NewProducer(src Source, queue *Queue, logger *slog.Logger) *Producer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Producer{src: src, queue: queue, log: logger}
}

// Run reads until ctx is cancelled (returns nil) or the source fails
// (returns an error wrapping ErrCapture). The source is closed on return.
func (p *Producer) Run(ctx context.Context) error {
	if err := p.src.Open(); err != nil {
		return fmt.Errorf("%w: open source: %w", ErrCapture, err)
	}

	var once sync.Once
	closeSource := func() {
		once.Do(func() {
			if err := p.src.Close(); err != nil {
				p.log.Warn("audio: close source", "error", err)
			}
		})
	}
	defer closeSource()
	// Read has no context, so closing the source is what unblocks it.
	stop := context.AfterFunc(ctx, closeSource)
	defer stop()

	p.log.Info("audio: producer started")
	for {
		data, err := p.src.Read()
		if err != nil {
			if ctx.Err() != nil {
				p.log.Info("audio: producer stopped", "chunks", p.seq, "drops", p.queue.Drops())
				return nil
			}
			return fmt.Errorf("%w: read: %w", ErrCapture, err)
		}
		if len(data) == 0 {
			continue
		}
		p.seq++
		if p.queue.Push(&Chunk{Data: data, Seq: p.seq, Timestamp: time.Now()}) {
			p.log.Debug("audio: queue full, dropped oldest chunk", "drops", p.queue.Drops())
		}
	}
}
