package capture

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"time"

	"github.com/junsooki/airbridge/internal/pacing"
)

// Producer pulls frames from a Source at a fixed rate and publishes each
// one into a Slot.
type Producer struct {
	src    Source
	slot   *Slot
	fps    int
	width  int
	height int
	log    *slog.Logger

	seq uint64
}

// NewProducer creates a producer. When width and height are positive,
// grabbed images of a different size are scaled to that resolution.
func NewProducer(src Source, slot *Slot, fps, width, height int, logger *slog.Logger) *Producer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Producer{
		src:    src,
		slot:   slot,
		fps:    fps,
		width:  width,
		height: height,
		log:    logger,
	}
}

// Run captures until ctx is cancelled, which returns nil. Any source
// failure is returned wrapped in ErrCapture. The source is closed on every
// exit path.
func (p *Producer) Run(ctx context.Context) error {
	if err := p.src.Open(); err != nil {
		return fmt.Errorf("%w: open source: %w", ErrCapture, err)
	}
	defer func() {
		if err := p.src.Close(); err != nil {
			p.log.Warn("capture: close source", "error", err)
		}
	}()

	pacer := pacing.New(pacing.Interval(p.fps))
	p.log.Info("capture: producer started", "fps", p.fps, "interval", pacer.Interval())

	for {
		if ctx.Err() != nil {
			return nil
		}
		pacer.Start()

		img, err := p.src.Grab()
		if err != nil {
			return fmt.Errorf("%w: grab: %w", ErrCapture, err)
		}
		p.publish(img)

		if !pacer.Wait(ctx) {
			p.log.Info("capture: producer stopped", "frames", p.seq)
			return nil
		}
	}
}

func (p *Producer) publish(img *image.RGBA) {
	if p.width > 0 && p.height > 0 {
		img = Scale(img, p.width, p.height)
	}
	p.seq++
	b := img.Bounds()
	p.slot.Store(&Frame{
		Image:     img,
		Width:     b.Dx(),
		Height:    b.Dy(),
		Seq:       p.seq,
		Timestamp: time.Now(),
	})
}
