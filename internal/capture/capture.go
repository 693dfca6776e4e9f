package capture

import (
	"errors"
	"image"
	"time"
)

// ErrCapture marks a failure of the frame source. It is fatal to the
// running service set.
var ErrCapture = errors.New("capture fault")

// PixelFormat names the layout of Frame.Image.Pix.
const PixelFormat = "RGBA8888"

// Frame represents a captured screen frame. Published frames are shared by
// every reader and must not be modified.
type Frame struct {
	Image     *image.RGBA
	Width     int
	Height    int
	Seq       uint64
	Timestamp time.Time
}

// Source is the capability the producer pulls raw screen images from.
type Source interface {
	Open() error
	Grab() (*image.RGBA, error)
	Close() error
}
