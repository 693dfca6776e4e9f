package encoder

import (
	"bytes"
	"image"
	"image/jpeg"
	"sync"
	"sync/atomic"
)

// Chunk is one encoded image. It lives for a single write and must be
// released afterwards.
type Chunk struct {
	buf  *bytes.Buffer
	pool *sync.Pool
}

// Bytes returns the encoded data. It is invalid after Release.
func (c *Chunk) Bytes() []byte { return c.buf.Bytes() }

// Len returns the encoded size in bytes.
func (c *Chunk) Len() int { return c.buf.Len() }

// Release returns the chunk's buffer for reuse.
func (c *Chunk) Release() {
	if c.pool == nil || c.buf == nil {
		return
	}
	c.buf.Reset()
	c.pool.Put(c.buf)
	c.buf = nil
}

// JPEGEncoder encodes frames as JPEG. It is safe for concurrent use, so one
// encoder can serve every MJPEG connection.
type JPEGEncoder struct {
	quality atomic.Int32
	pool    sync.Pool
}

// NewJPEGEncoder creates a JPEG encoder with the given quality (1-100).
func NewJPEGEncoder(quality int) *JPEGEncoder {
	e := &JPEGEncoder{}
	e.pool.New = func() any {
		b := new(bytes.Buffer)
		b.Grow(256 * 1024)
		return b
	}
	e.SetQuality(quality)
	return e
}

// SetQuality changes the quality used by later Encode calls.
func (e *JPEGEncoder) SetQuality(quality int) {
	e.quality.Store(int32(clampQuality(quality)))
}

// Quality returns the current quality.
func (e *JPEGEncoder) Quality() int {
	return int(e.quality.Load())
}

func (e *JPEGEncoder) Encode(img *image.RGBA) (*Chunk, error) {
	buf := e.pool.Get().(*bytes.Buffer)
	if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: e.Quality()}); err != nil {
		buf.Reset()
		e.pool.Put(buf)
		return nil, err
	}
	return &Chunk{buf: buf, pool: &e.pool}, nil
}

func clampQuality(q int) int {
	if q < 1 {
		return 1
	}
	if q > 100 {
		return 100
	}
	return q
}
