package audio

import (
	"errors"
	"time"
)

// ErrCapture reports that the audio source failed to open or read.
var ErrCapture = errors.New("audio: capture failed")

// PCM format agreed with clients out of band.
const (
	SampleRate     = 48000
	Channels       = 2
	BytesPerSample = 2
)

// Chunk is one block of raw PCM. A chunk is handed to exactly one consumer.
type Chunk struct {
	Data      []byte
	Seq       uint64
	Timestamp time.Time
}

// Source produces raw PCM blocks. Read blocks until a block is available;
// Close must unblock a pending Read.
type Source interface {
	Open() error
	Read() ([]byte, error)
	Close() error
}
