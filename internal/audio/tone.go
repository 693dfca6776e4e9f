package audio

import (
	"encoding/binary"
	"errors"
	"math"
	"sync"
	"time"
)

// ChunkDuration is the amount of audio in one ToneSource block.
const ChunkDuration = 20 * time.Millisecond

var errSourceClosed = errors.New("audio: source closed")

// ToneSource generates a sine tone in real time. It is used on hosts
// without a loopback capture device.
type ToneSource struct {
	freq      float64
	amplitude float64

	mu     sync.Mutex
	phase  float64
	next   time.Time
	done   chan struct{}
	closed bool
}

// NewToneSource creates a tone generator at freq Hz.
func NewToneSource(freq float64) *ToneSource {
	if freq <= 0 {
		freq = 440
	}
	return &ToneSource{freq: freq, amplitude: 0.2}
}

func (s *ToneSource) Open() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.done = make(chan struct{})
	s.closed = false
	s.next = time.Now()
	return nil
}

// Read returns the next 20ms block once it is due.
func (s *ToneSource) Read() ([]byte, error) {
	s.mu.Lock()
	done := s.done
	wait := time.Until(s.next)
	s.mu.Unlock()
	if done == nil {
		return nil, errors.New("audio: tone source not open")
	}

	if wait > 0 {
		timer := time.NewTimer(wait)
		defer timer.Stop()
		select {
		case <-done:
			return nil, errSourceClosed
		case <-timer.C:
		}
	} else {
		select {
		case <-done:
			return nil, errSourceClosed
		default:
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.next = s.next.Add(ChunkDuration)
	return s.render(), nil
}

func (s *ToneSource) render() []byte {
	frames := SampleRate * int(ChunkDuration/time.Millisecond) / 1000
	buf := make([]byte, frames*Channels*BytesPerSample)
	step := 2 * math.Pi * s.freq / SampleRate
	for i := 0; i < frames; i++ {
		v := int16(math.Sin(s.phase) * s.amplitude * math.MaxInt16)
		for ch := 0; ch < Channels; ch++ {
			off := (i*Channels + ch) * BytesPerSample
			binary.LittleEndian.PutUint16(buf[off:], uint16(v))
		}
		s.phase += step
		if s.phase > 2*math.Pi {
			s.phase -= 2 * math.Pi
		}
	}
	return buf
}

func (s *ToneSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done != nil && !s.closed {
		s.closed = true
		close(s.done)
	}
	return nil
}
