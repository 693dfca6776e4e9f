package capture

import "sync/atomic"

// Slot holds the most recently published frame. One producer stores into
// it and any number of fanouts load from it; neither side ever blocks.
type Slot struct {
	frame atomic.Pointer[Frame]
}

// NewSlot returns an empty slot.
func NewSlot() *Slot {
	return &Slot{}
}

// Store publishes f, replacing the previous frame.
func (s *Slot) Store(f *Frame) {
	s.frame.Store(f)
}

// Load returns the latest frame, or nil before the first capture.
func (s *Slot) Load() *Frame {
	return s.frame.Load()
}
