package capture

import (
	"fmt"
	"image"

	"github.com/kbinani/screenshot"
)

// ScreenshotSource captures a display through kbinani/screenshot.
type ScreenshotSource struct {
	displayIndex int
	bounds       image.Rectangle
}

// NewScreenshotSource creates a source for the given display index.
func NewScreenshotSource(displayIndex int) *ScreenshotSource {
	return &ScreenshotSource{displayIndex: displayIndex}
}

// Open resolves the display bounds.
func (s *ScreenshotSource) Open() error {
	n := screenshot.NumActiveDisplays()
	if s.displayIndex < 0 || s.displayIndex >= n {
		return fmt.Errorf("display index %d out of range (have %d displays)", s.displayIndex, n)
	}
	s.bounds = screenshot.GetDisplayBounds(s.displayIndex)
	if s.bounds.Empty() {
		return fmt.Errorf("display %d has empty bounds", s.displayIndex)
	}
	return nil
}

func (s *ScreenshotSource) Grab() (*image.RGBA, error) {
	return screenshot.CaptureRect(s.bounds)
}

func (s *ScreenshotSource) Close() error { return nil }
