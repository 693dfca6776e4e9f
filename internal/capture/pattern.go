package capture

import (
	"image"
	"image/color"
	"time"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// PatternSource renders a moving test pattern with a timestamp. It stands
// in for a real screen on headless hosts.
type PatternSource struct {
	width  int
	height int
	tick   int
}

// NewPatternSource creates a pattern source of the given size.
func NewPatternSource(width, height int) *PatternSource {
	if width <= 0 {
		width = 1280
	}
	if height <= 0 {
		height = 720
	}
	return &PatternSource{width: width, height: height}
}

func (s *PatternSource) Open() error { return nil }

func (s *PatternSource) Close() error { return nil }

// Grab renders the next pattern frame.
func (s *PatternSource) Grab() (*image.RGBA, error) {
	img := image.NewRGBA(image.Rect(0, 0, s.width, s.height))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: color.RGBA{16, 24, 48, 255}}, image.Point{}, draw.Src)

	barW := s.width / 8
	x := (s.tick * 8) % (s.width + barW)
	bar := image.Rect(x-barW, 0, x, s.height).Intersect(img.Bounds())
	draw.Draw(img, bar, &image.Uniform{C: color.RGBA{220, 120, 40, 255}}, image.Point{}, draw.Src)
	s.tick++

	label(img, 20, s.height-30, time.Now().Format("2006-01-02 15:04:05.000"))
	return img, nil
}

func label(img *image.RGBA, x, y int, text string) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.White),
		Face: basicfont.Face7x13,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)},
	}
	d.DrawString(text)
}
