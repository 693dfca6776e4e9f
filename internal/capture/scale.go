package capture

import (
	"image"

	"golang.org/x/image/draw"
)

// Scale returns src resized to w×h. src is returned unchanged when it
// already has that size.
func Scale(src *image.RGBA, w, h int) *image.RGBA {
	b := src.Bounds()
	if b.Dx() == w && b.Dy() == h {
		return src
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)
	return dst
}
