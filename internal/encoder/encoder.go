package encoder

import "image"

// Encoder encodes an image into a Chunk.
type Encoder interface {
	Encode(img *image.RGBA) (*Chunk, error)
	SetQuality(quality int)
}
