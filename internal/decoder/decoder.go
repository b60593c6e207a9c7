// Package decoder reverses the encoder's span payloads back into
// canonical RGBA pixel bytes.
package decoder

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/jpeg"

	"github.com/daneluk/screendelta/internal/packet"
)

// Decode turns a span payload back into width×height canonical RGBA
// bytes.
func Decode(imgType byte, payload []byte, width, height int) ([]byte, error) {
	switch imgType {
	case packet.ImgRaw:
		if len(payload) != width*height*4 {
			return nil, fmt.Errorf("decoder: %d raw bytes for %dx%d block", len(payload), width, height)
		}
		return payload, nil
	case packet.ImgJPEG:
		img, err := jpeg.Decode(bytes.NewReader(payload))
		if err != nil {
			return nil, fmt.Errorf("decoder: jpeg: %w", err)
		}
		b := img.Bounds()
		if b.Dx() != width || b.Dy() != height {
			return nil, fmt.Errorf("decoder: jpeg block is %dx%d, header says %dx%d", b.Dx(), b.Dy(), width, height)
		}
		rgba, ok := img.(*image.RGBA)
		if !ok || rgba.Stride != width*4 {
			rgba = image.NewRGBA(image.Rect(0, 0, width, height))
			draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
		}
		return rgba.Pix, nil
	default:
		return nil, fmt.Errorf("decoder: unknown image type %d", imgType)
	}
}
