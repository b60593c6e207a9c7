package encoder

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"

	"github.com/daneluk/screendelta/internal/packet"
)

// JPEG encodes blocks as JPEG at a fixed quality.
type JPEG struct {
	quality int
}

// NewJPEG creates a JPEG encoder with the given quality (1-100).
func NewJPEG(quality int) *JPEG {
	if quality < 1 {
		quality = 1
	}
	if quality > 100 {
		quality = 100
	}
	return &JPEG{quality: quality}
}

func (e *JPEG) Encode(pix []byte, width, height int) (byte, []byte, error) {
	if len(pix) != width*height*4 {
		return 0, nil, fmt.Errorf("encoder: %d bytes for %dx%d block", len(pix), width, height)
	}
	img := &image.RGBA{
		Pix:    pix,
		Stride: width * 4,
		Rect:   image.Rect(0, 0, width, height),
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: e.quality}); err != nil {
		return 0, nil, err
	}
	return packet.ImgJPEG, buf.Bytes(), nil
}
