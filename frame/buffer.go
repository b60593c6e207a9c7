// Package frame holds the canonical in-memory frame representation shared
// by every capture backend: fixed four-channel RGBA pixels, row-major from
// the top-left corner, plus the delta engine that compares two frames.
package frame

import (
	"bytes"
	"errors"
	"fmt"
	"image"
)

const bytesPerPixel = 4

var (
	// ErrDimensionMismatch reports a buffer whose pixel data does not
	// match its declared geometry, or two buffers of differing geometry
	// handed to an operation that requires them to match.
	ErrDimensionMismatch = errors.New("frame: dimension mismatch")
	// ErrOutOfBounds reports a coordinate outside the buffer.
	ErrOutOfBounds = errors.New("frame: coordinate out of bounds")
)

// Pixel is one canonical-format pixel. The channel order is always RGBA
// regardless of the capture source's native order; sources whose fourth
// channel is padding normalize to A=0xFF.
type Pixel struct {
	R, G, B, A uint8
}

// Buffer is a fixed-format frame: Width×Height pixels, four bytes per
// pixel in canonical order. len(Pix) == Width*Height*4 always holds for a
// Buffer constructed through this package.
type Buffer struct {
	Width  int
	Height int
	Pix    []byte
}

// New wraps pix as a Buffer. The data is not copied.
func New(width, height int, pix []byte) (*Buffer, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: invalid geometry %dx%d", ErrDimensionMismatch, width, height)
	}
	if len(pix) != width*height*bytesPerPixel {
		return nil, fmt.Errorf("%w: %d bytes of pixel data for %dx%d", ErrDimensionMismatch, len(pix), width, height)
	}
	return &Buffer{Width: width, Height: height, Pix: pix}, nil
}

// NewUniform returns a buffer with every pixel set to p.
func NewUniform(width, height int, p Pixel) (*Buffer, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: invalid geometry %dx%d", ErrDimensionMismatch, width, height)
	}
	pix := make([]byte, width*height*bytesPerPixel)
	for i := 0; i < len(pix); i += bytesPerPixel {
		pix[i] = p.R
		pix[i+1] = p.G
		pix[i+2] = p.B
		pix[i+3] = p.A
	}
	return &Buffer{Width: width, Height: height, Pix: pix}, nil
}

func (b *Buffer) offset(x, y int) int {
	return (y*b.Width + x) * bytesPerPixel
}

// At returns the pixel at (x, y).
func (b *Buffer) At(x, y int) (Pixel, error) {
	if x < 0 || y < 0 || x >= b.Width || y >= b.Height {
		return Pixel{}, fmt.Errorf("%w: (%d, %d) in %dx%d", ErrOutOfBounds, x, y, b.Width, b.Height)
	}
	i := b.offset(x, y)
	return Pixel{R: b.Pix[i], G: b.Pix[i+1], B: b.Pix[i+2], A: b.Pix[i+3]}, nil
}

// SetAt stores p at (x, y).
func (b *Buffer) SetAt(x, y int, p Pixel) error {
	if x < 0 || y < 0 || x >= b.Width || y >= b.Height {
		return fmt.Errorf("%w: (%d, %d) in %dx%d", ErrOutOfBounds, x, y, b.Width, b.Height)
	}
	i := b.offset(x, y)
	b.Pix[i] = p.R
	b.Pix[i+1] = p.G
	b.Pix[i+2] = p.B
	b.Pix[i+3] = p.A
	return nil
}

// Equal reports whether both buffers have the same geometry and pixels.
func (b *Buffer) Equal(other *Buffer) bool {
	if other == nil {
		return false
	}
	return b.Width == other.Width && b.Height == other.Height && bytes.Equal(b.Pix, other.Pix)
}

// Clone returns a deep copy of the buffer.
func (b *Buffer) Clone() *Buffer {
	pix := make([]byte, len(b.Pix))
	copy(pix, b.Pix)
	return &Buffer{Width: b.Width, Height: b.Height, Pix: pix}
}

// RGBA exposes the buffer as a stdlib image sharing the same pixel data.
// The canonical layout is identical to image.RGBA with a packed stride.
func (b *Buffer) RGBA() *image.RGBA {
	return &image.RGBA{
		Pix:    b.Pix,
		Stride: b.Width * bytesPerPixel,
		Rect:   image.Rect(0, 0, b.Width, b.Height),
	}
}
