package frame

import (
	"bytes"
	"fmt"
)

// Span is a contiguous run of changed pixels within a single row,
// carrying the new pixel values in canonical order.
type Span struct {
	X     int
	Y     int
	Width int
	Pix   []byte
}

// Delta is the set of changed spans between two frames of the same
// geometry. Spans are ordered row-major, left to right; the order is
// deterministic for identical inputs so consumers can apply them
// incrementally.
type Delta struct {
	Width  int
	Height int
	Spans  []Span
}

// Empty reports whether no pixel changed.
func (d *Delta) Empty() bool {
	return len(d.Spans) == 0
}

// Diff compares two buffers of matching geometry and returns the changed
// spans. Contiguous changed pixels within one row form a single span;
// spans never cross rows. Diff of a buffer against itself is empty.
func Diff(prev, cur *Buffer) (*Delta, error) {
	if prev.Width != cur.Width || prev.Height != cur.Height {
		return nil, fmt.Errorf("%w: %dx%d vs %dx%d",
			ErrDimensionMismatch, prev.Width, prev.Height, cur.Width, cur.Height)
	}
	d := &Delta{Width: cur.Width, Height: cur.Height}
	rowBytes := cur.Width * bytesPerPixel
	for y := 0; y < cur.Height; y++ {
		row := y * rowBytes
		prevRow := prev.Pix[row : row+rowBytes]
		curRow := cur.Pix[row : row+rowBytes]
		if bytes.Equal(prevRow, curRow) {
			continue
		}
		for x := 0; x < cur.Width; {
			if pixelEqual(prevRow, curRow, x) {
				x++
				continue
			}
			run := x + 1
			for run < cur.Width && !pixelEqual(prevRow, curRow, run) {
				run++
			}
			span := Span{X: x, Y: y, Width: run - x}
			span.Pix = append([]byte(nil), curRow[x*bytesPerPixel:run*bytesPerPixel]...)
			d.Spans = append(d.Spans, span)
			x = run
		}
	}
	return d, nil
}

func pixelEqual(a, b []byte, x int) bool {
	i := x * bytesPerPixel
	return a[i] == b[i] && a[i+1] == b[i+1] && a[i+2] == b[i+2] && a[i+3] == b[i+3]
}

// FullDelta returns an every-pixel-changed delta for cur: one span per
// row covering it entirely. Used when no baseline exists or the geometry
// changed since the last frame.
func FullDelta(cur *Buffer) *Delta {
	d := &Delta{Width: cur.Width, Height: cur.Height}
	rowBytes := cur.Width * bytesPerPixel
	d.Spans = make([]Span, cur.Height)
	for y := 0; y < cur.Height; y++ {
		pix := append([]byte(nil), cur.Pix[y*rowBytes:(y+1)*rowBytes]...)
		d.Spans[y] = Span{X: 0, Y: y, Width: cur.Width, Pix: pix}
	}
	return d
}

// Apply writes the delta's spans into dst, which must have the geometry
// the delta was produced for. Applying Diff(a, b) onto a copy of a
// reproduces b.
func (d *Delta) Apply(dst *Buffer) error {
	if dst.Width != d.Width || dst.Height != d.Height {
		return fmt.Errorf("%w: delta %dx%d onto buffer %dx%d",
			ErrDimensionMismatch, d.Width, d.Height, dst.Width, dst.Height)
	}
	for _, s := range d.Spans {
		if s.X < 0 || s.Y < 0 || s.Width <= 0 ||
			s.X+s.Width > d.Width || s.Y >= d.Height {
			return fmt.Errorf("%w: span (%d,%d)+%d outside %dx%d",
				ErrOutOfBounds, s.X, s.Y, s.Width, d.Width, d.Height)
		}
		if len(s.Pix) != s.Width*bytesPerPixel {
			return fmt.Errorf("%w: span carries %d bytes for width %d",
				ErrDimensionMismatch, len(s.Pix), s.Width)
		}
		off := (s.Y*d.Width + s.X) * bytesPerPixel
		copy(dst.Pix[off:off+len(s.Pix)], s.Pix)
	}
	return nil
}
