// Package encoder turns span pixel runs into wire payloads for the demo
// stream. Raw passes canonical bytes through; JPEG trades fidelity for
// size on larger runs.
package encoder

import (
	"fmt"

	"github.com/daneluk/screendelta/internal/packet"
)

// Encoder encodes a width×height block of canonical RGBA pixels.
type Encoder interface {
	Encode(pix []byte, width, height int) (imgType byte, payload []byte, err error)
}

// Raw passes the canonical pixel bytes through unmodified.
type Raw struct{}

func NewRaw() *Raw { return &Raw{} }

func (*Raw) Encode(pix []byte, width, height int) (byte, []byte, error) {
	if len(pix) != width*height*4 {
		return 0, nil, fmt.Errorf("encoder: %d bytes for %dx%d block", len(pix), width, height)
	}
	return packet.ImgRaw, pix, nil
}
