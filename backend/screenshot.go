package backend

import (
	"errors"
	"fmt"
	"image"

	"github.com/kbinani/screenshot"

	"github.com/daneluk/screendelta/frame"
)

// Screenshot reads the display's frame buffer directly on every capture.
// It is the portable backend: X11, Windows GDI and CoreGraphics are all
// covered by the screenshot library. There is no frame pacing, so it
// never reports ErrTimeout; every call yields the current contents.
type Screenshot struct{}

func NewScreenshot() *Screenshot { return &Screenshot{} }

func (*Screenshot) Name() string { return "screenshot" }

func (*Screenshot) Displays() ([]Display, error) {
	return displayList()
}

func (*Screenshot) Open(displayIndex int) (Handle, error) {
	if err := preflight(); err != nil {
		return nil, err
	}
	n := screenshot.NumActiveDisplays()
	if n == 0 {
		return nil, fmt.Errorf("%w: no active displays", ErrBackendUnavailable)
	}
	if displayIndex < 0 || displayIndex >= n {
		return nil, fmt.Errorf("%w: index %d of %d displays", ErrNoSuchDisplay, displayIndex, n)
	}
	return &screenshotHandle{
		index: displayIndex,
		rect:  screenshot.GetDisplayBounds(displayIndex),
	}, nil
}

type screenshotHandle struct {
	index  int
	rect   image.Rectangle
	closed bool
}

func (h *screenshotHandle) Capture() (*RawFrame, error) {
	if h.closed {
		return nil, &FatalError{Err: errors.New("capture on closed handle")}
	}
	// The handle is bound to the geometry seen at Open. A changed bounds
	// rectangle means the display was reconfigured; the session must
	// reopen, mirroring duplication-backend semantics.
	if h.index >= screenshot.NumActiveDisplays() {
		return nil, fmt.Errorf("%w: display %d detached", ErrAccessLost, h.index)
	}
	if cur := screenshot.GetDisplayBounds(h.index); cur != h.rect {
		return nil, fmt.Errorf("%w: display %d bounds changed %v -> %v", ErrAccessLost, h.index, h.rect, cur)
	}
	img, err := screenshot.CaptureRect(h.rect)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAccessLost, err)
	}
	return &RawFrame{
		Data:   img.Pix,
		Width:  img.Rect.Dx(),
		Height: img.Rect.Dy(),
		Stride: img.Stride,
		Order:  frame.OrderRGBA,
	}, nil
}

func (h *screenshotHandle) Close() error {
	h.closed = true
	return nil
}

// displayList enumerates attached displays through the screenshot
// library. Shared by every backend on platforms where more than one is
// compiled in.
func displayList() ([]Display, error) {
	n := screenshot.NumActiveDisplays()
	if n == 0 {
		return nil, fmt.Errorf("%w: no active displays", ErrBackendUnavailable)
	}
	out := make([]Display, n)
	for i := 0; i < n; i++ {
		bounds := screenshot.GetDisplayBounds(i)
		out[i] = Display{Index: i, Width: bounds.Dx(), Height: bounds.Dy()}
	}
	return out, nil
}
