//go:build windows

package backend

import (
	"errors"
	"fmt"
	"image"

	"github.com/kirides/go-d3d/d3d11"
	"github.com/kirides/go-d3d/outputduplication"
	dxgiwin "github.com/kirides/go-d3d/win"

	"github.com/daneluk/screendelta/frame"
)

// DXGI captures through the desktop-duplication API. The duplication
// reports a timeout when the desktop did not change within the wait
// budget, and loses access on mode switches; both map directly onto the
// package error taxonomy.
type DXGI struct {
	// WaitMs bounds a single duplication acquire in milliseconds.
	WaitMs int
}

func NewDXGI() *DXGI { return &DXGI{WaitMs: 200} }

func (*DXGI) Name() string { return "dxgi" }

func (*DXGI) Displays() ([]Display, error) {
	return displayList()
}

func (b *DXGI) Open(displayIndex int) (Handle, error) {
	displays, err := displayList()
	if err != nil {
		return nil, err
	}
	if displayIndex < 0 || displayIndex >= len(displays) {
		return nil, fmt.Errorf("%w: index %d of %d displays", ErrNoSuchDisplay, displayIndex, len(displays))
	}

	if dxgiwin.IsValidDpiAwarenessContext(dxgiwin.DpiAwarenessContextPerMonitorAwareV2) {
		if _, err := dxgiwin.SetThreadDpiAwarenessContext(dxgiwin.DpiAwarenessContextPerMonitorAwareV2); err != nil {
			return nil, fmt.Errorf("%w: set DPI awareness: %v", ErrBackendUnavailable, err)
		}
	}

	device, deviceCtx, err := d3d11.NewD3D11Device()
	if err != nil {
		return nil, fmt.Errorf("%w: create D3D11 device: %v", ErrBackendUnavailable, err)
	}
	ddup, err := outputduplication.NewIDXGIOutputDuplication(device, deviceCtx, uint(displayIndex))
	if err != nil {
		device.Release()
		deviceCtx.Release()
		return nil, fmt.Errorf("%w: duplicate output %d: %v", ErrBackendUnavailable, displayIndex, err)
	}

	return &dxgiHandle{
		device:    device,
		deviceCtx: deviceCtx,
		ddup:      ddup,
		width:     displays[displayIndex].Width,
		height:    displays[displayIndex].Height,
		waitMs:    b.WaitMs,
	}, nil
}

type dxgiHandle struct {
	device    *d3d11.ID3D11Device
	deviceCtx *d3d11.ID3D11DeviceContext
	ddup      *outputduplication.OutputDuplicator
	width     int
	height    int
	waitMs    int
}

func (h *dxgiHandle) Capture() (*RawFrame, error) {
	if h.ddup == nil {
		return nil, &FatalError{Err: errors.New("capture on closed handle")}
	}
	img := image.NewRGBA(image.Rect(0, 0, h.width, h.height))
	err := h.ddup.GetImage(img, uint(h.waitMs))
	if errors.Is(err, outputduplication.ErrNoImageYet) {
		return nil, ErrTimeout
	}
	if err != nil {
		// Device lost, mode switch, or the duplication being revoked all
		// surface here; the handle must be reopened either way.
		return nil, fmt.Errorf("%w: %v", ErrAccessLost, err)
	}
	return &RawFrame{
		Data:   img.Pix,
		Width:  h.width,
		Height: h.height,
		Stride: img.Stride,
		Order:  frame.OrderRGBA,
	}, nil
}

func (h *dxgiHandle) Close() error {
	if h.ddup != nil {
		h.ddup.Release()
		h.ddup = nil
	}
	if h.device != nil {
		h.device.Release()
		h.device = nil
	}
	if h.deviceCtx != nil {
		h.deviceCtx.Release()
		h.deviceCtx = nil
	}
	return nil
}
