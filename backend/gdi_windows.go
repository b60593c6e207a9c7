//go:build windows

package backend

import (
	"errors"
	"fmt"
	"syscall"
	"unsafe"

	"github.com/lxn/win"

	"github.com/daneluk/screendelta/frame"
)

var (
	libUser32            = syscall.NewLazyDLL("user32.dll")
	procGetDesktopWindow = libUser32.NewProc("GetDesktopWindow")
)

// GDI captures through BitBlt into a device-independent bitmap. It is the
// fallback when desktop duplication is unavailable (RDP sessions, older
// drivers). Like the portable backend it has no frame pacing and never
// reports ErrTimeout.
type GDI struct{}

func NewGDI() *GDI { return &GDI{} }

func (*GDI) Name() string { return "gdi" }

func (*GDI) Displays() ([]Display, error) {
	return displayList()
}

func (*GDI) Open(displayIndex int) (Handle, error) {
	displays, err := displayList()
	if err != nil {
		return nil, err
	}
	if displayIndex < 0 || displayIndex >= len(displays) {
		return nil, fmt.Errorf("%w: index %d of %d displays", ErrNoSuchDisplay, displayIndex, len(displays))
	}

	h := &gdiHandle{
		width:  displays[displayIndex].Width,
		height: displays[displayIndex].Height,
	}
	if err := h.init(); err != nil {
		h.Close()
		return nil, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	return h, nil
}

type gdiHandle struct {
	width  int
	height int

	hwnd       win.HWND
	hdc        win.HDC
	memDC      win.HDC
	bitmap     win.HBITMAP
	bitmapInfo win.BITMAPINFOHEADER
	dataSize   uintptr
	hmem       win.HGLOBAL
	memptr     unsafe.Pointer
	closed     bool
}

func (h *gdiHandle) init() error {
	ret, _, _ := procGetDesktopWindow.Call()
	h.hwnd = win.HWND(ret)

	h.hdc = win.GetDC(h.hwnd)
	if h.hdc == 0 {
		return errors.New("GetDC failed")
	}
	h.memDC = win.CreateCompatibleDC(h.hdc)
	if h.memDC == 0 {
		return errors.New("CreateCompatibleDC failed")
	}
	h.bitmap = win.CreateCompatibleBitmap(h.hdc, int32(h.width), int32(h.height))
	if h.bitmap == 0 {
		return errors.New("CreateCompatibleBitmap failed")
	}

	h.bitmapInfo = win.BITMAPINFOHEADER{}
	h.bitmapInfo.BiSize = uint32(unsafe.Sizeof(h.bitmapInfo))
	h.bitmapInfo.BiPlanes = 1
	h.bitmapInfo.BiBitCount = 32
	h.bitmapInfo.BiWidth = int32(h.width)
	h.bitmapInfo.BiHeight = -int32(h.height)
	h.bitmapInfo.BiCompression = win.BI_RGB
	h.bitmapInfo.BiSizeImage = uint32(h.width * h.height * 4)

	h.dataSize = uintptr(((int64(h.width)*32 + 31) / 32) * 4 * int64(h.height))
	h.hmem = win.GlobalAlloc(win.GMEM_MOVEABLE, h.dataSize)
	if h.hmem == 0 {
		return errors.New("GlobalAlloc failed")
	}
	h.memptr = win.GlobalLock(h.hmem)
	if h.memptr == nil {
		return errors.New("GlobalLock failed")
	}
	return nil
}

func (h *gdiHandle) Capture() (*RawFrame, error) {
	if h.closed {
		return nil, &FatalError{Err: errors.New("capture on closed handle")}
	}

	old := win.SelectObject(h.memDC, win.HGDIOBJ(h.bitmap))
	if old == 0 {
		return nil, &FatalError{Err: errors.New("SelectObject failed")}
	}
	if !win.BitBlt(h.memDC, 0, 0, int32(h.width), int32(h.height), h.hdc, 0, 0, win.SRCCOPY) {
		// BitBlt fails across mode switches and session changes.
		return nil, fmt.Errorf("%w: BitBlt failed", ErrAccessLost)
	}
	if win.GetDIBits(h.hdc, h.bitmap, 0, uint32(h.height), (*uint8)(h.memptr),
		(*win.BITMAPINFO)(unsafe.Pointer(&h.bitmapInfo)), win.DIB_RGB_COLORS) == 0 {
		return nil, fmt.Errorf("%w: GetDIBits failed", ErrAccessLost)
	}

	data := make([]byte, h.dataSize)
	copy(data, unsafe.Slice((*byte)(h.memptr), h.dataSize))

	// GetDIBits yields 32-bit BGR with an undefined fourth byte; the
	// normalization step rewrites it as opaque alpha.
	return &RawFrame{
		Data:   data,
		Width:  h.width,
		Height: h.height,
		Stride: h.width * 4,
		Order:  frame.OrderBGRX,
	}, nil
}

func (h *gdiHandle) Close() error {
	if h.closed {
		return nil
	}
	h.closed = true
	if h.hdc != 0 {
		win.ReleaseDC(h.hwnd, h.hdc)
		h.hdc = 0
	}
	if h.memDC != 0 {
		win.DeleteDC(h.memDC)
		h.memDC = 0
	}
	if h.bitmap != 0 {
		win.DeleteObject(win.HGDIOBJ(h.bitmap))
		h.bitmap = 0
	}
	if h.hmem != 0 {
		win.GlobalUnlock(h.hmem)
		win.GlobalFree(h.hmem)
		h.hmem = 0
		h.memptr = nil
	}
	return nil
}
