package capture

import (
	"time"

	"github.com/daneluk/screendelta/backend"
	"github.com/daneluk/screendelta/frame"
)

// capResult scripts one Capture call on a fake handle.
type capResult struct {
	raw *backend.RawFrame
	err error
}

type fakeHandle struct {
	results []capResult
	pos     int
	closes  int
}

func (h *fakeHandle) Capture() (*backend.RawFrame, error) {
	if h.pos >= len(h.results) {
		// A drained script behaves like a static desktop.
		return nil, backend.ErrTimeout
	}
	r := h.results[h.pos]
	h.pos++
	return r.raw, r.err
}

func (h *fakeHandle) Close() error {
	h.closes++
	return nil
}

// openResult scripts one Open call on the fake backend.
type openResult struct {
	handle *fakeHandle
	err    error
}

type fakeBackend struct {
	opens []openResult
	pos   int
}

func (*fakeBackend) Name() string { return "fake" }

func (*fakeBackend) Displays() ([]backend.Display, error) {
	return []backend.Display{{Index: 0, Width: 4, Height: 4}}, nil
}

func (b *fakeBackend) Open(displayIndex int) (backend.Handle, error) {
	if b.pos >= len(b.opens) {
		return nil, backend.ErrBackendUnavailable
	}
	r := b.opens[b.pos]
	b.pos++
	if r.err != nil {
		return nil, r.err
	}
	return r.handle, nil
}

func rawFrame(w, h int, fill byte) *backend.RawFrame {
	data := make([]byte, w*h*4)
	for i := range data {
		data[i] = fill
	}
	return &backend.RawFrame{Data: data, Width: w, Height: h, Stride: w * 4, Order: frame.OrderRGBA}
}

func testConfig() Config {
	cfg := DefaultConfig()
	// Keep retry behavior governed by MaxRetries, not wall-clock time.
	cfg.WaitBudget = time.Second
	return cfg
}
