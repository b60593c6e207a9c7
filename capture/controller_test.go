package capture

import (
	"errors"
	"testing"

	"github.com/daneluk/screendelta/backend"
)

func newTestController(t *testing.T, b *fakeBackend, cfg Config) *Controller {
	t.Helper()
	c := NewController(b, 0, cfg)
	if err := c.Open(); err != nil {
		t.Fatalf("Open: %v", err)
	}
	return c
}

func TestControllerCaptureFrame(t *testing.T) {
	h := &fakeHandle{results: []capResult{{raw: rawFrame(2, 2, 5)}}}
	c := newTestController(t, &fakeBackend{opens: []openResult{{handle: h}}}, testConfig())
	defer c.Close()

	buf, err := c.CaptureFrame()
	if err != nil {
		t.Fatalf("CaptureFrame: %v", err)
	}
	if buf.Width != 2 || buf.Height != 2 {
		t.Errorf("frame is %dx%d, want 2x2", buf.Width, buf.Height)
	}
	if c.Baseline() != buf {
		t.Error("CaptureFrame did not replace the baseline")
	}
}

func TestControllerCaptureDeltaFirstIsFull(t *testing.T) {
	h := &fakeHandle{results: []capResult{{raw: rawFrame(3, 2, 5)}}}
	c := newTestController(t, &fakeBackend{opens: []openResult{{handle: h}}}, testConfig())
	defer c.Close()

	d, err := c.CaptureDelta()
	if err != nil {
		t.Fatalf("CaptureDelta: %v", err)
	}
	if len(d.Spans) != 2 {
		t.Fatalf("first delta has %d spans, want one per row (2)", len(d.Spans))
	}
	for y, s := range d.Spans {
		if s.X != 0 || s.Y != y || s.Width != 3 {
			t.Errorf("span %d = (%d,%d)+%d, want full row", y, s.X, s.Y, s.Width)
		}
	}
}

func TestControllerCaptureDeltaIncremental(t *testing.T) {
	first := rawFrame(2, 2, 0)
	second := rawFrame(2, 2, 0)
	// One pixel changes between the two frames: (1, 0) becomes opaque red.
	copy(second.Data[4:8], []byte{255, 0, 0, 255})
	third := rawFrame(2, 2, 0)
	copy(third.Data[4:8], []byte{255, 0, 0, 255})

	h := &fakeHandle{results: []capResult{{raw: first}, {raw: second}, {raw: third}}}
	c := newTestController(t, &fakeBackend{opens: []openResult{{handle: h}}}, testConfig())
	defer c.Close()

	if _, err := c.CaptureDelta(); err != nil {
		t.Fatalf("baseline CaptureDelta: %v", err)
	}

	d, err := c.CaptureDelta()
	if err != nil {
		t.Fatalf("CaptureDelta: %v", err)
	}
	if len(d.Spans) != 1 {
		t.Fatalf("got %d spans, want 1: %+v", len(d.Spans), d.Spans)
	}
	s := d.Spans[0]
	if s.X != 1 || s.Y != 0 || s.Width != 1 {
		t.Errorf("span = (%d,%d)+%d, want (1,0)+1", s.X, s.Y, s.Width)
	}

	// The baseline advanced, so an identical third frame yields no spans.
	d, err = c.CaptureDelta()
	if err != nil {
		t.Fatalf("CaptureDelta: %v", err)
	}
	if !d.Empty() {
		t.Errorf("unchanged frame produced %d spans", len(d.Spans))
	}
}

func TestControllerCaptureDeltaResolutionChange(t *testing.T) {
	h := &fakeHandle{results: []capResult{
		{raw: rawFrame(2, 2, 1)},
		{raw: rawFrame(4, 1, 2)},
	}}
	c := newTestController(t, &fakeBackend{opens: []openResult{{handle: h}}}, testConfig())
	defer c.Close()

	if _, err := c.CaptureDelta(); err != nil {
		t.Fatalf("baseline CaptureDelta: %v", err)
	}

	d, err := c.CaptureDelta()
	if err != nil {
		t.Fatalf("CaptureDelta across resolution change: %v", err)
	}
	if d.Width != 4 || d.Height != 1 {
		t.Errorf("delta geometry is %dx%d, want 4x1", d.Width, d.Height)
	}
	if len(d.Spans) != 1 || d.Spans[0].Width != 4 {
		t.Errorf("resolution change did not produce a full-frame delta: %+v", d.Spans)
	}
}

func TestControllerCaptureDeltaTimeout(t *testing.T) {
	tests := []struct {
		name    string
		policy  TimeoutPolicy
		wantErr bool
	}{
		{name: "no-change policy", policy: TimeoutNoChange},
		{name: "error policy", policy: TimeoutError, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			cfg.MaxRetries = 0
			cfg.OnTimeout = tt.policy
			// One real frame to establish a baseline, then only timeouts.
			h := &fakeHandle{results: []capResult{{raw: rawFrame(2, 2, 1)}}}
			c := newTestController(t, &fakeBackend{opens: []openResult{{handle: h}}}, cfg)
			defer c.Close()

			if _, err := c.CaptureDelta(); err != nil {
				t.Fatalf("baseline CaptureDelta: %v", err)
			}

			d, err := c.CaptureDelta()
			if tt.wantErr {
				if !errors.Is(err, backend.ErrTimeout) {
					t.Errorf("CaptureDelta error = %v, want ErrTimeout", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("CaptureDelta: %v", err)
			}
			if !d.Empty() {
				t.Errorf("timeout produced %d spans, want empty delta", len(d.Spans))
			}
			if d.Width != 2 || d.Height != 2 {
				t.Errorf("empty delta geometry is %dx%d, want baseline 2x2", d.Width, d.Height)
			}
		})
	}
}

func TestControllerCaptureDeltaTimeoutWithoutBaseline(t *testing.T) {
	cfg := testConfig()
	cfg.MaxRetries = 0
	h := &fakeHandle{} // times out immediately
	c := newTestController(t, &fakeBackend{opens: []openResult{{handle: h}}}, cfg)
	defer c.Close()

	// With no baseline there is nothing to report "no change" against.
	if _, err := c.CaptureDelta(); !errors.Is(err, backend.ErrTimeout) {
		t.Errorf("CaptureDelta error = %v, want ErrTimeout", err)
	}
}

func TestControllerCaptureFrameTimeoutAlwaysSurfaces(t *testing.T) {
	cfg := testConfig()
	cfg.MaxRetries = 0
	cfg.OnTimeout = TimeoutNoChange
	h := &fakeHandle{results: []capResult{{raw: rawFrame(2, 2, 1)}}}
	c := newTestController(t, &fakeBackend{opens: []openResult{{handle: h}}}, cfg)
	defer c.Close()

	if _, err := c.CaptureFrame(); err != nil {
		t.Fatalf("CaptureFrame: %v", err)
	}
	// A full-frame query has no "no change" answer, whatever the policy.
	if _, err := c.CaptureFrame(); !errors.Is(err, backend.ErrTimeout) {
		t.Errorf("CaptureFrame error = %v, want ErrTimeout", err)
	}
}

func TestControllerSessionLostRequiresReopen(t *testing.T) {
	lost := &fakeHandle{results: []capResult{{err: backend.ErrAccessLost}}}
	fresh := &fakeHandle{results: []capResult{{raw: rawFrame(2, 2, 3)}}}
	b := &fakeBackend{opens: []openResult{
		{handle: lost},
		{err: backend.ErrBackendUnavailable},
		{handle: fresh},
	}}
	c := newTestController(t, b, testConfig())

	if _, err := c.CaptureDelta(); !errors.Is(err, ErrSessionLost) {
		t.Fatalf("CaptureDelta error = %v, want ErrSessionLost", err)
	}
	// The session stays closed until the caller reopens explicitly.
	if _, err := c.CaptureDelta(); !errors.Is(err, ErrClosed) {
		t.Errorf("CaptureDelta after loss error = %v, want ErrClosed", err)
	}
	if err := c.Open(); err != nil {
		t.Fatalf("explicit reopen: %v", err)
	}
	if _, err := c.CaptureFrame(); err != nil {
		t.Errorf("CaptureFrame after explicit reopen: %v", err)
	}
}

func TestControllerCaptureWhileClosed(t *testing.T) {
	c := NewController(&fakeBackend{}, 0, testConfig())
	if _, err := c.CaptureFrame(); !errors.Is(err, ErrClosed) {
		t.Errorf("CaptureFrame error = %v, want ErrClosed", err)
	}
	if _, err := c.CaptureDelta(); !errors.Is(err, ErrClosed) {
		t.Errorf("CaptureDelta error = %v, want ErrClosed", err)
	}
}
