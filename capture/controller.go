package capture

import (
	"errors"

	"github.com/daneluk/screendelta/backend"
	"github.com/daneluk/screendelta/frame"
)

// Controller orchestrates repeated captures against one display and
// answers two queries: the current full frame, and the delta against the
// previous frame. Calls block until the backend returns a frame or the
// session's wait budget drains; there is no background capture goroutine.
//
// Not safe for concurrent use; see the package comment.
type Controller struct {
	sess    *Session
	cfg     Config
	display int
}

// NewController builds a controller over a fresh session. Open must be
// called before capturing.
func NewController(b backend.Backend, displayIndex int, cfg Config) *Controller {
	return &Controller{
		sess:    NewSession(b, cfg),
		cfg:     cfg,
		display: displayIndex,
	}
}

// Open binds the session to the configured display. After ErrSessionLost
// the caller must call Open again before capturing.
func (c *Controller) Open() error {
	return c.sess.Open(c.display)
}

// Close releases the session. Idempotent.
func (c *Controller) Close() error {
	return c.sess.Close()
}

// Baseline returns the stored previous frame, nil before the first
// capture.
func (c *Controller) Baseline() *frame.Buffer {
	return c.sess.Baseline()
}

// CaptureFrame returns the current full frame and makes it the new
// baseline. Timeouts surface as backend.ErrTimeout once the retry budget
// drains, regardless of the timeout policy; a full-frame query has no
// "no change" answer.
func (c *Controller) CaptureFrame() (*frame.Buffer, error) {
	buf, _, err := c.sess.CaptureOnce()
	if err != nil {
		return nil, err
	}
	return buf, nil
}

// CaptureDelta performs one capture cycle and returns the changed spans
// against the baseline. A missing baseline or a resolution change yields
// an every-pixel-changed delta and starts a new baseline; a drained wait
// budget under TimeoutNoChange yields an empty delta against the current
// geometry.
func (c *Controller) CaptureDelta() (*frame.Delta, error) {
	prev := c.sess.Baseline()
	buf, reset, err := c.sess.CaptureOnce()
	if err != nil {
		if errors.Is(err, backend.ErrTimeout) && c.cfg.OnTimeout == TimeoutNoChange && prev != nil {
			return &frame.Delta{Width: prev.Width, Height: prev.Height}, nil
		}
		return nil, err
	}
	if reset {
		return frame.FullDelta(buf), nil
	}
	return frame.Diff(prev, buf)
}
