// Package capture owns the capture lifecycle: a Session binds one backend
// handle to one display and survives access loss and timeouts, and a
// Controller on top of it answers full-frame and delta-frame queries.
//
// Neither type is safe for concurrent use. Every call mutates the handle
// and the previous-frame baseline, so concurrent producers must serialize
// behind their own mutex or single-owner goroutine.
package capture

import (
	"errors"
	"fmt"
	"time"

	"github.com/daneluk/screendelta/backend"
	"github.com/daneluk/screendelta/frame"
)

// State is the session lifecycle state.
type State int

const (
	StateClosed State = iota
	StateOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// TimeoutPolicy decides what an exhausted wait budget means to delta
// capture. Duplication backends time out whenever the desktop is static,
// so the default reads a timeout as "nothing changed".
type TimeoutPolicy int

const (
	// TimeoutNoChange makes CaptureDelta return an empty delta when the
	// wait budget drains without a frame. The default.
	TimeoutNoChange TimeoutPolicy = iota
	// TimeoutError surfaces backend.ErrTimeout to the caller instead.
	TimeoutError
)

// Config tunes the session's wait and retry behavior.
type Config struct {
	// WaitBudget bounds the total time one capture call may spend
	// waiting for a frame across timeout retries.
	WaitBudget time.Duration
	// MaxRetries is the number of extra capture attempts after a
	// timeout, within WaitBudget.
	MaxRetries int
	// OnTimeout selects the delta-capture timeout interpretation.
	OnTimeout TimeoutPolicy
}

// DefaultConfig mirrors the duplication API's customary 200ms wait.
func DefaultConfig() Config {
	return Config{
		WaitBudget: 200 * time.Millisecond,
		MaxRetries: 2,
		OnTimeout:  TimeoutNoChange,
	}
}

var (
	// ErrClosed reports a capture against a session that is not open.
	ErrClosed = errors.New("capture: session is closed")
	// ErrSessionLost reports that access to the display was lost and the
	// automatic reopen failed. The caller must Open again explicitly.
	ErrSessionLost = errors.New("capture: session lost")
)

// Session owns one backend handle bound to one display, plus the
// previous-frame baseline the diff engine compares against.
type Session struct {
	backend backend.Backend
	cfg     Config

	state   State
	display int
	handle  backend.Handle
	prev    *frame.Buffer
}

// NewSession returns a closed session over b.
func NewSession(b backend.Backend, cfg Config) *Session {
	return &Session{backend: b, cfg: cfg}
}

// Open transitions Closed -> Open against the display at displayIndex.
// An already-open session is closed first.
func (s *Session) Open(displayIndex int) error {
	if s.state == StateOpen {
		s.Close()
	}
	h, err := s.backend.Open(displayIndex)
	if err != nil {
		return err
	}
	s.handle = h
	s.display = displayIndex
	s.prev = nil
	s.state = StateOpen
	return nil
}

// Close releases the backend handle. Idempotent.
func (s *Session) Close() error {
	if s.state == StateClosed {
		return nil
	}
	err := s.handle.Close()
	s.handle = nil
	s.prev = nil
	s.state = StateClosed
	return err
}

// State returns the current lifecycle state.
func (s *Session) State() State { return s.state }

// Display returns the display index the session was opened against.
func (s *Session) Display() int { return s.display }

// Baseline returns the most recent captured buffer, or nil when no frame
// has been captured since Open or since a resolution change.
func (s *Session) Baseline() *frame.Buffer { return s.prev }

// CaptureOnce acquires one frame, normalizes it, and replaces the
// baseline. The bool result reports a baseline reset: true for the first
// frame after Open and whenever the reported geometry differs from the
// previous frame, in which case any pending diff baseline is invalid.
//
// Timeouts are retried per Config and then surfaced as backend.ErrTimeout.
// On access loss the session closes the handle, reopens the same display
// once and retries; if the reopen fails the session stays Closed and
// ErrSessionLost wraps the cause. Fatal backend errors close the session
// and propagate.
func (s *Session) CaptureOnce() (*frame.Buffer, bool, error) {
	if s.state != StateOpen {
		return nil, false, ErrClosed
	}
	raw, err := s.captureRaw()
	if err != nil {
		return nil, false, err
	}
	buf, err := frame.Normalize(raw.Data, raw.Width, raw.Height, raw.Stride, raw.Order)
	if err != nil {
		return nil, false, fmt.Errorf("capture: normalize frame: %w", err)
	}
	reset := s.prev == nil || s.prev.Width != buf.Width || s.prev.Height != buf.Height
	s.prev = buf
	return buf, reset, nil
}

func (s *Session) captureRaw() (*backend.RawFrame, error) {
	deadline := time.Now().Add(s.cfg.WaitBudget)
	timeouts := 0
	reopened := false
	for {
		raw, err := s.handle.Capture()
		if err == nil {
			return raw, nil
		}
		switch {
		case errors.Is(err, backend.ErrTimeout):
			timeouts++
			if timeouts > s.cfg.MaxRetries || !time.Now().Before(deadline) {
				return nil, err
			}
		case errors.Is(err, backend.ErrAccessLost):
			if reopened {
				// Lost again right after a successful reopen; give up.
				s.teardown()
				return nil, fmt.Errorf("%w: %v", ErrSessionLost, err)
			}
			if rerr := s.reopen(); rerr != nil {
				return nil, fmt.Errorf("%w: %v", ErrSessionLost, rerr)
			}
			reopened = true
		default:
			// Fatal or unclassified: the handle is no longer trustworthy.
			s.teardown()
			return nil, err
		}
	}
}

// reopen closes the invalidated handle and opens the same display again.
// On failure the session ends up Closed.
func (s *Session) reopen() error {
	s.handle.Close()
	s.handle = nil
	h, err := s.backend.Open(s.display)
	if err != nil {
		s.prev = nil
		s.state = StateClosed
		return err
	}
	s.handle = h
	return nil
}

func (s *Session) teardown() {
	if s.handle != nil {
		s.handle.Close()
		s.handle = nil
	}
	s.prev = nil
	s.state = StateClosed
}
