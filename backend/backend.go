// Package backend defines the capture-backend contract: the minimal
// interface the capture session consumes to open a display, acquire raw
// frames, and release native resources. Concrete backends map their
// platform's failure signals onto the error taxonomy declared here.
package backend

import (
	"errors"

	"github.com/daneluk/screendelta/frame"
)

var (
	// ErrNoSuchDisplay reports an Open against a display index the host
	// does not have.
	ErrNoSuchDisplay = errors.New("backend: no such display")
	// ErrBackendUnavailable reports that the capture mechanism refused to
	// initialize, e.g. duplication denied or permission not granted.
	ErrBackendUnavailable = errors.New("backend: capture backend unavailable")
	// ErrAccessLost reports that an open handle was invalidated by the
	// OS, typically a resolution or mode switch. The session reopens.
	ErrAccessLost = errors.New("backend: access to display lost")
	// ErrTimeout reports that no new frame arrived within the backend's
	// wait budget. Expected on a static desktop with duplication APIs.
	ErrTimeout = errors.New("backend: no new frame within wait budget")
)

// FatalError wraps an unrecoverable backend failure. The session closes
// and does not retry.
type FatalError struct {
	Err error
}

func (e *FatalError) Error() string { return "backend: fatal: " + e.Err.Error() }
func (e *FatalError) Unwrap() error { return e.Err }

// IsFatal reports whether err carries a FatalError anywhere in its chain.
func IsFatal(err error) bool {
	var fe *FatalError
	return errors.As(err, &fe)
}

// RawFrame is one captured frame in the backend's native layout. Stride
// is the row pitch in bytes and may exceed Width*4 when the native buffer
// pads rows.
type RawFrame struct {
	Data   []byte
	Width  int
	Height int
	Stride int
	Order  frame.ChannelOrder
}

// Display describes one attached display as reported by the backend.
// Read-only to everything above the backend boundary.
type Display struct {
	Index  int
	Width  int
	Height int
}

// Handle is an open capture resource bound to one display at the moment
// Open was called. A display reconfiguration invalidates it; Capture then
// reports ErrAccessLost and the owner must reopen.
type Handle interface {
	// Capture acquires the next frame. Errors: ErrAccessLost, ErrTimeout,
	// or *FatalError.
	Capture() (*RawFrame, error)
	// Close releases the native resources. Idempotent.
	Close() error
}

// Backend abstracts one platform capture mechanism.
type Backend interface {
	Name() string
	Displays() ([]Display, error)
	// Open binds a capture handle to the display at displayIndex.
	// Errors: ErrNoSuchDisplay, ErrBackendUnavailable.
	Open(displayIndex int) (Handle, error)
}
