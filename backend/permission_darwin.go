//go:build darwin

package backend

/*
#cgo LDFLAGS: -framework CoreGraphics
#include <CoreGraphics/CoreGraphics.h>

// CGPreflightScreenCaptureAccess is available since macOS 10.15.
int hasScreenRecordingPermission() {
    return CGPreflightScreenCaptureAccess();
}
*/
import "C"

import "fmt"

// preflight checks the Screen Recording permission. Without it every
// capture silently yields the desktop wallpaper, so refusal is surfaced
// as the backend being unavailable.
func preflight() error {
	if C.hasScreenRecordingPermission() == 0 {
		return fmt.Errorf("%w: screen recording permission not granted", ErrBackendUnavailable)
	}
	return nil
}
