//go:build !windows

package backend

// Default returns the preferred backend for this platform: the direct
// frame-buffer reader.
func Default() Backend {
	return NewScreenshot()
}
