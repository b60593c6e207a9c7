// Package display renders incoming frames in a window.
package display

import "image"

// Display renders frames delivered from another goroutine.
type Display interface {
	SetFrame(img *image.RGBA)
	Run() error
}
