//go:build windows

package backend

import (
	"errors"
	"fmt"
)

// Default returns the preferred backend chain for Windows: desktop
// duplication first, GDI when duplication refuses to initialize.
func Default() Backend {
	return &fallback{primary: NewDXGI(), secondary: NewGDI()}
}

// fallback opens through its primary backend and falls back to the
// secondary when the primary is unavailable. Error taxonomies other than
// ErrBackendUnavailable propagate unchanged.
type fallback struct {
	primary   Backend
	secondary Backend
}

func (f *fallback) Name() string {
	return fmt.Sprintf("%s+%s", f.primary.Name(), f.secondary.Name())
}

func (f *fallback) Displays() ([]Display, error) {
	return f.primary.Displays()
}

func (f *fallback) Open(displayIndex int) (Handle, error) {
	h, err := f.primary.Open(displayIndex)
	if err == nil {
		return h, nil
	}
	if !errors.Is(err, ErrBackendUnavailable) {
		return nil, err
	}
	return f.secondary.Open(displayIndex)
}
