// screensnap captures consecutive frames of a display and writes them to
// PNG files.
package main

import (
	"fmt"
	"image/png"
	"log"
	"os"
	"path/filepath"

	"github.com/daneluk/screendelta/backend"
	"github.com/daneluk/screendelta/capture"
	"github.com/daneluk/screendelta/frame"
	"github.com/daneluk/screendelta/internal/config"
)

func main() {
	cfg := config.ParseSnapFlags()

	ctrl := capture.NewController(backend.Default(), cfg.DisplayIndex, capture.DefaultConfig())
	if err := ctrl.Open(); err != nil {
		log.Fatalf("open display %d: %v", cfg.DisplayIndex, err)
	}
	defer ctrl.Close()

	for i := 0; i < cfg.Count; i++ {
		buf, err := ctrl.CaptureFrame()
		if err != nil {
			log.Fatalf("capture frame %d: %v", i+1, err)
		}
		name := filepath.Join(cfg.OutDir, fmt.Sprintf("frame%d.png", i+1))
		if err := writePNG(name, buf); err != nil {
			log.Fatalf("write %s: %v", name, err)
		}
		log.Printf("wrote %s (%dx%d)", name, buf.Width, buf.Height)
	}
}

func writePNG(name string, buf *frame.Buffer) error {
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	if err := png.Encode(f, buf.RGBA()); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
