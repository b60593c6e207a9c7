// screenavg prints the average color of a display until interrupted.
package main

import (
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/daneluk/screendelta/backend"
	"github.com/daneluk/screendelta/capture"
	"github.com/daneluk/screendelta/internal/config"
)

func main() {
	cfg := config.ParseAvgFlags()

	ctrl := capture.NewController(backend.Default(), cfg.DisplayIndex, capture.DefaultConfig())
	if err := ctrl.Open(); err != nil {
		log.Fatalf("open display %d: %v", cfg.DisplayIndex, err)
	}
	defer ctrl.Close()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case <-sigCh:
			return
		default:
		}

		buf, err := ctrl.CaptureFrame()
		if err != nil {
			if errors.Is(err, backend.ErrTimeout) {
				continue
			}
			log.Fatalf("capture: %v", err)
		}

		var r, g, b uint64
		for i := 0; i < len(buf.Pix); i += 4 {
			r += uint64(buf.Pix[i])
			g += uint64(buf.Pix[i+1])
			b += uint64(buf.Pix[i+2])
		}
		n := uint64(buf.Width) * uint64(buf.Height)
		log.Printf("avg: r=%d g=%d b=%d", r/n, g/n, b/n)

		time.Sleep(cfg.Interval)
	}
}
