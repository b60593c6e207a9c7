// deltaview subscribes to a deltahost stream, applies incoming deltas to
// a local frame and renders it in a window.
package main

import (
	"log"
	"sync"

	"github.com/daneluk/screendelta/frame"
	"github.com/daneluk/screendelta/internal/config"
	"github.com/daneluk/screendelta/internal/decoder"
	"github.com/daneluk/screendelta/internal/display"
	"github.com/daneluk/screendelta/internal/packet"
	"github.com/daneluk/screendelta/internal/stream"
)

func main() {
	cfg := config.ParseViewFlags()

	log.Printf("deltaview starting")
	log.Printf("  Host: %s", cfg.HostURL)

	disp := display.NewEbitenDisplay("deltaview")

	var mu sync.Mutex
	var buf *frame.Buffer

	client := stream.NewClient(cfg.HostURL, stream.Handler{
		OnResolution: func(w, h int) {
			mu.Lock()
			defer mu.Unlock()
			if buf == nil || buf.Width != w || buf.Height != h {
				b, err := frame.NewUniform(w, h, frame.Pixel{A: 0xFF})
				if err != nil {
					log.Printf("resolution %dx%d: %v", w, h, err)
					return
				}
				buf = b
			}
		},
		OnSpans: func(msg *packet.Message) {
			mu.Lock()
			defer mu.Unlock()
			if buf == nil || buf.Width != msg.Width || buf.Height != msg.Height {
				b, err := frame.NewUniform(msg.Width, msg.Height, frame.Pixel{A: 0xFF})
				if err != nil {
					log.Printf("spans for %dx%d: %v", msg.Width, msg.Height, err)
					return
				}
				buf = b
			}
			d := &frame.Delta{Width: msg.Width, Height: msg.Height}
			for _, s := range msg.Spans {
				pix, err := decoder.Decode(s.ImgType, s.Payload, s.Width, 1)
				if err != nil {
					log.Printf("decode span: %v", err)
					return
				}
				d.Spans = append(d.Spans, frame.Span{X: s.X, Y: s.Y, Width: s.Width, Pix: pix})
			}
			if err := d.Apply(buf); err != nil {
				log.Printf("apply delta: %v", err)
				return
			}
			// Hand the renderer its own copy; Draw reads asynchronously.
			disp.SetFrame(buf.Clone().RGBA())
		},
		OnClosed: func(err error) {
			log.Printf("stream closed: %v", err)
		},
	})

	if err := client.Connect(); err != nil {
		log.Fatalf("connect: %v", err)
	}
	defer client.Close()

	// Ebitengine RunGame must be on the main goroutine.
	if err := disp.Run(); err != nil {
		log.Fatalf("display: %v", err)
	}
}
