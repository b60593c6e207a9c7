// deltahost captures a display and broadcasts changed-span packets to
// websocket subscribers. A new subscriber receives the stream geometry
// and a full frame before the incremental deltas.
package main

import (
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/daneluk/screendelta/backend"
	"github.com/daneluk/screendelta/capture"
	"github.com/daneluk/screendelta/frame"
	"github.com/daneluk/screendelta/internal/config"
	"github.com/daneluk/screendelta/internal/encoder"
	"github.com/daneluk/screendelta/internal/packet"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(*http.Request) bool { return true },
}

func main() {
	cfg := config.ParseHostFlags()

	log.Printf("deltahost starting")
	log.Printf("  Listen:   %s", cfg.ListenAddr)
	log.Printf("  Display:  %d", cfg.DisplayIndex)
	log.Printf("  FPS:      %d", cfg.FPS)
	log.Printf("  Payloads: %s", payloadName(cfg))

	b := backend.Default()
	ctrl := capture.NewController(b, cfg.DisplayIndex, capture.DefaultConfig())
	if err := ctrl.Open(); err != nil {
		log.Fatalf("open display %d via %s: %v", cfg.DisplayIndex, b.Name(), err)
	}
	defer ctrl.Close()

	var enc encoder.Encoder = encoder.NewRaw()
	if cfg.JPEG {
		enc = encoder.NewJPEG(cfg.Quality)
	}

	h := newHub()
	http.HandleFunc("/stream", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("upgrade: %v", err)
			return
		}
		log.Printf("subscriber connected: %s", conn.RemoteAddr())
		h.add(conn)
		go func() {
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					h.drop(conn)
					return
				}
			}
		}()
	})

	go captureLoop(ctrl, h, enc, cfg.FPS)

	log.Printf("serving ws://%s/stream", cfg.ListenAddr)
	log.Fatal(http.ListenAndServe(cfg.ListenAddr, nil))
}

func payloadName(cfg *config.HostConfig) string {
	if cfg.JPEG {
		return "jpeg"
	}
	return "raw"
}

// captureLoop is the single owner of the controller: one capture cycle
// per tick, broadcast of the resulting delta, and admission of pending
// subscribers with a full-frame bootstrap.
func captureLoop(ctrl *capture.Controller, h *hub, enc encoder.Encoder, fps int) {
	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()

	lastW, lastH := 0, 0
	for range ticker.C {
		d, err := ctrl.CaptureDelta()
		if err != nil {
			if errors.Is(err, capture.ErrSessionLost) || backend.IsFatal(err) {
				log.Fatalf("capture: %v", err)
			}
			log.Printf("capture: %v", err)
			continue
		}

		resChanged := d.Width != lastW || d.Height != lastH
		lastW, lastH = d.Width, d.Height

		if resChanged {
			res, err := packet.EncodeResolution(d.Width, d.Height)
			if err != nil {
				log.Fatalf("encode resolution: %v", err)
			}
			h.broadcast(res)
		}

		if pend := h.takePending(); len(pend) > 0 {
			if base := ctrl.Baseline(); base != nil {
				res, _ := packet.EncodeResolution(base.Width, base.Height)
				full, err := encodeSpans(packet.OpFull, frame.FullDelta(base), enc)
				if err != nil {
					log.Printf("encode full frame: %v", err)
				} else {
					for _, conn := range pend {
						h.admit(conn, res, full)
					}
				}
			} else {
				// No frame yet; put them back for the next cycle.
				h.requeue(pend)
			}
		}

		if d.Empty() {
			continue
		}
		op := packet.OpDelta
		if resChanged {
			op = packet.OpFull
		}
		pkt, err := encodeSpans(op, d, enc)
		if err != nil {
			log.Printf("encode delta: %v", err)
			continue
		}
		h.broadcast(pkt)
	}
}

func encodeSpans(op byte, d *frame.Delta, enc encoder.Encoder) ([]byte, error) {
	spans := make([]packet.Span, 0, len(d.Spans))
	for _, s := range d.Spans {
		imgType, payload, err := enc.Encode(s.Pix, s.Width, 1)
		if err != nil {
			return nil, err
		}
		spans = append(spans, packet.Span{
			X:       s.X,
			Y:       s.Y,
			Width:   s.Width,
			ImgType: imgType,
			Payload: payload,
		})
	}
	return packet.EncodeSpans(op, d.Width, d.Height, spans)
}

// hub tracks subscribers. All writes happen on the capture goroutine, so
// connections never see concurrent WriteMessage calls.
type hub struct {
	mu      sync.Mutex
	conns   map[*websocket.Conn]bool
	pending []*websocket.Conn
}

func newHub() *hub {
	return &hub{conns: make(map[*websocket.Conn]bool)}
}

func (h *hub) add(conn *websocket.Conn) {
	h.mu.Lock()
	h.pending = append(h.pending, conn)
	h.mu.Unlock()
}

func (h *hub) takePending() []*websocket.Conn {
	h.mu.Lock()
	defer h.mu.Unlock()
	p := h.pending
	h.pending = nil
	return p
}

func (h *hub) requeue(conns []*websocket.Conn) {
	h.mu.Lock()
	h.pending = append(h.pending, conns...)
	h.mu.Unlock()
}

// admit sends the bootstrap packets and promotes the connection to an
// active subscriber.
func (h *hub) admit(conn *websocket.Conn, pkts ...[]byte) {
	for _, pkt := range pkts {
		if err := conn.WriteMessage(websocket.BinaryMessage, pkt); err != nil {
			conn.Close()
			return
		}
	}
	h.mu.Lock()
	h.conns[conn] = true
	h.mu.Unlock()
}

func (h *hub) broadcast(pkt []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.conns {
		if err := conn.WriteMessage(websocket.BinaryMessage, pkt); err != nil {
			conn.Close()
			delete(h.conns, conn)
		}
	}
}

func (h *hub) drop(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	conn.Close()
	delete(h.conns, conn)
	for i, c := range h.pending {
		if c == conn {
			h.pending = append(h.pending[:i], h.pending[i+1:]...)
			break
		}
	}
}
