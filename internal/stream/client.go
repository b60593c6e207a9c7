// Package stream implements the websocket client side of the demo frame
// stream: dial the host, read binary packets, dispatch by op code.
package stream

import (
	"fmt"
	"log"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/daneluk/screendelta/internal/packet"
)

// Handler callbacks for incoming stream packets.
type Handler struct {
	OnResolution func(width, height int)
	OnSpans      func(msg *packet.Message)
	OnClosed     func(err error)
}

// Client is a websocket frame-stream subscriber.
type Client struct {
	url     string
	handler Handler

	conn   *websocket.Conn
	mu     sync.Mutex
	done   chan struct{}
	closed bool
}

// NewClient creates a stream client for the given ws:// URL.
func NewClient(url string, handler Handler) *Client {
	return &Client{
		url:     url,
		handler: handler,
		done:    make(chan struct{}),
	}
}

// Connect dials the host and starts reading packets.
func (c *Client) Connect() error {
	conn, _, err := websocket.DefaultDialer.Dial(c.url, nil)
	if err != nil {
		return fmt.Errorf("stream dial: %w", err)
	}
	c.conn = conn
	go c.readLoop()
	return nil
}

// Close shuts down the connection. Idempotent.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.done)
	if c.conn != nil {
		c.conn.Close()
	}
}

func (c *Client) readLoop() {
	defer c.Close()
	for {
		mt, data, err := c.conn.ReadMessage()
		if err != nil {
			select {
			case <-c.done:
			default:
				if c.handler.OnClosed != nil {
					c.handler.OnClosed(err)
				}
			}
			return
		}
		if mt != websocket.BinaryMessage {
			continue
		}
		msg, err := packet.Decode(data)
		if err != nil {
			log.Printf("stream: drop bad packet: %v", err)
			continue
		}
		c.dispatch(msg)
	}
}

func (c *Client) dispatch(msg *packet.Message) {
	switch msg.Op {
	case packet.OpResolution:
		if c.handler.OnResolution != nil {
			c.handler.OnResolution(msg.Width, msg.Height)
		}
	case packet.OpFull, packet.OpDelta:
		if c.handler.OnSpans != nil {
			c.handler.OnSpans(msg)
		}
	}
}
