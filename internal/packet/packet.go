// Package packet implements the binary wire format the demo stream pair
// speaks: a one-byte op code followed by big-endian header fields, with
// delta spans carried as independently encoded payload blocks.
package packet

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// Op codes.
const (
	// OpResolution announces the stream geometry. Sent on subscribe and
	// after every resolution change.
	OpResolution byte = 0x00
	// OpFull carries spans covering the whole frame (a baseline reset).
	OpFull byte = 0x01
	// OpDelta carries only the changed spans of one capture cycle.
	OpDelta byte = 0x02
)

// Span payload encodings.
const (
	ImgRaw  byte = 0
	ImgJPEG byte = 1
)

// Span is one encoded changed run: a row-aligned rectangle of width
// Width and height 1 at (X, Y).
type Span struct {
	X       int
	Y       int
	Width   int
	ImgType byte
	Payload []byte
}

// Message is one decoded packet.
type Message struct {
	Op     byte
	Width  int
	Height int
	Spans  []Span
}

var errTruncated = errors.New("packet: truncated")

// EncodeResolution builds an OpResolution packet.
func EncodeResolution(width, height int) ([]byte, error) {
	if err := checkU16(width, height); err != nil {
		return nil, err
	}
	buf := make([]byte, 5)
	buf[0] = OpResolution
	binary.BigEndian.PutUint16(buf[1:3], uint16(width))
	binary.BigEndian.PutUint16(buf[3:5], uint16(height))
	return buf, nil
}

// EncodeSpans builds an OpFull or OpDelta packet from encoded spans.
func EncodeSpans(op byte, width, height int, spans []Span) ([]byte, error) {
	if op != OpFull && op != OpDelta {
		return nil, fmt.Errorf("packet: op %d does not carry spans", op)
	}
	if err := checkU16(width, height); err != nil {
		return nil, err
	}
	if len(spans) > math.MaxUint16 {
		return nil, fmt.Errorf("packet: %d spans exceed u16 count", len(spans))
	}
	size := 7
	for _, s := range spans {
		size += 11 + len(s.Payload)
	}
	buf := make([]byte, 0, size)
	buf = append(buf, op)
	buf = binary.BigEndian.AppendUint16(buf, uint16(width))
	buf = binary.BigEndian.AppendUint16(buf, uint16(height))
	buf = binary.BigEndian.AppendUint16(buf, uint16(len(spans)))
	for _, s := range spans {
		if err := checkU16(s.X, s.Y, s.Width); err != nil {
			return nil, err
		}
		buf = binary.BigEndian.AppendUint16(buf, uint16(s.X))
		buf = binary.BigEndian.AppendUint16(buf, uint16(s.Y))
		buf = binary.BigEndian.AppendUint16(buf, uint16(s.Width))
		buf = append(buf, s.ImgType)
		buf = binary.BigEndian.AppendUint32(buf, uint32(len(s.Payload)))
		buf = append(buf, s.Payload...)
	}
	return buf, nil
}

// Decode parses one packet.
func Decode(buf []byte) (*Message, error) {
	if len(buf) < 1 {
		return nil, errTruncated
	}
	op := buf[0]
	rest := buf[1:]
	switch op {
	case OpResolution:
		if len(rest) < 4 {
			return nil, errTruncated
		}
		return &Message{
			Op:     op,
			Width:  int(binary.BigEndian.Uint16(rest[0:2])),
			Height: int(binary.BigEndian.Uint16(rest[2:4])),
		}, nil
	case OpFull, OpDelta:
		if len(rest) < 6 {
			return nil, errTruncated
		}
		msg := &Message{
			Op:     op,
			Width:  int(binary.BigEndian.Uint16(rest[0:2])),
			Height: int(binary.BigEndian.Uint16(rest[2:4])),
		}
		count := int(binary.BigEndian.Uint16(rest[4:6]))
		rest = rest[6:]
		msg.Spans = make([]Span, 0, count)
		for i := 0; i < count; i++ {
			if len(rest) < 11 {
				return nil, errTruncated
			}
			s := Span{
				X:       int(binary.BigEndian.Uint16(rest[0:2])),
				Y:       int(binary.BigEndian.Uint16(rest[2:4])),
				Width:   int(binary.BigEndian.Uint16(rest[4:6])),
				ImgType: rest[6],
			}
			n := int(binary.BigEndian.Uint32(rest[7:11]))
			rest = rest[11:]
			if len(rest) < n {
				return nil, errTruncated
			}
			s.Payload = append([]byte(nil), rest[:n]...)
			rest = rest[n:]
			msg.Spans = append(msg.Spans, s)
		}
		return msg, nil
	default:
		return nil, fmt.Errorf("packet: unknown op %d", op)
	}
}

func checkU16(vals ...int) error {
	for _, v := range vals {
		if v < 0 || v > math.MaxUint16 {
			return fmt.Errorf("packet: value %d outside u16 range", v)
		}
	}
	return nil
}
