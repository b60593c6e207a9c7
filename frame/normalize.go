package frame

import "fmt"

// ChannelOrder identifies the byte order of a backend's native raw frame.
// The X orders carry a padding byte where RGBA carries alpha.
type ChannelOrder int

const (
	OrderRGBA ChannelOrder = iota
	OrderBGRA
	OrderRGBX
	OrderBGRX
)

func (o ChannelOrder) String() string {
	switch o {
	case OrderRGBA:
		return "RGBA"
	case OrderBGRA:
		return "BGRA"
	case OrderRGBX:
		return "RGBX"
	case OrderBGRX:
		return "BGRX"
	}
	return fmt.Sprintf("ChannelOrder(%d)", int(o))
}

// Normalize converts a native raw buffer into a canonical Buffer. Row
// padding is stripped when stride exceeds width*4 bytes, channels are
// reordered to RGBA, and the padding byte of the X orders is replaced
// with opaque alpha. The input data is always copied.
func Normalize(data []byte, width, height, stride int, order ChannelOrder) (*Buffer, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: invalid geometry %dx%d", ErrDimensionMismatch, width, height)
	}
	rowBytes := width * bytesPerPixel
	if stride < rowBytes {
		return nil, fmt.Errorf("%w: stride %d below row size %d", ErrDimensionMismatch, stride, rowBytes)
	}
	// The final row needs no padding after its last pixel.
	if need := stride*(height-1) + rowBytes; len(data) < need {
		return nil, fmt.Errorf("%w: %d bytes of raw data, need %d", ErrDimensionMismatch, len(data), need)
	}

	pix := make([]byte, width*height*bytesPerPixel)
	for y := 0; y < height; y++ {
		src := data[y*stride : y*stride+rowBytes]
		dst := pix[y*rowBytes : (y+1)*rowBytes]
		switch order {
		case OrderRGBA:
			copy(dst, src)
		case OrderRGBX:
			copy(dst, src)
			for i := 3; i < rowBytes; i += bytesPerPixel {
				dst[i] = 0xFF
			}
		case OrderBGRA:
			for i := 0; i < rowBytes; i += bytesPerPixel {
				dst[i], dst[i+1], dst[i+2], dst[i+3] = src[i+2], src[i+1], src[i], src[i+3]
			}
		case OrderBGRX:
			for i := 0; i < rowBytes; i += bytesPerPixel {
				dst[i], dst[i+1], dst[i+2], dst[i+3] = src[i+2], src[i+1], src[i], 0xFF
			}
		default:
			return nil, fmt.Errorf("frame: unknown channel order %d", int(order))
		}
	}
	return &Buffer{Width: width, Height: height, Pix: pix}, nil
}
