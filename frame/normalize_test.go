package frame

import (
	"bytes"
	"errors"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		width   int
		height  int
		stride  int
		order   ChannelOrder
		want    []byte
		wantErr bool
	}{
		{
			name:   "rgba passthrough",
			data:   []byte{1, 2, 3, 4, 5, 6, 7, 8},
			width:  2, height: 1, stride: 8,
			order: OrderRGBA,
			want:  []byte{1, 2, 3, 4, 5, 6, 7, 8},
		},
		{
			name:   "bgra reorders channels",
			data:   []byte{10, 20, 30, 40},
			width:  1, height: 1, stride: 4,
			order: OrderBGRA,
			want:  []byte{30, 20, 10, 40},
		},
		{
			name:   "bgrx forces opaque alpha",
			data:   []byte{10, 20, 30, 0},
			width:  1, height: 1, stride: 4,
			order: OrderBGRX,
			want:  []byte{30, 20, 10, 0xFF},
		},
		{
			name:   "rgbx forces opaque alpha",
			data:   []byte{10, 20, 30, 0},
			width:  1, height: 1, stride: 4,
			order: OrderRGBX,
			want:  []byte{10, 20, 30, 0xFF},
		},
		{
			name: "row padding stripped",
			data: []byte{
				1, 2, 3, 4, 0xEE, 0xEE, // row 0: one pixel + 2 pad bytes
				5, 6, 7, 8, 0xEE, 0xEE, // row 1
			},
			width: 1, height: 2, stride: 6,
			order: OrderRGBA,
			want:  []byte{1, 2, 3, 4, 5, 6, 7, 8},
		},
		{
			name: "last row may omit padding",
			data: []byte{
				1, 2, 3, 4, 0xEE, 0xEE,
				5, 6, 7, 8,
			},
			width: 1, height: 2, stride: 6,
			order: OrderRGBA,
			want:  []byte{1, 2, 3, 4, 5, 6, 7, 8},
		},
		{
			name:   "stride below row size",
			data:   make([]byte, 64),
			width:  4, height: 2, stride: 12,
			order:   OrderRGBA,
			wantErr: true,
		},
		{
			name:   "short data",
			data:   make([]byte, 10),
			width:  2, height: 2, stride: 8,
			order:   OrderRGBA,
			wantErr: true,
		},
		{
			name:   "zero height",
			data:   nil,
			width:  2, height: 0, stride: 8,
			order:   OrderRGBA,
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf, err := Normalize(tt.data, tt.width, tt.height, tt.stride, tt.order)
			if tt.wantErr {
				if err == nil {
					t.Fatal("Normalize succeeded, want error")
				}
				if !errors.Is(err, ErrDimensionMismatch) {
					t.Errorf("error = %v, want ErrDimensionMismatch", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Normalize: %v", err)
			}
			if buf.Width != tt.width || buf.Height != tt.height {
				t.Errorf("buffer is %dx%d, want %dx%d", buf.Width, buf.Height, tt.width, tt.height)
			}
			if !bytes.Equal(buf.Pix, tt.want) {
				t.Errorf("Pix = %v, want %v", buf.Pix, tt.want)
			}
		})
	}
}

func TestNormalizeCopiesInput(t *testing.T) {
	data := []byte{1, 2, 3, 4}
	buf, err := Normalize(data, 1, 1, 4, OrderRGBA)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	data[0] = 0xAA
	if buf.Pix[0] == 0xAA {
		t.Error("normalized buffer aliases the raw data")
	}
}
