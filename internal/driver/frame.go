package driver

import (
	"encoding/binary"
	"fmt"
	"time"
)

// Frame is one camera image as delivered over the wire: 16-bit grayscale
// pixels in row-major order.
type Frame struct {
	Width      int
	Height     int
	Pixels     []uint16
	CapturedAt time.Time
}

// framePayload is the wire form of Frame. Pixels travel as little-endian
// uint16 bytes; encoding/json base64s the byte slice.
type framePayload struct {
	Width      int       `json:"width"`
	Height     int       `json:"height"`
	Data       []byte    `json:"data"`
	CapturedAt time.Time `json:"captured_at"`
}

func (f Frame) payload() framePayload {
	data := make([]byte, len(f.Pixels)*2)
	for i, px := range f.Pixels {
		binary.LittleEndian.PutUint16(data[i*2:], px)
	}
	return framePayload{Width: f.Width, Height: f.Height, Data: data, CapturedAt: f.CapturedAt}
}

func (p framePayload) frame() (Frame, error) {
	if len(p.Data)%2 != 0 {
		return Frame{}, fmt.Errorf("odd pixel byte count %d", len(p.Data))
	}
	if p.Width*p.Height*2 != len(p.Data) {
		return Frame{}, fmt.Errorf("%dx%d frame does not match %d pixel bytes", p.Width, p.Height, len(p.Data))
	}
	pixels := make([]uint16, len(p.Data)/2)
	for i := range pixels {
		pixels[i] = binary.LittleEndian.Uint16(p.Data[i*2:])
	}
	return Frame{Width: p.Width, Height: p.Height, Pixels: pixels, CapturedAt: p.CapturedAt}, nil
}
