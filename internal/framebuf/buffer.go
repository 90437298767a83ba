// Package framebuf provides the pre-allocated, capacity-bounded store of
// captured frames.
//
// The whole pixel slab is allocated before any frame is captured, so an
// allocation failure aborts a session before acquisition begins, never in
// the middle of it. Frames are copied in at insertion and never mutated
// afterwards; reads only cover previously inserted indices.
package framebuf

import (
	"errors"
	"fmt"
	"time"
)

// ErrCapacity is returned by Insert once the buffer holds capacity frames.
var ErrCapacity = errors.New("frame buffer at capacity")

// ErrAllocation is returned by Allocate when the requested buffer exceeds
// the permitted size.
var ErrAllocation = errors.New("frame buffer allocation failed")

// FrameRecord is one stored frame. Pixels alias the buffer's slab; the
// record is read-only by contract.
type FrameRecord struct {
	Index      int
	Width      int
	Height     int
	Pixels     []uint16
	CapturedAt time.Time
}

// Buffer is a fixed-capacity frame store. It is not safe for concurrent
// use; the acquisition coordinator owns it exclusively for a session.
type Buffer struct {
	width    int
	height   int
	capacity int
	count    int

	slab       []uint16
	timestamps []time.Time
}

// Allocate reserves space for capacity frames of width x height 16-bit
// pixels. maxBytes bounds the slab; a request beyond it fails with
// ErrAllocation before any memory is committed.
func Allocate(width, height, capacity int, maxBytes int64) (*Buffer, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: invalid frame dimensions %dx%d", ErrAllocation, width, height)
	}
	if capacity <= 0 {
		return nil, fmt.Errorf("%w: invalid capacity %d", ErrAllocation, capacity)
	}
	frameBytes := int64(width) * int64(height) * 2
	total := frameBytes * int64(capacity)
	if maxBytes > 0 && total > maxBytes {
		return nil, fmt.Errorf("%w: %d frames of %dx%d need %d bytes, limit is %d",
			ErrAllocation, capacity, width, height, total, maxBytes)
	}
	return &Buffer{
		width:      width,
		height:     height,
		capacity:   capacity,
		slab:       make([]uint16, int(total/2)),
		timestamps: make([]time.Time, capacity),
	}, nil
}

// Capacity returns the fixed frame capacity.
func (b *Buffer) Capacity() int { return b.capacity }

// Count returns the number of frames inserted so far.
func (b *Buffer) Count() int { return b.count }

// Width returns the frame width fixed at allocation.
func (b *Buffer) Width() int { return b.width }

// Height returns the frame height fixed at allocation.
func (b *Buffer) Height() int { return b.height }

// Full reports whether the buffer holds capacity frames.
func (b *Buffer) Full() bool { return b.count == b.capacity }

// Insert copies pixels into the next free slot and returns its index.
// It fails with ErrCapacity once count equals capacity; the buffer never
// grows or wraps.
func (b *Buffer) Insert(pixels []uint16, capturedAt time.Time) (int, error) {
	if b.count == b.capacity {
		return 0, ErrCapacity
	}
	if len(pixels) != b.width*b.height {
		return 0, fmt.Errorf("frame of %d pixels does not fit %dx%d buffer", len(pixels), b.width, b.height)
	}
	index := b.count
	copy(b.frameSlice(index), pixels)
	b.timestamps[index] = capturedAt
	b.count++
	return index, nil
}

// Frame returns the record at index. Only previously inserted frames are
// readable.
func (b *Buffer) Frame(index int) (FrameRecord, error) {
	if index < 0 || index >= b.count {
		return FrameRecord{}, fmt.Errorf("frame %d not inserted (count %d)", index, b.count)
	}
	return FrameRecord{
		Index:      index,
		Width:      b.width,
		Height:     b.height,
		Pixels:     b.frameSlice(index),
		CapturedAt: b.timestamps[index],
	}, nil
}

func (b *Buffer) frameSlice(index int) []uint16 {
	size := b.width * b.height
	return b.slab[index*size : (index+1)*size]
}
