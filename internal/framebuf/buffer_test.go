package framebuf

import (
	"errors"
	"testing"
	"time"
)

func TestAcceptsExactlyCapacityInserts(t *testing.T) {
	for _, capacity := range []int{1, 3, 10, 64} {
		buf, err := Allocate(4, 4, capacity, 0)
		if err != nil {
			t.Fatalf("Allocate(%d): %v", capacity, err)
		}
		pixels := make([]uint16, 16)
		for i := 0; i < capacity; i++ {
			index, err := buf.Insert(pixels, time.Now())
			if err != nil {
				t.Fatalf("capacity %d: insert %d: %v", capacity, i, err)
			}
			if index != i {
				t.Fatalf("capacity %d: index = %d, want %d", capacity, index, i)
			}
		}
		if _, err := buf.Insert(pixels, time.Now()); !errors.Is(err, ErrCapacity) {
			t.Fatalf("capacity %d: insert %d should fail with ErrCapacity, got %v", capacity, capacity+1, err)
		}
		if buf.Count() != capacity {
			t.Fatalf("capacity %d: count = %d after rejected insert", capacity, buf.Count())
		}
	}
}

func TestAllocateRespectsByteLimit(t *testing.T) {
	// 100 frames of 512x512 uint16 = 50 MiB; cap at 1 MiB.
	if _, err := Allocate(512, 512, 100, 1<<20); !errors.Is(err, ErrAllocation) {
		t.Fatalf("expected ErrAllocation, got %v", err)
	}
	// The same request fits with the limit lifted.
	if _, err := Allocate(512, 512, 100, 0); err != nil {
		t.Fatalf("unbounded allocation failed: %v", err)
	}
}

func TestAllocateRejectsDegenerateShapes(t *testing.T) {
	cases := []struct{ w, h, n int }{
		{0, 4, 1}, {4, 0, 1}, {4, 4, 0}, {-1, 4, 4},
	}
	for _, tc := range cases {
		if _, err := Allocate(tc.w, tc.h, tc.n, 0); !errors.Is(err, ErrAllocation) {
			t.Errorf("Allocate(%d,%d,%d) should fail with ErrAllocation, got %v", tc.w, tc.h, tc.n, err)
		}
	}
}

func TestInsertRejectsWrongShape(t *testing.T) {
	buf, err := Allocate(4, 4, 2, 0)
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	if _, err := buf.Insert(make([]uint16, 15), time.Now()); err == nil {
		t.Fatal("expected shape error")
	}
	if buf.Count() != 0 {
		t.Fatalf("count = %d after rejected insert", buf.Count())
	}
}

func TestFrameReadsOnlyInsertedIndices(t *testing.T) {
	buf, err := Allocate(2, 2, 3, 0)
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	captured := time.Now()
	if _, err := buf.Insert([]uint16{1, 2, 3, 4}, captured); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	frame, err := buf.Frame(0)
	if err != nil {
		t.Fatalf("Frame(0): %v", err)
	}
	if frame.Pixels[3] != 4 || !frame.CapturedAt.Equal(captured) {
		t.Fatalf("frame content mismatch: %+v", frame)
	}

	if _, err := buf.Frame(1); err == nil {
		t.Fatal("reading an uninserted index must fail")
	}
	if _, err := buf.Frame(-1); err == nil {
		t.Fatal("negative index must fail")
	}
}

func TestInsertCopiesPixels(t *testing.T) {
	buf, err := Allocate(2, 1, 1, 0)
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	src := []uint16{10, 20}
	if _, err := buf.Insert(src, time.Now()); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	src[0] = 99
	frame, err := buf.Frame(0)
	if err != nil {
		t.Fatalf("Frame: %v", err)
	}
	if frame.Pixels[0] != 10 {
		t.Fatal("buffer must own its copy of the pixel data")
	}
}
