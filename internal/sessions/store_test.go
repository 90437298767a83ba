package sessions

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "sessions.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("Close: %v", err)
		}
	})
	return store
}

func sampleRecord(id string, finished time.Time) Record {
	return Record{
		ID:               id,
		Sample:           "zeolite",
		State:            "completed",
		ExperimentDir:    "/data/zeolite_1",
		FramesCollected:  60,
		StartAngle:       -20.12,
		EndAngle:         31.5,
		RotationRange:    51.62,
		OscillationAngle: 0.8604,
		RotationSpeed:    1.68,
		Exposure:         500 * time.Millisecond,
		TotalTime:        30 * time.Second,
		StartedAt:        finished.Add(-time.Minute),
		FinishedAt:       finished,
	}
}

func TestRecordAndGetByID(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	want := sampleRecord("a1b2", time.Now())
	if err := store.Record(ctx, want); err != nil {
		t.Fatalf("Record: %v", err)
	}

	got, err := store.GetByID(ctx, "a1b2")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Sample != want.Sample || got.FramesCollected != want.FramesCollected {
		t.Fatalf("record mismatch: %+v", got)
	}
	if got.Exposure != want.Exposure || got.TotalTime != want.TotalTime {
		t.Fatalf("durations mismatch: %+v", got)
	}
	if !got.FinishedAt.Equal(want.FinishedAt) {
		t.Fatalf("finished at = %v, want %v", got.FinishedAt, want.FinishedAt)
	}
}

func TestGetByIDMissing(t *testing.T) {
	store := newStore(t)
	if _, err := store.GetByID(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListNewestFirst(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	for i, id := range []string{"one", "two", "three"} {
		rec := sampleRecord(id, base.Add(time.Duration(i)*time.Hour))
		if err := store.Record(ctx, rec); err != nil {
			t.Fatalf("Record %s: %v", id, err)
		}
	}

	records, err := store.List(ctx, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("len = %d, want 3", len(records))
	}
	if records[0].ID != "three" || records[2].ID != "one" {
		t.Fatalf("order = %s, %s, %s", records[0].ID, records[1].ID, records[2].ID)
	}

	limited, err := store.List(ctx, 2)
	if err != nil {
		t.Fatalf("List(2): %v", err)
	}
	if len(limited) != 2 || limited[0].ID != "three" {
		t.Fatalf("limited = %+v", limited)
	}
}

func TestAbortedRecordRoundTrip(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	rec := sampleRecord("ab1", time.Now())
	rec.State = "aborted"
	rec.AbortReason = "rotation never started"
	rec.FramesCollected = 0
	if err := store.Record(ctx, rec); err != nil {
		t.Fatalf("Record: %v", err)
	}

	got, err := store.GetByID(ctx, "ab1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.State != "aborted" || got.AbortReason != "rotation never started" {
		t.Fatalf("aborted record mismatch: %+v", got)
	}
}
