package daemon

import (
	"context"
	"errors"
	"testing"
	"time"

	"credaq/internal/acquisition"
	"credaq/internal/logging"
	"credaq/internal/sessions"
	"credaq/internal/testsupport"
)

func newTestDaemon(t *testing.T) (*Daemon, *sessions.Store, *testsupport.SimDrivers) {
	t.Helper()

	sims := testsupport.StartSimDrivers(t, 30, 32, 32)
	cfg := testsupport.NewConfig(t,
		testsupport.WithDriverAddrs(sims.MicroscopeAddr, sims.CameraAddr, sims.SpeedAddr))
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	store := testsupport.MustOpenStore(t, cfg)

	d, err := New(cfg, store, logging.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })
	return d, store, sims
}

func TestStartAcquiresLock(t *testing.T) {
	d, _, _ := newTestDaemon(t)
	ctx := context.Background()

	if err := d.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if !d.Status().Running {
		t.Fatal("daemon should report running")
	}
	if err := d.Start(ctx); err == nil {
		t.Fatal("second Start must fail while running")
	}

	d.Stop()
	if d.Status().Running {
		t.Fatal("daemon should report stopped")
	}
	if err := d.Start(ctx); err != nil {
		t.Fatalf("restart after Stop: %v", err)
	}
}

func TestSessionRunsAndIsArchived(t *testing.T) {
	d, store, sims := newTestDaemon(t)
	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	// Set the simulated stage in motion so the activation threshold is
	// crossed shortly after the session arms.
	if err := sims.Microscope.SetStageAngle(60, false); err != nil {
		t.Fatalf("SetStageAngle: %v", err)
	}

	params := acquisition.Params{
		Sample:              "simulated",
		Exposure:            time.Millisecond,
		FrameCapacity:       4,
		ActivationThreshold: 0.2,
		RotationPoll:        time.Millisecond,
		FrameTimeout:        2 * time.Second,
		RotationAxisRadians: -2.24,
	}
	id, err := d.StartSession(params)
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}

	rec := waitForRecord(t, store, id)
	if rec.State != string(acquisition.StateCompleted) {
		t.Fatalf("archived state = %s (%s)", rec.State, rec.AbortReason)
	}
	if rec.FramesCollected != 4 {
		t.Fatalf("frames = %d, want full buffer of 4", rec.FramesCollected)
	}
	if rec.RotationRange <= 0 {
		t.Fatalf("rotation range = %v, want > 0", rec.RotationRange)
	}

	status := d.SessionStatus()
	if status.State != acquisition.StateCompleted {
		t.Fatalf("status state = %s", status.State)
	}
}

func TestSpeedControllerPassthrough(t *testing.T) {
	d, _, _ := newTestDaemon(t)

	speed, err := d.RotationSpeed()
	if err != nil {
		t.Fatalf("RotationSpeed: %v", err)
	}
	if speed != 12 {
		t.Fatalf("default speed = %d, want 12", speed)
	}

	if err := d.SetRotationSpeed(5); err != nil {
		t.Fatalf("SetRotationSpeed: %v", err)
	}
	speed, err = d.RotationSpeed()
	if err != nil {
		t.Fatalf("RotationSpeed: %v", err)
	}
	if speed != 5 {
		t.Fatalf("speed = %d, want 5", speed)
	}
}

func TestStopSessionWithoutSession(t *testing.T) {
	d, _, _ := newTestDaemon(t)
	if err := d.StopSession(); !errors.Is(err, acquisition.ErrNoSession) {
		t.Fatalf("StopSession = %v, want ErrNoSession", err)
	}
}

func waitForRecord(t *testing.T, store *sessions.Store, id string) sessions.Record {
	t.Helper()
	deadline := time.Now().Add(15 * time.Second)
	for time.Now().Before(deadline) {
		rec, err := store.GetByID(context.Background(), id)
		if err == nil {
			return rec
		}
		if !errors.Is(err, sessions.ErrNotFound) {
			t.Fatalf("GetByID: %v", err)
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal("session was never archived")
	return sessions.Record{}
}
