package indexing

import (
	"testing"
	"time"

	"credaq/internal/remote"
)

func TestDispatchDeliversJob(t *testing.T) {
	received := make(chan map[string]any, 1)
	server, err := remote.Listen("127.0.0.1:0", map[string]remote.Handler{
		CmdIndexDataset: func(args []any, kwargs map[string]any) (any, error) {
			received <- kwargs
			return "ok", nil
		},
	}, nil)
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	go server.Serve()
	t.Cleanup(server.Close)

	d := NewDispatcher(server.Addr().String(), time.Second)
	job := Job{
		Path:                    "/data/zeolite_1",
		RotationRangeDegrees:    51.62,
		FrameCount:              60,
		OscillationAngleDegrees: 0.8604,
	}
	if err := d.Dispatch(job); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}

	select {
	case kwargs := <-received:
		if kwargs["path"] != "/data/zeolite_1" {
			t.Errorf("path = %v", kwargs["path"])
		}
		if kwargs["frameCount"].(float64) != 60 {
			t.Errorf("frameCount = %v", kwargs["frameCount"])
		}
	case <-time.After(2 * time.Second):
		t.Fatal("job never reached the service")
	}
}

func TestDispatchFailureIsReported(t *testing.T) {
	// Bind a listener and close it so the port is known-dead.
	server, err := remote.Listen("127.0.0.1:0", nil, nil)
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	addr := server.Addr().String()
	server.Close()

	d := NewDispatcher(addr, 200*time.Millisecond)
	if err := d.Dispatch(Job{Path: "/data/x"}); err == nil {
		t.Fatal("dispatch to a dead endpoint must fail")
	}
}

func TestDisabledDispatcherIsNoop(t *testing.T) {
	d := NewDispatcher("", time.Second)
	if d.Enabled() {
		t.Fatal("empty endpoint should disable dispatch")
	}
	if err := d.Dispatch(Job{Path: "/data/x"}); err != nil {
		t.Fatalf("disabled dispatch must succeed: %v", err)
	}
}
