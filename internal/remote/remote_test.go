package remote

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"credaq/internal/logging"
)

func TestFrameRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	payload := []byte(`{"name":"stage_angle"}`)
	if err := writeFrame(&buf, payload); err != nil {
		t.Fatalf("writeFrame: %v", err)
	}
	got, err := readFrame(&buf)
	if err != nil {
		t.Fatalf("readFrame: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("payload mismatch: %q", got)
	}
}

func TestReadFrameRejectsOversizedDeclaration(t *testing.T) {
	var buf bytes.Buffer
	buf.Write([]byte{0xff, 0xff, 0xff, 0xff})
	if _, err := readFrame(&buf); err == nil {
		t.Fatal("expected error for oversized frame declaration")
	}
}

func startTestServer(t *testing.T, handlers map[string]Handler) *Server {
	t.Helper()
	srv, err := Listen("127.0.0.1:0", handlers, logging.NewNop())
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	go srv.Serve()
	t.Cleanup(srv.Close)
	return srv
}

func dialTestServer(t *testing.T, srv *Server) *Session {
	t.Helper()
	session, err := Dial(srv.Addr().String(), time.Second)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	t.Cleanup(func() { session.Close() })
	return session
}

func TestCallRoundTrip(t *testing.T) {
	srv := startTestServer(t, map[string]Handler{
		"stage_angle": func(args []any, kwargs map[string]any) (any, error) {
			return 12.5, nil
		},
		"echo_kwargs": func(args []any, kwargs map[string]any) (any, error) {
			return kwargs, nil
		},
	})
	session := dialTestServer(t, srv)

	raw, err := session.Call(Envelope{Name: "stage_angle"}, time.Second)
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	var angle float64
	if err := json.Unmarshal(raw, &angle); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if angle != 12.5 {
		t.Fatalf("angle = %v, want 12.5", angle)
	}

	raw, err = session.Call(Envelope{
		Name:   "echo_kwargs",
		Kwargs: map[string]any{"speed": 7.0},
	}, time.Second)
	if err != nil {
		t.Fatalf("Call echo: %v", err)
	}
	var kwargs map[string]float64
	if err := json.Unmarshal(raw, &kwargs); err != nil {
		t.Fatalf("decode kwargs: %v", err)
	}
	if kwargs["speed"] != 7.0 {
		t.Fatalf("kwargs = %v", kwargs)
	}
}

func TestCallPropagatesRemoteError(t *testing.T) {
	srv := startTestServer(t, map[string]Handler{
		"explode": func(args []any, kwargs map[string]any) (any, error) {
			return nil, errors.New("stage jammed")
		},
	})
	session := dialTestServer(t, srv)

	_, err := session.Call(Envelope{Name: "explode"}, time.Second)
	var remoteErr *RemoteError
	if !errors.As(err, &remoteErr) {
		t.Fatalf("expected RemoteError, got %v", err)
	}
	if remoteErr.Kind != "remote" || !strings.Contains(remoteErr.Message, "stage jammed") {
		t.Fatalf("unexpected descriptor: %+v", remoteErr)
	}
	if session.Broken() {
		t.Fatal("remote error must not break the session")
	}
}

func TestUnknownCommandReportsProtocolKind(t *testing.T) {
	srv := startTestServer(t, map[string]Handler{})
	session := dialTestServer(t, srv)

	_, err := session.Call(Envelope{Name: "no_such_command"}, time.Second)
	var remoteErr *RemoteError
	if !errors.As(err, &remoteErr) {
		t.Fatalf("expected RemoteError, got %v", err)
	}
	if remoteErr.Kind != "protocol" {
		t.Fatalf("kind = %q, want protocol", remoteErr.Kind)
	}
}

func TestCallTimesOutAndBreaksSession(t *testing.T) {
	block := make(chan struct{})
	t.Cleanup(func() { close(block) })
	srv := startTestServer(t, map[string]Handler{
		"stall": func(args []any, kwargs map[string]any) (any, error) {
			<-block
			return nil, nil
		},
	})
	session := dialTestServer(t, srv)

	_, err := session.Call(Envelope{Name: "stall"}, 50*time.Millisecond)
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
	if !session.Broken() {
		t.Fatal("session should be broken after a timeout")
	}
	if _, err := session.Call(Envelope{Name: "stall"}, time.Second); !errors.Is(err, ErrTransport) {
		t.Fatalf("expected fast transport failure on broken session, got %v", err)
	}
}

func TestCloseUnblocksIdleSession(t *testing.T) {
	srv, err := Listen("127.0.0.1:0", map[string]Handler{
		"identity": func(args []any, kwargs map[string]any) (any, error) {
			return "simulate", nil
		},
	}, logging.NewNop())
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	go srv.Serve()

	session, err := Dial(srv.Addr().String(), time.Second)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer session.Close()
	if _, err := session.Call(Envelope{Name: "identity"}, time.Second); err != nil {
		t.Fatalf("Call: %v", err)
	}

	// The peer keeps its session open between calls; shutdown must disconnect
	// it rather than wait for it to hang up.
	done := make(chan struct{})
	go func() {
		srv.Close()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Close blocked on an idle connection")
	}

	if _, err := session.Call(Envelope{Name: "identity"}, time.Second); err == nil {
		t.Fatal("call must fail once the server has disconnected the session")
	}
}

func TestCallAfterCloseFailsFast(t *testing.T) {
	srv := startTestServer(t, map[string]Handler{})
	session := dialTestServer(t, srv)
	session.Close()
	if _, err := session.Call(Envelope{Name: "anything"}, time.Second); !errors.Is(err, ErrTransport) {
		t.Fatalf("expected transport error, got %v", err)
	}
}
