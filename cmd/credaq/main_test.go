package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"credaq/internal/daemon"
	"credaq/internal/ipc"
	"credaq/internal/logging"
	"credaq/internal/testsupport"
)

func setupCLITestEnv(t *testing.T) (socketPath string) {
	t.Helper()

	sims := testsupport.StartSimDrivers(t, 30, 16, 16)
	cfg := testsupport.NewConfig(t,
		testsupport.WithDriverAddrs(sims.MicroscopeAddr, sims.CameraAddr, sims.SpeedAddr))
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	store := testsupport.MustOpenStore(t, cfg)

	d, err := daemon.New(cfg, store, logging.NewNop())
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("daemon.Start: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })

	server, err := ipc.NewServer(context.Background(), cfg.Paths.SocketPath, d, cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("ipc.NewServer: %v", err)
	}
	server.Serve()
	t.Cleanup(server.Close)
	return cfg.Paths.SocketPath
}

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestStatusCommand(t *testing.T) {
	socket := setupCLITestEnv(t)

	out, err := runCommand(t, "--socket", socket, "status")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if !strings.Contains(out, "Running") || !strings.Contains(out, "yes") {
		t.Fatalf("status output:\n%s", out)
	}
	if !strings.Contains(out, "idle") {
		t.Fatalf("expected idle state in output:\n%s", out)
	}
}

func TestSpeedCommands(t *testing.T) {
	socket := setupCLITestEnv(t)

	out, err := runCommand(t, "--socket", socket, "speed", "get")
	if err != nil {
		t.Fatalf("speed get: %v", err)
	}
	if !strings.Contains(out, "12") {
		t.Fatalf("speed get output:\n%s", out)
	}

	if _, err := runCommand(t, "--socket", socket, "speed", "set", "7"); err != nil {
		t.Fatalf("speed set: %v", err)
	}
	out, err = runCommand(t, "--socket", socket, "speed", "get")
	if err != nil {
		t.Fatalf("speed get: %v", err)
	}
	if !strings.Contains(out, "7") {
		t.Fatalf("speed get output after set:\n%s", out)
	}
}

func TestStopWithoutSessionFails(t *testing.T) {
	socket := setupCLITestEnv(t)

	if _, err := runCommand(t, "--socket", socket, "stop"); err == nil {
		t.Fatal("stop with no live session must fail")
	}
}

func TestConfigInitCommand(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")

	out, err := runCommand(t, "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	if !strings.Contains(out, target) {
		t.Fatalf("config init output:\n%s", out)
	}
	body, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read generated config: %v", err)
	}
	if !strings.Contains(string(body), "[acquisition]") {
		t.Fatalf("generated config:\n%s", body)
	}
}

func TestRenderTablePadsShortRows(t *testing.T) {
	out := renderTable([]string{"A", "B"}, [][]string{{"only"}}, nil)
	if !strings.Contains(out, "only") {
		t.Fatalf("table output:\n%s", out)
	}
}
