// Command credaqd is the acquisition control daemon. It owns the driver
// proxies and the session coordinator, and serves the operator CLI over a
// Unix-domain socket.
package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"path/filepath"
	"syscall"

	"credaq/internal/config"
	"credaq/internal/daemon"
	"credaq/internal/ipc"
	"credaq/internal/logging"
	"credaq/internal/sessions"
)

func main() {
	configPath := flag.String("config", "", "configuration file path")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, _, _, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		log.Fatalf("prepare directories: %v", err)
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	store, err := sessions.Open(filepath.Join(cfg.Paths.LogDir, "sessions.db"))
	if err != nil {
		log.Fatalf("open session archive: %v", err)
	}

	d, err := daemon.New(cfg, store, logger)
	if err != nil {
		log.Fatalf("create daemon: %v", err)
	}
	defer d.Close()

	ipcServer, err := ipc.NewServer(ctx, cfg.Paths.SocketPath, d, cfg, logger)
	if err != nil {
		log.Fatalf("start IPC server: %v", err)
	}
	defer ipcServer.Close()
	ipcServer.Serve()

	if err := d.Start(ctx); err != nil {
		log.Fatalf("start daemon: %v", err)
	}

	<-ctx.Done()
	logger.Info("credaqd shutting down")
}
