// Package daemon wires the driver proxies, the acquisition coordinator, and
// the session archive into the long-running credaqd process, and enforces
// single-instance execution through a lock file.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"credaq/internal/acquisition"
	"credaq/internal/config"
	"credaq/internal/driver"
	"credaq/internal/expdir"
	"credaq/internal/indexing"
	"credaq/internal/logging"
	"credaq/internal/sessions"
)

// ProgramID identifies this build in emitted metadata and status output.
const ProgramID = "credaq 0.1.0"

// Daemon owns the long-lived services of the credaqd process.
type Daemon struct {
	cfg    *config.Config
	logger *slog.Logger
	store  *sessions.Store
	coord  *acquisition.Coordinator

	microscope *driver.MicroscopeProxy
	camera     *driver.CameraProxy
	speed      *driver.SpeedControllerProxy

	lockPath string
	lock     *flock.Flock

	running atomic.Bool
}

// Status represents daemon runtime information.
type Status struct {
	Running      bool
	PID          int
	LockPath     string
	SessionsPath string
	Acquisition  acquisition.Status
}

// New constructs a daemon from the configuration. The sessions archive is
// opened by the caller so tests can substitute their own.
func New(cfg *config.Config, store *sessions.Store, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || store == nil {
		return nil, errors.New("daemon requires config and session store")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	callTimeout := time.Duration(cfg.Drivers.CallTimeoutMillis) * time.Millisecond
	microscope := driver.NewMicroscopeProxy(cfg.Drivers.MicroscopeAddr, callTimeout, logger)
	camera := driver.NewCameraProxy(cfg.Drivers.CameraAddr, callTimeout, logger)

	var speed *driver.SpeedControllerProxy
	if cfg.Drivers.SpeedControllerAddr != "" {
		speed = driver.NewSpeedControllerProxy(cfg.Drivers.SpeedControllerAddr, callTimeout, logger)
	}

	var indexer acquisition.Indexer
	if cfg.Indexing.Enabled {
		indexer = indexing.NewDispatcher(cfg.Indexing.Addr,
			time.Duration(cfg.Indexing.TimeoutMillis)*time.Millisecond)
	}

	coord := acquisition.New(acquisition.Deps{
		Microscope: microscope,
		Camera:     camera,
		Persister:  expdir.NewStore(cfg.Paths.ExperimentDir),
		Indexer:    indexer,
		Program:    ProgramID,
	}, logger)

	lockPath := filepath.Join(cfg.Paths.LogDir, "credaqd.lock")
	return &Daemon{
		cfg:        cfg,
		logger:     logging.NewComponentLogger(logger, "daemon"),
		store:      store,
		coord:      coord,
		microscope: microscope,
		camera:     camera,
		speed:      speed,
		lockPath:   lockPath,
		lock:       flock.New(lockPath),
	}, nil
}

// Start acquires the single-instance lock.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}
	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another credaq daemon instance is already running")
	}
	d.running.Store(true)
	d.logger.Info("daemon started", logging.String("lock", d.lockPath))
	return nil
}

// Stop finishes the live session, if any, and releases the lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}
	d.coord.Close()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("daemon stopped")
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	d.microscope.Close()
	d.camera.Close()
	if d.speed != nil {
		d.speed.Close()
	}
	return d.store.Close()
}

// StartSession launches a collection session and returns its id. The session
// outcome is archived once it reaches a terminal state.
func (d *Daemon) StartSession(params acquisition.Params) (string, error) {
	session, err := d.coord.Start(params)
	if err != nil {
		return "", err
	}
	go d.archive(session)
	return session.ID(), nil
}

// StopSession requests a cooperative stop of the live session.
func (d *Daemon) StopSession() error {
	return d.coord.Stop()
}

// SessionStatus returns the published snapshot of the current session.
func (d *Daemon) SessionStatus() acquisition.Status {
	return d.coord.Status()
}

// Status returns daemon runtime information.
func (d *Daemon) Status() Status {
	return Status{
		Running:      d.running.Load(),
		PID:          os.Getpid(),
		LockPath:     d.lockPath,
		SessionsPath: d.store.Path(),
		Acquisition:  d.coord.Status(),
	}
}

// ListSessions returns archived sessions, newest first.
func (d *Daemon) ListSessions(ctx context.Context, limit int) ([]sessions.Record, error) {
	return d.store.List(ctx, limit)
}

// GetSession returns one archived session by id.
func (d *Daemon) GetSession(ctx context.Context, id string) (sessions.Record, error) {
	return d.store.GetByID(ctx, id)
}

// RotationSpeed reads the goniometer speed setting.
func (d *Daemon) RotationSpeed() (int, error) {
	if d.speed == nil {
		return 0, errors.New("no speed controller configured")
	}
	return d.speed.RotationSpeed()
}

// SetRotationSpeed changes the goniometer speed setting.
func (d *Daemon) SetRotationSpeed(value int) error {
	if d.speed == nil {
		return errors.New("no speed controller configured")
	}
	return d.speed.SetRotationSpeed(value)
}

func (d *Daemon) archive(session *acquisition.Session) {
	<-session.Done()
	result := session.Result()

	rec := sessions.Record{
		ID:               result.SessionID,
		Sample:           result.Sample,
		State:            string(result.State),
		ExperimentDir:    result.ExperimentDir,
		FramesCollected:  result.FramesCollected,
		StartAngle:       result.StartAngle,
		EndAngle:         result.EndAngle,
		RotationRange:    result.RotationRange,
		OscillationAngle: result.OscillationAngle,
		RotationSpeed:    result.RotationSpeed,
		Exposure:         result.Exposure,
		TotalTime:        result.TotalTime,
		AbortReason:      result.AbortReason,
		StartedAt:        result.StartedAt,
		FinishedAt:       result.FinishedAt,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := d.store.Record(ctx, rec); err != nil {
		d.logger.Error("failed to archive session",
			logging.String(logging.FieldSessionID, result.SessionID),
			logging.Error(err))
	}
}
