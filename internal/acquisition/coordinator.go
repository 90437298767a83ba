// Package acquisition drives a continuous-rotation collection session.
//
// One coordinator owns at most one live session. The session state machine
// runs on its own worker goroutine so blocking waits inside the collecting
// loop never stall the caller; other goroutines observe the session through
// an immutable status snapshot.
package acquisition

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"credaq/internal/driver"
	"credaq/internal/framebuf"
	"credaq/internal/indexing"
	"credaq/internal/logging"
	"credaq/internal/metadata"
	"credaq/internal/rotation"
)

// ErrBusy is returned by Start while a session is still live.
var ErrBusy = errors.New("a session is already running")

// ErrNoSession is returned by Stop when nothing is running.
var ErrNoSession = errors.New("no session is running")

// Microscope is the slice of the microscope driver the coordinator needs.
// Satisfied by driver.MicroscopeProxy.
type Microscope interface {
	rotation.AngleReader
	Identity() (string, error)
	StopStage() error
}

// Camera is the slice of the camera driver the coordinator needs. Satisfied
// by driver.CameraProxy.
type Camera interface {
	Identity() (string, error)
	Dimensions() (width, height int, err error)
	AcquireFrame(exposure, timeout time.Duration) (driver.Frame, error)
}

// Persister stores a finished session on disk. Satisfied by expdir.Store.
type Persister interface {
	CreateDir(sample string) (string, error)
	Persist(dir string, buf *framebuf.Buffer, exp metadata.Experiment, trace []rotation.Sample) error
}

// Indexer forwards completed datasets to an indexing service. Satisfied by
// indexing.Dispatcher; may be nil.
type Indexer interface {
	Enabled() bool
	Dispatch(job indexing.Job) error
}

// Deps are the collaborators a session runs against.
type Deps struct {
	Microscope Microscope
	Camera     Camera
	Persister  Persister
	Indexer    Indexer

	// Program identifies this build in the emitted metadata.
	Program string
}

// Coordinator starts and supervises collection sessions, one at a time.
type Coordinator struct {
	deps   Deps
	logger *slog.Logger

	mu      sync.Mutex
	current *Session
}

// New builds a coordinator.
func New(deps Deps, logger *slog.Logger) *Coordinator {
	return &Coordinator{
		deps:   deps,
		logger: logging.NewComponentLogger(logger, "acquisition"),
	}
}

// Start launches a new session and returns immediately. It fails with
// ErrBusy while a previous session has not reached a terminal state.
func (c *Coordinator) Start(params Params) (*Session, error) {
	if err := params.validate(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current != nil {
		select {
		case <-c.current.Done():
		default:
			return nil, ErrBusy
		}
	}

	session := newSession(uuid.NewString(), params, c.deps, c.logger)
	c.current = session
	c.logger.Info("session starting",
		logging.String(logging.FieldSessionID, session.ID()),
		logging.String(logging.FieldSample, params.Sample))
	go session.run()
	return session, nil
}

// Stop requests a cooperative stop of the live session. The session keeps
// running until it observes the request at its next iteration boundary.
func (c *Coordinator) Stop() error {
	c.mu.Lock()
	session := c.current
	c.mu.Unlock()
	if session == nil {
		return ErrNoSession
	}
	select {
	case <-session.Done():
		return ErrNoSession
	default:
	}
	session.RequestStop()
	return nil
}

// Current returns the most recent session, live or finished, or nil.
func (c *Coordinator) Current() *Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Status reports the most recent session's snapshot, or an idle status when
// no session was ever started.
func (c *Coordinator) Status() Status {
	c.mu.Lock()
	session := c.current
	c.mu.Unlock()
	if session == nil {
		return Status{State: StateIdle}
	}
	return session.Status()
}

// Close stops any live session and waits for its worker to exit, so the
// frame buffer is never released under a mid-collection write.
func (c *Coordinator) Close() {
	c.mu.Lock()
	session := c.current
	c.mu.Unlock()
	if session == nil {
		return
	}
	session.RequestStop()
	<-session.Done()
}
