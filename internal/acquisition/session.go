package acquisition

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"sync"
	"time"

	"credaq/internal/driver"
	"credaq/internal/framebuf"
	"credaq/internal/indexing"
	"credaq/internal/logging"
	"credaq/internal/metadata"
	"credaq/internal/rotation"
)

// Session is one collection run. The worker goroutine owns the frame buffer
// and the state machine; everything other goroutines may touch goes through
// the published status snapshot or the post-Done result.
type Session struct {
	id     string
	params Params
	deps   Deps
	logger *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	stop   chan struct{} // closed on the first stop request
	done   chan struct{} // closed when the worker exits

	stopOnce sync.Once

	mu     sync.Mutex
	status Status
	result Result
}

func newSession(id string, params Params, deps Deps, logger *slog.Logger) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	return &Session{
		id:     id,
		params: params,
		deps:   deps,
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
		status: Status{
			SessionID:     id,
			Sample:        params.Sample,
			State:         StateIdle,
			FrameCapacity: params.FrameCapacity,
			StartedAt:     time.Now(),
		},
	}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Done is closed once the session reaches a terminal state.
func (s *Session) Done() <-chan struct{} { return s.done }

// Status returns the current published snapshot.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Result returns the session outcome. Valid only after Done is closed.
func (s *Session) Result() Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}

// RequestStop asks the worker to finalize at the next iteration boundary. It
// never interrupts an in-progress frame wait before that wait's own timeout.
func (s *Session) RequestStop() {
	s.stopOnce.Do(func() {
		close(s.stop)
		s.cancel()
	})
}

func (s *Session) stopRequested() bool {
	select {
	case <-s.stop:
		return true
	default:
		return false
	}
}

func (s *Session) setState(state State) {
	s.mu.Lock()
	s.status.State = state
	s.mu.Unlock()
	s.logger.Info("session state changed",
		logging.String(logging.FieldSessionID, s.id),
		logging.String(logging.FieldState, string(state)))
}

func (s *Session) setProgress(frames int, angle float64) {
	s.mu.Lock()
	s.status.FramesCollected = frames
	s.status.LastAngle = angle
	s.mu.Unlock()
}

// run drives the state machine. It is the only goroutine that touches the
// frame buffer while the session is live.
func (s *Session) run() {
	defer close(s.done)
	result := s.collect()
	result.SessionID = s.id
	result.Sample = s.params.Sample
	result.Exposure = s.params.Exposure

	s.mu.Lock()
	s.result = result
	s.status.State = result.State
	s.status.FramesCollected = result.FramesCollected
	s.mu.Unlock()

	if result.State == StateAborted {
		s.logger.Error("session aborted",
			logging.String(logging.FieldSessionID, s.id),
			logging.String(logging.FieldErrorHint, result.AbortReason),
			logging.Error(result.Err))
		return
	}
	s.logger.Info("session completed",
		logging.String(logging.FieldSessionID, s.id),
		logging.Int(logging.FieldFrameCount, result.FramesCollected),
		logging.String("experiment_dir", result.ExperimentDir))
}

func (s *Session) collect() Result {
	startedAt := time.Now()

	// Armed: reserve memory before touching the filesystem, so a failed
	// allocation leaves no directory behind.
	s.setState(StateArmed)

	width, height, err := s.deps.Camera.Dimensions()
	if err != nil {
		return s.abort(startedAt, ReasonDriverUnreachable, err)
	}
	buf, err := framebuf.Allocate(width, height, s.params.FrameCapacity, s.params.MaxBufferBytes)
	if err != nil {
		return s.abort(startedAt, ReasonOutOfMemory,
			driver.NewError(driver.KindOutOfMemory, "allocate frame buffer", "", err))
	}

	microscopeID, err := s.deps.Microscope.Identity()
	if err != nil {
		return s.abort(startedAt, ReasonDriverUnreachable, err)
	}
	cameraID, err := s.deps.Camera.Identity()
	if err != nil {
		return s.abort(startedAt, ReasonDriverUnreachable, err)
	}

	dir, err := s.deps.Persister.CreateDir(s.params.Sample)
	if err != nil {
		return s.abort(startedAt, ReasonPersistenceFailed,
			driver.NewError(driver.KindPersistence, "create experiment directory", "", err))
	}

	// AwaitingRotation: block until the stage moves past the threshold.
	referenceAngle, err := s.deps.Microscope.StageAngle()
	if err != nil {
		return s.abort(startedAt, ReasonDriverUnreachable, err)
	}
	s.setState(StateAwaitingRotation)

	monitor := rotation.NewMonitor(s.deps.Microscope, s.params.RotationPoll, s.logger)
	if _, err := monitor.WaitForStart(s.ctx, referenceAngle, s.params.ActivationThreshold); err != nil {
		if errors.Is(err, context.Canceled) {
			return s.abort(startedAt, ReasonRotationStopped, err)
		}
		return s.abort(startedAt, ReasonDriverUnreachable, err)
	}

	// Collecting: timing statistics anchor to the first captured frame, not
	// to the threshold-crossing instant.
	s.setState(StateCollecting)
	check := rotation.NewStagnationCheck(s.params.AutoStopInterval)

	var (
		startAngle, lastAngle float64
		startInstant          time.Time
		lastFeed              time.Time
		samples               []rotation.Sample
	)

	for {
		if s.stopRequested() {
			s.logger.Info("stop requested",
				logging.String(logging.FieldSessionID, s.id))
			break
		}

		frame, err := s.deps.Camera.AcquireFrame(s.params.Exposure, s.params.FrameTimeout)
		if err != nil {
			s.stopStage()
			return s.abort(startedAt, ReasonDriverUnreachable, err)
		}
		if _, err := buf.Insert(frame.Pixels, frame.CapturedAt); err != nil {
			s.stopStage()
			return s.abort(startedAt, ReasonFrameMismatch,
				driver.NewError(driver.KindProtocol, "store frame", "frame does not fit buffer", err))
		}

		angle, err := s.deps.Microscope.StageAngle()
		if err != nil {
			s.stopStage()
			return s.abort(startedAt, ReasonDriverUnreachable, err)
		}
		now := time.Now()
		samples = append(samples, rotation.Sample{Angle: angle, At: now})
		s.setProgress(buf.Count(), angle)

		stagnant := false
		if buf.Count() == 1 {
			startAngle = angle
			startInstant = now
		} else if s.params.AutoStop {
			stagnant = check.Feed(angle, now.Sub(lastFeed))
		}
		lastFeed = now
		lastAngle = angle

		// Buffer-full beats stagnation on the same iteration so the
		// termination cause is deterministic for a given frame sequence.
		if buf.Full() {
			s.logger.Info("frame buffer full",
				logging.String(logging.FieldSessionID, s.id),
				logging.Int(logging.FieldFrameCount, buf.Count()))
			break
		}
		if stagnant {
			s.logger.Info("rotation stagnated",
				logging.String(logging.FieldSessionID, s.id),
				logging.Float64("angle", angle))
			break
		}
	}

	s.stopStage()

	// Finalizing: derive the session statistics exactly once.
	s.setState(StateFinalizing)
	frames := buf.Count()
	if frames == 0 {
		return s.abort(startedAt, ReasonNoFrames,
			driver.NewError(driver.KindDegenerateSession, "finalize", "zero frames collected", nil))
	}

	endInstant := samples[len(samples)-1].At
	totalAngle := math.Abs(lastAngle - startAngle)
	oscillation := totalAngle / float64(frames)
	totalTime := endInstant.Sub(startInstant)
	perFrame := totalTime / time.Duration(frames)
	speed := 0.0
	if perFrame > 0 {
		speed = oscillation / perFrame.Seconds()
	}

	exp := metadata.Experiment{
		Program:          s.deps.Program,
		CollectionTime:   startInstant,
		Microscope:       microscopeID,
		Camera:           cameraID,
		Sample:           s.params.Sample,
		StartAngle:       startAngle,
		EndAngle:         lastAngle,
		RotationRange:    totalAngle,
		Exposure:         s.params.Exposure,
		TimePerFrame:     perFrame,
		TotalTime:        totalTime,
		RotationAxis:     s.params.RotationAxisRadians,
		OscillationAngle: oscillation,
		RotationSpeed:    speed,
		FrameCount:       frames,
	}

	result := Result{
		State:            StateCompleted,
		ExperimentDir:    dir,
		FramesCollected:  frames,
		StartAngle:       startAngle,
		EndAngle:         lastAngle,
		RotationRange:    totalAngle,
		OscillationAngle: oscillation,
		RotationSpeed:    speed,
		TimePerFrame:     perFrame,
		TotalTime:        totalTime,
		StartedAt:        startedAt,
		FinishedAt:       time.Now(),
	}

	var trace []rotation.Sample
	if s.params.CollectTrace {
		trace = samples
	}
	if err := s.deps.Persister.Persist(dir, buf, exp, trace); err != nil {
		// Captured frames are never discarded over a failed write; the
		// session still completes from the instrument's point of view.
		result.Warning = ReasonPersistenceFailed
		s.logger.Error("result persistence failed",
			logging.String(logging.FieldSessionID, s.id),
			logging.Error(err))
		return result
	}

	if s.deps.Indexer != nil && s.deps.Indexer.Enabled() {
		job := indexing.Job{
			Path:                    dir,
			RotationRangeDegrees:    totalAngle,
			FrameCount:              frames,
			OscillationAngleDegrees: oscillation,
		}
		if err := s.deps.Indexer.Dispatch(job); err != nil {
			s.logger.Warn("indexing dispatch failed",
				logging.String(logging.FieldSessionID, s.id),
				logging.Error(err))
		}
	}
	return result
}

func (s *Session) abort(startedAt time.Time, reason string, err error) Result {
	return Result{
		State:       StateAborted,
		AbortReason: reason,
		Err:         err,
		StartedAt:   startedAt,
		FinishedAt:  time.Now(),
	}
}

// stopStage halts the goniometer best effort; a failure here must not mask
// the outcome already decided.
func (s *Session) stopStage() {
	if err := s.deps.Microscope.StopStage(); err != nil {
		s.logger.Warn("stage stop failed",
			logging.String(logging.FieldSessionID, s.id),
			logging.Error(err))
	}
}
