package acquisition

import "time"

// State names one phase of a collection session.
type State string

const (
	StateIdle             State = "idle"
	StateArmed            State = "armed"
	StateAwaitingRotation State = "awaiting_rotation"
	StateCollecting       State = "collecting"
	StateFinalizing       State = "finalizing"
	StateCompleted        State = "completed"
	StateAborted          State = "aborted"
)

// Terminal reports whether no further transition can happen.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateAborted
}

// Abort reasons shown to the operator. Every abort carries one of these so
// the failure can be acted on without reading logs.
const (
	ReasonDriverUnreachable = "could not reach the instrument"
	ReasonOutOfMemory       = "not enough memory for the requested frame count"
	ReasonFrameMismatch     = "camera frame did not match the prepared buffer"
	ReasonRotationStopped   = "rotation never started"
	ReasonPersistenceFailed = "write of results failed"
	ReasonNoFrames          = "no frames were collected"
)

// Status is the published snapshot of the running session. Readers only ever
// see this copy, never the session internals or the frame buffer.
type Status struct {
	SessionID       string    `json:"session_id"`
	Sample          string    `json:"sample"`
	State           State     `json:"state"`
	FramesCollected int       `json:"frames_collected"`
	FrameCapacity   int       `json:"frame_capacity"`
	LastAngle       float64   `json:"last_angle"`
	StartedAt       time.Time `json:"started_at"`
}

// Result is the immutable outcome of a finished session.
type Result struct {
	SessionID       string
	Sample          string
	State           State
	ExperimentDir   string
	FramesCollected int

	StartAngle       float64
	EndAngle         float64
	RotationRange    float64
	OscillationAngle float64
	RotationSpeed    float64

	Exposure     time.Duration
	TimePerFrame time.Duration
	TotalTime    time.Duration
	StartedAt    time.Time
	FinishedAt   time.Time

	// AbortReason and Err are set only for aborted sessions. Warning carries
	// a non-fatal persistence or indexing failure on a completed session.
	AbortReason string
	Err         error
	Warning     string
}
