package ipc

import "time"

// StartRequest launches a collection session. Zero-valued fields fall back
// to the daemon's configured defaults.
type StartRequest struct {
	Sample         string `json:"sample"`
	ExposureMillis int    `json:"exposure_millis"`
	FrameCapacity  int    `json:"frame_capacity"`
	AutoStop       *bool  `json:"auto_stop"`
}

// StartResponse reports the launched session.
type StartResponse struct {
	Started   bool   `json:"started"`
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

// StopRequest requests a cooperative stop of the live session.
type StopRequest struct{}

// StopResponse indicates stop result.
type StopResponse struct {
	Stopped bool   `json:"stopped"`
	Message string `json:"message"`
}

// StatusRequest fetches daemon status.
type StatusRequest struct{}

// StatusResponse represents combined daemon/session status information.
type StatusResponse struct {
	Running         bool    `json:"running"`
	PID             int     `json:"pid"`
	LockPath        string  `json:"lock_path"`
	SessionsPath    string  `json:"sessions_path"`
	SessionID       string  `json:"session_id"`
	Sample          string  `json:"sample"`
	State           string  `json:"state"`
	FramesCollected int     `json:"frames_collected"`
	FrameCapacity   int     `json:"frame_capacity"`
	LastAngle       float64 `json:"last_angle"`
}

// SessionRecord mirrors the archived session row for IPC callers.
type SessionRecord struct {
	ID               string    `json:"id"`
	Sample           string    `json:"sample"`
	State            string    `json:"state"`
	ExperimentDir    string    `json:"experiment_dir"`
	FramesCollected  int       `json:"frames_collected"`
	StartAngle       float64   `json:"start_angle"`
	EndAngle         float64   `json:"end_angle"`
	RotationRange    float64   `json:"rotation_range"`
	OscillationAngle float64   `json:"oscillation_angle"`
	RotationSpeed    float64   `json:"rotation_speed"`
	ExposureMillis   int64     `json:"exposure_millis"`
	TotalMillis      int64     `json:"total_millis"`
	AbortReason      string    `json:"abort_reason"`
	StartedAt        time.Time `json:"started_at"`
	FinishedAt       time.Time `json:"finished_at"`
}

// SessionListRequest lists archived sessions, newest first.
type SessionListRequest struct {
	Limit int `json:"limit"`
}

// SessionListResponse contains archived sessions.
type SessionListResponse struct {
	Sessions []SessionRecord `json:"sessions"`
}

// SessionDescribeRequest fetches a single archived session by id.
type SessionDescribeRequest struct {
	ID string `json:"id"`
}

// SessionDescribeResponse contains a single archived session.
type SessionDescribeResponse struct {
	Session SessionRecord `json:"session"`
}

// SpeedGetRequest reads the goniometer speed setting.
type SpeedGetRequest struct{}

// SpeedGetResponse carries the current speed setting.
type SpeedGetResponse struct {
	Speed int `json:"speed"`
}

// SpeedSetRequest changes the goniometer speed setting.
type SpeedSetRequest struct {
	Speed int `json:"speed"`
}

// SpeedSetResponse confirms the change.
type SpeedSetResponse struct {
	Speed int `json:"speed"`
}
