// Package indexing notifies an external indexing service about completed
// datasets.
//
// Delivery is best effort: one connection per dispatch, one message, no
// retry. The acquisition outcome never depends on it, the coordinator only
// logs a failed handoff.
package indexing

import (
	"fmt"
	"time"

	"credaq/internal/remote"
)

// CmdIndexDataset is the command carried by a dispatch message.
const CmdIndexDataset = "index_dataset"

// Job describes one completed dataset handed to the indexing service.
type Job struct {
	Path                    string  `json:"path"`
	RotationRangeDegrees    float64 `json:"rotationRangeDegrees"`
	FrameCount              int     `json:"frameCount"`
	OscillationAngleDegrees float64 `json:"oscillationAngleDegrees"`
}

// Dispatcher sends Jobs to a fixed endpoint.
type Dispatcher struct {
	addr    string
	timeout time.Duration
}

// NewDispatcher returns a dispatcher for addr. An empty addr disables
// dispatch; Dispatch becomes a no-op.
func NewDispatcher(addr string, timeout time.Duration) *Dispatcher {
	return &Dispatcher{addr: addr, timeout: timeout}
}

// Enabled reports whether an endpoint is configured.
func (d *Dispatcher) Enabled() bool { return d.addr != "" }

// Dispatch delivers one job. Each call opens its own connection so a dead
// indexing service never poisons later sessions.
func (d *Dispatcher) Dispatch(job Job) error {
	if !d.Enabled() {
		return nil
	}
	session, err := remote.Dial(d.addr, d.timeout)
	if err != nil {
		return fmt.Errorf("indexing dispatch: %w", err)
	}
	defer session.Close()

	env := remote.Envelope{
		Name: CmdIndexDataset,
		Kwargs: map[string]any{
			"path":                    job.Path,
			"rotationRangeDegrees":    job.RotationRangeDegrees,
			"frameCount":              job.FrameCount,
			"oscillationAngleDegrees": job.OscillationAngleDegrees,
		},
	}
	if _, err := session.Call(env, d.timeout); err != nil {
		return fmt.Errorf("indexing dispatch: %w", err)
	}
	return nil
}
