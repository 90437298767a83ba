package rotation

import (
	"context"
	"log/slog"
	"math"
	"time"

	"credaq/internal/logging"
)

// AngleReader reads the current stage tilt in degrees. It is satisfied by
// the microscope driver proxy.
type AngleReader interface {
	StageAngle() (float64, error)
}

// Sample is one angle reading with the instant it was taken.
type Sample struct {
	Angle float64
	At    time.Time
}

// Monitor polls stage angles through an AngleReader on a fixed interval.
type Monitor struct {
	reader       AngleReader
	pollInterval time.Duration
	logger       *slog.Logger
}

// NewMonitor builds a monitor polling through reader every pollInterval.
// The interval is a tuning knob: too short overloads the driver process,
// too long adds detection latency.
func NewMonitor(reader AngleReader, pollInterval time.Duration, logger *slog.Logger) *Monitor {
	if pollInterval <= 0 {
		pollInterval = 10 * time.Millisecond
	}
	return &Monitor{
		reader:       reader,
		pollInterval: pollInterval,
		logger:       logging.NewComponentLogger(logger, "rotation"),
	}
}

// WaitForStart blocks until the stage has rotated at least thresholdDegrees
// away from referenceAngle, then returns the angle that crossed the
// threshold. A read failure or context cancellation aborts the wait; the
// monitor never retries a failed poll itself.
func (m *Monitor) WaitForStart(ctx context.Context, referenceAngle, thresholdDegrees float64) (float64, error) {
	ticker := time.NewTicker(m.pollInterval)
	defer ticker.Stop()

	for {
		angle, err := m.reader.StageAngle()
		if err != nil {
			return 0, err
		}
		if math.Abs(angle-referenceAngle) >= thresholdDegrees {
			m.logger.Debug("rotation start detected",
				logging.Float64("reference_angle", referenceAngle),
				logging.Float64("angle", angle))
			return angle, nil
		}
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-ticker.C:
		}
	}
}

// StagnationCheck detects the end of rotation: two angle readings spaced at
// least one check interval apart that are numerically equal. It is not a
// velocity estimator; motion slower than the angular resolution of the
// readout is invisible to it.
//
// The comparison is deliberately exact, matching quantized stage encoders.
type StagnationCheck struct {
	interval time.Duration

	elapsed   time.Duration
	lastAngle float64
	primed    bool
}

// NewStagnationCheck builds a check that compares samples spaced at least
// interval apart.
func NewStagnationCheck(interval time.Duration) *StagnationCheck {
	return &StagnationCheck{interval: interval}
}

// Feed accumulates sinceLastFeed and, once a full interval has elapsed,
// compares angle against the reading recorded at the previous comparison.
// It returns true when the two are equal, signalling that rotation ended.
func (c *StagnationCheck) Feed(angle float64, sinceLastFeed time.Duration) bool {
	c.elapsed += sinceLastFeed
	if c.elapsed < c.interval {
		return false
	}
	c.elapsed = 0
	if c.primed && angle == c.lastAngle {
		return true
	}
	c.lastAngle = angle
	c.primed = true
	return false
}
