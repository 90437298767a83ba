package acquisition

import (
	"fmt"
	"time"

	"credaq/internal/config"
)

// Params are the resolved settings for one collection session. They come
// from the configuration defaults, optionally overridden per session by the
// operator.
type Params struct {
	Sample              string
	Exposure            time.Duration
	FrameCapacity       int
	ActivationThreshold float64 // degrees
	RotationPoll        time.Duration
	AutoStop            bool
	AutoStopInterval    time.Duration
	FrameTimeout        time.Duration
	MaxBufferBytes      int64
	RotationAxisRadians float64
	CollectTrace        bool
}

// ParamsFromConfig resolves session parameters from the configuration.
func ParamsFromConfig(cfg *config.Config) Params {
	acq := cfg.Acquisition
	return Params{
		Sample:              acq.SampleName,
		Exposure:            time.Duration(acq.ExposureMillis) * time.Millisecond,
		FrameCapacity:       acq.FrameCapacity,
		ActivationThreshold: acq.ActivationThresholdDeg,
		RotationPoll:        time.Duration(acq.RotationPollMillis) * time.Millisecond,
		AutoStop:            acq.AutoStop,
		AutoStopInterval:    time.Duration(acq.AutoStopIntervalMillis) * time.Millisecond,
		FrameTimeout:        time.Duration(acq.FrameTimeoutMillis) * time.Millisecond,
		MaxBufferBytes:      int64(acq.MaxBufferMegabytes) << 20,
		RotationAxisRadians: cfg.Instrument.RotationAxisRadians,
		CollectTrace:        acq.WriteRotationSampleTrace,
	}
}

func (p Params) validate() error {
	if p.Sample == "" {
		return fmt.Errorf("sample name is required")
	}
	if p.FrameCapacity <= 0 {
		return fmt.Errorf("frame capacity must be positive, got %d", p.FrameCapacity)
	}
	if p.Exposure <= 0 {
		return fmt.Errorf("exposure must be positive, got %v", p.Exposure)
	}
	if p.ActivationThreshold <= 0 {
		return fmt.Errorf("activation threshold must be positive, got %v", p.ActivationThreshold)
	}
	if p.FrameTimeout <= 0 {
		return fmt.Errorf("frame timeout must be positive, got %v", p.FrameTimeout)
	}
	return nil
}
