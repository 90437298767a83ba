// Package testsupport provides shared fixtures for package tests.
package testsupport

import (
	"path/filepath"
	"testing"

	"credaq/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.ExperimentDir = filepath.Join(base, "experiments")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.SocketPath = filepath.Join(base, "credaqd.sock")
	cfg.Acquisition.SampleName = "test-sample"
	cfg.Acquisition.ExposureMillis = 1
	cfg.Acquisition.FrameCapacity = 4
	cfg.Acquisition.RotationPollMillis = 1
	cfg.Acquisition.FrameTimeoutMillis = 2000

	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithDriverAddrs points the config at running driver services.
func WithDriverAddrs(microscope, camera, speed string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Drivers.MicroscopeAddr = microscope
		cfg.Drivers.CameraAddr = camera
		cfg.Drivers.SpeedControllerAddr = speed
	}
}

// WithFrameCapacity overrides the default frame capacity.
func WithFrameCapacity(capacity int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Acquisition.FrameCapacity = capacity
	}
}

// WithAutoStop enables stagnation-based auto stop with the given interval.
func WithAutoStop(intervalMillis int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Acquisition.AutoStop = true
		cfg.Acquisition.AutoStopIntervalMillis = intervalMillis
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.LogDir)
}
