package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeLogging()
	c.normalizeDrivers()
	c.normalizeAcquisition()
	c.normalizeIndexing()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.ExperimentDir) == "" {
		c.Paths.ExperimentDir = defaultExperimentDir
	}
	if c.Paths.ExperimentDir, err = expandPath(c.Paths.ExperimentDir); err != nil {
		return fmt.Errorf("paths.experiment_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.SocketPath) == "" {
		c.Paths.SocketPath = defaultSocketPath
	}
	if c.Paths.SocketPath, err = expandPath(c.Paths.SocketPath); err != nil {
		return fmt.Errorf("paths.socket_path: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
}

func (c *Config) normalizeDrivers() {
	c.Drivers.MicroscopeAddr = strings.TrimSpace(c.Drivers.MicroscopeAddr)
	if c.Drivers.MicroscopeAddr == "" {
		c.Drivers.MicroscopeAddr = defaultMicroscopeAddr
	}
	c.Drivers.CameraAddr = strings.TrimSpace(c.Drivers.CameraAddr)
	if c.Drivers.CameraAddr == "" {
		c.Drivers.CameraAddr = defaultCameraAddr
	}
	c.Drivers.SpeedControllerAddr = strings.TrimSpace(c.Drivers.SpeedControllerAddr)
	if c.Drivers.CallTimeoutMillis <= 0 {
		c.Drivers.CallTimeoutMillis = defaultCallTimeoutMillis
	}
}

func (c *Config) normalizeAcquisition() {
	if strings.TrimSpace(c.Acquisition.SampleName) == "" {
		c.Acquisition.SampleName = defaultSampleName
	}
	if c.Acquisition.ExposureMillis <= 0 {
		c.Acquisition.ExposureMillis = defaultExposureMillis
	}
	if c.Acquisition.FrameCapacity <= 0 {
		c.Acquisition.FrameCapacity = defaultFrameCapacity
	}
	if c.Acquisition.ActivationThresholdDeg <= 0 {
		c.Acquisition.ActivationThresholdDeg = defaultActivationThresholdDeg
	}
	if c.Acquisition.RotationPollMillis <= 0 {
		c.Acquisition.RotationPollMillis = defaultRotationPollMillis
	}
	if c.Acquisition.AutoStopIntervalMillis <= 0 {
		c.Acquisition.AutoStopIntervalMillis = defaultAutoStopIntervalMillis
	}
	if c.Acquisition.FrameTimeoutMillis <= 0 {
		c.Acquisition.FrameTimeoutMillis = defaultFrameTimeoutMillis
	}
	if c.Acquisition.MaxBufferMegabytes <= 0 {
		c.Acquisition.MaxBufferMegabytes = defaultMaxBufferMegabytes
	}
}

func (c *Config) normalizeIndexing() {
	c.Indexing.Addr = strings.TrimSpace(c.Indexing.Addr)
	if c.Indexing.TimeoutMillis <= 0 {
		c.Indexing.TimeoutMillis = defaultIndexingTimeoutMillis
	}
}
