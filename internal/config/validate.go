package config

import (
	"errors"
	"fmt"
	"net"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateDrivers(); err != nil {
		return err
	}
	if err := c.validateAcquisition(); err != nil {
		return err
	}
	if err := c.validateIndexing(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if c.Paths.ExperimentDir == "" {
		return errors.New("paths.experiment_dir must be set")
	}
	if c.Paths.SocketPath == "" {
		return errors.New("paths.socket_path must be set")
	}
	return nil
}

func (c *Config) validateDrivers() error {
	if err := validateAddr("drivers.microscope_addr", c.Drivers.MicroscopeAddr); err != nil {
		return err
	}
	if err := validateAddr("drivers.camera_addr", c.Drivers.CameraAddr); err != nil {
		return err
	}
	if c.Drivers.SpeedControllerAddr != "" {
		if err := validateAddr("drivers.speed_controller_addr", c.Drivers.SpeedControllerAddr); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) validateAcquisition() error {
	if c.Acquisition.FrameCapacity < 1 {
		return errors.New("acquisition.frame_capacity must be at least 1")
	}
	if c.Acquisition.ActivationThresholdDeg <= 0 {
		return errors.New("acquisition.activation_threshold_degrees must be positive")
	}
	return nil
}

func (c *Config) validateIndexing() error {
	if !c.Indexing.Enabled {
		return nil
	}
	if c.Indexing.Addr == "" {
		return errors.New("indexing.addr must be set when indexing.enabled is true")
	}
	return validateAddr("indexing.addr", c.Indexing.Addr)
}

func validateAddr(key, value string) error {
	if value == "" {
		return fmt.Errorf("%s must be set", key)
	}
	if _, _, err := net.SplitHostPort(value); err != nil {
		return fmt.Errorf("%s must be host:port: %w", key, err)
	}
	return nil
}
