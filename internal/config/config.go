package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	ExperimentDir string `toml:"experiment_dir"`
	LogDir        string `toml:"log_dir"`
	SocketPath    string `toml:"socket_path"`
}

// Logging contains log output configuration.
type Logging struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Instrument identifies the hardware the daemon controls.
type Instrument struct {
	Microscope          string  `toml:"microscope"`
	Camera              string  `toml:"camera"`
	RotationAxisRadians float64 `toml:"rotation_axis_radians"`
}

// Drivers contains the endpoints of the isolated driver processes.
type Drivers struct {
	MicroscopeAddr      string `toml:"microscope_addr"`
	CameraAddr          string `toml:"camera_addr"`
	SpeedControllerAddr string `toml:"speed_controller_addr"`
	CallTimeoutMillis   int    `toml:"call_timeout_millis"`
}

// Acquisition contains the defaults for a collection session. Every value can
// be overridden per session through the CLI.
type Acquisition struct {
	SampleName               string  `toml:"sample_name"`
	ExposureMillis           int     `toml:"exposure_millis"`
	FrameCapacity            int     `toml:"frame_capacity"`
	ActivationThresholdDeg   float64 `toml:"activation_threshold_degrees"`
	RotationPollMillis       int     `toml:"rotation_poll_millis"`
	AutoStop                 bool    `toml:"auto_stop"`
	AutoStopIntervalMillis   int     `toml:"auto_stop_interval_millis"`
	FrameTimeoutMillis       int     `toml:"frame_timeout_millis"`
	MaxBufferMegabytes       int     `toml:"max_buffer_megabytes"`
	WriteRotationSampleTrace bool    `toml:"write_rotation_sample_trace"`
}

// Indexing configures the optional forwarding of completed experiments to a
// remote indexing service.
type Indexing struct {
	Enabled       bool   `toml:"enabled"`
	Addr          string `toml:"addr"`
	TimeoutMillis int    `toml:"timeout_millis"`
}

// Config is the root configuration document.
type Config struct {
	Paths       Paths       `toml:"paths"`
	Logging     Logging     `toml:"logging"`
	Instrument  Instrument  `toml:"instrument"`
	Drivers     Drivers     `toml:"drivers"`
	Acquisition Acquisition `toml:"acquisition"`
	Indexing    Indexing    `toml:"indexing"`
}

// DefaultConfigPath returns the canonical config file location.
func DefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".config", "credaq", "config.toml"), nil
}

// Load reads the configuration from path, or from the default location when
// path is empty. A missing file yields the defaults. The returned bool
// reports whether a file was actually read.
func Load(path string) (*Config, string, bool, error) {
	resolved := strings.TrimSpace(path)
	if resolved == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			return nil, "", false, err
		}
		resolved = defaultPath
	} else {
		expanded, err := expandPath(resolved)
		if err != nil {
			return nil, "", false, err
		}
		resolved = expanded
	}

	cfg := Default()
	loaded := false

	data, err := os.ReadFile(resolved)
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return nil, resolved, false, fmt.Errorf("parse config %s: %w", resolved, err)
		}
		loaded = true
	case errors.Is(err, fs.ErrNotExist):
		// fall through with defaults
	default:
		return nil, resolved, false, fmt.Errorf("read config %s: %w", resolved, err)
	}

	if err := cfg.normalize(); err != nil {
		return nil, resolved, loaded, err
	}
	return &cfg, resolved, loaded, nil
}

// EnsureDirectories creates the directories the daemon writes to.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.ExperimentDir, c.Paths.LogDir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

// WriteSample writes the embedded sample configuration to path.
func WriteSample(path string) error {
	expanded, err := expandPath(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(expanded), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if _, err := os.Stat(expanded); err == nil {
		return fmt.Errorf("config file already exists at %s", expanded)
	}
	return os.WriteFile(expanded, []byte(sampleConfig), 0o644)
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", nil
	}
	if trimmed == "~" || strings.HasPrefix(trimmed, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if trimmed == "~" {
			return home, nil
		}
		return filepath.Join(home, trimmed[2:]), nil
	}
	return filepath.Clean(trimmed), nil
}
