package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, _, loaded, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded {
		t.Fatal("expected loaded=false for missing file")
	}
	if cfg.Acquisition.FrameCapacity != defaultFrameCapacity {
		t.Errorf("frame_capacity = %d, want %d", cfg.Acquisition.FrameCapacity, defaultFrameCapacity)
	}
	if cfg.Drivers.MicroscopeAddr != defaultMicroscopeAddr {
		t.Errorf("microscope_addr = %q, want %q", cfg.Drivers.MicroscopeAddr, defaultMicroscopeAddr)
	}
	if !cfg.Acquisition.AutoStop {
		t.Error("auto_stop should default to true")
	}
}

func TestLoadOverridesAndNormalizes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	body := `
[paths]
experiment_dir = "` + dir + `/data"
log_dir = "` + dir + `/logs"
socket_path = "` + dir + `/credaqd.sock"

[acquisition]
frame_capacity = 25
exposure_millis = 0

[drivers]
microscope_addr = " 127.0.0.1:9001 "
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !loaded {
		t.Fatal("expected loaded=true")
	}
	if resolved != path {
		t.Errorf("resolved path = %q, want %q", resolved, path)
	}
	if cfg.Acquisition.FrameCapacity != 25 {
		t.Errorf("frame_capacity = %d, want 25", cfg.Acquisition.FrameCapacity)
	}
	if cfg.Acquisition.ExposureMillis != defaultExposureMillis {
		t.Errorf("exposure_millis = %d, want default %d", cfg.Acquisition.ExposureMillis, defaultExposureMillis)
	}
	if cfg.Drivers.MicroscopeAddr != "127.0.0.1:9001" {
		t.Errorf("microscope_addr = %q, want trimmed", cfg.Drivers.MicroscopeAddr)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero capacity", func(c *Config) { c.Acquisition.FrameCapacity = 0 }},
		{"negative threshold", func(c *Config) { c.Acquisition.ActivationThresholdDeg = -1 }},
		{"bad microscope addr", func(c *Config) { c.Drivers.MicroscopeAddr = "nonsense" }},
		{"indexing enabled without addr", func(c *Config) { c.Indexing.Enabled = true; c.Indexing.Addr = "" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			if err := cfg.normalize(); err != nil {
				t.Fatalf("normalize: %v", err)
			}
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestValidateAcceptsDefaults(t *testing.T) {
	cfg := Default()
	if err := cfg.normalize(); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestWriteSampleRefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := WriteSample(path); err != nil {
		t.Fatalf("WriteSample: %v", err)
	}
	if err := WriteSample(path); err == nil {
		t.Fatal("expected error writing over existing config")
	}
	cfg, _, loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load sample: %v", err)
	}
	if !loaded {
		t.Fatal("sample config should load")
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("sample config should validate: %v", err)
	}
}
