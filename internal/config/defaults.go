package config

const (
	defaultExperimentDir          = "~/.local/share/credaq/experiments"
	defaultLogDir                 = "~/.local/share/credaq/logs"
	defaultSocketPath             = "~/.local/share/credaq/credaqd.sock"
	defaultLogLevel               = "info"
	defaultLogFormat              = "console"
	defaultMicroscope             = "simulate"
	defaultCamera                 = "simulate"
	defaultRotationAxisRadians    = -2.24
	defaultMicroscopeAddr         = "127.0.0.1:8088"
	defaultCameraAddr             = "127.0.0.1:8087"
	defaultCallTimeoutMillis      = 3000
	defaultSampleName             = "experiment"
	defaultExposureMillis         = 500
	defaultFrameCapacity          = 1000
	defaultActivationThresholdDeg = 0.2
	defaultRotationPollMillis     = 10
	defaultAutoStopIntervalMillis = 1000
	defaultFrameTimeoutMillis     = 5000
	defaultMaxBufferMegabytes     = 4096
	defaultIndexingTimeoutMillis  = 2000
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			ExperimentDir: defaultExperimentDir,
			LogDir:        defaultLogDir,
			SocketPath:    defaultSocketPath,
		},
		Logging: Logging{
			Level:  defaultLogLevel,
			Format: defaultLogFormat,
		},
		Instrument: Instrument{
			Microscope:          defaultMicroscope,
			Camera:              defaultCamera,
			RotationAxisRadians: defaultRotationAxisRadians,
		},
		Drivers: Drivers{
			MicroscopeAddr:    defaultMicroscopeAddr,
			CameraAddr:        defaultCameraAddr,
			CallTimeoutMillis: defaultCallTimeoutMillis,
		},
		Acquisition: Acquisition{
			SampleName:             defaultSampleName,
			ExposureMillis:         defaultExposureMillis,
			FrameCapacity:          defaultFrameCapacity,
			ActivationThresholdDeg: defaultActivationThresholdDeg,
			RotationPollMillis:     defaultRotationPollMillis,
			AutoStop:               true,
			AutoStopIntervalMillis: defaultAutoStopIntervalMillis,
			FrameTimeoutMillis:     defaultFrameTimeoutMillis,
			MaxBufferMegabytes:     defaultMaxBufferMegabytes,
		},
		Indexing: Indexing{
			TimeoutMillis: defaultIndexingTimeoutMillis,
		},
	}
}
