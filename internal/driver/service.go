package driver

import (
	"fmt"
	"time"

	"credaq/internal/remote"
)

// Microscope is the hardware contract a microscope driver service wraps.
type Microscope interface {
	Identity() string
	StageAngle() (float64, error)
	StagePosition() (StagePosition, error)
	SetStageAngle(target float64, wait bool) error
	StopStage() error
	Magnification() (float64, error)
	SpotSize() (int, error)
}

// Camera is the hardware contract a camera driver service wraps.
type Camera interface {
	Identity() string
	Dimensions() (width, height int)
	AcquireFrame(exposure time.Duration) (Frame, error)
}

// SpeedController is the hardware contract a goniometer speed controller
// driver service wraps.
type SpeedController interface {
	RotationSpeed() (int, error)
	SetRotationSpeed(speed int) error
}

// MicroscopeHandlers builds the dispatch table for a microscope backend.
func MicroscopeHandlers(m Microscope) map[string]remote.Handler {
	return map[string]remote.Handler{
		string(CmdIdentity): func(args []any, kwargs map[string]any) (any, error) {
			return m.Identity(), nil
		},
		string(CmdStageAngle): func(args []any, kwargs map[string]any) (any, error) {
			return m.StageAngle()
		},
		string(CmdStagePosition): func(args []any, kwargs map[string]any) (any, error) {
			return m.StagePosition()
		},
		string(CmdSetStageAngle): func(args []any, kwargs map[string]any) (any, error) {
			target, err := floatArg(args, 0, "target angle")
			if err != nil {
				return nil, err
			}
			wait, _ := kwargs["wait"].(bool)
			return nil, m.SetStageAngle(target, wait)
		},
		string(CmdStopStage): func(args []any, kwargs map[string]any) (any, error) {
			return nil, m.StopStage()
		},
		string(CmdMagnification): func(args []any, kwargs map[string]any) (any, error) {
			return m.Magnification()
		},
		string(CmdSpotSize): func(args []any, kwargs map[string]any) (any, error) {
			return m.SpotSize()
		},
	}
}

// CameraHandlers builds the dispatch table for a camera backend.
func CameraHandlers(c Camera) map[string]remote.Handler {
	return map[string]remote.Handler{
		string(CmdIdentity): func(args []any, kwargs map[string]any) (any, error) {
			return c.Identity(), nil
		},
		string(CmdCameraDimensions): func(args []any, kwargs map[string]any) (any, error) {
			width, height := c.Dimensions()
			return map[string]int{"width": width, "height": height}, nil
		},
		string(CmdAcquireFrame): func(args []any, kwargs map[string]any) (any, error) {
			exposure, err := intKwarg(kwargs, "exposure_millis")
			if err != nil {
				return nil, err
			}
			frame, err := c.AcquireFrame(time.Duration(exposure) * time.Millisecond)
			if err != nil {
				return nil, err
			}
			return frame.payload(), nil
		},
	}
}

// SpeedControllerHandlers builds the dispatch table for a speed controller
// backend.
func SpeedControllerHandlers(s SpeedController) map[string]remote.Handler {
	return map[string]remote.Handler{
		string(CmdRotationSpeed): func(args []any, kwargs map[string]any) (any, error) {
			return s.RotationSpeed()
		},
		string(CmdSetRotationSpeed): func(args []any, kwargs map[string]any) (any, error) {
			speed, err := floatArg(args, 0, "speed")
			if err != nil {
				return nil, err
			}
			return nil, s.SetRotationSpeed(int(speed))
		},
	}
}

func floatArg(args []any, index int, label string) (float64, error) {
	if index >= len(args) {
		return 0, &remote.KindError{Kind: "protocol", Message: fmt.Sprintf("missing %s argument", label)}
	}
	value, ok := args[index].(float64)
	if !ok {
		return 0, &remote.KindError{Kind: "protocol", Message: fmt.Sprintf("%s must be numeric, got %T", label, args[index])}
	}
	return value, nil
}

func intKwarg(kwargs map[string]any, key string) (int64, error) {
	raw, ok := kwargs[key]
	if !ok {
		return 0, &remote.KindError{Kind: "protocol", Message: fmt.Sprintf("missing %s keyword", key)}
	}
	value, ok := raw.(float64)
	if !ok {
		return 0, &remote.KindError{Kind: "protocol", Message: fmt.Sprintf("%s must be numeric, got %T", key, raw)}
	}
	return int64(value), nil
}
