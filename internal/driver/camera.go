package driver

import (
	"log/slog"
	"time"
)

// CameraProxy exposes the camera driver service as typed calls.
type CameraProxy struct {
	*Proxy
}

// NewCameraProxy builds a camera proxy for addr.
func NewCameraProxy(addr string, timeout time.Duration, logger *slog.Logger) *CameraProxy {
	return &CameraProxy{Proxy: NewProxy("camera", addr, timeout, logger)}
}

// Identity returns the camera identity string.
func (c *CameraProxy) Identity() (string, error) {
	var identity string
	err := c.Call(CmdIdentity, nil, nil, &identity)
	return identity, err
}

// Dimensions returns the sensor width and height in pixels.
func (c *CameraProxy) Dimensions() (width, height int, err error) {
	var dims struct {
		Width  int `json:"width"`
		Height int `json:"height"`
	}
	if err := c.Call(CmdCameraDimensions, nil, nil, &dims); err != nil {
		return 0, 0, err
	}
	return dims.Width, dims.Height, nil
}

// AcquireFrame blocks until the camera delivers the next frame exposed for
// the given time, bounded by timeout. A timeout is a stall signal, not a
// normal result.
func (c *CameraProxy) AcquireFrame(exposure, timeout time.Duration) (Frame, error) {
	var payload framePayload
	kwargs := map[string]any{"exposure_millis": exposure.Milliseconds()}
	if err := c.CallTimeout(CmdAcquireFrame, nil, kwargs, &payload, timeout); err != nil {
		return Frame{}, err
	}
	frame, err := payload.frame()
	if err != nil {
		return Frame{}, NewError(KindProtocol, string(CmdAcquireFrame), "malformed frame payload", err)
	}
	return frame, nil
}
