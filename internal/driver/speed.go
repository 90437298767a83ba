package driver

import (
	"log/slog"
	"time"
)

// SpeedControllerProxy exposes the goniometer speed controller driver
// service as typed calls.
type SpeedControllerProxy struct {
	*Proxy
}

// NewSpeedControllerProxy builds a speed controller proxy for addr.
func NewSpeedControllerProxy(addr string, timeout time.Duration, logger *slog.Logger) *SpeedControllerProxy {
	return &SpeedControllerProxy{Proxy: NewProxy("speed_controller", addr, timeout, logger)}
}

// RotationSpeed returns the current speed setting (instrument units).
func (s *SpeedControllerProxy) RotationSpeed() (int, error) {
	var speed int
	err := s.Call(CmdRotationSpeed, nil, nil, &speed)
	return speed, err
}

// SetRotationSpeed changes the speed setting.
func (s *SpeedControllerProxy) SetRotationSpeed(speed int) error {
	return s.Call(CmdSetRotationSpeed, []any{speed}, nil, nil)
}
