package driver

import (
	"log/slog"
	"time"
)

// StagePosition is the full goniometer readout.
type StagePosition struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
	A float64 `json:"a"`
	B float64 `json:"b"`
}

// MicroscopeProxy exposes the microscope driver service as typed calls.
type MicroscopeProxy struct {
	*Proxy
}

// NewMicroscopeProxy builds a microscope proxy for addr.
func NewMicroscopeProxy(addr string, timeout time.Duration, logger *slog.Logger) *MicroscopeProxy {
	return &MicroscopeProxy{Proxy: NewProxy("microscope", addr, timeout, logger)}
}

// Identity returns the instrument identity string.
func (m *MicroscopeProxy) Identity() (string, error) {
	var identity string
	err := m.Call(CmdIdentity, nil, nil, &identity)
	return identity, err
}

// StageAngle returns the current alpha tilt in degrees.
func (m *MicroscopeProxy) StageAngle() (float64, error) {
	var angle float64
	err := m.Call(CmdStageAngle, nil, nil, &angle)
	return angle, err
}

// StagePosition returns the full stage readout.
func (m *MicroscopeProxy) StagePosition() (StagePosition, error) {
	var pos StagePosition
	err := m.Call(CmdStagePosition, nil, nil, &pos)
	return pos, err
}

// SetStageAngle starts moving the alpha tilt toward target degrees. With
// wait false the call returns as soon as the motion is commanded.
func (m *MicroscopeProxy) SetStageAngle(target float64, wait bool) error {
	return m.Call(CmdSetStageAngle, []any{target}, map[string]any{"wait": wait}, nil)
}

// StopStage halts any stage motion.
func (m *MicroscopeProxy) StopStage() error {
	return m.Call(CmdStopStage, nil, nil, nil)
}

// Magnification returns the camera length / magnification readout.
func (m *MicroscopeProxy) Magnification() (float64, error) {
	var mag float64
	err := m.Call(CmdMagnification, nil, nil, &mag)
	return mag, err
}

// SpotSize returns the current spot size setting.
func (m *MicroscopeProxy) SpotSize() (int, error) {
	var spot int
	err := m.Call(CmdSpotSize, nil, nil, &spot)
	return spot, err
}
