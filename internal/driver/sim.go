package driver

import (
	"sync"
	"time"
)

// SimMicroscope is an in-process stand-in for a microscope driver. The alpha
// tilt moves linearly at a fixed rate toward the last commanded target, so
// rotation start and stop behave like the real stage seen through polling.
type SimMicroscope struct {
	mu         sync.Mutex
	angle      float64
	target     float64
	degPerSec  float64
	moving     bool
	lastUpdate time.Time
}

// NewSimMicroscope builds a simulated microscope rotating at degPerSec.
func NewSimMicroscope(degPerSec float64) *SimMicroscope {
	if degPerSec <= 0 {
		degPerSec = 1.0
	}
	return &SimMicroscope{degPerSec: degPerSec, lastUpdate: time.Now()}
}

func (m *SimMicroscope) Identity() string { return "simulated microscope" }

func (m *SimMicroscope) StageAngle() (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.advance(time.Now())
	return m.angle, nil
}

func (m *SimMicroscope) StagePosition() (StagePosition, error) {
	angle, _ := m.StageAngle()
	return StagePosition{A: angle}, nil
}

func (m *SimMicroscope) SetStageAngle(target float64, wait bool) error {
	m.mu.Lock()
	m.advance(time.Now())
	m.target = target
	m.moving = m.angle != target
	remaining := m.target - m.angle
	m.mu.Unlock()

	if wait && remaining != 0 {
		seconds := remaining / m.degPerSec
		if seconds < 0 {
			seconds = -seconds
		}
		time.Sleep(time.Duration(seconds * float64(time.Second)))
	}
	return nil
}

func (m *SimMicroscope) StopStage() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.advance(time.Now())
	m.moving = false
	return nil
}

func (m *SimMicroscope) Magnification() (float64, error) { return 300, nil }

func (m *SimMicroscope) SpotSize() (int, error) { return 4, nil }

// advance moves the simulated stage up to now. Callers hold m.mu.
func (m *SimMicroscope) advance(now time.Time) {
	elapsed := now.Sub(m.lastUpdate).Seconds()
	m.lastUpdate = now
	if !m.moving || elapsed <= 0 {
		return
	}
	step := m.degPerSec * elapsed
	if m.angle < m.target {
		m.angle += step
		if m.angle >= m.target {
			m.angle = m.target
			m.moving = false
		}
	} else {
		m.angle -= step
		if m.angle <= m.target {
			m.angle = m.target
			m.moving = false
		}
	}
}

// SimCamera produces synthetic frames at the requested exposure pace.
type SimCamera struct {
	width  int
	height int

	mu      sync.Mutex
	counter uint16
}

// NewSimCamera builds a simulated camera with the given sensor size.
func NewSimCamera(width, height int) *SimCamera {
	if width <= 0 {
		width = 512
	}
	if height <= 0 {
		height = 512
	}
	return &SimCamera{width: width, height: height}
}

func (c *SimCamera) Identity() string { return "simulated camera" }

func (c *SimCamera) Dimensions() (int, int) { return c.width, c.height }

func (c *SimCamera) AcquireFrame(exposure time.Duration) (Frame, error) {
	if exposure > 0 {
		time.Sleep(exposure)
	}
	c.mu.Lock()
	c.counter++
	seed := c.counter
	c.mu.Unlock()

	pixels := make([]uint16, c.width*c.height)
	for i := range pixels {
		pixels[i] = seed + uint16(i%251)
	}
	return Frame{Width: c.width, Height: c.height, Pixels: pixels, CapturedAt: time.Now()}, nil
}

// SimSpeedController mimics the goniometer speed controller front panel.
type SimSpeedController struct {
	mu    sync.Mutex
	speed int
}

// NewSimSpeedController builds a simulated controller at the instrument's
// default speed setting.
func NewSimSpeedController() *SimSpeedController {
	return &SimSpeedController{speed: 12}
}

func (s *SimSpeedController) RotationSpeed() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.speed, nil
}

func (s *SimSpeedController) SetRotationSpeed(speed int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.speed = speed
	return nil
}
