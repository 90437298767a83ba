package testsupport

import (
	"testing"

	"credaq/internal/driver"
	"credaq/internal/logging"
	"credaq/internal/remote"
)

// SimDrivers holds the endpoints of in-process simulated driver services.
type SimDrivers struct {
	MicroscopeAddr string
	CameraAddr     string
	SpeedAddr      string

	Microscope *driver.SimMicroscope
	Camera     *driver.SimCamera
	Speed      *driver.SimSpeedController
}

// StartSimDrivers serves simulated microscope, camera, and speed controller
// backends on loopback ports and registers cleanup.
func StartSimDrivers(t testing.TB, degPerSec float64, width, height int) *SimDrivers {
	t.Helper()

	microscope := driver.NewSimMicroscope(degPerSec)
	camera := driver.NewSimCamera(width, height)
	speed := driver.NewSimSpeedController()

	return &SimDrivers{
		MicroscopeAddr: serve(t, driver.MicroscopeHandlers(microscope)),
		CameraAddr:     serve(t, driver.CameraHandlers(camera)),
		SpeedAddr:      serve(t, driver.SpeedControllerHandlers(speed)),
		Microscope:     microscope,
		Camera:         camera,
		Speed:          speed,
	}
}

func serve(t testing.TB, handlers map[string]remote.Handler) string {
	t.Helper()

	server, err := remote.Listen("127.0.0.1:0", handlers, logging.NewNop())
	if err != nil {
		t.Fatalf("remote.Listen: %v", err)
	}
	go server.Serve()
	t.Cleanup(server.Close)
	return server.Addr().String()
}
