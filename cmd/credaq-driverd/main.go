// Command credaq-driverd hosts one isolated driver service so a flaky
// vendor driver can crash without taking the control daemon down. Each
// instance wraps a single backend and serves the driver command set on a
// TCP listener.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"credaq/internal/driver"
	"credaq/internal/logging"
	"credaq/internal/remote"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var (
		driverName string
		listenAddr string
		simulate   bool
		rate       float64
		width      int
		height     int
		logLevel   string
	)

	cmd := &cobra.Command{
		Use:           "credaq-driverd",
		Short:         "Isolated instrument driver service",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := logging.New(logging.Options{Level: logLevel, Format: "console"})
			if err != nil {
				return err
			}

			handlers, err := buildHandlers(driverName, simulate, rate, width, height)
			if err != nil {
				return err
			}

			server, err := remote.Listen(listenAddr, handlers, logger)
			if err != nil {
				return err
			}
			logger.Info("driver service listening",
				logging.String(logging.FieldDriver, driverName),
				logging.String(logging.FieldEndpoint, server.Addr().String()))

			ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()
			go func() {
				<-ctx.Done()
				server.Close()
			}()
			server.Serve()
			return nil
		},
	}

	cmd.Flags().StringVar(&driverName, "driver", "", "Driver to host: microscope, camera, or speed")
	cmd.Flags().StringVar(&listenAddr, "listen", "127.0.0.1:0", "Listen address")
	cmd.Flags().BoolVar(&simulate, "sim", false, "Serve a simulated backend")
	cmd.Flags().Float64Var(&rate, "rate", 1.0, "Simulated stage rotation rate in degrees per second")
	cmd.Flags().IntVar(&width, "width", 512, "Simulated sensor width in pixels")
	cmd.Flags().IntVar(&height, "height", 512, "Simulated sensor height in pixels")
	cmd.Flags().StringVar(&logLevel, "log-level", "info", "Log level")
	if err := cmd.MarkFlagRequired("driver"); err != nil {
		log.Fatal(err)
	}
	return cmd
}

func buildHandlers(driverName string, simulate bool, rate float64, width, height int) (map[string]remote.Handler, error) {
	if !simulate {
		// Vendor backends are site-specific builds; this tree ships only the
		// simulated ones.
		return nil, errors.New("no vendor backend compiled in; run with --sim")
	}
	switch driverName {
	case "microscope":
		return driver.MicroscopeHandlers(driver.NewSimMicroscope(rate)), nil
	case "camera":
		return driver.CameraHandlers(driver.NewSimCamera(width, height)), nil
	case "speed":
		return driver.SpeedControllerHandlers(driver.NewSimSpeedController()), nil
	default:
		return nil, fmt.Errorf("unknown driver %q (want microscope, camera, or speed)", driverName)
	}
}
