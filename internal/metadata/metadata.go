// Package metadata defines the persisted experiment record and its
// flat-text log format.
//
// The log is one `Key: Value` pair per line so downstream processing
// pipelines can grep it without a parser. An Experiment is derived once
// when a session finalizes and never recomputed after being written.
package metadata

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
)

// LogFileName is the experiment log file written into each experiment
// directory.
const LogFileName = "cred_log.txt"

const collectionTimeLayout = "2006-01-02 15:04:05"

// Experiment is the read-only record of a completed acquisition session.
type Experiment struct {
	Program        string
	CollectionTime time.Time
	Microscope     string
	Camera         string
	Sample         string

	StartAngle    float64 // degrees
	EndAngle      float64 // degrees
	RotationRange float64 // degrees, |end - start|

	Exposure         time.Duration
	TimePerFrame     time.Duration
	TotalTime        time.Duration
	RotationAxis     float64 // radians
	OscillationAngle float64 // degrees per frame
	RotationSpeed    float64 // degrees per second
	FrameCount       int
}

// Write emits the log in its canonical key order.
func (e Experiment) Write(w io.Writer) error {
	lines := []struct {
		key   string
		value string
	}{
		{"Program", e.Program},
		{"Data Collection Time", e.CollectionTime.Format(collectionTimeLayout)},
		{"Microscope", e.Microscope},
		{"Camera", e.Camera},
		{"Sample", e.Sample},
		{"Starting angle", fmt.Sprintf("%.4f degrees", e.StartAngle)},
		{"Ending angle", fmt.Sprintf("%.4f degrees", e.EndAngle)},
		{"Rotation range", fmt.Sprintf("%.4f degrees", e.RotationRange)},
		{"Exposure Time", fmt.Sprintf("%.3f s", e.Exposure.Seconds())},
		{"Acquisition time", fmt.Sprintf("%.3f s", e.TimePerFrame.Seconds())},
		{"Total time", fmt.Sprintf("%.3f s", e.TotalTime.Seconds())},
		{"Rotation axis", fmt.Sprintf("%.4f radians", e.RotationAxis)},
		{"Oscillation angle", fmt.Sprintf("%.4f degrees", e.OscillationAngle)},
		{"Rotation speed", fmt.Sprintf("%.4f degrees/s", e.RotationSpeed)},
		{"Number of frames", strconv.Itoa(e.FrameCount)},
	}
	for _, line := range lines {
		if _, err := fmt.Fprintf(w, "%s: %s\n", line.key, line.value); err != nil {
			return err
		}
	}
	return nil
}

// WriteFile writes the log to path.
func (e Experiment) WriteFile(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := e.Write(file); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// Parse reads a log previously produced by Write. Unknown keys are ignored
// so the format can grow without breaking old readers.
func Parse(r io.Reader) (Experiment, error) {
	var exp Experiment
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		key, value, found := strings.Cut(line, ": ")
		if !found {
			continue
		}
		if err := exp.apply(key, value); err != nil {
			return Experiment{}, fmt.Errorf("parse %q: %w", line, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return Experiment{}, err
	}
	return exp, nil
}

// ParseFile reads the log at path.
func ParseFile(path string) (Experiment, error) {
	file, err := os.Open(path)
	if err != nil {
		return Experiment{}, err
	}
	defer file.Close()
	return Parse(file)
}

func (e *Experiment) apply(key, value string) error {
	var err error
	switch key {
	case "Program":
		e.Program = value
	case "Data Collection Time":
		e.CollectionTime, err = time.ParseInLocation(collectionTimeLayout, value, time.Local)
	case "Microscope":
		e.Microscope = value
	case "Camera":
		e.Camera = value
	case "Sample":
		e.Sample = value
	case "Starting angle":
		e.StartAngle, err = parseUnit(value, "degrees")
	case "Ending angle":
		e.EndAngle, err = parseUnit(value, "degrees")
	case "Rotation range":
		e.RotationRange, err = parseUnit(value, "degrees")
	case "Exposure Time":
		e.Exposure, err = parseSeconds(value)
	case "Acquisition time":
		e.TimePerFrame, err = parseSeconds(value)
	case "Total time":
		e.TotalTime, err = parseSeconds(value)
	case "Rotation axis":
		e.RotationAxis, err = parseUnit(value, "radians")
	case "Oscillation angle":
		e.OscillationAngle, err = parseUnit(value, "degrees")
	case "Rotation speed":
		e.RotationSpeed, err = parseUnit(value, "degrees/s")
	case "Number of frames":
		e.FrameCount, err = strconv.Atoi(value)
	}
	return err
}

func parseUnit(value, unit string) (float64, error) {
	trimmed := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(value), unit))
	return strconv.ParseFloat(trimmed, 64)
}

func parseSeconds(value string) (time.Duration, error) {
	seconds, err := parseUnit(value, "s")
	if err != nil {
		return 0, err
	}
	return time.Duration(seconds * float64(time.Second)), nil
}
