package metadata

import (
	"bytes"
	"math"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func sampleExperiment() Experiment {
	return Experiment{
		Program:          "credaq 0.1.0",
		CollectionTime:   time.Date(2026, 3, 14, 9, 26, 53, 0, time.Local),
		Microscope:       "simulate",
		Camera:           "simulate",
		Sample:           "zeolite",
		StartAngle:       -20.1234,
		EndAngle:         31.5,
		RotationRange:    51.6234,
		Exposure:         500 * time.Millisecond,
		TimePerFrame:     512 * time.Millisecond,
		TotalTime:        30720 * time.Millisecond,
		RotationAxis:     -2.24,
		OscillationAngle: 0.8604,
		RotationSpeed:    1.6805,
		FrameCount:       60,
	}
}

func TestRoundTrip(t *testing.T) {
	exp := sampleExperiment()
	var buf bytes.Buffer
	if err := exp.Write(&buf); err != nil {
		t.Fatalf("Write: %v", err)
	}

	got, err := Parse(&buf)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if got.Program != exp.Program || got.Sample != exp.Sample || got.FrameCount != exp.FrameCount {
		t.Fatalf("identity fields mismatch: %+v", got)
	}
	if !got.CollectionTime.Equal(exp.CollectionTime) {
		t.Errorf("collection time = %v, want %v", got.CollectionTime, exp.CollectionTime)
	}

	const tol = 1e-3
	floats := []struct {
		name      string
		got, want float64
	}{
		{"start angle", got.StartAngle, exp.StartAngle},
		{"end angle", got.EndAngle, exp.EndAngle},
		{"rotation range", got.RotationRange, exp.RotationRange},
		{"rotation axis", got.RotationAxis, exp.RotationAxis},
		{"oscillation angle", got.OscillationAngle, exp.OscillationAngle},
		{"rotation speed", got.RotationSpeed, exp.RotationSpeed},
		{"exposure", got.Exposure.Seconds(), exp.Exposure.Seconds()},
		{"time per frame", got.TimePerFrame.Seconds(), exp.TimePerFrame.Seconds()},
		{"total time", got.TotalTime.Seconds(), exp.TotalTime.Seconds()},
	}
	for _, f := range floats {
		if math.Abs(f.got-f.want) > tol {
			t.Errorf("%s = %v, want %v", f.name, f.got, f.want)
		}
	}
}

func TestRoundTripThroughFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), LogFileName)
	exp := sampleExperiment()
	if err := exp.WriteFile(path); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	got, err := ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	if got.FrameCount != exp.FrameCount || got.Sample != exp.Sample {
		t.Fatalf("round trip mismatch: %+v", got)
	}
}

func TestParseIgnoresUnknownKeys(t *testing.T) {
	body := "Program: credaq\nBeam stopper: yes\nNumber of frames: 7\n\nFree text without colon\n"
	got, err := Parse(strings.NewReader(body))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got.Program != "credaq" || got.FrameCount != 7 {
		t.Fatalf("parsed = %+v", got)
	}
}

func TestParseRejectsMalformedNumbers(t *testing.T) {
	if _, err := Parse(strings.NewReader("Number of frames: many\n")); err == nil {
		t.Fatal("expected parse error")
	}
}
