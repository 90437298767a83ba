// Package expdir owns the on-disk layout of one experiment:
// <root>/<sample>_<n>/ with a tiff/ subdirectory of per-frame images, the
// flat-text experiment log, and optionally the rotation sample trace.
//
// The numeric suffix auto-increments so an existing directory is never
// overwritten, whatever is already on disk.
package expdir

import (
	"fmt"
	"image"
	"os"
	"path/filepath"

	"golang.org/x/image/tiff"

	"credaq/internal/framebuf"
	"credaq/internal/metadata"
	"credaq/internal/rotation"
)

// FrameDirName is the subdirectory holding per-frame images.
const FrameDirName = "tiff"

// SampleTraceFileName holds the angle samples polled during collection.
const SampleTraceFileName = "rotation_trace.txt"

// Create makes <root>/<sample>_<n>/ for the smallest positive n whose
// directory does not yet exist, and returns its path.
func Create(root, sample string) (string, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return "", fmt.Errorf("create experiment root: %w", err)
	}
	for n := 1; ; n++ {
		path := filepath.Join(root, fmt.Sprintf("%s_%d", sample, n))
		err := os.Mkdir(path, 0o755)
		if err == nil {
			return path, nil
		}
		if !os.IsExist(err) {
			return "", fmt.Errorf("create experiment directory: %w", err)
		}
	}
}

// FrameFileName returns the fixed-width zero-padded image name for a
// zero-based frame index: frame 0 is image_00001.tiff.
func FrameFileName(index int) string {
	return fmt.Sprintf("image_%05d.tiff", index+1)
}

// WriteFrames persists every collected frame as 16-bit grayscale TIFF under
// <dir>/tiff/.
func WriteFrames(dir string, buf *framebuf.Buffer) error {
	frameDir := filepath.Join(dir, FrameDirName)
	if err := os.MkdirAll(frameDir, 0o755); err != nil {
		return fmt.Errorf("create frame directory: %w", err)
	}
	for i := 0; i < buf.Count(); i++ {
		record, err := buf.Frame(i)
		if err != nil {
			return err
		}
		if err := writeFrame(filepath.Join(frameDir, FrameFileName(i)), record); err != nil {
			return fmt.Errorf("write frame %d: %w", i, err)
		}
	}
	return nil
}

// WriteLog persists the experiment metadata log into dir.
func WriteLog(dir string, exp metadata.Experiment) error {
	return exp.WriteFile(filepath.Join(dir, metadata.LogFileName))
}

// WriteSampleTrace persists the rotation samples polled during collection,
// one "<unix-nanos> <angle>" pair per line.
func WriteSampleTrace(dir string, samples []rotation.Sample) error {
	file, err := os.Create(filepath.Join(dir, SampleTraceFileName))
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintln(file, "# timestamp_ns angle_degrees"); err != nil {
		file.Close()
		return err
	}
	for _, sample := range samples {
		if _, err := fmt.Fprintf(file, "%d %.6f\n", sample.At.UnixNano(), sample.Angle); err != nil {
			file.Close()
			return err
		}
	}
	return file.Close()
}

func writeFrame(path string, record framebuf.FrameRecord) error {
	img := image.NewGray16(image.Rect(0, 0, record.Width, record.Height))
	for i, px := range record.Pixels {
		// Gray16 stores big-endian pixel bytes.
		img.Pix[i*2] = uint8(px >> 8)
		img.Pix[i*2+1] = uint8(px)
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := tiff.Encode(file, img, nil); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
