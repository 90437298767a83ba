package expdir

import (
	"credaq/internal/framebuf"
	"credaq/internal/metadata"
	"credaq/internal/rotation"
)

// Store persists finished sessions under a fixed experiment root.
type Store struct {
	root string
}

// NewStore builds a store rooted at root.
func NewStore(root string) *Store {
	return &Store{root: root}
}

// Root returns the experiment root directory.
func (s *Store) Root() string { return s.root }

// CreateDir makes the next free <root>/<sample>_<n>/ directory.
func (s *Store) CreateDir(sample string) (string, error) {
	return Create(s.root, sample)
}

// Persist writes the frames, the experiment log, and, when trace is
// non-empty, the rotation sample trace into dir.
func (s *Store) Persist(dir string, buf *framebuf.Buffer, exp metadata.Experiment, trace []rotation.Sample) error {
	if err := WriteFrames(dir, buf); err != nil {
		return err
	}
	if err := WriteLog(dir, exp); err != nil {
		return err
	}
	if len(trace) > 0 {
		return WriteSampleTrace(dir, trace)
	}
	return nil
}
