package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"credaq/internal/config"
	"credaq/internal/sessions"
)

// MustOpenStore opens a sessions.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *sessions.Store {
	t.Helper()

	if err := os.MkdirAll(cfg.Paths.LogDir, 0o755); err != nil {
		t.Fatalf("mkdir log dir: %v", err)
	}
	store, err := sessions.Open(filepath.Join(cfg.Paths.LogDir, "sessions.db"))
	if err != nil {
		t.Fatalf("sessions.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}
