// Package logging assembles structured slog loggers and formatting helpers
// used across credaq services.
//
// It owns the console/JSON handler selection, centralizes level and output
// plumbing, and exposes attribute helpers so components tag log lines with
// the same field names everywhere. The package also provides a no-op logger
// for tests and wiring code that cannot fail.
//
// Prefer these constructors over hand-rolled slog setup so new components
// emit data with the same shape as the rest of the system.
package logging
