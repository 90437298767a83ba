// Package sessions persists the archive of finished acquisition sessions
// backed by SQLite.
//
// One row per session, written exactly once when the session reaches a
// terminal state. The archive is append-only; the CLI reads it for listing
// and inspection.
package sessions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when no session matches the requested id.
var ErrNotFound = errors.New("session not found")

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
    id                TEXT PRIMARY KEY,
    sample            TEXT NOT NULL,
    state             TEXT NOT NULL,
    experiment_dir    TEXT NOT NULL DEFAULT '',
    frames_collected  INTEGER NOT NULL DEFAULT 0,
    start_angle       REAL NOT NULL DEFAULT 0,
    end_angle         REAL NOT NULL DEFAULT 0,
    rotation_range    REAL NOT NULL DEFAULT 0,
    oscillation_angle REAL NOT NULL DEFAULT 0,
    rotation_speed    REAL NOT NULL DEFAULT 0,
    exposure_millis   INTEGER NOT NULL DEFAULT 0,
    total_millis      INTEGER NOT NULL DEFAULT 0,
    abort_reason      TEXT NOT NULL DEFAULT '',
    started_at        TEXT NOT NULL,
    finished_at       TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_sessions_finished_at ON sessions(finished_at);
`

// Record is one archived session.
type Record struct {
	ID               string
	Sample           string
	State            string
	ExperimentDir    string
	FramesCollected  int
	StartAngle       float64
	EndAngle         float64
	RotationRange    float64
	OscillationAngle float64
	RotationSpeed    float64
	Exposure         time.Duration
	TotalTime        time.Duration
	AbortReason      string
	StartedAt        time.Time
	FinishedAt       time.Time
}

// Store manages session persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the archive database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Store{db: db, path: path}, nil
}

// Path returns the database file path.
func (s *Store) Path() string { return s.path }

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Record inserts one finished session.
func (s *Store) Record(ctx context.Context, rec Record) error {
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO sessions (
            id, sample, state, experiment_dir, frames_collected,
            start_angle, end_angle, rotation_range, oscillation_angle,
            rotation_speed, exposure_millis, total_millis, abort_reason,
            started_at, finished_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID,
		rec.Sample,
		rec.State,
		rec.ExperimentDir,
		rec.FramesCollected,
		rec.StartAngle,
		rec.EndAngle,
		rec.RotationRange,
		rec.OscillationAngle,
		rec.RotationSpeed,
		rec.Exposure.Milliseconds(),
		rec.TotalTime.Milliseconds(),
		rec.AbortReason,
		rec.StartedAt.UTC().Format(time.RFC3339Nano),
		rec.FinishedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

// List returns the most recently finished sessions, newest first. A limit of
// zero or less returns every session.
func (s *Store) List(ctx context.Context, limit int) ([]Record, error) {
	query := selectColumns + " FROM sessions ORDER BY finished_at DESC"
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return records, nil
}

// GetByID returns the session with the given id.
func (s *Store) GetByID(ctx context.Context, id string) (Record, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+" FROM sessions WHERE id = ?", id)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return rec, err
}

const selectColumns = `SELECT
    id, sample, state, experiment_dir, frames_collected,
    start_angle, end_angle, rotation_range, oscillation_angle,
    rotation_speed, exposure_millis, total_millis, abort_reason,
    started_at, finished_at`

func scanRecord(scanner interface{ Scan(dest ...any) error }) (Record, error) {
	var (
		rec                   Record
		exposureMillis        int64
		totalMillis           int64
		startedAt, finishedAt string
	)
	err := scanner.Scan(
		&rec.ID,
		&rec.Sample,
		&rec.State,
		&rec.ExperimentDir,
		&rec.FramesCollected,
		&rec.StartAngle,
		&rec.EndAngle,
		&rec.RotationRange,
		&rec.OscillationAngle,
		&rec.RotationSpeed,
		&exposureMillis,
		&totalMillis,
		&rec.AbortReason,
		&startedAt,
		&finishedAt,
	)
	if err != nil {
		return Record{}, err
	}
	rec.Exposure = time.Duration(exposureMillis) * time.Millisecond
	rec.TotalTime = time.Duration(totalMillis) * time.Millisecond

	if rec.StartedAt, err = time.Parse(time.RFC3339Nano, startedAt); err != nil {
		return Record{}, fmt.Errorf("parse started_at: %w", err)
	}
	if rec.FinishedAt, err = time.Parse(time.RFC3339Nano, finishedAt); err != nil {
		return Record{}, fmt.Errorf("parse finished_at: %w", err)
	}
	return rec, nil
}
