package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/staffscan/internal/model"
	"github.com/nao1215/staffscan/internal/validator"
)

const (
	dbFileName   = "staffscan.db"
	lockFileName = "staffscan.lock"
)

var (
	// ErrStoreLocked is returned when another process holds the store lock.
	ErrStoreLocked = errors.New("store is locked by another staffscan process")

	// ErrStoreNotFound is returned when opening a missing store without CreateIfNotExists.
	ErrStoreNotFound = errors.New("store not found")

	// ErrRunNotFound is returned when no run has the requested ID.
	ErrRunNotFound = errors.New("run not found")
)

// Store is the SQLite history of runs, employees and name exceptions.
// One process at a time may open a store directory.
type Store struct {
	db     *sql.DB
	dbPath string
	lock   *flock.Flock
}

// Options configures Store behavior.
type Options struct {
	// CreateIfNotExists creates the directory and database file when missing.
	CreateIfNotExists bool

	// EnableWAL turns on write-ahead logging.
	EnableWAL bool
}

// DefaultOptions returns the default store options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open locks dbDir and opens the store inside it.
func Open(dbDir string, opts Options) (*Store, error) {
	dbPath := filepath.Join(dbDir, dbFileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w at %s", ErrStoreNotFound, dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else if err := os.MkdirAll(dbDir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	lock := flock.New(filepath.Join(dbDir, lockFileName))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire store lock: %w", err)
	}
	if !locked {
		return nil, ErrStoreLocked
	}

	mode := "rw"
	if opts.CreateIfNotExists {
		mode = "rwc"
	}
	db, err := sql.Open("sqlite", dbPath+"?mode="+mode)
	if err != nil {
		_ = lock.Unlock() //nolint:errcheck // best effort cleanup
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	s := &Store{db: db, dbPath: dbPath, lock: lock}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = s.Close() //nolint:errcheck // best effort cleanup
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}
	if err := s.createTables(); err != nil {
		_ = s.Close() //nolint:errcheck // best effort cleanup
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return s, nil
}

// Close closes the database and releases the lock.
func (s *Store) Close() error {
	return errors.Join(s.db.Close(), s.lock.Unlock())
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.dbPath
}

func (s *Store) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		company TEXT NOT NULL,
		location TEXT,
		started_at TEXT NOT NULL,
		finished_at TEXT,
		total INTEGER DEFAULT 0,
		high INTEGER DEFAULT 0,
		medium INTEGER DEFAULT 0,
		low INTEGER DEFAULT 0,
		linkedin INTEGER DEFAULT 0,
		error_count INTEGER DEFAULT 0,
		report_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_company ON runs(company);
	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);

	CREATE TABLE IF NOT EXISTS employees (
		company TEXT NOT NULL,
		key TEXT NOT NULL,
		first_name TEXT NOT NULL,
		last_name TEXT NOT NULL,
		title TEXT,
		location TEXT,
		source TEXT,
		confidence TEXT,
		link TEXT,
		needs_verification INTEGER DEFAULT 0,
		verification_status TEXT,
		fingerprint TEXT NOT NULL,
		first_seen TEXT NOT NULL,
		last_seen TEXT NOT NULL,
		last_run_id TEXT,
		PRIMARY KEY (company, key)
	);

	CREATE TABLE IF NOT EXISTS exceptions (
		key TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		include INTEGER NOT NULL,
		updated_at TEXT NOT NULL
	);
	`
	_, err := s.db.ExecContext(context.Background(), schema)
	return err
}

// RunSummary is a run listed without its full report.
type RunSummary struct {
	ID         string
	Company    string
	Location   string
	StartedAt  time.Time
	FinishedAt time.Time
	Stats      model.Stats
	ErrorCount int
}

// SaveRun stores a run report. Saving a run again replaces it.
func (s *Store) SaveRun(ctx context.Context, run *model.Run) error {
	reportJSON, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("failed to serialize run: %w", err)
	}

	query := `
	INSERT INTO runs (id, company, location, started_at, finished_at, total, high, medium, low, linkedin, error_count, report_json)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		finished_at = excluded.finished_at,
		total = excluded.total,
		high = excluded.high,
		medium = excluded.medium,
		low = excluded.low,
		linkedin = excluded.linkedin,
		error_count = excluded.error_count,
		report_json = excluded.report_json
	`
	_, err = s.db.ExecContext(ctx, query,
		run.ID,
		run.Company,
		run.Location,
		formatTimestamp(run.StartedAt),
		formatTimestamp(run.FinishedAt),
		run.Stats.Total,
		run.Stats.High,
		run.Stats.Medium,
		run.Stats.Low,
		run.Stats.LinkedIn,
		len(run.Errors),
		string(reportJSON),
	)
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}
	return nil
}

// GetRun loads a run report by ID.
func (s *Store) GetRun(ctx context.Context, id string) (*model.Run, error) {
	var reportJSON string
	err := s.db.QueryRowContext(ctx, `SELECT report_json FROM runs WHERE id = ?`, id).Scan(&reportJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	var run model.Run
	if err := json.Unmarshal([]byte(reportJSON), &run); err != nil {
		return nil, fmt.Errorf("failed to parse run: %w", err)
	}
	return &run, nil
}

// ListRuns returns runs newest first. An empty company lists every company;
// limit <= 0 means no limit.
func (s *Store) ListRuns(ctx context.Context, company string, limit int) ([]RunSummary, error) {
	query := `
	SELECT id, company, location, started_at, finished_at, total, high, medium, low, linkedin, error_count
	FROM runs
	WHERE 1=1
	`
	args := make([]any, 0, 2)
	if company != "" {
		query += " AND company = ? COLLATE NOCASE"
		args = append(args, company)
	}
	query += " ORDER BY started_at DESC"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []RunSummary
	for rows.Next() {
		var r RunSummary
		var location, finished sql.NullString
		var started string
		if err := rows.Scan(&r.ID, &r.Company, &location, &started, &finished,
			&r.Stats.Total, &r.Stats.High, &r.Stats.Medium, &r.Stats.Low, &r.Stats.LinkedIn, &r.ErrorCount); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		r.Location = location.String
		r.StartedAt = parseTimestamp(started)
		r.FinishedAt = parseTimestamp(finished.String)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// storedTimeFormat has fixed-width fractions so stored times sort as text.
const storedTimeFormat = "2006-01-02T15:04:05.000000000Z07:00"

// timestampFormats are tried in order when reading stored times.
var timestampFormats = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(storedTimeFormat)
}

// parseTimestamp returns the zero time for empty or unparseable values.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// LoadExceptions returns the stored exceptions as a validator exception set.
func (s *Store) LoadExceptions(ctx context.Context) (*validator.Exceptions, error) {
	entries, err := s.ListExceptions(ctx)
	if err != nil {
		return nil, err
	}
	return validator.NewExceptions(entries...), nil
}
