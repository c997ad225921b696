package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	apperrors "keibacli/internal/errors"
	"keibacli/pkg/contracts/domain"
)

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond

	// DefaultListLimit caps ListRuns when no limit is given
	DefaultListLimit = 20
)

// Run is one recorded pipeline run
type Run struct {
	ID            int64                 `json:"id"`
	RunID         string                `json:"run_id"`
	Command       string                `json:"command"`
	Source        string                `json:"source"`
	Status        string                `json:"status"`
	RowsIn        int                   `json:"rows_in"`
	RowsOut       int                   `json:"rows_out"`
	RowsDropped   int                   `json:"rows_dropped"`
	Violations    int                   `json:"violations"`
	DuplicateRows int                   `json:"duplicate_rows"`
	Quality       *domain.QualityReport `json:"quality,omitempty"`
	Error         string                `json:"error,omitempty"`
	StartedAt     time.Time             `json:"started_at"`
	Duration      time.Duration         `json:"duration"`
}

// Store keeps run history in SQLite
type Store struct {
	db   *sql.DB
	path string
}

// Open creates or opens the history database at path and applies the schema
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, apperrors.NewStorageError("create history directory", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, apperrors.NewStorageError("open sqlite db", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, apperrors.NewStorageError(fmt.Sprintf("apply pragma %q", pragma), execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.ensureSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, apperrors.NewStorageError("initialize schema", err)
	}
	return store, nil
}

// Close closes the underlying database connection
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file path
func (s *Store) Path() string {
	return s.path
}

// RecordRun appends a run and returns its row ID
func (s *Store) RecordRun(ctx context.Context, run Run) (int64, error) {
	var qualityJSON sql.NullString
	if run.Quality != nil {
		data, err := json.Marshal(run.Quality)
		if err != nil {
			return 0, apperrors.NewStorageError("marshal quality report", err)
		}
		qualityJSON = sql.NullString{String: string(data), Valid: true}
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}

	var res sql.Result
	err := retryOnBusy(ctx, func() error {
		var execErr error
		res, execErr = s.db.ExecContext(ctx,
			`INSERT INTO runs (
                run_id, command, source, status, rows_in, rows_out, rows_dropped,
                violations, duplicate_rows, quality_json, error_message, started_at, duration_ms
            ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			run.RunID,
			run.Command,
			run.Source,
			run.Status,
			run.RowsIn,
			run.RowsOut,
			run.RowsDropped,
			run.Violations,
			run.DuplicateRows,
			qualityJSON,
			nullableString(run.Error),
			run.StartedAt.UTC().Format(time.RFC3339Nano),
			run.Duration.Milliseconds(),
		)
		return execErr
	})
	if err != nil {
		return 0, apperrors.NewStorageError("insert run", err).WithContext("run_id", run.RunID)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, apperrors.NewStorageError("last insert id", err)
	}
	return id, nil
}

// ListRuns returns the most recent runs, newest first
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM runs ORDER BY started_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, apperrors.NewStorageError("list runs", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewStorageError("iterate runs", err)
	}
	return runs, nil
}

// GetRun fetches a run by its run ID
func (s *Store) GetRun(ctx context.Context, runID string) (*Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE run_id = ?`, runID)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError("run " + runID)
	}
	return run, err
}

const runColumns = `id, run_id, command, source, status, rows_in, rows_out, rows_dropped,
    violations, duplicate_rows, quality_json, error_message, started_at, duration_ms`

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (*Run, error) {
	var (
		run         Run
		qualityJSON sql.NullString
		errorMsg    sql.NullString
		startedAt   string
		durationMS  int64
	)
	err := sc.Scan(
		&run.ID, &run.RunID, &run.Command, &run.Source, &run.Status,
		&run.RowsIn, &run.RowsOut, &run.RowsDropped, &run.Violations, &run.DuplicateRows,
		&qualityJSON, &errorMsg, &startedAt, &durationMS,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, apperrors.NewStorageError("scan run", err)
	}

	if qualityJSON.Valid {
		var report domain.QualityReport
		if err := json.Unmarshal([]byte(qualityJSON.String), &report); err != nil {
			return nil, apperrors.NewStorageError("decode quality report", err)
		}
		run.Quality = &report
	}
	run.Error = errorMsg.String
	if t, err := time.Parse(time.RFC3339Nano, startedAt); err == nil {
		run.StartedAt = t
	}
	run.Duration = time.Duration(durationMS) * time.Millisecond
	return &run, nil
}

func nullableString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

// retryOnBusy retries op with exponential backoff while SQLite reports a lock
func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}
