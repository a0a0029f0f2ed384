package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"photoorg/internal/config"
)

// ErrNotFound is returned when a run id is unknown.
var ErrNotFound = errors.New("run not found")

// Store manages run history persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

func ensureContext(ctx context.Context) context.Context {
	if ctx != nil {
		return ctx
	}
	return context.Background()
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

// Open initializes or connects to the history database under the state directory.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	return OpenPath(cfg.HistoryPath())
}

// OpenPath opens the history database at dbPath.
func OpenPath(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
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

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// RecordRun stores a run and its per-file outcomes in one transaction.
func (s *Store) RecordRun(ctx context.Context, run Run, files []File) error {
	ctx = ensureContext(ctx)
	if strings.TrimSpace(run.ID) == "" {
		return errors.New("record run: id is required")
	}
	return retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin run tx: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		if _, err := tx.ExecContext(ctx, `INSERT INTO runs (
                id, started_at, finished_at, source_path, target_path, overwrite,
                total, processed, skip, failed, error_message
            ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			run.ID,
			formatTime(run.StartedAt),
			formatTime(run.FinishedAt),
			run.SourcePath,
			run.TargetPath,
			boolToInt(run.Overwrite),
			run.Total,
			run.Processed,
			run.Skip,
			run.Failed,
			nullableString(run.ErrorMessage),
		); err != nil {
			return fmt.Errorf("insert run: %w", err)
		}

		stmt, err := tx.PrepareContext(ctx, `INSERT INTO run_files (
                run_id, seq, name, disposition, year, destination, reason, error_message
            ) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("prepare file insert: %w", err)
		}
		defer stmt.Close()

		for i, f := range files {
			if _, err := stmt.ExecContext(ctx,
				run.ID,
				i+1,
				f.Name,
				f.Disposition,
				nullableInt(f.Year),
				nullableString(f.Destination),
				nullableString(f.Reason),
				nullableString(f.ErrorMessage),
			); err != nil {
				return fmt.Errorf("insert file %q: %w", f.Name, err)
			}
		}
		return tx.Commit()
	})
}

const runColumns = `id, started_at, finished_at, source_path, target_path, overwrite,
        total, processed, skip, failed, error_message`

// ListRuns returns the most recent runs first. A limit <= 0 returns all runs.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	ctx = ensureContext(ctx)
	query := "SELECT " + runColumns + " FROM runs ORDER BY started_at DESC, id DESC"
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// GetRun looks up a run by id. A unique id prefix is accepted.
func (s *Store) GetRun(ctx context.Context, id string) (Run, error) {
	ctx = ensureContext(ctx)
	id = strings.TrimSpace(id)
	if id == "" {
		return Run{}, ErrNotFound
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+runColumns+" FROM runs WHERE id = ? OR id LIKE ? ESCAPE '\\' ORDER BY id LIMIT 2",
		id, escapeLike(id)+"%",
	)
	if err != nil {
		return Run{}, fmt.Errorf("get run: %w", err)
	}
	defer rows.Close()

	var matches []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return Run{}, err
		}
		if run.ID == id {
			return run, nil
		}
		matches = append(matches, run)
	}
	if err := rows.Err(); err != nil {
		return Run{}, err
	}
	switch len(matches) {
	case 0:
		return Run{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	case 1:
		return matches[0], nil
	default:
		return Run{}, fmt.Errorf("run id prefix %q is ambiguous", id)
	}
}

// Files returns the per-file outcomes of a run in processing order.
func (s *Store) Files(ctx context.Context, runID string) ([]File, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx, `SELECT seq, name, disposition, year, destination, reason, error_message
        FROM run_files WHERE run_id = ? ORDER BY seq`, runID)
	if err != nil {
		return nil, fmt.Errorf("list run files: %w", err)
	}
	defer rows.Close()

	var files []File
	for rows.Next() {
		var f File
		var year sql.NullInt64
		var destination, reason, errMsg sql.NullString
		if err := rows.Scan(&f.Seq, &f.Name, &f.Disposition, &year, &destination, &reason, &errMsg); err != nil {
			return nil, fmt.Errorf("scan run file: %w", err)
		}
		f.Year = int(year.Int64)
		f.Destination = destination.String
		f.Reason = reason.String
		f.ErrorMessage = errMsg.String
		files = append(files, f)
	}
	return files, rows.Err()
}

// Prune deletes all but the newest keep runs and returns how many were removed.
// A keep value <= 0 disables pruning.
func (s *Store) Prune(ctx context.Context, keep int) (int, error) {
	ctx = ensureContext(ctx)
	if keep <= 0 {
		return 0, nil
	}
	var removed int64
	err := retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback() }()

		// Files are removed explicitly; foreign_keys is a per-connection pragma.
		if _, err := tx.ExecContext(ctx, `DELETE FROM run_files WHERE run_id NOT IN (
                SELECT id FROM runs ORDER BY started_at DESC, id DESC LIMIT ?
            )`, keep); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM runs WHERE id NOT IN (
                SELECT id FROM runs ORDER BY started_at DESC, id DESC LIMIT ?
            )`, keep)
		if err != nil {
			return err
		}
		if removed, err = res.RowsAffected(); err != nil {
			return err
		}
		return tx.Commit()
	})
	if err != nil {
		return 0, fmt.Errorf("prune runs: %w", err)
	}
	return int(removed), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (Run, error) {
	var run Run
	var started, finished string
	var overwrite int
	var errMsg sql.NullString
	if err := row.Scan(
		&run.ID,
		&started,
		&finished,
		&run.SourcePath,
		&run.TargetPath,
		&overwrite,
		&run.Total,
		&run.Processed,
		&run.Skip,
		&run.Failed,
		&errMsg,
	); err != nil {
		return Run{}, fmt.Errorf("scan run: %w", err)
	}
	if t, err := parseTimeString(started); err == nil {
		run.StartedAt = t
	}
	if t, err := parseTimeString(finished); err == nil {
		run.FinishedAt = t
	}
	run.Overwrite = overwrite != 0
	run.ErrorMessage = errMsg.String
	return run, nil
}

// timeLayout is fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(value time.Time) string {
	return value.UTC().Format(timeLayout)
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullableInt(value int) any {
	if value == 0 {
		return nil
	}
	return value
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

func escapeLike(value string) string {
	r := strings.NewReplacer(`%`, `\%`, `_`, `\_`)
	return r.Replace(value)
}
