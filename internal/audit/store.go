// Package audit keeps a SQLite record of each run: the identifiers searched
// for, every directory visited or pruned, every match, and the copy outcome.
// It answers "why was this folder skipped" long after the console is gone.
package audit

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/harrison/mrncopy/internal/models"
)

// ErrRunNotFound is returned when a run ID is not in the store.
var ErrRunNotFound = errors.New("run not found")

// Run is the stored summary of one run.
type Run struct {
	ID           string
	Root         string
	StartedAt    time.Time
	FinishedAt   sql.NullTime
	DirsVisited  int
	DirsExcluded int
	FilesMatched int
	DirsMatched  int
	ReadErrors   int
	WalkDuration time.Duration
	Copy         *CopyOutcome
}

// CopyOutcome is the stored summary of a run's copy phase.
type CopyOutcome struct {
	DestRoot        string
	DryRun          bool
	Copied          int
	SkippedArchives int
	BytesCopied     int64
	Duration        time.Duration
	Duplicates      int
	Errors          int
}

// Store is the audit database.
type Store struct {
	db     *sql.DB
	dbPath string
}

// NewStore opens (creating if needed) the database at dbPath and applies
// pending migrations. ":memory:" opens a private in-memory database.
func NewStore(dbPath string) (*Store, error) {
	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// One connection keeps ":memory:" a single database and serializes writers.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA busy_timeout=5000",
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	}
	for _, pragma := range pragmas {
		if err := execWithRetry(db, pragma, 5, 10*time.Millisecond); err != nil {
			db.Close()
			return nil, fmt.Errorf("set %s: %w", pragma, err)
		}
	}

	s := &Store{db: db, dbPath: dbPath}
	if err := s.ApplyMigrations(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return s, nil
}

// execWithRetry retries stmt with exponential backoff while the database is
// locked by another process.
func execWithRetry(db *sql.DB, stmt string, maxRetries int, baseDelay time.Duration) error {
	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		_, err := db.Exec(stmt)
		if err == nil {
			return nil
		}
		if !strings.Contains(err.Error(), "database is locked") {
			return err
		}
		lastErr = err
		time.Sleep(baseDelay * time.Duration(1<<attempt))
	}
	return lastErr
}

// Path returns the database path.
func (s *Store) Path() string {
	return s.dbPath
}

// Close closes the database.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// BeginRun records a new run and its identifiers.
func (s *Store) BeginRun(ctx context.Context, runID, root string, ids []models.Identifier) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `INSERT INTO runs (id, root) VALUES (?, ?)`, runID, root); err != nil {
			return fmt.Errorf("insert run: %w", err)
		}
		stmt, err := tx.PrepareContext(ctx, `INSERT OR IGNORE INTO identifiers (run_id, position, key, needle) VALUES (?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("prepare identifier insert: %w", err)
		}
		defer stmt.Close()
		for i, id := range ids {
			if _, err := stmt.ExecContext(ctx, runID, i, id.Key, id.Needle); err != nil {
				return fmt.Errorf("insert identifier %s: %w", id.Key, err)
			}
		}
		return nil
	})
}

// RecordWalk stores the walk record, matches and counters of runID.
func (s *Store) RecordWalk(ctx context.Context, runID string, matches *models.MatchMap, record models.WalkRecord, summary models.WalkSummary) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `UPDATE runs SET dirs_visited = ?, dirs_excluded = ?, files_matched = ?,
			dirs_matched = ?, read_errors = ?, walk_duration_ms = ? WHERE id = ?`,
			summary.DirsVisited, summary.DirsExcluded, summary.FilesMatched,
			summary.DirsMatched, summary.ReadErrors, summary.Duration.Milliseconds(), runID)
		if err != nil {
			return fmt.Errorf("update run: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}

		if err := insertEach(ctx, tx, `INSERT INTO visited (run_id, path) VALUES (?, ?)`, len(record.Visited), func(i int) []any {
			return []any{runID, record.Visited[i]}
		}); err != nil {
			return fmt.Errorf("insert visited: %w", err)
		}

		if err := insertEach(ctx, tx, `INSERT INTO exclusions (run_id, path, rule, reason) VALUES (?, ?, ?, ?)`, len(record.Excluded), func(i int) []any {
			ex := record.Excluded[i]
			return []any{runID, ex.Path, ex.Rule, ex.Reason}
		}); err != nil {
			return fmt.Errorf("insert exclusions: %w", err)
		}

		type pair struct{ key, path string }
		var pairs []pair
		for _, key := range matches.Keys() {
			for _, p := range matches.Paths(key) {
				pairs = append(pairs, pair{key, p})
			}
		}
		if err := insertEach(ctx, tx, `INSERT INTO matches (run_id, identifier, path) VALUES (?, ?, ?)`, len(pairs), func(i int) []any {
			return []any{runID, pairs[i].key, pairs[i].path}
		}); err != nil {
			return fmt.Errorf("insert matches: %w", err)
		}
		return nil
	})
}

// RecordCopy stores the copy outcome of runID.
func (s *Store) RecordCopy(ctx context.Context, runID, destRoot string, dryRun bool, r *models.DuplicateReport) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `INSERT OR REPLACE INTO copies
			(run_id, dest_root, dry_run, copied, skipped_archives, bytes_copied, duration_ms) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			runID, destRoot, dryRun, r.Copied, r.SkippedArchives, r.BytesCopied, r.Duration.Milliseconds()); err != nil {
			return fmt.Errorf("insert copy outcome: %w", err)
		}

		if err := insertEach(ctx, tx, `INSERT INTO duplicates (run_id, identifier, source, basename, destination, is_dir) VALUES (?, ?, ?, ?, ?, ?)`, len(r.Entries), func(i int) []any {
			d := r.Entries[i]
			return []any{runID, d.Identifier, d.Source, d.Basename, d.Destination, d.IsDir}
		}); err != nil {
			return fmt.Errorf("insert duplicates: %w", err)
		}

		if err := insertEach(ctx, tx, `INSERT INTO copy_errors (run_id, identifier, source, message) VALUES (?, ?, ?, ?)`, len(r.Errors), func(i int) []any {
			e := r.Errors[i]
			msg := ""
			if e.Err != nil {
				msg = e.Err.Error()
			}
			return []any{runID, e.Identifier, e.Source, msg}
		}); err != nil {
			return fmt.Errorf("insert copy errors: %w", err)
		}
		return nil
	})
}

// FinishRun stamps runID as finished.
func (s *Store) FinishRun(ctx context.Context, runID string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE runs SET finished_at = ? WHERE id = ?`, time.Now().UTC(), runID)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	return nil
}

// GetRun loads the summary of runID.
func (s *Store) GetRun(ctx context.Context, runID string) (*Run, error) {
	run := &Run{}
	var walkMS int64
	err := s.db.QueryRowContext(ctx, `SELECT id, root, started_at, finished_at, dirs_visited, dirs_excluded,
		files_matched, dirs_matched, read_errors, walk_duration_ms FROM runs WHERE id = ?`, runID).Scan(
		&run.ID, &run.Root, &run.StartedAt, &run.FinishedAt, &run.DirsVisited, &run.DirsExcluded,
		&run.FilesMatched, &run.DirsMatched, &run.ReadErrors, &walkMS)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	if err != nil {
		return nil, fmt.Errorf("query run: %w", err)
	}
	run.WalkDuration = time.Duration(walkMS) * time.Millisecond

	c := &CopyOutcome{}
	var copyMS int64
	err = s.db.QueryRowContext(ctx, `SELECT dest_root, dry_run, copied, skipped_archives, bytes_copied, duration_ms,
		(SELECT COUNT(*) FROM duplicates WHERE run_id = ?), (SELECT COUNT(*) FROM copy_errors WHERE run_id = ?)
		FROM copies WHERE run_id = ?`, runID, runID, runID).Scan(
		&c.DestRoot, &c.DryRun, &c.Copied, &c.SkippedArchives, &c.BytesCopied, &copyMS, &c.Duplicates, &c.Errors)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return nil, fmt.Errorf("query copy outcome: %w", err)
	default:
		c.Duration = time.Duration(copyMS) * time.Millisecond
		run.Copy = c
	}
	return run, nil
}

// Matches rebuilds the match map stored for runID.
func (s *Store) Matches(ctx context.Context, runID string) (*models.MatchMap, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key, needle FROM identifiers WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, fmt.Errorf("query identifiers: %w", err)
	}
	var ids []models.Identifier
	for rows.Next() {
		var id models.Identifier
		if err := rows.Scan(&id.Key, &id.Needle); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan identifier: %w", err)
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate identifiers: %w", err)
	}

	m := models.NewMatchMap(ids)
	rows, err = s.db.QueryContext(ctx, `SELECT identifier, path FROM matches WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("query matches: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var key, path string
		if err := rows.Scan(&key, &path); err != nil {
			return nil, fmt.Errorf("scan match: %w", err)
		}
		m.Append(key, path)
	}
	return m, rows.Err()
}

// Exclusions returns the directories pruned during runID, in walk order.
func (s *Store) Exclusions(ctx context.Context, runID string) ([]models.Exclusion, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT path, rule, reason FROM exclusions WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("query exclusions: %w", err)
	}
	defer rows.Close()

	var out []models.Exclusion
	for rows.Next() {
		var ex models.Exclusion
		if err := rows.Scan(&ex.Path, &ex.Rule, &ex.Reason); err != nil {
			return nil, fmt.Errorf("scan exclusion: %w", err)
		}
		out = append(out, ex)
	}
	return out, rows.Err()
}

func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// insertEach runs query once per row with the arguments args(i).
func insertEach(ctx context.Context, tx *sql.Tx, query string, n int, args func(i int) []any) error {
	if n == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for i := 0; i < n; i++ {
		if _, err := stmt.ExecContext(ctx, args(i)...); err != nil {
			return err
		}
	}
	return nil
}
