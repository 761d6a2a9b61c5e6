// Package history records check outcomes in a SQLite database so flaky or
// slow checks can be found across runs.
package history

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

	"github.com/abdul-hamid-achik/domspec/packages/core/runner"
)

const schema = `
CREATE TABLE IF NOT EXISTS results (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id      TEXT    NOT NULL,
	file        TEXT    NOT NULL,
	check_name  TEXT    NOT NULL,
	passed      INTEGER NOT NULL,
	skipped     INTEGER NOT NULL,
	duration_us INTEGER NOT NULL,
	message     TEXT    NOT NULL DEFAULT '',
	recorded_at TEXT    NOT NULL
);
CREATE INDEX IF NOT EXISTS results_check ON results (file, check_name);
`

// stampLayout sorts lexically in time order.
const stampLayout = "2006-01-02T15:04:05.000000Z"

// Entry is one recorded check outcome.
type Entry struct {
	RunID    string
	File     string
	Check    string
	Passed   bool
	Skipped  bool
	Duration time.Duration
	Message  string
	At       time.Time
}

// Stats aggregates the recorded outcomes of one check. Skipped outcomes are
// not counted as runs.
type Stats struct {
	File     string
	Check    string
	Runs     int
	Failures int
	Mean     time.Duration
	Last     time.Time
}

// FailureRate is the share of runs that failed, from 0 to 1.
func (s Stats) FailureRate() float64 {
	if s.Runs == 0 {
		return 0
	}
	return float64(s.Failures) / float64(s.Runs)
}

// Flaky reports whether the check both passed and failed.
func (s Stats) Flaky() bool {
	return s.Failures > 0 && s.Failures < s.Runs
}

type Store struct {
	db *sql.DB
}

// Open opens or creates the database. The location may be a path or
// carry a "sqlite:" or "sqlite://" prefix.
func Open(ctx context.Context, location string) (*Store, error) {
	path, err := parseLocation(location)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating history directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening history: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating history schema: %w", err)
	}
	return &Store{db: db}, nil
}

func parseLocation(location string) (string, error) {
	location = strings.TrimSpace(location)
	location = strings.TrimPrefix(location, "sqlite://")
	location = strings.TrimPrefix(location, "sqlite:")
	if location == "" {
		return "", errors.New("history database path is empty")
	}
	return location, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Record stores every check of results under runID in one transaction.
func (s *Store) Record(ctx context.Context, runID string, at time.Time, results []*runner.RunResult) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("recording history: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO results
		(run_id, file, check_name, passed, skipped, duration_us, message, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("recording history: %w", err)
	}
	defer stmt.Close()

	stamp := at.UTC().Format(stampLayout)
	for _, result := range results {
		for _, c := range result.Results {
			if _, err := stmt.ExecContext(ctx, runID, result.File, c.Name,
				c.Passed, c.Skipped, c.Duration.Microseconds(), c.Message(), stamp); err != nil {
				return fmt.Errorf("recording %s: %w", c.Name, err)
			}
		}
	}
	return tx.Commit()
}

// Recent returns the latest entries, newest first. An empty check matches
// every check.
func (s *Store) Recent(ctx context.Context, check string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `SELECT run_id, file, check_name, passed, skipped, duration_us, message, recorded_at
		FROM results WHERE ? = '' OR check_name = ?
		ORDER BY id DESC LIMIT ?`, check, check, limit)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e     Entry
			us    int64
			stamp string
		)
		if err := rows.Scan(&e.RunID, &e.File, &e.Check, &e.Passed, &e.Skipped, &us, &e.Message, &stamp); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		e.Duration = time.Duration(us) * time.Microsecond
		e.At, _ = time.Parse(stampLayout, stamp)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return entries, nil
}

// Stats aggregates outcomes per check, most failing first.
func (s *Store) Stats(ctx context.Context) ([]Stats, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT file, check_name,
			COUNT(*), SUM(CASE WHEN passed THEN 0 ELSE 1 END),
			CAST(AVG(duration_us) AS INTEGER), MAX(recorded_at)
		FROM results WHERE skipped = 0
		GROUP BY file, check_name
		ORDER BY 4 DESC, file, check_name`)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var stats []Stats
	for rows.Next() {
		var (
			st    Stats
			mean  int64
			stamp string
		)
		if err := rows.Scan(&st.File, &st.Check, &st.Runs, &st.Failures, &mean, &stamp); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		st.Mean = time.Duration(mean) * time.Microsecond
		st.Last, _ = time.Parse(stampLayout, stamp)
		stats = append(stats, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return stats, nil
}
