/*
Package sqlite provides a SQLite-backed archive of settlement runs.

PURPOSE:
  Implements settlement.RunStore using SQLite, plus a small table of custom
  edition documents so that editions registered over the API survive a
  restart. In production the same patterns apply to PostgreSQL with minor
  SQL dialect differences.

INTERFACES IMPLEMENTED:
  settlement.RunStore: Save, Get, List, DeleteBefore
  edition.Archive:     SaveEdition, ListEditions

KEY TABLES:
  settlement_runs: One row per archived run. Inputs and the Result are
                   stored as JSON; the listing columns (quarter, warning
                   count, net result, ending cash) are denormalized so List
                   never decodes a Result.
  editions:        Custom edition documents keyed by name.

APPEND-ONLY:
  A run is never updated. Re-saving an ID fails with ErrDuplicateRun; the
  retention scheduler's DeleteBefore is the only removal.

TIMESTAMPS:
  created_at is stored in UTC with a fixed-width layout so that string
  comparison in SQL orders the same way as time comparison.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. In production with PostgreSQL,
  database-level concurrency control handles this instead.

USAGE:
  store, err := sqlite.New("./data/mirage.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

SEE ALSO:
  - settlement/store.go: Interface definition
  - settlement/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/mirage-sim/settlement-engine/edition"
	"github.com/mirage-sim/settlement-engine/settlement"
)

// timeLayout is fixed width, unlike time.RFC3339Nano.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

var (
	_ settlement.RunStore = (*Store)(nil)
	_ edition.Archive     = (*Store)(nil)
)

// Store implements settlement.RunStore using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// Each :memory: connection is its own database.
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Settlement runs (append-only archive)
	CREATE TABLE IF NOT EXISTS settlement_runs (
		id TEXT PRIMARY KEY,
		edition TEXT NOT NULL,
		label TEXT,
		quarter INTEGER NOT NULL,
		decisions_json TEXT NOT NULL,
		state_json TEXT NOT NULL,
		forecast_json TEXT,
		result_json TEXT,
		warning_count INTEGER NOT NULL DEFAULT 0,
		net_result TEXT NOT NULL DEFAULT '0',
		ending_cash TEXT NOT NULL DEFAULT '0',
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_created_at
		ON settlement_runs(created_at DESC);
	CREATE INDEX IF NOT EXISTS idx_runs_edition_quarter
		ON settlement_runs(edition, quarter);

	-- Custom editions (versioned on every replace)
	CREATE TABLE IF NOT EXISTS editions (
		name TEXT PRIMARY KEY,
		document_json TEXT NOT NULL,
		version INTEGER DEFAULT 1,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// RUN STORE (settlement.RunStore interface)
// =============================================================================

// Save archives a run.
func (s *Store) Save(ctx context.Context, run settlement.Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	decisionsJSON, err := json.Marshal(run.Decisions)
	if err != nil {
		return fmt.Errorf("failed to encode decisions: %w", err)
	}
	stateJSON, err := json.Marshal(run.State)
	if err != nil {
		return fmt.Errorf("failed to encode state: %w", err)
	}
	var forecastJSON, resultJSON sql.NullString
	if run.Forecast != nil {
		b, err := json.Marshal(run.Forecast)
		if err != nil {
			return fmt.Errorf("failed to encode forecast: %w", err)
		}
		forecastJSON = sql.NullString{String: string(b), Valid: true}
	}
	if run.Result != nil {
		b, err := json.Marshal(run.Result)
		if err != nil {
			return fmt.Errorf("failed to encode result: %w", err)
		}
		resultJSON = sql.NullString{String: string(b), Valid: true}
	}

	summary := run.Summary()
	query := `
		INSERT INTO settlement_runs
		(id, edition, label, quarter, decisions_json, state_json, forecast_json, result_json,
		 warning_count, net_result, ending_cash, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = s.db.ExecContext(ctx, query,
		string(run.ID),
		run.Edition,
		nullString(run.Label),
		summary.Quarter,
		string(decisionsJSON),
		string(stateJSON),
		forecastJSON,
		resultJSON,
		summary.WarningCount,
		summary.NetResult.String(),
		summary.EndingCash.String(),
		formatTime(run.CreatedAt),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return settlement.ErrDuplicateRun
		}
		return fmt.Errorf("failed to save run: %w", err)
	}
	return nil
}

// Get returns one archived run with its inputs and result.
func (s *Store) Get(ctx context.Context, id settlement.RunID) (settlement.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		run           settlement.Run
		label         sql.NullString
		decisionsJSON string
		stateJSON     string
		forecastJSON  sql.NullString
		resultJSON    sql.NullString
		createdAt     string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, edition, label, decisions_json, state_json, forecast_json, result_json, created_at
		FROM settlement_runs WHERE id = ?
	`, string(id)).Scan(&run.ID, &run.Edition, &label, &decisionsJSON, &stateJSON, &forecastJSON, &resultJSON, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return settlement.Run{}, settlement.ErrRunNotFound
	}
	if err != nil {
		return settlement.Run{}, fmt.Errorf("failed to get run: %w", err)
	}

	run.Label = label.String
	if err := json.Unmarshal([]byte(decisionsJSON), &run.Decisions); err != nil {
		return settlement.Run{}, fmt.Errorf("failed to decode decisions of run %s: %w", id, err)
	}
	if err := json.Unmarshal([]byte(stateJSON), &run.State); err != nil {
		return settlement.Run{}, fmt.Errorf("failed to decode state of run %s: %w", id, err)
	}
	if forecastJSON.Valid {
		if err := json.Unmarshal([]byte(forecastJSON.String), &run.Forecast); err != nil {
			return settlement.Run{}, fmt.Errorf("failed to decode forecast of run %s: %w", id, err)
		}
	}
	if resultJSON.Valid {
		run.Result = &settlement.Result{}
		if err := json.Unmarshal([]byte(resultJSON.String), run.Result); err != nil {
			return settlement.Run{}, fmt.Errorf("failed to decode result of run %s: %w", id, err)
		}
	}
	if run.CreatedAt, err = parseTime(createdAt); err != nil {
		return settlement.Run{}, err
	}
	return run, nil
}

// List returns run summaries matching the filter, newest first.
func (s *Store) List(ctx context.Context, filter settlement.RunFilter) ([]settlement.RunSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		where []string
		args  []any
	)
	if filter.Edition != "" {
		where = append(where, "edition = ?")
		args = append(args, filter.Edition)
	}
	if filter.Quarter != 0 {
		where = append(where, "quarter = ?")
		args = append(args, filter.Quarter)
	}

	query := `
		SELECT id, edition, label, quarter, warning_count, net_result, ending_cash, created_at
		FROM settlement_runs`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC, id DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var summaries []settlement.RunSummary
	for rows.Next() {
		var (
			sum        settlement.RunSummary
			label      sql.NullString
			netResult  string
			endingCash string
			createdAt  string
		)
		if err := rows.Scan(&sum.ID, &sum.Edition, &label, &sum.Quarter, &sum.WarningCount,
			&netResult, &endingCash, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		sum.Label = label.String
		if sum.NetResult, err = decimal.NewFromString(netResult); err != nil {
			return nil, fmt.Errorf("run %s: bad net_result %q: %w", sum.ID, netResult, err)
		}
		if sum.EndingCash, err = decimal.NewFromString(endingCash); err != nil {
			return nil, fmt.Errorf("run %s: bad ending_cash %q: %w", sum.ID, endingCash, err)
		}
		if sum.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		summaries = append(summaries, sum)
	}
	return summaries, rows.Err()
}

// DeleteBefore removes runs created before the cutoff.
func (s *Store) DeleteBefore(ctx context.Context, cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		"DELETE FROM settlement_runs WHERE created_at < ?", formatTime(cutoff))
	if err != nil {
		return 0, fmt.Errorf("failed to delete runs: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted runs: %w", err)
	}
	return int(n), nil
}

// =============================================================================
// EDITION DOCUMENTS
// =============================================================================

// SaveEdition inserts or replaces a custom edition document, bumping its
// version on replace.
func (s *Store) SaveEdition(ctx context.Context, name string, document []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := formatTime(time.Now())
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO editions (name, document_json, version, created_at, updated_at)
		VALUES (?, ?, 1, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			document_json = excluded.document_json,
			version = editions.version + 1,
			updated_at = excluded.updated_at
	`, name, string(document), now, now)
	if err != nil {
		return fmt.Errorf("failed to save edition %q: %w", name, err)
	}
	return nil
}

// ListEditions returns every stored edition document ordered by name.
func (s *Store) ListEditions(ctx context.Context) ([]edition.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT name, document_json, version, created_at, updated_at
		FROM editions ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list editions: %w", err)
	}
	defer rows.Close()

	var records []edition.Record
	for rows.Next() {
		var (
			rec                  edition.Record
			document             string
			createdAt, updatedAt string
		)
		if err := rows.Scan(&rec.Name, &document, &rec.Version, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan edition: %w", err)
		}
		rec.Document = []byte(document)
		if rec.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		if rec.UpdatedAt, err = parseTime(updatedAt); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Reset clears all data (for testing/demo).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, table := range []string{"settlement_runs", "editions"} {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to reset %s: %w", table, err)
		}
	}
	return nil
}

// Helper functions

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("bad timestamp %q: %w", s, err)
	}
	return t, nil
}

func isUniqueConstraintError(err error) bool {
	return err != nil && (strings.Contains(err.Error(), "UNIQUE constraint failed") ||
		strings.Contains(err.Error(), "duplicate key"))
}
