// Package warehouse is a local staging sink for fetched tables. It
// mirrors the staging layer the marketing pipeline loads into: every
// value is coerced to text, destination tables are created on demand,
// and each load is recorded in an audit trail.
package warehouse

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"github.com/veemedia/socialiq/table"
)

// Store stages tables in a local SQLite database.
type Store struct {
	db  *sqlx.DB
	log *logrus.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger.
func WithLogger(log *logrus.Logger) Option {
	return func(s *Store) {
		s.log = log
	}
}

// Open opens (or creates) the staging database at dbPath, enables WAL
// mode, and runs any pending schema migrations.
func Open(dbPath string, opts ...Option) (*Store, error) {
	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening staging db: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	s := &Store{db: db, log: logrus.New()}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// LoadResult describes one completed staging load.
type LoadResult struct {
	LoadID      string
	Destination string
	RowCount    int
	LoadedAt    time.Time
}

// LoadRecord is one row of the load audit trail.
type LoadRecord struct {
	LoadID      string    `db:"load_id"`
	Destination string    `db:"destination"`
	RowCount    int       `db:"row_count"`
	LoadedAt    time.Time `db:"loaded_at"`
}

// Stage replaces the destination table's contents with the given
// table's rows, creating the destination on demand with one TEXT column
// per table column. Every cell is stored as text; schema enforcement is
// deliberately left to downstream models. A table with no columns
// stages nothing but still records an audit row.
func (s *Store) Stage(
	ctx context.Context, tbl *table.Table, destination string,
) (*LoadResult, error) {
	if err := validIdent(destination); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if tbl.NumColumns() > 0 {
		if err := replaceTable(ctx, tx, tbl, destination); err != nil {
			return nil, err
		}
	}

	result := &LoadResult{
		LoadID:      uuid.NewString(),
		Destination: destination,
		RowCount:    tbl.NumRows(),
		LoadedAt:    time.Now().UTC(),
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO load_history (load_id, destination, row_count, loaded_at)
		 VALUES (?, ?, ?, ?)`,
		result.LoadID, result.Destination, result.RowCount, result.LoadedAt,
	); err != nil {
		return nil, fmt.Errorf("recording load: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing load: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"destination": destination,
		"rows":        result.RowCount,
		"load_id":     result.LoadID,
	}).Info("table staged")

	return result, nil
}

// replaceTable drops and recreates the destination, then inserts every
// row as text.
func replaceTable(
	ctx context.Context, tx *sqlx.Tx, tbl *table.Table, destination string,
) error {
	if _, err := tx.ExecContext(
		ctx, fmt.Sprintf(`DROP TABLE IF EXISTS %s`, quoteIdent(destination)),
	); err != nil {
		return fmt.Errorf("dropping %s: %w", destination, err)
	}

	columnDefs := make([]string, len(tbl.Columns))
	for i, col := range tbl.Columns {
		columnDefs[i] = quoteIdent(col) + " TEXT"
	}

	createStmt := fmt.Sprintf(
		`CREATE TABLE %s (%s)`,
		quoteIdent(destination), strings.Join(columnDefs, ", "),
	)
	if _, err := tx.ExecContext(ctx, createStmt); err != nil {
		return fmt.Errorf("creating %s: %w", destination, err)
	}

	if tbl.NumRows() == 0 {
		return nil
	}

	placeholders := strings.TrimRight(
		strings.Repeat("?,", len(tbl.Columns)), ",",
	)
	insertStmt := fmt.Sprintf(
		`INSERT INTO %s VALUES (%s)`, quoteIdent(destination), placeholders,
	)

	stmt, err := tx.PreparexContext(ctx, insertStmt)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, row := range tbl.Rows {
		args := make([]any, len(row))
		for i, cell := range row {
			args[i] = cell
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("inserting into %s: %w", destination, err)
		}
	}

	return nil
}

// Read loads a staged destination back into a table, preserving column
// order.
func (s *Store) Read(
	ctx context.Context, destination string,
) (*table.Table, error) {
	if err := validIdent(destination); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryxContext(
		ctx, fmt.Sprintf(`SELECT * FROM %s`, quoteIdent(destination)),
	)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", destination, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("reading columns of %s: %w", destination, err)
	}

	tbl := table.New(columns...)
	for rows.Next() {
		raw, err := rows.SliceScan()
		if err != nil {
			return nil, fmt.Errorf("scanning row from %s: %w", destination, err)
		}
		row := make([]string, len(raw))
		for i, v := range raw {
			row[i] = asText(v)
		}
		tbl.Rows = append(tbl.Rows, row)
	}

	return tbl, rows.Err()
}

// Loads returns the audit trail of staging loads, most recent first.
func (s *Store) Loads(ctx context.Context) ([]LoadRecord, error) {
	var records []LoadRecord
	err := s.db.SelectContext(ctx, &records,
		`SELECT load_id, destination, row_count, loaded_at
		 FROM load_history ORDER BY loaded_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("reading load history: %w", err)
	}
	return records, nil
}

// runMigrations checks the current schema version and applies any
// outstanding migrations in order.
func (s *Store) runMigrations() error {
	currentVersion := 0

	var tableCount int
	err := s.db.Get(
		&tableCount,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	)
	if err != nil {
		return fmt.Errorf("checking schema_version table: %w", err)
	}

	if tableCount > 0 {
		err = s.db.Get(&currentVersion,
			"SELECT COALESCE(MAX(version), 0) FROM schema_version")
		if err != nil {
			return fmt.Errorf("reading schema version: %w", err)
		}
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}
		if _, err := s.db.Exec(m.sql); err != nil {
			return fmt.Errorf("applying migration v%d: %w", m.version, err)
		}
	}

	return nil
}

// asText renders a scanned SQLite value as a string cell.
func asText(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case []byte:
		return string(val)
	case string:
		return val
	default:
		return fmt.Sprintf("%v", val)
	}
}
