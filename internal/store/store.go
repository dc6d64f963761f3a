// Package store executes the tax alert SQL operations.
//
// Every call opens its own connection, runs a single statement and closes the
// connection again; the engine's own locking is the only concurrency guard.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"pkdindustries/taxalert/internal/core"
)

// Table is the only table the store touches
const Table = "tax_alerts"

// TimestampLayout matches sqlite's datetime('now')
const TimestampLayout = "2006-01-02 15:04:05"

var (
	ErrNotSelect     = errors.New("only SELECT queries are allowed")
	ErrUnknownDriver = errors.New("unknown database driver")
)

// Alert holds the caller-supplied columns of a tax alert row
type Alert struct {
	Title        string `json:"title"`
	Date         string `json:"date"`
	Jurisdiction string `json:"jurisdiction"`
	Topics       string `json:"topics"`
	Summary      string `json:"summary"`
	FullText     string `json:"full_text"`
	SourceURL    string `json:"source_url"`
	Tags         string `json:"tags"`
}

// Store runs the tax alert operations against one database
type Store struct {
	dialect  dialect
	path     string
	dsn      string
	queryDSN string
	now      func() time.Time
	logger   *slog.Logger
}

type Option func(*Store)

// WithClock overrides the clock used for created_at/updated_at
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// New prepares a store for driver (sqlite, sqlite3 or postgres). path is a
// database file for the sqlite drivers and a DSN for postgres.
func New(driver, path string, opts ...Option) (*Store, error) {
	d, err := lookupDialect(driver)
	if err != nil {
		return nil, err
	}
	if d.name != "postgres" {
		path = filepath.Clean(path)
	}

	s := &Store{
		dialect:  d,
		path:     path,
		dsn:      d.dsn(path, false),
		queryDSN: d.dsn(path, true),
		now:      time.Now,
		logger:   core.GetLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Driver returns the dialect name
func (s *Store) Driver() string { return s.dialect.name }

// Path returns the database file or DSN
func (s *Store) Path() string { return s.path }

func (s *Store) open(ctx context.Context) (*sql.DB, error) {
	return s.openDSN(ctx, s.dsn)
}

func (s *Store) openDSN(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open(s.dialect.driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}

// Check verifies the database is reachable and reports whether the table exists
func (s *Store) Check(ctx context.Context) (bool, error) {
	db, err := s.open(ctx)
	if err != nil {
		return false, err
	}
	defer db.Close()

	var name string
	err = db.QueryRowContext(ctx, s.dialect.tableExists, Table).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("look up table %s: %w", Table, err)
	}
	return true, nil
}

// Init creates the table when it does not exist
func (s *Store) Init(ctx context.Context) error {
	db, err := s.open(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	if _, err := db.ExecContext(ctx, s.dialect.createTable); err != nil {
		return fmt.Errorf("create table %s: %w", Table, err)
	}
	return nil
}

// IsSelect reports whether the statement starts with SELECT, ignoring case and surrounding space
func IsSelect(query string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(query)), "select")
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Query runs a SELECT verbatim on a read-only connection and returns the raw
// row values. Statements smuggled in after the SELECT fail instead of writing.
func (s *Store) Query(ctx context.Context, query string) ([][]any, error) {
	if !IsSelect(query) {
		return nil, ErrNotSelect
	}
	defer core.LogDuration(s.logger, "query", time.Now())

	db, err := s.openDSN(ctx, s.queryDSN)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	var q querier = db
	if s.dialect.readOnlyTx {
		tx, err := db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
		if err != nil {
			return nil, err
		}
		// nothing to commit
		defer tx.Rollback()
		q = tx
	}

	rows, err := q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var result [][]any
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		result = append(result, values)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Insert adds one alert with created_at and updated_at set to the current time
func (s *Store) Insert(ctx context.Context, a Alert) error {
	defer core.LogDuration(s.logger, "insert", time.Now())

	db, err := s.open(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	now := s.now().UTC().Format(TimestampLayout)
	query := fmt.Sprintf(`INSERT INTO %s
		(title, date, jurisdiction, topics, summary, full_text, source_url, tags, created_at, updated_at)
		VALUES (%s)`, Table, s.dialect.placeholders(10))

	_, err = db.ExecContext(ctx, query,
		a.Title, a.Date, a.Jurisdiction, a.Topics,
		a.Summary, a.FullText, a.SourceURL, a.Tags,
		now, now,
	)
	if err != nil {
		s.logConflict("insert", err)
		return err
	}
	return nil
}

// Update splices setClause and condition into an UPDATE statement.
// The fragments are not sanitized.
func (s *Store) Update(ctx context.Context, setClause, condition string) (int64, error) {
	return s.exec(ctx, "update", fmt.Sprintf("UPDATE %s SET %s WHERE %s", Table, setClause, condition))
}

// Delete splices condition into a DELETE statement.
// The fragment is not sanitized.
func (s *Store) Delete(ctx context.Context, condition string) (int64, error) {
	return s.exec(ctx, "delete", fmt.Sprintf("DELETE FROM %s WHERE %s", Table, condition))
}

func (s *Store) exec(ctx context.Context, operation, statement string) (int64, error) {
	defer core.LogDuration(s.logger, operation, time.Now())

	db, err := s.open(ctx)
	if err != nil {
		return 0, err
	}
	defer db.Close()

	res, err := db.ExecContext(ctx, statement)
	if err != nil {
		s.logConflict(operation, err)
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		// the statement ran; a driver without row counts is not a failure
		return -1, nil
	}
	s.logger.Debug("statement executed", "operation", operation, "rows_affected", n)
	return n, nil
}

func (s *Store) logConflict(operation string, err error) {
	if IsConflictError(err) {
		s.logger.Warn("database busy", "operation", operation, "error", err)
	}
}
