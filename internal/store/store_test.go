package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

func newTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "alerts.db")
	s, err := New("sqlite", path, opts...)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := s.Init(context.Background()); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	return s
}

func countRows(t *testing.T, s *Store) int64 {
	t.Helper()
	rows, err := s.Query(context.Background(), "SELECT COUNT(*) FROM tax_alerts")
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	n, ok := rows[0][0].(int64)
	if !ok {
		t.Fatalf("expected int64 count, got %T", rows[0][0])
	}
	return n
}

func TestNew_UnknownDriver(t *testing.T) {
	_, err := New("oracle", "x")
	if !errors.Is(err, ErrUnknownDriver) {
		t.Errorf("expected ErrUnknownDriver, got %v", err)
	}
}

func TestNew_DriverNames(t *testing.T) {
	for _, name := range []string{"sqlite", "sqlite3", "postgres", "SQLite"} {
		if _, err := New(name, "x"); err != nil {
			t.Errorf("New(%q) failed: %v", name, err)
		}
	}
}

func TestPlaceholders(t *testing.T) {
	sq, _ := lookupDialect("sqlite")
	if got := sq.placeholders(3); got != "?, ?, ?" {
		t.Errorf("sqlite placeholders: got %q", got)
	}
	pg, _ := lookupDialect("postgres")
	if got := pg.placeholders(3); got != "$1, $2, $3" {
		t.Errorf("postgres placeholders: got %q", got)
	}
}

func TestCheck(t *testing.T) {
	path := filepath.Join(t.TempDir(), "alerts.db")
	s, err := New("sqlite", path)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	ctx := context.Background()

	exists, err := s.Check(ctx)
	if err != nil {
		t.Fatalf("Check failed: %v", err)
	}
	if exists {
		t.Error("expected table to be missing before Init")
	}

	if err := s.Init(ctx); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	exists, err = s.Check(ctx)
	if err != nil {
		t.Fatalf("Check failed: %v", err)
	}
	if !exists {
		t.Error("expected table to exist after Init")
	}
}

func TestCheck_Unreachable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "dir", "alerts.db")
	s, err := New("sqlite", path)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if _, err := s.Check(context.Background()); err == nil {
		t.Error("expected error for database in a missing directory")
	}
}

func TestIsSelect(t *testing.T) {
	tests := []struct {
		query string
		want  bool
	}{
		{"SELECT 1", true},
		{"  select * from tax_alerts", true},
		{"\n\tSeLeCt id FROM tax_alerts", true},
		{"DROP TABLE tax_alerts", false},
		{"with x as (select 1) select * from x", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsSelect(tt.query); got != tt.want {
			t.Errorf("IsSelect(%q) = %v, want %v", tt.query, got, tt.want)
		}
	}
}

func TestQuery_SelectOne(t *testing.T) {
	s := newTestStore(t)
	rows, err := s.Query(context.Background(), "SELECT 1")
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(rows) != 1 || len(rows[0]) != 1 {
		t.Fatalf("expected one row with one column, got %v", rows)
	}
	if FormatRows(rows) != "(1)" {
		t.Errorf("expected (1), got %s", FormatRows(rows))
	}
}

func TestQuery_RejectsNonSelect(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.Query(ctx, "DROP TABLE tax_alerts")
	if !errors.Is(err, ErrNotSelect) {
		t.Fatalf("expected ErrNotSelect, got %v", err)
	}

	exists, err := s.Check(ctx)
	if err != nil {
		t.Fatalf("Check failed: %v", err)
	}
	if !exists {
		t.Error("table was dropped by a rejected query")
	}
}

func TestQuery_StackedStatementsReadOnly(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, q := range []string{
		"SELECT 1; DROP TABLE tax_alerts",
		"select 1; DELETE FROM tax_alerts",
	} {
		_, err := s.Query(ctx, q)
		if err == nil {
			t.Errorf("Query(%q) should fail", q)
		}
		if errors.Is(err, ErrNotSelect) {
			t.Errorf("Query(%q) starts with SELECT and should reach the engine", q)
		}
	}

	exists, err := s.Check(ctx)
	if err != nil {
		t.Fatalf("Check failed: %v", err)
	}
	if !exists {
		t.Error("table was dropped through a read-only query")
	}
}

func TestQuery_StackedStatementsKeepRows(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	if err := s.Insert(ctx, Alert{Title: "kept"}); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	if _, err := s.Query(ctx, "SELECT 1; DELETE FROM tax_alerts"); err == nil {
		t.Error("expected stacked delete to fail")
	}
	if n := countRows(t, s); n != 1 {
		t.Errorf("expected 1 row, got %d", n)
	}
}

func TestDSN_ReadOnly(t *testing.T) {
	tests := []struct {
		driver string
		want   string
	}{
		{"sqlite", "_pragma=query_only(1)"},
		{"sqlite3", "_query_only=1"},
	}
	for _, tt := range tests {
		t.Run(tt.driver, func(t *testing.T) {
			d, err := lookupDialect(tt.driver)
			if err != nil {
				t.Fatal(err)
			}
			if got := d.dsn("/tmp/a.db", true); !strings.Contains(got, tt.want) {
				t.Errorf("read-only dsn %q lacks %q", got, tt.want)
			}
			if got := d.dsn("/tmp/a.db", false); strings.Contains(got, tt.want) {
				t.Errorf("read-write dsn %q carries %q", got, tt.want)
			}
		})
	}

	pg, _ := lookupDialect("postgres")
	if !pg.readOnlyTx {
		t.Error("postgres queries should run in a read-only transaction")
	}
}

func TestDSN_EscapesPath(t *testing.T) {
	for _, driver := range []string{"sqlite", "sqlite3"} {
		d, _ := lookupDialect(driver)
		got := d.dsn("/tmp/a#b?c%d.db", false)
		path, _, _ := strings.Cut(strings.TrimPrefix(got, "file:"), "?")
		if path != "/tmp/a%23b%3fc%25d.db" {
			t.Errorf("%s: unexpected path part %q in %q", driver, path, got)
		}
	}
}

func TestNew_PathWithURIChars(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "alerts#1?.db")
	s, err := New("sqlite", path)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	ctx := context.Background()
	if err := s.Init(ctx); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	exists, err := s.Check(ctx)
	if err != nil || !exists {
		t.Fatalf("expected table: exists=%v err=%v", exists, err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("database not created at %s: %v", path, err)
	}
	if _, err := os.Stat(filepath.Join(dir, "alerts")); err == nil {
		t.Error("path was truncated at the first URI delimiter")
	}
}

func TestQuery_Empty(t *testing.T) {
	s := newTestStore(t)
	rows, err := s.Query(context.Background(), "SELECT * FROM tax_alerts")
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("expected no rows, got %d", len(rows))
	}
}

func TestQuery_SyntaxError(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.Query(context.Background(), "SELECT FROM WHERE"); err == nil {
		t.Error("expected syntax error")
	}
}

func TestInsert_Timestamps(t *testing.T) {
	fixed := time.Date(2024, 3, 15, 9, 30, 45, 0, time.UTC)
	s := newTestStore(t, WithClock(func() time.Time { return fixed }))
	ctx := context.Background()

	err := s.Insert(ctx, Alert{
		Title:        "VAT change",
		Date:         "2024-03-01",
		Jurisdiction: "UK",
		Topics:       "vat",
		Summary:      "rate change",
		FullText:     "the standard rate changes",
		SourceURL:    "https://example.com/vat",
		Tags:         "vat,uk",
	})
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	if n := countRows(t, s); n != 1 {
		t.Fatalf("expected 1 row, got %d", n)
	}

	rows, err := s.Query(ctx, "SELECT title, CAST(created_at AS TEXT), CAST(updated_at AS TEXT) FROM tax_alerts")
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	created := FormatValue(rows[0][1])
	updated := FormatValue(rows[0][2])
	if created != "'2024-03-15 09:30:45'" {
		t.Errorf("unexpected created_at: %s", created)
	}
	if created != updated {
		t.Errorf("created_at %s != updated_at %s", created, updated)
	}
	if FormatValue(rows[0][0]) != "'VAT change'" {
		t.Errorf("unexpected title: %s", FormatValue(rows[0][0]))
	}
}

func TestInsert_MissingTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "alerts.db")
	s, err := New("sqlite", path)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := s.Insert(context.Background(), Alert{Title: "x"}); err == nil {
		t.Error("expected error inserting without a table")
	}
}

func TestUpdate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	if err := s.Insert(ctx, Alert{Title: "old"}); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	n, err := s.Update(ctx, "title='new'", "id=1")
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 row affected, got %d", n)
	}

	rows, err := s.Query(ctx, "SELECT title FROM tax_alerts WHERE id=1")
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if FormatRows(rows) != "('new')" {
		t.Errorf("expected ('new'), got %s", FormatRows(rows))
	}
}

func TestUpdate_MissingRow(t *testing.T) {
	s := newTestStore(t)
	n, err := s.Update(context.Background(), "title='X'", "id=1")
	if err != nil {
		t.Fatalf("Update on missing row failed: %v", err)
	}
	if n != 0 {
		t.Errorf("expected 0 rows affected, got %d", n)
	}
}

func TestUpdate_BadFragment(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.Update(context.Background(), "nosuchcolumn='x'", "id=1"); err == nil {
		t.Error("expected error for unknown column")
	}
}

func TestDelete(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	for _, title := range []string{"a", "b"} {
		if err := s.Insert(ctx, Alert{Title: title}); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	n, err := s.Delete(ctx, "title='a'")
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 row affected, got %d", n)
	}
	if c := countRows(t, s); c != 1 {
		t.Errorf("expected 1 remaining row, got %d", c)
	}
}

func TestInsert_Concurrent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	const writers = 8
	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- s.Insert(ctx, Alert{Title: "concurrent"})
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Fatalf("concurrent insert failed: %v", err)
		}
	}

	rows, err := s.Query(ctx, "SELECT COUNT(*), COUNT(DISTINCT id) FROM tax_alerts")
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if FormatRows(rows) != "(8, 8)" {
		t.Errorf("expected 8 distinct rows, got %s", FormatRows(rows))
	}
}
